// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spindle_test

import (
	"fmt"

	"github.com/kolkov/spindle/spindle"
)

// Example starts a thread, waits for it and finishes the sentence, like the
// classic hello world of threading libraries.
func Example() {
	if !spindle.Init() {
		return
	}
	defer spindle.Terminate()

	done := make(chan struct{})
	id := spindle.CreateThread(func(arg any) {
		fmt.Print(arg)
		close(done)
	}, "Hello, ")
	spindle.WaitThread(id, spindle.Wait)
	<-done

	fmt.Println("world!")

	// Output:
	// Hello, world!
}

// Example_condition hands a value from a worker thread to the main thread
// through a condition variable.
func Example_condition() {
	spindle.Init()
	defer spindle.Terminate()

	m := spindle.CreateMutex()
	defer spindle.DestroyMutex(m)
	c := spindle.CreateCond()
	defer spindle.DestroyCond(c)

	var ready bool
	var value int

	id := spindle.CreateThread(func(any) {
		spindle.LockMutex(m)
		value = 42
		ready = true
		spindle.SignalCond(c)
		spindle.UnlockMutex(m)
	}, nil)

	spindle.LockMutex(m)
	for !ready {
		spindle.WaitCond(c, m, spindle.Infinity)
	}
	spindle.UnlockMutex(m)
	spindle.WaitThread(id, spindle.Wait)

	fmt.Println(value)

	// Output:
	// 42
}

// Example_uninitialized shows the neutral values returned before Init.
func Example_uninitialized() {
	spindle.Terminate()

	fmt.Println(spindle.GetTime())
	fmt.Println(spindle.CreateThread(func(any) {}, nil))
	fmt.Println(spindle.WaitThread(1, spindle.NoWait))

	// Output:
	// 0
	// -1
	// true
}
