// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kolkov/spindle/internal/spindle/api"
)

func newHelloCmd(flags *globalFlags) *cobra.Command {
	var threads int

	cmd := &cobra.Command{
		Use:   "hello",
		Short: "Start threads that greet from their own thread ID, then wait for them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if threads < 1 {
				return fmt.Errorf("--threads must be >= 1, got %d", threads)
			}

			r, _, err := flags.newRuntime()
			if err != nil {
				return err
			}
			defer r.Close()
			if err := r.Init(); err != nil {
				return err
			}
			defer r.Terminate()

			return runHello(cmd.OutOrStdout(), r, threads)
		},
	}
	cmd.Flags().IntVarP(&threads, "threads", "n", 1, "number of threads to start")
	return cmd
}

// runHello starts n threads that each record their ID under a runtime
// mutex, waits for all of them and prints the greetings in ID order.
func runHello(out io.Writer, r *api.Runtime, n int) error {
	m := r.CreateMutex()
	defer r.DestroyMutex(m)

	var greets []api.ThreadID

	ids := make([]api.ThreadID, 0, n)
	for i := 0; i < n; i++ {
		id, err := r.CreateThread(func(any) {
			r.LockMutex(m)
			greets = append(greets, r.CurrentThreadID())
			r.UnlockMutex(m)
		}, nil)
		if err != nil {
			return fmt.Errorf("create thread: %w", err)
		}
		ids = append(ids, id)
	}
	for _, id := range ids {
		if _, err := r.WaitThread(id, api.Wait); err != nil {
			return err
		}
	}

	sort.Slice(greets, func(i, j int) bool { return greets[i] < greets[j] })
	for _, id := range greets {
		fmt.Fprintf(out, "Hello from thread %d\n", id)
	}
	fmt.Fprintln(out, "world!")
	return nil
}
