// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kolkov/spindle/internal/spindle/api"
)

func newSleepCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sleep <ms>...",
		Short: "Sleep for each duration and report the time measured by the runtime timer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			durations, err := parseMillis(args)
			if err != nil {
				return err
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

			return runSleeps(cmd, r, durations)
		},
	}
}

// parseMillis converts non-negative integer millisecond arguments.
func parseMillis(args []string) ([]int, error) {
	out := make([]int, 0, len(args))
	for _, a := range args {
		ms, err := strconv.Atoi(a)
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("invalid duration %q: want milliseconds >= 0", a)
		}
		out = append(out, ms)
	}
	return out, nil
}

func runSleeps(cmd *cobra.Command, r *api.Runtime, durations []int) error {
	out := cmd.OutOrStdout()
	for i, ms := range durations {
		fmt.Fprintf(out, "%d: Attempting to sleep for %d ms\n", i, ms)

		start, err := r.GetTime()
		if err != nil {
			return err
		}
		if err := r.Sleep(float64(ms) / 1000); err != nil {
			return err
		}
		end, err := r.GetTime()
		if err != nil {
			return err
		}

		slept := int((end - start) * 1000)
		status := okStyle.Render("ok")
		if slept < ms {
			status = warnStyle.Render("short")
		}
		fmt.Fprintf(out, "%d: Slept %d ms %s\n", i, slept, status)
	}
	return nil
}
