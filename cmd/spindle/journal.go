// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kolkov/spindle/internal/spindle/journal"
)

func newJournalCmd() *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "journal <db>",
		Short: "Print the lifecycle events recorded in a SQLite journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.OpenSQLite(args[0])
			if err != nil {
				return err
			}
			defer j.Close()

			events, err := j.Events(cmd.Context(), session)
			if err != nil {
				return err
			}
			printEvents(cmd.OutOrStdout(), events)
			return nil
		},
	}
	cmd.Flags().StringVarP(&session, "session", "s", "", "only show events of this session")
	return cmd
}

func printEvents(out io.Writer, events []journal.Event) {
	if len(events) == 0 {
		fmt.Fprintln(out, dimStyle.Render("no events"))
		return
	}
	var session string
	for _, ev := range events {
		if ev.Session != session {
			session = ev.Session
			fmt.Fprintln(out, labelStyle.Render("session "+session))
		}
		thread := "-"
		if ev.Thread >= 0 {
			thread = fmt.Sprint(ev.Thread)
		}
		line := fmt.Sprintf("  %s %-9s thread=%s", ev.At.Format(time.RFC3339Nano), ev.Kind, thread)
		if ev.NativeID != 0 {
			line += fmt.Sprintf(" native=%d", ev.NativeID)
		}
		if ev.Detail != "" {
			line += " " + dimStyle.Render(ev.Detail)
		}
		fmt.Fprintln(out, line)
	}
}
