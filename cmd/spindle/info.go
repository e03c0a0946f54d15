// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kolkov/spindle/internal/spindle/api"
	"github.com/kolkov/spindle/spindle"
)

func newInfoCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show backend, CPU and timer information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := flags.newRuntime()
			if err != nil {
				return err
			}
			defer r.Close()
			if err := r.Init(); err != nil {
				return err
			}
			defer r.Terminate()

			printInfo(cmd.OutOrStdout(), r.Info())
			return nil
		},
	}
}

func printInfo(out io.Writer, info api.Info) {
	cond := "native"
	if info.EmulateCond {
		cond = "emulated"
	}
	lines := []string{
		field("version", spindle.Version),
		field("backend", info.Backend),
		field("condvars", cond),
		field("cpu cores", info.CPUCores),
		field("resolution", fmt.Sprintf("%gs", info.Resolution)),
		field("session", info.Session),
	}
	fmt.Fprintln(out, strings.Join(lines, "\n"))
}

func fmtValue(v any) string {
	switch v := v.(type) {
	case string:
		if v == "" {
			return dimStyle.Render("-")
		}
		return v
	default:
		return fmt.Sprint(v)
	}
}
