// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolkov/spindle/spindle"
)

func newVersionCmd() *cobra.Command {
	var require string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "spindle version %s\n", spindle.Version)
			if require != "" && !spindle.AtLeast(require) {
				return fmt.Errorf("version %s does not satisfy required %s", spindle.Version, require)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&require, "require", "", "fail unless the version is at least this one")
	return cmd
}
