// SPDX-License-Identifier: Apache-2.0
package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.grammar>",
		Short: "Parse and validate a grammar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			program, err := compileFile(args[0])
			if err != nil {
				return err
			}
			log.Debugf("compiled %d rule(s)", len(program.Rules))
			color.Green("%s: ok", args[0])
			return nil
		},
	}
}
