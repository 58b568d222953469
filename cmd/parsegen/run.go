// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"parsegen/internal/engine"
)

func newRunCommand() *cobra.Command {
	var rule string

	cmd := &cobra.Command{
		Use:   "run <file.grammar> <input...>",
		Short: "Compile a grammar and interpret an input string",
		Long:  "run compiles the grammar and parses the given input with the interpreting engine, printing the resulting value. Useful for trying a grammar without generating code.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			program, err := compileFile(args[0])
			if err != nil {
				return err
			}

			input := strings.Join(args[1:], " ")
			log.Debugf("parsing %q with rule %q", input, rule)

			v, err := engine.New(program).Parse(rule, input)
			if err != nil {
				return err
			}
			fmt.Printf("%v\n", v)
			return nil
		},
	}
	cmd.Flags().StringVar(&rule, "rule", "main", "entry rule to parse with")
	return cmd
}
