// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"parsegen/internal/codegen"
)

func newBuildCommand() *cobra.Command {
	var output string
	var pkg string

	cmd := &cobra.Command{
		Use:   "build <file.grammar>",
		Short: "Generate Go parser source from a grammar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			program, err := compileFile(args[0])
			if err != nil {
				return err
			}
			src, err := codegen.Generate(program, codegen.Options{Package: pkg})
			if err != nil {
				return err
			}
			if output == "" {
				fmt.Print(src)
				return nil
			}
			if err := os.WriteFile(output, []byte(src), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			log.Infof("wrote %s", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write generated source here instead of stdout")
	cmd.Flags().StringVar(&pkg, "package", "parser", "package name for the generated file")
	return cmd
}
