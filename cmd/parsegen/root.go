// SPDX-License-Identifier: Apache-2.0
package main

import (
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("parsegen")

func rootCommand() *cobra.Command {
	var verbosity int
	cmd := &cobra.Command{
		Use:   "parsegen",
		Short: "Grammar-to-parser compiler",
		Long:  "parsegen compiles annotated grammar definitions into speculative recursive-descent parsers.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbosity, nil)
		},
	}
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity")
	cmd.AddCommand(newCheckCommand(), newBuildCommand(), newRunCommand())
	return cmd
}
