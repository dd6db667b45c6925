// Package commands wires the preocupacional subcommands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the root command.
func Execute(version string) error {
	root := &cobra.Command{
		Use:           "preocupacional",
		Short:         "Pre-employment medical intake: terminal wizard, mail relay and PDF renderer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(wizardCmd(), relayCmd(), renderCmd(), versionCmd(version))
	return root.Execute()
}

func versionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "preocupacional %s\n", version)
		},
	}
}
