package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd builds the rut command. run receives the single file argument.
// rut takes no flags, so every argument is a path; a leading "--" is dropped.
func newRootCmd(run func(path string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rut <filename>",
		Short: "A minimal terminal text editor",
		Long: `rut opens one file, creating it if it does not exist, and edits it in the terminal.

Ctrl+S saves, Ctrl+C quits.`,
		Args: func(cmd *cobra.Command, args []string) error {
			return cobra.ExactArgs(1)(cmd, pathArgs(args))
		},
		DisableFlagParsing: true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Past argument validation, failures are runtime errors, not misuse.
			cmd.SilenceUsage = true
			return run(pathArgs(args)[0])
		},
	}
	cmd.SetUsageTemplate("Usage: {{.Use}}\n")
	return cmd
}

func pathArgs(args []string) []string {
	if len(args) > 0 && args[0] == "--" {
		return args[1:]
	}
	return args
}
