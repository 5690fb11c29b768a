package main

import (
	"os"

	"github.com/spf13/cobra"

	"smallsh/internal/launch"
)

// execCmd is the child side of every launched job; see package launch.
var execCmd = &cobra.Command{
	Use:                launch.ExecCommand + " [--input FILE] [--output FILE] [--background] -- PROGRAM [ARGS...]",
	Hidden:             true,
	DisableFlagParsing: true,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(launch.RunChild(append([]string{launch.ExecCommand}, args...), os.Stderr))
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
}
