// Package main is the entry point for the marsctl CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	registerQuitHandler()
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "marsctl",
		Short:   "marsctl — robot control-mode selection and tick loop",
		Version: version,
	}

	root.AddCommand(
		runCmd(),
		statusCmd(),
		modesCmd(),
		initCmd(),
	)

	return root
}
