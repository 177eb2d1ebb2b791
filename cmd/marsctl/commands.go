package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mars1523/marsctl/internal/config"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the control loop with the dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			headless, _ := cmd.Flags().GetBool("headless")
			ticks, _ := cmd.Flags().GetInt64("ticks")
			return executeRun(ticks, headless)
		},
	}
	cmd.Flags().Bool("headless", false, "run without the dashboard, logging events to stdout")
	cmd.Flags().Int64("ticks", 0, "stop after this many ticks (0 = run until interrupted)")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show last run summary from watchdog state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus()
		},
	}
}

func modesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List configured control modes in chooser order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showModes()
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Scaffold marsctl project (config, state dir, .gitignore entry)",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			created, err := config.ScaffoldProject(dir)
			if err != nil {
				return err
			}
			if len(created) == 0 {
				fmt.Println("All files already exist — nothing to create.")
				return nil
			}
			for _, path := range created {
				fmt.Printf("Created %s\n", path)
			}
			return nil
		},
	}
}
