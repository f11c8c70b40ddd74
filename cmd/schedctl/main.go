package main

import (
	"fmt"
	"os"

	"github.com/benvon/smart-scheduler/cmd/schedctl/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "schedctl",
		Short: "Operator tool for the Smart Scheduler",
		Long:  "CLI tool for checking weights, managing preferences and rate limits, triggering the preparation sweep and purging the DLQ",
	}

	rootCmd.AddCommand(commands.NewWeightsCmd())
	rootCmd.AddCommand(commands.NewPrefsCmd())
	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewSweepCmd())
	rootCmd.AddCommand(commands.NewDLQCmd())
	rootCmd.AddCommand(commands.NewOIDCCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
