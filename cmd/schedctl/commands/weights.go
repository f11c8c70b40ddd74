package commands

import (
	"fmt"

	"github.com/benvon/smart-scheduler/internal/weights"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewWeightsCmd creates the weights command with validate and show subcommands
func NewWeightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Inspect scoring weights",
		Long:  "Validate a weights file or print the effective weights (file layered over defaults).",
	}
	cmd.AddCommand(newWeightsValidateCmd())
	cmd.AddCommand(newWeightsShowCmd())
	return cmd
}

func newWeightsValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a weights file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := weights.Load(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", args[0])
			return nil
		},
	}
}

func newWeightsShowCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective weights as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := weights.Load(file)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer func() { _ = enc.Close() }()
			return enc.Encode(w)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Weights file (defaults only when empty)")
	return cmd
}
