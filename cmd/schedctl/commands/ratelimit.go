package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/benvon/smart-scheduler/internal/database"
	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter/v3"
)

// NewRatelimitCmd creates the ratelimit configuration command with list and set subcommands.
func NewRatelimitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage rate limit configuration",
		Long:  "List or update rate limits (e.g. 5-S, 100-M). Stored in database and picked up by the API within a minute.",
	}
	cmd.AddCommand(newRatelimitListCmd())
	cmd.AddCommand(newRatelimitSetCmd())
	return cmd
}

func newRatelimitListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current rate limit configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			configs, err := database.NewRatelimitConfigRepository(db).List(context.Background())
			if err != nil {
				return fmt.Errorf("list ratelimit config: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(configs) == 0 {
				fmt.Fprintln(out, "No rate limit configuration in database. Use 'ratelimit set' to add one.")
				return nil
			}
			fmt.Fprintln(out, "Rate limit configuration:")
			for _, c := range configs {
				fmt.Fprintf(out, "  %s: %s (updated %s)\n", c.ConfigKey, c.Rate, c.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func newRatelimitSetCmd() *cobra.Command {
	var rate, key string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set rate limit configuration",
		Long:  "Update a rate limit (e.g. 5-S, 100-M, 1000-H). Stored in database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rate = strings.TrimSpace(rate)
			if rate == "" {
				return fmt.Errorf("--rate is required (e.g. 5-S, 100-M)")
			}
			if _, err := limiter.NewRateFromFormatted(rate); err != nil {
				return fmt.Errorf("invalid rate %q: %w", rate, err)
			}

			_, db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			c := &models.RatelimitConfig{ConfigKey: key, Rate: rate}
			if err := database.NewRatelimitConfigRepository(db).Set(context.Background(), c); err != nil {
				return fmt.Errorf("set ratelimit config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Rate limit configuration updated.")
			return nil
		},
	}
	cmd.Flags().StringVar(&rate, "rate", "", "Rate (e.g. 5-S, 100-M, 1000-H) (required)")
	cmd.Flags().StringVar(&key, "key", models.RatelimitKeyAPI, "Configuration key (\""+models.RatelimitKeyAPI+"\" per user, \""+models.RatelimitKeyLogin+"\" per client address)")
	return cmd
}
