package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/smart-scheduler/internal/config"
	"github.com/benvon/smart-scheduler/internal/logger"
	"github.com/benvon/smart-scheduler/internal/queue"
	"github.com/spf13/cobra"
)

// NewDLQCmd creates the dead-letter queue maintenance commands
func NewDLQCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dlq",
		Short: "Maintain the dead-letter queue",
	}
	cmd.AddCommand(newDLQPurgeCmd())
	return cmd
}

func newDLQPurgeCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Drop dead-lettered jobs older than the retention",
		Long:  "Runs one janitor pass now. Defaults to DLQ_RETENTION when --older-than is not set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			retention := cfg.DLQRetention
			if cmd.Flags().Changed("older-than") {
				retention = olderThan
			}
			if retention < 0 {
				return fmt.Errorf("--older-than must not be negative")
			}

			log, err := logger.NewDevelopmentLogger(false)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			ctx := context.Background()
			q, err := queue.Dial(ctx, cfg.RabbitMQURL, 3, log)
			if err != nil {
				return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			defer func() { _ = q.Close() }()

			n, err := queue.NewDLQJanitor(q, retention, log).Collect(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d dead-lettered jobs older than %s\n", n, retention)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Retention override (e.g. 72h)")
	return cmd
}
