package commands

import (
	"context"
	"fmt"

	"github.com/benvon/smart-scheduler/internal/database"
	"github.com/benvon/smart-scheduler/internal/logger"
	"github.com/benvon/smart-scheduler/internal/queue"
	"github.com/benvon/smart-scheduler/internal/workers"
	"github.com/spf13/cobra"
)

// NewSweepCmd creates the command that enqueues a preparation sweep immediately
func NewSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Enqueue preparation jobs for everyone with upcoming meetings",
		Long:  "Runs the twice-daily sweep now: one prepare job per user with meetings inside the sweep window.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()

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

			sweeper := workers.NewSweeper(q, database.NewMeetingRepository(db), cfg.SweepWindow, log)
			n, err := sweeper.Sweep(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enqueued %d prepare jobs\n", n)
			return nil
		},
	}
}
