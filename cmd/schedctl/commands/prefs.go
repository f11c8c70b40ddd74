package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/benvon/smart-scheduler/internal/cache"
	"github.com/benvon/smart-scheduler/internal/database"
	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/services/preferences"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// NewPrefsCmd creates the prefs command with get and set subcommands
func NewPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Manage a user's scheduling preferences",
	}
	cmd.AddCommand(newPrefsGetCmd())
	cmd.AddCommand(newPrefsSetCmd())
	return cmd
}

func newPrefsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <user-id>",
		Short: "Print stored preferences as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}
			_, db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			p, err := database.NewPreferenceRepository(db).GetByUserID(context.Background(), userID)
			if err != nil {
				return fmt.Errorf("failed to get preferences: %w", err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}
}

func newPrefsSetCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "set <user-id>",
		Short: "Replace preferences from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read preferences file: %w", err)
			}
			p, err := decodePreference(data)
			if err != nil {
				return err
			}
			p.UserID = userID

			cfg, db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			var slots preferences.SlotInvalidator
			if cfg.RedisURL != "" {
				r, err := cache.NewRedis(cfg.RedisURL)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Warning: redis unavailable, cached slots expire with their TTL: %v\n", err)
				} else {
					defer func() { _ = r.Close() }()
					slots = cache.NewSlotCache(r.Client(), cfg.SlotCacheTTL)
				}
			}

			accessor := preferences.NewAccessor(database.NewPreferenceRepository(db), slots, 1, time.Minute, zap.NewNop())
			if _, err := accessor.Set(context.Background(), p); err != nil {
				return fmt.Errorf("failed to set preferences: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Preferences updated for user %s\n", userID)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Preferences file in YAML or JSON (required)")
	return cmd
}

// decodePreference reads preferences written in YAML or JSON using the
// API's field names. Unknown fields are rejected.
func decodePreference(data []byte) (*models.Preference, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse preferences file: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse preferences file: %w", err)
	}

	var p models.Preference
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("invalid preferences file: %w", err)
	}
	return &p, nil
}
