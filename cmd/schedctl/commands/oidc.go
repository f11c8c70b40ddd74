package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/benvon/smart-scheduler/internal/config"
	"github.com/benvon/smart-scheduler/internal/services/oidc"
	"github.com/spf13/cobra"
)

// NewOIDCCmd creates the oidc command
func NewOIDCCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oidc",
		Short: "Check the identity provider configuration",
	}
	cmd.AddCommand(newOIDCTestCmd())
	return cmd
}

func newOIDCTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test OIDC configuration",
		Long:  "Test the configured issuer discovery document and JWKS endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.OIDCIssuer == "" || cfg.OIDCJWKSURL == "" {
				return fmt.Errorf("OIDC_ISSUER and OIDC_JWKS_URL must be set")
			}
			out := cmd.OutOrStdout()

			discoveryURL := strings.TrimSuffix(cfg.OIDCIssuer, "/") + "/.well-known/openid-configuration"
			fmt.Fprintf(out, "Testing discovery endpoint: %s\n", discoveryURL)
			client := &http.Client{Timeout: 10 * time.Second}
			resp, err := client.Get(discoveryURL)
			if err != nil {
				return fmt.Errorf("failed to reach discovery endpoint: %w", err)
			}
			defer func() {
				if err := resp.Body.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close response body: %v\n", err)
				}
			}()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("discovery endpoint returned status: %d", resp.StatusCode)
			}
			fmt.Fprintln(out, "✓ Discovery endpoint is accessible")

			fmt.Fprintf(out, "\nTesting JWKS endpoint: %s\n", cfg.OIDCJWKSURL)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			keys, err := oidc.NewJWKSManager(cfg.OIDCJWKSURL, time.Minute).Keys(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch JWKS: %w", err)
			}
			if keys.Len() == 0 {
				return fmt.Errorf("JWKS endpoint returned no keys")
			}
			fmt.Fprintf(out, "✓ JWKS endpoint returned %d keys\n", keys.Len())

			if oidc.NewClient(oidc.ClientConfig{ClientID: cfg.OIDCClientID, AuthURL: cfg.OIDCAuthURL}).Configured() {
				fmt.Fprintln(out, "✓ Login flow is configured")
			} else {
				fmt.Fprintln(out, "! Login flow is not configured (OIDC_CLIENT_ID and OIDC_AUTH_URL)")
			}

			fmt.Fprintln(out, "\n✓ OIDC configuration test passed")
			return nil
		},
	}
}
