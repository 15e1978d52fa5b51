package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"syncorbit/internal/services/embedder"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the similarity service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Provider.BaseURL == "" {
				return fmt.Errorf("provider.base_url is not configured")
			}

			client := embedder.NewClient(embedder.Config{
				BaseURL:        cfg.Provider.BaseURL,
				TimeoutSeconds: cfg.Provider.TimeoutSeconds,
			})
			if err := client.Health(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Similarity service at %s is healthy.\n", cfg.Provider.BaseURL)
			return nil
		},
	}
}
