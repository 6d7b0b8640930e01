package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nitesh/trendpulse-api/internal/config"
	"github.com/nitesh/trendpulse-api/internal/logger"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate config and probe the news provider once",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger.Init(cfg.Env)

		if err := newClient(cfg).Ping(cmd.Context()); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "newsAPI: disconnected")
			return fmt.Errorf("probing %s: %w", cfg.NewsAPIBaseURL, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "newsAPI: connected")
		return nil
	},
}
