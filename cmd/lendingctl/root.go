package main

import (
	"log/slog"
	"os"

	"github.com/SscSPs/library_lending_app/internal/platform/config"
	"github.com/spf13/cobra"
)

type cli struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "lendingctl",
		Short:         "Maintenance commands for the library lending service",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
			return nil
		},
	}
	root.AddCommand(c.newMigrateCmd(), c.newResyncCmd(), c.newTokenCmd())
	return root
}
