package main

import (
	"github.com/SscSPs/library_lending_app/pkg/database"
	"github.com/spf13/cobra"
)

func (c *cli) newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return database.RunMigrations(c.cfg.DatabaseURL, c.cfg.MigrationsPath, database.MigrateUp, c.logger)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return database.RunMigrations(c.cfg.DatabaseURL, c.cfg.MigrationsPath, database.MigrateDown, c.logger)
			},
		},
	)
	return cmd
}
