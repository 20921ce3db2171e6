package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/SscSPs/library_lending_app/internal/repositories/cache/rediscache"
	"github.com/SscSPs/library_lending_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/library_lending_app/internal/repositories/fallback"
	"github.com/SscSPs/library_lending_app/pkg/database"
	"github.com/spf13/cobra"
)

func (c *cli) newResyncCmd() *cobra.Command {
	var showConflicts bool
	cmd := &cobra.Command{
		Use:   "resync",
		Short: "Push changes made while the database was down from the cache mirror back to it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := database.NewRedisClient(ctx, c.cfg.RedisAddr, c.cfg.RedisPassword, c.cfg.RedisDB, c.logger)
			if err != nil {
				return err
			}
			if client == nil {
				return errors.New("REDIS_ADDR is not set, there is no mirror to resync from")
			}
			defer client.Close()

			pool, err := database.NewPgxPool(ctx, c.cfg.DatabaseURL, true, c.logger)
			if err != nil {
				return err
			}
			defer database.ClosePgxPool(pool, c.logger)

			mirror := rediscache.NewMirror(client, c.cfg.CacheKeyPrefix)
			report, err := fallback.NewResyncer(mirror, pgsql.NewSyncRepository(pool), c.logger).Run(ctx)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "synced=%d purged=%d conflicts=%d remaining=%d\n",
				report.Synced, report.Purged, report.Conflicts, report.Remaining)
			if err != nil {
				return err
			}

			if showConflicts {
				conflicts, err := mirror.Conflicts(ctx)
				if err != nil {
					return err
				}
				keys := make([]string, 0, len(conflicts))
				for k := range conflicts {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(out, "%s\t%s\n", k, conflicts[k])
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showConflicts, "conflicts", true, "list entities the database refused")
	return cmd
}
