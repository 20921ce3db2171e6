package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
	"github.com/SscSPs/library_lending_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/library_lending_app/internal/utils"
	"github.com/SscSPs/library_lending_app/pkg/database"
	"github.com/spf13/cobra"
)

func (c *cli) newTokenCmd() *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token, optionally setting the user's stored role first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			if role != "" {
				if err := c.setRole(cmd, userID, domain.UserRole(role)); err != nil {
					return err
				}
			}
			if ttl <= 0 {
				ttl = c.cfg.JWTExpiryDuration
			}
			tok, err := utils.GenerateJWT(userID, c.cfg.JWTSecret, ttl, c.cfg.JWTIssuer)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user ID to put in the token subject")
	cmd.Flags().StringVar(&role, "role", "", "store this role (user or admin) on the existing profile")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_EXPIRY_DURATION)")
	return cmd
}

func (c *cli) setRole(cmd *cobra.Command, userID string, role domain.UserRole) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	ctx := cmd.Context()
	pool, err := database.NewPgxPool(ctx, c.cfg.DatabaseURL, true, c.logger)
	if err != nil {
		return err
	}
	defer database.ClosePgxPool(pool, c.logger)

	users := pgsql.NewRepositoryProvider(pool).UserRepo
	user, err := users.FindUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user %s: %w", userID, err)
	}
	if user.Role == role {
		return nil
	}
	user.Role = role
	user.LastUpdatedAt = time.Now().UTC()
	user.LastUpdatedBy = "lendingctl"
	if err := users.UpdateUser(ctx, *user); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	c.logger.Info("Role updated", "user_id", userID, "role", string(role))
	return nil
}
