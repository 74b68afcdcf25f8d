package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkordes/car-rental/internal/config"
	"github.com/pkordes/car-rental/internal/repo"
	"github.com/pkordes/car-rental/internal/service"
)

func newCreateAdminCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account in the Postgres store",
		Long: `create-admin creates an account with the admin role. An existing
admin with the same username is left untouched; an existing customer with
that username is an error, accounts are never promoted.

--username and --password default to ADMIN_USERNAME and ADMIN_PASSWORD.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.StoreDriver != config.DriverPostgres {
				return errors.New("create-admin needs STORE_DRIVER=postgres; the memory store does not outlive this command")
			}
			if username == "" {
				username = cfg.AdminUsername
			}
			if password == "" {
				password = cfg.AdminPassword
			}
			if err := ensureBothSet([]string{"--username", "--password"}, username, password); err != nil {
				return err
			}

			logger := newLogger(cfg.LogLevel)
			pool, err := openPool(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := migrateUp(ctx, pool, logger); err != nil {
				return err
			}

			auth, err := service.NewAuthService(repo.NewPostgresStore(pool), service.AuthConfig{
				Secret:     []byte(cfg.SessionSecret),
				SessionTTL: cfg.SessionTTL,
				BcryptCost: cfg.BcryptCost,
			}, logger)
			if err != nil {
				return err
			}

			u, created, err := auth.EnsureAdmin(ctx, username, password)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %q created (%s)\n", u.Username, u.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %q already exists\n", u.Username)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "admin username (default $ADMIN_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (default $ADMIN_PASSWORD)")
	return cmd
}
