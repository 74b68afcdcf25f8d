package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkordes/car-rental/internal/config"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema (requires DATABASE_URL)",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				dsn, err := config.DatabaseURL()
				if err != nil {
					return err
				}
				pool, err := openPool(ctx, dsn)
				if err != nil {
					return err
				}
				defer pool.Close()
				return migrateUp(ctx, pool, newLogger("info"))
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				dsn, err := config.DatabaseURL()
				if err != nil {
					return err
				}
				pool, err := openPool(ctx, dsn)
				if err != nil {
					return err
				}
				defer pool.Close()

				provider, closeDB, err := newMigrator(pool)
				if err != nil {
					return err
				}
				defer closeDB()

				res, err := provider.Down(ctx)
				if err != nil {
					return fmt.Errorf("roll back migration: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d %s\n", res.Source.Version, res.Source.Path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show which migrations have been applied",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				dsn, err := config.DatabaseURL()
				if err != nil {
					return err
				}
				pool, err := openPool(ctx, dsn)
				if err != nil {
					return err
				}
				defer pool.Close()

				provider, closeDB, err := newMigrator(pool)
				if err != nil {
					return err
				}
				defer closeDB()

				statuses, err := provider.Status(ctx)
				if err != nil {
					return fmt.Errorf("migration status: %w", err)
				}
				for _, s := range statuses {
					fmt.Fprintf(cmd.OutOrStdout(), "%-8s %5d  %s\n", s.State, s.Source.Version, s.Source.Path)
				}
				return nil
			},
		},
	)
	return cmd
}
