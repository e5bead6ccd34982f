package main

import (
	"fmt"

	"github.com/SscSPs/statutory_ledger/pkg/database"
	"github.com/spf13/cobra"
)

// migrateCommands groups schema migration commands.
func migrateCommands(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}
	cmd.AddCommand(migrateUpCommand(app))
	return cmd
}

func migrateUpCommand(app *cli) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.DatabaseURL == "" {
				return fmt.Errorf("PGSQL_URL is not set")
			}
			if source == "" {
				source = app.cfg.MigrationsPath
			}
			return database.RunMigrations(app.cfg.DatabaseURL, source, app.logger)
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "Migration source URL (defaults to MIGRATIONS_PATH)")
	return cmd
}
