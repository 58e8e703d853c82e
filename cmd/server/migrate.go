package main

import (
	"fmt"
	"hr-comparator/internal/core/postgres/repository"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := repository.Open(cfg.Database.DSN, log)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if err := repository.Migrate(db); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	log.Info("schema migrated")
	return nil
}
