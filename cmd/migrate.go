package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diarioai/diario/db"
	"github.com/diarioai/diario/internal/config"
	"github.com/diarioai/diario/internal/log"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Applies all pending schema migrations to the configured PostgreSQL
database. The serve command also migrates on startup; this command exists
for deploy pipelines that migrate before rolling new instances.`,
	RunE: func(*cobra.Command, []string) error {
		return runMigrate()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{})
	logger.Info("applying migrations", "host", cfg.PostgresHost, "database", cfg.PostgresDBName)

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	logger.Info("migrations applied")
	return nil
}
