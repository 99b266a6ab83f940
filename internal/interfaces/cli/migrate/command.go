package migrate

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"mentora/internal/infrastructure/config"
	"mentora/internal/shared/logger"
)

var (
	configPath string
	scriptsDir string
)

// NewCommand creates the migrate command with its subcommands
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config directory")
	cmd.PersistentFlags().StringVarP(&scriptsDir, "dir", "d",
		"internal/infrastructure/migration/scripts", "Directory containing migration scripts")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newVersionCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMigrator()
			if err != nil {
				return err
			}
			defer closeMigrator(m)

			if err := m.Up(); err != nil {
				if errors.Is(err, migrate.ErrNoChange) {
					logger.Info("no pending migrations")
					return nil
				}
				return fmt.Errorf("migration up failed: %w", err)
			}

			logger.Info("migrations applied")
			return nil
		},
	}
}

func newDownCommand() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMigrator()
			if err != nil {
				return err
			}
			defer closeMigrator(m)

			if err := m.Steps(-steps); err != nil {
				if errors.Is(err, migrate.ErrNoChange) {
					logger.Info("nothing to roll back")
					return nil
				}
				return fmt.Errorf("migration down failed: %w", err)
			}

			logger.Info("migrations rolled back", "steps", steps)
			return nil
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "s", 1, "Number of migrations to roll back")

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMigrator()
			if err != nil {
				return err
			}
			defer closeMigrator(m)

			version, dirty, err := m.Version()
			if err != nil {
				if errors.Is(err, migrate.ErrNilVersion) {
					logger.Info("no migrations applied yet")
					return nil
				}
				return fmt.Errorf("failed to read migration version: %w", err)
			}

			logger.Info("migration version", "version", version, "dirty", dirty)
			return nil
		},
	}
}

func newMigrator() (*migrate.Migrate, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if cfg.Database.Driver == "sqlite" {
		return nil, fmt.Errorf("migration scripts target mysql; sqlite uses automatic migration")
	}

	sourceURL := fmt.Sprintf("file://%s", scriptsDir)
	databaseURL := fmt.Sprintf("mysql://%s", cfg.Database.GetDSN())

	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}

func closeMigrator(m *migrate.Migrate) {
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Warn("failed to close migration source", "error", sourceErr)
	}
	if dbErr != nil {
		logger.Warn("failed to close migration database", "error", dbErr)
	}
}
