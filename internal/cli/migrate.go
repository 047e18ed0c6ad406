package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/xsvn/internal/adapters/turso"
	"github.com/emiliopalmerini/xsvn/internal/config"
	"github.com/emiliopalmerini/xsvn/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <config file> [version]",
	Short: "Run audit log migrations",
	Long: `Run audit log database migrations.

The hook applies pending migrations on its own when it opens the audit log.
Use this command to prepare a shared database ahead of time or to roll back.

Examples:
  xsvn migrate project.yaml      # Run all pending migrations
  xsvn migrate project.yaml 1    # Migrate to version 1
  xsvn migrate project.yaml 0    # Rollback all migrations`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	if !cfg.Audit.Enabled {
		return fmt.Errorf("%w in %s", errAuditDisabled, args[0])
	}

	allMigrations, err := migrate.LoadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	targetVersion := migrate.Latest(allMigrations)
	if len(args) == 2 {
		targetVersion, err = strconv.Atoi(args[1])
		if err != nil || targetVersion < 0 {
			return fmt.Errorf("invalid version number: %s", args[1])
		}
	}

	db, err := turso.Open(ctx, auditDBConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := migrate.EnsureMigrationsTable(ctx, db.DB); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, dirty, err := migrate.GetCurrentVersion(ctx, db.DB)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d, manual intervention required", currentVersion)
	}

	fmt.Fprintf(out, "Current version: %d\n", currentVersion)
	return migrate.MigrateTo(ctx, db.DB, allMigrations, currentVersion, targetVersion, out)
}
