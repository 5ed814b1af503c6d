// Package migration applies the portal's versioned SQLite schema.
//
// Migrations are embedded into the binary from the sql directory and follow
// the naming convention {version}_{description}.sql (e.g. "001_initial_schema.sql").
// Applied versions are tracked in a schema_migrations table so each file runs
// exactly once, inside its own transaction.
//
// Example usage:
//
//	runner := migration.NewRunner(db, logger)
//	if err := runner.Run(ctx); err != nil {
//		return fmt.Errorf("migrate: %w", err)
//	}
package migration
