package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Runner orchestrates applying pending migrations in version order.
type Runner struct {
	executor   *Executor
	migrations []Migration
	logger     *slog.Logger
}

// NewRunner builds a runner over the embedded migrations.
func NewRunner(db *sql.DB, logger *slog.Logger) (*Runner, error) {
	migrations, err := Embedded()
	if err != nil {
		return nil, err
	}
	return NewRunnerWithMigrations(db, migrations, logger), nil
}

// NewRunnerWithMigrations builds a runner over an explicit migration set.
func NewRunnerWithMigrations(db *sql.DB, migrations []Migration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		executor:   NewExecutor(db),
		migrations: migrations,
		logger:     logger.With("component", "migration"),
	}
}

// Status reports applied and pending migrations.
func (r *Runner) Status(ctx context.Context) (Status, error) {
	if err := r.executor.InitializeVersionTable(ctx); err != nil {
		return Status{}, err
	}
	applied, err := r.executor.AppliedMigrations(ctx)
	if err != nil {
		return Status{}, err
	}

	done := make(map[string]bool, len(applied))
	status := Status{Applied: applied}
	for _, m := range applied {
		done[m.Version] = true
		status.CurrentVersion = m.Version
	}
	for _, m := range r.migrations {
		if !done[m.Version] {
			status.Pending = append(status.Pending, m)
		}
	}
	return status, nil
}

// Run executes all pending migrations in sequential order.
func (r *Runner) Run(ctx context.Context) error {
	status, err := r.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	r.logger.InfoContext(ctx, "checking database schema version",
		"current_version", status.CurrentVersion,
		"pending", len(status.Pending),
	)
	if len(status.Pending) == 0 {
		return nil
	}

	for i, m := range status.Pending {
		logger := r.logger.With("version", m.Version, "description", m.Description)
		logger.InfoContext(ctx, "executing migration", "position", i+1, "total", len(status.Pending))
		if err := r.executor.ExecuteMigration(ctx, m); err != nil {
			logger.ErrorContext(ctx, "migration failed", "error", err)
			return err
		}
	}

	r.logger.InfoContext(ctx, "database migrations completed", "applied", len(status.Pending))
	return nil
}
