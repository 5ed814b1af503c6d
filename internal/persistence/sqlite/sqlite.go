// Package sqlite implements the persistence repositories on SQLite through
// modernc.org/sqlite and sqlx.
package sqlite

import (
	"context"
	"log/slog"

	"github.com/example/campus-portal/internal/persistence"
	"github.com/example/campus-portal/internal/persistence/sqlite/migration"
)

// Storage bundles every SQLite repository over one connection pool.
type Storage struct {
	*UserRepository
	*SessionRepository
	*ClassroomRepository
	*BookingRepository
	*CourseRepository
	*AssignmentRepository
	*AttributeRepository
	*StatsRepository

	pool   *ConnectionPool
	logger *slog.Logger
}

var (
	_ persistence.Transactor              = (*Storage)(nil)
	_ persistence.UserRepository          = (*Storage)(nil)
	_ persistence.SessionRepository       = (*Storage)(nil)
	_ persistence.ClassroomRepository     = (*Storage)(nil)
	_ persistence.BookingRepository       = (*Storage)(nil)
	_ persistence.CourseRepository        = (*Storage)(nil)
	_ persistence.EnrollmentRepository    = (*Storage)(nil)
	_ persistence.CourseRequestRepository = (*Storage)(nil)
	_ persistence.AssignmentRepository    = (*Storage)(nil)
	_ persistence.AttributeRepository     = (*Storage)(nil)
	_ persistence.StatsRepository         = (*Storage)(nil)
)

// Open opens the database described by config.
func Open(ctx context.Context, config Config, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := NewConnectionPool(ctx, config)
	if err != nil {
		return nil, err
	}
	return &Storage{
		UserRepository:       NewUserRepository(pool),
		SessionRepository:    NewSessionRepository(pool),
		ClassroomRepository:  NewClassroomRepository(pool),
		BookingRepository:    NewBookingRepository(pool),
		CourseRepository:     NewCourseRepository(pool),
		AssignmentRepository: NewAssignmentRepository(pool),
		AttributeRepository:  NewAttributeRepository(pool),
		StatsRepository:      NewStatsRepository(pool),
		pool:                 pool,
		logger:               logger,
	}, nil
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	runner, err := migration.NewRunner(s.pool.DB(), s.logger)
	if err != nil {
		return err
	}
	return runner.Run(ctx)
}

// WithinTransaction runs fn in a transaction shared by every repository call
// made with the context passed to fn.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.pool.WithinTransaction(ctx, fn)
}

// Ping verifies the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}
