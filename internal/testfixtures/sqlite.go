package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/campus-portal/internal/persistence"
	"github.com/example/campus-portal/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary, migrated
// SQLite database.
type SQLiteHarness struct {
	Storage     *sqlite.Storage
	Tx          persistence.Transactor
	Users       persistence.UserRepository
	Sessions    persistence.SessionRepository
	Classrooms  persistence.ClassroomRepository
	Bookings    persistence.BookingRepository
	Courses     persistence.CourseRepository
	Enrollments persistence.EnrollmentRepository
	Requests    persistence.CourseRequestRepository
	Assignments persistence.AssignmentRepository
	Attributes  persistence.AttributeRepository
	Stats       persistence.StatsRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens and migrates a database file in tb.TempDir. Close is
// registered with tb.Cleanup.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	ctx := context.Background()
	path := filepath.Join(tb.TempDir(), "portal.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	storage, err := sqlite.Open(ctx, sqlite.DefaultConfig(path), logger)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Storage:     storage,
		Tx:          storage,
		Users:       storage,
		Sessions:    storage,
		Classrooms:  storage,
		Bookings:    storage,
		Courses:     storage,
		Enrollments: storage,
		Requests:    storage,
		Assignments: storage,
		Attributes:  storage,
		Stats:       storage,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// SeedUsers inserts the fixtures, failing the test on error.
func (h *SQLiteHarness) SeedUsers(tb testing.TB, users ...UserFixture) {
	tb.Helper()
	for _, user := range users {
		if err := h.Users.CreateUser(context.Background(), user.Persistence()); err != nil {
			tb.Fatalf("seed user %s: %v", user.ID, err)
		}
	}
}

// SeedClassrooms inserts the fixtures, failing the test on error.
func (h *SQLiteHarness) SeedClassrooms(tb testing.TB, classrooms ...ClassroomFixture) {
	tb.Helper()
	for _, classroom := range classrooms {
		if err := h.Classrooms.CreateClassroom(context.Background(), classroom.Persistence()); err != nil {
			tb.Fatalf("seed classroom %s: %v", classroom.ID, err)
		}
	}
}

// SeedCourses inserts the fixtures, failing the test on error.
func (h *SQLiteHarness) SeedCourses(tb testing.TB, courses ...CourseFixture) {
	tb.Helper()
	for _, course := range courses {
		if err := h.Courses.CreateCourse(context.Background(), course.Persistence()); err != nil {
			tb.Fatalf("seed course %s: %v", course.ID, err)
		}
	}
}
