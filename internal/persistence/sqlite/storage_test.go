package sqlite

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/campus-portal/internal/persistence"
)

var base = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	storage, err := Open(ctx, DefaultConfig(filepath.Join(t.TempDir(), "portal.db")), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	require.NoError(t, storage.Migrate(ctx))
	return storage
}

func seedUser(t *testing.T, s *Storage, id, role string) persistence.User {
	t.Helper()
	user := persistence.User{
		ID:           id,
		Email:        id + "@example.edu",
		DisplayName:  "User " + id,
		Role:         role,
		PasswordHash: "hash-" + id,
		CreatedAt:    base,
		UpdatedAt:    base,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func seedClassroom(t *testing.T, s *Storage, id string) persistence.Classroom {
	t.Helper()
	classroom := persistence.Classroom{
		ID:        id,
		Name:      "Room " + id,
		Location:  "Main building",
		Capacity:  30,
		Features:  []string{"projector", "whiteboard"},
		CreatedAt: base,
		UpdatedAt: base,
	}
	require.NoError(t, s.CreateClassroom(context.Background(), classroom))
	return classroom
}

func newBooking(classroomID, ownerID, start, end string) persistence.Booking {
	return persistence.Booking{
		ClassroomID: classroomID,
		Date:        "2024-05-01",
		StartTime:   start,
		EndTime:     end,
		OwnerID:     ownerID,
		OwnerRole:   "student",
		Purpose:     "study group",
		Status:      "pending",
		CreatedAt:   base,
		UpdatedAt:   base,
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("creates, reads, updates and deletes users", func(t *testing.T) {
		s := newTestStorage(t)
		advisor := seedUser(t, s, "adv-1", "advisor")
		student := persistence.User{
			ID:           "stu-1",
			Email:        "  Alice@Example.EDU ",
			DisplayName:  "Alice",
			Role:         "student",
			AdvisorID:    &advisor.ID,
			PasswordHash: "hash",
			CreatedAt:    base,
			UpdatedAt:    base,
		}
		require.NoError(t, s.CreateUser(ctx, student))

		fetched, err := s.GetUserByEmail(ctx, "ALICE@example.edu")
		require.NoError(t, err)
		require.Equal(t, "alice@example.edu", fetched.Email)
		require.NotNil(t, fetched.AdvisorID)
		require.Equal(t, advisor.ID, *fetched.AdvisorID)
		require.True(t, fetched.CreatedAt.Equal(base))

		fetched.DisplayName = "Alice Updated"
		fetched.PasswordHash = ""
		fetched.UpdatedAt = base.Add(time.Hour)
		require.NoError(t, s.UpdateUser(ctx, fetched))

		updated, err := s.GetUser(ctx, student.ID)
		require.NoError(t, err)
		require.Equal(t, "Alice Updated", updated.DisplayName)
		require.Equal(t, "hash", updated.PasswordHash, "empty hash keeps the stored password")

		advisees, err := s.ListUsers(ctx, persistence.UserFilter{AdvisorID: advisor.ID})
		require.NoError(t, err)
		require.Len(t, advisees, 1)

		require.NoError(t, s.DeleteUser(ctx, student.ID))
		_, err = s.GetUser(ctx, student.ID)
		require.ErrorIs(t, err, persistence.ErrNotFound)
		require.ErrorIs(t, s.DeleteUser(ctx, student.ID), persistence.ErrNotFound)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		s := newTestStorage(t)
		seedUser(t, s, "u1", "student")
		dup := persistence.User{ID: "u2", Email: "U1@example.edu", DisplayName: "Dup", Role: "student", PasswordHash: "x", CreatedAt: base, UpdatedAt: base}
		require.ErrorIs(t, s.CreateUser(ctx, dup), persistence.ErrDuplicate)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		s := newTestStorage(t)
		bad := persistence.User{ID: "u3", Email: "u3@example.edu", DisplayName: "Bad", Role: "dean", PasswordHash: "x", CreatedAt: base, UpdatedAt: base}
		require.ErrorIs(t, s.CreateUser(ctx, bad), persistence.ErrConstraintViolation)
	})
}

func TestBookingRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns sequential ids from the current maximum", func(t *testing.T) {
		s := newTestStorage(t)
		seedUser(t, s, "stu", "student")
		seedClassroom(t, s, "CL101")

		first, err := s.CreateBooking(ctx, newBooking("CL101", "stu", "09:00", "10:00"))
		require.NoError(t, err)
		second, err := s.CreateBooking(ctx, newBooking("CL101", "stu", "10:00", "11:00"))
		require.NoError(t, err)
		require.Equal(t, first.ID+1, second.ID)

		require.NoError(t, s.DeleteBooking(ctx, second.ID))
		third, err := s.CreateBooking(ctx, newBooking("CL101", "stu", "11:00", "12:00"))
		require.NoError(t, err)
		require.Equal(t, first.ID+1, third.ID)
	})

	t.Run("filters and updates", func(t *testing.T) {
		s := newTestStorage(t)
		seedUser(t, s, "stu", "student")
		seedClassroom(t, s, "CL101")
		seedClassroom(t, s, "CL102")

		created, err := s.CreateBooking(ctx, newBooking("CL101", "stu", "09:00", "10:00"))
		require.NoError(t, err)
		_, err = s.CreateBooking(ctx, newBooking("CL102", "stu", "09:00", "10:00"))
		require.NoError(t, err)

		list, err := s.ListBookings(ctx, persistence.BookingFilter{ClassroomID: "CL101", Date: "2024-05-01"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, created.ID, list[0].ID)

		created.Status = "approved"
		created.UpdatedAt = base.Add(time.Minute)
		require.NoError(t, s.UpdateBooking(ctx, created))

		approved, err := s.ListBookings(ctx, persistence.BookingFilter{Status: "approved"})
		require.NoError(t, err)
		require.Len(t, approved, 1)

		missing := created
		missing.ID = 999
		require.ErrorIs(t, s.UpdateBooking(ctx, missing), persistence.ErrNotFound)
	})

	t.Run("rejects unknown classroom and inverted interval", func(t *testing.T) {
		s := newTestStorage(t)
		seedUser(t, s, "stu", "student")
		seedClassroom(t, s, "CL101")

		_, err := s.CreateBooking(ctx, newBooking("NOPE", "stu", "09:00", "10:00"))
		require.ErrorIs(t, err, persistence.ErrForeignKeyViolation)

		_, err = s.CreateBooking(ctx, newBooking("CL101", "stu", "10:00", "09:00"))
		require.ErrorIs(t, err, persistence.ErrConstraintViolation)
	})

	t.Run("deleting a classroom or owner cascades to bookings", func(t *testing.T) {
		s := newTestStorage(t)
		seedUser(t, s, "stu", "student")
		seedUser(t, s, "other", "student")
		seedClassroom(t, s, "CL101")
		seedClassroom(t, s, "CL102")

		_, err := s.CreateBooking(ctx, newBooking("CL101", "stu", "09:00", "10:00"))
		require.NoError(t, err)
		_, err = s.CreateBooking(ctx, newBooking("CL102", "other", "09:00", "10:00"))
		require.NoError(t, err)

		require.NoError(t, s.DeleteClassroom(ctx, "CL101"))
		require.NoError(t, s.DeleteUser(ctx, "other"))

		remaining, err := s.ListBookings(ctx, persistence.BookingFilter{})
		require.NoError(t, err)
		require.Empty(t, remaining)
	})
}

func TestWithinTransaction(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	seedUser(t, s, "stu", "student")
	seedClassroom(t, s, "CL101")

	boom := errors.New("boom")
	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.CreateBooking(ctx, newBooking("CL101", "stu", "09:00", "10:00")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	bookings, err := s.ListBookings(ctx, persistence.BookingFilter{})
	require.NoError(t, err)
	require.Empty(t, bookings, "rolled back insert must not be visible")

	err = s.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := s.CreateBooking(ctx, newBooking("CL101", "stu", "09:00", "10:00"))
		return err
	})
	require.NoError(t, err)

	bookings, err = s.ListBookings(ctx, persistence.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, bookings, 1)
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	seedUser(t, s, "stu", "student")

	session, err := s.CreateSession(ctx, persistence.Session{
		ID: "sess-1", UserID: "stu", ExpiresAt: base.Add(time.Hour), CreatedAt: base, UpdatedAt: base,
	})
	require.NoError(t, err)
	require.Nil(t, session.RevokedAt)

	revoked, err := s.RevokeSession(ctx, "sess-1", base.Add(time.Minute))
	require.NoError(t, err)
	require.NotNil(t, revoked.RevokedAt)
	require.True(t, revoked.RevokedAt.Equal(base.Add(time.Minute)))

	_, err = s.RevokeSession(ctx, "missing", base)
	require.ErrorIs(t, err, persistence.ErrNotFound)

	require.NoError(t, s.DeleteExpiredSessions(ctx, base.Add(2*time.Hour)))
	_, err = s.GetSession(ctx, "sess-1")
	require.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestCourseRepository(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	instructor := seedUser(t, s, "ins", "instructor")
	seedUser(t, s, "stu", "student")

	require.NoError(t, s.CreateCourse(ctx, persistence.Course{
		ID: "CS101", Title: "Intro", Credits: 3, Capacity: 2, InstructorID: &instructor.ID, CreatedAt: base, UpdatedAt: base,
	}))
	taught, err := s.ListCourses(ctx, persistence.CourseFilter{InstructorID: "ins"})
	require.NoError(t, err)
	require.Len(t, taught, 1)

	enrollment := persistence.Enrollment{ID: "enr-1", StudentID: "stu", CourseID: "CS101", Status: "enrolled", CreatedAt: base, UpdatedAt: base}
	require.NoError(t, s.CreateEnrollment(ctx, enrollment))

	dup := enrollment
	dup.ID = "enr-2"
	require.ErrorIs(t, s.CreateEnrollment(ctx, dup), persistence.ErrDuplicate, "one active enrollment per course")

	grade := "A-"
	enrollment.Status = "completed"
	enrollment.Grade = &grade
	require.NoError(t, s.UpdateEnrollment(ctx, enrollment))

	completed, err := s.ListEnrollments(ctx, persistence.EnrollmentFilter{StudentID: "stu", Status: "completed"})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	require.Equal(t, "A-", *completed[0].Grade)

	request := persistence.CourseRequest{ID: "req-1", StudentID: "stu", CourseID: "CS101", Kind: "add", Status: "pending", CreatedAt: base, UpdatedAt: base}
	require.NoError(t, s.CreateCourseRequest(ctx, request))
	second := request
	second.ID = "req-2"
	require.ErrorIs(t, s.CreateCourseRequest(ctx, second), persistence.ErrDuplicate, "one pending request per course")

	pending, err := s.ListCourseRequests(ctx, persistence.CourseRequestFilter{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending, 1)
}

func TestAssignmentRepository(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	seedUser(t, s, "ins", "instructor")
	seedUser(t, s, "stu", "student")
	require.NoError(t, s.CreateCourse(ctx, persistence.Course{ID: "CS101", Title: "Intro", Credits: 3, Capacity: 10, CreatedAt: base, UpdatedAt: base}))

	due := base.Add(72 * time.Hour)
	require.NoError(t, s.CreateAssignment(ctx, persistence.Assignment{
		ID: "as-1", CourseID: "CS101", Title: "Homework 1", DueAt: &due, CreatedBy: "ins", CreatedAt: base, UpdatedAt: base,
	}))

	first, err := s.UpsertSubmission(ctx, persistence.Submission{
		ID: "sub-1", AssignmentID: "as-1", StudentID: "stu", Content: "v1", SubmittedAt: base, UpdatedAt: base,
	})
	require.NoError(t, err)

	score := 88
	first.Score = &score
	first.Feedback = "good"
	first.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, s.UpdateSubmission(ctx, first))

	resubmitted, err := s.UpsertSubmission(ctx, persistence.Submission{
		ID: "sub-2", AssignmentID: "as-1", StudentID: "stu", Content: "v2", SubmittedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, "sub-1", resubmitted.ID)
	require.Equal(t, "v2", resubmitted.Content)
	require.Nil(t, resubmitted.Score)
	require.Empty(t, resubmitted.Feedback)

	outOfRange := 101
	resubmitted.Score = &outOfRange
	require.ErrorIs(t, s.UpdateSubmission(ctx, resubmitted), persistence.ErrConstraintViolation)

	assignments, err := s.ListAssignments(ctx, "CS101")
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.NotNil(t, assignments[0].DueAt)
	require.True(t, assignments[0].DueAt.Equal(due))
}

func TestAttributeRepositoryAndStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	seedUser(t, s, "stu", "student")
	seedUser(t, s, "adv", "advisor")
	seedClassroom(t, s, "CL101")

	require.NoError(t, s.SetAttributes(ctx, "user", "stu", map[string]string{"major": "CS", "year": "2"}, base))
	require.NoError(t, s.SetAttributes(ctx, "user", "stu", map[string]string{"year": "", "minor": "Math"}, base))

	attrs, err := s.ListAttributes(ctx, "user", "stu")
	require.NoError(t, err)
	require.Len(t, attrs, 2)
	require.Equal(t, "major", attrs[0].Name)
	require.Equal(t, "minor", attrs[1].Name)

	_, err = s.CreateBooking(ctx, newBooking("CL101", "stu", "09:00", "10:00"))
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.UsersByRole["student"])
	require.Equal(t, 1, stats.UsersByRole["advisor"])
	require.Equal(t, 1, stats.BookingsByStatus["pending"])
	require.Zero(t, stats.Courses)

	require.NoError(t, s.DeleteUser(ctx, "stu"))
	attrs, err = s.ListAttributes(ctx, "user", "stu")
	require.NoError(t, err)
	require.Empty(t, attrs)
}

func TestErrorMapper(t *testing.T) {
	mapper := NewErrorMapper()
	require.NoError(t, mapper.MapError(nil))
	require.ErrorIs(t, mapper.MapError(errors.New("constraint failed: FOREIGN KEY constraint failed (787)")), persistence.ErrForeignKeyViolation)
	require.ErrorIs(t, mapper.MapError(errors.New("UNIQUE constraint failed: users.email")), persistence.ErrDuplicate)
	require.ErrorIs(t, mapper.MapError(errors.New("CHECK constraint failed: capacity > 0")), persistence.ErrConstraintViolation)
	other := errors.New("disk I/O error")
	require.Equal(t, other, mapper.MapError(other))
}

func TestConfigDataSourceName(t *testing.T) {
	require.Equal(t, "file:portal.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", DefaultConfig("portal.db").dataSourceName())
	require.Equal(t, "file:portal.db?_pragma=foreign_keys(1)", Config{DSN: "file:portal.db?_pragma=foreign_keys(1)"}.dataSourceName())
}
