package persistence_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/example/campus-portal/internal/application"
	"github.com/example/campus-portal/internal/booking"
	"github.com/example/campus-portal/internal/persistence"
	"github.com/example/campus-portal/internal/testfixtures"
)

func TestUserRepository(t *testing.T) {
	t.Parallel()

	t.Run("creates, reads, updates, and deletes users", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)

		advisor := testfixtures.NewUserFixture(testfixtures.WithUserRole(application.RoleAdvisor))
		harness.SeedUsers(t, advisor)

		user := testfixtures.NewUserFixture(
			testfixtures.WithUserEmail("alice@example.com"),
			testfixtures.WithUserAdvisor(advisor.ID),
			testfixtures.WithUserPasswordHash("hash"),
		).Persistence()
		if err := harness.Users.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		fetched, err := harness.Users.GetUser(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if fetched.Email != user.Email || fetched.Role != "student" || fetched.PasswordHash != "hash" {
			t.Fatalf("unexpected user data: %#v", fetched)
		}
		if fetched.AdvisorID == nil || *fetched.AdvisorID != advisor.ID {
			t.Fatalf("expected advisor %q, got %#v", advisor.ID, fetched.AdvisorID)
		}

		user.DisplayName = "Alice Updated"
		user.UpdatedAt = user.UpdatedAt.Add(time.Hour)
		if err := harness.Users.UpdateUser(ctx, user); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}

		fetched, err = harness.Users.GetUserByEmail(ctx, "ALICE@EXAMPLE.COM")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if fetched.DisplayName != "Alice Updated" || !fetched.UpdatedAt.Equal(user.UpdatedAt) {
			t.Fatalf("unexpected updated user: %#v", fetched)
		}

		advisees, err := harness.Users.ListUsers(ctx, persistence.UserFilter{AdvisorID: advisor.ID})
		if err != nil {
			t.Fatalf("ListUsers failed: %v", err)
		}
		if len(advisees) != 1 || advisees[0].ID != user.ID {
			t.Fatalf("unexpected advisees: %#v", advisees)
		}

		if err := harness.Users.DeleteUser(ctx, user.ID); err != nil {
			t.Fatalf("DeleteUser failed: %v", err)
		}
		if _, err := harness.Users.GetUser(ctx, user.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected persistence.ErrNotFound, got %v", err)
		}
		if err := harness.Users.DeleteUser(ctx, user.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected persistence.ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("clears advisor references when the advisor is deleted", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)

		advisor := testfixtures.NewUserFixture(testfixtures.WithUserRole(application.RoleAdvisor))
		student := testfixtures.NewUserFixture(testfixtures.WithUserAdvisor(advisor.ID))
		harness.SeedUsers(t, advisor, student)

		if err := harness.Users.DeleteUser(ctx, advisor.ID); err != nil {
			t.Fatalf("DeleteUser failed: %v", err)
		}
		fetched, err := harness.Users.GetUser(ctx, student.ID)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if fetched.AdvisorID != nil {
			t.Fatalf("expected advisor reference cleared, got %q", *fetched.AdvisorID)
		}
	})

	t.Run("rejects duplicate emails and unknown roles", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)

		first := testfixtures.NewUserFixture(testfixtures.WithUserEmail("dup@example.com"))
		harness.SeedUsers(t, first)

		second := testfixtures.NewUserFixture(testfixtures.WithUserEmail("dup@example.com")).Persistence()
		if err := harness.Users.CreateUser(ctx, second); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected persistence.ErrDuplicate, got %v", err)
		}

		invalid := testfixtures.NewUserFixture().Persistence()
		invalid.Role = "janitor"
		if err := harness.Users.CreateUser(ctx, invalid); !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected persistence.ErrConstraintViolation, got %v", err)
		}
	})
}

func TestClassroomRepository(t *testing.T) {
	t.Parallel()

	t.Run("creates, reads, updates, and deletes classrooms", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)

		owner := testfixtures.NewUserFixture(testfixtures.WithUserRole(application.RoleAdvisor))
		harness.SeedUsers(t, owner)

		classroom := testfixtures.NewClassroomFixture(
			testfixtures.WithClassroomID("LAB1"),
			testfixtures.WithClassroomFeatures("projector", "whiteboard"),
		).Persistence()
		if err := harness.Classrooms.CreateClassroom(ctx, classroom); err != nil {
			t.Fatalf("CreateClassroom failed: %v", err)
		}

		fetched, err := harness.Classrooms.GetClassroom(ctx, classroom.ID)
		if err != nil {
			t.Fatalf("GetClassroom failed: %v", err)
		}
		if !slices.Equal(fetched.Features, []string{"projector", "whiteboard"}) {
			t.Fatalf("unexpected features: %#v", fetched.Features)
		}

		classroom.Name = "Chemistry Lab"
		classroom.Capacity = 24
		classroom.Features = nil
		classroom.UpdatedAt = classroom.UpdatedAt.Add(time.Hour)
		if err := harness.Classrooms.UpdateClassroom(ctx, classroom); err != nil {
			t.Fatalf("UpdateClassroom failed: %v", err)
		}

		listed, err := harness.Classrooms.ListClassrooms(ctx)
		if err != nil {
			t.Fatalf("ListClassrooms failed: %v", err)
		}
		if len(listed) != 1 || listed[0].Name != "Chemistry Lab" || listed[0].Capacity != 24 || len(listed[0].Features) != 0 {
			t.Fatalf("unexpected classrooms: %#v", listed)
		}

		b := testfixtures.NewBookingFixture(classroom.ID, owner.ID).Persistence()
		created, err := harness.Bookings.CreateBooking(ctx, b)
		if err != nil {
			t.Fatalf("CreateBooking failed: %v", err)
		}
		if err := harness.Attributes.SetAttributes(ctx, "classroom", classroom.ID, map[string]string{"floor": "2"}, testfixtures.ReferenceTime()); err != nil {
			t.Fatalf("SetAttributes failed: %v", err)
		}

		if err := harness.Classrooms.DeleteClassroom(ctx, classroom.ID); err != nil {
			t.Fatalf("DeleteClassroom failed: %v", err)
		}
		if err := harness.Classrooms.DeleteClassroom(ctx, classroom.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected persistence.ErrNotFound, got %v", err)
		}
		if _, err := harness.Bookings.GetBooking(ctx, created.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected bookings removed with classroom, got %v", err)
		}
		attrs, err := harness.Attributes.ListAttributes(ctx, "classroom", classroom.ID)
		if err != nil {
			t.Fatalf("ListAttributes failed: %v", err)
		}
		if len(attrs) != 0 {
			t.Fatalf("expected attributes removed with classroom, got %#v", attrs)
		}
	})

	t.Run("rejects non-positive capacities", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)

		invalid := testfixtures.NewClassroomFixture(testfixtures.WithClassroomCapacity(0)).Persistence()
		if err := harness.Classrooms.CreateClassroom(ctx, invalid); !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected persistence.ErrConstraintViolation, got %v", err)
		}
	})

	t.Run("returns classrooms in deterministic order", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)

		harness.SeedClassrooms(t,
			testfixtures.NewClassroomFixture(testfixtures.WithClassroomID("B200")),
			testfixtures.NewClassroomFixture(testfixtures.WithClassroomID("A100")),
			testfixtures.NewClassroomFixture(testfixtures.WithClassroomID("A101")),
		)

		listed, err := harness.Classrooms.ListClassrooms(ctx)
		if err != nil {
			t.Fatalf("ListClassrooms failed: %v", err)
		}
		order := make([]string, 0, len(listed))
		for _, c := range listed {
			order = append(order, c.ID)
		}
		expected := []string{"A100", "A101", "B200"}
		if !slices.Equal(order, expected) {
			t.Fatalf("unexpected order: got %v want %v", order, expected)
		}
	})
}

func TestBookingFilters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	student := testfixtures.NewUserFixture()
	advisor := testfixtures.NewUserFixture(testfixtures.WithUserRole(application.RoleAdvisor))
	harness.SeedUsers(t, student, advisor)
	room := testfixtures.NewClassroomFixture()
	harness.SeedClassrooms(t, room)

	day := testfixtures.ReferenceDate()
	fixtures := []testfixtures.BookingFixture{
		testfixtures.NewBookingFixture(room.ID, student.ID, testfixtures.WithBookingSlot(day, "13:00", "14:00")),
		testfixtures.NewBookingFixture(room.ID, advisor.ID,
			testfixtures.WithBookingSlot(day, "09:00", "10:00"),
			testfixtures.WithBookingOwnerRole(application.RoleAdvisor),
			testfixtures.WithBookingStatus(booking.StatusApproved),
		),
		testfixtures.NewBookingFixture(room.ID, student.ID, testfixtures.WithBookingSlot("2025-03-04", "09:00", "10:00")),
	}
	for _, f := range fixtures {
		if _, err := harness.Bookings.CreateBooking(ctx, f.Persistence()); err != nil {
			t.Fatalf("CreateBooking failed: %v", err)
		}
	}

	sameDay, err := harness.Bookings.ListBookings(ctx, persistence.BookingFilter{ClassroomID: room.ID, Date: day})
	if err != nil {
		t.Fatalf("ListBookings failed: %v", err)
	}
	if len(sameDay) != 2 || sameDay[0].StartTime != "09:00" || sameDay[1].StartTime != "13:00" {
		t.Fatalf("expected day bookings ordered by start time, got %#v", sameDay)
	}

	owned, err := harness.Bookings.ListBookings(ctx, persistence.BookingFilter{OwnerID: student.ID})
	if err != nil {
		t.Fatalf("ListBookings failed: %v", err)
	}
	if len(owned) != 2 {
		t.Fatalf("expected 2 student bookings, got %d", len(owned))
	}

	pending, err := harness.Bookings.ListBookings(ctx, persistence.BookingFilter{Status: string(booking.StatusPending)})
	if err != nil {
		t.Fatalf("ListBookings failed: %v", err)
	}
	for _, b := range pending {
		if b.Status != string(booking.StatusPending) {
			t.Fatalf("unexpected status in pending listing: %#v", b)
		}
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending bookings, got %d", len(pending))
	}
}

func TestCourseRegistrationFilters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	instructor := testfixtures.NewUserFixture(testfixtures.WithUserRole(application.RoleInstructor))
	alice := testfixtures.NewUserFixture()
	bob := testfixtures.NewUserFixture()
	harness.SeedUsers(t, instructor, alice, bob)

	math := testfixtures.NewCourseFixture(testfixtures.WithCourseID("MATH200"), testfixtures.WithCourseInstructor(instructor.ID))
	art := testfixtures.NewCourseFixture(testfixtures.WithCourseID("ART110"))
	harness.SeedCourses(t, math, art)

	courses, err := harness.Courses.ListCourses(ctx, persistence.CourseFilter{})
	if err != nil {
		t.Fatalf("ListCourses failed: %v", err)
	}
	if len(courses) != 2 || courses[0].ID != "ART110" {
		t.Fatalf("expected courses ordered by id, got %#v", courses)
	}

	base := testfixtures.ReferenceTime()
	enrollments := []persistence.Enrollment{
		{ID: "enr-1", StudentID: alice.ID, CourseID: math.ID, Status: "enrolled", CreatedAt: base, UpdatedAt: base},
		{ID: "enr-2", StudentID: alice.ID, CourseID: art.ID, Status: "dropped", CreatedAt: base.Add(time.Minute), UpdatedAt: base},
		{ID: "enr-3", StudentID: bob.ID, CourseID: math.ID, Status: "enrolled", CreatedAt: base.Add(2 * time.Minute), UpdatedAt: base},
	}
	for _, e := range enrollments {
		if err := harness.Enrollments.CreateEnrollment(ctx, e); err != nil {
			t.Fatalf("CreateEnrollment(%s) failed: %v", e.ID, err)
		}
	}

	roster, err := harness.Enrollments.ListEnrollments(ctx, persistence.EnrollmentFilter{CourseID: math.ID, Status: "enrolled"})
	if err != nil {
		t.Fatalf("ListEnrollments failed: %v", err)
	}
	if len(roster) != 2 || roster[0].ID != "enr-1" || roster[1].ID != "enr-3" {
		t.Fatalf("unexpected roster: %#v", roster)
	}

	aliceAll, err := harness.Enrollments.ListEnrollments(ctx, persistence.EnrollmentFilter{StudentID: alice.ID})
	if err != nil {
		t.Fatalf("ListEnrollments failed: %v", err)
	}
	if len(aliceAll) != 2 {
		t.Fatalf("expected both of alice's enrollments, got %d", len(aliceAll))
	}

	reviewer := instructor.ID
	requests := []persistence.CourseRequest{
		{ID: "req-1", StudentID: alice.ID, CourseID: art.ID, Kind: "add", Status: "pending", CreatedAt: base, UpdatedAt: base},
		{ID: "req-2", StudentID: bob.ID, CourseID: art.ID, Kind: "add", Status: "approved", ReviewerID: &reviewer, Note: "ok", CreatedAt: base.Add(time.Minute), UpdatedAt: base},
	}
	for _, r := range requests {
		if err := harness.Requests.CreateCourseRequest(ctx, r); err != nil {
			t.Fatalf("CreateCourseRequest(%s) failed: %v", r.ID, err)
		}
	}

	byCourse, err := harness.Requests.ListCourseRequests(ctx, persistence.CourseRequestFilter{CourseID: art.ID})
	if err != nil {
		t.Fatalf("ListCourseRequests failed: %v", err)
	}
	if len(byCourse) != 2 {
		t.Fatalf("expected 2 requests for course, got %d", len(byCourse))
	}

	reviewed, err := harness.Requests.GetCourseRequest(ctx, "req-2")
	if err != nil {
		t.Fatalf("GetCourseRequest failed: %v", err)
	}
	if reviewed.ReviewerID == nil || *reviewed.ReviewerID != instructor.ID || reviewed.Note != "ok" {
		t.Fatalf("unexpected reviewed request: %#v", reviewed)
	}

	first := requests[0]
	first.Status = "rejected"
	first.ReviewerID = &reviewer
	if err := harness.Requests.UpdateCourseRequest(ctx, first); err != nil {
		t.Fatalf("UpdateCourseRequest failed: %v", err)
	}
	pending, err := harness.Requests.ListCourseRequests(ctx, persistence.CourseRequestFilter{Status: "pending"})
	if err != nil {
		t.Fatalf("ListCourseRequests failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending requests, got %#v", pending)
	}

	if err := harness.Requests.UpdateCourseRequest(ctx, persistence.CourseRequest{ID: "missing", Status: "approved", Kind: "add", UpdatedAt: base}); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected persistence.ErrNotFound, got %v", err)
	}
}

func TestSessionRepository(t *testing.T) {
	t.Parallel()

	t.Run("creates, refreshes, and revokes sessions", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)

		user := testfixtures.NewUserFixture()
		harness.SeedUsers(t, user)

		now := testfixtures.ReferenceTime()
		session := testfixtures.NewSessionFixture(user.ID).Persistence()
		created, err := harness.Sessions.CreateSession(ctx, session)
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if created.ID != session.ID || !created.ExpiresAt.Equal(session.ExpiresAt) {
			t.Fatalf("unexpected created session: %#v", created)
		}

		session.ExpiresAt = now.Add(48 * time.Hour)
		session.UpdatedAt = now.Add(6 * time.Hour)
		updated, err := harness.Sessions.UpdateSession(ctx, session)
		if err != nil {
			t.Fatalf("UpdateSession failed: %v", err)
		}
		if !updated.ExpiresAt.Equal(session.ExpiresAt) {
			t.Fatalf("expected extended expiry, got %v", updated.ExpiresAt)
		}

		revokedAt := now.Add(12 * time.Hour)
		revoked, err := harness.Sessions.RevokeSession(ctx, session.ID, revokedAt)
		if err != nil {
			t.Fatalf("RevokeSession failed: %v", err)
		}
		if revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(revokedAt) {
			t.Fatalf("expected revoked timestamp, got %#v", revoked.RevokedAt)
		}
	})

	t.Run("deletes only sessions expired at the reference time", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)

		user := testfixtures.NewUserFixture()
		harness.SeedUsers(t, user)

		now := testfixtures.ReferenceTime()
		expired := testfixtures.NewSessionFixture(user.ID, testfixtures.WithSessionExpiresAt(now.Add(-time.Minute))).Persistence()
		boundary := testfixtures.NewSessionFixture(user.ID, testfixtures.WithSessionExpiresAt(now)).Persistence()
		active := testfixtures.NewSessionFixture(user.ID, testfixtures.WithSessionExpiresAt(now.Add(time.Hour))).Persistence()
		for _, s := range []persistence.Session{expired, boundary, active} {
			if _, err := harness.Sessions.CreateSession(ctx, s); err != nil {
				t.Fatalf("CreateSession(%s) failed: %v", s.ID, err)
			}
		}

		if err := harness.Sessions.DeleteExpiredSessions(ctx, now); err != nil {
			t.Fatalf("DeleteExpiredSessions failed: %v", err)
		}

		for _, gone := range []string{expired.ID, boundary.ID} {
			if _, err := harness.Sessions.GetSession(ctx, gone); !errors.Is(err, persistence.ErrNotFound) {
				t.Fatalf("expected session %s pruned, got %v", gone, err)
			}
		}
		if _, err := harness.Sessions.GetSession(ctx, active.ID); err != nil {
			t.Fatalf("expected active session kept, got %v", err)
		}
	})

	t.Run("enforces foreign keys and reports missing sessions", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)

		now := testfixtures.ReferenceTime()
		foreign := testfixtures.NewSessionFixture("missing-user").Persistence()
		if _, err := harness.Sessions.CreateSession(ctx, foreign); !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected persistence.ErrForeignKeyViolation, got %v", err)
		}

		if _, err := harness.Sessions.UpdateSession(ctx, testfixtures.NewSessionFixture("nobody").Persistence()); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected persistence.ErrNotFound on update, got %v", err)
		}
		if _, err := harness.Sessions.RevokeSession(ctx, "unknown", now); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected persistence.ErrNotFound on revoke, got %v", err)
		}
	})
}

func TestAttributeRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	course := testfixtures.NewCourseFixture()
	harness.SeedCourses(t, course)

	now := testfixtures.ReferenceTime()
	if err := harness.Attributes.SetAttributes(ctx, "course", course.ID, map[string]string{"room": "A100", "syllabus": "v1"}, now); err != nil {
		t.Fatalf("SetAttributes failed: %v", err)
	}
	later := now.Add(time.Hour)
	if err := harness.Attributes.SetAttributes(ctx, "course", course.ID, map[string]string{"room": "", "syllabus": "v2"}, later); err != nil {
		t.Fatalf("SetAttributes failed: %v", err)
	}

	attrs, err := harness.Attributes.ListAttributes(ctx, "course", course.ID)
	if err != nil {
		t.Fatalf("ListAttributes failed: %v", err)
	}
	if len(attrs) != 1 {
		t.Fatalf("expected empty value to delete attribute, got %#v", attrs)
	}
	if attrs[0].Name != "syllabus" || attrs[0].Value != "v2" || !attrs[0].UpdatedAt.Equal(later) {
		t.Fatalf("unexpected attribute: %#v", attrs[0])
	}

	other, err := harness.Attributes.ListAttributes(ctx, "user", course.ID)
	if err != nil {
		t.Fatalf("ListAttributes failed: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected attributes scoped by entity type, got %#v", other)
	}
}
