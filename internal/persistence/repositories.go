package persistence

import (
	"context"
	"time"
)

// Transactor runs fn inside a storage transaction. Repository calls made
// with the context passed to fn join that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role      string
	AdvisorID string
}

// UserRepository exposes CRUD operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	UpdateSession(ctx context.Context, session Session) (Session, error)
	RevokeSession(ctx context.Context, id string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// ClassroomRepository exposes CRUD operations for classrooms.
type ClassroomRepository interface {
	CreateClassroom(ctx context.Context, classroom Classroom) error
	UpdateClassroom(ctx context.Context, classroom Classroom) error
	GetClassroom(ctx context.Context, id string) (Classroom, error)
	ListClassrooms(ctx context.Context) ([]Classroom, error)
	DeleteClassroom(ctx context.Context, id string) error
}

// BookingFilter narrows booking queries. Empty fields match everything.
type BookingFilter struct {
	ClassroomID string
	Date        string
	OwnerID     string
	Status      string
}

// BookingRepository stores classroom bookings.
type BookingRepository interface {
	// CreateBooking inserts the booking and returns it with its assigned ID.
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	UpdateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id int64) (Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
}

// CourseFilter narrows course listings.
type CourseFilter struct {
	InstructorID string
}

// CourseRepository exposes CRUD operations for courses.
type CourseRepository interface {
	CreateCourse(ctx context.Context, course Course) error
	UpdateCourse(ctx context.Context, course Course) error
	GetCourse(ctx context.Context, id string) (Course, error)
	ListCourses(ctx context.Context, filter CourseFilter) ([]Course, error)
}

// EnrollmentFilter narrows enrollment listings.
type EnrollmentFilter struct {
	StudentID string
	CourseID  string
	Status    string
}

// EnrollmentRepository stores course enrollments.
type EnrollmentRepository interface {
	CreateEnrollment(ctx context.Context, enrollment Enrollment) error
	UpdateEnrollment(ctx context.Context, enrollment Enrollment) error
	GetEnrollment(ctx context.Context, id string) (Enrollment, error)
	ListEnrollments(ctx context.Context, filter EnrollmentFilter) ([]Enrollment, error)
}

// CourseRequestFilter narrows course request listings.
type CourseRequestFilter struct {
	StudentID string
	CourseID  string
	Status    string
}

// CourseRequestRepository stores add/drop requests.
type CourseRequestRepository interface {
	CreateCourseRequest(ctx context.Context, request CourseRequest) error
	UpdateCourseRequest(ctx context.Context, request CourseRequest) error
	GetCourseRequest(ctx context.Context, id string) (CourseRequest, error)
	ListCourseRequests(ctx context.Context, filter CourseRequestFilter) ([]CourseRequest, error)
}

// AssignmentRepository stores assignments and their submissions.
type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, assignment Assignment) error
	GetAssignment(ctx context.Context, id string) (Assignment, error)
	ListAssignments(ctx context.Context, courseID string) ([]Assignment, error)
	// UpsertSubmission stores the student's submission, replacing any earlier one.
	UpsertSubmission(ctx context.Context, submission Submission) (Submission, error)
	UpdateSubmission(ctx context.Context, submission Submission) error
	GetSubmission(ctx context.Context, id string) (Submission, error)
	ListSubmissions(ctx context.Context, assignmentID string) ([]Submission, error)
}

// AttributeRepository stores entity attribute bags.
type AttributeRepository interface {
	ListAttributes(ctx context.Context, entityType, entityID string) ([]Attribute, error)
	// SetAttributes upserts values; an empty value deletes the attribute.
	SetAttributes(ctx context.Context, entityType, entityID string, values map[string]string, updatedAt time.Time) error
}

// StatsRepository computes dashboard counters.
type StatsRepository interface {
	Stats(ctx context.Context) (Stats, error)
}
