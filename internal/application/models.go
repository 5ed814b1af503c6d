package application

import (
	"time"

	"github.com/example/campus-portal/internal/booking"
)

// UserInput captures caller provided user attributes.
type UserInput struct {
	Email       string
	DisplayName string
	Role        string
	AdvisorID   *string
	// Password is required on create; on update an empty value keeps the current one.
	Password string
}

// User represents a portal account exposed by the application services.
type User struct {
	ID          string
	Email       string
	DisplayName string
	Role        Role
	AdvisorID   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// UpdateUserParams wraps the data required to update a user.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserInput
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	User    User
	Session Session
	Token   string
}

// RefreshSessionResult captures the outcome of extending a session.
type RefreshSessionResult struct {
	Session Session
	Token   string
}

// ClassroomInput captures caller provided classroom fields.
type ClassroomInput struct {
	ID       string
	Name     string
	Location string
	Capacity int
	Features []string
}

// Classroom is a bookable room.
type Classroom struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	Features  []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateClassroomParams wraps the data required to create a classroom.
type CreateClassroomParams struct {
	Principal Principal
	Input     ClassroomInput
}

// UpdateClassroomParams wraps the data required to update a classroom.
type UpdateClassroomParams struct {
	Principal   Principal
	ClassroomID string
	Input       ClassroomInput
}

// Booking is a reservation of a classroom on a date between two clock times.
type Booking struct {
	ID          int64
	ClassroomID string
	Date        string
	StartTime   string
	EndTime     string
	OwnerID     string
	OwnerRole   Role
	Purpose     string
	Status      booking.Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BookingInput captures the fields of a booking request.
type BookingInput struct {
	ClassroomID string
	Date        string
	StartTime   string
	EndTime     string
	Purpose     string
}

// BookingPatch carries the fields of a partial booking update. Nil fields keep
// their current value.
type BookingPatch struct {
	ClassroomID *string
	Date        *string
	StartTime   *string
	EndTime     *string
	Purpose     *string
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	Principal Principal
	Input     BookingInput
}

// UpdateBookingParams wraps the data required to update a booking.
type UpdateBookingParams struct {
	Principal Principal
	BookingID int64
	Patch     BookingPatch
}

// ChangeBookingStatusParams wraps the data required to review a booking.
type ChangeBookingStatusParams struct {
	Principal Principal
	BookingID int64
	Status    string
}

// AvailabilityQuery identifies a candidate slot.
type AvailabilityQuery struct {
	ClassroomID string
	Date        string
	StartTime   string
	EndTime     string
}

// ListBookingsParams wraps booking listing filters.
type ListBookingsParams struct {
	Principal   Principal
	ClassroomID string
	Date        string
	Status      string
}

// BookingFilter narrows booking repository queries.
type BookingFilter struct {
	ClassroomID string
	Date        string
	OwnerID     string
	Status      string
}

// Course is a catalog entry students can enroll in.
type Course struct {
	ID           string
	Title        string
	Credits      int
	Capacity     int
	InstructorID *string
	Semester     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CourseInput captures caller provided course fields.
type CourseInput struct {
	ID           string
	Title        string
	Credits      int
	Capacity     int
	InstructorID *string
	Semester     string
}

// EnrollmentStatus is the state of a student's enrollment.
type EnrollmentStatus string

const (
	EnrollmentEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentDropped   EnrollmentStatus = "dropped"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

// Enrollment links a student to a course.
type Enrollment struct {
	ID        string
	StudentID string
	CourseID  string
	Status    EnrollmentStatus
	Grade     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EnrollmentFilter narrows enrollment queries.
type EnrollmentFilter struct {
	StudentID string
	CourseID  string
	Status    EnrollmentStatus
}

// RequestKind distinguishes add and drop requests.
type RequestKind string

const (
	RequestAdd  RequestKind = "add"
	RequestDrop RequestKind = "drop"
)

// RequestStatus is the review state of a course request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// CourseRequest is a student's add or drop request.
type CourseRequest struct {
	ID         string
	StudentID  string
	CourseID   string
	Kind       RequestKind
	Status     RequestStatus
	ReviewerID *string
	Note       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CourseRequestFilter narrows course request queries.
type CourseRequestFilter struct {
	StudentID string
	CourseID  string
	Status    RequestStatus
}

// SubmitCourseRequestParams wraps a student's add or drop request.
type SubmitCourseRequestParams struct {
	Principal Principal
	CourseID  string
	Kind      string
}

// ReviewCourseRequestParams wraps a reviewer's decision.
type ReviewCourseRequestParams struct {
	Principal Principal
	RequestID string
	Approve   bool
	Note      string
}

// GradeEnrollmentParams wraps a final grade assignment.
type GradeEnrollmentParams struct {
	Principal    Principal
	EnrollmentID string
	Grade        string
}

// StudentCourse joins an enrollment with its course.
type StudentCourse struct {
	Enrollment Enrollment
	Course     Course
}

// GPAReport summarises a student's completed coursework.
type GPAReport struct {
	StudentID        string
	GPA              float64
	CompletedCredits int
	CompletedCourses int
}

// Assignment is coursework published for a course.
type Assignment struct {
	ID          string
	CourseID    string
	Title       string
	Description string
	DueAt       *time.Time
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AssignmentInput captures caller provided assignment fields.
type AssignmentInput struct {
	Title       string
	Description string
	DueAt       *time.Time
}

// Submission is a student's answer to an assignment.
type Submission struct {
	ID           string
	AssignmentID string
	StudentID    string
	Content      string
	Score        *int
	Feedback     string
	SubmittedAt  time.Time
	UpdatedAt    time.Time
}

// ScoreSubmissionParams wraps an instructor's score.
type ScoreSubmissionParams struct {
	Principal    Principal
	SubmissionID string
	Score        int
	Feedback     string
}

// SystemStats aggregates counters for the admin dashboard.
type SystemStats struct {
	UsersByRole           map[string]int
	Courses               int
	ActiveEnrollments     int
	PendingCourseRequests int
	BookingsByStatus      map[string]int
}

// AdviseeSummary is one row of the advisor dashboard.
type AdviseeSummary struct {
	Student         User
	EnrolledCredits int
	PendingRequests int
}

// AdvisorOverview is the advisor dashboard read model.
type AdvisorOverview struct {
	Advisees        []AdviseeSummary
	PendingBookings []Booking
}
