package persistence

import "time"

// User represents a portal account.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	Role         string
	AdvisorID    *string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
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

// Booking is a reservation of a classroom for part of a day.
type Booking struct {
	ID          int64
	ClassroomID string
	Date        string
	StartTime   string
	EndTime     string
	OwnerID     string
	OwnerRole   string
	Purpose     string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
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

// Enrollment links a student to a course.
type Enrollment struct {
	ID        string
	StudentID string
	CourseID  string
	Status    string
	Grade     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CourseRequest is a student's add or drop request awaiting review.
type CourseRequest struct {
	ID         string
	StudentID  string
	CourseID   string
	Kind       string
	Status     string
	ReviewerID *string
	Note       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
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

// Attribute is one entry of an entity's free-form attribute bag.
type Attribute struct {
	EntityType string
	EntityID   string
	Name       string
	Value      string
	UpdatedAt  time.Time
}

// Stats aggregates system wide counters.
type Stats struct {
	UsersByRole           map[string]int
	Courses               int
	ActiveEnrollments     int
	PendingCourseRequests int
	BookingsByStatus      map[string]int
}
