package testfixtures

import (
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/example/campus-portal/internal/application"
	"github.com/example/campus-portal/internal/booking"
	"github.com/example/campus-portal/internal/persistence"
)

var (
	userCounter      uint64
	classroomCounter uint64
	courseCounter    uint64
	sessionCounter   uint64
)

// Monday of the first week of the spring semester.
var referenceTime = time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns ReferenceTime as a booking date.
func ReferenceDate() string {
	return referenceTime.Format(time.DateOnly)
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record that can be materialised
// for application or persistence tests.
type UserFixture struct {
	ID           string
	Email        string
	DisplayName  string
	Role         application.Role
	AdvisorID    *string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic student fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@campus.example.edu", id),
		DisplayName:  fmt.Sprintf("User %03d", idx),
		Role:         application.RoleStudent,
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) { f.ID = id }
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) { f.Email = email }
}

// WithUserRole sets the portal role.
func WithUserRole(role application.Role) UserOption {
	return func(f *UserFixture) { f.Role = role }
}

// WithUserAdvisor assigns the student to an advisor.
func WithUserAdvisor(advisorID string) UserOption {
	return func(f *UserFixture) { f.AdvisorID = &advisorID }
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) { f.PasswordHash = hash }
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		Role:        f.Role,
		AdvisorID:   copyStringPtr(f.AdvisorID),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Credentials returns the fixture as application.UserCredentials.
func (f UserFixture) Credentials() application.UserCredentials {
	return application.UserCredentials{User: f.Application(), PasswordHash: f.PasswordHash}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, Role: f.Role}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		Role:         string(f.Role),
		AdvisorID:    copyStringPtr(f.AdvisorID),
		PasswordHash: f.PasswordHash,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// -------------------------- Classroom fixtures ---------------------------

// ClassroomFixture represents a deterministic classroom record.
type ClassroomFixture struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	Features  []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClassroomOption configures the generated classroom fixture.
type ClassroomOption func(*ClassroomFixture)

// NewClassroomFixture returns a deterministic classroom fixture with optional overrides.
func NewClassroomFixture(opts ...ClassroomOption) ClassroomFixture {
	idx := atomic.AddUint64(&classroomCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := ClassroomFixture{
		ID:        fmt.Sprintf("CL%03d", 100+idx),
		Name:      fmt.Sprintf("Classroom %03d", 100+idx),
		Location:  "Science Building",
		Capacity:  int(20 + idx%4*10),
		Features:  []string{"projector"},
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithClassroomID overrides the generated classroom ID.
func WithClassroomID(id string) ClassroomOption {
	return func(f *ClassroomFixture) { f.ID = id }
}

// WithClassroomCapacity overrides the generated capacity.
func WithClassroomCapacity(capacity int) ClassroomOption {
	return func(f *ClassroomFixture) { f.Capacity = capacity }
}

// WithClassroomFeatures replaces the feature tags.
func WithClassroomFeatures(features ...string) ClassroomOption {
	return func(f *ClassroomFixture) { f.Features = slices.Clone(features) }
}

// Application returns the fixture as an application.Classroom.
func (f ClassroomFixture) Application() application.Classroom {
	return application.Classroom{
		ID:        f.ID,
		Name:      f.Name,
		Location:  f.Location,
		Capacity:  f.Capacity,
		Features:  slices.Clone(f.Features),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Classroom.
func (f ClassroomFixture) Persistence() persistence.Classroom {
	return persistence.Classroom{
		ID:        f.ID,
		Name:      f.Name,
		Location:  f.Location,
		Capacity:  f.Capacity,
		Features:  slices.Clone(f.Features),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// --------------------------- Booking fixtures ----------------------------

// BookingFixture represents a deterministic booking. ID stays zero until the
// store assigns one.
type BookingFixture struct {
	ID          int64
	ClassroomID string
	Date        string
	StartTime   string
	EndTime     string
	OwnerID     string
	OwnerRole   application.Role
	Purpose     string
	Status      booking.Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a pending one hour student booking of classroom on
// the reference date.
func NewBookingFixture(classroomID, ownerID string, opts ...BookingOption) BookingFixture {
	fixture := BookingFixture{
		ClassroomID: classroomID,
		Date:        ReferenceDate(),
		StartTime:   "09:00",
		EndTime:     "10:00",
		OwnerID:     ownerID,
		OwnerRole:   application.RoleStudent,
		Purpose:     "study group",
		Status:      booking.StatusPending,
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingSlot sets the date and clock times.
func WithBookingSlot(date, start, end string) BookingOption {
	return func(f *BookingFixture) {
		f.Date = date
		f.StartTime = start
		f.EndTime = end
	}
}

// WithBookingStatus sets the stored status.
func WithBookingStatus(status booking.Status) BookingOption {
	return func(f *BookingFixture) { f.Status = status }
}

// WithBookingOwnerRole sets the role snapshotted at creation.
func WithBookingOwnerRole(role application.Role) BookingOption {
	return func(f *BookingFixture) { f.OwnerRole = role }
}

// Application returns the fixture as an application.Booking.
func (f BookingFixture) Application() application.Booking {
	return application.Booking{
		ID:          f.ID,
		ClassroomID: f.ClassroomID,
		Date:        f.Date,
		StartTime:   f.StartTime,
		EndTime:     f.EndTime,
		OwnerID:     f.OwnerID,
		OwnerRole:   f.OwnerRole,
		Purpose:     f.Purpose,
		Status:      f.Status,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Booking.
func (f BookingFixture) Persistence() persistence.Booking {
	return persistence.Booking{
		ID:          f.ID,
		ClassroomID: f.ClassroomID,
		Date:        f.Date,
		StartTime:   f.StartTime,
		EndTime:     f.EndTime,
		OwnerID:     f.OwnerID,
		OwnerRole:   string(f.OwnerRole),
		Purpose:     f.Purpose,
		Status:      string(f.Status),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// ---------------------------- Course fixtures ----------------------------

// CourseFixture represents a deterministic course.
type CourseFixture struct {
	ID           string
	Title        string
	Credits      int
	Capacity     int
	InstructorID *string
	Semester     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CourseOption configures the generated course fixture.
type CourseOption func(*CourseFixture)

// NewCourseFixture returns a three credit course with optional overrides.
func NewCourseFixture(opts ...CourseOption) CourseFixture {
	idx := atomic.AddUint64(&courseCounter, 1)
	fixture := CourseFixture{
		ID:        fmt.Sprintf("CS%03d", 100+idx),
		Title:     fmt.Sprintf("Computer Science %03d", 100+idx),
		Credits:   3,
		Capacity:  30,
		Semester:  "2025-spring",
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithCourseID overrides the generated course ID.
func WithCourseID(id string) CourseOption {
	return func(f *CourseFixture) { f.ID = id }
}

// WithCourseInstructor assigns the teaching instructor.
func WithCourseInstructor(instructorID string) CourseOption {
	return func(f *CourseFixture) { f.InstructorID = &instructorID }
}

// WithCourseCredits overrides the credit count.
func WithCourseCredits(credits int) CourseOption {
	return func(f *CourseFixture) { f.Credits = credits }
}

// WithCourseCapacity overrides the seat count.
func WithCourseCapacity(capacity int) CourseOption {
	return func(f *CourseFixture) { f.Capacity = capacity }
}

// Application returns the fixture as an application.Course.
func (f CourseFixture) Application() application.Course {
	return application.Course{
		ID:           f.ID,
		Title:        f.Title,
		Credits:      f.Credits,
		Capacity:     f.Capacity,
		InstructorID: copyStringPtr(f.InstructorID),
		Semester:     f.Semester,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Course.
func (f CourseFixture) Persistence() persistence.Course {
	return persistence.Course{
		ID:           f.ID,
		Title:        f.Title,
		Credits:      f.Credits,
		Capacity:     f.Capacity,
		InstructorID: copyStringPtr(f.InstructorID),
		Semester:     f.Semester,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// --------------------------- Session fixtures ----------------------------

// SessionFixture represents a deterministic session record.
type SessionFixture struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a session for userID valid for a day after ReferenceTime.
func NewSessionFixture(userID string, opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%03d", idx),
		UserID:    userID,
		ExpiresAt: referenceTime.Add(24 * time.Hour),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionExpiresAt overrides the expiry.
func WithSessionExpiresAt(t time.Time) SessionOption {
	return func(f *SessionFixture) { f.ExpiresAt = t }
}

// WithSessionRevokedAt marks the session revoked.
func WithSessionRevokedAt(t time.Time) SessionOption {
	return func(f *SessionFixture) { f.RevokedAt = &t }
}

// Application returns the fixture as an application.Session.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: copyTimePtr(f.RevokedAt),
	}
}

// Persistence returns the fixture as a persistence.Session.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: copyTimePtr(f.RevokedAt),
	}
}

func copyStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func copyTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
