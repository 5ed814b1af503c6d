package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/campus-portal/internal/grades"
)

// CourseFilter narrows course listings.
type CourseFilter struct {
	InstructorID string
}

// CourseRepository captures the persistence operations for the course catalog.
type CourseRepository interface {
	CreateCourse(ctx context.Context, course Course) error
	UpdateCourse(ctx context.Context, course Course) error
	GetCourse(ctx context.Context, id string) (Course, error)
	ListCourses(ctx context.Context, filter CourseFilter) ([]Course, error)
}

// EnrollmentRepository captures the persistence operations for enrollments.
type EnrollmentRepository interface {
	CreateEnrollment(ctx context.Context, enrollment Enrollment) error
	UpdateEnrollment(ctx context.Context, enrollment Enrollment) error
	GetEnrollment(ctx context.Context, id string) (Enrollment, error)
	ListEnrollments(ctx context.Context, filter EnrollmentFilter) ([]Enrollment, error)
}

// CourseRequestRepository captures the persistence operations for add/drop requests.
type CourseRequestRepository interface {
	CreateCourseRequest(ctx context.Context, request CourseRequest) error
	UpdateCourseRequest(ctx context.Context, request CourseRequest) error
	GetCourseRequest(ctx context.Context, id string) (CourseRequest, error)
	ListCourseRequests(ctx context.Context, filter CourseRequestFilter) ([]CourseRequest, error)
}

// UserDirectory resolves users referenced by other aggregates.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]User, error)
}

// CourseStore bundles the repositories the course service depends on.
type CourseStore struct {
	Courses     CourseRepository
	Enrollments EnrollmentRepository
	Requests    CourseRequestRepository
	Users       UserDirectory
}

var (
	errCourseNotFound        = newDomainError(ErrNotFound, "Course not found.")
	errEnrollmentNotFound    = newDomainError(ErrNotFound, "Enrollment not found.")
	errCourseRequestNotFound = newDomainError(ErrNotFound, "Course request not found.")
	errDuplicatePending      = newDomainError(ErrConflict, "A pending request for this course already exists.")
	errAlreadyEnrolled       = newDomainError(ErrConflict, "Student is already enrolled in this course.")
	errNotEnrolled           = newDomainError(ErrInvalidInput, "Student is not enrolled in this course.")
	errCourseFull            = newDomainError(ErrConflict, "Course is full.")
	errAlreadyReviewed       = newDomainError(ErrConflict, "Course request has already been reviewed.")
	errDroppedEnrollment     = newDomainError(ErrConflict, "Dropped enrollments cannot be graded.")
)

// CourseService manages the catalog, registration requests and grading.
type CourseService struct {
	tx          Transactor
	store       CourseStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewCourseService constructs a course service.
func NewCourseService(tx Transactor, store CourseStore, idGenerator func() string, now func() time.Time) *CourseService {
	return NewCourseServiceWithLogger(tx, store, idGenerator, now, nil)
}

// NewCourseServiceWithLogger constructs a course service with a specified logger.
func NewCourseServiceWithLogger(tx Transactor, store CourseStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CourseService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &CourseService{tx: tx, store: store, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *CourseService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CourseService", operation, attrs...)
}

func (s *CourseService) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.WithinTransaction(ctx, fn)
}

func (s *CourseService) ensureConfigured() error {
	if s == nil {
		return fmt.Errorf("CourseService is nil")
	}
	if s.store.Courses == nil || s.store.Enrollments == nil || s.store.Requests == nil || s.store.Users == nil {
		return fmt.Errorf("course repositories not configured")
	}
	return nil
}

// CreateCourse adds a course to the catalog.
func (s *CourseService) CreateCourse(ctx context.Context, principal Principal, input CourseInput) (course Course, err error) {
	if err = s.ensureConfigured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "CreateCourse", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create course", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("course_id", course.ID).InfoContext(ctx, "course created")
	}()

	if err = authorize(principal, CapManageCourses); err != nil {
		return
	}

	normalized := normalizeCourseInput(input)
	vErr := validateCourseInput(normalized)
	vErr.merge(s.validateInstructor(ctx, normalized.InstructorID))
	if vErr.HasErrors() {
		err = vErr
		return
	}

	id := normalized.ID
	if id == "" {
		id = s.idGenerator()
	}
	now := s.now()
	course = Course{
		ID:           id,
		Title:        normalized.Title,
		Credits:      normalized.Credits,
		Capacity:     normalized.Capacity,
		InstructorID: normalized.InstructorID,
		Semester:     normalized.Semester,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err = s.store.Courses.CreateCourse(ctx, course); err != nil {
		course = Course{}
		err = mapCourseRepoError(err)
	}
	return
}

// UpdateCourse replaces the editable fields of a course.
func (s *CourseService) UpdateCourse(ctx context.Context, principal Principal, courseID string, input CourseInput) (course Course, err error) {
	if err = s.ensureConfigured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "UpdateCourse", "principal_id", principal.UserID, "course_id", courseID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update course", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "course updated")
	}()

	if err = authorize(principal, CapManageCourses); err != nil {
		return
	}

	var existing Course
	existing, err = s.store.Courses.GetCourse(ctx, courseID)
	if err != nil {
		err = mapCourseRepoError(err)
		return
	}

	normalized := normalizeCourseInput(input)
	vErr := validateCourseInput(normalized)
	vErr.merge(s.validateInstructor(ctx, normalized.InstructorID))
	if vErr.HasErrors() {
		err = vErr
		return
	}

	existing.Title = normalized.Title
	existing.Credits = normalized.Credits
	existing.Capacity = normalized.Capacity
	existing.InstructorID = normalized.InstructorID
	existing.Semester = normalized.Semester
	existing.UpdatedAt = s.now()

	if err = s.store.Courses.UpdateCourse(ctx, existing); err != nil {
		err = mapCourseRepoError(err)
		return
	}
	course = existing
	return
}

// GetCourse returns a single catalog entry.
func (s *CourseService) GetCourse(ctx context.Context, courseID string) (Course, error) {
	if err := s.ensureConfigured(); err != nil {
		return Course{}, err
	}
	course, err := s.store.Courses.GetCourse(ctx, courseID)
	if err != nil {
		return Course{}, mapCourseRepoError(err)
	}
	return course, nil
}

// ListCourses returns the catalog, optionally limited to one instructor.
func (s *CourseService) ListCourses(ctx context.Context, filter CourseFilter) ([]Course, error) {
	if err := s.ensureConfigured(); err != nil {
		return nil, err
	}
	return s.store.Courses.ListCourses(ctx, filter)
}

// SubmitRequest files an add or drop request for the calling student.
func (s *CourseService) SubmitRequest(ctx context.Context, params SubmitCourseRequestParams) (request CourseRequest, err error) {
	if err = s.ensureConfigured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "SubmitRequest",
		"principal_id", params.Principal.UserID,
		"course_id", params.CourseID,
		"kind", params.Kind,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to submit course request", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("request_id", request.ID).InfoContext(ctx, "course request submitted")
	}()

	if err = authorize(params.Principal, CapEnrollCourses); err != nil {
		return
	}

	kind := RequestKind(strings.ToLower(strings.TrimSpace(params.Kind)))
	vErr := &ValidationError{}
	if kind != RequestAdd && kind != RequestDrop {
		vErr.add("kind", "kind must be add or drop")
	}
	courseID := strings.TrimSpace(params.CourseID)
	if courseID == "" {
		vErr.add("course_id", "course_id is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	studentID := params.Principal.UserID
	err = s.inTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.store.Courses.GetCourse(ctx, courseID); err != nil {
			return mapCourseRepoError(err)
		}

		pending, err := s.store.Requests.ListCourseRequests(ctx, CourseRequestFilter{
			StudentID: studentID,
			CourseID:  courseID,
			Status:    RequestPending,
		})
		if err != nil {
			return mapRepoError(err)
		}
		if len(pending) > 0 {
			return errDuplicatePending
		}

		_, enrolled, err := s.activeEnrollment(ctx, studentID, courseID)
		if err != nil {
			return err
		}
		switch {
		case kind == RequestAdd && enrolled:
			return errAlreadyEnrolled
		case kind == RequestDrop && !enrolled:
			return errNotEnrolled
		}

		now := s.now()
		request = CourseRequest{
			ID:        s.idGenerator(),
			StudentID: studentID,
			CourseID:  courseID,
			Kind:      kind,
			Status:    RequestPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.Requests.CreateCourseRequest(ctx, request); err != nil {
			return mapCourseRequestRepoError(err)
		}
		return nil
	})
	if err != nil {
		request = CourseRequest{}
	}
	return
}

// ReviewRequest approves or rejects a pending request. Advisors may only review
// requests from their own advisees.
func (s *CourseService) ReviewRequest(ctx context.Context, params ReviewCourseRequestParams) (request CourseRequest, err error) {
	if err = s.ensureConfigured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ReviewRequest",
		"principal_id", params.Principal.UserID,
		"request_id", params.RequestID,
		"approve", params.Approve,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to review course request", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", request.Status).InfoContext(ctx, "course request reviewed")
	}()

	if err = authorize(params.Principal, CapReviewRequests); err != nil {
		return
	}

	err = s.inTransaction(ctx, func(ctx context.Context) error {
		current, err := s.store.Requests.GetCourseRequest(ctx, params.RequestID)
		if err != nil {
			return mapCourseRequestRepoError(err)
		}
		if err := s.authorizeAdvisee(ctx, params.Principal, current.StudentID); err != nil {
			return err
		}
		if current.Status != RequestPending {
			return errAlreadyReviewed
		}

		now := s.now()
		if params.Approve {
			if err := s.applyRequest(ctx, current, now); err != nil {
				return err
			}
			current.Status = RequestApproved
		} else {
			current.Status = RequestRejected
		}

		reviewer := params.Principal.UserID
		current.ReviewerID = &reviewer
		current.Note = strings.TrimSpace(params.Note)
		current.UpdatedAt = now
		if err := s.store.Requests.UpdateCourseRequest(ctx, current); err != nil {
			return mapCourseRequestRepoError(err)
		}
		request = current
		return nil
	})
	if err != nil {
		request = CourseRequest{}
	}
	return
}

func (s *CourseService) applyRequest(ctx context.Context, request CourseRequest, now time.Time) error {
	enrollment, enrolled, err := s.activeEnrollment(ctx, request.StudentID, request.CourseID)
	if err != nil {
		return err
	}

	switch request.Kind {
	case RequestAdd:
		if enrolled {
			return errAlreadyEnrolled
		}
		course, err := s.store.Courses.GetCourse(ctx, request.CourseID)
		if err != nil {
			return mapCourseRepoError(err)
		}
		active, err := s.store.Enrollments.ListEnrollments(ctx, EnrollmentFilter{
			CourseID: request.CourseID,
			Status:   EnrollmentEnrolled,
		})
		if err != nil {
			return mapRepoError(err)
		}
		if len(active) >= course.Capacity {
			return errCourseFull
		}
		created := Enrollment{
			ID:        s.idGenerator(),
			StudentID: request.StudentID,
			CourseID:  request.CourseID,
			Status:    EnrollmentEnrolled,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.Enrollments.CreateEnrollment(ctx, created); err != nil {
			return mapEnrollmentRepoError(err)
		}
	case RequestDrop:
		if !enrolled {
			return errNotEnrolled
		}
		enrollment.Status = EnrollmentDropped
		enrollment.UpdatedAt = now
		if err := s.store.Enrollments.UpdateEnrollment(ctx, enrollment); err != nil {
			return mapEnrollmentRepoError(err)
		}
	default:
		return fmt.Errorf("unknown request kind %q", request.Kind)
	}
	return nil
}

// ListRequests returns the requests visible to the principal: a student's own,
// an advisor's advisees', or every request for administrators.
func (s *CourseService) ListRequests(ctx context.Context, principal Principal, status string) ([]CourseRequest, error) {
	if err := s.ensureConfigured(); err != nil {
		return nil, err
	}

	filter := CourseRequestFilter{}
	if status = strings.ToLower(strings.TrimSpace(status)); status != "" {
		switch RequestStatus(status) {
		case RequestPending, RequestApproved, RequestRejected:
			filter.Status = RequestStatus(status)
		default:
			return nil, fieldError("status", "status must be one of pending, approved, rejected")
		}
	}

	switch {
	case principal.IsAdmin():
		return s.store.Requests.ListCourseRequests(ctx, filter)
	case principal.Can(CapReviewRequests):
		advisees, err := s.store.Users.ListUsers(ctx, UserFilter{Role: RoleStudent, AdvisorID: principal.UserID})
		if err != nil {
			return nil, mapRepoError(err)
		}
		var out []CourseRequest
		for _, advisee := range advisees {
			filter.StudentID = advisee.ID
			requests, err := s.store.Requests.ListCourseRequests(ctx, filter)
			if err != nil {
				return nil, mapRepoError(err)
			}
			out = append(out, requests...)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
		return out, nil
	case principal.Can(CapEnrollCourses):
		filter.StudentID = principal.UserID
		return s.store.Requests.ListCourseRequests(ctx, filter)
	}
	return nil, ErrUnauthorized
}

// GradeEnrollment records a final letter grade and completes the enrollment.
func (s *CourseService) GradeEnrollment(ctx context.Context, params GradeEnrollmentParams) (enrollment Enrollment, err error) {
	if err = s.ensureConfigured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "GradeEnrollment",
		"principal_id", params.Principal.UserID,
		"enrollment_id", params.EnrollmentID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to grade enrollment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "enrollment graded")
	}()

	if err = authorize(params.Principal, CapTeachCourses); err != nil {
		return
	}

	letter := grades.NormalizeLetter(params.Grade)
	if _, ok := grades.PointsFor(letter); !ok {
		err = fieldError("grade", "grade must be a letter grade between A and F")
		return
	}

	err = s.inTransaction(ctx, func(ctx context.Context) error {
		current, err := s.store.Enrollments.GetEnrollment(ctx, params.EnrollmentID)
		if err != nil {
			return mapEnrollmentRepoError(err)
		}
		course, err := s.store.Courses.GetCourse(ctx, current.CourseID)
		if err != nil {
			return mapCourseRepoError(err)
		}
		if !teaches(params.Principal, course) {
			return ErrUnauthorized
		}
		if current.Status == EnrollmentDropped {
			return errDroppedEnrollment
		}

		current.Status = EnrollmentCompleted
		current.Grade = &letter
		current.UpdatedAt = s.now()
		if err := s.store.Enrollments.UpdateEnrollment(ctx, current); err != nil {
			return mapEnrollmentRepoError(err)
		}
		enrollment = current
		return nil
	})
	if err != nil {
		enrollment = Enrollment{}
	}
	return
}

// StudentCourses returns the calling student's enrollments joined with course data.
func (s *CourseService) StudentCourses(ctx context.Context, principal Principal) ([]StudentCourse, error) {
	if err := s.ensureConfigured(); err != nil {
		return nil, err
	}
	if err := authorize(principal, CapEnrollCourses); err != nil {
		return nil, err
	}
	return s.coursesFor(ctx, principal.UserID)
}

// StudentGPA computes the calling student's GPA over completed enrollments.
func (s *CourseService) StudentGPA(ctx context.Context, principal Principal) (GPAReport, error) {
	if err := s.ensureConfigured(); err != nil {
		return GPAReport{}, err
	}
	if err := authorize(principal, CapEnrollCourses); err != nil {
		return GPAReport{}, err
	}

	courses, err := s.coursesFor(ctx, principal.UserID)
	if err != nil {
		return GPAReport{}, err
	}

	report := GPAReport{StudentID: principal.UserID}
	history := make([]grades.Entry, 0, len(courses))
	for _, sc := range courses {
		if sc.Enrollment.Status != EnrollmentCompleted || sc.Enrollment.Grade == nil {
			continue
		}
		points, ok := grades.PointsFor(*sc.Enrollment.Grade)
		if !ok {
			continue
		}
		history = append(history, grades.Entry{Credits: sc.Course.Credits, Points: points})
		report.CompletedCourses++
		report.CompletedCredits += sc.Course.Credits
	}
	report.GPA = grades.GPA(history)
	return report, nil
}

// EnrolledCredits sums the credits of the student's active enrollments.
func (s *CourseService) EnrolledCredits(ctx context.Context, studentID string) (int, error) {
	if err := s.ensureConfigured(); err != nil {
		return 0, err
	}
	courses, err := s.coursesFor(ctx, studentID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, sc := range courses {
		if sc.Enrollment.Status == EnrollmentEnrolled {
			total += sc.Course.Credits
		}
	}
	return total, nil
}

// PendingRequestCount counts the student's requests awaiting review.
func (s *CourseService) PendingRequestCount(ctx context.Context, studentID string) (int, error) {
	if err := s.ensureConfigured(); err != nil {
		return 0, err
	}
	pending, err := s.store.Requests.ListCourseRequests(ctx, CourseRequestFilter{StudentID: studentID, Status: RequestPending})
	if err != nil {
		return 0, mapRepoError(err)
	}
	return len(pending), nil
}

// IsEnrolled reports whether the student holds an active enrollment in the course.
func (s *CourseService) IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	if err := s.ensureConfigured(); err != nil {
		return false, err
	}
	_, enrolled, err := s.activeEnrollment(ctx, studentID, courseID)
	return enrolled, err
}

func (s *CourseService) coursesFor(ctx context.Context, studentID string) ([]StudentCourse, error) {
	enrollments, err := s.store.Enrollments.ListEnrollments(ctx, EnrollmentFilter{StudentID: studentID})
	if err != nil {
		return nil, mapRepoError(err)
	}

	out := make([]StudentCourse, 0, len(enrollments))
	cache := make(map[string]Course, len(enrollments))
	for _, enrollment := range enrollments {
		course, ok := cache[enrollment.CourseID]
		if !ok {
			course, err = s.store.Courses.GetCourse(ctx, enrollment.CourseID)
			if err != nil {
				return nil, mapCourseRepoError(err)
			}
			cache[enrollment.CourseID] = course
		}
		out = append(out, StudentCourse{Enrollment: enrollment, Course: course})
	}
	return out, nil
}

func (s *CourseService) activeEnrollment(ctx context.Context, studentID, courseID string) (Enrollment, bool, error) {
	active, err := s.store.Enrollments.ListEnrollments(ctx, EnrollmentFilter{
		StudentID: studentID,
		CourseID:  courseID,
		Status:    EnrollmentEnrolled,
	})
	if err != nil {
		return Enrollment{}, false, mapRepoError(err)
	}
	if len(active) == 0 {
		return Enrollment{}, false, nil
	}
	return active[0], true, nil
}

func (s *CourseService) authorizeAdvisee(ctx context.Context, principal Principal, studentID string) error {
	if principal.IsAdmin() {
		return nil
	}
	student, err := s.store.Users.GetUser(ctx, studentID)
	if err != nil {
		return mapUserRepoError(err)
	}
	if student.AdvisorID == nil || *student.AdvisorID != principal.UserID {
		return ErrUnauthorized
	}
	return nil
}

func (s *CourseService) validateInstructor(ctx context.Context, instructorID *string) *ValidationError {
	vErr := &ValidationError{}
	if instructorID == nil {
		return vErr
	}
	instructor, err := s.store.Users.GetUser(ctx, *instructorID)
	if err != nil {
		if errors.Is(mapRepoError(err), ErrNotFound) {
			vErr.add("instructor_id", "instructor_id must reference an existing instructor")
			return vErr
		}
		vErr.add("instructor_id", "instructor could not be verified")
		return vErr
	}
	if instructor.Role != RoleInstructor && instructor.Role != RoleAdmin {
		vErr.add("instructor_id", "instructor_id must reference an existing instructor")
	}
	return vErr
}

func teaches(principal Principal, course Course) bool {
	if principal.IsAdmin() {
		return true
	}
	return course.InstructorID != nil && *course.InstructorID == principal.UserID
}

func normalizeCourseInput(input CourseInput) CourseInput {
	return CourseInput{
		ID:           strings.TrimSpace(input.ID),
		Title:        strings.TrimSpace(input.Title),
		Credits:      input.Credits,
		Capacity:     input.Capacity,
		InstructorID: normalizeOptionalString(input.InstructorID),
		Semester:     strings.TrimSpace(input.Semester),
	}
}

func validateCourseInput(input CourseInput) *ValidationError {
	vErr := &ValidationError{}
	if input.Title == "" {
		vErr.add("title", "title is required")
	}
	if input.Credits < 0 {
		vErr.add("credits", "credits must not be negative")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	return vErr
}

func mapCourseRepoError(err error) error {
	mapped := mapRepoError(err)
	switch {
	case mapped == ErrNotFound:
		return errCourseNotFound
	case mapped == ErrAlreadyExists:
		return newDomainError(ErrAlreadyExists, "A course with this id already exists.")
	}
	return mapped
}

func mapEnrollmentRepoError(err error) error {
	mapped := mapRepoError(err)
	switch {
	case mapped == ErrNotFound:
		return errEnrollmentNotFound
	case mapped == ErrAlreadyExists:
		return errAlreadyEnrolled
	}
	return mapped
}

func mapCourseRequestRepoError(err error) error {
	mapped := mapRepoError(err)
	switch {
	case mapped == ErrNotFound:
		return errCourseRequestNotFound
	case mapped == ErrAlreadyExists:
		return errDuplicatePending
	}
	return mapped
}
