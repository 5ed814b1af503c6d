package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// AssignmentRepository captures the persistence operations for assignments and submissions.
// UpsertSubmission replaces an existing submission by the same student and clears its score.
type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, assignment Assignment) error
	GetAssignment(ctx context.Context, id string) (Assignment, error)
	ListAssignments(ctx context.Context, courseID string) ([]Assignment, error)
	UpsertSubmission(ctx context.Context, submission Submission) (Submission, error)
	UpdateSubmission(ctx context.Context, submission Submission) error
	GetSubmission(ctx context.Context, id string) (Submission, error)
	ListSubmissions(ctx context.Context, assignmentID string) ([]Submission, error)
}

// CourseAccess answers the course questions the assignment service needs.
type CourseAccess interface {
	GetCourse(ctx context.Context, courseID string) (Course, error)
	IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error)
}

const (
	minScore = 0
	maxScore = 100
)

var (
	errAssignmentNotFound = newDomainError(ErrNotFound, "Assignment not found.")
	errSubmissionNotFound = newDomainError(ErrNotFound, "Submission not found.")
)

// AssignmentService manages coursework and submissions.
type AssignmentService struct {
	assignments AssignmentRepository
	courses     CourseAccess
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAssignmentService constructs an assignment service.
func NewAssignmentService(assignments AssignmentRepository, courses CourseAccess, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AssignmentService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AssignmentService{
		assignments: assignments,
		courses:     courses,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *AssignmentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AssignmentService", operation, attrs...)
}

func (s *AssignmentService) ensureConfigured() error {
	if s == nil {
		return fmt.Errorf("AssignmentService is nil")
	}
	if s.assignments == nil || s.courses == nil {
		return fmt.Errorf("assignment dependencies not configured")
	}
	return nil
}

// CreateAssignment publishes an assignment for a course the principal teaches.
func (s *AssignmentService) CreateAssignment(ctx context.Context, principal Principal, courseID string, input AssignmentInput) (assignment Assignment, err error) {
	if err = s.ensureConfigured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "CreateAssignment", "principal_id", principal.UserID, "course_id", courseID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create assignment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("assignment_id", assignment.ID).InfoContext(ctx, "assignment created")
	}()

	if err = authorize(principal, CapTeachCourses); err != nil {
		return
	}

	var course Course
	course, err = s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return
	}
	if !teaches(principal, course) {
		err = ErrUnauthorized
		return
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		err = fieldError("title", "title is required")
		return
	}

	now := s.now()
	assignment = Assignment{
		ID:          s.idGenerator(),
		CourseID:    course.ID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		DueAt:       input.DueAt,
		CreatedBy:   principal.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err = s.assignments.CreateAssignment(ctx, assignment); err != nil {
		assignment = Assignment{}
		err = mapAssignmentRepoError(err)
	}
	return
}

// ListAssignments returns a course's assignments to its instructor, administrators
// and enrolled students.
func (s *AssignmentService) ListAssignments(ctx context.Context, principal Principal, courseID string) ([]Assignment, error) {
	if err := s.ensureConfigured(); err != nil {
		return nil, err
	}

	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeCourseMember(ctx, principal, course); err != nil {
		return nil, err
	}

	assignments, err := s.assignments.ListAssignments(ctx, course.ID)
	if err != nil {
		return nil, mapAssignmentRepoError(err)
	}
	return assignments, nil
}

// SubmitAssignment stores the calling student's answer, replacing an earlier one.
func (s *AssignmentService) SubmitAssignment(ctx context.Context, principal Principal, assignmentID, content string) (submission Submission, err error) {
	if err = s.ensureConfigured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "SubmitAssignment", "principal_id", principal.UserID, "assignment_id", assignmentID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to submit assignment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("submission_id", submission.ID).InfoContext(ctx, "assignment submitted")
	}()

	if err = authorize(principal, CapSubmitWork); err != nil {
		return
	}

	var assignment Assignment
	assignment, err = s.assignments.GetAssignment(ctx, assignmentID)
	if err != nil {
		err = mapAssignmentRepoError(err)
		return
	}

	var enrolled bool
	enrolled, err = s.courses.IsEnrolled(ctx, principal.UserID, assignment.CourseID)
	if err != nil {
		return
	}
	if !enrolled {
		err = ErrUnauthorized
		return
	}

	content = strings.TrimSpace(content)
	if content == "" {
		err = fieldError("content", "content is required")
		return
	}

	now := s.now()
	submission, err = s.assignments.UpsertSubmission(ctx, Submission{
		ID:           s.idGenerator(),
		AssignmentID: assignment.ID,
		StudentID:    principal.UserID,
		Content:      content,
		SubmittedAt:  now,
		UpdatedAt:    now,
	})
	if err != nil {
		submission = Submission{}
		err = mapSubmissionRepoError(err)
	}
	return
}

// ListSubmissions returns every submission to the course's instructor, and only
// the caller's own submission to a student.
func (s *AssignmentService) ListSubmissions(ctx context.Context, principal Principal, assignmentID string) ([]Submission, error) {
	if err := s.ensureConfigured(); err != nil {
		return nil, err
	}

	assignment, err := s.assignments.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, mapAssignmentRepoError(err)
	}
	course, err := s.courses.GetCourse(ctx, assignment.CourseID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeCourseMember(ctx, principal, course); err != nil {
		return nil, err
	}

	submissions, err := s.assignments.ListSubmissions(ctx, assignment.ID)
	if err != nil {
		return nil, mapSubmissionRepoError(err)
	}
	if teaches(principal, course) {
		return submissions, nil
	}

	own := make([]Submission, 0, 1)
	for _, submission := range submissions {
		if submission.StudentID == principal.UserID {
			own = append(own, submission)
		}
	}
	return own, nil
}

// ScoreSubmission records a score between 0 and 100 and optional feedback.
func (s *AssignmentService) ScoreSubmission(ctx context.Context, params ScoreSubmissionParams) (submission Submission, err error) {
	if err = s.ensureConfigured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ScoreSubmission", "principal_id", params.Principal.UserID, "submission_id", params.SubmissionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to score submission", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "submission scored")
	}()

	if err = authorize(params.Principal, CapTeachCourses); err != nil {
		return
	}
	if params.Score < minScore || params.Score > maxScore {
		err = fieldError("score", "score must be between 0 and 100")
		return
	}

	var current Submission
	current, err = s.assignments.GetSubmission(ctx, params.SubmissionID)
	if err != nil {
		err = mapSubmissionRepoError(err)
		return
	}
	var assignment Assignment
	assignment, err = s.assignments.GetAssignment(ctx, current.AssignmentID)
	if err != nil {
		err = mapAssignmentRepoError(err)
		return
	}
	var course Course
	course, err = s.courses.GetCourse(ctx, assignment.CourseID)
	if err != nil {
		return
	}
	if !teaches(params.Principal, course) {
		err = ErrUnauthorized
		return
	}

	score := params.Score
	current.Score = &score
	current.Feedback = strings.TrimSpace(params.Feedback)
	current.UpdatedAt = s.now()
	if err = s.assignments.UpdateSubmission(ctx, current); err != nil {
		err = mapSubmissionRepoError(err)
		return
	}
	submission = current
	return
}

func (s *AssignmentService) authorizeCourseMember(ctx context.Context, principal Principal, course Course) error {
	if principal.UserID == "" {
		return ErrUnauthorized
	}
	if teaches(principal, course) {
		return nil
	}
	enrolled, err := s.courses.IsEnrolled(ctx, principal.UserID, course.ID)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrUnauthorized
	}
	return nil
}

func mapAssignmentRepoError(err error) error {
	mapped := mapRepoError(err)
	if mapped == ErrNotFound {
		return errAssignmentNotFound
	}
	return mapped
}

func mapSubmissionRepoError(err error) error {
	mapped := mapRepoError(err)
	if mapped == ErrNotFound {
		return errSubmissionNotFound
	}
	return mapped
}
