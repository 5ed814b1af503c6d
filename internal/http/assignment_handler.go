package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/campus-portal/internal/application"
)

type assignmentService interface {
	CreateAssignment(ctx context.Context, principal application.Principal, courseID string, input application.AssignmentInput) (application.Assignment, error)
	ListAssignments(ctx context.Context, principal application.Principal, courseID string) ([]application.Assignment, error)
	SubmitAssignment(ctx context.Context, principal application.Principal, assignmentID, content string) (application.Submission, error)
	ListSubmissions(ctx context.Context, principal application.Principal, assignmentID string) ([]application.Submission, error)
	ScoreSubmission(ctx context.Context, params application.ScoreSubmissionParams) (application.Submission, error)
}

// AssignmentHandler serves coursework, submissions and scoring.
type AssignmentHandler struct {
	service   assignmentService
	responder responder
	logger    *slog.Logger
}

func NewAssignmentHandler(service assignmentService, logger *slog.Logger) *AssignmentHandler {
	base := defaultLogger(logger)
	return &AssignmentHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AssignmentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AssignmentHandler", operation, attrs...)
}

func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	courseID := pathParam(r, "id")
	principal, _ := PrincipalFromContext(r.Context())

	var req assignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "course_id", courseID, "error_kind", requestErrorKind(err)).ErrorContext(r.Context(), "failed to decode assignment", "error", err)
		h.responder.writeRequestValidation(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "course_id", courseID)
	assignment, err := h.service.CreateAssignment(r.Context(), principal, courseID, application.AssignmentInput{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		DueAt:       req.DueAt,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "assignment creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("assignment_id", assignment.ID).InfoContext(r.Context(), "assignment created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, assignmentResponse{Assignment: toAssignmentDTO(assignment)})
}

func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	courseID := pathParam(r, "id")
	principal, _ := PrincipalFromContext(r.Context())
	assignments, err := h.service.ListAssignments(r.Context(), principal, courseID)
	if err != nil {
		h.log(r.Context(), "List", "principal_id", principal.UserID, "course_id", courseID).ErrorContext(r.Context(), "assignment list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]assignmentDTO, 0, len(assignments))
	for _, assignment := range assignments {
		out = append(out, toAssignmentDTO(assignment))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAssignmentsResponse{Assignments: out})
}

func (h *AssignmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	assignmentID := pathParam(r, "id")
	principal, _ := PrincipalFromContext(r.Context())

	var req submissionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Submit", "principal_id", principal.UserID, "assignment_id", assignmentID, "error_kind", requestErrorKind(err)).ErrorContext(r.Context(), "failed to decode submission", "error", err)
		h.responder.writeRequestValidation(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Submit", "principal_id", principal.UserID, "assignment_id", assignmentID)
	submission, err := h.service.SubmitAssignment(r.Context(), principal, assignmentID, req.Content)
	if err != nil {
		logger.ErrorContext(r.Context(), "submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("submission_id", submission.ID).InfoContext(r.Context(), "assignment submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, submissionResponse{Submission: toSubmissionDTO(submission)})
}

func (h *AssignmentHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	assignmentID := pathParam(r, "id")
	principal, _ := PrincipalFromContext(r.Context())
	submissions, err := h.service.ListSubmissions(r.Context(), principal, assignmentID)
	if err != nil {
		h.log(r.Context(), "ListSubmissions", "principal_id", principal.UserID, "assignment_id", assignmentID).ErrorContext(r.Context(), "submission list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]submissionDTO, 0, len(submissions))
	for _, submission := range submissions {
		out = append(out, toSubmissionDTO(submission))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSubmissionsResponse{Submissions: out})
}

func (h *AssignmentHandler) Score(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	submissionID := pathParam(r, "id")
	principal, _ := PrincipalFromContext(r.Context())

	var req scoreRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Score", "principal_id", principal.UserID, "submission_id", submissionID, "error_kind", requestErrorKind(err)).ErrorContext(r.Context(), "failed to decode score", "error", err)
		h.responder.writeRequestValidation(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Score", "principal_id", principal.UserID, "submission_id", submissionID)
	submission, err := h.service.ScoreSubmission(r.Context(), application.ScoreSubmissionParams{
		Principal:    principal,
		SubmissionID: submissionID,
		Score:        *req.Score,
		Feedback:     strings.TrimSpace(req.Feedback),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "scoring failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "submission scored")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, submissionResponse{Submission: toSubmissionDTO(submission)})
}

type assignmentRequest struct {
	Title       string     `json:"title" validate:"required,notblank,max=200"`
	Description string     `json:"description" validate:"max=10000"`
	DueAt       *time.Time `json:"due_at"`
}

type submissionRequest struct {
	Content string `json:"content" validate:"required,notblank,max=100000"`
}

type scoreRequest struct {
	Score    *int   `json:"score" validate:"required,gte=0,lte=100"`
	Feedback string `json:"feedback" validate:"max=2000"`
}

type assignmentResponse struct {
	Assignment assignmentDTO `json:"assignment"`
}

type listAssignmentsResponse struct {
	Assignments []assignmentDTO `json:"assignments"`
}

type submissionResponse struct {
	Submission submissionDTO `json:"submission"`
}

type listSubmissionsResponse struct {
	Submissions []submissionDTO `json:"submissions"`
}

type assignmentDTO struct {
	ID          string  `json:"id"`
	CourseID    string  `json:"course_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueAt       *string `json:"due_at,omitempty"`
	CreatedBy   string  `json:"created_by"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type submissionDTO struct {
	ID           string `json:"id"`
	AssignmentID string `json:"assignment_id"`
	StudentID    string `json:"student_id"`
	Content      string `json:"content"`
	Score        *int   `json:"score,omitempty"`
	Feedback     string `json:"feedback,omitempty"`
	SubmittedAt  string `json:"submitted_at"`
	UpdatedAt    string `json:"updated_at"`
}

func toAssignmentDTO(assignment application.Assignment) assignmentDTO {
	return assignmentDTO{
		ID:          assignment.ID,
		CourseID:    assignment.CourseID,
		Title:       assignment.Title,
		Description: assignment.Description,
		DueAt:       formatOptionalTime(assignment.DueAt),
		CreatedBy:   assignment.CreatedBy,
		CreatedAt:   formatTime(assignment.CreatedAt),
		UpdatedAt:   formatTime(assignment.UpdatedAt),
	}
}

func toSubmissionDTO(submission application.Submission) submissionDTO {
	return submissionDTO{
		ID:           submission.ID,
		AssignmentID: submission.AssignmentID,
		StudentID:    submission.StudentID,
		Content:      submission.Content,
		Score:        submission.Score,
		Feedback:     submission.Feedback,
		SubmittedAt:  formatTime(submission.SubmittedAt),
		UpdatedAt:    formatTime(submission.UpdatedAt),
	}
}
