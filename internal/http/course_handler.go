package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/campus-portal/internal/application"
)

type courseService interface {
	CreateCourse(ctx context.Context, principal application.Principal, input application.CourseInput) (application.Course, error)
	UpdateCourse(ctx context.Context, principal application.Principal, courseID string, input application.CourseInput) (application.Course, error)
	GetCourse(ctx context.Context, courseID string) (application.Course, error)
	ListCourses(ctx context.Context, filter application.CourseFilter) ([]application.Course, error)
	SubmitRequest(ctx context.Context, params application.SubmitCourseRequestParams) (application.CourseRequest, error)
	ReviewRequest(ctx context.Context, params application.ReviewCourseRequestParams) (application.CourseRequest, error)
	ListRequests(ctx context.Context, principal application.Principal, status string) ([]application.CourseRequest, error)
	GradeEnrollment(ctx context.Context, params application.GradeEnrollmentParams) (application.Enrollment, error)
	StudentCourses(ctx context.Context, principal application.Principal) ([]application.StudentCourse, error)
	StudentGPA(ctx context.Context, principal application.Principal) (application.GPAReport, error)
}

// CourseHandler serves the course catalog, registration requests and grading.
type CourseHandler struct {
	service   courseService
	responder responder
	logger    *slog.Logger
}

func NewCourseHandler(service courseService, logger *slog.Logger) *CourseHandler {
	base := defaultLogger(logger)
	return &CourseHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CourseHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CourseHandler", operation, attrs...)
}

func (h *CourseHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req courseRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", requestErrorKind(err)).ErrorContext(r.Context(), "failed to decode course request", "error", err)
		h.responder.writeRequestValidation(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)
	course, err := h.service.CreateCourse(r.Context(), principal, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "course creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("course_id", course.ID).InfoContext(r.Context(), "course created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, courseResponse{Course: toCourseDTO(course)})
}

func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	courseID := pathParam(r, "id")
	principal, _ := PrincipalFromContext(r.Context())

	var req courseRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "course_id", courseID, "error_kind", requestErrorKind(err)).ErrorContext(r.Context(), "failed to decode course update", "error", err)
		h.responder.writeRequestValidation(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "course_id", courseID)
	course, err := h.service.UpdateCourse(r.Context(), principal, courseID, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "course update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "course updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, courseResponse{Course: toCourseDTO(course)})
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	courseID := pathParam(r, "id")
	course, err := h.service.GetCourse(r.Context(), courseID)
	if err != nil {
		h.log(r.Context(), "Get", "course_id", courseID).ErrorContext(r.Context(), "course lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, courseResponse{Course: toCourseDTO(course)})
}

// List returns the catalog, optionally narrowed by ?instructor_id=.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	filter := application.CourseFilter{InstructorID: strings.TrimSpace(r.URL.Query().Get("instructor_id"))}
	logger := h.log(r.Context(), "List", "instructor_id", filter.InstructorID)

	courses, err := h.service.ListCourses(r.Context(), filter)
	if err != nil {
		logger.ErrorContext(r.Context(), "course list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listCoursesResponse{Courses: toCourseDTOs(courses)})
}

func (h *CourseHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req submitCourseRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "SubmitRequest", "principal_id", principal.UserID, "error_kind", requestErrorKind(err)).ErrorContext(r.Context(), "failed to decode course request submission", "error", err)
		h.responder.writeRequestValidation(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "SubmitRequest", "principal_id", principal.UserID, "course_id", req.CourseID, "kind", req.Kind)
	request, err := h.service.SubmitRequest(r.Context(), application.SubmitCourseRequestParams{
		Principal: principal,
		CourseID:  strings.TrimSpace(req.CourseID),
		Kind:      req.Kind,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "course request submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("request_id", request.ID).InfoContext(r.Context(), "course request submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, courseRequestResponse{Request: toCourseRequestDTO(request)})
}

func (h *CourseHandler) Decide(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	requestID := pathParam(r, "id")
	principal, _ := PrincipalFromContext(r.Context())

	var req decisionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Decide", "principal_id", principal.UserID, "course_request_id", requestID, "error_kind", requestErrorKind(err)).ErrorContext(r.Context(), "failed to decode decision", "error", err)
		h.responder.writeRequestValidation(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Decide", "principal_id", principal.UserID, "course_request_id", requestID, "decision", req.Decision)
	request, err := h.service.ReviewRequest(r.Context(), application.ReviewCourseRequestParams{
		Principal: principal,
		RequestID: requestID,
		Approve:   req.Decision == string(application.RequestApproved),
		Note:      strings.TrimSpace(req.Note),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "course request review failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "course request reviewed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, courseRequestResponse{Request: toCourseRequestDTO(request)})
}

// ListRequests returns the course requests visible to the caller, filtered by ?status=.
func (h *CourseHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	logger := h.log(r.Context(), "ListRequests", "principal_id", principal.UserID, "status", status)

	requests, err := h.service.ListRequests(r.Context(), principal, status)
	if err != nil {
		logger.ErrorContext(r.Context(), "course request list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]courseRequestDTO, 0, len(requests))
	for _, request := range requests {
		out = append(out, toCourseRequestDTO(request))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listCourseRequestsResponse{Requests: out})
}

func (h *CourseHandler) Grade(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	enrollmentID := pathParam(r, "id")
	principal, _ := PrincipalFromContext(r.Context())

	var req gradeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Grade", "principal_id", principal.UserID, "enrollment_id", enrollmentID, "error_kind", requestErrorKind(err)).ErrorContext(r.Context(), "failed to decode grade", "error", err)
		h.responder.writeRequestValidation(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Grade", "principal_id", principal.UserID, "enrollment_id", enrollmentID)
	enrollment, err := h.service.GradeEnrollment(r.Context(), application.GradeEnrollmentParams{
		Principal:    principal,
		EnrollmentID: enrollmentID,
		Grade:        req.Grade,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "grading failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "enrollment graded")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, enrollmentResponse{Enrollment: toEnrollmentDTO(enrollment)})
}

func (h *CourseHandler) StudentCourses(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	courses, err := h.service.StudentCourses(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "StudentCourses", "principal_id", principal.UserID).ErrorContext(r.Context(), "student course lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]studentCourseDTO, 0, len(courses))
	for _, sc := range courses {
		out = append(out, studentCourseDTO{Enrollment: toEnrollmentDTO(sc.Enrollment), Course: toCourseDTO(sc.Course)})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, studentCoursesResponse{Courses: out})
}

func (h *CourseHandler) StudentGPA(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	report, err := h.service.StudentGPA(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "StudentGPA", "principal_id", principal.UserID).ErrorContext(r.Context(), "gpa lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, gpaResponse{
		StudentID:        report.StudentID,
		GPA:              report.GPA,
		CompletedCredits: report.CompletedCredits,
		CompletedCourses: report.CompletedCourses,
	})
}

type courseRequest struct {
	ID           string  `json:"id" validate:"omitempty,max=32"`
	Title        string  `json:"title" validate:"required,notblank,max=200"`
	Credits      int     `json:"credits" validate:"gte=0,lte=30"`
	Capacity     int     `json:"capacity" validate:"required,gt=0"`
	InstructorID *string `json:"instructor_id"`
	Semester     string  `json:"semester" validate:"max=32"`
}

func (r courseRequest) toInput() application.CourseInput {
	return application.CourseInput{
		ID:           strings.TrimSpace(r.ID),
		Title:        strings.TrimSpace(r.Title),
		Credits:      r.Credits,
		Capacity:     r.Capacity,
		InstructorID: r.InstructorID,
		Semester:     strings.TrimSpace(r.Semester),
	}
}

type submitCourseRequest struct {
	CourseID string `json:"course_id" validate:"required,notblank"`
	Kind     string `json:"kind" validate:"required,oneof=add drop"`
}

type decisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Note     string `json:"note" validate:"max=500"`
}

type gradeRequest struct {
	Grade string `json:"grade" validate:"required,notblank"`
}

type courseResponse struct {
	Course courseDTO `json:"course"`
}

type listCoursesResponse struct {
	Courses []courseDTO `json:"courses"`
}

type courseRequestResponse struct {
	Request courseRequestDTO `json:"request"`
}

type listCourseRequestsResponse struct {
	Requests []courseRequestDTO `json:"requests"`
}

type enrollmentResponse struct {
	Enrollment enrollmentDTO `json:"enrollment"`
}

type studentCoursesResponse struct {
	Courses []studentCourseDTO `json:"courses"`
}

type gpaResponse struct {
	StudentID        string  `json:"student_id"`
	GPA              float64 `json:"gpa"`
	CompletedCredits int     `json:"completed_credits"`
	CompletedCourses int     `json:"completed_courses"`
}

type courseDTO struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Credits      int     `json:"credits"`
	Capacity     int     `json:"capacity"`
	InstructorID *string `json:"instructor_id,omitempty"`
	Semester     string  `json:"semester"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type courseRequestDTO struct {
	ID         string  `json:"id"`
	StudentID  string  `json:"student_id"`
	CourseID   string  `json:"course_id"`
	Kind       string  `json:"kind"`
	Status     string  `json:"status"`
	ReviewerID *string `json:"reviewer_id,omitempty"`
	Note       string  `json:"note,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

type enrollmentDTO struct {
	ID        string  `json:"id"`
	StudentID string  `json:"student_id"`
	CourseID  string  `json:"course_id"`
	Status    string  `json:"status"`
	Grade     *string `json:"grade,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type studentCourseDTO struct {
	Enrollment enrollmentDTO `json:"enrollment"`
	Course     courseDTO     `json:"course"`
}

func toCourseDTO(course application.Course) courseDTO {
	return courseDTO{
		ID:           course.ID,
		Title:        course.Title,
		Credits:      course.Credits,
		Capacity:     course.Capacity,
		InstructorID: course.InstructorID,
		Semester:     course.Semester,
		CreatedAt:    formatTime(course.CreatedAt),
		UpdatedAt:    formatTime(course.UpdatedAt),
	}
}

func toCourseDTOs(courses []application.Course) []courseDTO {
	out := make([]courseDTO, 0, len(courses))
	for _, course := range courses {
		out = append(out, toCourseDTO(course))
	}
	return out
}

func toCourseRequestDTO(request application.CourseRequest) courseRequestDTO {
	return courseRequestDTO{
		ID:         request.ID,
		StudentID:  request.StudentID,
		CourseID:   request.CourseID,
		Kind:       string(request.Kind),
		Status:     string(request.Status),
		ReviewerID: request.ReviewerID,
		Note:       request.Note,
		CreatedAt:  formatTime(request.CreatedAt),
		UpdatedAt:  formatTime(request.UpdatedAt),
	}
}

func toEnrollmentDTO(enrollment application.Enrollment) enrollmentDTO {
	return enrollmentDTO{
		ID:        enrollment.ID,
		StudentID: enrollment.StudentID,
		CourseID:  enrollment.CourseID,
		Status:    string(enrollment.Status),
		Grade:     enrollment.Grade,
		CreatedAt: formatTime(enrollment.CreatedAt),
		UpdatedAt: formatTime(enrollment.UpdatedAt),
	}
}
