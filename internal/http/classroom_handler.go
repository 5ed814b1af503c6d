package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/campus-portal/internal/application"
)

type classroomService interface {
	CreateClassroom(ctx context.Context, params application.CreateClassroomParams) (application.Classroom, error)
	UpdateClassroom(ctx context.Context, params application.UpdateClassroomParams) (application.Classroom, error)
	DeleteClassroom(ctx context.Context, principal application.Principal, classroomID string) error
	GetClassroom(ctx context.Context, classroomID string) (application.Classroom, error)
	ListClassrooms(ctx context.Context) ([]application.Classroom, error)
}

type availabilityChecker interface {
	CheckAvailability(ctx context.Context, query application.AvailabilityQuery) (bool, error)
}

// ClassroomHandler serves classroom management and availability lookups.
type ClassroomHandler struct {
	service      classroomService
	availability availabilityChecker
	responder    responder
	logger       *slog.Logger
}

func NewClassroomHandler(service classroomService, availability availabilityChecker, logger *slog.Logger) *ClassroomHandler {
	base := defaultLogger(logger)
	return &ClassroomHandler{service: service, availability: availability, responder: newResponder(base), logger: base}
}

func (h *ClassroomHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ClassroomHandler", operation, attrs...)
}

func (h *ClassroomHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req classroomRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", requestErrorKind(err)).ErrorContext(r.Context(), "failed to decode classroom request", "error", err)
		h.responder.writeRequestValidation(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	classroom, err := h.service.CreateClassroom(r.Context(), application.CreateClassroomParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "classroom creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("classroom_id", classroom.ID).InfoContext(r.Context(), "classroom created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, classroomResponse{Classroom: toClassroomDTO(classroom)})
}

func (h *ClassroomHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	classroomID := pathParam(r, "id")
	classroom, err := h.service.GetClassroom(r.Context(), classroomID)
	if err != nil {
		h.log(r.Context(), "Get", "classroom_id", classroomID).ErrorContext(r.Context(), "classroom lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, classroomResponse{Classroom: toClassroomDTO(classroom)})
}

func (h *ClassroomHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	classroomID := pathParam(r, "id")
	principal, _ := PrincipalFromContext(r.Context())

	var req classroomRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "classroom_id", classroomID, "error_kind", requestErrorKind(err)).ErrorContext(r.Context(), "failed to decode classroom update", "error", err)
		h.responder.writeRequestValidation(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "classroom_id", classroomID)

	classroom, err := h.service.UpdateClassroom(r.Context(), application.UpdateClassroomParams{
		Principal:   principal,
		ClassroomID: classroomID,
		Input:       req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "classroom update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "classroom updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, classroomResponse{Classroom: toClassroomDTO(classroom)})
}

func (h *ClassroomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	classroomID := pathParam(r, "id")
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "classroom_id", classroomID)
	if err := h.service.DeleteClassroom(r.Context(), principal, classroomID); err != nil {
		logger.ErrorContext(r.Context(), "classroom delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "classroom deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ClassroomHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	classrooms, err := h.service.ListClassrooms(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "classroom list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(classrooms)).DebugContext(r.Context(), "classrooms listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listClassroomsResponse{Classrooms: toClassroomDTOs(classrooms)})
}

// Availability answers whether ?date=&start=&end= is free in the classroom.
func (h *ClassroomHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.availability == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	q := application.AvailabilityQuery{
		ClassroomID: pathParam(r, "id"),
		Date:        strings.TrimSpace(query.Get("date")),
		StartTime:   strings.TrimSpace(query.Get("start")),
		EndTime:     strings.TrimSpace(query.Get("end")),
	}
	logger := h.log(r.Context(), "Availability", "classroom_id", q.ClassroomID, "date", q.Date, "start", q.StartTime, "end", q.EndTime)

	available, err := h.availability.CheckAvailability(r.Context(), q)
	if err != nil {
		logger.ErrorContext(r.Context(), "availability check failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.DebugContext(r.Context(), "availability checked", "available", available)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, availabilityResponse{
		ClassroomID: q.ClassroomID,
		Date:        q.Date,
		StartTime:   q.StartTime,
		EndTime:     q.EndTime,
		Available:   available,
	})
}

type classroomRequest struct {
	ID       string   `json:"id" validate:"omitempty,max=32"`
	Name     string   `json:"name" validate:"required,notblank,max=120"`
	Location string   `json:"location" validate:"max=200"`
	Capacity int      `json:"capacity" validate:"required,gt=0"`
	Features []string `json:"features" validate:"omitempty,dive,max=64"`
}

func (r classroomRequest) toInput() application.ClassroomInput {
	return application.ClassroomInput{
		ID:       strings.TrimSpace(r.ID),
		Name:     strings.TrimSpace(r.Name),
		Location: strings.TrimSpace(r.Location),
		Capacity: r.Capacity,
		Features: r.Features,
	}
}

type classroomResponse struct {
	Classroom classroomDTO `json:"classroom"`
}

type listClassroomsResponse struct {
	Classrooms []classroomDTO `json:"classrooms"`
}

type availabilityResponse struct {
	ClassroomID string `json:"classroom_id"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Available   bool   `json:"available"`
}

type classroomDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Location  string   `json:"location"`
	Capacity  int      `json:"capacity"`
	Features  []string `json:"features"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

func toClassroomDTO(classroom application.Classroom) classroomDTO {
	features := classroom.Features
	if features == nil {
		features = []string{}
	}
	return classroomDTO{
		ID:        classroom.ID,
		Name:      classroom.Name,
		Location:  classroom.Location,
		Capacity:  classroom.Capacity,
		Features:  features,
		CreatedAt: formatTime(classroom.CreatedAt),
		UpdatedAt: formatTime(classroom.UpdatedAt),
	}
}

func toClassroomDTOs(classrooms []application.Classroom) []classroomDTO {
	out := make([]classroomDTO, 0, len(classrooms))
	for _, classroom := range classrooms {
		out = append(out, toClassroomDTO(classroom))
	}
	return out
}
