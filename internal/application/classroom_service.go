package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// ClassroomRepository captures the persistence operations needed by the service.
type ClassroomRepository interface {
	CreateClassroom(ctx context.Context, classroom Classroom) (Classroom, error)
	GetClassroom(ctx context.Context, id string) (Classroom, error)
	UpdateClassroom(ctx context.Context, classroom Classroom) (Classroom, error)
	DeleteClassroom(ctx context.Context, id string) error
	ListClassrooms(ctx context.Context) ([]Classroom, error)
}

var classroomIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,31}$`)

var errClassroomNotFound = newDomainError(ErrNotFound, "Classroom not found.")

// ClassroomService orchestrates validation, authorization, and persistence for classrooms.
type ClassroomService struct {
	classrooms  ClassroomRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewClassroomService constructs a classroom service with the provided dependencies.
func NewClassroomService(classrooms ClassroomRepository, idGenerator func() string, now func() time.Time) *ClassroomService {
	return NewClassroomServiceWithLogger(classrooms, idGenerator, now, nil)
}

// NewClassroomServiceWithLogger constructs a classroom service with a specified logger.
func NewClassroomServiceWithLogger(classrooms ClassroomRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ClassroomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ClassroomService{classrooms: classrooms, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *ClassroomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ClassroomService", operation, attrs...)
}

// CreateClassroom validates input and persists a new classroom for administrators.
// The identifier is caller supplied (e.g. "CL101") or generated when empty.
func (s *ClassroomService) CreateClassroom(ctx context.Context, params CreateClassroomParams) (classroom Classroom, err error) {
	if s == nil {
		err = fmt.Errorf("ClassroomService is nil")
		return
	}
	if s.classrooms == nil {
		err = fmt.Errorf("classroom repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateClassroom",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create classroom", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("classroom_id", classroom.ID).InfoContext(ctx, "classroom created")
	}()

	if err = authorize(params.Principal, CapManageClassrooms); err != nil {
		return
	}

	id := strings.TrimSpace(params.Input.ID)
	vErr := validateClassroomInput(params.Input)
	if id != "" && !classroomIDPattern.MatchString(id) {
		vErr.add("id", "id may contain letters, digits, '-' and '_' only")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if id == "" {
		id = s.idGenerator()
	}

	classroom = Classroom{
		ID:        id,
		Name:      strings.TrimSpace(params.Input.Name),
		Location:  strings.TrimSpace(params.Input.Location),
		Capacity:  params.Input.Capacity,
		Features:  normalizeFeatures(params.Input.Features),
		CreatedAt: s.now(),
	}
	classroom.UpdatedAt = classroom.CreatedAt

	classroom, err = s.classrooms.CreateClassroom(ctx, classroom)
	if err != nil {
		err = mapClassroomRepoError(err)
	}
	return
}

// UpdateClassroom validates input and updates an existing classroom for administrators.
func (s *ClassroomService) UpdateClassroom(ctx context.Context, params UpdateClassroomParams) (classroom Classroom, err error) {
	if s == nil {
		err = fmt.Errorf("ClassroomService is nil")
		return
	}
	if err = authorize(params.Principal, CapManageClassrooms); err != nil {
		return
	}
	if s.classrooms == nil {
		err = fmt.Errorf("classroom repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateClassroom",
		"principal_id", params.Principal.UserID,
		"classroom_id", params.ClassroomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update classroom", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "classroom updated")
	}()

	var existing Classroom
	existing, err = s.classrooms.GetClassroom(ctx, params.ClassroomID)
	if err != nil {
		err = mapClassroomRepoError(err)
		return
	}

	vErr := validateClassroomInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = strings.TrimSpace(params.Input.Name)
	updated.Location = strings.TrimSpace(params.Input.Location)
	updated.Capacity = params.Input.Capacity
	updated.Features = normalizeFeatures(params.Input.Features)
	updated.UpdatedAt = s.now()

	classroom, err = s.classrooms.UpdateClassroom(ctx, updated)
	if err != nil {
		err = mapClassroomRepoError(err)
	}
	return
}

// DeleteClassroom removes a classroom and its bookings when requested by an administrator.
func (s *ClassroomService) DeleteClassroom(ctx context.Context, principal Principal, classroomID string) error {
	if s == nil {
		return fmt.Errorf("ClassroomService is nil")
	}
	if err := authorize(principal, CapManageClassrooms); err != nil {
		return err
	}
	if s.classrooms == nil {
		return fmt.Errorf("classroom repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteClassroom",
		"principal_id", principal.UserID,
		"classroom_id", classroomID,
	)

	if err := s.classrooms.DeleteClassroom(ctx, classroomID); err != nil {
		err = mapClassroomRepoError(err)
		logger.ErrorContext(ctx, "failed to delete classroom", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "classroom deleted")
	return nil
}

// GetClassroom returns a classroom to any authenticated user.
func (s *ClassroomService) GetClassroom(ctx context.Context, classroomID string) (Classroom, error) {
	if s == nil || s.classrooms == nil {
		return Classroom{}, fmt.Errorf("classroom repository not configured")
	}
	classroom, err := s.classrooms.GetClassroom(ctx, classroomID)
	if err != nil {
		return Classroom{}, mapClassroomRepoError(err)
	}
	return classroom, nil
}

// ListClassrooms returns the classroom catalog ordered by ID.
func (s *ClassroomService) ListClassrooms(ctx context.Context) ([]Classroom, error) {
	if s == nil {
		return nil, fmt.Errorf("ClassroomService is nil")
	}
	if s.classrooms == nil {
		return nil, nil
	}
	return s.classrooms.ListClassrooms(ctx)
}

// ClassroomExists reports whether the classroom is in the catalog.
func (s *ClassroomService) ClassroomExists(ctx context.Context, classroomID string) (bool, error) {
	_, err := s.GetClassroom(ctx, classroomID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func validateClassroomInput(input ClassroomInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}

	return vErr
}

// normalizeFeatures trims tags and drops empty and duplicate entries.
func normalizeFeatures(features []string) []string {
	out := make([]string, 0, len(features))
	seen := make(map[string]bool, len(features))
	for _, feature := range features {
		trimmed := strings.TrimSpace(feature)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		out = append(out, trimmed)
	}
	return out
}

func mapClassroomRepoError(err error) error {
	mapped := mapRepoError(err)
	switch {
	case mapped == nil:
		return nil
	case errors.Is(mapped, ErrNotFound):
		return errClassroomNotFound
	case errors.Is(mapped, ErrAlreadyExists):
		return newDomainError(ErrAlreadyExists, "A classroom with this id already exists.")
	}
	var vErr *ValidationError
	if errors.As(mapped, &vErr) {
		return fieldError("capacity", "capacity must be positive")
	}
	return mapped
}
