package application

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// EntityType names an aggregate that carries an attribute bag.
type EntityType string

const (
	EntityUser      EntityType = "user"
	EntityCourse    EntityType = "course"
	EntityClassroom EntityType = "classroom"
)

// ParseEntityType validates an entity type name.
func ParseEntityType(value string) (EntityType, bool) {
	entityType := EntityType(strings.ToLower(strings.TrimSpace(value)))
	switch entityType {
	case EntityUser, EntityCourse, EntityClassroom:
		return entityType, true
	}
	return "", false
}

// AttributeRepository stores free form name/value pairs per entity. An empty
// value passed to SetAttributes removes the attribute.
type AttributeRepository interface {
	ListAttributes(ctx context.Context, entityType, entityID string) (map[string]string, error)
	SetAttributes(ctx context.Context, entityType, entityID string, values map[string]string, updatedAt time.Time) error
}

// CourseCatalog resolves courses by id.
type CourseCatalog interface {
	GetCourse(ctx context.Context, courseID string) (Course, error)
}

// AttributeEntities resolves the entities attribute bags can hang off.
type AttributeEntities struct {
	Users      UserDirectory
	Courses    CourseCatalog
	Classrooms ClassroomCatalog
}

var attributeNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]{0,63}$`)

const maxAttributeValueLength = 4096

// AttributeService reads and writes entity attribute bags.
type AttributeService struct {
	attributes AttributeRepository
	entities   AttributeEntities
	now        func() time.Time
	logger     *slog.Logger
}

// NewAttributeService constructs an attribute service.
func NewAttributeService(attributes AttributeRepository, entities AttributeEntities, now func() time.Time, logger *slog.Logger) *AttributeService {
	if now == nil {
		now = time.Now
	}
	return &AttributeService{attributes: attributes, entities: entities, now: now, logger: defaultLogger(logger)}
}

// GetAttributes returns the attribute bag of an entity to any authenticated user.
func (s *AttributeService) GetAttributes(ctx context.Context, principal Principal, entityType, entityID string) (map[string]string, error) {
	if s == nil || s.attributes == nil {
		return nil, fmt.Errorf("attribute repository not configured")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	kind, err := s.resolve(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}

	values, err := s.attributes.ListAttributes(ctx, string(kind), entityID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

// SetAttributes upserts the given attributes and returns the resulting bag.
// Administrators may write any bag; users may write their own.
func (s *AttributeService) SetAttributes(ctx context.Context, principal Principal, entityType, entityID string, values map[string]string) (result map[string]string, err error) {
	if s == nil || s.attributes == nil {
		return nil, fmt.Errorf("attribute repository not configured")
	}

	logger := serviceLogger(ctx, s.logger, "AttributeService", "SetAttributes",
		"principal_id", principal.UserID,
		"entity_type", entityType,
		"entity_id", entityID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to set attributes", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "attributes updated", "count", len(values))
	}()

	var kind EntityType
	kind, err = s.resolve(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}

	selfOwned := kind == EntityUser && principal.UserID != "" && principal.UserID == entityID
	if !selfOwned {
		if err = authorize(principal, CapWriteAttributes); err != nil {
			return nil, err
		}
	}

	vErr := &ValidationError{}
	cleaned := make(map[string]string, len(values))
	for name, value := range values {
		name = strings.TrimSpace(name)
		if !attributeNamePattern.MatchString(name) {
			vErr.add("attributes", fmt.Sprintf("attribute name %q is invalid", name))
			continue
		}
		if len(value) > maxAttributeValueLength {
			vErr.add(name, "value is too long")
			continue
		}
		cleaned[name] = value
	}
	if len(values) == 0 {
		vErr.add("attributes", "at least one attribute is required")
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	if err = s.attributes.SetAttributes(ctx, string(kind), entityID, cleaned, s.now()); err != nil {
		return nil, mapRepoError(err)
	}

	result, err = s.attributes.ListAttributes(ctx, string(kind), entityID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if result == nil {
		result = map[string]string{}
	}
	return result, nil
}

func (s *AttributeService) resolve(ctx context.Context, entityType, entityID string) (EntityType, error) {
	kind, ok := ParseEntityType(entityType)
	if !ok {
		return "", fieldError("entity_type", "entity_type must be one of user, course, classroom")
	}
	if strings.TrimSpace(entityID) == "" {
		return "", fieldError("entity_id", "entity_id is required")
	}

	var err error
	switch kind {
	case EntityUser:
		if s.entities.Users == nil {
			return "", fmt.Errorf("user directory not configured")
		}
		_, err = s.entities.Users.GetUser(ctx, entityID)
		err = mapUserRepoError(err)
	case EntityCourse:
		if s.entities.Courses == nil {
			return "", fmt.Errorf("course catalog not configured")
		}
		_, err = s.entities.Courses.GetCourse(ctx, entityID)
		if err != nil {
			err = mapCourseRepoError(err)
		}
	case EntityClassroom:
		if s.entities.Classrooms == nil {
			return "", fmt.Errorf("classroom catalog not configured")
		}
		_, err = s.entities.Classrooms.GetClassroom(ctx, entityID)
		err = mapClassroomRepoError(err)
	}
	if err != nil {
		return "", err
	}
	return kind, nil
}
