package application

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Role      Role
	AdvisorID string
}

// UserRepository captures the persistence operations needed by the user service.
// An empty password hash on update keeps the stored hash.
type UserRepository interface {
	CreateUser(ctx context.Context, user User, passwordHash string) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdateUser(ctx context.Context, user User, passwordHash string) (User, error)
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context, filter UserFilter) ([]User, error)
}

// UserService orchestrates validation, authorization, and persistence for users.
type UserService struct {
	users       UserRepository
	hash        PasswordHasher
	idGenerator func() string
	now         func() time.Time
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserRepository, hash PasswordHasher, idGenerator func() string, now func() time.Time) *UserService {
	if hash == nil {
		hash = HashPassword
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, hash: hash, idGenerator: idGenerator, now: now}
}

// CreateUser validates input and persists a new user for administrators.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if err := authorize(params.Principal, CapManageUsers); err != nil {
		return User{}, err
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	normalized := normalizeUserInput(params.Input)
	vErr := validateUserInput(normalized, true)
	vErr.merge(s.validateAdvisor(ctx, normalized))
	if vErr.HasErrors() {
		return User{}, vErr
	}

	hash, err := s.hash(normalized.Password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	role, _ := ParseRole(normalized.Role)
	user := User{
		ID:          s.idGenerator(),
		Email:       normalized.Email,
		DisplayName: normalized.DisplayName,
		Role:        role,
		AdvisorID:   normalized.AdvisorID,
		CreatedAt:   s.now(),
	}
	user.UpdatedAt = user.CreatedAt

	persisted, err := s.users.CreateUser(ctx, user, hash)
	if err != nil {
		return User{}, mapUserRepoError(err)
	}
	return persisted, nil
}

// UpdateUser validates input and updates an existing user for administrators.
func (s *UserService) UpdateUser(ctx context.Context, params UpdateUserParams) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if err := authorize(params.Principal, CapManageUsers); err != nil {
		return User{}, err
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	existing, err := s.users.GetUser(ctx, params.UserID)
	if err != nil {
		return User{}, mapUserRepoError(err)
	}

	normalized := normalizeUserInput(params.Input)
	vErr := validateUserInput(normalized, false)
	if normalized.AdvisorID != nil && *normalized.AdvisorID == existing.ID {
		vErr.add("advisor_id", "a user cannot advise themselves")
	} else {
		vErr.merge(s.validateAdvisor(ctx, normalized))
	}
	if vErr.HasErrors() {
		return User{}, vErr
	}

	var hash string
	if normalized.Password != "" {
		if hash, err = s.hash(normalized.Password); err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
	}

	role, _ := ParseRole(normalized.Role)
	updated := existing
	updated.Email = normalized.Email
	updated.DisplayName = normalized.DisplayName
	updated.Role = role
	updated.AdvisorID = normalized.AdvisorID
	updated.UpdatedAt = s.now()

	persisted, err := s.users.UpdateUser(ctx, updated, hash)
	if err != nil {
		return User{}, mapUserRepoError(err)
	}
	return persisted, nil
}

// GetUser returns a user. Administrators may read anyone; other users only themselves.
func (s *UserService) GetUser(ctx context.Context, principal Principal, userID string) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if principal.UserID != userID {
		if err := authorize(principal, CapManageUsers); err != nil {
			return User{}, err
		}
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return User{}, mapUserRepoError(err)
	}
	return user, nil
}

// DeleteUser removes a user when requested by an administrator. Bookings,
// sessions, enrollments, requests and submissions go with the account.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, userID string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if err := authorize(principal, CapManageUsers); err != nil {
		return err
	}
	if principal.UserID == userID {
		return newDomainError(ErrConflict, "Administrators cannot delete their own account.")
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return mapUserRepoError(err)
	}
	return nil
}

// ListUsers returns users for administrators, optionally filtered by role.
func (s *UserService) ListUsers(ctx context.Context, principal Principal, role string) ([]User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if err := authorize(principal, CapManageUsers); err != nil {
		return nil, err
	}
	if s.users == nil {
		return nil, nil
	}

	var filter UserFilter
	if strings.TrimSpace(role) != "" {
		parsed, ok := ParseRole(role)
		if !ok {
			return nil, fieldError("role", "role must be one of student, advisor, instructor, admin")
		}
		filter.Role = parsed
	}

	users, err := s.users.ListUsers(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]User, len(users))
	copy(out, users)

	sort.Slice(out, func(i, j int) bool {
		if strings.EqualFold(out[i].Email, out[j].Email) {
			return out[i].ID < out[j].ID
		}
		return strings.ToLower(out[i].Email) < strings.ToLower(out[j].Email)
	})

	return out, nil
}

// EnsureAdmin creates an administrator with the given credentials unless an
// account with that email already exists. It backs first-run bootstrapping.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (User, bool, error) {
	if s == nil || s.users == nil {
		return User{}, false, fmt.Errorf("user repository not configured")
	}

	normalized := normalizeUserInput(UserInput{
		Email:       email,
		DisplayName: "Administrator",
		Role:        string(RoleAdmin),
		Password:    password,
	})

	existing, err := s.users.GetUserByEmail(ctx, normalized.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(mapUserRepoError(err), ErrNotFound) {
		return User{}, false, err
	}

	if vErr := validateUserInput(normalized, true); vErr.HasErrors() {
		return User{}, false, vErr
	}
	hash, err := s.hash(normalized.Password)
	if err != nil {
		return User{}, false, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	created, err := s.users.CreateUser(ctx, User{
		ID:          s.idGenerator(),
		Email:       normalized.Email,
		DisplayName: normalized.DisplayName,
		Role:        RoleAdmin,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, hash)
	if err != nil {
		return User{}, false, mapUserRepoError(err)
	}
	return created, true, nil
}

func (s *UserService) validateAdvisor(ctx context.Context, input UserInput) *ValidationError {
	vErr := &ValidationError{}
	if input.AdvisorID == nil {
		return vErr
	}
	if role, _ := ParseRole(input.Role); role != RoleStudent {
		vErr.add("advisor_id", "only students can have an advisor")
		return vErr
	}
	advisor, err := s.users.GetUser(ctx, *input.AdvisorID)
	if err != nil || advisor.Role != RoleAdvisor {
		vErr.add("advisor_id", "advisor_id must reference an advisor")
	}
	return vErr
}

func normalizeUserInput(input UserInput) UserInput {
	return UserInput{
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		DisplayName: strings.TrimSpace(input.DisplayName),
		Role:        strings.ToLower(strings.TrimSpace(input.Role)),
		AdvisorID:   normalizeOptionalString(input.AdvisorID),
		Password:    input.Password,
	}
}

func validateUserInput(input UserInput, requirePassword bool) *ValidationError {
	vErr := &ValidationError{}

	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if input.DisplayName == "" {
		vErr.add("display_name", "display name is required")
	}

	if _, ok := ParseRole(input.Role); !ok {
		vErr.add("role", "role must be one of student, advisor, instructor, admin")
	}

	switch {
	case input.Password == "" && requirePassword:
		vErr.add("password", "password is required")
	case input.Password != "" && len(input.Password) < MinPasswordLength:
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	return vErr
}

func mapUserRepoError(err error) error {
	mapped := mapRepoError(err)
	switch {
	case mapped == nil:
		return nil
	case errors.Is(mapped, ErrAlreadyExists):
		return newDomainError(ErrAlreadyExists, "A user with this email already exists.")
	case errors.Is(mapped, ErrNotFound):
		return newDomainError(ErrNotFound, "User not found.")
	}
	return mapped
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
