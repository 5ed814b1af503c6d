package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/campus-portal/internal/application"
)

type capturingUserRepo struct {
	created      application.User
	passwordHash string
}

func (c *capturingUserRepo) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	c.created = user
	c.passwordHash = passwordHash
	return user, nil
}

func (c *capturingUserRepo) GetUser(ctx context.Context, id string) (application.User, error) {
	return application.User{}, application.ErrNotFound
}

func (c *capturingUserRepo) GetUserByEmail(ctx context.Context, email string) (application.User, error) {
	return application.User{}, application.ErrNotFound
}

func (c *capturingUserRepo) UpdateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	return user, nil
}

func (c *capturingUserRepo) DeleteUser(ctx context.Context, id string) error {
	return nil
}

func (c *capturingUserRepo) ListUsers(ctx context.Context, filter application.UserFilter) ([]application.User, error) {
	return nil, nil
}

func TestServiceFactoryNewUserService(t *testing.T) {
	factory := NewServiceFactory()
	repo := &capturingUserRepo{}

	svc := factory.NewUserService(UserServiceDeps{Users: repo})
	principal := application.Principal{UserID: "admin", Role: application.RoleAdmin}
	input := application.UserInput{Email: "user@example.com", DisplayName: "User", Role: "student", Password: "long-enough"}

	user, err := svc.CreateUser(context.Background(), application.CreateUserParams{Principal: principal, Input: input})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if user.ID != "id-001" {
		t.Fatalf("expected generated ID id-001, got %q", user.ID)
	}
	if repo.created.ID != user.ID {
		t.Fatalf("repository received unexpected ID: %q", repo.created.ID)
	}
	if repo.passwordHash != "plain:long-enough" {
		t.Fatalf("expected fast hash, got %q", repo.passwordHash)
	}
	if !user.CreatedAt.Equal(factory.Clock.Now()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Now(), user.CreatedAt)
	}
}

type staticCredentials struct {
	creds application.UserCredentials
}

func (s staticCredentials) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	if email != s.creds.User.Email {
		return application.UserCredentials{}, application.ErrNotFound
	}
	return s.creds, nil
}

func (s staticCredentials) GetUser(ctx context.Context, id string) (application.User, error) {
	if id != s.creds.User.ID {
		return application.User{}, application.ErrNotFound
	}
	return s.creds.User, nil
}

type memorySessions struct {
	sessions map[string]application.Session
}

func (m *memorySessions) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	m.sessions[session.ID] = session
	return session, nil
}

func (m *memorySessions) GetSession(ctx context.Context, id string) (application.Session, error) {
	session, ok := m.sessions[id]
	if !ok {
		return application.Session{}, application.ErrNotFound
	}
	return session, nil
}

func (m *memorySessions) UpdateSession(ctx context.Context, session application.Session) (application.Session, error) {
	m.sessions[session.ID] = session
	return session, nil
}

func (m *memorySessions) RevokeSession(ctx context.Context, id string, revokedAt time.Time) (application.Session, error) {
	session, ok := m.sessions[id]
	if !ok {
		return application.Session{}, application.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	m.sessions[id] = session
	return session, nil
}

func (m *memorySessions) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return nil
}

func TestServiceFactoryNewAuthService(t *testing.T) {
	factory := NewServiceFactory(WithIDGenerator(NewIDGenerator("session")))
	student := NewUserFixture(WithUserRole(application.RoleStudent))
	hash, _ := FastHash("student-pass")
	creds := application.UserCredentials{User: student.Application(), PasswordHash: hash}
	sessions := &memorySessions{sessions: map[string]application.Session{}}

	svc, err := factory.NewAuthService(AuthServiceDeps{
		Credentials: staticCredentials{creds: creds},
		Sessions:    sessions,
		SessionTTL:  time.Hour,
	})
	if err != nil {
		t.Fatalf("NewAuthService returned error: %v", err)
	}

	result, err := svc.Authenticate(context.Background(), application.AuthenticateParams{Email: creds.User.Email, Password: "student-pass"})
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if result.Session.ID != "session-001" {
		t.Fatalf("expected session-001, got %q", result.Session.ID)
	}
	if want := factory.Clock.Now().Add(time.Hour); !result.Session.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, result.Session.ExpiresAt)
	}

	principal, err := svc.ValidateSession(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("ValidateSession returned error: %v", err)
	}
	if principal.UserID != student.ID || principal.Role != application.RoleStudent {
		t.Fatalf("unexpected principal %+v", principal)
	}

	factory.Clock.Advance(2 * time.Hour)
	if _, err := svc.ValidateSession(context.Background(), result.Token); err == nil {
		t.Fatal("expected expired session to be rejected")
	}
}
