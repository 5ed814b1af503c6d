package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var authEpoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type authFixture struct {
	svc      *AuthService
	creds    *credentialStoreStub
	sessions *sessionRepositoryStub
	codec    *JWTCodec
	now      *time.Time
}

func newAuthFixture(t *testing.T, ttl time.Duration) *authFixture {
	t.Helper()

	now := authEpoch
	clock := func() time.Time { return now }
	codec, err := NewJWTCodec(testSecret, clock)
	if err != nil {
		t.Fatalf("NewJWTCodec failed: %v", err)
	}

	creds := &credentialStoreStub{
		credentials: UserCredentials{
			User:         User{ID: "user-1", Email: "user@example.com", Role: RoleAdvisor},
			PasswordHash: "secret",
		},
	}
	sessions := newSessionRepositoryStub()
	ids := []string{"session-1", "session-2", "session-3"}
	svc := NewAuthService(creds, sessions, codec, plainVerifier, func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}, clock, ttl)

	return &authFixture{svc: svc, creds: creds, sessions: sessions, codec: codec, now: &now}
}

func plainVerifier(hashed, password string) error {
	if hashed != password {
		return errors.New("mismatch")
	}
	return nil
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("issues sessions for valid credentials", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t, time.Hour)
		result, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: " User@Example.com ", Password: "secret"})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}

		if result.Session.ID != "session-1" {
			t.Fatalf("expected session-1, got %s", result.Session.ID)
		}
		if !result.Session.ExpiresAt.Equal(authEpoch.Add(time.Hour)) {
			t.Fatalf("expected expiry one hour out, got %v", result.Session.ExpiresAt)
		}
		if f.creds.lastEmail != "user@example.com" {
			t.Fatalf("expected normalized email lookup, got %q", f.creds.lastEmail)
		}
		if len(f.sessions.deleteCalls) != 1 || !f.sessions.deleteCalls[0].Equal(authEpoch) {
			t.Fatalf("expected DeleteExpiredSessions to be called with now, got %#v", f.sessions.deleteCalls)
		}

		claims, err := f.codec.Parse(result.Token)
		if err != nil {
			t.Fatalf("issued token does not parse: %v", err)
		}
		if claims.SessionID != "session-1" || claims.UserID != "user-1" || claims.Role != RoleAdvisor {
			t.Fatalf("unexpected claims %#v", claims)
		}
	})

	t.Run("rejects invalid credentials with sentinel error", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t, time.Hour)
		_, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "user@example.com", Password: "wrong"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		if len(f.sessions.sessionsByID) != 0 {
			t.Fatalf("expected no session to be created")
		}
	})

	t.Run("hides unknown emails behind invalid credentials", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t, time.Hour)
		f.creds.credentials = UserCredentials{}
		_, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "ghost@example.com", Password: "secret"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects blank input", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t, time.Hour)
		_, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: " ", Password: ""})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("propagates repository failures", func(t *testing.T) {
		t.Parallel()

		expected := errors.New("boom")
		f := newAuthFixture(t, time.Hour)
		f.sessions.createErr = expected

		_, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "user@example.com", Password: "secret"})
		if !errors.Is(err, expected) {
			t.Fatalf("expected error %v, got %v", expected, err)
		}
	})

	t.Run("propagates cleanup failures", func(t *testing.T) {
		t.Parallel()

		expected := errors.New("cleanup-failed")
		f := newAuthFixture(t, time.Hour)
		f.sessions.deleteErr = expected

		_, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "user@example.com", Password: "secret"})
		if !errors.Is(err, expected) {
			t.Fatalf("expected cleanup error %v, got %v", expected, err)
		}
	})

	t.Run("requires configured dependencies", func(t *testing.T) {
		t.Parallel()

		svc := NewAuthService(nil, nil, nil, nil, nil, nil, 0)
		if _, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: "a@b.c", Password: "x"}); err == nil {
			t.Fatalf("expected configuration error")
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Parallel()

	t.Run("returns the principal for active sessions", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t, time.Hour)
		result, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "user@example.com", Password: "secret"})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}

		principal, err := f.svc.ValidateSession(context.Background(), result.Token)
		if err != nil {
			t.Fatalf("ValidateSession failed: %v", err)
		}
		if principal != (Principal{UserID: "user-1", Role: RoleAdvisor}) {
			t.Fatalf("unexpected principal %#v", principal)
		}
	})

	t.Run("takes the role from the stored user", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t, time.Hour)
		result, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "user@example.com", Password: "secret"})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		f.creds.credentials.User.Role = RoleStudent

		principal, err := f.svc.ValidateSession(context.Background(), result.Token)
		if err != nil {
			t.Fatalf("ValidateSession failed: %v", err)
		}
		if principal.Role != RoleStudent {
			t.Fatalf("expected demoted role, got %s", principal.Role)
		}
	})

	t.Run("rejects garbage tokens", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t, time.Hour)
		for _, token := range []string{"", "   ", "not-a-jwt"} {
			if _, err := f.svc.ValidateSession(context.Background(), token); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("token %q: expected ErrInvalidCredentials, got %v", token, err)
			}
		}
	})

	t.Run("rejects tokens signed with another secret", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t, time.Hour)
		other, err := NewJWTCodec("another-secret-of-enough-length", func() time.Time { return authEpoch })
		if err != nil {
			t.Fatalf("NewJWTCodec failed: %v", err)
		}
		f.sessions.seed(Session{ID: "session-x", UserID: "user-1", ExpiresAt: authEpoch.Add(time.Hour)})
		forged, err := other.Issue(TokenClaims{SessionID: "session-x", UserID: "user-1", Role: RoleAdmin, ExpiresAt: authEpoch.Add(time.Hour)})
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}

		if _, err := f.svc.ValidateSession(context.Background(), forged); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects expired sessions", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t, time.Hour)
		result, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "user@example.com", Password: "secret"})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		*f.now = authEpoch.Add(2 * time.Hour)

		if _, err := f.svc.ValidateSession(context.Background(), result.Token); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("rejects revoked sessions", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t, time.Hour)
		result, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "user@example.com", Password: "secret"})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if err := f.svc.RevokeSession(context.Background(), result.Token); err != nil {
			t.Fatalf("RevokeSession failed: %v", err)
		}

		if _, err := f.svc.ValidateSession(context.Background(), result.Token); !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("rejects sessions whose user was removed", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t, time.Hour)
		result, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "user@example.com", Password: "secret"})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		f.creds.credentials = UserCredentials{}

		if _, err := f.svc.ValidateSession(context.Background(), result.Token); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_RefreshSession(t *testing.T) {
	t.Parallel()

	t.Run("extends the session and issues a new token", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t, time.Hour)
		result, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "user@example.com", Password: "secret"})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}

		*f.now = authEpoch.Add(30 * time.Minute)
		refreshed, err := f.svc.RefreshSession(context.Background(), result.Token)
		if err != nil {
			t.Fatalf("RefreshSession failed: %v", err)
		}

		want := authEpoch.Add(90 * time.Minute)
		if !refreshed.Session.ExpiresAt.Equal(want) {
			t.Fatalf("expected expiry %v, got %v", want, refreshed.Session.ExpiresAt)
		}
		if stored := f.sessions.sessionsByID["session-1"]; !stored.ExpiresAt.Equal(want) {
			t.Fatalf("expected persisted expiry, got %v", stored.ExpiresAt)
		}
		claims, err := f.codec.Parse(refreshed.Token)
		if err != nil {
			t.Fatalf("refreshed token does not parse: %v", err)
		}
		if !claims.ExpiresAt.Equal(want) {
			t.Fatalf("expected token expiry %v, got %v", want, claims.ExpiresAt)
		}
	})

	t.Run("rejects revoked sessions", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t, time.Hour)
		revokedAt := authEpoch
		f.sessions.seed(Session{ID: "revoked", UserID: "user-1", ExpiresAt: authEpoch.Add(time.Hour), RevokedAt: &revokedAt})
		token, err := f.codec.Issue(TokenClaims{SessionID: "revoked", UserID: "user-1", Role: RoleAdvisor, ExpiresAt: authEpoch.Add(time.Hour)})
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}

		if _, err := f.svc.RefreshSession(context.Background(), token); !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("propagates update failures", func(t *testing.T) {
		t.Parallel()

		expected := errors.New("update failed")
		f := newAuthFixture(t, time.Hour)
		result, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "user@example.com", Password: "secret"})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		f.sessions.updateErr = expected

		if _, err := f.svc.RefreshSession(context.Background(), result.Token); !errors.Is(err, expected) {
			t.Fatalf("expected %v, got %v", expected, err)
		}
	})
}

func TestAuthService_RevokeSession(t *testing.T) {
	t.Parallel()

	t.Run("marks the session revoked", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t, time.Hour)
		result, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "user@example.com", Password: "secret"})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}

		if err := f.svc.RevokeSession(context.Background(), result.Token); err != nil {
			t.Fatalf("RevokeSession failed: %v", err)
		}
		stored := f.sessions.sessionsByID["session-1"]
		if stored.RevokedAt == nil || !stored.RevokedAt.Equal(authEpoch) {
			t.Fatalf("expected revoked timestamp, got %#v", stored.RevokedAt)
		}
	})

	t.Run("maps unknown sessions to invalid credentials", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t, time.Hour)
		token, err := f.codec.Issue(TokenClaims{SessionID: "missing", UserID: "user-1", ExpiresAt: authEpoch.Add(time.Hour)})
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}

		if err := f.svc.RevokeSession(context.Background(), token); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestNewJWTCodec_RejectsShortSecrets(t *testing.T) {
	t.Parallel()

	if _, err := NewJWTCodec("short", nil); err == nil {
		t.Fatalf("expected short secret to be rejected")
	}
}

// credentialStoreStub implements CredentialStore for tests.
type credentialStoreStub struct {
	credentials UserCredentials
	err         error
	lastEmail   string
}

func (c *credentialStoreStub) GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error) {
	c.lastEmail = email
	if c.err != nil {
		return UserCredentials{}, c.err
	}
	if c.credentials.User.ID == "" || c.credentials.User.Email != email {
		return UserCredentials{}, ErrNotFound
	}
	return c.credentials, nil
}

func (c *credentialStoreStub) GetUser(ctx context.Context, id string) (User, error) {
	if c.err != nil {
		return User{}, c.err
	}
	if c.credentials.User.ID != "" && c.credentials.User.ID == id {
		return c.credentials.User, nil
	}
	return User{}, ErrNotFound
}

// sessionRepositoryStub provides an in-memory implementation of SessionRepository for tests.
type sessionRepositoryStub struct {
	sessionsByID map[string]Session

	createErr error
	getErr    error
	updateErr error
	revokeErr error
	deleteErr error

	deleteCalls []time.Time
}

func newSessionRepositoryStub() *sessionRepositoryStub {
	return &sessionRepositoryStub{sessionsByID: make(map[string]Session)}
}

func (s *sessionRepositoryStub) seed(session Session) {
	s.sessionsByID[session.ID] = cloneSession(session)
}

func (s *sessionRepositoryStub) CreateSession(ctx context.Context, session Session) (Session, error) {
	if s.createErr != nil {
		return Session{}, s.createErr
	}
	s.seed(session)
	return cloneSession(session), nil
}

func (s *sessionRepositoryStub) GetSession(ctx context.Context, id string) (Session, error) {
	if s.getErr != nil {
		return Session{}, s.getErr
	}
	session, ok := s.sessionsByID[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return cloneSession(session), nil
}

func (s *sessionRepositoryStub) UpdateSession(ctx context.Context, session Session) (Session, error) {
	if s.updateErr != nil {
		return Session{}, s.updateErr
	}
	if _, ok := s.sessionsByID[session.ID]; !ok {
		return Session{}, ErrNotFound
	}
	s.seed(session)
	return cloneSession(session), nil
}

func (s *sessionRepositoryStub) RevokeSession(ctx context.Context, id string, revokedAt time.Time) (Session, error) {
	if s.revokeErr != nil {
		return Session{}, s.revokeErr
	}
	session, ok := s.sessionsByID[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	revoked := revokedAt.UTC()
	session.RevokedAt = &revoked
	session.UpdatedAt = revoked
	s.sessionsByID[id] = session
	return cloneSession(session), nil
}

func (s *sessionRepositoryStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	cutoff := reference.UTC()
	s.deleteCalls = append(s.deleteCalls, cutoff)
	for id, session := range s.sessionsByID {
		if session.ExpiresAt.IsZero() {
			continue
		}
		if !session.ExpiresAt.After(cutoff) {
			delete(s.sessionsByID, id)
		}
	}
	return nil
}

func cloneSession(session Session) Session {
	clone := session
	if session.RevokedAt != nil {
		revoked := session.RevokedAt.UTC()
		clone.RevokedAt = &revoked
	}
	return clone
}
