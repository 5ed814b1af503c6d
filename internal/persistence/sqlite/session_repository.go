package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/campus-portal/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	helper *QueryHelper
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{helper: NewQueryHelper(pool)}
}

type sessionRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	ExpiresAt timestamp `db:"expires_at"`
	CreatedAt timestamp `db:"created_at"`
	UpdatedAt timestamp `db:"updated_at"`
	RevokedAt timestamp `db:"revoked_at"`
}

func (r sessionRow) model() persistence.Session {
	return persistence.Session{
		ID:        r.ID,
		UserID:    r.UserID,
		ExpiresAt: r.ExpiresAt.Time,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
		RevokedAt: r.RevokedAt.ptr(),
	}
}

const sessionColumns = `id, user_id, expires_at, created_at, updated_at, revoked_at`

// CreateSession stores a new session for a user.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if session.ID == "" || session.UserID == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		formatTime(session.ExpiresAt),
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
		formatTimePtr(session.RevokedAt),
	)
	if err != nil {
		return persistence.Session{}, err
	}
	return r.GetSession(ctx, session.ID)
}

// GetSession retrieves a session by ID.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	var row sessionRow
	if err := r.helper.Get(ctx, &row, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id); err != nil {
		return persistence.Session{}, err
	}
	return row.model(), nil
}

// UpdateSession persists the session's expiry and revocation state.
func (r *SessionRepository) UpdateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	err := r.helper.ExecAffecting(ctx, `
		UPDATE sessions SET expires_at = ?, updated_at = ?, revoked_at = ?
		WHERE id = ?`,
		formatTime(session.ExpiresAt),
		formatTime(session.UpdatedAt),
		formatTimePtr(session.RevokedAt),
		session.ID,
	)
	if err != nil {
		return persistence.Session{}, err
	}
	return r.GetSession(ctx, session.ID)
}

// RevokeSession marks a session revoked. Revoking twice keeps the first timestamp.
func (r *SessionRepository) RevokeSession(ctx context.Context, id string, revokedAt time.Time) (persistence.Session, error) {
	err := r.helper.ExecAffecting(ctx, `
		UPDATE sessions SET revoked_at = COALESCE(revoked_at, ?), updated_at = ?
		WHERE id = ?`,
		sql.NullString{String: formatTime(revokedAt), Valid: true},
		formatTime(revokedAt),
		id,
	)
	if err != nil {
		return persistence.Session{}, err
	}
	return r.GetSession(ctx, id)
}

// DeleteExpiredSessions removes sessions that expired before reference.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := r.helper.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, formatTime(reference))
	return err
}
