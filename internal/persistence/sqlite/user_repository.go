package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/example/campus-portal/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{pool: pool, helper: NewQueryHelper(pool)}
}

type userRow struct {
	ID           string         `db:"id"`
	Email        string         `db:"email"`
	DisplayName  string         `db:"display_name"`
	Role         string         `db:"role"`
	AdvisorID    sql.NullString `db:"advisor_id"`
	PasswordHash string         `db:"password_hash"`
	CreatedAt    timestamp      `db:"created_at"`
	UpdatedAt    timestamp      `db:"updated_at"`
}

func (r userRow) model() persistence.User {
	return persistence.User{
		ID:           r.ID,
		Email:        r.Email,
		DisplayName:  r.DisplayName,
		Role:         r.Role,
		AdvisorID:    stringPtr(r.AdvisorID),
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
}

const userColumns = `id, email, display_name, role, advisor_id, password_hash, created_at, updated_at`

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts a new user.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		normalizeEmail(user.Email),
		user.DisplayName,
		user.Role,
		nullString(user.AdvisorID),
		user.PasswordHash,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	return err
}

// UpdateUser updates an existing user. An empty password hash keeps the stored one.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" {
		return persistence.ErrNotFound
	}
	return r.helper.ExecAffecting(ctx, `
		UPDATE users
		SET email = ?, display_name = ?, role = ?, advisor_id = ?,
			password_hash = COALESCE(NULLIF(?, ''), password_hash), updated_at = ?
		WHERE id = ?`,
		normalizeEmail(user.Email),
		user.DisplayName,
		user.Role,
		nullString(user.AdvisorID),
		user.PasswordHash,
		formatTime(user.UpdatedAt),
		user.ID,
	)
}

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	var row userRow
	if err := r.helper.Get(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		return persistence.User{}, err
	}
	return row.model(), nil
}

// GetUserByEmail retrieves a user by case-insensitive email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	var row userRow
	if err := r.helper.Get(ctx, &row, `SELECT `+userColumns+` FROM users WHERE email = ?`, normalizeEmail(email)); err != nil {
		return persistence.User{}, err
	}
	return row.model(), nil
}

// ListUsers lists users ordered by display name.
func (r *UserRepository) ListUsers(ctx context.Context, filter persistence.UserFilter) ([]persistence.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1 = 1`
	var args []any
	if filter.Role != "" {
		query += ` AND role = ?`
		args = append(args, filter.Role)
	}
	if filter.AdvisorID != "" {
		query += ` AND advisor_id = ?`
		args = append(args, filter.AdvisorID)
	}
	query += ` ORDER BY display_name, id`

	var rows []userRow
	if err := r.helper.Select(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	users := make([]persistence.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.model())
	}
	return users, nil
}

// DeleteUser removes a user. Owned rows cascade through foreign keys; the
// user's attribute bag is removed in the same transaction.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	return r.pool.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := r.helper.ExecAffecting(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
			return err
		}
		_, err := r.helper.Exec(ctx, `DELETE FROM attributes WHERE entity_type = 'user' AND entity_id = ?`, id)
		return err
	})
}
