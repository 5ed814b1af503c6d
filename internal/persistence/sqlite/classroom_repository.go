package sqlite

import (
	"context"

	"github.com/example/campus-portal/internal/persistence"
)

// ClassroomRepository implements persistence.ClassroomRepository using SQLite.
type ClassroomRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
}

// NewClassroomRepository creates a new SQLite classroom repository.
func NewClassroomRepository(pool *ConnectionPool) *ClassroomRepository {
	return &ClassroomRepository{pool: pool, helper: NewQueryHelper(pool)}
}

type classroomRow struct {
	ID        string     `db:"id"`
	Name      string     `db:"name"`
	Location  string     `db:"location"`
	Capacity  int        `db:"capacity"`
	Features  stringList `db:"features"`
	CreatedAt timestamp  `db:"created_at"`
	UpdatedAt timestamp  `db:"updated_at"`
}

func (r classroomRow) model() persistence.Classroom {
	return persistence.Classroom{
		ID:        r.ID,
		Name:      r.Name,
		Location:  r.Location,
		Capacity:  r.Capacity,
		Features:  []string(r.Features),
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

const classroomColumns = `id, name, location, capacity, features, created_at, updated_at`

// CreateClassroom inserts a new classroom.
func (r *ClassroomRepository) CreateClassroom(ctx context.Context, classroom persistence.Classroom) error {
	if classroom.ID == "" {
		return persistence.ErrConstraintViolation
	}
	features, err := encodeStringList(classroom.Features)
	if err != nil {
		return err
	}
	_, err = r.helper.Exec(ctx, `
		INSERT INTO classrooms (`+classroomColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		classroom.ID,
		classroom.Name,
		classroom.Location,
		classroom.Capacity,
		features,
		formatTime(classroom.CreatedAt),
		formatTime(classroom.UpdatedAt),
	)
	return err
}

// UpdateClassroom updates an existing classroom.
func (r *ClassroomRepository) UpdateClassroom(ctx context.Context, classroom persistence.Classroom) error {
	features, err := encodeStringList(classroom.Features)
	if err != nil {
		return err
	}
	return r.helper.ExecAffecting(ctx, `
		UPDATE classrooms
		SET name = ?, location = ?, capacity = ?, features = ?, updated_at = ?
		WHERE id = ?`,
		classroom.Name,
		classroom.Location,
		classroom.Capacity,
		features,
		formatTime(classroom.UpdatedAt),
		classroom.ID,
	)
}

// GetClassroom retrieves a classroom by ID.
func (r *ClassroomRepository) GetClassroom(ctx context.Context, id string) (persistence.Classroom, error) {
	var row classroomRow
	if err := r.helper.Get(ctx, &row, `SELECT `+classroomColumns+` FROM classrooms WHERE id = ?`, id); err != nil {
		return persistence.Classroom{}, err
	}
	return row.model(), nil
}

// ListClassrooms lists classrooms ordered by ID.
func (r *ClassroomRepository) ListClassrooms(ctx context.Context) ([]persistence.Classroom, error) {
	var rows []classroomRow
	if err := r.helper.Select(ctx, &rows, `SELECT `+classroomColumns+` FROM classrooms ORDER BY id`); err != nil {
		return nil, err
	}
	classrooms := make([]persistence.Classroom, 0, len(rows))
	for _, row := range rows {
		classrooms = append(classrooms, row.model())
	}
	return classrooms, nil
}

// DeleteClassroom removes a classroom together with its bookings and attributes.
func (r *ClassroomRepository) DeleteClassroom(ctx context.Context, id string) error {
	return r.pool.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := r.helper.ExecAffecting(ctx, `DELETE FROM classrooms WHERE id = ?`, id); err != nil {
			return err
		}
		_, err := r.helper.Exec(ctx, `DELETE FROM attributes WHERE entity_type = 'classroom' AND entity_id = ?`, id)
		return err
	})
}
