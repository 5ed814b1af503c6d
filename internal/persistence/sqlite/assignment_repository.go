package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/campus-portal/internal/persistence"
)

// AssignmentRepository implements persistence.AssignmentRepository using SQLite.
type AssignmentRepository struct {
	helper *QueryHelper
}

// NewAssignmentRepository creates a new SQLite assignment repository.
func NewAssignmentRepository(pool *ConnectionPool) *AssignmentRepository {
	return &AssignmentRepository{helper: NewQueryHelper(pool)}
}

type assignmentRow struct {
	ID          string    `db:"id"`
	CourseID    string    `db:"course_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	DueAt       timestamp `db:"due_at"`
	CreatedBy   string    `db:"created_by"`
	CreatedAt   timestamp `db:"created_at"`
	UpdatedAt   timestamp `db:"updated_at"`
}

func (r assignmentRow) model() persistence.Assignment {
	return persistence.Assignment{
		ID:          r.ID,
		CourseID:    r.CourseID,
		Title:       r.Title,
		Description: r.Description,
		DueAt:       r.DueAt.ptr(),
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

const assignmentColumns = `id, course_id, title, description, due_at, created_by, created_at, updated_at`

// CreateAssignment inserts a new assignment.
func (r *AssignmentRepository) CreateAssignment(ctx context.Context, assignment persistence.Assignment) error {
	if assignment.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO assignments (`+assignmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		assignment.ID,
		assignment.CourseID,
		assignment.Title,
		assignment.Description,
		formatTimePtr(assignment.DueAt),
		assignment.CreatedBy,
		formatTime(assignment.CreatedAt),
		formatTime(assignment.UpdatedAt),
	)
	return err
}

// GetAssignment retrieves an assignment by ID.
func (r *AssignmentRepository) GetAssignment(ctx context.Context, id string) (persistence.Assignment, error) {
	var row assignmentRow
	if err := r.helper.Get(ctx, &row, `SELECT `+assignmentColumns+` FROM assignments WHERE id = ?`, id); err != nil {
		return persistence.Assignment{}, err
	}
	return row.model(), nil
}

// ListAssignments lists a course's assignments by due date.
func (r *AssignmentRepository) ListAssignments(ctx context.Context, courseID string) ([]persistence.Assignment, error) {
	var rows []assignmentRow
	err := r.helper.Select(ctx, &rows, `
		SELECT `+assignmentColumns+` FROM assignments
		WHERE course_id = ?
		ORDER BY due_at IS NULL, due_at, created_at`, courseID)
	if err != nil {
		return nil, err
	}
	assignments := make([]persistence.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, row.model())
	}
	return assignments, nil
}

type submissionRow struct {
	ID           string        `db:"id"`
	AssignmentID string        `db:"assignment_id"`
	StudentID    string        `db:"student_id"`
	Content      string        `db:"content"`
	Score        sql.NullInt64 `db:"score"`
	Feedback     string        `db:"feedback"`
	SubmittedAt  timestamp     `db:"submitted_at"`
	UpdatedAt    timestamp     `db:"updated_at"`
}

func (r submissionRow) model() persistence.Submission {
	submission := persistence.Submission{
		ID:           r.ID,
		AssignmentID: r.AssignmentID,
		StudentID:    r.StudentID,
		Content:      r.Content,
		Feedback:     r.Feedback,
		SubmittedAt:  r.SubmittedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
	if r.Score.Valid {
		score := int(r.Score.Int64)
		submission.Score = &score
	}
	return submission
}

const submissionColumns = `id, assignment_id, student_id, content, score, feedback, submitted_at, updated_at`

func nullScore(score *int) sql.NullInt64 {
	if score == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*score), Valid: true}
}

// UpsertSubmission stores a submission. A resubmission keeps the original ID,
// replaces the content and clears any score and feedback.
func (r *AssignmentRepository) UpsertSubmission(ctx context.Context, submission persistence.Submission) (persistence.Submission, error) {
	if submission.ID == "" {
		return persistence.Submission{}, persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO submissions (`+submissionColumns+`)
		VALUES (?, ?, ?, ?, NULL, '', ?, ?)
		ON CONFLICT (assignment_id, student_id) DO UPDATE SET
			content = excluded.content,
			score = NULL,
			feedback = '',
			submitted_at = excluded.submitted_at,
			updated_at = excluded.updated_at`,
		submission.ID,
		submission.AssignmentID,
		submission.StudentID,
		submission.Content,
		formatTime(submission.SubmittedAt),
		formatTime(submission.UpdatedAt),
	)
	if err != nil {
		return persistence.Submission{}, err
	}

	var row submissionRow
	err = r.helper.Get(ctx, &row, `
		SELECT `+submissionColumns+` FROM submissions
		WHERE assignment_id = ? AND student_id = ?`,
		submission.AssignmentID, submission.StudentID)
	if err != nil {
		return persistence.Submission{}, err
	}
	return row.model(), nil
}

// UpdateSubmission records a score and feedback.
func (r *AssignmentRepository) UpdateSubmission(ctx context.Context, submission persistence.Submission) error {
	return r.helper.ExecAffecting(ctx, `
		UPDATE submissions SET score = ?, feedback = ?, updated_at = ?
		WHERE id = ?`,
		nullScore(submission.Score),
		submission.Feedback,
		formatTime(submission.UpdatedAt),
		submission.ID,
	)
}

// GetSubmission retrieves a submission by ID.
func (r *AssignmentRepository) GetSubmission(ctx context.Context, id string) (persistence.Submission, error) {
	var row submissionRow
	if err := r.helper.Get(ctx, &row, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id); err != nil {
		return persistence.Submission{}, err
	}
	return row.model(), nil
}

// ListSubmissions lists an assignment's submissions, earliest first.
func (r *AssignmentRepository) ListSubmissions(ctx context.Context, assignmentID string) ([]persistence.Submission, error) {
	var rows []submissionRow
	err := r.helper.Select(ctx, &rows, `
		SELECT `+submissionColumns+` FROM submissions
		WHERE assignment_id = ?
		ORDER BY submitted_at, id`, assignmentID)
	if err != nil {
		return nil, err
	}
	submissions := make([]persistence.Submission, 0, len(rows))
	for _, row := range rows {
		submissions = append(submissions, row.model())
	}
	return submissions, nil
}
