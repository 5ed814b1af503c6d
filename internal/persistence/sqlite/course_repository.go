package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/campus-portal/internal/persistence"
)

// CourseRepository implements the course, enrollment and course request
// repositories using SQLite.
type CourseRepository struct {
	helper *QueryHelper
}

// NewCourseRepository creates a new SQLite course repository.
func NewCourseRepository(pool *ConnectionPool) *CourseRepository {
	return &CourseRepository{helper: NewQueryHelper(pool)}
}

type courseRow struct {
	ID           string         `db:"id"`
	Title        string         `db:"title"`
	Credits      int            `db:"credits"`
	Capacity     int            `db:"capacity"`
	InstructorID sql.NullString `db:"instructor_id"`
	Semester     string         `db:"semester"`
	CreatedAt    timestamp      `db:"created_at"`
	UpdatedAt    timestamp      `db:"updated_at"`
}

func (r courseRow) model() persistence.Course {
	return persistence.Course{
		ID:           r.ID,
		Title:        r.Title,
		Credits:      r.Credits,
		Capacity:     r.Capacity,
		InstructorID: stringPtr(r.InstructorID),
		Semester:     r.Semester,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
}

const courseColumns = `id, title, credits, capacity, instructor_id, semester, created_at, updated_at`

// CreateCourse inserts a new course.
func (r *CourseRepository) CreateCourse(ctx context.Context, course persistence.Course) error {
	if course.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO courses (`+courseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		course.ID,
		course.Title,
		course.Credits,
		course.Capacity,
		nullString(course.InstructorID),
		course.Semester,
		formatTime(course.CreatedAt),
		formatTime(course.UpdatedAt),
	)
	return err
}

// UpdateCourse updates an existing course.
func (r *CourseRepository) UpdateCourse(ctx context.Context, course persistence.Course) error {
	return r.helper.ExecAffecting(ctx, `
		UPDATE courses
		SET title = ?, credits = ?, capacity = ?, instructor_id = ?, semester = ?, updated_at = ?
		WHERE id = ?`,
		course.Title,
		course.Credits,
		course.Capacity,
		nullString(course.InstructorID),
		course.Semester,
		formatTime(course.UpdatedAt),
		course.ID,
	)
}

// GetCourse retrieves a course by ID.
func (r *CourseRepository) GetCourse(ctx context.Context, id string) (persistence.Course, error) {
	var row courseRow
	if err := r.helper.Get(ctx, &row, `SELECT `+courseColumns+` FROM courses WHERE id = ?`, id); err != nil {
		return persistence.Course{}, err
	}
	return row.model(), nil
}

// ListCourses lists courses ordered by ID.
func (r *CourseRepository) ListCourses(ctx context.Context, filter persistence.CourseFilter) ([]persistence.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses`
	var args []any
	if filter.InstructorID != "" {
		query += ` WHERE instructor_id = ?`
		args = append(args, filter.InstructorID)
	}
	query += ` ORDER BY id`

	var rows []courseRow
	if err := r.helper.Select(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	courses := make([]persistence.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.model())
	}
	return courses, nil
}

type enrollmentRow struct {
	ID        string         `db:"id"`
	StudentID string         `db:"student_id"`
	CourseID  string         `db:"course_id"`
	Status    string         `db:"status"`
	Grade     sql.NullString `db:"grade"`
	CreatedAt timestamp      `db:"created_at"`
	UpdatedAt timestamp      `db:"updated_at"`
}

func (r enrollmentRow) model() persistence.Enrollment {
	return persistence.Enrollment{
		ID:        r.ID,
		StudentID: r.StudentID,
		CourseID:  r.CourseID,
		Status:    r.Status,
		Grade:     stringPtr(r.Grade),
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

const enrollmentColumns = `id, student_id, course_id, status, grade, created_at, updated_at`

// CreateEnrollment inserts a new enrollment.
func (r *CourseRepository) CreateEnrollment(ctx context.Context, enrollment persistence.Enrollment) error {
	if enrollment.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO enrollments (`+enrollmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		enrollment.ID,
		enrollment.StudentID,
		enrollment.CourseID,
		enrollment.Status,
		nullString(enrollment.Grade),
		formatTime(enrollment.CreatedAt),
		formatTime(enrollment.UpdatedAt),
	)
	return err
}

// UpdateEnrollment updates the enrollment status and grade.
func (r *CourseRepository) UpdateEnrollment(ctx context.Context, enrollment persistence.Enrollment) error {
	return r.helper.ExecAffecting(ctx, `
		UPDATE enrollments SET status = ?, grade = ?, updated_at = ?
		WHERE id = ?`,
		enrollment.Status,
		nullString(enrollment.Grade),
		formatTime(enrollment.UpdatedAt),
		enrollment.ID,
	)
}

// GetEnrollment retrieves an enrollment by ID.
func (r *CourseRepository) GetEnrollment(ctx context.Context, id string) (persistence.Enrollment, error) {
	var row enrollmentRow
	if err := r.helper.Get(ctx, &row, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = ?`, id); err != nil {
		return persistence.Enrollment{}, err
	}
	return row.model(), nil
}

// ListEnrollments lists enrollments matching the filter.
func (r *CourseRepository) ListEnrollments(ctx context.Context, filter persistence.EnrollmentFilter) ([]persistence.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE 1 = 1`
	var args []any
	if filter.StudentID != "" {
		query += ` AND student_id = ?`
		args = append(args, filter.StudentID)
	}
	if filter.CourseID != "" {
		query += ` AND course_id = ?`
		args = append(args, filter.CourseID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY created_at, id`

	var rows []enrollmentRow
	if err := r.helper.Select(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	enrollments := make([]persistence.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrollments = append(enrollments, row.model())
	}
	return enrollments, nil
}

type courseRequestRow struct {
	ID         string         `db:"id"`
	StudentID  string         `db:"student_id"`
	CourseID   string         `db:"course_id"`
	Kind       string         `db:"kind"`
	Status     string         `db:"status"`
	ReviewerID sql.NullString `db:"reviewer_id"`
	Note       string         `db:"note"`
	CreatedAt  timestamp      `db:"created_at"`
	UpdatedAt  timestamp      `db:"updated_at"`
}

func (r courseRequestRow) model() persistence.CourseRequest {
	return persistence.CourseRequest{
		ID:         r.ID,
		StudentID:  r.StudentID,
		CourseID:   r.CourseID,
		Kind:       r.Kind,
		Status:     r.Status,
		ReviewerID: stringPtr(r.ReviewerID),
		Note:       r.Note,
		CreatedAt:  r.CreatedAt.Time,
		UpdatedAt:  r.UpdatedAt.Time,
	}
}

const courseRequestColumns = `id, student_id, course_id, kind, status, reviewer_id, note, created_at, updated_at`

// CreateCourseRequest inserts a new add or drop request.
func (r *CourseRepository) CreateCourseRequest(ctx context.Context, request persistence.CourseRequest) error {
	if request.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO course_requests (`+courseRequestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		request.ID,
		request.StudentID,
		request.CourseID,
		request.Kind,
		request.Status,
		nullString(request.ReviewerID),
		request.Note,
		formatTime(request.CreatedAt),
		formatTime(request.UpdatedAt),
	)
	return err
}

// UpdateCourseRequest records a review decision.
func (r *CourseRepository) UpdateCourseRequest(ctx context.Context, request persistence.CourseRequest) error {
	return r.helper.ExecAffecting(ctx, `
		UPDATE course_requests SET status = ?, reviewer_id = ?, note = ?, updated_at = ?
		WHERE id = ?`,
		request.Status,
		nullString(request.ReviewerID),
		request.Note,
		formatTime(request.UpdatedAt),
		request.ID,
	)
}

// GetCourseRequest retrieves a request by ID.
func (r *CourseRepository) GetCourseRequest(ctx context.Context, id string) (persistence.CourseRequest, error) {
	var row courseRequestRow
	if err := r.helper.Get(ctx, &row, `SELECT `+courseRequestColumns+` FROM course_requests WHERE id = ?`, id); err != nil {
		return persistence.CourseRequest{}, err
	}
	return row.model(), nil
}

// ListCourseRequests lists requests matching the filter, oldest first.
func (r *CourseRepository) ListCourseRequests(ctx context.Context, filter persistence.CourseRequestFilter) ([]persistence.CourseRequest, error) {
	query := `SELECT ` + courseRequestColumns + ` FROM course_requests WHERE 1 = 1`
	var args []any
	if filter.StudentID != "" {
		query += ` AND student_id = ?`
		args = append(args, filter.StudentID)
	}
	if filter.CourseID != "" {
		query += ` AND course_id = ?`
		args = append(args, filter.CourseID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY created_at, id`

	var rows []courseRequestRow
	if err := r.helper.Select(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	requests := make([]persistence.CourseRequest, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, row.model())
	}
	return requests, nil
}
