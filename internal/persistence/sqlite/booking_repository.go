package sqlite

import (
	"context"
	"fmt"

	"github.com/example/campus-portal/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	helper *QueryHelper
}

// NewBookingRepository creates a new SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{helper: NewQueryHelper(pool)}
}

type bookingRow struct {
	ID          int64     `db:"id"`
	ClassroomID string    `db:"classroom_id"`
	Date        string    `db:"booking_date"`
	StartTime   string    `db:"start_time"`
	EndTime     string    `db:"end_time"`
	OwnerID     string    `db:"owner_id"`
	OwnerRole   string    `db:"owner_role"`
	Purpose     string    `db:"purpose"`
	Status      string    `db:"status"`
	CreatedAt   timestamp `db:"created_at"`
	UpdatedAt   timestamp `db:"updated_at"`
}

func (r bookingRow) model() persistence.Booking {
	return persistence.Booking{
		ID:          r.ID,
		ClassroomID: r.ClassroomID,
		Date:        r.Date,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		OwnerID:     r.OwnerID,
		OwnerRole:   r.OwnerRole,
		Purpose:     r.Purpose,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

const bookingColumns = `id, classroom_id, booking_date, start_time, end_time, owner_id, owner_role, purpose, status, created_at, updated_at`

// CreateBooking inserts a booking. The ID is assigned by SQLite as max(id)+1.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) (persistence.Booking, error) {
	result, err := r.helper.Exec(ctx, `
		INSERT INTO bookings (classroom_id, booking_date, start_time, end_time, owner_id, owner_role, purpose, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ClassroomID,
		booking.Date,
		booking.StartTime,
		booking.EndTime,
		booking.OwnerID,
		booking.OwnerRole,
		booking.Purpose,
		booking.Status,
		formatTime(booking.CreatedAt),
		formatTime(booking.UpdatedAt),
	)
	if err != nil {
		return persistence.Booking{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to read booking id: %w", err)
	}
	return r.GetBooking(ctx, id)
}

// UpdateBooking rewrites the mutable booking fields.
func (r *BookingRepository) UpdateBooking(ctx context.Context, booking persistence.Booking) error {
	return r.helper.ExecAffecting(ctx, `
		UPDATE bookings
		SET classroom_id = ?, booking_date = ?, start_time = ?, end_time = ?, purpose = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		booking.ClassroomID,
		booking.Date,
		booking.StartTime,
		booking.EndTime,
		booking.Purpose,
		booking.Status,
		formatTime(booking.UpdatedAt),
		booking.ID,
	)
}

// GetBooking retrieves a booking by ID.
func (r *BookingRepository) GetBooking(ctx context.Context, id int64) (persistence.Booking, error) {
	var row bookingRow
	if err := r.helper.Get(ctx, &row, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id); err != nil {
		return persistence.Booking{}, err
	}
	return row.model(), nil
}

// ListBookings returns bookings matching the filter ordered by date and start time.
func (r *BookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1 = 1`
	var args []any
	if filter.ClassroomID != "" {
		query += ` AND classroom_id = ?`
		args = append(args, filter.ClassroomID)
	}
	if filter.Date != "" {
		query += ` AND booking_date = ?`
		args = append(args, filter.Date)
	}
	if filter.OwnerID != "" {
		query += ` AND owner_id = ?`
		args = append(args, filter.OwnerID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY booking_date, start_time, id`

	var rows []bookingRow
	if err := r.helper.Select(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	bookings := make([]persistence.Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, row.model())
	}
	return bookings, nil
}

// DeleteBooking removes a booking.
func (r *BookingRepository) DeleteBooking(ctx context.Context, id int64) error {
	return r.helper.ExecAffecting(ctx, `DELETE FROM bookings WHERE id = ?`, id)
}
