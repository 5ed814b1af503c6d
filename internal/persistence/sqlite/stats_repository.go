package sqlite

import (
	"context"

	"github.com/example/campus-portal/internal/persistence"
)

// StatsRepository implements persistence.StatsRepository using SQLite.
type StatsRepository struct {
	helper *QueryHelper
}

// NewStatsRepository creates a new SQLite stats repository.
func NewStatsRepository(pool *ConnectionPool) *StatsRepository {
	return &StatsRepository{helper: NewQueryHelper(pool)}
}

type groupCount struct {
	Key   string `db:"label"`
	Count int    `db:"total"`
}

func (r *StatsRepository) countBy(ctx context.Context, query string) (map[string]int, error) {
	var rows []groupCount
	if err := r.helper.Select(ctx, &rows, query); err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

// Stats computes dashboard counters.
func (r *StatsRepository) Stats(ctx context.Context) (persistence.Stats, error) {
	var stats persistence.Stats
	var err error

	if stats.UsersByRole, err = r.countBy(ctx, `SELECT role AS label, COUNT(*) AS total FROM users GROUP BY role`); err != nil {
		return persistence.Stats{}, err
	}
	if stats.BookingsByStatus, err = r.countBy(ctx, `SELECT status AS label, COUNT(*) AS total FROM bookings GROUP BY status`); err != nil {
		return persistence.Stats{}, err
	}
	if err = r.helper.Get(ctx, &stats.Courses, `SELECT COUNT(*) FROM courses`); err != nil {
		return persistence.Stats{}, err
	}
	if err = r.helper.Get(ctx, &stats.ActiveEnrollments, `SELECT COUNT(*) FROM enrollments WHERE status = 'enrolled'`); err != nil {
		return persistence.Stats{}, err
	}
	if err = r.helper.Get(ctx, &stats.PendingCourseRequests, `SELECT COUNT(*) FROM course_requests WHERE status = 'pending'`); err != nil {
		return persistence.Stats{}, err
	}
	return stats, nil
}
