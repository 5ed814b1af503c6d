package application

import (
	"context"
	"fmt"
)

// StatsRepository aggregates the counters shown on the admin dashboard.
type StatsRepository interface {
	Stats(ctx context.Context) (SystemStats, error)
}

// AdviseeProgress reports registration progress for a student.
type AdviseeProgress interface {
	EnrolledCredits(ctx context.Context, studentID string) (int, error)
	PendingRequestCount(ctx context.Context, studentID string) (int, error)
}

// PendingBookingLister lists bookings awaiting review.
type PendingBookingLister interface {
	PendingBookings(ctx context.Context, principal Principal) ([]Booking, error)
}

// DashboardService builds the read models behind the role dashboards.
type DashboardService struct {
	stats    StatsRepository
	users    UserDirectory
	progress AdviseeProgress
	bookings PendingBookingLister
}

// NewDashboardService constructs a dashboard service.
func NewDashboardService(stats StatsRepository, users UserDirectory, progress AdviseeProgress, bookings PendingBookingLister) *DashboardService {
	return &DashboardService{stats: stats, users: users, progress: progress, bookings: bookings}
}

// AdminStats returns system wide counters.
func (s *DashboardService) AdminStats(ctx context.Context, principal Principal) (SystemStats, error) {
	if s == nil || s.stats == nil {
		return SystemStats{}, fmt.Errorf("stats repository not configured")
	}
	if err := authorize(principal, CapReadStats); err != nil {
		return SystemStats{}, err
	}

	stats, err := s.stats.Stats(ctx)
	if err != nil {
		return SystemStats{}, mapRepoError(err)
	}
	if stats.UsersByRole == nil {
		stats.UsersByRole = map[string]int{}
	}
	if stats.BookingsByStatus == nil {
		stats.BookingsByStatus = map[string]int{}
	}
	return stats, nil
}

// AdvisorOverview lists the advisor's advisees with their registration progress
// and the bookings waiting for review.
func (s *DashboardService) AdvisorOverview(ctx context.Context, principal Principal) (AdvisorOverview, error) {
	if s == nil || s.users == nil || s.progress == nil || s.bookings == nil {
		return AdvisorOverview{}, fmt.Errorf("dashboard dependencies not configured")
	}
	if err := authorize(principal, CapReviewRequests); err != nil {
		return AdvisorOverview{}, err
	}

	advisees, err := s.users.ListUsers(ctx, UserFilter{Role: RoleStudent, AdvisorID: principal.UserID})
	if err != nil {
		return AdvisorOverview{}, mapRepoError(err)
	}

	overview := AdvisorOverview{Advisees: make([]AdviseeSummary, 0, len(advisees))}
	for _, student := range advisees {
		credits, err := s.progress.EnrolledCredits(ctx, student.ID)
		if err != nil {
			return AdvisorOverview{}, err
		}
		pending, err := s.progress.PendingRequestCount(ctx, student.ID)
		if err != nil {
			return AdvisorOverview{}, err
		}
		overview.Advisees = append(overview.Advisees, AdviseeSummary{
			Student:         student,
			EnrolledCredits: credits,
			PendingRequests: pending,
		})
	}

	overview.PendingBookings, err = s.bookings.PendingBookings(ctx, principal)
	if err != nil {
		return AdvisorOverview{}, err
	}
	if overview.PendingBookings == nil {
		overview.PendingBookings = []Booking{}
	}
	return overview, nil
}
