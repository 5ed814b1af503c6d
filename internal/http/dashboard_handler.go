package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/campus-portal/internal/application"
)

type dashboardService interface {
	AdminStats(ctx context.Context, principal application.Principal) (application.SystemStats, error)
	AdvisorOverview(ctx context.Context, principal application.Principal) (application.AdvisorOverview, error)
}

// DashboardHandler serves the admin and advisor dashboards.
type DashboardHandler struct {
	service   dashboardService
	responder responder
	logger    *slog.Logger
}

func NewDashboardHandler(service dashboardService, logger *slog.Logger) *DashboardHandler {
	base := defaultLogger(logger)
	return &DashboardHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *DashboardHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "DashboardHandler", operation, attrs...)
}

func (h *DashboardHandler) AdminStats(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	stats, err := h.service.AdminStats(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "AdminStats", "principal_id", principal.UserID).ErrorContext(r.Context(), "stats lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, statsResponse{
		UsersByRole:           nonNilCounts(stats.UsersByRole),
		Courses:               stats.Courses,
		ActiveEnrollments:     stats.ActiveEnrollments,
		PendingCourseRequests: stats.PendingCourseRequests,
		BookingsByStatus:      nonNilCounts(stats.BookingsByStatus),
	})
}

func (h *DashboardHandler) AdvisorOverview(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	overview, err := h.service.AdvisorOverview(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "AdvisorOverview", "principal_id", principal.UserID).ErrorContext(r.Context(), "advisor overview failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	advisees := make([]adviseeDTO, 0, len(overview.Advisees))
	for _, summary := range overview.Advisees {
		advisees = append(advisees, adviseeDTO{
			Student:         toUserDTO(summary.Student),
			EnrolledCredits: summary.EnrolledCredits,
			PendingRequests: summary.PendingRequests,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, advisorOverviewResponse{
		Advisees:        advisees,
		PendingBookings: toBookingDTOs(overview.PendingBookings),
	})
}

type statsResponse struct {
	UsersByRole           map[string]int `json:"users_by_role"`
	Courses               int            `json:"courses"`
	ActiveEnrollments     int            `json:"active_enrollments"`
	PendingCourseRequests int            `json:"pending_course_requests"`
	BookingsByStatus      map[string]int `json:"bookings_by_status"`
}

type adviseeDTO struct {
	Student         userDTO `json:"student"`
	EnrolledCredits int     `json:"enrolled_credits"`
	PendingRequests int     `json:"pending_requests"`
}

type advisorOverviewResponse struct {
	Advisees        []adviseeDTO `json:"advisees"`
	PendingBookings []bookingDTO `json:"pending_bookings"`
}

func nonNilCounts(counts map[string]int) map[string]int {
	if counts == nil {
		return map[string]int{}
	}
	return counts
}
