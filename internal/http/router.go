package http

import (
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/example/campus-portal/internal/application"
)

// RouterConfig wires handlers into the portal routes. Nil handlers leave their
// routes unregistered.
type RouterConfig struct {
	Sessions    SessionValidator
	Auth        *AuthHandler
	Users       *UserHandler
	Classrooms  *ClassroomHandler
	Bookings    *BookingHandler
	Courses     *CourseHandler
	Assignments *AssignmentHandler
	Dashboards  *DashboardHandler
	Attributes  *AttributeHandler
	Health      *HealthHandler
	Logger      *slog.Logger
	Middleware  []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)
	res := newResponder(logger)

	router := httprouter.New()
	router.RedirectTrailingSlash = true
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res.writeJSON(r.Context(), w, http.StatusNotFound, errorResponse{Message: statusMessage(http.StatusNotFound)})
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res.writeJSON(r.Context(), w, http.StatusMethodNotAllowed, errorResponse{Message: http.StatusText(http.StatusMethodNotAllowed)})
	})

	session := RequireSession(cfg.Sessions, logger)
	// protect requires a session and, when capabilities are listed, at least one of them.
	protect := func(h http.HandlerFunc, capabilities ...application.Capability) http.Handler {
		var handler http.Handler = h
		if len(capabilities) > 0 {
			handler = RequireCapability(logger, capabilities...)(handler)
		}
		return session(handler)
	}

	if cfg.Health != nil {
		router.Handler(http.MethodGet, "/healthz", http.HandlerFunc(cfg.Health.Check))
	}

	if cfg.Auth != nil {
		router.Handler(http.MethodPost, "/auth/login", http.HandlerFunc(cfg.Auth.Login))
		router.Handler(http.MethodPost, "/auth/logout", protect(cfg.Auth.Logout))
		router.Handler(http.MethodPost, "/auth/refresh", protect(cfg.Auth.Refresh))
	}

	if cfg.Users != nil {
		router.Handler(http.MethodGet, "/users", protect(cfg.Users.List, application.CapManageUsers))
		router.Handler(http.MethodPost, "/users", protect(cfg.Users.Create, application.CapManageUsers))
		router.Handler(http.MethodGet, "/users/:id", protect(cfg.Users.Get, application.CapManageUsers))
		router.Handler(http.MethodPut, "/users/:id", protect(cfg.Users.Update, application.CapManageUsers))
		router.Handler(http.MethodDelete, "/users/:id", protect(cfg.Users.Delete, application.CapManageUsers))
	}

	if cfg.Classrooms != nil {
		router.Handler(http.MethodGet, "/classrooms", protect(cfg.Classrooms.List))
		router.Handler(http.MethodPost, "/classrooms", protect(cfg.Classrooms.Create, application.CapManageClassrooms))
		router.Handler(http.MethodGet, "/classrooms/:id", protect(cfg.Classrooms.Get))
		router.Handler(http.MethodPut, "/classrooms/:id", protect(cfg.Classrooms.Update, application.CapManageClassrooms))
		router.Handler(http.MethodDelete, "/classrooms/:id", protect(cfg.Classrooms.Delete, application.CapManageClassrooms))
		router.Handler(http.MethodGet, "/classrooms/:id/availability", protect(cfg.Classrooms.Availability))
	}

	if cfg.Bookings != nil {
		router.Handler(http.MethodGet, "/bookings", protect(cfg.Bookings.List))
		router.Handler(http.MethodPost, "/bookings", protect(cfg.Bookings.Create, application.CapCreateBookings))
		router.Handler(http.MethodGet, "/bookings/:id", protect(cfg.Bookings.Get))
		router.Handler(http.MethodPatch, "/bookings/:id", protect(cfg.Bookings.Update, application.CapCreateBookings))
		router.Handler(http.MethodDelete, "/bookings/:id", protect(cfg.Bookings.Delete, application.CapCreateBookings))
		router.Handler(http.MethodPut, "/bookings/:id/status", protect(cfg.Bookings.ChangeStatus, application.CapReviewBookings))
	}

	if cfg.Courses != nil {
		router.Handler(http.MethodGet, "/courses", protect(cfg.Courses.List))
		router.Handler(http.MethodPost, "/courses", protect(cfg.Courses.Create, application.CapManageCourses))
		router.Handler(http.MethodGet, "/courses/:id", protect(cfg.Courses.Get))
		router.Handler(http.MethodPut, "/courses/:id", protect(cfg.Courses.Update, application.CapManageCourses))
		router.Handler(http.MethodGet, "/course-requests", protect(cfg.Courses.ListRequests))
		router.Handler(http.MethodPost, "/course-requests", protect(cfg.Courses.SubmitRequest, application.CapEnrollCourses))
		router.Handler(http.MethodPut, "/course-requests/:id/decision", protect(cfg.Courses.Decide, application.CapReviewRequests))
		router.Handler(http.MethodPut, "/enrollments/:id/grade", protect(cfg.Courses.Grade, application.CapTeachCourses))
		router.Handler(http.MethodGet, "/student/courses", protect(cfg.Courses.StudentCourses, application.CapEnrollCourses))
		router.Handler(http.MethodGet, "/student/gpa", protect(cfg.Courses.StudentGPA, application.CapEnrollCourses))
	}

	if cfg.Assignments != nil {
		router.Handler(http.MethodGet, "/courses/:id/assignments", protect(cfg.Assignments.List))
		router.Handler(http.MethodPost, "/courses/:id/assignments", protect(cfg.Assignments.Create, application.CapTeachCourses))
		router.Handler(http.MethodGet, "/assignments/:id/submissions", protect(cfg.Assignments.ListSubmissions))
		router.Handler(http.MethodPost, "/assignments/:id/submissions", protect(cfg.Assignments.Submit, application.CapSubmitWork))
		router.Handler(http.MethodPut, "/submissions/:id/score", protect(cfg.Assignments.Score, application.CapTeachCourses))
	}

	if cfg.Dashboards != nil {
		router.Handler(http.MethodGet, "/admin/stats", protect(cfg.Dashboards.AdminStats, application.CapReadStats))
		router.Handler(http.MethodGet, "/advisor/overview", protect(cfg.Dashboards.AdvisorOverview, application.CapReviewRequests))
	}

	if cfg.Attributes != nil {
		router.Handler(http.MethodGet, "/eav/:entityType/:entityId", protect(cfg.Attributes.Get))
		router.Handler(http.MethodPost, "/eav/:entityType/:entityId", protect(cfg.Attributes.Set))
	}

	var handler http.Handler = router
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}
