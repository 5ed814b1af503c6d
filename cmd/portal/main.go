package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/campus-portal/internal/application"
	"github.com/example/campus-portal/internal/booking"
	"github.com/example/campus-portal/internal/config"
	"github.com/example/campus-portal/internal/events"
	httptransport "github.com/example/campus-portal/internal/http"
	"github.com/example/campus-portal/internal/logging"
	"github.com/example/campus-portal/internal/persistence/sqlite"
)

type eventPublisher interface {
	application.EventPublisher
	Close() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stdout, slog.LevelInfo).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	storage, err := sqlite.Open(ctx, sqlite.DefaultConfig(cfg.SQLiteDSN), logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(ctx); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	publisher, err := newEventPublisher(cfg, logger)
	if err != nil {
		logger.Error("failed to configure event publisher", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := publisher.Close(); cerr != nil {
			logger.Error("failed to close event publisher", "error", cerr)
		}
	}()

	svc, err := newServices(cfg, storage, publisher, uuid.NewString, time.Now, logger)
	if err != nil {
		logger.Error("failed to build services", "error", err)
		os.Exit(1)
	}

	if cfg.BootstrapAdminEmail != "" {
		admin, created, err := svc.users.EnsureAdmin(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword)
		if err != nil {
			logger.Error("failed to bootstrap administrator", "error", err, "error_kind", application.ErrorKind(err))
			os.Exit(1)
		}
		if created {
			logger.Info("bootstrap administrator created", "user_id", admin.ID, "email", admin.Email)
		}
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newHandler(svc, storage, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("portal API listening", "addr", server.Addr, "kafka_enabled", cfg.KafkaEnabled())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func newEventPublisher(cfg config.Config, logger *slog.Logger) (eventPublisher, error) {
	if !cfg.KafkaEnabled() {
		return events.NopPublisher{}, nil
	}
	return events.NewKafkaPublisher(events.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic}, logger)
}

type services struct {
	users       *application.UserService
	auth        *application.AuthService
	classrooms  *application.ClassroomService
	bookings    *application.BookingService
	courses     *application.CourseService
	assignments *application.AssignmentService
	attributes  *application.AttributeService
	dashboards  *application.DashboardService
}

func newServices(cfg config.Config, storage *sqlite.Storage, publisher application.EventPublisher, idGenerator func() string, now func() time.Time, logger *slog.Logger) (services, error) {
	tokens, err := application.NewJWTCodec(cfg.SessionSecret, now)
	if err != nil {
		return services{}, fmt.Errorf("session token codec: %w", err)
	}

	userRepo := newUserRepositoryAdapter(storage)
	classroomRepo := newClassroomRepositoryAdapter(storage)
	bookingRepo := newBookingRepositoryAdapter(storage)

	svc := services{
		users:      application.NewUserService(userRepo, application.HashPassword, idGenerator, now),
		auth:       application.NewAuthServiceWithLogger(newCredentialStoreAdapter(storage), newSessionRepositoryAdapter(storage), tokens, application.VerifyPassword, idGenerator, now, cfg.SessionTTL, logger),
		classrooms: application.NewClassroomServiceWithLogger(classroomRepo, idGenerator, now, logger),
		bookings: application.NewBookingService(storage, bookingRepo, classroomRepo, now,
			application.WithBookingPolicy(booking.Policy{ReleaseRejected: cfg.ReleaseRejectedBookings}),
			application.WithEventPublisher(publisher),
			application.WithBookingLogger(logger),
		),
	}
	svc.courses = application.NewCourseServiceWithLogger(storage, application.CourseStore{
		Courses:     newCourseRepositoryAdapter(storage),
		Enrollments: newEnrollmentRepositoryAdapter(storage),
		Requests:    newCourseRequestRepositoryAdapter(storage),
		Users:       userRepo,
	}, idGenerator, now, logger)
	svc.assignments = application.NewAssignmentService(newAssignmentRepositoryAdapter(storage), svc.courses, idGenerator, now, logger)
	svc.attributes = application.NewAttributeService(newAttributeRepositoryAdapter(storage), application.AttributeEntities{
		Users:      userRepo,
		Courses:    svc.courses,
		Classrooms: classroomRepo,
	}, now, logger)
	svc.dashboards = application.NewDashboardService(newStatsRepositoryAdapter(storage), userRepo, svc.courses, svc.bookings)
	return svc, nil
}

func newHandler(svc services, storage httptransport.Pinger, logger *slog.Logger) http.Handler {
	return httptransport.NewRouter(httptransport.RouterConfig{
		Sessions:    svc.auth,
		Auth:        httptransport.NewAuthHandler(svc.auth, logger),
		Users:       httptransport.NewUserHandler(svc.users, logger),
		Classrooms:  httptransport.NewClassroomHandler(svc.classrooms, svc.bookings, logger),
		Bookings:    httptransport.NewBookingHandler(svc.bookings, logger),
		Courses:     httptransport.NewCourseHandler(svc.courses, logger),
		Assignments: httptransport.NewAssignmentHandler(svc.assignments, logger),
		Dashboards:  httptransport.NewDashboardHandler(svc.dashboards, logger),
		Attributes:  httptransport.NewAttributeHandler(svc.attributes, logger),
		Health:      httptransport.NewHealthHandler(storage, logger),
		Logger:      logger,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.Recovery(logger),
			httptransport.RequestLogger(logger),
		},
	})
}
