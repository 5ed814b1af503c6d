package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/campus-portal/internal/application"
	"github.com/example/campus-portal/internal/booking"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

func (f *ServiceFactory) ids(override func() string) func() string {
	if override != nil {
		return override
	}
	return f.IDGenerator.NextFunc()
}

func (f *ServiceFactory) now(override func() time.Time) func() time.Time {
	if override != nil {
		return override
	}
	return f.Clock.NowFunc()
}

// FastHash is a deterministic, non-cryptographic password hasher for tests
// that do not exercise argon2id itself.
func FastHash(password string) (string, error) {
	return "plain:" + password, nil
}

// FastVerify pairs with FastHash.
func FastVerify(hashed, password string) error {
	if hashed != "plain:"+password {
		return application.ErrInvalidCredentials
	}
	return nil
}

// UserServiceDeps captures dependencies for constructing a user service.
type UserServiceDeps struct {
	Users       application.UserRepository
	Hasher      application.PasswordHasher
	IDGenerator func() string
	Now         func() time.Time
}

// NewUserService builds a user service using the supplied dependencies. When
// no hasher is given FastHash is used.
func (f *ServiceFactory) NewUserService(deps UserServiceDeps) *application.UserService {
	hasher := deps.Hasher
	if hasher == nil {
		hasher = FastHash
	}
	return application.NewUserService(deps.Users, hasher, f.ids(deps.IDGenerator), f.now(deps.Now))
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Credentials    application.CredentialStore
	Sessions       application.SessionRepository
	Tokens         application.TokenCodec
	PasswordVerify application.PasswordVerifier
	IDGenerator    func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// TestTokenSecret signs session tokens issued by factory-built auth services.
const TestTokenSecret = "testfixtures-session-secret"

// NewAuthService builds an auth service using the supplied dependencies. A
// JWT codec bound to the factory clock is used when Tokens is nil.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) (*application.AuthService, error) {
	now := f.now(deps.Now)
	tokens := deps.Tokens
	if tokens == nil {
		codec, err := application.NewJWTCodec(TestTokenSecret, now)
		if err != nil {
			return nil, err
		}
		tokens = codec
	}
	verify := deps.PasswordVerify
	if verify == nil {
		verify = FastVerify
	}
	return application.NewAuthServiceWithLogger(
		deps.Credentials,
		deps.Sessions,
		tokens,
		verify,
		f.ids(deps.IDGenerator),
		now,
		deps.SessionTTL,
		deps.Logger,
	), nil
}

// ClassroomServiceDeps captures dependencies for constructing a classroom service.
type ClassroomServiceDeps struct {
	Classrooms  application.ClassroomRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewClassroomService builds a classroom service using the supplied dependencies.
func (f *ServiceFactory) NewClassroomService(deps ClassroomServiceDeps) *application.ClassroomService {
	return application.NewClassroomServiceWithLogger(deps.Classrooms, f.ids(deps.IDGenerator), f.now(deps.Now), deps.Logger)
}

// BookingServiceDeps captures dependencies for constructing a booking service.
type BookingServiceDeps struct {
	Tx         application.Transactor
	Bookings   application.BookingRepository
	Classrooms application.ClassroomCatalog
	Policy     booking.Policy
	Events     application.EventPublisher
	Now        func() time.Time
	Logger     *slog.Logger
}

// NewBookingService builds a booking service using the supplied dependencies.
func (f *ServiceFactory) NewBookingService(deps BookingServiceDeps) *application.BookingService {
	opts := []application.BookingServiceOption{
		application.WithBookingPolicy(deps.Policy),
		application.WithBookingLogger(deps.Logger),
	}
	if deps.Events != nil {
		opts = append(opts, application.WithEventPublisher(deps.Events))
	}
	return application.NewBookingService(deps.Tx, deps.Bookings, deps.Classrooms, f.now(deps.Now), opts...)
}

// CourseServiceDeps captures dependencies for constructing a course service.
type CourseServiceDeps struct {
	Tx          application.Transactor
	Store       application.CourseStore
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewCourseService builds a course service using the supplied dependencies.
func (f *ServiceFactory) NewCourseService(deps CourseServiceDeps) *application.CourseService {
	return application.NewCourseServiceWithLogger(deps.Tx, deps.Store, f.ids(deps.IDGenerator), f.now(deps.Now), deps.Logger)
}

// AssignmentServiceDeps captures dependencies for constructing an assignment service.
type AssignmentServiceDeps struct {
	Assignments application.AssignmentRepository
	Courses     application.CourseAccess
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewAssignmentService builds an assignment service using the supplied dependencies.
func (f *ServiceFactory) NewAssignmentService(deps AssignmentServiceDeps) *application.AssignmentService {
	return application.NewAssignmentService(deps.Assignments, deps.Courses, f.ids(deps.IDGenerator), f.now(deps.Now), deps.Logger)
}

// AttributeServiceDeps captures dependencies for constructing an attribute service.
type AttributeServiceDeps struct {
	Attributes application.AttributeRepository
	Entities   application.AttributeEntities
	Now        func() time.Time
	Logger     *slog.Logger
}

// NewAttributeService builds an attribute service using the supplied dependencies.
func (f *ServiceFactory) NewAttributeService(deps AttributeServiceDeps) *application.AttributeService {
	return application.NewAttributeService(deps.Attributes, deps.Entities, f.now(deps.Now), deps.Logger)
}
