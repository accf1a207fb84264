package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/timetrack/internal/application"
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

// RegistrationServiceDeps captures dependencies for constructing a
// registration service.
type RegistrationServiceDeps struct {
	Registrations application.RegistrationRepository
	Workers       application.WorkerRepository
	IDGenerator   func() string
	Now           func() time.Time
	Logger        *slog.Logger
}

// NewRegistrationService builds a registration service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewRegistrationService(deps RegistrationServiceDeps) *application.RegistrationService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewRegistrationServiceWithLogger(
		deps.Registrations,
		deps.Workers,
		idGen,
		now,
		deps.Logger,
	)
}

// WorkerServiceDeps captures dependencies for constructing a worker service.
type WorkerServiceDeps struct {
	Workers     application.WorkerRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewWorkerService builds a worker service using the supplied dependencies.
func (f *ServiceFactory) NewWorkerService(deps WorkerServiceDeps) *application.WorkerService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewWorkerServiceWithLogger(
		deps.Workers,
		idGen,
		now,
		deps.Logger,
	)
}

// ReportServiceDeps captures dependencies for constructing a report service.
type ReportServiceDeps struct {
	Registrations application.RegistrationRepository
	Workers       application.WorkerRepository
	Now           func() time.Time
	Logger        *slog.Logger
}

// NewReportService builds a report service using the supplied dependencies.
func (f *ServiceFactory) NewReportService(deps ReportServiceDeps) *application.ReportService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewReportServiceWithLogger(
		deps.Registrations,
		deps.Workers,
		now,
		deps.Logger,
	)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Admins         application.AdminDirectory
	Sessions       application.SessionRepository
	IDGenerator    func() string
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	token := deps.TokenGenerator
	if token == nil {
		token = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAuthServiceWithLogger(
		deps.Admins,
		deps.Sessions,
		idGen,
		token,
		now,
		deps.SessionTTL,
		deps.Logger,
	)
}
