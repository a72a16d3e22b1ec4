package service

import (
	"context"
	"time"

	"air_purifier/internal/appliance"
	"air_purifier/internal/logger"
	"air_purifier/internal/models"
	"air_purifier/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Purifier exposes the characteristic protocol of the single accessory.
type Purifier interface {
	Name() string
	Identity() models.Identity
	Get(ctx context.Context, name string) (any, error)
	Set(ctx context.Context, name string, value any) error
	Identify(ctx context.Context) error
}

// Monitoring exposes read-only snapshots and the characteristic table.
type Monitoring interface {
	GetState(ctx context.Context) (models.PurifierState, error)
	Characteristics() []appliance.Descriptor
}

// EventLog exposes the append-only journal with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.PurifierEvent, error)
}

// Watcher polls the derived state and fans changes out to listeners.
// Stop via context cancellation in main() for graceful shutdown.
type Watcher interface {
	Run(ctx context.Context, tick time.Duration)
	Subscribe(l StateListener) (unsubscribe func())
}

// Service aggregates all sub-services.
type Service struct {
	Purifier
	Monitoring
	EventLog
	Watcher
	Authorization
}

// NewService wires the repositories and the one appliance into concrete
// services. Every service shares one guarded accessory and one notifier.
func NewService(repos *repository.Repository, app *appliance.Appliance, auth AuthConfig, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	acc := newGuardedAccessory(app)
	notifier := NewNotifier()

	return &Service{
		Purifier:      NewPurifierService(acc, repos.EventRepo, notifier, log.Named("purifier")),
		Monitoring:    NewMonitoringService(acc),
		EventLog:      NewEventLogService(repos.EventRepo),
		Watcher:       NewWatcherService(acc, repos.EventRepo, notifier, log.Named("watcher")),
		Authorization: NewAuthService(repos.Auth, auth),
	}
}
