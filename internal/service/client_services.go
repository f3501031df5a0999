package service

import (
	"github.com/MKhiriev/go-plan-keeper/internal/adapter"
	"github.com/MKhiriev/go-plan-keeper/internal/broadcast"
	"github.com/MKhiriev/go-plan-keeper/internal/config"
	"github.com/MKhiriev/go-plan-keeper/internal/events"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/store"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
)

// ClientServices aggregates the client sync engine.
type ClientServices struct {
	Differ      SnapshotDiffer
	Sessions    ClientSessionService
	Reconciler  ClientReconciler
	Coordinator ClientSaveCoordinator

	clock   utils.Clock
	workers config.ClientWorkers
	logger  *logger.Logger
}

// ClientDeps are the collaborators the sync engine is built on.
type ClientDeps struct {
	Cache      store.LocalCache
	Remote     adapter.RemoteStore
	Provider   adapter.SessionProvider
	Channel    broadcast.Channel
	Clock      utils.Clock
	IDs        utils.IDGenerator
	InstanceID string
}

func NewClientServices(deps ClientDeps, cfg *config.ClientConfig, log *logger.Logger) *ClientServices {
	sessions := NewClientSessionService(deps.Provider, deps.Cache, SessionConfig{
		Login:           cfg.App.Login,
		Password:        cfg.App.Password,
		RestoreAttempts: cfg.Workers.RestoreAttempts,
		RestoreBackoff:  cfg.Workers.RestoreBackoff,
	}, log.WithComponent("session"))

	differ := NewSnapshotDiffer()
	reconciler := NewClientReconciler(deps.Remote, sessions, deps.Cache, deps.Clock, cfg.Adapter.RequestTimeout, log.WithComponent("reconciler"))
	coordinator := NewClientSaveCoordinator(reconciler, differ, deps.Cache, deps.Channel, sessions, deps.IDs, deps.Clock, CoordinatorConfig{
		WatchdogTimeout:  cfg.Workers.WatchdogTimeout,
		SavedRevertDelay: cfg.Workers.SavedRevertDelay,
		InstanceID:       deps.InstanceID,
	}, log.WithComponent("coordinator"))

	return &ClientServices{
		Differ:      differ,
		Sessions:    sessions,
		Reconciler:  reconciler,
		Coordinator: coordinator,
		clock:       deps.Clock,
		workers:     cfg.Workers,
		logger:      log,
	}
}

// NewDispatcher creates a dispatcher feeding the coordinator from source.
func (s *ClientServices) NewDispatcher(source events.Source) ClientDispatcher {
	return NewClientDispatcher(s.Coordinator, s.Sessions, source, s.clock, DispatcherConfig{
		AutosaveInterval: s.workers.AutosaveInterval,
		WakeDebounce:     s.workers.WakeDebounce,
		WatchdogTimeout:  s.workers.WatchdogTimeout,
	}, s.logger.WithComponent("dispatcher"))
}
