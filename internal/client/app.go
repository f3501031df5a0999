package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-plan-keeper/internal/adapter"
	"github.com/MKhiriev/go-plan-keeper/internal/broadcast"
	"github.com/MKhiriev/go-plan-keeper/internal/config"
	"github.com/MKhiriev/go-plan-keeper/internal/events"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/service"
	"github.com/MKhiriev/go-plan-keeper/internal/store"
	"github.com/MKhiriev/go-plan-keeper/internal/tui"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
	"github.com/MKhiriev/go-plan-keeper/internal/workers"
	"github.com/MKhiriev/go-plan-keeper/models"
)

// uiSignalBuffer is the capacity of the terminal and change feed signal
// source.
const uiSignalBuffer = 16

type App struct {
	cfg *config.ClientConfig

	storages *store.ClientStorages
	remote   *adapter.HTTPServerAdapter
	prober   *adapter.GRPCHealthProber
	channel  *broadcast.SQLiteChannel
	services *service.ClientServices
	signals  *events.ChannelSource
	ui       *tui.TUI

	clock  utils.Clock
	logger *logger.Logger
}

// NewApp opens the local cache and builds the sync engine. Nothing talks to
// the server until Run.
func NewApp(ctx context.Context, cfg *config.ClientConfig, buildInfo models.AppBuildInfo, log *logger.Logger) (*App, error) {
	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	remote, err := adapter.NewHTTPServerAdapter(cfg.Adapter, log)
	if err != nil {
		_ = storages.Close()
		return nil, fmt.Errorf("create server adapter: %w", err)
	}

	var prober *adapter.GRPCHealthProber
	if cfg.Adapter.GRPCAddress != "" {
		if prober, err = adapter.NewGRPCHealthProber(cfg.Adapter.GRPCAddress); err != nil {
			_ = storages.Close()
			return nil, fmt.Errorf("create connectivity prober: %w", err)
		}
	}

	clock := utils.NewRealClock()
	channel, err := broadcast.NewSQLiteChannel(ctx, storages.Outbox, clock, cfg.Workers.BroadcastPollInterval, log.WithComponent("broadcast"))
	if err != nil {
		_ = storages.Close()
		return nil, fmt.Errorf("create broadcast channel: %w", err)
	}

	ids := utils.NewUUIDGenerator()
	services := service.NewClientServices(service.ClientDeps{
		Cache:      storages.Cache,
		Remote:     remote,
		Provider:   remote,
		Channel:    channel,
		Clock:      clock,
		IDs:        ids,
		InstanceID: ids.Generate(),
	}, cfg, log)

	signals := events.NewChannelSource("tui", uiSignalBuffer)

	return &App{
		cfg:      cfg,
		storages: storages,
		remote:   remote,
		prober:   prober,
		channel:  channel,
		services: services,
		signals:  signals,
		ui:       tui.New(services, signals, buildInfo, log.WithComponent("tui")),
		clock:    clock,
		logger:   log,
	}, nil
}

// Run implements [Client].
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	if err := a.signIn(ctx); err != nil {
		return err
	}

	if err := a.services.Coordinator.Resume(ctx); err != nil {
		a.logger.Warn().Err(err).Str("func", "App.Run").Msg("local cache could not be fully restored")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ws, exited := a.newWorkers(runCtx, cancel)

	workersDone := make(chan error, 1)
	go func() { workersDone <- ws.Run(runCtx) }()

	uiErr := a.ui.MainLoop(runCtx)

	// the dispatcher performs the exit save and stops
	a.signals.Emit(models.LifecycleExit)
	select {
	case <-exited:
	case <-time.After(2 * a.cfg.Workers.WatchdogTimeout):
		a.logger.Warn().Str("func", "App.Run").Msg("exit save did not settle in time")
	}

	cancel()
	workersErr := <-workersDone

	return errors.Join(uiErr, workersErr)
}

// signIn restores the cached session or asks for credentials.
func (a *App) signIn(ctx context.Context) error {
	err := a.services.Sessions.Start(ctx)
	if err == nil {
		return nil
	}

	notice := ""
	if !errors.Is(err, service.ErrNoCredentials) {
		a.logger.Warn().Err(err).Str("func", "App.signIn").Msg("automatic sign in failed")
		notice = "Не удалось войти автоматически. Войдите вручную."
	}

	if err = a.ui.LoginFlow(ctx, notice); err != nil {
		return fmt.Errorf("login flow: %w", err)
	}
	return nil
}

// newWorkers builds the background workers. exited is closed when the
// dispatcher stopped; runCtx is cancelled then, which also ends the UI.
func (a *App) newWorkers(runCtx context.Context, cancel context.CancelFunc) (*workers.Workers, <-chan struct{}) {
	ws := workers.NewWorkers(a.logger.WithComponent("workers"))

	sources := []events.Source{a.signals, events.NewSignalSource(runCtx)}
	if a.prober != nil {
		connectivity := events.NewConnectivitySource(a.prober, a.clock, a.cfg.Workers.ProbeInterval, a.cfg.Adapter.RequestTimeout, a.logger.WithComponent("connectivity"))
		sources = append(sources, connectivity)
		ws.Add("connectivity", connectivity)
	}

	dispatcher := a.services.NewDispatcher(events.NewMux(runCtx, sources...))
	exited := make(chan struct{})
	ws.Add("dispatcher", workers.WorkerFunc(func(ctx context.Context) error {
		defer close(exited)
		defer cancel()
		return dispatcher.Run(ctx)
	}))

	ws.Add("change-feed", workers.NewChangeFeedWorker(
		a.remote, a.services.Sessions.Current, a.signals, a.clock, a.cfg.Workers.RestoreBackoff, a.logger.WithComponent("change-feed"),
	))
	ws.Add("broadcast", workers.NewBroadcastWorker(a.channel, a.channel, a.services.Coordinator.ApplyBroadcast))

	return ws, exited
}

func (a *App) close() {
	if a.prober != nil {
		if err := a.prober.Close(); err != nil {
			a.logger.Err(err).Str("func", "App.close").Msg("closing prober")
		}
	}
	if err := a.storages.Close(); err != nil {
		a.logger.Err(err).Str("func", "App.close").Msg("closing local storage")
	}
}
