package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-plan-keeper/internal/events"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
	"github.com/MKhiriev/go-plan-keeper/models"
)

// SessionRestorer re-establishes the session during a wake cycle.
type SessionRestorer interface {
	Restore(ctx context.Context) error
}

// DispatcherConfig holds the timings of a dispatcher.
type DispatcherConfig struct {
	AutosaveInterval time.Duration
	WakeDebounce     time.Duration
	// WatchdogTimeout bounds the exit save.
	WatchdogTimeout time.Duration
}

type clientDispatcher struct {
	coordinator ClientSaveCoordinator
	sessions    SessionRestorer
	source      events.Source
	clock       utils.Clock
	cfg         DispatcherConfig
	logger      *logger.Logger

	mu          sync.Mutex
	wakeTimer   utils.Timer
	wakeSignals int
	// wakes coalesces fired debounce windows for the wake worker.
	wakes chan int
}

// NewClientDispatcher creates a dispatcher reading lifecycle events from
// source.
func NewClientDispatcher(
	coordinator ClientSaveCoordinator,
	sessions SessionRestorer,
	source events.Source,
	clock utils.Clock,
	cfg DispatcherConfig,
	log *logger.Logger,
) ClientDispatcher {
	return &clientDispatcher{
		coordinator: coordinator,
		sessions:    sessions,
		source:      source,
		clock:       clock,
		cfg:         cfg,
		logger:      log,
		wakes:       make(chan int, 1),
	}
}

// Run implements [ClientDispatcher]. It returns nil after an exit event was
// handled or the source was exhausted.
func (d *clientDispatcher) Run(ctx context.Context) error {
	ticker := d.clock.NewTicker(d.cfg.AutosaveInterval)
	defer ticker.Stop()
	defer d.stopWake()

	var wg sync.WaitGroup
	wakeCtx, stopWakes := context.WithCancel(ctx)
	defer func() {
		stopWakes()
		wg.Wait()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		d.wakeWorker(wakeCtx)
	}()

	d.logger.Info().
		Str("func", "clientDispatcher.Run").
		Dur("autosave_interval", d.cfg.AutosaveInterval).
		Dur("wake_debounce", d.cfg.WakeDebounce).
		Msg("dispatcher started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C():
			d.coordinator.RequestSave(ctx, models.SaveRequest{Auto: true, Trigger: models.TriggerPeriodic})

		case ev, ok := <-d.source.Events():
			if !ok {
				d.logger.Info().Str("func", "clientDispatcher.Run").Msg("event source closed")
				return nil
			}
			if ev.Kind == models.LifecycleExit {
				<-d.HandleExit(ctx)
				return nil
			}
			d.handle(ctx, ev)
		}
	}
}

func (d *clientDispatcher) handle(ctx context.Context, ev models.LifecycleEvent) {
	log := d.logger.With().
		Str("func", "clientDispatcher.handle").
		Str("kind", string(ev.Kind)).
		Str("source", ev.Source).
		Logger()

	switch {
	case ev.Kind == models.LifecycleBackground:
		d.coordinator.SetBackgrounded(true)
		d.coordinator.MarkPending(ctx)
		outcome := d.coordinator.RequestSave(ctx, models.SaveRequest{Force: true, Auto: true, Trigger: models.TriggerBackground})
		log.Debug().Str("outcome", string(outcome)).Msg("backgrounded")

	case ev.Kind.IsWake():
		d.coordinator.SetBackgrounded(false)
		d.scheduleWake()

	case ev.Kind == models.LifecycleOnline:
		d.coordinator.SetOnline(true)
		d.coordinator.RequestSave(ctx, models.SaveRequest{Force: true, Auto: true, Trigger: models.TriggerOnline})
		if err := d.coordinator.RefreshList(ctx); err != nil {
			log.Warn().Err(err).Msg("refresh after reconnect failed")
		}
		if n := d.coordinator.FlushQueue(ctx); n > 0 {
			log.Info().Int("flushed", n).Msg("offline queue flushed")
		}

	case ev.Kind == models.LifecycleOffline:
		d.coordinator.SetOnline(false)

	case ev.Kind == models.LifecycleRemoteChange:
		if err := d.coordinator.RefreshList(ctx); err != nil {
			log.Warn().Err(err).Msg("refresh after remote change failed")
		}

	default:
		log.Debug().Msg("event ignored")
	}
}

// ── wake ─────────────────────────────────────────────────────────────────────

// scheduleWake restarts the debounce window. Only the last signal of a
// burst starts a wake cycle.
func (d *clientDispatcher) scheduleWake() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.wakeSignals++
	if d.wakeTimer != nil {
		d.wakeTimer.Stop()
	}
	d.wakeTimer = d.clock.AfterFunc(d.cfg.WakeDebounce, d.fireWake)
}

func (d *clientDispatcher) fireWake() {
	d.mu.Lock()
	signals := d.wakeSignals
	d.wakeSignals = 0
	d.wakeTimer = nil
	d.mu.Unlock()

	select {
	case d.wakes <- signals:
	default:
		// a cycle is already queued and will observe the same state
	}
}

func (d *clientDispatcher) stopWake() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.wakeTimer != nil {
		d.wakeTimer.Stop()
		d.wakeTimer = nil
	}
}

func (d *clientDispatcher) wakeWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case signals := <-d.wakes:
			d.runWake(ctx, signals)
		}
	}
}

// runWake performs one wake cycle: release a lock that outlived its
// deadline while the process was suspended, restore the session, refresh
// the list, then push pending work.
func (d *clientDispatcher) runWake(ctx context.Context, signals int) {
	log := d.logger.With().Str("func", "clientDispatcher.runWake").Int("signals", signals).Logger()
	log.Debug().Msg("wake cycle started")

	if d.coordinator.ReleaseStaleLock(d.clock.Now()) {
		log.Warn().Msg("stale save lock released")
	}

	if err := d.sessions.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("session not restored, wake cycle stopped")
		return
	}

	if err := d.coordinator.RefreshList(ctx); err != nil {
		log.Warn().Err(err).Msg("list refresh failed")
	}

	if d.coordinator.Pending() {
		outcome := d.coordinator.RequestSave(ctx, models.SaveRequest{Force: true, Auto: true, Trigger: models.TriggerWake})
		log.Debug().Str("outcome", string(outcome)).Msg("pending record saved")

		select {
		case <-d.coordinator.Settled():
		case <-ctx.Done():
			return
		}
	}

	if n := d.coordinator.FlushQueue(ctx); n > 0 {
		log.Info().Int("flushed", n).Msg("offline queue flushed")
	}
}

// ── exit ─────────────────────────────────────────────────────────────────────

// HandleExit implements [ClientDispatcher].
func (d *clientDispatcher) HandleExit(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	outcome := d.coordinator.RequestSave(ctx, models.SaveRequest{Force: true, Auto: true, Trigger: models.TriggerExit})
	d.logger.Info().
		Str("func", "clientDispatcher.HandleExit").
		Str("outcome", string(outcome)).
		Msg("exit save requested")

	settled := d.coordinator.Settled()
	expired := make(chan struct{})
	timer := d.clock.AfterFunc(d.cfg.WatchdogTimeout, func() { close(expired) })

	go func() {
		defer close(done)
		defer timer.Stop()

		select {
		case <-settled:
		case <-expired:
			d.logger.Warn().Str("func", "clientDispatcher.HandleExit").Msg("exit save did not settle in time")
		}
	}()

	return done
}
