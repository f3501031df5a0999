package events

import (
	"context"
	"time"

	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
	"github.com/MKhiriev/go-plan-keeper/models"
)

// Prober checks whether the remote store is reachable.
type Prober interface {
	Probe(ctx context.Context) error
}

// ConnectivitySource probes the remote store on a ticker and emits online
// and offline events when reachability changes. The first probe always
// emits.
type ConnectivitySource struct {
	prober   Prober
	clock    utils.Clock
	interval time.Duration
	timeout  time.Duration
	logger   *logger.Logger

	out    chan models.LifecycleEvent
	online *bool
}

// NewConnectivitySource creates a source probing every interval. Each probe
// is bounded by timeout.
func NewConnectivitySource(prober Prober, clock utils.Clock, interval, timeout time.Duration, log *logger.Logger) *ConnectivitySource {
	return &ConnectivitySource{
		prober:   prober,
		clock:    clock,
		interval: interval,
		timeout:  timeout,
		logger:   log,
		out:      make(chan models.LifecycleEvent, 1),
	}
}

func (s *ConnectivitySource) Events() <-chan models.LifecycleEvent {
	return s.out
}

// Run probes until ctx is done, then closes the event channel.
func (s *ConnectivitySource) Run(ctx context.Context) error {
	defer close(s.out)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			s.check(ctx)
		}
	}
}

func (s *ConnectivitySource) check(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	err := s.prober.Probe(probeCtx)
	cancel()

	if ctx.Err() != nil {
		return
	}

	online := err == nil
	if s.online != nil && *s.online == online {
		return
	}
	s.online = &online

	kind := models.LifecycleOnline
	if !online {
		kind = models.LifecycleOffline
		s.logger.Warn().Err(err).Str("func", "ConnectivitySource.check").Msg("remote store unreachable")
	}

	select {
	case s.out <- models.LifecycleEvent{Kind: kind, Source: "connectivity", At: s.clock.Now()}:
	case <-ctx.Done():
	}
}
