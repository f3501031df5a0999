package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-plan-keeper/internal/adapter"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
	"github.com/MKhiriev/go-plan-keeper/models"
	"github.com/sethvargo/go-retry"
)

// maxFeedBackoff caps the delay between change feed reconnects.
const maxFeedBackoff = 30 * time.Second

// SessionSource returns the current session, or nil when signed out.
type SessionSource func() *models.Session

// ChangeFeedWorker keeps a subscription to the remote change feed open and
// turns every notification into a remote_change lifecycle signal. Broken
// streams are reopened with capped exponential backoff; the backoff starts
// over once a stream delivered an event.
type ChangeFeedWorker struct {
	remote  adapter.RemoteStore
	session SessionSource
	emitter Emitter
	clock   utils.Clock
	backoff time.Duration
	logger  *logger.Logger
}

func NewChangeFeedWorker(remote adapter.RemoteStore, session SessionSource, emitter Emitter, clock utils.Clock, backoff time.Duration, log *logger.Logger) *ChangeFeedWorker {
	return &ChangeFeedWorker{
		remote:  remote,
		session: session,
		emitter: emitter,
		clock:   clock,
		backoff: backoff,
		logger:  log,
	}
}

func (w *ChangeFeedWorker) Run(ctx context.Context) error {
	log := w.logger.With().Str("func", "ChangeFeedWorker.Run").Logger()
	b := w.newBackoff()

	for {
		delivered := false

		if s := w.session(); s != nil {
			err := w.remote.SubscribeToChanges(ctx, s.UserID, func(ev models.ChangeEvent) {
				delivered = true
				log.Debug().Str("type", ev.Type).Str("record_id", ev.RecordID).Msg("remote change")
				if !w.emitter.Emit(models.LifecycleRemoteChange) {
					log.Warn().Msg("remote change signal dropped")
				}
			})
			if ctx.Err() != nil {
				return nil
			}
			log.Warn().Err(err).Msg("change feed closed")
		}

		if delivered {
			b = w.newBackoff()
		}

		delay, _ := b.Next()
		if !w.sleep(ctx, delay) {
			return nil
		}
	}
}

func (w *ChangeFeedWorker) newBackoff() retry.Backoff {
	return retry.WithCappedDuration(maxFeedBackoff, retry.NewExponential(w.backoff))
}

// sleep waits d on the worker clock. It returns false when ctx ended first.
func (w *ChangeFeedWorker) sleep(ctx context.Context, d time.Duration) bool {
	done := make(chan struct{})
	t := w.clock.AfterFunc(d, func() { close(done) })
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-done:
		return true
	}
}
