package events

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MKhiriev/go-plan-keeper/models"
)

// SignalSource maps OS signals to lifecycle events: termination signals
// become exit, and SIGCONT (resume after a stop) becomes foreground.
type SignalSource struct {
	out chan models.LifecycleEvent
}

// NewSignalSource subscribes to OS signals until ctx is done.
func NewSignalSource(ctx context.Context) *SignalSource {
	s := &SignalSource{out: make(chan models.LifecycleEvent, 4)}

	sigs := make(chan os.Signal, 4)
	signal.Notify(sigs, append([]os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP}, resumeSignals...)...)

	go func() {
		defer close(s.out)
		defer signal.Stop(sigs)

		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigs:
				ev := models.LifecycleEvent{Kind: kindForSignal(sig), Source: "signal:" + sig.String(), At: time.Now()}
				select {
				case s.out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return s
}

func (s *SignalSource) Events() <-chan models.LifecycleEvent {
	return s.out
}

func kindForSignal(sig os.Signal) models.LifecycleKind {
	for _, r := range resumeSignals {
		if sig == r {
			return models.LifecycleForeground
		}
	}
	return models.LifecycleExit
}
