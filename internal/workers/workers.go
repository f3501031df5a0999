package workers

import (
	"context"
	"errors"
	"sync"

	"github.com/MKhiriev/go-plan-keeper/internal/logger"
)

type namedWorker struct {
	name   string
	worker Worker
}

// Workers runs a set of named workers concurrently.
type Workers struct {
	workers []namedWorker
	logger  *logger.Logger
}

func NewWorkers(log *logger.Logger) *Workers {
	return &Workers{logger: log}
}

// Add registers w under name. Workers added after Run has started are not
// started.
func (w *Workers) Add(name string, worker Worker) *Workers {
	w.workers = append(w.workers, namedWorker{name: name, worker: worker})
	return w
}

// Run starts every worker and waits for all of them. Context errors are a
// normal stop; other failures are logged and joined into the result. A
// failing worker does not stop the others.
func (w *Workers) Run(ctx context.Context) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)

	for _, nw := range w.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			log := w.logger.With().Str("func", "Workers.Run").Str("worker", nw.name).Logger()
			log.Debug().Msg("worker started")

			err := nw.worker.Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				log.Err(err).Msg("worker failed")
				mu.Lock()
				errs = errors.Join(errs, err)
				mu.Unlock()
				return
			}
			log.Debug().Msg("worker stopped")
		}()
	}

	wg.Wait()
	return errs
}
