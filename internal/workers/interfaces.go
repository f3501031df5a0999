// Package workers runs the background loops of the client: the lifecycle
// dispatcher, the remote change feed, the cross-instance broadcast poller
// and the connectivity prober.
//
// Every loop implements [Worker]; [Workers] starts them under one context and
// waits until all of them returned.
package workers

import (
	"context"

	"github.com/MKhiriev/go-plan-keeper/models"
)

// Worker is a background loop.
//
// Run blocks until ctx is done or the loop has nothing left to do. A nil or
// context error means a normal stop.
type Worker interface {
	Run(ctx context.Context) error
}

// WorkerFunc adapts a function to [Worker].
type WorkerFunc func(ctx context.Context) error

func (f WorkerFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Emitter accepts lifecycle signals raised by a worker.
// *events.ChannelSource implements it.
type Emitter interface {
	Emit(kind models.LifecycleKind) bool
}
