package workers

import (
	"context"

	"github.com/MKhiriev/go-plan-keeper/internal/broadcast"
	"github.com/MKhiriev/go-plan-keeper/models"
)

// Poller delivers broadcast messages until ctx is done.
// *broadcast.SQLiteChannel implements it.
type Poller interface {
	Run(ctx context.Context) error
}

// NewBroadcastWorker subscribes apply to channel and runs poller for as long
// as the worker runs. A nil poller means the channel delivers by itself.
func NewBroadcastWorker(channel broadcast.Channel, poller Poller, apply func(models.BroadcastMessage)) Worker {
	return WorkerFunc(func(ctx context.Context) error {
		unsubscribe := channel.Subscribe(apply)
		defer unsubscribe()

		if poller == nil {
			<-ctx.Done()
			return nil
		}
		return poller.Run(ctx)
	})
}
