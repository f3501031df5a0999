// Package broadcast carries list changes between client instances running
// on the same machine.
//
// A [Channel] delivers [models.BroadcastMessage] values to every subscriber,
// including the publishing instance itself. Receivers compare
// InstanceID and drop their own messages.
package broadcast

import (
	"context"

	"github.com/MKhiriev/go-plan-keeper/models"
)

//go:generate mockgen -source=channel.go -destination=../mock/broadcast_mock.go -package=mock

// Channel is a pub/sub channel of list change messages.
type Channel interface {
	// Publish sends msg to all subscribers. It does not wait for delivery.
	Publish(ctx context.Context, msg models.BroadcastMessage) error

	// Subscribe registers handler and returns a function removing it.
	// Handlers of one subscription are called sequentially.
	Subscribe(handler func(models.BroadcastMessage)) (unsubscribe func())
}
