package broadcast

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu   sync.Mutex
	msgs []models.BroadcastMessage
}

func (c *collector) handle(msg models.BroadcastMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func (c *collector) all() []models.BroadcastMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.BroadcastMessage(nil), c.msgs...)
}

func TestHub_FanOut(t *testing.T) {
	hub := NewHub(logger.Nop())
	defer hub.Close()

	var a, b collector
	hub.Subscribe(a.handle)
	unsubscribe := hub.Subscribe(b.handle)

	require.NoError(t, hub.Publish(context.Background(), models.BroadcastMessage{Type: models.BroadcastListUpdated, InstanceID: "i1"}))

	assert.Eventually(t, func() bool { return a.len() == 1 && b.len() == 1 }, time.Second, 5*time.Millisecond)

	unsubscribe()
	unsubscribe()
	require.NoError(t, hub.Publish(context.Background(), models.BroadcastMessage{Type: models.BroadcastRecordDeleted, RecordID: "r1"}))

	assert.Eventually(t, func() bool { return a.len() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, b.len())
	assert.Equal(t, "r1", a.all()[1].RecordID)
}

func TestHub_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub(logger.Nop())
	defer hub.Close()

	release := make(chan struct{})
	hub.Subscribe(func(models.BroadcastMessage) { <-release })
	defer close(release)

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			_ = hub.Publish(context.Background(), models.BroadcastMessage{Type: models.BroadcastListUpdated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestHub_UnsubscribeAfterClose(t *testing.T) {
	hub := NewHub(logger.Nop())
	unsubscribe := hub.Subscribe(func(models.BroadcastMessage) {})

	hub.Close()
	assert.NotPanics(t, unsubscribe)
	assert.NotPanics(t, hub.Close)
	assert.NoError(t, hub.Publish(context.Background(), models.BroadcastMessage{}))
}
