package broadcast

import (
	"context"
	"sync"

	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/models"
)

const subscriberBuffer = 32

// Hub is an in-process [Channel]. Each subscriber gets its own buffered
// queue and goroutine, so a slow handler never blocks Publish. Messages for
// a full queue are dropped.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]*subscriber
	nextID int
	closed bool

	logger *logger.Logger
}

type subscriber struct {
	ch   chan models.BroadcastMessage
	done chan struct{}
}

// NewHub creates an empty Hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{subs: make(map[int]*subscriber), logger: log}
}

// Publish implements [Channel].
func (h *Hub) Publish(_ context.Context, msg models.BroadcastMessage) error {
	h.deliver(msg)
	return nil
}

func (h *Hub) deliver(msg models.BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	for id, s := range h.subs {
		select {
		case s.ch <- msg:
		default:
			h.logger.Warn().
				Str("func", "Hub.deliver").
				Int("subscriber", id).
				Str("type", string(msg.Type)).
				Msg("subscriber queue is full, dropping message")
		}
	}
}

// Subscribe implements [Channel].
func (h *Hub) Subscribe(handler func(models.BroadcastMessage)) func() {
	s := &subscriber{
		ch:   make(chan models.BroadcastMessage, subscriberBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.closed {
		h.mu.Unlock()
		close(s.done)
		return func() {}
	}
	h.subs[id] = s
	h.mu.Unlock()

	go func() {
		for {
			select {
			case msg := <-s.ch:
				handler(msg)
			case <-s.done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(s.done)
			}
		})
	}
}

// Close stops every subscriber goroutine.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, s := range h.subs {
		close(s.done)
		delete(h.subs, id)
	}
}
