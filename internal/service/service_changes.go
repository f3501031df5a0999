package service

import (
	"context"
	"sync"

	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
	"github.com/MKhiriev/go-plan-keeper/models"
)

// changeBufferSize is the number of events a slow subscriber may lag behind
// before further events are dropped for it.
const changeBufferSize = 16

type changeBroker struct {
	mu     sync.Mutex
	subs   map[int64]map[chan models.ChangeEvent]struct{}
	logger *logger.Logger
}

// NewChangeBroker creates an in-memory ChangeBroker. A subscriber that does
// not keep up loses events instead of blocking publishers; the client
// refreshes its whole list on any event, so a dropped one is harmless while
// a later one still arrives.
func NewChangeBroker(logger *logger.Logger) ChangeBroker {
	return &changeBroker{
		subs:   make(map[int64]map[chan models.ChangeEvent]struct{}),
		logger: logger,
	}
}

func (b *changeBroker) Publish(event models.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs[event.OwnerID] {
		select {
		case ch <- event:
		default:
			b.logger.Warn().
				Str("func", "changeBroker.Publish").
				Int64("owner_id", event.OwnerID).
				Str("type", event.Type).
				Msg("subscriber is lagging, change event dropped")
		}
	}
}

func (b *changeBroker) Subscribe(ownerID int64) (<-chan models.ChangeEvent, func()) {
	ch := make(chan models.ChangeEvent, changeBufferSize)

	b.mu.Lock()
	if b.subs[ownerID] == nil {
		b.subs[ownerID] = make(map[chan models.ChangeEvent]struct{})
	}
	b.subs[ownerID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			delete(b.subs[ownerID], ch)
			if len(b.subs[ownerID]) == 0 {
				delete(b.subs, ownerID)
			}
			close(ch)
		})
	}

	return ch, cancel
}

// RecordChangeNotifier publishes a change event after every successful
// save or delete of the wrapped service.
type RecordChangeNotifier struct {
	inner  RecordService
	broker ChangeBroker
	clock  utils.Clock
}

func NewRecordChangeNotifier(broker ChangeBroker, clock utils.Clock) RecordServiceWrapper {
	return &RecordChangeNotifier{broker: broker, clock: clock}
}

func (n *RecordChangeNotifier) ListRecords(ctx context.Context, ownerID int64) ([]models.Record, error) {
	return n.inner.ListRecords(ctx, ownerID)
}

func (n *RecordChangeNotifier) SaveRecord(ctx context.Context, record models.Record) (models.Record, error) {
	saved, err := n.inner.SaveRecord(ctx, record)
	if err != nil {
		return models.Record{}, err
	}

	n.broker.Publish(models.ChangeEvent{
		Type:     models.ChangeRecordSaved,
		RecordID: saved.ID,
		OwnerID:  saved.OwnerID,
		At:       n.clock.Now(),
	})
	return saved, nil
}

func (n *RecordChangeNotifier) DeleteRecord(ctx context.Context, ownerID int64, id string) error {
	if err := n.inner.DeleteRecord(ctx, ownerID, id); err != nil {
		return err
	}

	n.broker.Publish(models.ChangeEvent{
		Type:     models.ChangeRecordDeleted,
		RecordID: id,
		OwnerID:  ownerID,
		At:       n.clock.Now(),
	})
	return nil
}

func (n *RecordChangeNotifier) Wrap(wrapped RecordService) RecordService {
	n.inner = wrapped
	return n
}
