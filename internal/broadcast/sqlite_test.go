package broadcast

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/MKhiriev/go-plan-keeper/internal/config"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/store"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
	"github.com/MKhiriev/go-plan-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openOutbox открывает общий файл кэша так, как это делает отдельный
// экземпляр клиента.
func openOutbox(t *testing.T, path string) store.BroadcastOutbox {
	t.Helper()
	s, err := store.NewClientStorages(context.Background(), config.ClientStorage{DB: config.ClientDB{DSN: path}}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s.Outbox
}

func TestSQLiteChannel_CrossInstance(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shared.db")
	clock := utils.NewFakeClock(time.Now())

	// a message published before the channel exists is not replayed
	old := openOutbox(t, path)
	_, err := old.Append(ctx, "ghost", []byte(`{"type":"list_updated","instance_id":"ghost"}`))
	require.NoError(t, err)

	first, err := NewSQLiteChannel(ctx, openOutbox(t, path), clock, time.Second, logger.Nop())
	require.NoError(t, err)
	second, err := NewSQLiteChannel(ctx, openOutbox(t, path), clock, time.Second, logger.Nop())
	require.NoError(t, err)

	var got collector
	second.Subscribe(got.handle)

	msg := models.BroadcastMessage{
		Type:       models.BroadcastListUpdated,
		InstanceID: "first",
		OwnerID:    1,
		Records:    []models.Record{{ID: "s1", ClientSideID: "c1", Content: models.Content{"name": "Ivanov"}}},
	}
	require.NoError(t, first.Publish(ctx, msg))
	require.NoError(t, second.Poll(ctx))

	require.Eventually(t, func() bool { return got.len() == 1 }, time.Second, 5*time.Millisecond)
	received := got.all()[0]
	assert.Equal(t, "first", received.InstanceID)
	require.Len(t, received.Records, 1)
	assert.Equal(t, "Ivanov", received.Records[0].Name())

	// nothing new: the next poll delivers nothing
	require.NoError(t, second.Poll(ctx))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, got.len())
}

func TestSQLiteChannel_SkipsMalformed(t *testing.T) {
	ctx := context.Background()
	outbox := openOutbox(t, filepath.Join(t.TempDir(), "cache.db"))

	ch, err := NewSQLiteChannel(ctx, outbox, utils.NewFakeClock(time.Now()), time.Second, logger.Nop())
	require.NoError(t, err)

	var got collector
	ch.Subscribe(got.handle)

	_, err = outbox.Append(ctx, "x", []byte(`{broken`))
	require.NoError(t, err)
	require.NoError(t, ch.Publish(ctx, models.BroadcastMessage{Type: models.BroadcastRecordDeleted, RecordID: "r9", InstanceID: "x"}))

	require.NoError(t, ch.Poll(ctx))
	require.Eventually(t, func() bool { return got.len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "r9", got.all()[0].RecordID)
}
