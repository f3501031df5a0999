package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MKhiriev/go-plan-keeper/internal/events"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/mock"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
	"github.com/MKhiriev/go-plan-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func signedIn(userID int64) SessionSource {
	return func() *models.Session { return &models.Session{UserID: userID, Status: models.AccountActive} }
}

func TestChangeFeedWorker_ReconnectsAndEmits(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockRemoteStore(ctrl)
	source := events.NewChannelSource("test", 4)

	gomock.InOrder(
		// первый поток обрывается сразу
		remote.EXPECT().SubscribeToChanges(gomock.Any(), int64(7), gomock.Any()).
			Return(errors.New("stream broken")),
		remote.EXPECT().SubscribeToChanges(gomock.Any(), int64(7), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ int64, cb func(models.ChangeEvent)) error {
				cb(models.ChangeEvent{Type: models.ChangeRecordSaved, RecordID: "srv-1", OwnerID: 7})
				<-ctx.Done()
				return ctx.Err()
			}),
	)

	w := NewChangeFeedWorker(remote, signedIn(7), source, utils.NewRealClock(), time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case ev := <-source.Events():
		assert.Equal(t, models.LifecycleRemoteChange, ev.Kind)
		assert.Equal(t, "test", ev.Source)
	case <-time.After(time.Second):
		t.Fatal("no remote change signal")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestChangeFeedWorker_WaitsForSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockRemoteStore(ctrl)
	source := events.NewChannelSource("test", 1)

	// без сессии подписка не открывается
	w := NewChangeFeedWorker(remote, func() *models.Session { return nil }, source, utils.NewRealClock(), time.Millisecond, logger.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	assert.NoError(t, w.Run(ctx))
	assert.Empty(t, source.Events())
}
