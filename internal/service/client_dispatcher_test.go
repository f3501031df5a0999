package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-plan-keeper/internal/adapter"
	"github.com/MKhiriev/go-plan-keeper/internal/events"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAutosave = 5 * time.Second
	testDebounce = 500 * time.Millisecond
)

type countingRestorer struct {
	calls atomic.Int32
	err   error
}

func (r *countingRestorer) Restore(context.Context) error {
	r.calls.Add(1)
	return r.err
}

type dispatcherFixture struct {
	*coordFixture
	d        *clientDispatcher
	source   *events.ChannelSource
	restorer *countingRestorer
}

func newDispatcherFixture(t *testing.T, rec *fakeReconciler) *dispatcherFixture {
	t.Helper()
	return newDispatcherFixtureOn(t, rec, nil)
}

// newDispatcherFixtureOn собирает диспетчер поверх заданного кэша.
func newDispatcherFixtureOn(t *testing.T, rec *fakeReconciler, cache *memCache) *dispatcherFixture {
	t.Helper()
	cf := newCoordFixture(t, rec, cache)
	source := events.NewChannelSource("test", 16)
	restorer := &countingRestorer{}

	d := NewClientDispatcher(cf.c, restorer, source, cf.clock, DispatcherConfig{
		AutosaveInterval: testAutosave,
		WakeDebounce:     testDebounce,
		WatchdogTimeout:  testWatchdog,
	}, logger.Nop()).(*clientDispatcher)

	return &dispatcherFixture{coordFixture: cf, d: d, source: source, restorer: restorer}
}

// run запускает Run в фоне и возвращает канал с его результатом.
func (f *dispatcherFixture) run(t *testing.T) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.d.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	})
	return cancel, done
}

func (f *dispatcherFixture) refreshes() int {
	f.rec.mu.Lock()
	defer f.rec.mu.Unlock()
	return f.rec.refresh
}

func (f *dispatcherFixture) wakeSignals() int {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	return f.d.wakeSignals
}

func TestDispatcher_WakeBurstRunsOneCycle(t *testing.T) {
	f := newDispatcherFixture(t, nil)
	f.run(t)

	for _, kind := range []models.LifecycleKind{
		models.LifecycleForeground,
		models.LifecycleFocus,
		models.LifecycleReconnect,
		models.LifecycleFocus,
		models.LifecycleForeground,
	} {
		require.True(t, f.source.Emit(kind))
	}
	require.Eventually(t, func() bool { return f.wakeSignals() == 5 }, time.Second, time.Millisecond)

	f.clock.Advance(testDebounce - time.Millisecond)
	assert.Equal(t, int32(0), f.restorer.calls.Load(), "window still open")

	f.clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool { return f.refreshes() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), f.restorer.calls.Load())

	// окно закрыто, повторных циклов нет
	f.clock.Advance(testDebounce)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), f.restorer.calls.Load())
	assert.Equal(t, 1, f.refreshes())
}

func TestDispatcher_WakeSavesPendingAndFlushes(t *testing.T) {
	f := newDispatcherFixture(t, nil)
	first := f.openNamed(t, "First")
	f.openNamed(t, "Second")
	f.c.MarkPending(context.Background())

	f.d.runWake(context.Background(), 1)

	calls := f.rec.persisted()
	require.Len(t, calls, 2)
	assert.NotEqual(t, first.ClientSideID, calls[0].ClientSideID, "open record goes first")
	assert.Equal(t, first.ClientSideID, calls[1].ClientSideID)
	assert.False(t, f.c.Pending())
	assert.Equal(t, 0, f.c.PendingCount())
}

func TestDispatcher_WakeStopsWithoutSession(t *testing.T) {
	f := newDispatcherFixture(t, nil)
	f.openNamed(t, "First")
	f.openNamed(t, "Second")
	f.c.MarkPending(context.Background())
	f.restorer.err = errors.New("no session")

	f.d.runWake(context.Background(), 1)

	// без сессии: ни обновления списка, ни записи, ни выгрузки очереди
	assert.Equal(t, int32(1), f.restorer.calls.Load())
	assert.Equal(t, 0, f.refreshes())
	assert.Empty(t, f.rec.persisted())
	assert.True(t, f.c.Pending())
	assert.Equal(t, 2, f.c.PendingCount())
}

func TestDispatcher_TickRequestsAutosave(t *testing.T) {
	f := newDispatcherFixture(t, nil)
	f.openNamed(t, "Ivanov")
	f.run(t)

	// тикер создаётся внутри Run, поэтому двигаем часы, пока он не сработает
	require.Eventually(t, func() bool {
		f.clock.Advance(testAutosave)
		return len(f.rec.persisted()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestDispatcher_BackgroundForcesSave(t *testing.T) {
	f := newDispatcherFixture(t, nil)
	f.openNamed(t, "Ivanov")

	f.d.handle(context.Background(), models.LifecycleEvent{Kind: models.LifecycleBackground})
	waitSettled(t, f.c)
	require.Len(t, f.rec.persisted(), 1)

	// скрытое окно: периодическое сохранение пропускается
	f.edit(t, "income", 1.0)
	assert.Equal(t, models.OutcomeSkippedHidden, f.save(models.SaveRequest{Auto: true, Trigger: models.TriggerPeriodic}))

	f.d.handle(context.Background(), models.LifecycleEvent{Kind: models.LifecycleForeground})
	assert.Equal(t, models.OutcomeStarted, f.save(models.SaveRequest{Auto: true, Trigger: models.TriggerPeriodic}))
	waitSettled(t, f.c)
}

func TestDispatcher_OnlineAndOffline(t *testing.T) {
	f := newDispatcherFixture(t, nil)

	f.d.handle(context.Background(), models.LifecycleEvent{Kind: models.LifecycleOffline})
	assert.False(t, f.c.Status().Online)

	f.d.handle(context.Background(), models.LifecycleEvent{Kind: models.LifecycleOnline})
	assert.True(t, f.c.Status().Online)
	assert.Equal(t, 1, f.refreshes())
}

func TestDispatcher_ReconnectAfterRestartFlushesOnce(t *testing.T) {
	cache := newMemCache()
	offline := &fakeReconciler{persistFn: func(int, models.Record) (models.PersistResult, *models.SyncError) {
		return models.PersistResult{}, ClassifyError("save", adapter.ErrNetwork)
	}}
	prev := newCoordFixture(t, offline, cache)
	created := prev.openNamed(t, "Ivanov")
	prev.edit(t, "income", 500.0)
	require.Equal(t, models.OutcomeStarted, prev.save(manual))
	waitSettled(t, prev.c)
	require.Equal(t, models.SyncStatePendingSync, prev.c.SyncState())

	// новый процесс на том же кэше, сеть вернулась
	f := newDispatcherFixtureOn(t, nil, cache)
	require.NoError(t, f.c.Resume(context.Background()))
	require.True(t, f.c.Pending())

	f.d.handle(context.Background(), models.LifecycleEvent{Kind: models.LifecycleOnline})
	waitSettled(t, f.c)

	calls := f.rec.persisted()
	require.Len(t, calls, 1)
	assert.Equal(t, created.ClientSideID, calls[0].ClientSideID)
	assert.Equal(t, 500.0, calls[0].Content["income"])
	assert.False(t, f.c.Pending())
	assert.Equal(t, 0, f.c.PendingCount())
	assert.Equal(t, models.SyncStateSaved, f.c.SyncState())
}

func TestDispatcher_ExitWaitsForSave(t *testing.T) {
	release := make(chan struct{})
	f := newDispatcherFixture(t, &fakeReconciler{persistFn: blockingPersist(release, nil)})
	f.openNamed(t, "Ivanov")

	done := f.d.HandleExit(context.Background())
	select {
	case <-done:
		t.Fatal("exit finished before the save settled")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("exit did not finish")
	}
	assert.Len(t, f.rec.persisted(), 1)
}

func TestDispatcher_ExitIsBoundedByWatchdog(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	f := newDispatcherFixture(t, &fakeReconciler{persistFn: blockingPersist(release, nil)})
	f.openNamed(t, "Ivanov")

	done := f.d.HandleExit(context.Background())
	f.clock.Advance(testWatchdog)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("exit was not bounded")
	}
}

func TestDispatcher_ExitEventStopsRun(t *testing.T) {
	f := newDispatcherFixture(t, nil)
	f.openNamed(t, "Ivanov")
	_, done := f.run(t)

	require.True(t, f.source.Emit(models.LifecycleExit))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on exit")
	}
	assert.Len(t, f.rec.persisted(), 1)
}
