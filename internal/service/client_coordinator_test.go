// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"
	"time"

	"github.com/MKhiriev/go-plan-keeper/internal/adapter"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
	"github.com/MKhiriev/go-plan-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWatchdog    = 45 * time.Second
	testRevertDelay = 2 * time.Second
)

type coordFixture struct {
	c        *clientSaveCoordinator
	rec      *fakeReconciler
	cache    *memCache
	channel  *recordingChannel
	clock    *utils.FakeClock
	sessions *staticSessions
}

func newCoordFixture(t *testing.T, rec *fakeReconciler, cache *memCache) *coordFixture {
	t.Helper()
	if rec == nil {
		rec = &fakeReconciler{}
	}
	if cache == nil {
		cache = newMemCache()
	}

	f := &coordFixture{
		rec:      rec,
		cache:    cache,
		channel:  &recordingChannel{},
		clock:    utils.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		sessions: activeSessions(7),
	}
	f.c = NewClientSaveCoordinator(
		rec, NewSnapshotDiffer(), cache, f.channel, f.sessions, &sequenceIDs{}, f.clock,
		CoordinatorConfig{WatchdogTimeout: testWatchdog, SavedRevertDelay: testRevertDelay, InstanceID: "inst-a"},
		logger.Nop(),
	).(*clientSaveCoordinator)
	return f
}

// openNamed создаёт новую запись и задаёт ей имя.
func (f *coordFixture) openNamed(t *testing.T, name string) models.Record {
	t.Helper()
	rec, err := f.c.CreateNewRecord(context.Background())
	require.NoError(t, err)
	f.edit(t, "name", name)
	return rec
}

func (f *coordFixture) edit(t *testing.T, key string, value any) {
	t.Helper()
	require.True(t, f.c.Draft().Update(func(r *models.Record) { r.Content[key] = value }))
}

func (f *coordFixture) save(req models.SaveRequest) models.SaveOutcome {
	return f.c.RequestSave(context.Background(), req)
}

func waitSettled(t *testing.T, c ClientSaveCoordinator) {
	t.Helper()
	select {
	case <-c.Settled():
	case <-time.After(2 * time.Second):
		t.Fatal("save did not settle")
	}
}

var manual = models.SaveRequest{Trigger: models.TriggerManual}

// blockingPersist блокирует первый вызов Persist до закрытия release.
func blockingPersist(release <-chan struct{}, entered chan<- struct{}) func(int, models.Record) (models.PersistResult, *models.SyncError) {
	return func(call int, r models.Record) (models.PersistResult, *models.SyncError) {
		if call == 1 {
			if entered != nil {
				close(entered)
			}
			<-release
		}
		out := r.Clone()
		if out.ID == "" {
			out.ID = "srv-" + r.ClientSideID
		}
		return models.PersistResult{Record: out}, nil
	}
}

// ── single flight ────────────────────────────────────────────────────────────

func TestCoordinator_TwoRequestsOneWrite(t *testing.T) {
	release := make(chan struct{})
	f := newCoordFixture(t, &fakeReconciler{persistFn: blockingPersist(release, nil)}, nil)
	f.openNamed(t, "Ivanov")

	assert.Equal(t, models.OutcomeStarted, f.save(manual))
	assert.Equal(t, models.OutcomeSkippedBusy, f.save(manual))
	assert.Equal(t, models.SyncStateSaving, f.c.SyncState())

	close(release)
	waitSettled(t, f.c)

	assert.Len(t, f.rec.persisted(), 1)
	assert.Equal(t, models.SyncStateSaved, f.c.SyncState())
	assert.Equal(t, models.OutcomeNoop, f.save(models.SaveRequest{Auto: true, Trigger: models.TriggerPeriodic}))
	assert.Len(t, f.rec.persisted(), 1)
}

func TestCoordinator_PromotionThenUpdate(t *testing.T) {
	f := newCoordFixture(t, nil, nil)
	created := f.openNamed(t, "Ivanov")

	require.Equal(t, models.OutcomeStarted, f.save(manual))
	waitSettled(t, f.c)

	snap, ok := f.c.Draft().Snapshot()
	require.True(t, ok)
	assert.Equal(t, "srv-"+created.ClientSideID, snap.ID)

	var lastOpened string
	require.NoError(t, f.cache.Get(context.Background(), cacheKeyLastOpenedID, &lastOpened))
	assert.Equal(t, snap.ID, lastOpened)

	f.edit(t, "income", 1200.0)
	require.Equal(t, models.OutcomeStarted, f.save(manual))
	waitSettled(t, f.c)

	calls := f.rec.persisted()
	require.Len(t, calls, 2)
	assert.Empty(t, calls[0].ID, "first write creates")
	assert.Equal(t, snap.ID, calls[1].ID, "second write updates")

	records := f.c.Records()
	require.Len(t, records, 1)
	assert.Equal(t, 1200.0, records[0].Content["income"])

	msgs := f.channel.messages()
	require.NotEmpty(t, msgs)
	assert.Equal(t, models.BroadcastListUpdated, msgs[len(msgs)-1].Type)
	assert.Equal(t, "inst-a", msgs[len(msgs)-1].InstanceID)
	assert.Equal(t, int64(7), msgs[len(msgs)-1].OwnerID)
}

// ── guards ───────────────────────────────────────────────────────────────────

func TestCoordinator_Guards(t *testing.T) {
	t.Run("no record", func(t *testing.T) {
		f := newCoordFixture(t, nil, nil)
		assert.Equal(t, models.OutcomeSkippedNoRecord, f.save(manual))
	})

	t.Run("unnamed", func(t *testing.T) {
		f := newCoordFixture(t, nil, nil)
		f.openNamed(t, "   ")
		assert.Equal(t, models.OutcomeSkippedUnnamed, f.save(manual))
	})

	t.Run("inactive account", func(t *testing.T) {
		f := newCoordFixture(t, nil, nil)
		f.openNamed(t, "Ivanov")
		f.sessions.set(&models.Session{UserID: 7, Status: models.AccountPending})
		assert.Equal(t, models.OutcomeSkippedAuth, f.save(models.SaveRequest{Force: true, Trigger: models.TriggerExit}))
	})

	t.Run("hidden unless forced", func(t *testing.T) {
		f := newCoordFixture(t, nil, nil)
		f.openNamed(t, "Ivanov")
		f.c.SetBackgrounded(true)
		assert.Equal(t, models.OutcomeSkippedHidden, f.save(models.SaveRequest{Auto: true, Trigger: models.TriggerPeriodic}))

		assert.Equal(t, models.OutcomeStarted, f.save(models.SaveRequest{Force: true, Auto: true, Trigger: models.TriggerBackground}))
		waitSettled(t, f.c)
		assert.Len(t, f.rec.persisted(), 1)
	})
}

func TestCoordinator_NoopStates(t *testing.T) {
	f := newCoordFixture(t, nil, nil)
	f.openNamed(t, "Ivanov")
	require.Equal(t, models.OutcomeStarted, f.save(manual))
	waitSettled(t, f.c)
	require.Equal(t, models.SyncStateSaved, f.c.SyncState())

	f.clock.Advance(testRevertDelay)
	assert.Equal(t, models.SyncStateIdle, f.c.SyncState())

	var seen []models.SyncStatus
	unsubscribe := f.c.Subscribe(func(st models.SyncStatus) { seen = append(seen, st) })
	defer unsubscribe()

	// автосохранение без изменений ничего не показывает
	assert.Equal(t, models.OutcomeNoop, f.save(models.SaveRequest{Auto: true, Trigger: models.TriggerPeriodic}))
	assert.Equal(t, models.SyncStateIdle, f.c.SyncState())
	assert.Empty(t, seen)

	// ручное сохранение без изменений даёт короткий "saved"
	assert.Equal(t, models.OutcomeNoop, f.save(manual))
	st := f.c.Status()
	assert.Equal(t, models.SyncStateSaved, st.State)
	assert.True(t, st.Pulse)
	require.Len(t, seen, 1)

	f.clock.Advance(testRevertDelay)
	assert.Equal(t, models.SyncStateIdle, f.c.SyncState())
	assert.Len(t, f.rec.persisted(), 1)
}

// ── watchdog ─────────────────────────────────────────────────────────────────

func TestCoordinator_WatchdogReleasesLock(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	f := newCoordFixture(t, &fakeReconciler{persistFn: blockingPersist(release, entered)}, nil)
	created := f.openNamed(t, "Ivanov")

	require.Equal(t, models.OutcomeStarted, f.save(manual))
	<-entered

	f.clock.Advance(testWatchdog)

	st := f.c.Status()
	assert.Equal(t, models.SyncStateError, st.State)
	assert.Equal(t, models.ErrorClassNetwork, st.ErrorClass)
	assert.True(t, f.c.Pending())
	assert.Equal(t, 1, f.c.PendingCount())
	waitSettled(t, f.c)

	// запоздавший ответ первой записи всё равно проставляет серверный id
	close(release)
	require.Eventually(t, func() bool {
		snap, _ := f.c.Draft().Snapshot()
		return snap.ID == "srv-"+created.ClientSideID
	}, time.Second, time.Millisecond)
	assert.Equal(t, models.SyncStateError, f.c.SyncState(), "a superseded completion does not change the state")

	// the lock is free again and the next write is an update
	f.edit(t, "income", 10.0)
	assert.Equal(t, models.OutcomeStarted, f.save(manual))
	waitSettled(t, f.c)

	calls := f.rec.persisted()
	require.Len(t, calls, 2)
	assert.Equal(t, "srv-"+created.ClientSideID, calls[1].ID)
	assert.Equal(t, 0, f.c.PendingCount())
}

func TestCoordinator_ReleaseStaleLockAfterSuspend(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	f := newCoordFixture(t, &fakeReconciler{persistFn: blockingPersist(release, entered)}, nil)
	t.Cleanup(func() { close(release) })
	f.openNamed(t, "Ivanov")

	require.Equal(t, models.OutcomeStarted, f.save(manual))
	<-entered

	assert.False(t, f.c.ReleaseStaleLock(f.clock.Now()))

	// процесс "спал": таймеры не сработали, но время ушло вперёд
	f.clock.Jump(2 * testWatchdog)
	assert.True(t, f.c.ReleaseStaleLock(f.clock.Now()))
	assert.False(t, f.c.ReleaseStaleLock(f.clock.Now()))

	assert.Equal(t, models.SyncStateError, f.c.SyncState())
	assert.True(t, f.c.Pending())
}

// ── failures ─────────────────────────────────────────────────────────────────

func TestCoordinator_OfflineSurvivesRestart(t *testing.T) {
	cache := newMemCache()
	offline := &fakeReconciler{persistFn: func(int, models.Record) (models.PersistResult, *models.SyncError) {
		return models.PersistResult{}, ClassifyError("save", adapter.ErrNetwork)
	}}
	f := newCoordFixture(t, offline, cache)
	created := f.openNamed(t, "Ivanov")
	f.edit(t, "income", 500.0)

	require.Equal(t, models.OutcomeStarted, f.save(manual))
	waitSettled(t, f.c)

	st := f.c.Status()
	assert.Equal(t, models.SyncStatePendingSync, st.State)
	assert.Equal(t, 1, st.PendingCount)
	assert.True(t, cache.has(cacheKeyPendingQueue))

	// новый процесс на том же кэше
	online := &fakeReconciler{}
	g := newCoordFixture(t, online, cache)
	require.NoError(t, g.c.Resume(context.Background()))

	snap, ok := g.c.Draft().Snapshot()
	require.True(t, ok)
	assert.Equal(t, created.ClientSideID, snap.ClientSideID)
	assert.Equal(t, 500.0, snap.Content["income"])
	assert.True(t, g.c.Pending())
	assert.Equal(t, 1, g.c.PendingCount())
	assert.Equal(t, models.SyncStatePendingSync, g.c.SyncState())

	require.Equal(t, models.OutcomeStarted, g.save(models.SaveRequest{Force: true, Auto: true, Trigger: models.TriggerOnline}))
	waitSettled(t, g.c)

	require.Len(t, online.persisted(), 1)
	assert.False(t, g.c.Pending())
	assert.Equal(t, 0, g.c.PendingCount())
	assert.Equal(t, models.SyncStateSaved, g.c.SyncState())
}

func TestCoordinator_ValidationRejectionIsRemembered(t *testing.T) {
	rec := &fakeReconciler{persistFn: func(call int, r models.Record) (models.PersistResult, *models.SyncError) {
		if call == 1 {
			return models.PersistResult{}, ClassifyError("save", adapter.ErrPayloadTooLarge)
		}
		return models.PersistResult{Record: models.Record{ID: "srv-1"}}, nil
	}}
	f := newCoordFixture(t, rec, nil)
	f.openNamed(t, "Ivanov")

	require.Equal(t, models.OutcomeStarted, f.save(manual))
	waitSettled(t, f.c)

	st := f.c.Status()
	assert.Equal(t, models.SyncStateError, st.State)
	assert.Equal(t, models.ErrorClassValidation, st.ErrorClass)
	assert.False(t, st.Remediation)
	assert.False(t, f.c.Pending())

	assert.Equal(t, models.OutcomeSkippedRejected, f.save(models.SaveRequest{Auto: true, Trigger: models.TriggerPeriodic}))
	assert.Len(t, rec.persisted(), 1)

	f.edit(t, "notes", "shorter")
	require.Equal(t, models.OutcomeStarted, f.save(manual))
	waitSettled(t, f.c)
	assert.Len(t, rec.persisted(), 2)
	assert.Equal(t, models.SyncStateSaved, f.c.SyncState())
}

func TestCoordinator_CriticalErrorRemediation(t *testing.T) {
	rec := &fakeReconciler{persistFn: func(call int, r models.Record) (models.PersistResult, *models.SyncError) {
		if call == 1 {
			return models.PersistResult{}, ClassifyError("save", adapter.ErrLoopDetected)
		}
		return models.PersistResult{Record: models.Record{ID: "srv-1"}}, nil
	}}
	f := newCoordFixture(t, rec, nil)
	f.openNamed(t, "Ivanov")

	require.Equal(t, models.OutcomeStarted, f.save(manual))
	waitSettled(t, f.c)

	st := f.c.Status()
	assert.Equal(t, models.SyncStateError, st.State)
	assert.Equal(t, models.ErrorClassCritical, st.ErrorClass)
	assert.True(t, st.Remediation)

	// пока пользователь не решил, автосохранение не повторяет запись
	assert.Equal(t, models.OutcomeSkippedRejected, f.save(models.SaveRequest{Auto: true, Trigger: models.TriggerPeriodic}))

	require.NoError(t, f.c.Remediate(context.Background(), models.RemediationRetry))
	waitSettled(t, f.c)
	assert.Len(t, rec.persisted(), 2)
	assert.Equal(t, models.SyncStateSaved, f.c.SyncState())
}

func TestCoordinator_RemediateKeepLocal(t *testing.T) {
	rec := &fakeReconciler{persistFn: func(int, models.Record) (models.PersistResult, *models.SyncError) {
		return models.PersistResult{}, ClassifyError("save", adapter.ErrUnprocessable)
	}}
	f := newCoordFixture(t, rec, nil)
	f.openNamed(t, "Ivanov")
	require.Equal(t, models.OutcomeStarted, f.save(manual))
	waitSettled(t, f.c)

	require.NoError(t, f.c.Remediate(context.Background(), models.RemediationKeepLocal))

	st := f.c.Status()
	assert.Equal(t, models.SyncStatePendingSync, st.State)
	assert.False(t, st.Remediation)
	assert.Equal(t, 1, st.PendingCount)
	assert.Equal(t, models.OutcomeSkippedRejected, f.save(manual))
}

func TestCoordinator_RemediateDiscardLocal(t *testing.T) {
	remote := models.Record{ID: "srv-1", ClientSideID: "c-1", OwnerID: 7, Content: models.Content{"name": "Server copy"}}
	rec := &fakeReconciler{
		persistFn: func(int, models.Record) (models.PersistResult, *models.SyncError) {
			return models.PersistResult{}, ClassifyError("save", adapter.ErrLoopDetected)
		},
		refreshFn: func() ([]models.Record, *models.SyncError) {
			return []models.Record{remote}, nil
		},
	}
	f := newCoordFixture(t, rec, nil)
	require.NoError(t, f.c.LoadRecord(context.Background(), remote))
	f.edit(t, "name", "Local copy")
	require.Equal(t, models.OutcomeStarted, f.save(manual))
	waitSettled(t, f.c)

	require.NoError(t, f.c.Remediate(context.Background(), models.RemediationDiscardLocal))

	snap, ok := f.c.Draft().Snapshot()
	require.True(t, ok)
	assert.Equal(t, "Server copy", snap.Name())
	assert.Equal(t, models.SyncStateIdle, f.c.SyncState())
	assert.Equal(t, models.OutcomeNoop, f.save(models.SaveRequest{Auto: true, Trigger: models.TriggerPeriodic}))

	assert.ErrorIs(t, f.c.Remediate(context.Background(), "shrug"), ErrUnknownRemediation)
}

func TestCoordinator_StaleResultLeavesListToRefresh(t *testing.T) {
	rec := &fakeReconciler{persistFn: func(_ int, r models.Record) (models.PersistResult, *models.SyncError) {
		return models.PersistResult{Record: models.Record{ID: "srv-1", ClientSideID: r.ClientSideID}, Stale: true}, nil
	}}
	f := newCoordFixture(t, rec, nil)
	f.openNamed(t, "Ivanov")

	require.Equal(t, models.OutcomeStarted, f.save(manual))
	waitSettled(t, f.c)

	assert.Empty(t, f.c.Records())
	assert.Equal(t, models.SyncStateSaved, f.c.SyncState())
	snap, _ := f.c.Draft().Snapshot()
	assert.Equal(t, "srv-1", snap.ID)
}

// ── records ──────────────────────────────────────────────────────────────────

func TestCoordinator_SwitchingRecordsKeepsUnsavedEdits(t *testing.T) {
	f := newCoordFixture(t, nil, nil)
	first := f.openNamed(t, "First")
	f.openNamed(t, "Second")

	// несохранённая первая запись ушла в очередь
	assert.Equal(t, 1, f.c.PendingCount())

	flushed := f.c.FlushQueue(context.Background())
	assert.Equal(t, 1, flushed)
	assert.Equal(t, 0, f.c.PendingCount())

	calls := f.rec.persisted()
	require.Len(t, calls, 1)
	assert.Equal(t, first.ClientSideID, calls[0].ClientSideID)

	records := f.c.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "srv-"+first.ClientSideID, records[0].ID)
}

func TestCoordinator_FlushStopsOnNetworkError(t *testing.T) {
	rec := &fakeReconciler{persistFn: func(int, models.Record) (models.PersistResult, *models.SyncError) {
		return models.PersistResult{}, ClassifyError("save", adapter.ErrTimeout)
	}}
	f := newCoordFixture(t, rec, nil)
	f.openNamed(t, "First")
	f.openNamed(t, "Second")
	f.openNamed(t, "Third")

	assert.Equal(t, 0, f.c.FlushQueue(context.Background()))
	assert.Len(t, rec.persisted(), 1)
	assert.Equal(t, 2, f.c.PendingCount())
}

func TestCoordinator_EditsQueuedDuringWriteSurviveCompletion(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	f := newCoordFixture(t, &fakeReconciler{persistFn: blockingPersist(release, entered)}, nil)
	first := f.openNamed(t, "First")

	require.Equal(t, models.OutcomeStarted, f.save(manual))
	<-entered

	// правка во время записи, затем переход к другой записи
	f.edit(t, "income", 999.0)
	f.openNamed(t, "Second")
	require.Equal(t, 1, f.c.PendingCount())

	close(release)
	waitSettled(t, f.c)

	// более новая копия осталась в очереди и в списке, id проставлен
	assert.Equal(t, 1, f.c.PendingCount())
	var listed models.Record
	for _, r := range f.c.Records() {
		if r.ClientSideID == first.ClientSideID {
			listed = r
		}
	}
	assert.Equal(t, 999.0, listed.Content["income"])
	assert.Equal(t, "srv-"+first.ClientSideID, listed.ID)

	assert.Equal(t, 1, f.c.FlushQueue(context.Background()))
	calls := f.rec.persisted()
	require.Len(t, calls, 2)
	assert.Equal(t, "srv-"+first.ClientSideID, calls[1].ID)
	assert.Equal(t, 999.0, calls[1].Content["income"])
	assert.Equal(t, 0, f.c.PendingCount())
}

func TestCoordinator_EditsQueuedDuringFlushSurviveIt(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	f := newCoordFixture(t, &fakeReconciler{persistFn: blockingPersist(release, entered)}, nil)
	first := f.openNamed(t, "First")
	second := f.openNamed(t, "Second")

	flushed := make(chan int, 1)
	go func() { flushed <- f.c.FlushQueue(context.Background()) }()
	<-entered

	// пока первая запись отправляется, её снова открывают и меняют
	require.NoError(t, f.c.LoadRecord(context.Background(), first))
	f.edit(t, "income", 999.0)
	require.NoError(t, f.c.LoadRecord(context.Background(), second))

	close(release)
	select {
	case n := <-flushed:
		assert.Equal(t, 1, n)
	case <-time.After(2 * time.Second):
		t.Fatal("flush did not finish")
	}

	// следующая выгрузка отправляет новую версию как обновление
	assert.Equal(t, 1, f.c.FlushQueue(context.Background()))
	calls := f.rec.persisted()
	require.Len(t, calls, 2)
	assert.Equal(t, first.ClientSideID, calls[1].ClientSideID)
	assert.Equal(t, "srv-"+first.ClientSideID, calls[1].ID)
	assert.Equal(t, 999.0, calls[1].Content["income"])

	assert.Equal(t, 0, f.c.FlushQueue(context.Background()), "only the open record is left queued")
}

func TestCoordinator_DeleteRecord(t *testing.T) {
	t.Run("local only", func(t *testing.T) {
		f := newCoordFixture(t, nil, nil)
		rec := f.openNamed(t, "Draft")

		require.NoError(t, f.c.DeleteRecord(context.Background(), rec.ClientSideID))
		assert.Empty(t, f.rec.deleted())
		_, ok := f.c.Draft().Snapshot()
		assert.False(t, ok)

		msgs := f.channel.messages()
		require.NotEmpty(t, msgs)
		assert.Equal(t, models.BroadcastRecordDeleted, msgs[len(msgs)-1].Type)
	})

	t.Run("remote", func(t *testing.T) {
		f := newCoordFixture(t, nil, nil)
		require.NoError(t, f.c.LoadRecord(context.Background(), models.Record{ID: "srv-9", ClientSideID: "c-9", Content: models.Content{"name": "Old"}}))

		require.NoError(t, f.c.DeleteRecord(context.Background(), "srv-9"))
		assert.Equal(t, []string{"srv-9"}, f.rec.deleted())
		assert.Equal(t, models.OutcomeSkippedNoRecord, f.save(manual))
	})

	t.Run("already gone remotely", func(t *testing.T) {
		rec := &fakeReconciler{deleteFn: func(string) *models.SyncError {
			return ClassifyError("delete", adapter.ErrNotFound)
		}}
		f := newCoordFixture(t, rec, nil)
		require.NoError(t, f.c.LoadRecord(context.Background(), models.Record{ID: "srv-9", ClientSideID: "c-9", Content: models.Content{"name": "Old"}}))
		assert.NoError(t, f.c.DeleteRecord(context.Background(), "srv-9"))
	})

	t.Run("offline", func(t *testing.T) {
		rec := &fakeReconciler{deleteFn: func(string) *models.SyncError {
			return ClassifyError("delete", adapter.ErrNetwork)
		}}
		f := newCoordFixture(t, rec, nil)
		require.NoError(t, f.c.LoadRecord(context.Background(), models.Record{ID: "srv-9", ClientSideID: "c-9", Content: models.Content{"name": "Old"}}))
		assert.Error(t, f.c.DeleteRecord(context.Background(), "srv-9"))
		_, ok := f.c.Draft().Snapshot()
		assert.True(t, ok)
	})

	t.Run("unknown", func(t *testing.T) {
		f := newCoordFixture(t, nil, nil)
		assert.ErrorIs(t, f.c.DeleteRecord(context.Background(), "nope"), ErrRecordNotInList)
	})
}

func TestCoordinator_RefreshKeepsQueuedVersions(t *testing.T) {
	rec := &fakeReconciler{}
	f := newCoordFixture(t, rec, nil)
	local := f.openNamed(t, "Mine")
	f.openNamed(t, "Other")

	rec.refreshFn = func() ([]models.Record, *models.SyncError) {
		return []models.Record{{ID: "srv-5", ClientSideID: "c-5", Content: models.Content{"name": "Remote"}}}, nil
	}
	require.NoError(t, f.c.RefreshList(context.Background()))

	records := f.c.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "srv-5", records[0].ID)
	assert.Equal(t, local.ClientSideID, records[1].ClientSideID)
}

// ── cross-instance ───────────────────────────────────────────────────────────

func TestCoordinator_ApplyBroadcast(t *testing.T) {
	f := newCoordFixture(t, nil, nil)
	require.NoError(t, f.c.LoadRecord(context.Background(), models.Record{ID: "srv-1", ClientSideID: "c-1", Content: models.Content{"name": "Open"}}))
	require.Equal(t, models.OutcomeStarted, f.save(models.SaveRequest{Force: true, Trigger: models.TriggerManual}))
	waitSettled(t, f.c)
	require.Len(t, f.c.Records(), 1)

	// собственные сообщения игнорируются
	f.c.ApplyBroadcast(models.BroadcastMessage{Type: models.BroadcastListUpdated, InstanceID: "inst-a", OwnerID: 7})
	assert.Len(t, f.c.Records(), 1)

	// чужой владелец игнорируется
	f.c.ApplyBroadcast(models.BroadcastMessage{Type: models.BroadcastListUpdated, InstanceID: "inst-b", OwnerID: 8})
	assert.Len(t, f.c.Records(), 1)

	f.c.ApplyBroadcast(models.BroadcastMessage{
		Type:       models.BroadcastListUpdated,
		InstanceID: "inst-b",
		OwnerID:    7,
		Records: []models.Record{
			{ID: "srv-1", ClientSideID: "c-1", Content: models.Content{"name": "Theirs"}},
			{ID: "srv-2", ClientSideID: "c-2", Content: models.Content{"name": "New"}},
		},
	})
	records := f.c.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "Open", records[0].Name(), "open record keeps the local entry")
	assert.Equal(t, "New", records[1].Name())

	f.c.ApplyBroadcast(models.BroadcastMessage{Type: models.BroadcastRecordDeleted, InstanceID: "inst-b", OwnerID: 7, RecordID: "srv-2"})
	assert.Len(t, f.c.Records(), 1)

	f.c.ApplyBroadcast(models.BroadcastMessage{Type: models.BroadcastRecordDeleted, InstanceID: "inst-b", OwnerID: 7, RecordID: "srv-1"})
	assert.Len(t, f.c.Records(), 1)
}

func TestCoordinator_MarkPendingAndView(t *testing.T) {
	f := newCoordFixture(t, nil, nil)
	f.c.MarkPending(context.Background())
	assert.False(t, f.c.Pending(), "nothing open")

	f.openNamed(t, "Ivanov")
	f.c.MarkPending(context.Background())
	assert.True(t, f.c.Pending())

	var pending bool
	require.NoError(t, f.cache.Get(context.Background(), cacheKeyPendingSync, &pending))
	assert.True(t, pending)

	assert.Empty(t, f.c.LastView(context.Background()))
	require.NoError(t, f.c.RememberView(context.Background(), "editor"))
	assert.Equal(t, "editor", f.c.LastView(context.Background()))
}
