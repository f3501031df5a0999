package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MKhiriev/go-plan-keeper/internal/broadcast"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/store"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
	"github.com/MKhiriev/go-plan-keeper/models"
)

// CoordinatorConfig holds the timings and identity of a coordinator.
type CoordinatorConfig struct {
	// WatchdogTimeout bounds how long the save lock may be held.
	WatchdogTimeout time.Duration
	// SavedRevertDelay is how long "saved" is shown before "idle".
	SavedRevertDelay time.Duration
	// InstanceID identifies this process on the broadcast channel.
	InstanceID string
}

type cacheWrite struct {
	key   string
	value any
	// del removes the key instead of writing value.
	del bool
	seq uint64
}

type clientSaveCoordinator struct {
	reconciler ClientReconciler
	differ     SnapshotDiffer
	cache      store.LocalCache
	channel    broadcast.Channel
	sessions   SessionSource
	ids        utils.IDGenerator
	clock      utils.Clock
	cfg        CoordinatorConfig
	logger     *logger.Logger

	draft *Draft

	mu           sync.Mutex
	records      []models.Record
	queue        []models.Record
	baseline     models.Record
	pending      bool
	status       models.SyncStatus

	// queueSeq increases on every local write to the queue; queuedAt keeps
	// the value for each client side id. A write that started before the
	// latest local copy was queued must not replace that copy.
	queueSeq uint64
	queuedAt map[string]uint64
	backgrounded bool
	online       bool

	// single-flight lock
	saving       bool
	transferring bool
	savingRecord models.Record
	savingSeq    uint64
	deadline     time.Time
	generation   uint64
	watchdog     utils.Timer
	settled      chan struct{}

	revert    utils.Timer
	revertGen uint64

	// rejected is the fingerprint of content the remote store refused.
	// Unforced requests for the same content are skipped.
	rejected    string
	remediating bool

	listeners    map[int]func(models.SyncStatus)
	nextListener int

	// work collected under mu and performed by unlock
	writes        []cacheWrite
	writeSeq      uint64
	broadcasts    []models.BroadcastMessage
	notifications []models.SyncStatus
	closing       []chan struct{}

	writeMu     sync.Mutex
	lastWritten map[string]uint64
}

// NewClientSaveCoordinator creates a coordinator with no open record. Call
// Resume to restore the state left in the local cache.
func NewClientSaveCoordinator(
	reconciler ClientReconciler,
	differ SnapshotDiffer,
	cache store.LocalCache,
	channel broadcast.Channel,
	sessions SessionSource,
	ids utils.IDGenerator,
	clock utils.Clock,
	cfg CoordinatorConfig,
	log *logger.Logger,
) ClientSaveCoordinator {
	c := &clientSaveCoordinator{
		reconciler:  reconciler,
		differ:      differ,
		cache:       cache,
		channel:     channel,
		sessions:    sessions,
		ids:         ids,
		clock:       clock,
		cfg:         cfg,
		logger:      log,
		draft:       NewDraft(nil),
		online:      true,
		listeners:   make(map[int]func(models.SyncStatus)),
		lastWritten: make(map[string]uint64),
		queuedAt:    make(map[string]uint64),
	}
	c.status = models.SyncStatus{State: models.SyncStateIdle, Online: true, At: clock.Now()}
	c.settled = make(chan struct{})
	close(c.settled)
	return c
}

// ── locking ──────────────────────────────────────────────────────────────────

// unlock releases mu, then performs the cache writes, broadcasts and
// notifications queued while it was held, in that order.
func (c *clientSaveCoordinator) unlock() {
	writes, msgs, notes, closing := c.writes, c.broadcasts, c.notifications, c.closing
	c.writes, c.broadcasts, c.notifications, c.closing = nil, nil, nil, nil

	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]func(models.SyncStatus), 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, c.listeners[id])
	}
	c.mu.Unlock()

	c.flushWrites(writes)

	for _, msg := range msgs {
		if err := c.channel.Publish(context.Background(), msg); err != nil {
			c.logger.Err(err).Str("func", "clientSaveCoordinator.unlock").Str("type", string(msg.Type)).Msg("failed to publish broadcast")
		}
	}

	for _, st := range notes {
		for _, l := range listeners {
			l(st)
		}
	}

	for _, ch := range closing {
		close(ch)
	}
}

// flushWrites applies queued cache writes. A write older than one already
// applied for the same key is skipped, so concurrent unlocks cannot roll a
// key back.
func (c *clientSaveCoordinator) flushWrites(writes []cacheWrite) {
	if len(writes) == 0 {
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	ctx := context.Background()
	for _, w := range writes {
		if w.seq <= c.lastWritten[w.key] {
			continue
		}
		c.lastWritten[w.key] = w.seq

		var err error
		if w.del {
			err = c.cache.Delete(ctx, w.key)
		} else {
			err = c.cache.Put(ctx, w.key, w.value)
		}
		if err != nil {
			c.logger.Err(err).Str("func", "clientSaveCoordinator.flushWrites").Str("key", w.key).Msg("failed to write local cache")
		}
	}
}

func (c *clientSaveCoordinator) writeLocked(key string, value any) {
	c.writeSeq++
	c.writes = append(c.writes, cacheWrite{key: key, value: value, seq: c.writeSeq})
}

func (c *clientSaveCoordinator) deleteLocked(key string) {
	c.writeSeq++
	c.writes = append(c.writes, cacheWrite{key: key, del: true, seq: c.writeSeq})
}

func (c *clientSaveCoordinator) writeListLocked() {
	c.writeLocked(cacheKeyRecords, models.CloneRecords(c.records))
}

func (c *clientSaveCoordinator) writeBookkeepingLocked() {
	c.writeLocked(cacheKeyBaseline, c.baseline.Clone())
	c.writeLocked(cacheKeyPendingSync, c.pending)
	c.writeLocked(cacheKeyPendingQueue, models.CloneRecords(c.queue))
}

func (c *clientSaveCoordinator) publishListLocked() {
	msg := models.BroadcastMessage{
		Type:       models.BroadcastListUpdated,
		InstanceID: c.cfg.InstanceID,
		Records:    models.CloneRecords(c.records),
		SentAt:     c.clock.Now(),
	}
	if s := c.sessions.Current(); s != nil {
		msg.OwnerID = s.UserID
	}
	c.broadcasts = append(c.broadcasts, msg)
}

func (c *clientSaveCoordinator) setStateLocked(state models.SyncState, message string, class models.ErrorClass, remediation, pulse bool) {
	c.status = models.SyncStatus{
		State:        state,
		Message:      message,
		ErrorClass:   class,
		Remediation:  remediation,
		Pulse:        pulse,
		PendingCount: c.pendingCountLocked(),
		Online:       c.online,
		At:           c.clock.Now(),
	}
	c.notifications = append(c.notifications, c.status)
}

// touchLocked re-emits the current state with fresh counters, so the UI
// re-reads the list.
func (c *clientSaveCoordinator) touchLocked() {
	c.status.PendingCount = c.pendingCountLocked()
	c.status.Online = c.online
	c.status.Pulse = false
	c.status.At = c.clock.Now()
	c.notifications = append(c.notifications, c.status)
}

func (c *clientSaveCoordinator) pendingCountLocked() int {
	n := len(c.queue)
	if c.pending {
		open := c.draft.ClientSideID()
		for _, r := range c.queue {
			if r.ClientSideID == open {
				return n
			}
		}
		n++
	}
	return n
}

// ── saving ───────────────────────────────────────────────────────────────────

// RequestSave implements [ClientSaveCoordinator]. Guards run in order:
// visibility, auth, single-flight, name, rejected content, no-op.
func (c *clientSaveCoordinator) RequestSave(ctx context.Context, req models.SaveRequest) models.SaveOutcome {
	c.mu.Lock()
	defer c.unlock()

	log := c.logger.With().Str("func", "clientSaveCoordinator.RequestSave").Str("trigger", string(req.Trigger)).Logger()

	if c.backgrounded && !req.Force {
		return models.OutcomeSkippedHidden
	}
	if !c.sessions.Current().Active() {
		log.Debug().Msg("account is not active, save skipped")
		return models.OutcomeSkippedAuth
	}

	if c.saving && !c.clock.Now().Before(c.deadline) {
		c.releaseLocked("save lock expired")
	}
	if c.saving || c.transferring {
		return models.OutcomeSkippedBusy
	}

	snapshot, ok := c.draft.Snapshot()
	if !ok {
		return models.OutcomeSkippedNoRecord
	}
	if snapshot.Name() == "" {
		return models.OutcomeSkippedUnnamed
	}

	if !req.Force && (c.remediating || c.isRejectedLocked(snapshot)) {
		return models.OutcomeSkippedRejected
	}

	if !req.Force && !c.pending && !c.differ.ShouldPersist(snapshot, c.baseline) {
		if req.Auto && c.status.State == models.SyncStateIdle {
			return models.OutcomeNoop
		}
		c.setStateLocked(models.SyncStateSaved, "", models.ErrorClassNone, false, !req.Auto)
		c.armRevertLocked()
		return models.OutcomeNoop
	}

	c.startSaveLocked(ctx, snapshot)
	log.Debug().Str("client_side_id", snapshot.ClientSideID).Uint64("generation", c.generation).Msg("save started")
	return models.OutcomeStarted
}

func (c *clientSaveCoordinator) isRejectedLocked(snapshot models.Record) bool {
	if c.rejected == "" {
		return false
	}
	fp, err := c.differ.Fingerprint(snapshot)
	return err == nil && fp == c.rejected
}

func (c *clientSaveCoordinator) startSaveLocked(ctx context.Context, snapshot models.Record) {
	c.saving = true
	c.generation++
	gen := c.generation
	c.savingRecord = snapshot.Clone()
	c.savingSeq = c.queueSeq
	// Round(0) drops the monotonic reading: time spent suspended must count
	// against the deadline.
	c.deadline = c.clock.Now().Add(c.cfg.WatchdogTimeout).Round(0)
	c.settled = make(chan struct{})
	c.stopRevertLocked()
	c.watchdog = c.clock.AfterFunc(c.cfg.WatchdogTimeout, func() { c.onWatchdog(gen) })

	c.setStateLocked(models.SyncStateSaving, "", models.ErrorClassNone, false, false)

	go c.persist(context.WithoutCancel(ctx), gen, snapshot)
}

func (c *clientSaveCoordinator) persist(ctx context.Context, gen uint64, snapshot models.Record) {
	result, serr := c.reconciler.Persist(ctx, snapshot)
	c.complete(gen, snapshot, result, serr)
}

func (c *clientSaveCoordinator) complete(gen uint64, snapshot models.Record, result models.PersistResult, serr *models.SyncError) {
	c.mu.Lock()
	defer c.unlock()

	log := c.logger.With().
		Str("func", "clientSaveCoordinator.complete").
		Str("client_side_id", snapshot.ClientSideID).
		Uint64("generation", gen).
		Logger()

	promoted := serr == nil && c.promoteLocked(snapshot.ClientSideID, result.Record.ID)

	if gen != c.generation || !c.saving {
		if promoted {
			c.writeListLocked()
			c.writeBookkeepingLocked()
		}
		log.Warn().Msg("completion of a superseded save ignored")
		return
	}
	c.finishSaveLocked()
	since := c.savingSeq

	if serr != nil {
		c.failLocked(snapshot, since, serr)
		return
	}

	if c.queuedAfterLocked(snapshot.ClientSideID, since) {
		// the confirmed content is older than the queued copy, which stays
		// queued and is sent by the next flush or save
		if promoted {
			c.writeListLocked()
			c.writeBookkeepingLocked()
		}
		c.setStateLocked(models.SyncStateSaved, "", models.ErrorClassNone, false, false)
		c.armRevertLocked()
		log.Info().Msg("newer local copy queued during the write, kept")
		return
	}

	persisted := snapshot.Clone()
	if persisted.ID == "" {
		persisted.ID = result.Record.ID
	}
	persisted.LastUpdated = result.Record.LastUpdated

	if c.draft.ClientSideID() == persisted.ClientSideID {
		c.baseline = persisted.Clone()
		c.pending = false
		c.rejected = ""
		c.remediating = false
	}
	c.queue = models.RemoveRecord(c.queue, persisted.ClientSideID)
	c.writeBookkeepingLocked()

	if result.Stale {
		log.Debug().Msg("list refreshed during the write, list entry left to the refresh")
	} else {
		c.records = models.UpsertRecord(c.records, persisted)
		c.writeListLocked()
		c.publishListLocked()
	}

	c.setStateLocked(models.SyncStateSaved, "", models.ErrorClassNone, false, false)
	c.armRevertLocked()
	log.Debug().Str("record_id", persisted.ID).Msg("save confirmed")
}

func (c *clientSaveCoordinator) failLocked(snapshot models.Record, since uint64, serr *models.SyncError) {
	log := c.logger.With().
		Str("func", "clientSaveCoordinator.failLocked").
		Str("client_side_id", snapshot.ClientSideID).
		Str("class", string(serr.Class)).
		Logger()

	switch serr.Class {
	case models.ErrorClassNetwork:
		if !c.queuedAfterLocked(snapshot.ClientSideID, since) {
			c.acceptLocalLocked(snapshot)
		}
		c.setStateLocked(models.SyncStatePendingSync, "Saved on this device. Sync resumes when the connection is back.", serr.Class, false, false)
		log.Info().Err(serr).Msg("write accepted locally")

	case models.ErrorClassCritical:
		c.remediating = true
		c.setStateLocked(models.SyncStateError, fmt.Sprintf("The server reported a problem with this record: %v", serr.Err), serr.Class, true, false)
		log.Error().Err(serr).Msg("critical remote error")

	default:
		if fp, err := c.differ.Fingerprint(snapshot); err == nil {
			c.rejected = fp
		}
		c.setStateLocked(models.SyncStateError, fmt.Sprintf("The server rejected this record: %v", serr.Err), serr.Class, false, false)
		log.Warn().Err(serr).Msg("record rejected")
	}
}

// acceptLocalLocked stores snapshot in the list and the offline queue and
// marks it pending.
func (c *clientSaveCoordinator) acceptLocalLocked(snapshot models.Record) {
	local := snapshot.Clone()

	c.records = models.UpsertRecord(c.records, local.Clone())
	c.enqueueLocked(local.Clone())
	if c.draft.ClientSideID() == local.ClientSideID {
		c.baseline = local
		c.pending = true
	}

	c.writeListLocked()
	c.writeBookkeepingLocked()
	c.publishListLocked()
}

// enqueueLocked puts record into the offline queue and stamps it with the
// next queue sequence.
func (c *clientSaveCoordinator) enqueueLocked(record models.Record) {
	c.queueSeq++
	c.queuedAt[record.ClientSideID] = c.queueSeq
	c.queue = models.UpsertRecord(c.queue, record)
}

// queuedAfterLocked reports whether a local copy of the record was queued
// after the queue sequence since.
func (c *clientSaveCoordinator) queuedAfterLocked(clientSideID string, since uint64) bool {
	return c.queuedAt[clientSideID] > since
}

func (c *clientSaveCoordinator) finishSaveLocked() {
	c.saving = false
	if c.watchdog != nil {
		c.watchdog.Stop()
		c.watchdog = nil
	}
	c.closing = append(c.closing, c.settled)
}

func (c *clientSaveCoordinator) onWatchdog(gen uint64) {
	c.mu.Lock()
	defer c.unlock()

	if gen != c.generation || !c.saving {
		return
	}
	c.releaseLocked("save did not finish in time")
}

// releaseLocked force-releases the save lock. The in-flight write becomes
// superseded; its data is kept locally and marked pending.
func (c *clientSaveCoordinator) releaseLocked(reason string) {
	c.logger.Warn().
		Str("func", "clientSaveCoordinator.releaseLocked").
		Uint64("generation", c.generation).
		Str("reason", reason).
		Msg("releasing save lock")

	c.generation++
	c.finishSaveLocked()
	if !c.queuedAfterLocked(c.savingRecord.ClientSideID, c.savingSeq) {
		c.acceptLocalLocked(c.savingRecord)
	}
	c.setStateLocked(models.SyncStateError, "Saving took too long. Your changes are kept on this device and will be retried.", models.ErrorClassNetwork, false, false)
}

// ReleaseStaleLock implements [ClientSaveCoordinator].
func (c *clientSaveCoordinator) ReleaseStaleLock(now time.Time) bool {
	c.mu.Lock()
	defer c.unlock()

	if !c.saving || now.Round(0).Before(c.deadline) {
		return false
	}
	c.releaseLocked("save lock expired while suspended")
	return true
}

func (c *clientSaveCoordinator) armRevertLocked() {
	c.stopRevertLocked()

	c.revertGen++
	gen := c.revertGen
	c.revert = c.clock.AfterFunc(c.cfg.SavedRevertDelay, func() {
		c.mu.Lock()
		defer c.unlock()

		if gen != c.revertGen || c.status.State != models.SyncStateSaved {
			return
		}
		c.setStateLocked(models.SyncStateIdle, "", models.ErrorClassNone, false, false)
	})
}

func (c *clientSaveCoordinator) stopRevertLocked() {
	if c.revert != nil {
		c.revert.Stop()
		c.revert = nil
	}
}

// promoteLocked writes a server-assigned id into every local copy of the
// record that does not have one yet.
func (c *clientSaveCoordinator) promoteLocked(clientSideID, id string) bool {
	if id == "" {
		return false
	}

	changed := false
	for _, list := range [][]models.Record{c.records, c.queue} {
		for i := range list {
			if list[i].ClientSideID == clientSideID && list[i].ID == "" {
				list[i].ID = id
				changed = true
			}
		}
	}

	if c.draft.promote(clientSideID, id) {
		changed = true
		c.writeLocked(cacheKeyLastOpenedID, id)
		c.logger.Info().
			Str("func", "clientSaveCoordinator.promoteLocked").
			Str("client_side_id", clientSideID).
			Str("record_id", id).
			Msg("record promoted")
	}
	return changed
}

// Settled implements [ClientSaveCoordinator]. The channel of the last save
// is closed only after its cache writes, so it stays open for a moment
// after the lock itself is released.
func (c *clientSaveCoordinator) Settled() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settled
}

// ── records ──────────────────────────────────────────────────────────────────

// stashOpenLocked keeps unsaved edits of the open record in the offline
// queue before another record is opened.
func (c *clientSaveCoordinator) stashOpenLocked() {
	snapshot, ok := c.draft.Snapshot()
	if !ok || snapshot.Name() == "" {
		return
	}
	if c.pending || c.differ.ShouldPersist(snapshot, c.baseline) {
		c.acceptLocalLocked(snapshot)
	}
}

// openLocked makes record the open record and resets its bookkeeping.
func (c *clientSaveCoordinator) openLocked(record models.Record) {
	queued := false
	for _, q := range c.queue {
		if q.SameAs(record) {
			record = q.Clone()
			queued = true
			break
		}
	}

	c.draft.set(&record)
	c.pending = queued
	c.baseline = models.Record{}
	if record.ID != "" && !queued {
		c.baseline = record.Clone()
	}
	c.rejected = ""
	c.remediating = false

	c.writeLocked(cacheKeyLastOpenedID, lastOpenedKey(record))
	c.writeBookkeepingLocked()
	c.setStateLocked(models.SyncStateIdle, "", models.ErrorClassNone, false, false)
}

func lastOpenedKey(record models.Record) string {
	if record.ID != "" {
		return record.ID
	}
	return record.ClientSideID
}

// LoadRecord implements [ClientSaveCoordinator].
func (c *clientSaveCoordinator) LoadRecord(_ context.Context, record models.Record) error {
	c.mu.Lock()
	defer c.unlock()

	if record.ClientSideID == "" && record.ID == "" {
		return ErrRecordNotInList
	}

	c.stashOpenLocked()
	c.openLocked(record.Clone())
	return nil
}

// CreateNewRecord implements [ClientSaveCoordinator].
func (c *clientSaveCoordinator) CreateNewRecord(_ context.Context) (models.Record, error) {
	record := models.Record{
		ClientSideID: c.ids.Generate(),
		Content:      models.Content{},
	}
	if s := c.sessions.Current(); s != nil {
		record.OwnerID = s.UserID
	}

	c.mu.Lock()
	defer c.unlock()

	c.stashOpenLocked()
	c.openLocked(record)
	return record.Clone(), nil
}

// DeleteRecord implements [ClientSaveCoordinator]. A record that never
// reached the remote store is only removed locally.
func (c *clientSaveCoordinator) DeleteRecord(ctx context.Context, id string) error {
	c.mu.Lock()
	target, found := c.findLocked(id)
	if !found {
		c.unlock()
		return ErrRecordNotInList
	}
	if c.saving || c.transferring {
		c.unlock()
		return ErrBusy
	}
	c.transferring = true
	c.unlock()

	if target.ID != "" {
		if serr := c.reconciler.Delete(ctx, target.ID); serr != nil && serr.Class != models.ErrorClassValidation {
			c.mu.Lock()
			c.transferring = false
			c.unlock()
			return serr
		}
	}

	c.mu.Lock()
	defer c.unlock()

	c.transferring = false
	c.records = removeSame(c.records, target)
	c.queue = removeSame(c.queue, target)

	if open, ok := c.draft.Snapshot(); ok && open.SameAs(target) {
		c.draft.set(nil)
		c.baseline = models.Record{}
		c.pending = false
		c.deleteLocked(cacheKeyLastOpenedID)
	}

	c.writeListLocked()
	c.writeBookkeepingLocked()

	msg := models.BroadcastMessage{
		Type:       models.BroadcastRecordDeleted,
		InstanceID: c.cfg.InstanceID,
		RecordID:   lastOpenedKey(target),
		SentAt:     c.clock.Now(),
	}
	if s := c.sessions.Current(); s != nil {
		msg.OwnerID = s.UserID
	}
	c.broadcasts = append(c.broadcasts, msg)
	c.setStateLocked(models.SyncStateIdle, "", models.ErrorClassNone, false, false)

	return nil
}

func (c *clientSaveCoordinator) findLocked(id string) (models.Record, bool) {
	for _, list := range [][]models.Record{c.queue, c.records} {
		for _, r := range list {
			if r.ID == id || r.ClientSideID == id {
				return r.Clone(), true
			}
		}
	}
	if open, ok := c.draft.Snapshot(); ok && (open.ID == id || open.ClientSideID == id) {
		return open, true
	}
	return models.Record{}, false
}

func removeSame(records []models.Record, target models.Record) []models.Record {
	out := records[:0]
	for _, r := range records {
		if r.SameAs(target) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// RefreshList implements [ClientSaveCoordinator]. Queued records and the
// open record, when pending, keep their local version.
func (c *clientSaveCoordinator) RefreshList(ctx context.Context) error {
	remote, serr := c.reconciler.Refresh(ctx)
	if serr != nil {
		return serr
	}

	c.mu.Lock()
	defer c.unlock()

	c.records = c.mergeLocked(remote)
	c.writeListLocked()
	c.publishListLocked()
	c.touchLocked()
	return nil
}

// mergeLocked overlays local work on an authoritative list: queued records
// win, and so does the open record's current entry.
func (c *clientSaveCoordinator) mergeLocked(authoritative []models.Record) []models.Record {
	merged := models.CloneRecords(authoritative)
	for _, q := range c.queue {
		merged = models.UpsertRecord(merged, q.Clone())
	}
	return merged
}

// FlushQueue implements [ClientSaveCoordinator]. Records are written one at
// a time under the transfer lock; a network-class failure stops the flush.
func (c *clientSaveCoordinator) FlushQueue(ctx context.Context) int {
	c.mu.Lock()
	if c.saving || c.transferring {
		c.unlock()
		return 0
	}
	open := c.draft.ClientSideID()
	since := c.queueSeq
	var items []models.Record
	for _, q := range c.queue {
		if q.ClientSideID != open {
			items = append(items, q.Clone())
		}
	}
	if len(items) == 0 {
		c.unlock()
		return 0
	}
	c.transferring = true
	c.unlock()

	flushed := 0
	for _, item := range items {
		result, serr := c.reconciler.Persist(ctx, item)
		if serr != nil {
			c.logger.Warn().Err(serr).
				Str("func", "clientSaveCoordinator.FlushQueue").
				Str("client_side_id", item.ClientSideID).
				Msg("queued record not flushed")
			if serr.Class == models.ErrorClassNetwork {
				break
			}
			continue
		}

		c.mu.Lock()
		c.promoteLocked(item.ClientSideID, result.Record.ID)
		if c.queuedAfterLocked(item.ClientSideID, since) {
			c.unlock()
			flushed++
			continue
		}
		c.queue = models.RemoveRecord(c.queue, item.ClientSideID)
		if !result.Stale {
			persisted := item.Clone()
			persisted.ID = result.Record.ID
			persisted.LastUpdated = result.Record.LastUpdated
			c.records = models.UpsertRecord(c.records, persisted)
		}
		c.unlock()
		flushed++
	}

	c.mu.Lock()
	defer c.unlock()

	c.transferring = false
	if flushed > 0 {
		c.writeListLocked()
		c.writeBookkeepingLocked()
		c.publishListLocked()
		c.touchLocked()
	}
	return flushed
}

// Remediate implements [ClientSaveCoordinator].
func (c *clientSaveCoordinator) Remediate(ctx context.Context, action models.RemediationAction) error {
	switch action {
	case models.RemediationRetry:
		c.mu.Lock()
		c.remediating = false
		c.rejected = ""
		c.unlock()

		switch outcome := c.RequestSave(ctx, models.SaveRequest{Force: true, Trigger: models.TriggerManual}); outcome {
		case models.OutcomeStarted, models.OutcomeNoop:
			return nil
		default:
			return fmt.Errorf("%w: %s", ErrBusy, outcome)
		}

	case models.RemediationKeepLocal:
		c.mu.Lock()
		defer c.unlock()

		snapshot, ok := c.draft.Snapshot()
		if !ok {
			return ErrNoOpenRecord
		}
		c.remediating = false
		if fp, err := c.differ.Fingerprint(snapshot); err == nil {
			c.rejected = fp
		}
		c.acceptLocalLocked(snapshot)
		c.setStateLocked(models.SyncStatePendingSync, "Kept on this device. It will not be sent again until you change it.", models.ErrorClassCritical, false, false)
		return nil

	case models.RemediationDiscardLocal:
		return c.discardLocal(ctx)
	}

	return fmt.Errorf("%w: %q", ErrUnknownRemediation, action)
}

// discardLocal replaces the open record with its remote version, or closes
// it when it never reached the remote store.
func (c *clientSaveCoordinator) discardLocal(ctx context.Context) error {
	snapshot, ok := c.draft.Snapshot()
	if !ok {
		return ErrNoOpenRecord
	}

	remote, serr := c.reconciler.Refresh(ctx)
	if serr != nil {
		return serr
	}

	c.mu.Lock()
	defer c.unlock()

	c.queue = removeSame(c.queue, snapshot)
	c.records = c.mergeLocked(remote)
	c.remediating = false
	c.rejected = ""

	var found *models.Record
	for i := range c.records {
		if c.records[i].SameAs(snapshot) {
			found = &c.records[i]
			break
		}
	}

	if found != nil {
		c.openLocked(found.Clone())
	} else {
		c.draft.set(nil)
		c.baseline = models.Record{}
		c.pending = false
		c.deleteLocked(cacheKeyLastOpenedID)
		c.writeBookkeepingLocked()
		c.setStateLocked(models.SyncStateIdle, "", models.ErrorClassNone, false, false)
	}
	c.writeListLocked()
	c.publishListLocked()
	return nil
}

// ── restoring ────────────────────────────────────────────────────────────────

// Resume implements [ClientSaveCoordinator].
func (c *clientSaveCoordinator) Resume(ctx context.Context) error {
	var (
		records    []models.Record
		queue      []models.Record
		baseline   models.Record
		pending    bool
		lastOpened string
	)

	for key, dest := range map[string]any{
		cacheKeyRecords:      &records,
		cacheKeyPendingQueue: &queue,
		cacheKeyBaseline:     &baseline,
		cacheKeyPendingSync:  &pending,
		cacheKeyLastOpenedID: &lastOpened,
	} {
		if err := c.cache.Get(ctx, key, dest); err != nil && !errors.Is(err, store.ErrCacheMiss) {
			return fmt.Errorf("read %s from local cache: %w", key, err)
		}
	}

	c.mu.Lock()
	defer c.unlock()

	c.records = records
	c.queue = queue

	if lastOpened != "" {
		if open, ok := c.findLocked(lastOpened); ok {
			c.draft.set(&open)
			c.pending = pending
			if baseline.SameAs(open) {
				c.baseline = baseline
			} else if open.ID != "" {
				c.baseline = open.Clone()
			}
		}
	}

	state := models.SyncStateIdle
	if c.pendingCountLocked() > 0 {
		state = models.SyncStatePendingSync
	}
	c.setStateLocked(state, "", models.ErrorClassNone, false, false)

	c.logger.Info().
		Str("func", "clientSaveCoordinator.Resume").
		Int("records", len(c.records)).
		Int("queued", len(c.queue)).
		Bool("pending", c.pending).
		Str("open", c.draft.ClientSideID()).
		Msg("state restored from local cache")
	return nil
}

// ── cross-instance ───────────────────────────────────────────────────────────

// ApplyBroadcast implements [ClientSaveCoordinator]. The entry of the record
// open here is never replaced by another instance's copy.
func (c *clientSaveCoordinator) ApplyBroadcast(msg models.BroadcastMessage) {
	if msg.InstanceID == c.cfg.InstanceID {
		return
	}

	c.mu.Lock()
	defer c.unlock()

	if s := c.sessions.Current(); s != nil && msg.OwnerID != 0 && msg.OwnerID != s.UserID {
		return
	}

	open, hasOpen := c.draft.Snapshot()

	switch msg.Type {
	case models.BroadcastListUpdated:
		incoming := c.mergeLocked(msg.Records)
		if hasOpen {
			for _, r := range c.records {
				if r.SameAs(open) {
					incoming = models.UpsertRecord(incoming, r.Clone())
					break
				}
			}
		}
		c.records = incoming

	case models.BroadcastRecordDeleted:
		if hasOpen && (open.ID == msg.RecordID || open.ClientSideID == msg.RecordID) {
			return
		}
		c.records = models.RemoveRecord(c.records, msg.RecordID)

	default:
		return
	}

	c.touchLocked()
}

// ── accessors ────────────────────────────────────────────────────────────────

func (c *clientSaveCoordinator) SetBackgrounded(backgrounded bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backgrounded = backgrounded
}

func (c *clientSaveCoordinator) SetOnline(online bool) {
	c.mu.Lock()
	defer c.unlock()

	if c.online == online {
		return
	}
	c.online = online
	c.touchLocked()
}

// MarkPending implements [ClientSaveCoordinator].
func (c *clientSaveCoordinator) MarkPending(_ context.Context) {
	c.mu.Lock()
	defer c.unlock()

	if _, ok := c.draft.Snapshot(); !ok || c.pending {
		return
	}
	c.pending = true
	c.writeLocked(cacheKeyPendingSync, true)
}

func (c *clientSaveCoordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

func (c *clientSaveCoordinator) SyncState() models.SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status.State
}

func (c *clientSaveCoordinator) Status() models.SyncStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *clientSaveCoordinator) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingCountLocked()
}

func (c *clientSaveCoordinator) Records() []models.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.CloneRecords(c.records)
}

func (c *clientSaveCoordinator) Draft() *Draft {
	return c.draft
}

// Subscribe implements [ClientSaveCoordinator]. Listeners are called
// outside the coordinator lock and must not block.
func (c *clientSaveCoordinator) Subscribe(listener func(models.SyncStatus)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextListener
	c.nextListener++
	c.listeners[id] = listener

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// RememberView stores the identifier of the view the UI shows.
func (c *clientSaveCoordinator) RememberView(ctx context.Context, view string) error {
	return c.cache.Put(ctx, cacheKeyLastOpenedView, view)
}

// LastView returns the view stored by RememberView, or "".
func (c *clientSaveCoordinator) LastView(ctx context.Context) string {
	var view string
	if err := c.cache.Get(ctx, cacheKeyLastOpenedView, &view); err != nil {
		return ""
	}
	return view
}
