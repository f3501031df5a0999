package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-plan-keeper/models"
)

// SnapshotDiffer answers whether a record changed meaningfully since its
// baseline. Volatile fields never count as a change.
type SnapshotDiffer interface {
	// ShouldPersist returns false when current and baseline have the same
	// fingerprint. An empty baseline always yields true unless current is
	// empty too.
	ShouldPersist(current, baseline models.Record) bool

	// Fingerprint returns a stable hash of the non-volatile part of record.
	Fingerprint(record models.Record) (string, error)
}

// ClientReconciler performs remote I/O for the coordinator and converts
// every failure into a classified [models.SyncError].
type ClientReconciler interface {
	// Persist writes record with a hard timeout. The result is marked Stale
	// when a list refresh started after the write was issued.
	Persist(ctx context.Context, record models.Record) (models.PersistResult, *models.SyncError)

	// Refresh records a new refresh marker and fetches the full list.
	Refresh(ctx context.Context) ([]models.Record, *models.SyncError)

	// Delete removes the record with the given server id.
	Delete(ctx context.Context, id string) *models.SyncError
}

// ClientSaveCoordinator owns the open record, its baseline, the
// single-flight lock and the sync state shown to the UI.
type ClientSaveCoordinator interface {
	// Resume restores the list, the open record and its bookkeeping from
	// the local cache.
	Resume(ctx context.Context) error

	// RequestSave evaluates the guards and, when they pass, starts one
	// remote write in the background.
	RequestSave(ctx context.Context, req models.SaveRequest) models.SaveOutcome

	// LoadRecord opens record for editing, resetting the baseline.
	LoadRecord(ctx context.Context, record models.Record) error

	// CreateNewRecord opens a fresh local record with a new client side id.
	CreateNewRecord(ctx context.Context) (models.Record, error)

	// DeleteRecord deletes the record with the given server or client side id.
	DeleteRecord(ctx context.Context, id string) error

	// RefreshList fetches the authoritative list and replaces the cached one.
	RefreshList(ctx context.Context) error

	// FlushQueue persists queued records other than the open one and
	// returns how many reached the remote store.
	FlushQueue(ctx context.Context) int

	// Remediate applies the user's decision after a critical error.
	Remediate(ctx context.Context, action models.RemediationAction) error

	// ReleaseStaleLock releases a save lock whose deadline is not after now.
	ReleaseStaleLock(now time.Time) bool

	// SetBackgrounded records host visibility.
	SetBackgrounded(backgrounded bool)

	// SetOnline records connectivity.
	SetOnline(online bool)

	// MarkPending sets the pending-sync flag of the open record.
	MarkPending(ctx context.Context)

	// Pending reports the pending-sync flag of the open record.
	Pending() bool

	// Settled returns a channel closed when no save is in flight.
	Settled() <-chan struct{}

	// ApplyBroadcast reconciles the list with a message of another instance.
	ApplyBroadcast(msg models.BroadcastMessage)

	// RememberView stores the identifier of the view the UI shows, so the
	// next start can reopen it.
	RememberView(ctx context.Context, view string) error
	LastView(ctx context.Context) string

	SyncState() models.SyncState
	Status() models.SyncStatus
	PendingCount() int
	Records() []models.Record
	Draft() *Draft
	Subscribe(listener func(models.SyncStatus)) (unsubscribe func())
}

// ClientSessionService keeps the client signed in.
type ClientSessionService interface {
	// Start loads the cached session and makes sure it is usable, logging in
	// with configured credentials when nothing can be restored.
	Start(ctx context.Context) error

	// Restore re-establishes the session after a wake. Aborted requests are
	// retried with exponential backoff.
	Restore(ctx context.Context) error

	// Login signs in with credentials and caches the session.
	Login(ctx context.Context, login, password string) error

	// Register creates an account and caches the session.
	Register(ctx context.Context, login, password string) error

	// Current returns the session in use, or nil.
	Current() *models.Session
}

// ClientDispatcher converts lifecycle events and the autosave tick into
// coordinator requests.
type ClientDispatcher interface {
	// Run consumes events until ctx is done or the source is exhausted.
	Run(ctx context.Context) error

	// HandleExit starts the exit save and returns a channel closed when it
	// settled or the watchdog bound elapsed.
	HandleExit(ctx context.Context) <-chan struct{}
}
