package models

import "time"

// SyncState is the state of the save coordinator as observed by the UI.
// Only the coordinator changes it.
type SyncState string

const (
	SyncStateIdle        SyncState = "idle"
	SyncStateSaving      SyncState = "saving"
	SyncStateSaved       SyncState = "saved"
	SyncStatePendingSync SyncState = "pending_sync"
	SyncStateError       SyncState = "error"
)

// SyncStatus is a snapshot of the coordinator state pushed to subscribers.
type SyncStatus struct {
	State SyncState
	// Message is a user facing explanation for pending_sync and error.
	Message string
	// PendingCount is the number of records accepted locally but not yet
	// confirmed by the remote store.
	PendingCount int
	// ErrorClass is set for the error and pending_sync states.
	ErrorClass ErrorClass
	// Remediation asks the UI to block and offer a remediation action.
	Remediation bool
	// Pulse marks a manual save that found nothing to persist.
	Pulse bool
	// Online is the last known connectivity.
	Online bool
	At     time.Time
}

// SaveTrigger names what asked for a save. It is used for logging and to
// decide whether a success pulse is shown.
type SaveTrigger string

const (
	TriggerManual     SaveTrigger = "manual"
	TriggerPeriodic   SaveTrigger = "periodic"
	TriggerBackground SaveTrigger = "background"
	TriggerWake       SaveTrigger = "wake"
	TriggerOnline     SaveTrigger = "online"
	TriggerExit       SaveTrigger = "exit"
	TriggerFlush      SaveTrigger = "flush"
)

// SaveRequest is a request to persist the open record.
type SaveRequest struct {
	// Force bypasses the visibility guard and the no-op guard.
	Force bool
	// Auto marks requests not initiated by the user.
	Auto    bool
	Trigger SaveTrigger
}

// SaveOutcome tells the caller what the coordinator did with a request.
type SaveOutcome string

const (
	// OutcomeStarted means a remote write was started.
	OutcomeStarted SaveOutcome = "started"
	// OutcomeNoop means nothing changed since the baseline.
	OutcomeNoop SaveOutcome = "noop"
	// OutcomeSkippedHidden means the host is backgrounded.
	OutcomeSkippedHidden SaveOutcome = "skipped_hidden"
	// OutcomeSkippedAuth means the account is not active.
	OutcomeSkippedAuth SaveOutcome = "skipped_auth"
	// OutcomeSkippedBusy means a save or a record transfer is in progress.
	OutcomeSkippedBusy SaveOutcome = "skipped_busy"
	// OutcomeSkippedUnnamed means the record has no name yet.
	OutcomeSkippedUnnamed SaveOutcome = "skipped_unnamed"
	// OutcomeSkippedNoRecord means no record is open.
	OutcomeSkippedNoRecord SaveOutcome = "skipped_no_record"
	// OutcomeSkippedRejected means the remote store rejected this exact
	// content before and the request was not forced.
	OutcomeSkippedRejected SaveOutcome = "skipped_rejected"
)

// PersistResult is the outcome of a successful remote write.
type PersistResult struct {
	Record Record
	// Stale is set when a list refresh started after the write was issued.
	Stale bool
}

// RemediationAction is a user decision taken after a critical error.
type RemediationAction string

const (
	// RemediationDiscardLocal drops the local copy and reloads the remote one.
	RemediationDiscardLocal RemediationAction = "discard_local"
	// RemediationRetry retries the save exactly once.
	RemediationRetry RemediationAction = "retry"
	// RemediationKeepLocal keeps the local copy and stops retrying it.
	RemediationKeepLocal RemediationAction = "keep_local"
)
