package models

import "time"

// LifecycleKind is a host lifecycle signal consumed by the dispatcher.
type LifecycleKind string

const (
	LifecycleBackground LifecycleKind = "background"
	LifecycleForeground LifecycleKind = "foreground"
	LifecycleFocus      LifecycleKind = "focus"
	LifecycleReconnect  LifecycleKind = "reconnect"
	LifecycleOnline     LifecycleKind = "online"
	LifecycleOffline    LifecycleKind = "offline"
	LifecycleExit       LifecycleKind = "exit"
	// LifecycleRemoteChange is emitted when the remote change feed reports
	// a modification made elsewhere.
	LifecycleRemoteChange LifecycleKind = "remote_change"
)

// IsWake reports whether the signal belongs to the debounced wake group.
func (k LifecycleKind) IsWake() bool {
	return k == LifecycleForeground || k == LifecycleFocus || k == LifecycleReconnect
}

// LifecycleEvent is one signal emitted by an event source.
type LifecycleEvent struct {
	Kind   LifecycleKind
	Source string
	At     time.Time
}

// ChangeEvent is one notification of the remote change feed.
type ChangeEvent struct {
	Type     string    `json:"type"`
	RecordID string    `json:"record_id"`
	OwnerID  int64     `json:"owner_id"`
	At       time.Time `json:"at"`
}

// Change feed event types.
const (
	ChangeRecordSaved   = "record_saved"
	ChangeRecordDeleted = "record_deleted"
)
