package models

import "time"

// BroadcastType is the type of a cross-instance message.
type BroadcastType string

const (
	// BroadcastListUpdated carries the full record list.
	BroadcastListUpdated BroadcastType = "list_updated"
	// BroadcastRecordDeleted carries the id of a deleted record.
	BroadcastRecordDeleted BroadcastType = "record_deleted"
)

// BroadcastMessage is published to other running instances whenever the
// local list cache changes.
type BroadcastMessage struct {
	Type       BroadcastType `json:"type"`
	InstanceID string        `json:"instance_id"`
	OwnerID    int64         `json:"owner_id"`
	Records    []Record      `json:"records,omitempty"`
	RecordID   string        `json:"record_id,omitempty"`
	SentAt     time.Time     `json:"sent_at"`
}
