package models

import (
	"strings"
	"time"

	"github.com/mohae/deepcopy"
)

// Content is the opaque, arbitrarily nested payload of a client record.
// It is owned by the UI layer; the sync engine only reads the "name" key.
type Content map[string]any

// ContentNameKey is the content key holding the human-meaningful name of
// a record.
const ContentNameKey = "name"

// Record is the unit of synchronization: one client record of a financial
// plan, edited locally and persisted to the remote store.
type Record struct {
	// ID is assigned by the remote store on the first successful write and
	// is immutable afterwards. Empty for a record that exists only locally.
	ID string `json:"id,omitempty"`

	// ClientSideID is generated by the client when the record is created.
	// It keys the local list cache and makes remote creation idempotent.
	ClientSideID string `json:"client_side_id"`

	// OwnerID is the user owning the record.
	OwnerID int64 `json:"owner_id"`

	// Content is the UI-owned payload.
	Content Content `json:"content,omitempty"`

	// LastUpdated is touched by both sides on every mutation and is never
	// part of equality comparisons.
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// Name returns the trimmed "name" content attribute, or an empty string.
func (r Record) Name() string {
	name, _ := r.Content[ContentNameKey].(string)
	return strings.TrimSpace(name)
}

// IsLocal reports whether the record has not been promoted yet.
func (r Record) IsLocal() bool {
	return r.ID == ""
}

// IsEmpty reports whether the record carries no identity and no content.
// An empty record is the uninitialized baseline sentinel.
func (r Record) IsEmpty() bool {
	return r.ID == "" && r.ClientSideID == "" && len(r.Content) == 0
}

// SameAs reports whether both values describe the same record, either by
// server id or by client side id.
func (r Record) SameAs(other Record) bool {
	if r.ID != "" && r.ID == other.ID {
		return true
	}
	return r.ClientSideID != "" && r.ClientSideID == other.ClientSideID
}

// Clone returns a deep copy, so that the copy can be handed to another
// goroutine while the original keeps being edited.
func (r Record) Clone() Record {
	out := r
	if r.Content != nil {
		out.Content = deepcopy.Copy(r.Content).(Content)
	}
	if r.LastUpdated != nil {
		t := *r.LastUpdated
		out.LastUpdated = &t
	}
	return out
}

// CloneRecords deep-copies a record list.
func CloneRecords(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// UpsertRecord inserts r into records or replaces the entry describing the
// same record. The returned slice may share memory with records.
func UpsertRecord(records []Record, r Record) []Record {
	for i := range records {
		if records[i].SameAs(r) {
			records[i] = r
			return records
		}
	}
	return append(records, r)
}

// RemoveRecord drops every entry describing the record with the given
// server or client side id.
func RemoveRecord(records []Record, id string) []Record {
	out := records[:0]
	for _, r := range records {
		if r.ID == id || r.ClientSideID == id {
			continue
		}
		out = append(out, r)
	}
	return out
}
