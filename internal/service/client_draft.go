package service

import (
	"sync"

	"github.com/MKhiriev/go-plan-keeper/models"
)

// Draft holds the live, UI-owned copy of the open record. The UI edits it
// through Update; the coordinator only reads snapshots and writes back a
// promoted id.
type Draft struct {
	mu     sync.RWMutex
	record *models.Record
}

// NewDraft creates a draft holding a copy of record, or no record when
// record is nil.
func NewDraft(record *models.Record) *Draft {
	d := &Draft{}
	d.set(record)
	return d
}

// Update applies fn to the open record. It returns false when no record is
// open.
func (d *Draft) Update(fn func(record *models.Record)) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.record == nil {
		return false
	}
	fn(d.record)
	return true
}

// Snapshot returns a deep copy of the open record.
func (d *Draft) Snapshot() (models.Record, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.record == nil {
		return models.Record{}, false
	}
	return d.record.Clone(), true
}

// ClientSideID returns the client side id of the open record, or "".
func (d *Draft) ClientSideID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.record == nil {
		return ""
	}
	return d.record.ClientSideID
}

func (d *Draft) set(record *models.Record) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if record == nil {
		d.record = nil
		return
	}
	r := record.Clone()
	d.record = &r
}

// promote writes id into the open record if it is still the record
// identified by clientSideID and has no id yet.
func (d *Draft) promote(clientSideID, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.record == nil || d.record.ClientSideID != clientSideID || d.record.ID != "" {
		return false
	}
	d.record.ID = id
	return true
}
