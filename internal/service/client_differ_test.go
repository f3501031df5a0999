package service

import (
	"testing"
	"time"

	"github.com/MKhiriev/go-plan-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() models.Record {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return models.Record{
		ID:           "srv-1",
		ClientSideID: "c-1",
		OwnerID:      7,
		Content: models.Content{
			"name": "Ivanov",
			"cashflow": map[string]any{
				"income":    []any{1000.0, 2500.5},
				"updatedAt": "2026-01-01",
			},
			"lastUpdated": "2026-01-01T10:00:00Z",
		},
		LastUpdated: &at,
	}
}

func TestSnapshotDiffer_IgnoresVolatileFields(t *testing.T) {
	d := NewSnapshotDiffer()
	a := sampleRecord()

	b := a.Clone()
	later := a.LastUpdated.Add(time.Hour)
	b.LastUpdated = &later
	b.Content["lastUpdated"] = "2026-05-05T00:00:00Z"
	b.Content["cashflow"].(map[string]any)["updatedAt"] = "2026-05-05"

	assert.False(t, d.ShouldPersist(b, a))
	assert.False(t, d.ShouldPersist(a, a))
}

func TestSnapshotDiffer_DetectsOneFieldChange(t *testing.T) {
	d := NewSnapshotDiffer()
	a := sampleRecord()

	cases := map[string]func(r *models.Record){
		"top level":      func(r *models.Record) { r.Content["name"] = "Petrov" },
		"nested value":   func(r *models.Record) { r.Content["cashflow"].(map[string]any)["income"].([]any)[1] = 2600.0 },
		"added key":      func(r *models.Record) { r.Content["notes"] = "" },
		"removed key":    func(r *models.Record) { delete(r.Content, "cashflow") },
		"promoted id":    func(r *models.Record) { r.ID = "srv-2" },
		"value type":     func(r *models.Record) { r.Content["name"] = []any{"Ivanov"} },
		"nil vs missing": func(r *models.Record) { r.Content["extra"] = nil },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			b := a.Clone()
			mutate(&b)
			assert.True(t, d.ShouldPersist(b, a))
		})
	}
}

func TestSnapshotDiffer_EmptyBaseline(t *testing.T) {
	d := NewSnapshotDiffer()

	assert.True(t, d.ShouldPersist(sampleRecord(), models.Record{}))
	assert.False(t, d.ShouldPersist(models.Record{}, models.Record{}))
}

func TestSnapshotDiffer_FingerprintIsStable(t *testing.T) {
	d := NewSnapshotDiffer()

	// same content built in a different order and with typed values
	a := models.Record{ClientSideID: "c", Content: models.Content{"a": 1, "b": []string{"x", "<y>"}}}
	b := models.Record{ClientSideID: "c", Content: models.Content{"b": []any{"x", "<y>"}, "a": 1.0}}

	fa, err := d.Fingerprint(a)
	require.NoError(t, err)
	fb, err := d.Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
	assert.Len(t, fa, 64)
}

func TestSnapshotDiffer_UnicodeNormalization(t *testing.T) {
	d := NewSnapshotDiffer()

	composed := models.Record{ClientSideID: "c", Content: models.Content{"name": "Jos\u00e9"}}
	decomposed := models.Record{ClientSideID: "c", Content: models.Content{"name": "Jose\u0301"}}

	assert.False(t, d.ShouldPersist(composed, decomposed))
}

func TestSnapshotDiffer_CustomVolatileKeys(t *testing.T) {
	d := NewSnapshotDiffer("touched")

	a := models.Record{ClientSideID: "c", Content: models.Content{"name": "x", "touched": 1}}
	b := models.Record{ClientSideID: "c", Content: models.Content{"name": "x", "touched": 2}}
	assert.False(t, d.ShouldPersist(a, b))

	// default keys are no longer volatile
	c := models.Record{ClientSideID: "c", Content: models.Content{"name": "x", "touched": 1, "updatedAt": "now"}}
	assert.True(t, d.ShouldPersist(c, a))
}

func TestSnapshotDiffer_UnencodableContent(t *testing.T) {
	d := NewSnapshotDiffer()

	bad := models.Record{ClientSideID: "c", Content: models.Content{"fn": func() {}}}
	_, err := d.Fingerprint(bad)
	assert.Error(t, err)
	assert.True(t, d.ShouldPersist(bad, sampleRecord()))
}
