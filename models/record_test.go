package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Clone_IsDeep(t *testing.T) {
	now := time.Now()
	orig := Record{
		ClientSideID: "c1",
		Content: Content{
			"name":   "Ivanov",
			"assets": map[string]any{"cash": 10.0, "items": []any{"a", "b"}},
		},
		LastUpdated: &now,
	}

	cp := orig.Clone()
	cp.Content["name"] = "Petrov"
	cp.Content["assets"].(map[string]any)["cash"] = 99.0
	*cp.LastUpdated = now.Add(time.Hour)

	assert.Equal(t, "Ivanov", orig.Content["name"])
	assert.Equal(t, 10.0, orig.Content["assets"].(map[string]any)["cash"])
	assert.Equal(t, now, *orig.LastUpdated)
}

func TestRecord_Name(t *testing.T) {
	assert.Equal(t, "Plan", Record{Content: Content{"name": "  Plan "}}.Name())
	assert.Empty(t, Record{Content: Content{"name": 42}}.Name())
	assert.Empty(t, Record{}.Name())
}

func TestRecord_SameAs(t *testing.T) {
	a := Record{ID: "srv-1", ClientSideID: "c1"}

	assert.True(t, a.SameAs(Record{ID: "srv-1"}))
	assert.True(t, a.SameAs(Record{ClientSideID: "c1"}))
	assert.False(t, a.SameAs(Record{ID: "srv-2", ClientSideID: "c2"}))
	assert.False(t, Record{}.SameAs(Record{}))
}

func TestUpsertAndRemoveRecord(t *testing.T) {
	list := []Record{{ClientSideID: "c1"}, {ID: "s2", ClientSideID: "c2"}}

	list = UpsertRecord(list, Record{ID: "s1", ClientSideID: "c1", Content: Content{"name": "x"}})
	require.Len(t, list, 2)
	assert.Equal(t, "s1", list[0].ID)

	list = UpsertRecord(list, Record{ClientSideID: "c3"})
	require.Len(t, list, 3)

	list = RemoveRecord(list, "s2")
	require.Len(t, list, 2)
	assert.Equal(t, "c1", list[0].ClientSideID)
	assert.Equal(t, "c3", list[1].ClientSideID)
}

func TestSession_ActiveAndExpired(t *testing.T) {
	now := time.Now()
	var nilSession *Session

	assert.False(t, nilSession.Active())
	assert.True(t, nilSession.Expired(now))

	s := &Session{Status: AccountActive, AccessToken: "t", ExpiresAt: now.Add(time.Minute)}
	assert.True(t, s.Active())
	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(2*time.Minute)))

	s.Status = AccountPending
	assert.False(t, s.Active())
}
