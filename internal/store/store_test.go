package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewdeck/video-dashboard-go/internal/models"
)

func TestStore_IngestReplacesContents(t *testing.T) {
	s := New[models.Video]()

	applied, dropped := s.Ingest([]models.Video{
		{ID: "a", CreatedAt: 100},
		{ID: "b", CreatedAt: 200},
	})
	require.Equal(t, 2, applied)
	require.Equal(t, 0, dropped)
	require.Equal(t, 2, s.Len())

	// A new snapshot is a full replace: records missing from it are gone.
	applied, dropped = s.Ingest([]models.Video{
		{ID: "b", CreatedAt: 200},
		{ID: "c", CreatedAt: 300},
	})
	require.Equal(t, 2, applied)
	require.Equal(t, 0, dropped)

	_, ok := s.Get("a")
	assert.False(t, ok)
	_, ok = s.Get("c")
	assert.True(t, ok)
}

func TestStore_IngestRawDropsMalformedOnly(t *testing.T) {
	s := New[models.Video]()

	snapshot := []json.RawMessage{
		[]byte(`{"id":"v1","title":"one","createdAt":1}`),
		[]byte(`{"id":"v2","title":"two","createdAt":2}`),
		[]byte(`{"id":"v3","createdAt":3}`),
		[]byte(`{"id":"v4","createdAt":4}`),
		[]byte(`{"title":"no id","createdAt":5}`),
		[]byte(`{"id":"v5","createdAt":6}`),
		[]byte(`{"id":"v6","createdAt":7}`),
		[]byte(`{"id":"v7","createdAt":8}`),
		[]byte(`{"id":"v8","createdAt":9}`),
		[]byte(`{"id":"v9","createdAt":10}`),
	}

	applied, dropped := s.IngestRaw(snapshot)
	assert.Equal(t, 9, applied)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 9, s.Len())
}

func TestStore_IngestRawDropsUndecodable(t *testing.T) {
	s := New[models.Video]()

	applied, dropped := s.IngestRaw([]json.RawMessage{
		[]byte(`{"id":"ok","createdAt":1}`),
		[]byte(`{"id":123,"createdAt":"nope"`),
	})
	assert.Equal(t, 1, applied)
	assert.Equal(t, 1, dropped)
}

func TestStore_SnapshotOverridesOptimisticState(t *testing.T) {
	s := New[models.Video]()
	s.Ingest([]models.Video{{ID: "a", CreatedAt: 100}})

	// Optimistic add, then an authoritative snapshot that does not
	// include it (simulating a failed write). The snapshot wins.
	s.Put(models.Video{ID: "optimistic", CreatedAt: 999})
	require.Equal(t, 2, s.Len())

	s.Ingest([]models.Video{{ID: "a", CreatedAt: 100}})

	_, ok := s.Get("optimistic")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestStore_GetAllKeepsSnapshotOrder(t *testing.T) {
	s := New[models.Video]()
	s.Ingest([]models.Video{
		{ID: "z", CreatedAt: 1},
		{ID: "a", CreatedAt: 2},
		{ID: "m", CreatedAt: 3},
	})

	got := s.GetAll()
	require.Len(t, got, 3)
	assert.Equal(t, "z", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, "m", got[2].ID)
}

func TestStore_PutAndRemove(t *testing.T) {
	s := New[models.Video]()

	s.Put(models.Video{ID: "a", CreatedAt: 1})
	s.Put(models.Video{ID: "a", CreatedAt: 1, Title: "updated"})
	require.Equal(t, 1, s.Len())

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "updated", got.Title)

	s.Remove("a")
	s.Remove("a") // idempotent
	assert.Equal(t, 0, s.Len())

	// Records without an id are never stored.
	s.Put(models.Video{Title: "no id"})
	assert.Equal(t, 0, s.Len())
}
