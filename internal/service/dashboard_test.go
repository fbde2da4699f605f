package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewdeck/video-dashboard-go/internal/models"
	"github.com/viewdeck/video-dashboard-go/internal/source"
	"github.com/viewdeck/video-dashboard-go/internal/view"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

// newTestDashboard splits source and sink so tests control exactly
// which snapshots the dashboard sees: pushes to src are the only
// authoritative inputs, writes drain into sink without looping back.
func newTestDashboard(t *testing.T) (*Dashboard, *source.Memory) {
	t.Helper()

	src := source.NewMemory()
	sink := source.NewMemory()
	d := NewDashboard(src, sink)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Start(ctx))

	t.Cleanup(func() {
		cancel()
		d.Close()
	})
	return d, src
}

func videoDoc(id string, title string, createdAt int64, views int64) map[string]any {
	return map[string]any{
		"id":        id,
		"title":     title,
		"createdAt": createdAt,
		"viewCount": views,
	}
}

func TestDashboard_SnapshotFeedsVideoView(t *testing.T) {
	d, src := newTestDashboard(t)

	src.Push(models.CollectionVideos,
		videoDoc("a", "first", 100, 10),
		videoDoc("b", "second", 200, 20),
	)

	require.Eventually(t, func() bool {
		items, _ := d.VideoView(nil, view.SortDefault)
		return len(items) == 2
	}, waitFor, tick)

	// No persisted order: newest surfaces first.
	items, reorderable := d.VideoView(nil, view.SortDefault)
	assert.True(t, reorderable)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "a", items[1].ID)
}

func TestDashboard_OrderingSnapshotApplies(t *testing.T) {
	d, src := newTestDashboard(t)

	src.Push(models.CollectionVideos,
		videoDoc("a", "first", 100, 10),
		videoDoc("b", "second", 200, 20),
	)
	src.Push(models.CollectionOrderings, map[string]any{
		"id":  models.CollectionVideos,
		"ids": []string{"a", "b"},
	})

	require.Eventually(t, func() bool {
		items, _ := d.VideoView(nil, view.SortDefault)
		return len(items) == 2 && items[0].ID == "a"
	}, waitFor, tick)
}

func TestDashboard_AddVideoSurfacesFirst(t *testing.T) {
	d, src := newTestDashboard(t)

	src.Push(models.CollectionVideos, videoDoc("old", "old", 100, 1))
	src.Push(models.CollectionOrderings, map[string]any{
		"id":  models.CollectionVideos,
		"ids": []string{"old"},
	})
	require.Eventually(t, func() bool {
		items, _ := d.VideoView(nil, view.SortDefault)
		return len(items) == 1
	}, waitFor, tick)

	added := models.NewVideo("fresh", "someone")
	d.AddVideo(added)

	items, _ := d.VideoView(nil, view.SortDefault)
	require.Len(t, items, 2)
	assert.Equal(t, added.ID, items[0].ID)
}

func TestDashboard_ContradictingSnapshotWins(t *testing.T) {
	d, src := newTestDashboard(t)

	src.Push(models.CollectionVideos, videoDoc("a", "kept", 100, 1))
	require.Eventually(t, func() bool {
		items, _ := d.VideoView(nil, view.SortDefault)
		return len(items) == 1
	}, waitFor, tick)

	added := models.NewVideo("optimistic", "me")
	d.AddVideo(added)
	items, _ := d.VideoView(nil, view.SortDefault)
	require.Len(t, items, 2)

	// The backend never acknowledged the add: its next snapshot does
	// not include the record, and that snapshot is authoritative.
	src.Push(models.CollectionVideos, videoDoc("a", "kept", 100, 1))

	require.Eventually(t, func() bool {
		items, _ := d.VideoView(nil, view.SortDefault)
		return len(items) == 1 && items[0].ID == "a"
	}, waitFor, tick)
}

func TestDashboard_ReorderRefusedInFilteredView(t *testing.T) {
	d, src := newTestDashboard(t)

	src.Push(models.CollectionVideos,
		videoDoc("a", "cat one", 300, 1),
		videoDoc("b", "dog", 200, 2),
		videoDoc("c", "cat two", 100, 3),
	)
	require.Eventually(t, func() bool {
		items, _ := d.VideoView(nil, view.SortDefault)
		return len(items) == 3
	}, waitFor, tick)

	search := []view.Predicate{{Type: "search", Operator: view.OpContains, Value: "cat"}}

	_, reorderable := d.VideoView(search, view.SortDefault)
	assert.False(t, reorderable)

	err := d.ReorderVideos("c", "a", search, view.SortDefault)
	assert.ErrorIs(t, err, ErrNotReorderable)

	err = d.ReorderVideos("c", "a", nil, view.SortViews)
	assert.ErrorIs(t, err, ErrNotReorderable)

	// Unfiltered default view: the move goes through and is computed
	// against the complete order.
	err = d.ReorderVideos("c", "a", nil, view.SortDefault)
	require.NoError(t, err)
	items, _ := d.VideoView(nil, view.SortDefault)
	assert.Equal(t, "c", items[0].ID)
}

func TestDashboard_RemoveVideoScrubsPlaylists(t *testing.T) {
	d, src := newTestDashboard(t)

	src.Push(models.CollectionVideos,
		videoDoc("v1", "one", 100, 1),
		videoDoc("v2", "two", 200, 2),
	)
	src.Push(models.CollectionPlaylists,
		map[string]any{
			"id":        "p1",
			"name":      "mixed",
			"videoIds":  []string{"v1", "v2"},
			"createdAt": 50,
		},
		map[string]any{
			"id":        "p2",
			"name":      "other",
			"videoIds":  []string{"v2"},
			"createdAt": 60,
		},
	)
	require.Eventually(t, func() bool {
		items, _ := d.PlaylistView(nil, view.SortDefault)
		return len(items) == 2
	}, waitFor, tick)

	d.RemoveVideo("v1")

	items, _ := d.VideoView(nil, view.SortDefault)
	require.Len(t, items, 1)

	playlists, _ := d.PlaylistView(nil, view.SortDefault)
	for _, pl := range playlists {
		assert.False(t, pl.Contains("v1"), "playlist %s should no longer reference v1", pl.ID)
	}
	// The untouched playlist keeps its other reference.
	videos, err := d.PlaylistVideos("p2")
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "v2", videos[0].ID)
}

func TestDashboard_PlaylistMembership(t *testing.T) {
	d, src := newTestDashboard(t)

	src.Push(models.CollectionVideos, videoDoc("v1", "one", 100, 1))
	src.Push(models.CollectionPlaylists, map[string]any{
		"id":        "p1",
		"name":      "list",
		"videoIds":  []string{},
		"createdAt": 50,
	})
	require.Eventually(t, func() bool {
		_, err := d.PlaylistVideos("p1")
		return err == nil
	}, waitFor, tick)

	require.NoError(t, d.AddVideoToPlaylist("p1", "v1"))
	require.NoError(t, d.AddVideoToPlaylist("p1", "v1")) // idempotent

	videos, err := d.PlaylistVideos("p1")
	require.NoError(t, err)
	require.Len(t, videos, 1)

	assert.ErrorIs(t, d.AddVideoToPlaylist("p1", "ghost"), ErrNotFound)
	assert.ErrorIs(t, d.AddVideoToPlaylist("ghost", "v1"), ErrNotFound)

	require.NoError(t, d.RemoveVideoFromPlaylist("p1", "v1"))
	videos, err = d.PlaylistVideos("p1")
	require.NoError(t, err)
	assert.Empty(t, videos)
}

func TestDashboard_SetVideoNotes(t *testing.T) {
	d, src := newTestDashboard(t)

	src.Push(models.CollectionVideos, videoDoc("v1", "one", 100, 1))
	require.Eventually(t, func() bool {
		items, _ := d.VideoView(nil, view.SortDefault)
		return len(items) == 1
	}, waitFor, tick)

	notes := []models.VideoNote{models.NewNote("great hook", "user-1")}
	require.NoError(t, d.SetVideoNotes("v1", notes))

	items, _ := d.VideoView(nil, view.SortDefault)
	require.Len(t, items[0].Notes, 1)
	assert.Equal(t, "great hook", items[0].Notes[0].Text)
	assert.NotZero(t, items[0].UpdatedAt)

	assert.ErrorIs(t, d.SetVideoNotes("ghost", notes), ErrNotFound)
}

func TestDashboard_NicheView(t *testing.T) {
	d, src := newTestDashboard(t)

	src.Push(models.CollectionNiches,
		map[string]any{"id": "n1", "name": "tech reviews", "avgViews": 1000, "createdAt": 100},
		map[string]any{"id": "n2", "name": "cooking", "avgViews": 5000, "createdAt": 200},
	)
	require.Eventually(t, func() bool {
		items, _ := d.NicheView(nil, view.SortDefault)
		return len(items) == 2
	}, waitFor, tick)

	items, _ := d.NicheView(nil, view.SortViews)
	assert.Equal(t, "n2", items[0].ID)

	filtered, _ := d.NicheView([]view.Predicate{
		{Type: "views", Operator: view.OpGTE, Value: 2000},
	}, view.SortDefault)
	require.Len(t, filtered, 1)
	assert.Equal(t, "n2", filtered[0].ID)
}
