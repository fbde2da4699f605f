package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewdeck/video-dashboard-go/internal/models"
)

func ids(videos []models.Video) []string {
	out := make([]string, len(videos))
	for i, v := range videos {
		out[i] = v.ID
	}
	return out
}

func TestResolveOrder_Deterministic(t *testing.T) {
	records := []models.Video{
		{ID: "a", CreatedAt: 100},
		{ID: "b", CreatedAt: 200},
		{ID: "c", CreatedAt: 200},
		{ID: "d", CreatedAt: 50},
	}
	orderList := []string{"d", "missing", "a"}

	first := ResolveOrder(records, orderList)
	second := ResolveOrder(records, orderList)
	assert.Equal(t, ids(first), ids(second))
}

func TestResolveOrder_Completeness(t *testing.T) {
	records := []models.Video{
		{ID: "a", CreatedAt: 100},
		{ID: "b", CreatedAt: 200},
		{ID: "c", CreatedAt: 300},
	}
	// Dangling ids produce no phantom entries; records absent from the
	// list still appear.
	orderList := []string{"ghost", "c", "ghost2", "a"}

	got := ResolveOrder(records, orderList)
	require.Len(t, got, 3)

	seen := map[string]int{}
	for _, v := range got {
		seen[v.ID]++
	}
	for _, id := range []string{"a", "b", "c"} {
		assert.Equal(t, 1, seen[id], "record %s should appear exactly once", id)
	}
}

func TestResolveOrder_FallbackIsNewestFirst(t *testing.T) {
	records := []models.Video{
		{ID: "a", CreatedAt: 100},
		{ID: "b", CreatedAt: 200},
	}

	got := ResolveOrder(records, nil)
	assert.Equal(t, []string{"b", "a"}, ids(got))
}

func TestResolveOrder_UnorderedRecordsComeFirst(t *testing.T) {
	records := []models.Video{
		{ID: "a", CreatedAt: 100},
		{ID: "b", CreatedAt: 200},
		{ID: "c", CreatedAt: 50},
	}
	orderList := []string{"a", "c"}

	// b is not in the order list, so it surfaces at the top; the
	// explicit order of a and c is preserved after it.
	got := ResolveOrder(records, orderList)
	assert.Equal(t, []string{"b", "a", "c"}, ids(got))
}

func TestResolveOrder_TiesKeepSnapshotPosition(t *testing.T) {
	records := []models.Video{
		{ID: "x", CreatedAt: 100},
		{ID: "y", CreatedAt: 100},
		{ID: "z", CreatedAt: 100},
	}

	got := ResolveOrder(records, nil)
	assert.Equal(t, []string{"x", "y", "z"}, ids(got))
}

func TestResolveOrder_EmptyRecords(t *testing.T) {
	got := ResolveOrder[models.Video](nil, []string{"a", "b"})
	assert.Empty(t, got)
}

func TestResolveOrder_DuplicateOrderEntries(t *testing.T) {
	records := []models.Video{
		{ID: "a", CreatedAt: 100},
		{ID: "b", CreatedAt: 200},
	}

	got := ResolveOrder(records, []string{"a", "a", "b"})
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestResolveOrderIDs(t *testing.T) {
	records := []models.Video{
		{ID: "a", CreatedAt: 100},
		{ID: "b", CreatedAt: 200},
		{ID: "c", CreatedAt: 50},
	}

	got := ResolveOrderIDs(records, []string{"a", "c"})
	assert.Equal(t, []string{"b", "a", "c"}, got)
}
