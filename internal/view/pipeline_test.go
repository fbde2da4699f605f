package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewdeck/video-dashboard-go/internal/models"
)

func testSortKeys() SortKeys[models.Video] {
	return SortKeys[models.Video]{
		SortViews:   {Number: func(v models.Video) float64 { return float64(v.ViewCount) }},
		SortCreated: {Number: func(v models.Video) float64 { return float64(v.CreatedAt) }},
		SortTitle:   {Text: func(v models.Video) string { return v.Title }},
	}
}

func TestPipeline_DefaultSortPreservesInputOrder(t *testing.T) {
	p := NewPipeline(testSchema(), testSortKeys())
	records := []models.Video{
		{ID: "c", Title: "cat three", ViewCount: 10},
		{ID: "a", Title: "cat one", ViewCount: 30},
		{ID: "dog", Title: "dog", ViewCount: 20},
		{ID: "b", Title: "cat two", ViewCount: 20},
	}
	predicates := []Predicate{{Type: "title", Operator: OpContains, Value: "cat"}}

	// Filtering under the default sort never re-sorts survivors.
	got := p.Apply(records, predicates, SortDefault)
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, "b", got[2].ID)
}

func TestPipeline_ViewsSortDescendingStable(t *testing.T) {
	p := NewPipeline(testSchema(), testSortKeys())
	records := []models.Video{
		{ID: "a", ViewCount: 100},
		{ID: "b", ViewCount: 300},
		{ID: "c", ViewCount: 100},
	}

	got := p.Apply(records, nil, SortViews)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].ID)
	// Ties keep their input position.
	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, "c", got[2].ID)
}

func TestPipeline_TitleSortAscending(t *testing.T) {
	p := NewPipeline(testSchema(), testSortKeys())
	records := []models.Video{
		{ID: "1", Title: "zebra"},
		{ID: "2", Title: "Apple"},
		{ID: "3", Title: "mango"},
	}

	got := p.Apply(records, nil, SortTitle)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
	assert.Equal(t, "1", got[2].ID)
}

func TestPipeline_UnknownDirectiveKeepsOrder(t *testing.T) {
	p := NewPipeline(testSchema(), testSortKeys())
	records := []models.Video{
		{ID: "b", ViewCount: 1},
		{ID: "a", ViewCount: 2},
	}

	got := p.Apply(records, nil, SortDirective("bogus"))
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}

func TestPipeline_Reorderable(t *testing.T) {
	p := NewPipeline(testSchema(), testSortKeys())
	search := []Predicate{{Type: "title", Operator: OpContains, Value: "cat"}}
	numeric := []Predicate{{Type: "views", Operator: OpGTE, Value: 100}}

	tests := []struct {
		name       string
		predicates []Predicate
		sort       SortDirective
		want       bool
	}{
		{"default sort, no search", nil, SortDefault, true},
		{"default sort, search active", search, SortDefault, false},
		{"custom sort, no search", nil, SortViews, false},
		{"custom sort, search active", search, SortViews, false},
		{"numeric filter does not block reordering", numeric, SortDefault, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Reorderable(tt.predicates, tt.sort))
		})
	}
}
