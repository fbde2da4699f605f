package view

import (
	"sort"
	"strings"
)

// SortDirective names the comparator applied to a view. SortDefault
// keeps the resolved manual order untouched.
type SortDirective string

const (
	SortDefault SortDirective = "default"
	SortViews   SortDirective = "views"
	SortCreated SortDirective = "created"
	SortUpdated SortDirective = "updated"
	SortTitle   SortDirective = "title"
)

// SortKey extracts the sort key for one directive. Numeric keys sort
// descending (most views / newest first), text keys ascending.
type SortKey[T any] struct {
	Number func(T) float64
	Text   func(T) string
}

// SortKeys maps directives to their key extractors for one view.
type SortKeys[T any] map[SortDirective]SortKey[T]

func sortRecords[T any](records []T, key SortKey[T]) []T {
	out := make([]T, len(records))
	copy(out, records)

	// Stable: ties keep the position they had in the resolved order.
	switch {
	case key.Number != nil:
		sort.SliceStable(out, func(i, j int) bool {
			return key.Number(out[i]) > key.Number(out[j])
		})
	case key.Text != nil:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(key.Text(out[i])) < strings.ToLower(key.Text(out[j]))
		})
	}
	return out
}
