// Package view derives the list a dashboard view renders: it resolves
// the persisted manual order against the current records, applies the
// active filter predicates, and applies the selected sort.
package view

import (
	"sort"

	"github.com/viewdeck/video-dashboard-go/internal/models"
)

// ResolveOrder produces the total order for a view from the current
// records and the persisted order list.
//
// Records named by orderList keep that explicit order. Records the
// list does not know about yet are sorted newest-first and placed
// ahead of the explicitly ordered tail, so newly added items surface
// at the top of the view. Ids in orderList that no longer resolve to
// a record are skipped.
func ResolveOrder[T models.Record](records []T, orderList []string) []T {
	if len(records) == 0 {
		return nil
	}

	byID := make(map[string]int, len(records))
	for i, rec := range records {
		byID[rec.RecordID()] = i
	}

	ordered := make([]T, 0, len(records))
	seen := make(map[string]bool, len(orderList))
	for _, id := range orderList {
		if seen[id] {
			continue
		}
		seen[id] = true
		if i, ok := byID[id]; ok {
			ordered = append(ordered, records[i])
		}
	}

	unordered := make([]T, 0, len(records)-len(ordered))
	for _, rec := range records {
		if !seen[rec.RecordID()] {
			unordered = append(unordered, rec)
		}
	}
	// Stable: equal createdAt keeps original snapshot position.
	sort.SliceStable(unordered, func(i, j int) bool {
		return unordered[i].CreatedMillis() > unordered[j].CreatedMillis()
	})

	return append(unordered, ordered...)
}

// ResolveOrderIDs returns the resolved order as an id list. Reorder
// mutations are computed against this merged full-state list, never
// against a filtered or re-sorted view.
func ResolveOrderIDs[T models.Record](records []T, orderList []string) []string {
	resolved := ResolveOrder(records, orderList)
	ids := make([]string, len(resolved))
	for i, rec := range resolved {
		ids[i] = rec.RecordID()
	}
	return ids
}
