package view

import "github.com/viewdeck/video-dashboard-go/internal/models"

// Pipeline reduces an order-resolved record list to what one view
// renders. A pipeline is configured once per record type with a field
// schema and sort keys; the entity views share this implementation
// instead of carrying their own copies of the filter logic.
type Pipeline[T models.Record] struct {
	schema   Schema[T]
	sortKeys SortKeys[T]
}

// NewPipeline creates a pipeline over the given schema and sort keys.
func NewPipeline[T models.Record](schema Schema[T], sortKeys SortKeys[T]) *Pipeline[T] {
	return &Pipeline[T]{
		schema:   schema,
		sortKeys: sortKeys,
	}
}

// Apply filters the records with AND semantics across predicates and
// then sorts them per the directive. SortDefault and unknown
// directives keep the input order as-is; filtering is order-stable
// either way.
func (p *Pipeline[T]) Apply(records []T, predicates []Predicate, directive SortDirective) []T {
	filtered := Filter(records, predicates, p.schema)

	if directive == SortDefault {
		return filtered
	}
	key, ok := p.sortKeys[directive]
	if !ok {
		return filtered
	}
	return sortRecords(filtered, key)
}

// Reorderable reports whether drag-reordering may mutate the persisted
// order in the current view state. Only the default sort with no text
// search qualifies: indices in a filtered or re-sorted view do not
// correspond to the true order, so persisting a reorder computed from
// one would corrupt it.
func (p *Pipeline[T]) Reorderable(predicates []Predicate, directive SortDirective) bool {
	return directive == SortDefault && !HasTextSearch(predicates, p.schema)
}
