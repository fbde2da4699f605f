package view

import (
	"strings"

	"github.com/spf13/cast"
)

// Operator selects how a predicate tests a field value.
type Operator string

const (
	OpContains Operator = "contains"
	OpEquals   Operator = "equals"
	OpGT       Operator = "gt"
	OpLT       Operator = "lt"
	OpGTE      Operator = "gte"
	OpLTE      Operator = "lte"
	OpBetween  Operator = "between"
	// OpExcludes rejects a record whose field matches any value in the
	// predicate's set: OR within the predicate, AND across predicates.
	OpExcludes Operator = "excludes"
)

// Predicate is one active filter criterion. All active predicates must
// pass for a record to stay in the view.
type Predicate struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
	Label    string   `json:"label,omitempty"`
}

// FieldKind describes the semantic type a field is compared as.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldNumber
	FieldKeyword
)

// Field extracts one filterable quantity from a record. Exactly the
// accessor matching Kind is expected to be set.
type Field[T any] struct {
	Kind     FieldKind
	Text     func(T) string
	Number   func(T) float64
	Keywords func(T) []string
}

// Schema maps a predicate Type to the field it tests. Each view
// configures a schema instead of reimplementing the pipeline.
type Schema[T any] map[string]Field[T]

// Matches reports whether the record satisfies the predicate under the
// given schema. Unknown predicate types and values that cannot be
// coerced to the field's type make the predicate never-match: one bad
// filter blanks the results, it never takes down the pipeline.
func Matches[T any](rec T, p Predicate, schema Schema[T]) bool {
	field, ok := schema[p.Type]
	if !ok {
		return false
	}

	switch field.Kind {
	case FieldText:
		return matchText(field.Text(rec), p)
	case FieldNumber:
		return matchNumber(field.Number(rec), p)
	case FieldKeyword:
		return matchKeywords(field.Keywords(rec), p)
	default:
		return false
	}
}

// Filter returns the records satisfying every predicate, preserving
// input order.
func Filter[T any](records []T, predicates []Predicate, schema Schema[T]) []T {
	if len(predicates) == 0 {
		return records
	}

	out := make([]T, 0, len(records))
	for _, rec := range records {
		keep := true
		for _, p := range predicates {
			if !Matches(rec, p, schema) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, rec)
		}
	}
	return out
}

// HasTextSearch reports whether any predicate is a substring search on
// a text field. Manual reordering is disabled while one is active.
func HasTextSearch[T any](predicates []Predicate, schema Schema[T]) bool {
	for _, p := range predicates {
		if p.Operator != OpContains {
			continue
		}
		if field, ok := schema[p.Type]; ok && field.Kind == FieldText {
			return true
		}
	}
	return false
}

func matchText(got string, p Predicate) bool {
	switch p.Operator {
	case OpContains:
		want, err := cast.ToStringE(p.Value)
		if err != nil {
			return false
		}
		return strings.Contains(strings.ToLower(got), strings.ToLower(want))
	case OpEquals:
		want, err := cast.ToStringE(p.Value)
		if err != nil {
			return false
		}
		return strings.EqualFold(got, want)
	case OpExcludes:
		excluded, err := cast.ToStringSliceE(p.Value)
		if err != nil {
			return false
		}
		for _, v := range excluded {
			if strings.EqualFold(got, v) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func matchNumber(got float64, p Predicate) bool {
	switch p.Operator {
	case OpBetween:
		bounds, err := cast.ToSliceE(p.Value)
		if err != nil || len(bounds) != 2 {
			return false
		}
		min, errMin := cast.ToFloat64E(bounds[0])
		max, errMax := cast.ToFloat64E(bounds[1])
		if errMin != nil || errMax != nil {
			return false
		}
		return got >= min && got <= max
	case OpEquals, OpGT, OpLT, OpGTE, OpLTE:
		want, err := cast.ToFloat64E(p.Value)
		if err != nil {
			return false
		}
		switch p.Operator {
		case OpEquals:
			return got == want
		case OpGT:
			return got > want
		case OpLT:
			return got < want
		case OpGTE:
			return got >= want
		default:
			return got <= want
		}
	default:
		return false
	}
}

func matchKeywords(got []string, p Predicate) bool {
	switch p.Operator {
	case OpContains:
		want, err := cast.ToStringE(p.Value)
		if err != nil {
			return false
		}
		for _, v := range got {
			if strings.EqualFold(v, want) {
				return true
			}
		}
		return false
	case OpExcludes:
		excluded, err := cast.ToStringSliceE(p.Value)
		if err != nil {
			return false
		}
		for _, v := range got {
			for _, e := range excluded {
				if strings.EqualFold(v, e) {
					return false
				}
			}
		}
		return true
	default:
		return false
	}
}
