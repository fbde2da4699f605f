// Package store implements the in-memory record cache fed by the
// snapshot subscription. It is a pure cache: the backing document
// store is the system of record and every snapshot fully replaces the
// previous contents.
package store

import (
	"encoding/json"
	"sync"

	"github.com/viewdeck/video-dashboard-go/internal/models"
)

// Store holds the latest snapshot of one collection, keyed by record
// id. Reads return records in snapshot order; the order resolver
// imposes the order that is actually rendered.
type Store[T models.Record] struct {
	mu      sync.RWMutex
	records map[string]T
	keys    []string
}

// New creates an empty store.
func New[T models.Record]() *Store[T] {
	return &Store[T]{
		records: make(map[string]T),
	}
}

// Ingest replaces the full contents of the store with the given
// snapshot. Records without an id are dropped; a single malformed
// entry never blanks the rest of the snapshot. Returns the number of
// records applied and dropped.
func (s *Store[T]) Ingest(snapshot []T) (applied, dropped int) {
	records := make(map[string]T, len(snapshot))
	keys := make([]string, 0, len(snapshot))

	for _, rec := range snapshot {
		id := rec.RecordID()
		if id == "" {
			dropped++
			continue
		}
		if _, ok := records[id]; !ok {
			keys = append(keys, id)
		}
		records[id] = rec
	}

	s.mu.Lock()
	s.records = records
	s.keys = keys
	s.mu.Unlock()

	return len(keys), dropped
}

// IngestRaw decodes a raw snapshot and applies it. Entries that fail
// to decode count as dropped, same as entries without an id.
func (s *Store[T]) IngestRaw(snapshot []json.RawMessage) (applied, dropped int) {
	decoded := make([]T, 0, len(snapshot))
	for _, raw := range snapshot {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			dropped++
			continue
		}
		decoded = append(decoded, rec)
	}

	applied, d := s.Ingest(decoded)
	return applied, dropped + d
}

// Get returns the record with the given id, if present.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

// GetAll returns all current records in snapshot order. The returned
// slice is owned by the caller.
func (s *Store[T]) GetAll() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.keys))
	for _, id := range s.keys {
		out = append(out, s.records[id])
	}
	return out
}

// Put inserts or replaces a single record. Used for optimistic local
// updates; the next snapshot overwrites whatever Put wrote. Records
// without an id are ignored.
func (s *Store[T]) Put(rec T) {
	id := rec.RecordID()
	if id == "" {
		return
	}

	s.mu.Lock()
	if _, ok := s.records[id]; !ok {
		s.keys = append(s.keys, id)
	}
	s.records[id] = rec
	s.mu.Unlock()
}

// Remove deletes a single record. Missing ids are a no-op.
func (s *Store[T]) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return
	}
	delete(s.records, id)
	for i, k := range s.keys {
		if k == id {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of records currently cached.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
