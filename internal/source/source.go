// Package source defines the boundary to the backing document store:
// a push-based snapshot subscription and an asynchronous write sink.
// The core is written against these interfaces so it runs unchanged on
// the in-memory fake, the Postgres document store, or an AMQP feed.
package source

import (
	"context"
	"encoding/json"
)

// Snapshot is the full current state of one collection. The backend
// never sends deltas; every push replaces everything.
type Snapshot []json.RawMessage

// Source delivers full-state snapshots for a collection whenever the
// backend's state changes. The returned channel is closed when ctx is
// cancelled.
type Source interface {
	Subscribe(ctx context.Context, collection string) (<-chan Snapshot, error)
}

// Sink persists documents. Writes are at-least-once and may fail; the
// core never retries — the next authoritative snapshot corrects any
// divergence.
type Sink interface {
	WriteDocument(ctx context.Context, collection, id string, fields map[string]any) error
	DeleteDocument(ctx context.Context, collection, id string) error
}

// Fields flattens a document value into the map shape the sink writes.
func Fields(doc any) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
