package source

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is an in-process document store implementing both Source and
// Sink. Sink writes loop back as fresh snapshots, which gives tests
// and the dev server the same write-then-push behavior as the real
// backend.
type Memory struct {
	mu          sync.Mutex
	collections map[string][]map[string]any
	subs        map[string][]*memorySub
}

type memorySub struct {
	ch   chan Snapshot
	done <-chan struct{}
}

// NewMemory creates an empty in-memory document store.
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string][]map[string]any),
		subs:        make(map[string][]*memorySub),
	}
}

// Subscribe registers for snapshots of the collection. The current
// state is delivered immediately.
func (m *Memory) Subscribe(ctx context.Context, collection string) (<-chan Snapshot, error) {
	sub := &memorySub{
		ch:   make(chan Snapshot, 16),
		done: ctx.Done(),
	}

	m.mu.Lock()
	m.subs[collection] = append(m.subs[collection], sub)
	snap := m.snapshotLocked(collection)
	m.mu.Unlock()

	sub.ch <- snap

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		subs := m.subs[collection]
		for i, s := range subs {
			if s == sub {
				m.subs[collection] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		m.mu.Unlock()
		close(sub.ch)
	}()

	return sub.ch, nil
}

// WriteDocument upserts a document and pushes the new snapshot to all
// subscribers of the collection.
func (m *Memory) WriteDocument(_ context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	docs := m.collections[collection]
	replaced := false
	for i, doc := range docs {
		if docID, _ := doc["id"].(string); docID == id {
			docs[i] = fields
			replaced = true
			break
		}
	}
	if !replaced {
		docs = append(docs, fields)
	}
	m.collections[collection] = docs
	m.broadcastLocked(collection)
	m.mu.Unlock()
	return nil
}

// DeleteDocument removes a document and pushes the new snapshot.
func (m *Memory) DeleteDocument(_ context.Context, collection, id string) error {
	m.mu.Lock()
	docs := m.collections[collection]
	for i, doc := range docs {
		if docID, _ := doc["id"].(string); docID == id {
			m.collections[collection] = append(docs[:i], docs[i+1:]...)
			break
		}
	}
	m.broadcastLocked(collection)
	m.mu.Unlock()
	return nil
}

// Push replaces the collection with the given documents and notifies
// subscribers, simulating an authoritative backend snapshot. Malformed
// documents pass through untouched; dropping them is the record
// store's job, not the transport's.
func (m *Memory) Push(collection string, docs ...map[string]any) {
	m.mu.Lock()
	m.collections[collection] = append([]map[string]any(nil), docs...)
	m.broadcastLocked(collection)
	m.mu.Unlock()
}

func (m *Memory) snapshotLocked(collection string) Snapshot {
	docs := m.collections[collection]
	snap := make(Snapshot, 0, len(docs))
	for _, fields := range docs {
		raw, err := json.Marshal(fields)
		if err != nil {
			continue
		}
		snap = append(snap, raw)
	}
	return snap
}

func (m *Memory) broadcastLocked(collection string) {
	snap := m.snapshotLocked(collection)
	for _, sub := range m.subs[collection] {
		select {
		case <-sub.done:
		case sub.ch <- snap:
		default:
			// Subscriber is saturated; it will catch up on the next push.
		}
	}
}
