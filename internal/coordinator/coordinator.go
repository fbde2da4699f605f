// Package coordinator applies user mutations optimistically to local
// state and streams the corresponding document writes to the sink in
// the background.
//
// Local state changes synchronously under one mutex, so every mutation
// reads the most recent local state: two rapid reorders compose
// instead of the second one being computed from a stale base. Sink
// writes are fire-and-forget but drain through a single goroutine, so
// writes to the same logical document never interleave out of order.
package coordinator

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/viewdeck/video-dashboard-go/internal/metrics"
	"github.com/viewdeck/video-dashboard-go/internal/models"
	"github.com/viewdeck/video-dashboard-go/internal/source"
	"github.com/viewdeck/video-dashboard-go/internal/store"
	"github.com/viewdeck/video-dashboard-go/internal/view"
	"github.com/viewdeck/video-dashboard-go/pkg/logger"
)

const writeQueueSize = 256

type writeOp struct {
	collection string
	id         string
	fields     map[string]any
	delete     bool
}

// Coordinator owns the mutations of one collection and its view order.
// All writes to the store and the persisted order list go through it.
type Coordinator[T models.Record] struct {
	collection string
	orderKey   string
	store      *store.Store[T]
	sink       source.Sink
	log        *zap.Logger

	mu        sync.Mutex
	orderList []string
	closed    bool

	writes chan writeOp
	wg     sync.WaitGroup
}

// New creates a coordinator for the given collection. orderKey is the
// id of the ordering document this view persists its manual order
// under.
func New[T models.Record](collection, orderKey string, st *store.Store[T], sink source.Sink) *Coordinator[T] {
	c := &Coordinator[T]{
		collection: collection,
		orderKey:   orderKey,
		store:      st,
		sink:       sink,
		log:        logger.Named("coordinator").With(zap.String("collection", collection)),
		writes:     make(chan writeOp, writeQueueSize),
	}

	c.wg.Add(1)
	go c.drainWrites()

	return c
}

// Close stops accepting mutations and waits for queued sink writes to
// finish. In-flight writes complete even though no further optimistic
// updates are applied.
func (c *Coordinator[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.writes)
	c.mu.Unlock()

	c.wg.Wait()
}

// SetOrder replaces the local order list with the authoritative one
// from a subscription snapshot. The snapshot always wins.
func (c *Coordinator[T]) SetOrder(ids []string) {
	c.mu.Lock()
	c.orderList = append([]string(nil), ids...)
	c.mu.Unlock()
}

// Order returns a copy of the current order list.
func (c *Coordinator[T]) Order() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.orderList...)
}

// Reorder moves movedID to targetID's position. The move is computed
// against the complete merged order (persisted list plus records not
// yet in it), never a filtered subset. Stale ids make the whole
// mutation a no-op. Returns whether the reorder was applied.
func (c *Coordinator[T]) Reorder(movedID, targetID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}

	full := view.ResolveOrderIDs(c.store.GetAll(), c.orderList)
	oldIndex := indexOf(full, movedID)
	newIndex := indexOf(full, targetID)
	if oldIndex < 0 || newIndex < 0 || oldIndex == newIndex {
		if oldIndex < 0 || newIndex < 0 {
			metrics.ReordersRejected.WithLabelValues(c.collection, "stale_target").Inc()
			c.log.Debug("reorder target not in current state, ignoring",
				zap.String("movedId", movedID),
				zap.String("targetId", targetID),
			)
		}
		return false
	}

	moved := full[oldIndex]
	full = append(full[:oldIndex], full[oldIndex+1:]...)
	full = append(full[:newIndex], append([]string{moved}, full[newIndex:]...)...)

	c.orderList = full
	c.persistOrderLocked()
	return true
}

// Add inserts the record optimistically and prepends its id to the
// order list, surfacing it at the top of the view. Returns false if
// the coordinator is closed or the record has no id.
func (c *Coordinator[T]) Add(rec T) bool {
	id := rec.RecordID()
	if id == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}

	c.store.Put(rec)
	c.orderList = append([]string{id}, removeID(c.orderList, id)...)
	c.enqueueWriteLocked(rec)
	c.persistOrderLocked()
	return true
}

// Update replaces the record optimistically and persists it. The order
// list is untouched.
func (c *Coordinator[T]) Update(rec T) bool {
	if rec.RecordID() == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}

	c.store.Put(rec)
	c.enqueueWriteLocked(rec)
	return true
}

// Remove deletes the record optimistically and scrubs its id from the
// order list.
func (c *Coordinator[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}

	c.store.Remove(id)
	c.orderList = removeID(c.orderList, id)
	c.enqueue(writeOp{collection: c.collection, id: id, delete: true})
	c.persistOrderLocked()
	return true
}

func (c *Coordinator[T]) enqueueWriteLocked(rec T) {
	fields, err := source.Fields(rec)
	if err != nil {
		metrics.SinkWrites.WithLabelValues(c.collection, "error").Inc()
		c.log.Error("failed to encode record for persistence",
			zap.String("id", rec.RecordID()),
			zap.Error(err),
		)
		return
	}
	c.enqueue(writeOp{collection: c.collection, id: rec.RecordID(), fields: fields})
}

func (c *Coordinator[T]) persistOrderLocked() {
	ordering := models.Ordering{
		ID:        c.orderKey,
		IDs:       append([]string(nil), c.orderList...),
		UpdatedAt: models.NowMillis(),
	}
	fields, err := source.Fields(ordering)
	if err != nil {
		metrics.SinkWrites.WithLabelValues(models.CollectionOrderings, "error").Inc()
		c.log.Error("failed to encode order list for persistence", zap.Error(err))
		return
	}
	c.enqueue(writeOp{collection: models.CollectionOrderings, id: c.orderKey, fields: fields})
}

func (c *Coordinator[T]) enqueue(op writeOp) {
	select {
	case c.writes <- op:
	default:
		// The sink is far behind; drop the write and let the next
		// authoritative snapshot reconcile local state.
		metrics.SinkWrites.WithLabelValues(op.collection, "dropped").Inc()
		c.log.Warn("write queue full, dropping write",
			zap.String("id", op.id),
		)
	}
}

func (c *Coordinator[T]) drainWrites() {
	defer c.wg.Done()

	// Writes are not tied to any caller lifetime.
	ctx := context.Background()
	for op := range c.writes {
		var err error
		if op.delete {
			err = c.sink.DeleteDocument(ctx, op.collection, op.id)
		} else {
			err = c.sink.WriteDocument(ctx, op.collection, op.id, op.fields)
		}
		if err != nil {
			// Never retried: the backend is the system of record and the
			// next snapshot corrects any divergence.
			metrics.SinkWrites.WithLabelValues(op.collection, "error").Inc()
			c.log.Warn("sink write failed",
				zap.String("writeCollection", op.collection),
				zap.String("id", op.id),
				zap.Error(err),
			)
			continue
		}
		metrics.SinkWrites.WithLabelValues(op.collection, "ok").Inc()
	}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
