// Package service wires the record stores, order resolution, filter
// pipelines and mutation coordinators into the dashboard's views.
package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/viewdeck/video-dashboard-go/internal/coordinator"
	"github.com/viewdeck/video-dashboard-go/internal/metrics"
	"github.com/viewdeck/video-dashboard-go/internal/models"
	"github.com/viewdeck/video-dashboard-go/internal/source"
	"github.com/viewdeck/video-dashboard-go/internal/store"
	"github.com/viewdeck/video-dashboard-go/internal/view"
	"github.com/viewdeck/video-dashboard-go/pkg/logger"
)

var (
	// ErrNotFound is returned when a mutation references a record that
	// is not in current state.
	ErrNotFound = errors.New("record not found")

	// ErrNotReorderable is returned when a reorder is requested while
	// the view is filtered by a text search or sorted by anything other
	// than the manual order.
	ErrNotReorderable = errors.New("view is not reorderable in its current state")
)

// Dashboard owns the local caches of every collection and exposes the
// derived view lists the UI renders. All mutations go through it so
// the read-modify-write ordering of the coordinators holds.
type Dashboard struct {
	log  *zap.Logger
	src  source.Source
	sink source.Sink

	videos    *store.Store[models.Video]
	playlists *store.Store[models.Playlist]
	channels  *store.Store[models.Channel]
	niches    *store.Store[models.Niche]
	orderings *store.Store[models.Ordering]

	videoCoord    *coordinator.Coordinator[models.Video]
	playlistCoord *coordinator.Coordinator[models.Playlist]
	nicheCoord    *coordinator.Coordinator[models.Niche]

	videoPipe    *view.Pipeline[models.Video]
	playlistPipe *view.Pipeline[models.Playlist]
	nichePipe    *view.Pipeline[models.Niche]
	channelPipe  *view.Pipeline[models.Channel]

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDashboard creates a dashboard over the given snapshot source and
// write sink.
func NewDashboard(src source.Source, sink source.Sink) *Dashboard {
	d := &Dashboard{
		log:       logger.Named("dashboard"),
		src:       src,
		sink:      sink,
		videos:    store.New[models.Video](),
		playlists: store.New[models.Playlist](),
		channels:  store.New[models.Channel](),
		niches:    store.New[models.Niche](),
		orderings: store.New[models.Ordering](),

		videoPipe:    view.NewPipeline(videoSchema(), videoSortKeys()),
		playlistPipe: view.NewPipeline(playlistSchema(), playlistSortKeys()),
		nichePipe:    view.NewPipeline(nicheSchema(), nicheSortKeys()),
		channelPipe:  view.NewPipeline(channelSchema(), channelSortKeys()),
	}

	d.videoCoord = coordinator.New(models.CollectionVideos, models.CollectionVideos, d.videos, sink)
	d.playlistCoord = coordinator.New(models.CollectionPlaylists, models.CollectionPlaylists, d.playlists, sink)
	d.nicheCoord = coordinator.New(models.CollectionNiches, models.CollectionNiches, d.niches, sink)

	return d
}

// Start subscribes every store to its collection. Snapshots are
// authoritative and overwrite optimistic state as they arrive.
func (d *Dashboard) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := runIngest(ctx, d, models.CollectionVideos, d.videos, nil); err != nil {
		return err
	}
	if err := runIngest(ctx, d, models.CollectionPlaylists, d.playlists, nil); err != nil {
		return err
	}
	if err := runIngest(ctx, d, models.CollectionChannels, d.channels, nil); err != nil {
		return err
	}
	if err := runIngest(ctx, d, models.CollectionNiches, d.niches, nil); err != nil {
		return err
	}
	return runIngest(ctx, d, models.CollectionOrderings, d.orderings, d.applyOrderings)
}

// Close stops ingesting snapshots and applying optimistic updates.
// Queued sink writes complete before Close returns.
func (d *Dashboard) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()

	d.videoCoord.Close()
	d.playlistCoord.Close()
	d.nicheCoord.Close()
}

func runIngest[T models.Record](ctx context.Context, d *Dashboard, collection string, st *store.Store[T], after func()) error {
	snapshots, err := d.src.Subscribe(ctx, collection)
	if err != nil {
		return err
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for snap := range snapshots {
			applied, dropped := st.IngestRaw(snap)
			metrics.SnapshotsIngested.WithLabelValues(collection).Inc()
			if dropped > 0 {
				metrics.RecordsDropped.WithLabelValues(collection).Add(float64(dropped))
				d.log.Warn("dropped malformed snapshot entries",
					zap.String("collection", collection),
					zap.Int("applied", applied),
					zap.Int("dropped", dropped),
				)
			}
			if after != nil {
				after()
			}
		}
	}()

	return nil
}

// applyOrderings routes freshly ingested ordering documents to the
// coordinator of the view each one orders.
func (d *Dashboard) applyOrderings() {
	if o, ok := d.orderings.Get(models.CollectionVideos); ok {
		d.videoCoord.SetOrder(o.IDs)
	}
	if o, ok := d.orderings.Get(models.CollectionPlaylists); ok {
		d.playlistCoord.SetOrder(o.IDs)
	}
	if o, ok := d.orderings.Get(models.CollectionNiches); ok {
		d.nicheCoord.SetOrder(o.IDs)
	}
}

// View reads

// VideoView returns the home grid: order-resolved, filtered and sorted
// videos plus whether drag-reordering is currently allowed.
func (d *Dashboard) VideoView(predicates []view.Predicate, sort view.SortDirective) ([]models.Video, bool) {
	ordered := view.ResolveOrder(d.videos.GetAll(), d.videoCoord.Order())
	return d.videoPipe.Apply(ordered, predicates, sort), d.videoPipe.Reorderable(predicates, sort)
}

// PlaylistView returns the playlists view.
func (d *Dashboard) PlaylistView(predicates []view.Predicate, sort view.SortDirective) ([]models.Playlist, bool) {
	ordered := view.ResolveOrder(d.playlists.GetAll(), d.playlistCoord.Order())
	return d.playlistPipe.Apply(ordered, predicates, sort), d.playlistPipe.Reorderable(predicates, sort)
}

// NicheView returns the trends view niches.
func (d *Dashboard) NicheView(predicates []view.Predicate, sort view.SortDirective) ([]models.Niche, bool) {
	ordered := view.ResolveOrder(d.niches.GetAll(), d.nicheCoord.Order())
	return d.nichePipe.Apply(ordered, predicates, sort), d.nichePipe.Reorderable(predicates, sort)
}

// ChannelView returns tracked channels, newest first. Channels carry
// no manual order so the view is never reorderable.
func (d *Dashboard) ChannelView(predicates []view.Predicate, sort view.SortDirective) []models.Channel {
	ordered := view.ResolveOrder(d.channels.GetAll(), nil)
	return d.channelPipe.Apply(ordered, predicates, sort)
}

// PlaylistVideos resolves a playlist's weak video references against
// the video store. Ids that no longer resolve are skipped.
func (d *Dashboard) PlaylistVideos(playlistID string) ([]models.Video, error) {
	pl, ok := d.playlists.Get(playlistID)
	if !ok {
		return nil, ErrNotFound
	}

	videos := make([]models.Video, 0, len(pl.VideoIDs))
	for _, id := range pl.VideoIDs {
		if v, ok := d.videos.Get(id); ok {
			videos = append(videos, v)
		}
	}
	return videos, nil
}

// Video mutations

// AddVideo inserts a video optimistically and persists it. New videos
// surface at the top of the home grid.
func (d *Dashboard) AddVideo(v models.Video) {
	d.videoCoord.Add(v)
}

// RemoveVideo deletes a video and scrubs its id from every playlist
// referencing it. All dependent updates are applied locally before
// returning, so callers never observe a dangling reference.
func (d *Dashboard) RemoveVideo(id string) {
	d.videoCoord.Remove(id)

	for _, pl := range d.playlists.GetAll() {
		if !pl.Contains(id) {
			continue
		}
		next := make([]string, 0, len(pl.VideoIDs)-1)
		for _, vid := range pl.VideoIDs {
			if vid != id {
				next = append(next, vid)
			}
		}
		pl.VideoIDs = next
		pl.UpdatedAt = models.NowMillis()
		d.playlistCoord.Update(pl)
	}
}

// SetVideoNotes replaces the notes of a video. Notes are owned by the
// parent, so the whole video document is rewritten: last writer wins
// at the video granularity.
func (d *Dashboard) SetVideoNotes(videoID string, notes []models.VideoNote) error {
	v, ok := d.videos.Get(videoID)
	if !ok {
		return ErrNotFound
	}
	v.Notes = notes
	v.UpdatedAt = models.NowMillis()
	d.videoCoord.Update(v)
	return nil
}

// ReorderVideos moves a video within the home grid's persisted order.
// The predicates and sort describe the view state the drag happened
// in; a reorder from a filtered or re-sorted view is refused outright
// because its indices do not correspond to the true order.
func (d *Dashboard) ReorderVideos(movedID, targetID string, predicates []view.Predicate, sort view.SortDirective) error {
	if !d.videoPipe.Reorderable(predicates, sort) {
		metrics.ReordersRejected.WithLabelValues(models.CollectionVideos, "not_reorderable").Inc()
		return ErrNotReorderable
	}
	d.videoCoord.Reorder(movedID, targetID)
	return nil
}

// Playlist mutations

// AddPlaylist inserts a playlist optimistically and persists it.
func (d *Dashboard) AddPlaylist(p models.Playlist) {
	d.playlistCoord.Add(p)
}

// RemovePlaylist deletes a playlist. Videos are not touched: the
// playlist held weak references only.
func (d *Dashboard) RemovePlaylist(id string) {
	d.playlistCoord.Remove(id)
}

// AddVideoToPlaylist appends a video reference to a playlist.
func (d *Dashboard) AddVideoToPlaylist(playlistID, videoID string) error {
	pl, ok := d.playlists.Get(playlistID)
	if !ok {
		return ErrNotFound
	}
	if _, ok := d.videos.Get(videoID); !ok {
		return ErrNotFound
	}
	if pl.Contains(videoID) {
		return nil
	}
	pl.VideoIDs = append(pl.VideoIDs, videoID)
	pl.UpdatedAt = models.NowMillis()
	d.playlistCoord.Update(pl)
	return nil
}

// RemoveVideoFromPlaylist drops a video reference from a playlist.
func (d *Dashboard) RemoveVideoFromPlaylist(playlistID, videoID string) error {
	pl, ok := d.playlists.Get(playlistID)
	if !ok {
		return ErrNotFound
	}
	next := make([]string, 0, len(pl.VideoIDs))
	for _, id := range pl.VideoIDs {
		if id != videoID {
			next = append(next, id)
		}
	}
	pl.VideoIDs = next
	pl.UpdatedAt = models.NowMillis()
	d.playlistCoord.Update(pl)
	return nil
}

// ReorderPlaylists moves a playlist within the persisted order.
func (d *Dashboard) ReorderPlaylists(movedID, targetID string, predicates []view.Predicate, sort view.SortDirective) error {
	if !d.playlistPipe.Reorderable(predicates, sort) {
		metrics.ReordersRejected.WithLabelValues(models.CollectionPlaylists, "not_reorderable").Inc()
		return ErrNotReorderable
	}
	d.playlistCoord.Reorder(movedID, targetID)
	return nil
}

// Niche mutations

// AddNiche inserts a trend niche optimistically and persists it.
func (d *Dashboard) AddNiche(n models.Niche) {
	d.nicheCoord.Add(n)
}

// RemoveNiche deletes a trend niche.
func (d *Dashboard) RemoveNiche(id string) {
	d.nicheCoord.Remove(id)
}

// ReorderNiches moves a niche within the trends view's persisted
// order.
func (d *Dashboard) ReorderNiches(movedID, targetID string, predicates []view.Predicate, sort view.SortDirective) error {
	if !d.nichePipe.Reorderable(predicates, sort) {
		metrics.ReordersRejected.WithLabelValues(models.CollectionNiches, "not_reorderable").Inc()
		return ErrNotReorderable
	}
	d.nicheCoord.Reorder(movedID, targetID)
	return nil
}
