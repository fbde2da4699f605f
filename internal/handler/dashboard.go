// Package handler exposes the dashboard's derived views and mutation
// entry points over HTTP.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/viewdeck/video-dashboard-go/internal/models"
	"github.com/viewdeck/video-dashboard-go/internal/service"
	"github.com/viewdeck/video-dashboard-go/internal/view"
	"github.com/viewdeck/video-dashboard-go/pkg/logger"
)

// ErrorResponse is the JSON error envelope.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

// ViewResponse wraps a derived view list with its reorderable flag so
// the UI can disable drag affordances when persisting a reorder would
// be unsound.
type ViewResponse[T any] struct {
	Items       []T  `json:"items"`
	Count       int  `json:"count"`
	Reorderable bool `json:"reorderable"`
}

// ReorderRequest moves one record to another record's position.
type ReorderRequest struct {
	MovedID  string `json:"movedId" binding:"required"`
	TargetID string `json:"targetId" binding:"required"`
}

// CreateVideoRequest adds a custom video to the dashboard.
type CreateVideoRequest struct {
	Title        string `json:"title" binding:"required,max=200"`
	ChannelTitle string `json:"channelTitle" binding:"max=200"`
	Category     string `json:"category" binding:"max=100"`
	ThumbnailURL string `json:"thumbnailUrl" binding:"max=2000"`
}

// CreatePlaylistRequest adds a playlist.
type CreatePlaylistRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
}

// NotesRequest replaces the notes of a video as a whole.
type NotesRequest struct {
	Notes []models.VideoNote `json:"notes" binding:"required"`
}

// PlaylistVideoRequest references a video from a playlist.
type PlaylistVideoRequest struct {
	VideoID string `json:"videoId" binding:"required"`
}

// DashboardHandler serves the video, playlist and trends views.
type DashboardHandler struct {
	dashboard *service.Dashboard
	log       *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler instance.
func NewDashboardHandler(dashboard *service.Dashboard) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		log:       logger.Named("handler"),
	}
}

// ListVideos renders the home grid.
func (h *DashboardHandler) ListVideos(c *gin.Context) {
	predicates := predicatesFromQuery(c)
	sort := sortFromQuery(c)

	items, reorderable := h.dashboard.VideoView(predicates, sort)
	c.JSON(http.StatusOK, ViewResponse[models.Video]{
		Items:       items,
		Count:       len(items),
		Reorderable: reorderable,
	})
}

// CreateVideo adds a custom video; it surfaces at the top of the grid.
func (h *DashboardHandler) CreateVideo(c *gin.Context) {
	var req CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	video := models.NewVideo(req.Title, req.ChannelTitle)
	video.Category = req.Category
	video.ThumbnailURL = req.ThumbnailURL
	h.dashboard.AddVideo(video)

	h.log.Info("video added",
		zap.String("videoId", video.ID),
		zap.String("title", video.Title),
	)
	c.JSON(http.StatusCreated, video)
}

// DeleteVideo removes a video and scrubs playlist references to it.
func (h *DashboardHandler) DeleteVideo(c *gin.Context) {
	id := c.Param("id")
	h.dashboard.RemoveVideo(id)
	c.Status(http.StatusNoContent)
}

// UpdateVideoNotes replaces a video's notes.
func (h *DashboardHandler) UpdateVideoNotes(c *gin.Context) {
	var req NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if err := h.dashboard.SetVideoNotes(c.Param("id"), req.Notes); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderVideos persists a drag-reorder of the home grid. The active
// filter and sort are carried in the query string so the server can
// refuse moves made in a view whose indices do not match true order.
func (h *DashboardHandler) ReorderVideos(c *gin.Context) {
	h.reorder(c, h.dashboard.ReorderVideos)
}

// ListPlaylists renders the playlists view.
func (h *DashboardHandler) ListPlaylists(c *gin.Context) {
	predicates := predicatesFromQuery(c)
	sort := sortFromQuery(c)

	items, reorderable := h.dashboard.PlaylistView(predicates, sort)
	c.JSON(http.StatusOK, ViewResponse[models.Playlist]{
		Items:       items,
		Count:       len(items),
		Reorderable: reorderable,
	})
}

// CreatePlaylist adds a playlist.
func (h *DashboardHandler) CreatePlaylist(c *gin.Context) {
	var req CreatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	playlist := models.NewPlaylist(req.Name)
	playlist.Description = req.Description
	h.dashboard.AddPlaylist(playlist)
	c.JSON(http.StatusCreated, playlist)
}

// DeletePlaylist removes a playlist. Its videos are untouched.
func (h *DashboardHandler) DeletePlaylist(c *gin.Context) {
	h.dashboard.RemovePlaylist(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// ListPlaylistVideos resolves a playlist's video references.
func (h *DashboardHandler) ListPlaylistVideos(c *gin.Context) {
	videos, err := h.dashboard.PlaylistVideos(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": videos, "count": len(videos)})
}

// AddPlaylistVideo appends a video reference to a playlist.
func (h *DashboardHandler) AddPlaylistVideo(c *gin.Context) {
	var req PlaylistVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if err := h.dashboard.AddVideoToPlaylist(c.Param("id"), req.VideoID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemovePlaylistVideo drops a video reference from a playlist.
func (h *DashboardHandler) RemovePlaylistVideo(c *gin.Context) {
	if err := h.dashboard.RemoveVideoFromPlaylist(c.Param("id"), c.Param("videoId")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderPlaylists persists a drag-reorder of the playlists view.
func (h *DashboardHandler) ReorderPlaylists(c *gin.Context) {
	h.reorder(c, h.dashboard.ReorderPlaylists)
}

// ListNiches renders the trends view.
func (h *DashboardHandler) ListNiches(c *gin.Context) {
	predicates := predicatesFromQuery(c)
	sort := sortFromQuery(c)

	items, reorderable := h.dashboard.NicheView(predicates, sort)
	c.JSON(http.StatusOK, ViewResponse[models.Niche]{
		Items:       items,
		Count:       len(items),
		Reorderable: reorderable,
	})
}

// ReorderNiches persists a drag-reorder of the trends view.
func (h *DashboardHandler) ReorderNiches(c *gin.Context) {
	h.reorder(c, h.dashboard.ReorderNiches)
}

// ListChannels renders the tracked channels.
func (h *DashboardHandler) ListChannels(c *gin.Context) {
	items := h.dashboard.ChannelView(predicatesFromQuery(c), sortFromQuery(c))
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// HealthCheck provides a simple liveness endpoint.
func (h *DashboardHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now(),
	})
}

type reorderFunc func(movedID, targetID string, predicates []view.Predicate, sort view.SortDirective) error

func (h *DashboardHandler) reorder(c *gin.Context, fn reorderFunc) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if err := fn(req.MovedID, req.TargetID, predicatesFromQuery(c), sortFromQuery(c)); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DashboardHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Status:    http.StatusNotFound,
			Error:     "Not Found",
			Message:   err.Error(),
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	case errors.Is(err, service.ErrNotReorderable):
		c.JSON(http.StatusConflict, ErrorResponse{
			Status:    http.StatusConflict,
			Error:     "Conflict",
			Message:   err.Error(),
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	default:
		h.log.Error("unexpected error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status:    http.StatusInternalServerError,
			Error:     "Internal Server Error",
			Message:   "An unexpected error occurred",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Status:    http.StatusBadRequest,
		Error:     "Bad Request",
		Message:   message,
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}

// predicatesFromQuery translates the view's query parameters into
// filter predicates. Unparseable values pass through; the pipeline
// treats them as never-matching rather than erroring.
func predicatesFromQuery(c *gin.Context) []view.Predicate {
	var predicates []view.Predicate

	if search := c.Query("search"); search != "" {
		predicates = append(predicates, view.Predicate{
			ID:       "search",
			Type:     "search",
			Operator: view.OpContains,
			Value:    search,
		})
	}
	if min := c.Query("minViews"); min != "" {
		predicates = append(predicates, numericPredicate("minViews", "views", view.OpGTE, min))
	}
	if max := c.Query("maxViews"); max != "" {
		predicates = append(predicates, numericPredicate("maxViews", "views", view.OpLTE, max))
	}
	if after := c.Query("publishedAfter"); after != "" {
		predicates = append(predicates, numericPredicate("publishedAfter", "published", view.OpGTE, after))
	}
	if before := c.Query("publishedBefore"); before != "" {
		predicates = append(predicates, numericPredicate("publishedBefore", "published", view.OpLTE, before))
	}
	if excluded := c.Query("excludeCategories"); excluded != "" {
		predicates = append(predicates, view.Predicate{
			ID:       "excludeCategories",
			Type:     "category",
			Operator: view.OpExcludes,
			Value:    strings.Split(excluded, ","),
		})
	}

	return predicates
}

func numericPredicate(id, fieldType string, op view.Operator, raw string) view.Predicate {
	p := view.Predicate{ID: id, Type: fieldType, Operator: op}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		p.Value = v
	} else {
		p.Value = raw
	}
	return p
}

func sortFromQuery(c *gin.Context) view.SortDirective {
	if sort := c.Query("sort"); sort != "" {
		return view.SortDirective(sort)
	}
	return view.SortDefault
}
