package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/viewdeck/video-dashboard-go/internal/middleware"
)

// RegisterRoutes mounts all dashboard routes on the engine. When auth
// carries configured keys the /api group requires them; /health and
// /metrics stay open.
func RegisterRoutes(r *gin.Engine, dashboard *DashboardHandler, settings *SettingsHandler, auth *middleware.APIKeyAuth) {
	r.GET("/health", dashboard.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if auth != nil && auth.Enabled() {
		api.Use(auth.Middleware())
	}
	{
		api.GET("/videos", dashboard.ListVideos)
		api.POST("/videos", dashboard.CreateVideo)
		api.DELETE("/videos/:id", dashboard.DeleteVideo)
		api.PUT("/videos/:id/notes", dashboard.UpdateVideoNotes)
		api.POST("/videos/reorder", dashboard.ReorderVideos)

		api.GET("/playlists", dashboard.ListPlaylists)
		api.POST("/playlists", dashboard.CreatePlaylist)
		api.DELETE("/playlists/:id", dashboard.DeletePlaylist)
		api.GET("/playlists/:id/videos", dashboard.ListPlaylistVideos)
		api.PUT("/playlists/:id/videos", dashboard.AddPlaylistVideo)
		api.DELETE("/playlists/:id/videos/:videoId", dashboard.RemovePlaylistVideo)
		api.POST("/playlists/reorder", dashboard.ReorderPlaylists)

		api.GET("/niches", dashboard.ListNiches)
		api.POST("/niches/reorder", dashboard.ReorderNiches)

		api.GET("/channels", dashboard.ListChannels)

		api.GET("/settings", settings.GetSettings)
		api.PUT("/settings", settings.PutSettings)
	}
}
