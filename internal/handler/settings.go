package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/viewdeck/video-dashboard-go/internal/models"
	"github.com/viewdeck/video-dashboard-go/internal/service"
)

// SettingsHandler serves the notification and display settings.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler instance.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetSettings returns the current settings document.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.Get())
}

// PutSettings replaces the settings document.
func (h *SettingsHandler) PutSettings(c *gin.Context) {
	var req models.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if err := h.settings.Update(c.Request.Context(), req); err != nil {
		badRequest(c, "Failed to store settings: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, h.settings.Get())
}
