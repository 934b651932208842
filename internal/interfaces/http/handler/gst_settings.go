package handler

import (
	taxapp "github.com/billing/backend/internal/application/tax"
	"github.com/gin-gonic/gin"
)

// GSTSettingsHandler handles the tenant GST profile endpoints
type GSTSettingsHandler struct {
	BaseHandler
	settingsService *taxapp.GSTSettingsService
}

// NewGSTSettingsHandler creates a new GSTSettingsHandler
func NewGSTSettingsHandler(settingsService *taxapp.GSTSettingsService) *GSTSettingsHandler {
	return &GSTSettingsHandler{settingsService: settingsService}
}

// RegisterRoutes registers the GST settings endpoints
func (h *GSTSettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	settings := rg.Group("/settings/gst")
	settings.GET("", h.Get)
	settings.PUT("", h.Upsert)
}

// Get retrieves the tenant's GST profile
func (h *GSTSettingsHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	settings, err := h.settingsService.Get(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, settings)
}

// Upsert creates or replaces the tenant's GST profile
func (h *GSTSettingsHandler) Upsert(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req taxapp.UpdateGSTSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	settings, err := h.settingsService.Upsert(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, settings)
}
