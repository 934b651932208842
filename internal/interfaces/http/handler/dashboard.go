package handler

import (
	"strconv"

	reportapp "github.com/billing/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// DashboardHandler handles the aggregate dashboard endpoints
type DashboardHandler struct {
	BaseHandler
	dashboardService *reportapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *reportapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// RegisterRoutes registers the dashboard endpoints
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	dashboard := rg.Group("/dashboard")
	dashboard.GET("/summary", h.Summary)
	dashboard.GET("/monthly-revenue", h.MonthlyRevenue)
	dashboard.GET("/top-debtors", h.TopDebtors)
}

// Summary returns the tenant's current billing position
func (h *DashboardHandler) Summary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	summary, err := h.dashboardService.Summary(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// MonthlyRevenue returns invoiced vs collected totals per trailing month
func (h *DashboardHandler) MonthlyRevenue(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	months := 0
	if raw := c.Query("months"); raw != "" {
		months, err = strconv.Atoi(raw)
		if err != nil {
			h.BadRequest(c, "Invalid months parameter")
			return
		}
	}

	revenue, err := h.dashboardService.MonthlyRevenue(c.Request.Context(), tenantID, months)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, revenue)
}

// TopDebtors returns the customers with the largest outstanding balances
func (h *DashboardHandler) TopDebtors(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			h.BadRequest(c, "Invalid limit parameter")
			return
		}
	}

	debtors, err := h.dashboardService.TopDebtors(c.Request.Context(), tenantID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, debtors)
}
