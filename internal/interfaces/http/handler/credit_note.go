package handler

import (
	billingapp "github.com/billing/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// CreditNoteHandler handles credit note API endpoints
type CreditNoteHandler struct {
	BaseHandler
	creditNoteService *billingapp.CreditNoteService
}

// NewCreditNoteHandler creates a new CreditNoteHandler
func NewCreditNoteHandler(creditNoteService *billingapp.CreditNoteService) *CreditNoteHandler {
	return &CreditNoteHandler{creditNoteService: creditNoteService}
}

// RegisterRoutes registers the credit note endpoints
func (h *CreditNoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	creditNotes := rg.Group("/credit-notes")
	creditNotes.POST("", h.Create)
	creditNotes.GET("", h.List)
	creditNotes.GET("/next-number", h.NextNumber)
	creditNotes.GET("/:id", h.GetByID)
	creditNotes.POST("/:id/cancel", h.Cancel)
}

// Create issues a credit note, enforcing the invoice credit cap when linked
func (h *CreditNoteHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req billingapp.CreateCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	userID, _ := getUserID(c)
	note, err := h.creditNoteService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, note)
}

// List retrieves credit notes
func (h *CreditNoteHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter billingapp.CreditNoteListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	notes, total, err := h.creditNoteService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, notes, total, filter.Page, filter.PageSize)
}

// GetByID retrieves a credit note
func (h *CreditNoteHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	creditNoteID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid credit note ID")
		return
	}

	note, err := h.creditNoteService.GetByID(c.Request.Context(), tenantID, creditNoteID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, note)
}

// Cancel marks a credit note cancelled
func (h *CreditNoteHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	creditNoteID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid credit note ID")
		return
	}

	note, err := h.creditNoteService.Cancel(c.Request.Context(), tenantID, creditNoteID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, note)
}

// NextNumber previews the next credit note number for the current year
func (h *CreditNoteHandler) NextNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	next, err := h.creditNoteService.NextNumber(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, next)
}
