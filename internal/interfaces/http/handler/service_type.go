package handler

import (
	catalogapp "github.com/billing/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// ServiceTypeHandler handles service catalog API endpoints
type ServiceTypeHandler struct {
	BaseHandler
	serviceTypeService *catalogapp.ServiceTypeService
}

// NewServiceTypeHandler creates a new ServiceTypeHandler
func NewServiceTypeHandler(serviceTypeService *catalogapp.ServiceTypeService) *ServiceTypeHandler {
	return &ServiceTypeHandler{serviceTypeService: serviceTypeService}
}

// RegisterRoutes registers the service type endpoints
func (h *ServiceTypeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	services := rg.Group("/service-types")
	services.POST("", h.Create)
	services.GET("", h.List)
	services.GET("/:id", h.GetByID)
	services.PUT("/:id", h.Update)
	services.DELETE("/:id", h.Delete)
}

// Create creates a new service type
func (h *ServiceTypeHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req catalogapp.CreateServiceTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	userID, _ := getUserID(c)
	serviceType, err := h.serviceTypeService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, serviceType)
}

// List retrieves service types
func (h *ServiceTypeHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter catalogapp.ServiceTypeListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	serviceTypes, total, err := h.serviceTypeService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, serviceTypes, total, filter.Page, filter.PageSize)
}

// GetByID retrieves a service type by ID
func (h *ServiceTypeHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	serviceTypeID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid service type ID")
		return
	}

	serviceType, err := h.serviceTypeService.GetByID(c.Request.Context(), tenantID, serviceTypeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, serviceType)
}

// Update modifies a service type
func (h *ServiceTypeHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	serviceTypeID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid service type ID")
		return
	}

	var req catalogapp.UpdateServiceTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	serviceType, err := h.serviceTypeService.Update(c.Request.Context(), tenantID, serviceTypeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, serviceType)
}

// Delete removes a service type not referenced by any invoice line
func (h *ServiceTypeHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	serviceTypeID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid service type ID")
		return
	}

	if err := h.serviceTypeService.Delete(c.Request.Context(), tenantID, serviceTypeID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
