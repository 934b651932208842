package catalog

import (
	"time"

	"github.com/billing/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateServiceTypeRequest represents a request to create a service type
type CreateServiceTypeRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=500"`
	SACCode     string          `json:"sac_code" binding:"max=10"`
	DefaultRate decimal.Decimal `json:"default_rate"`
	GSTRate     decimal.Decimal `json:"gst_rate"`
}

// UpdateServiceTypeRequest represents a request to update a service type
type UpdateServiceTypeRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=500"`
	SACCode     *string          `json:"sac_code" binding:"omitempty,max=10"`
	DefaultRate *decimal.Decimal `json:"default_rate"`
	GSTRate     *decimal.Decimal `json:"gst_rate"`
	IsActive    *bool            `json:"is_active"`
}

// ServiceTypeResponse represents a service type in API responses
type ServiceTypeResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	SACCode     string          `json:"sac_code"`
	DefaultRate decimal.Decimal `json:"default_rate"`
	GSTRate     decimal.Decimal `json:"gst_rate"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ServiceTypeListFilter represents filter options for service type list
type ServiceTypeListFilter struct {
	Search     string `form:"search"`
	ActiveOnly bool   `form:"active_only"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToServiceTypeResponse converts a domain service type to its API view
func ToServiceTypeResponse(s *catalog.ServiceType) ServiceTypeResponse {
	return ServiceTypeResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		SACCode:     s.SACCode,
		DefaultRate: s.DefaultRate,
		GSTRate:     s.GSTRate,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
