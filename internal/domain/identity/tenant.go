package identity

import (
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/shared"
)

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Tenant is one isolated business account. Every billing row carries its
// tenant's ID and every query is scoped by it.
type Tenant struct {
	shared.BaseEntity
	Name   string       `json:"name"`
	Status TenantStatus `json:"status"`
}

// NewTenant creates an active tenant.
func NewTenant(name string) (*Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("business name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("business name cannot exceed 200 characters")
	}

	return &Tenant{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Status:     TenantStatusActive,
	}, nil
}

// Suspend blocks all API access for the tenant's users
func (t *Tenant) Suspend() error {
	if t.Status == TenantStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Tenant is already suspended")
	}
	t.Status = TenantStatusSuspended
	t.UpdatedAt = time.Now()
	return nil
}

// Activate reinstates a suspended tenant
func (t *Tenant) Activate() error {
	if t.Status == TenantStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Tenant is already active")
	}
	t.Status = TenantStatusActive
	t.UpdatedAt = time.Now()
	return nil
}

// IsActive returns true if the tenant is active
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}
