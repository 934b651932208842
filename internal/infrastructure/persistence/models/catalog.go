package models

import (
	"github.com/billing/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ServiceTypeModel is the persistence model for the ServiceType domain entity.
type ServiceTypeModel struct {
	TenantScopedModel
	Name        string          `gorm:"type:varchar(200);not null;index"`
	Description string          `gorm:"type:varchar(500)"`
	SACCode     string          `gorm:"type:varchar(10)"`
	DefaultRate decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	GSTRate     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	IsActive    bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ServiceTypeModel) TableName() string {
	return "service_types"
}

// ToDomain converts the persistence model to a domain ServiceType entity.
func (m *ServiceTypeModel) ToDomain() *catalog.ServiceType {
	return &catalog.ServiceType{
		TenantEntity: m.ToDomainTenantEntity(),
		Name:         m.Name,
		Description:  m.Description,
		SACCode:      m.SACCode,
		DefaultRate:  m.DefaultRate,
		GSTRate:      m.GSTRate,
		IsActive:     m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain ServiceType entity.
func (m *ServiceTypeModel) FromDomain(s *catalog.ServiceType) {
	m.FromDomainTenantEntity(s.TenantEntity)
	m.Name = s.Name
	m.Description = s.Description
	m.SACCode = s.SACCode
	m.DefaultRate = s.DefaultRate
	m.GSTRate = s.GSTRate
	m.IsActive = s.IsActive
}

// ServiceTypeModelFromDomain creates a new persistence model from a domain ServiceType entity.
func ServiceTypeModelFromDomain(s *catalog.ServiceType) *ServiceTypeModel {
	m := &ServiceTypeModel{}
	m.FromDomain(s)
	return m
}
