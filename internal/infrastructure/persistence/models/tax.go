package models

import (
	"github.com/billing/backend/internal/domain/tax"
)

// GSTSettingsModel is the persistence model for the tenant GST profile.
// One row per tenant.
type GSTSettingsModel struct {
	TenantScopedModel
	GSTIN       string `gorm:"type:varchar(15)"`
	LegalName   string `gorm:"type:varchar(200);not null"`
	TradeName   string `gorm:"type:varchar(200)"`
	Address     string `gorm:"type:varchar(500)"`
	StateCode   string `gorm:"type:varchar(2)"`
	IsComposite bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (GSTSettingsModel) TableName() string {
	return "gst_settings"
}

// ToDomain converts the persistence model to a domain GSTSettings entity.
func (m *GSTSettingsModel) ToDomain() *tax.GSTSettings {
	return &tax.GSTSettings{
		TenantEntity: m.ToDomainTenantEntity(),
		GSTIN:        m.GSTIN,
		LegalName:    m.LegalName,
		TradeName:    m.TradeName,
		Address:      m.Address,
		StateCode:    m.StateCode,
		IsComposite:  m.IsComposite,
	}
}

// FromDomain populates the persistence model from a domain GSTSettings entity.
func (m *GSTSettingsModel) FromDomain(s *tax.GSTSettings) {
	m.FromDomainTenantEntity(s.TenantEntity)
	m.GSTIN = s.GSTIN
	m.LegalName = s.LegalName
	m.TradeName = s.TradeName
	m.Address = s.Address
	m.StateCode = s.StateCode
	m.IsComposite = s.IsComposite
}

// GSTSettingsModelFromDomain creates a new persistence model from a domain GSTSettings entity.
func GSTSettingsModelFromDomain(s *tax.GSTSettings) *GSTSettingsModel {
	m := &GSTSettingsModel{}
	m.FromDomain(s)
	return m
}
