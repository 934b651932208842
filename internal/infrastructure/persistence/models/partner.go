package models

import (
	"github.com/billing/backend/internal/domain/partner"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	TenantScopedModel
	Name         string                 `gorm:"type:varchar(200);not null;index"`
	ContactName  string                 `gorm:"type:varchar(100)"`
	Email        string                 `gorm:"type:varchar(200);index"`
	Phone        string                 `gorm:"type:varchar(20);index"`
	GSTIN        string                 `gorm:"type:varchar(15)"`
	AddressLine1 string                 `gorm:"type:varchar(200)"`
	AddressLine2 string                 `gorm:"type:varchar(200)"`
	City         string                 `gorm:"type:varchar(100)"`
	State        string                 `gorm:"type:varchar(100)"`
	StateCode    string                 `gorm:"type:varchar(2)"`
	PostalCode   string                 `gorm:"type:varchar(10)"`
	Status       partner.CustomerStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Notes        string                 `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		TenantEntity: m.ToDomainTenantEntity(),
		Name:         m.Name,
		ContactName:  m.ContactName,
		Email:        m.Email,
		Phone:        m.Phone,
		GSTIN:        m.GSTIN,
		AddressLine1: m.AddressLine1,
		AddressLine2: m.AddressLine2,
		City:         m.City,
		State:        m.State,
		StateCode:    m.StateCode,
		PostalCode:   m.PostalCode,
		Status:       m.Status,
		Notes:        m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainTenantEntity(c.TenantEntity)
	m.Name = c.Name
	m.ContactName = c.ContactName
	m.Email = c.Email
	m.Phone = c.Phone
	m.GSTIN = c.GSTIN
	m.AddressLine1 = c.AddressLine1
	m.AddressLine2 = c.AddressLine2
	m.City = c.City
	m.State = c.State
	m.StateCode = c.StateCode
	m.PostalCode = c.PostalCode
	m.Status = c.Status
	m.Notes = c.Notes
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
