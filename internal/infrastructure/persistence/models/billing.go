package models

import (
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate. The
// tenant and number columns are declared inline rather than via
// TenantScopedModel so both join the per-tenant unique number index.
type InvoiceModel struct {
	BaseModel
	TenantID        uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_tenant_number,priority:1"`
	CreatedBy       *uuid.UUID             `gorm:"type:uuid"`
	InvoiceNumber   string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_tenant_number,priority:2"`
	InvoiceDate     time.Time              `gorm:"type:date;not null;index"`
	DueDate         time.Time              `gorm:"type:date;not null;index"`
	CustomerID      uuid.UUID              `gorm:"type:uuid;not null;index"`
	ReferenceNumber string                 `gorm:"type:varchar(100)"`
	Subtotal        decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	TaxTotal        decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	Total           decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	Notes           string                 `gorm:"type:text"`
	LineItems       []InvoiceLineItemModel `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceLineItemModel is the persistence model for one invoice line.
type InvoiceLineItemModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ServiceTypeID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description   string          `gorm:"type:varchar(500)"`
	Quantity      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Rate          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (InvoiceLineItemModel) TableName() string {
	return "invoice_line_items"
}

// ToDomain converts the persistence model to a domain Invoice.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		TenantEntity: shared.TenantEntity{
			BaseEntity: m.BaseModel.ToDomain(),
			TenantID:   m.TenantID,
			CreatedBy:  m.CreatedBy,
		},
		InvoiceNumber:   m.InvoiceNumber,
		InvoiceDate:     m.InvoiceDate,
		DueDate:         m.DueDate,
		CustomerID:      m.CustomerID,
		ReferenceNumber: m.ReferenceNumber,
		Subtotal:        m.Subtotal,
		TaxTotal:        m.TaxTotal,
		Total:           m.Total,
		Notes:           m.Notes,
	}
	if len(m.LineItems) > 0 {
		inv.LineItems = make([]billing.InvoiceLineItem, len(m.LineItems))
		for i, li := range m.LineItems {
			inv.LineItems[i] = li.ToDomain()
		}
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainBaseEntity(inv.BaseEntity)
	m.TenantID = inv.TenantID
	m.CreatedBy = inv.CreatedBy
	m.InvoiceNumber = inv.InvoiceNumber
	m.InvoiceDate = inv.InvoiceDate
	m.DueDate = inv.DueDate
	m.CustomerID = inv.CustomerID
	m.ReferenceNumber = inv.ReferenceNumber
	m.Subtotal = inv.Subtotal
	m.TaxTotal = inv.TaxTotal
	m.Total = inv.Total
	m.Notes = inv.Notes
	m.LineItems = make([]InvoiceLineItemModel, len(inv.LineItems))
	for i, li := range inv.LineItems {
		m.LineItems[i] = InvoiceLineItemModelFromDomain(li)
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// ToDomain converts the persistence model to a domain InvoiceLineItem.
func (m *InvoiceLineItemModel) ToDomain() billing.InvoiceLineItem {
	return billing.InvoiceLineItem{
		ID:            m.ID,
		InvoiceID:     m.InvoiceID,
		ServiceTypeID: m.ServiceTypeID,
		Description:   m.Description,
		Quantity:      m.Quantity,
		Rate:          m.Rate,
		Amount:        m.Amount,
		TaxRate:       m.TaxRate,
		TaxAmount:     m.TaxAmount,
		Total:         m.Total,
	}
}

// InvoiceLineItemModelFromDomain creates a persistence model from a domain line item.
func InvoiceLineItemModelFromDomain(li billing.InvoiceLineItem) InvoiceLineItemModel {
	return InvoiceLineItemModel{
		ID:            li.ID,
		InvoiceID:     li.InvoiceID,
		ServiceTypeID: li.ServiceTypeID,
		Description:   li.Description,
		Quantity:      li.Quantity,
		Rate:          li.Rate,
		Amount:        li.Amount,
		TaxRate:       li.TaxRate,
		TaxAmount:     li.TaxAmount,
		Total:         li.Total,
	}
}

// ReceiptModel is the persistence model for the Receipt aggregate.
type ReceiptModel struct {
	BaseModel
	TenantID      uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_receipt_tenant_number,priority:1"`
	CreatedBy     *uuid.UUID               `gorm:"type:uuid"`
	ReceiptNumber string                   `gorm:"type:varchar(50);not null;uniqueIndex:idx_receipt_tenant_number,priority:2"`
	ReceiptDate   time.Time                `gorm:"type:date;not null;index"`
	CustomerID    uuid.UUID                `gorm:"type:uuid;not null;index"`
	PaymentMethod billing.PaymentMethod    `gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	Status        billing.ReceiptStatus    `gorm:"type:varchar(20);not null;default:'Completed'"`
	Notes         string                   `gorm:"type:text"`
	Allocations   []ReceiptAllocationModel `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ReceiptAllocationModel is the persistence model for one receipt allocation.
type ReceiptAllocationModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReceiptID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	AllocatedAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReceiptAllocationModel) TableName() string {
	return "receipt_allocations"
}

// ToDomain converts the persistence model to a domain Receipt.
func (m *ReceiptModel) ToDomain() *billing.Receipt {
	r := &billing.Receipt{
		TenantEntity: shared.TenantEntity{
			BaseEntity: m.BaseModel.ToDomain(),
			TenantID:   m.TenantID,
			CreatedBy:  m.CreatedBy,
		},
		ReceiptNumber: m.ReceiptNumber,
		ReceiptDate:   m.ReceiptDate,
		CustomerID:    m.CustomerID,
		PaymentMethod: m.PaymentMethod,
		Amount:        m.Amount,
		Status:        m.Status,
		Notes:         m.Notes,
	}
	if len(m.Allocations) > 0 {
		r.Allocations = make([]billing.ReceiptAllocation, len(m.Allocations))
		for i, a := range m.Allocations {
			r.Allocations[i] = a.ToDomain()
		}
	}
	return r
}

// FromDomain populates the persistence model from a domain Receipt.
func (m *ReceiptModel) FromDomain(r *billing.Receipt) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.TenantID = r.TenantID
	m.CreatedBy = r.CreatedBy
	m.ReceiptNumber = r.ReceiptNumber
	m.ReceiptDate = r.ReceiptDate
	m.CustomerID = r.CustomerID
	m.PaymentMethod = r.PaymentMethod
	m.Amount = r.Amount
	m.Status = r.Status
	m.Notes = r.Notes
	m.Allocations = make([]ReceiptAllocationModel, len(r.Allocations))
	for i, a := range r.Allocations {
		m.Allocations[i] = ReceiptAllocationModelFromDomain(a)
	}
}

// ReceiptModelFromDomain creates a new persistence model from a domain Receipt.
func ReceiptModelFromDomain(r *billing.Receipt) *ReceiptModel {
	m := &ReceiptModel{}
	m.FromDomain(r)
	return m
}

// ToDomain converts the persistence model to a domain ReceiptAllocation.
func (m *ReceiptAllocationModel) ToDomain() billing.ReceiptAllocation {
	return billing.ReceiptAllocation{
		ID:              m.ID,
		TenantID:        m.TenantID,
		ReceiptID:       m.ReceiptID,
		InvoiceID:       m.InvoiceID,
		AllocatedAmount: m.AllocatedAmount,
		CreatedAt:       m.CreatedAt,
	}
}

// ReceiptAllocationModelFromDomain creates a persistence model from a domain allocation.
func ReceiptAllocationModelFromDomain(a billing.ReceiptAllocation) ReceiptAllocationModel {
	return ReceiptAllocationModel{
		ID:              a.ID,
		TenantID:        a.TenantID,
		ReceiptID:       a.ReceiptID,
		InvoiceID:       a.InvoiceID,
		AllocatedAmount: a.AllocatedAmount,
		CreatedAt:       a.CreatedAt,
	}
}

// CreditNoteModel is the persistence model for the CreditNote aggregate.
type CreditNoteModel struct {
	BaseModel
	TenantID         uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_credit_note_tenant_number,priority:1"`
	CreatedBy        *uuid.UUID               `gorm:"type:uuid"`
	CreditNoteNumber string                   `gorm:"type:varchar(50);not null;uniqueIndex:idx_credit_note_tenant_number,priority:2"`
	CreditNoteDate   time.Time                `gorm:"type:date;not null;index"`
	CustomerID       uuid.UUID                `gorm:"type:uuid;not null;index"`
	InvoiceID        *uuid.UUID               `gorm:"type:uuid;index"`
	Reason           string                   `gorm:"type:varchar(200);not null"`
	Amount           decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	GSTRate          decimal.Decimal          `gorm:"type:decimal(5,2);not null;default:0"`
	GSTAmount        decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
	TotalCredit      decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	Status           billing.CreditNoteStatus `gorm:"type:varchar(20);not null;default:'Issued'"`
	Notes            string                   `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CreditNoteModel) TableName() string {
	return "credit_notes"
}

// ToDomain converts the persistence model to a domain CreditNote.
func (m *CreditNoteModel) ToDomain() *billing.CreditNote {
	return &billing.CreditNote{
		TenantEntity: shared.TenantEntity{
			BaseEntity: m.BaseModel.ToDomain(),
			TenantID:   m.TenantID,
			CreatedBy:  m.CreatedBy,
		},
		CreditNoteNumber: m.CreditNoteNumber,
		CreditNoteDate:   m.CreditNoteDate,
		CustomerID:       m.CustomerID,
		InvoiceID:        m.InvoiceID,
		Reason:           m.Reason,
		Amount:           m.Amount,
		GSTRate:          m.GSTRate,
		GSTAmount:        m.GSTAmount,
		TotalCredit:      m.TotalCredit,
		Status:           m.Status,
		Notes:            m.Notes,
	}
}

// FromDomain populates the persistence model from a domain CreditNote.
func (m *CreditNoteModel) FromDomain(cn *billing.CreditNote) {
	m.FromDomainBaseEntity(cn.BaseEntity)
	m.TenantID = cn.TenantID
	m.CreatedBy = cn.CreatedBy
	m.CreditNoteNumber = cn.CreditNoteNumber
	m.CreditNoteDate = cn.CreditNoteDate
	m.CustomerID = cn.CustomerID
	m.InvoiceID = cn.InvoiceID
	m.Reason = cn.Reason
	m.Amount = cn.Amount
	m.GSTRate = cn.GSTRate
	m.GSTAmount = cn.GSTAmount
	m.TotalCredit = cn.TotalCredit
	m.Status = cn.Status
	m.Notes = cn.Notes
}

// CreditNoteModelFromDomain creates a new persistence model from a domain CreditNote.
func CreditNoteModelFromDomain(cn *billing.CreditNote) *CreditNoteModel {
	m := &CreditNoteModel{}
	m.FromDomain(cn)
	return m
}
