package billing

import (
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Invoice DTOs
// =============================================================================

// LineItemRequest is one invoice line in a create or update request.
// Amounts are always recomputed server side; any client-sent totals are
// ignored.
type LineItemRequest struct {
	ServiceTypeID uuid.UUID       `json:"service_type_id" binding:"required"`
	Description   string          `json:"description" binding:"max=500"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	Rate          decimal.Decimal `json:"rate"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
}

// CreateInvoiceRequest represents a request to create a new invoice
type CreateInvoiceRequest struct {
	InvoiceNumber   string            `json:"invoice_number" binding:"max=50"`
	CustomerID      uuid.UUID         `json:"customer_id" binding:"required"`
	InvoiceDate     time.Time         `json:"invoice_date" binding:"required"`
	DueDate         time.Time         `json:"due_date" binding:"required"`
	ReferenceNumber string            `json:"reference_number" binding:"max=100"`
	Notes           string            `json:"notes"`
	LineItems       []LineItemRequest `json:"line_items" binding:"required,min=1,dive"`
}

// UpdateInvoiceRequest represents a request to update an invoice.
// Line items are replaced wholesale.
type UpdateInvoiceRequest struct {
	CustomerID      *uuid.UUID        `json:"customer_id"`
	InvoiceDate     *time.Time        `json:"invoice_date"`
	DueDate         *time.Time        `json:"due_date"`
	ReferenceNumber *string           `json:"reference_number" binding:"omitempty,max=100"`
	Notes           *string           `json:"notes"`
	LineItems       []LineItemRequest `json:"line_items" binding:"omitempty,min=1,dive"`
}

// LineItemResponse is one invoice line in API responses
type LineItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	ServiceTypeID uuid.UUID       `json:"service_type_id"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	Rate          decimal.Decimal `json:"rate"`
	Amount        decimal.Decimal `json:"amount"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	Total         decimal.Decimal `json:"total"`
}

// InvoiceResponse represents an invoice in API responses. Status,
// paid_amount and outstanding are derived at read time.
type InvoiceResponse struct {
	ID              uuid.UUID          `json:"id"`
	InvoiceNumber   string             `json:"invoice_number"`
	CustomerID      uuid.UUID          `json:"customer_id"`
	InvoiceDate     time.Time          `json:"invoice_date"`
	DueDate         time.Time          `json:"due_date"`
	ReferenceNumber string             `json:"reference_number"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	TaxTotal        decimal.Decimal    `json:"tax_total"`
	Total           decimal.Decimal    `json:"total"`
	PaidAmount      decimal.Decimal    `json:"paid_amount"`
	Outstanding     decimal.Decimal    `json:"outstanding"`
	Status          string             `json:"status"`
	Notes           string             `json:"notes"`
	LineItems       []LineItemResponse `json:"line_items,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// InvoiceListFilter represents filter options for invoice list
type InvoiceListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status" binding:"omitempty,oneof=Pending Overdue Paid"`
	CustomerID *uuid.UUID `form:"customer_id"`
	DateFrom   *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo     *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PendingInvoiceResponse is one allocatable invoice in the allocation
// picker, ordered oldest first.
type PendingInvoiceResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	DueDate       time.Time       `json:"due_date"`
	Total         decimal.Decimal `json:"total"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	Status        string          `json:"status"`
}

// CreditableInvoiceResponse is one settled invoice with remaining credit
// room, ordered newest first.
type CreditableInvoiceResponse struct {
	ID              uuid.UUID       `json:"id"`
	InvoiceNumber   string          `json:"invoice_number"`
	InvoiceDate     time.Time       `json:"invoice_date"`
	Total           decimal.Decimal `json:"total"`
	CreditIssued    decimal.Decimal `json:"credit_issued"`
	AvailableCredit decimal.Decimal `json:"available_credit"`
}

// NextNumberResponse is the preview of the next document number
type NextNumberResponse struct {
	NextNumber string `json:"next_number"`
}

// =============================================================================
// Receipt DTOs
// =============================================================================

// AllocationRequest applies part of a receipt against one invoice
type AllocationRequest struct {
	InvoiceID uuid.UUID       `json:"invoice_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// CreateReceiptRequest represents a request to record a payment
type CreateReceiptRequest struct {
	ReceiptNumber string              `json:"receipt_number" binding:"max=50"`
	CustomerID    uuid.UUID           `json:"customer_id" binding:"required"`
	ReceiptDate   time.Time           `json:"receipt_date" binding:"required"`
	PaymentMethod string              `json:"payment_method" binding:"required,paymentmethod"`
	Amount        decimal.Decimal     `json:"amount" binding:"required"`
	Notes         string              `json:"notes"`
	Allocations   []AllocationRequest `json:"allocations" binding:"required,min=1,dive"`
}

// AllocationResponse is one receipt-to-invoice allocation in API responses
type AllocationResponse struct {
	ID              uuid.UUID       `json:"id"`
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
}

// ReceiptResponse represents a receipt in API responses. InvoicesUpdated
// carries the allocated invoices' numbers and is populated on the create
// path only.
type ReceiptResponse struct {
	ID              uuid.UUID            `json:"id"`
	ReceiptNumber   string               `json:"receipt_number"`
	CustomerID      uuid.UUID            `json:"customer_id"`
	ReceiptDate     time.Time            `json:"receipt_date"`
	PaymentMethod   string               `json:"payment_method"`
	Amount          decimal.Decimal      `json:"amount"`
	AllocatedAmount decimal.Decimal      `json:"allocated_amount"`
	UnappliedAmount decimal.Decimal      `json:"unapplied_amount"`
	Status          string               `json:"status"`
	Notes           string               `json:"notes"`
	Allocations     []AllocationResponse `json:"allocations,omitempty"`
	InvoicesUpdated []string             `json:"invoicesUpdated,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}

// ReceiptListFilter represents filter options for receipt list
type ReceiptListFilter struct {
	Search        string     `form:"search"`
	CustomerID    *uuid.UUID `form:"customer_id"`
	PaymentMethod string     `form:"payment_method" binding:"omitempty,oneof=bank_transfer cheque cash upi card"`
	DateFrom      *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo        *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page          int        `form:"page"`
	PageSize      int        `form:"page_size"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// =============================================================================
// Credit note DTOs
// =============================================================================

// CreateCreditNoteRequest represents a request to issue a credit note
type CreateCreditNoteRequest struct {
	CreditNoteNumber string          `json:"credit_note_number" binding:"max=50"`
	CustomerID       uuid.UUID       `json:"customer_id" binding:"required"`
	CreditNoteDate   time.Time       `json:"credit_note_date" binding:"required"`
	InvoiceID        *uuid.UUID      `json:"invoice_id"`
	Reason           string          `json:"reason" binding:"required,max=500"`
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	GSTRate          decimal.Decimal `json:"gst_rate"`
	Notes            string          `json:"notes"`
}

// CreditNoteResponse represents a credit note in API responses
type CreditNoteResponse struct {
	ID               uuid.UUID       `json:"id"`
	CreditNoteNumber string          `json:"credit_note_number"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	CreditNoteDate   time.Time       `json:"credit_note_date"`
	InvoiceID        *uuid.UUID      `json:"invoice_id,omitempty"`
	Reason           string          `json:"reason"`
	Amount           decimal.Decimal `json:"amount"`
	GSTRate          decimal.Decimal `json:"gst_rate"`
	GSTAmount        decimal.Decimal `json:"gst_amount"`
	TotalCredit      decimal.Decimal `json:"total_credit"`
	Status           string          `json:"status"`
	Notes            string          `json:"notes"`
	CreatedAt        time.Time       `json:"created_at"`
}

// CreditNoteListFilter represents filter options for credit note list
type CreditNoteListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	InvoiceID  *uuid.UUID `form:"invoice_id"`
	DateFrom   *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo     *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// =============================================================================
// Mappers
// =============================================================================

// ToInvoiceResponse builds the API view of an invoice from the entity and
// its active allocation sum.
func ToInvoiceResponse(inv *billing.Invoice, paid decimal.Decimal, today time.Time) InvoiceResponse {
	items := make([]LineItemResponse, 0, len(inv.LineItems))
	for _, li := range inv.LineItems {
		items = append(items, LineItemResponse{
			ID:            li.ID,
			ServiceTypeID: li.ServiceTypeID,
			Description:   li.Description,
			Quantity:      li.Quantity,
			Rate:          li.Rate,
			Amount:        li.Amount,
			TaxRate:       li.TaxRate,
			TaxAmount:     li.TaxAmount,
			Total:         li.Total,
		})
	}

	return InvoiceResponse{
		ID:              inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		InvoiceDate:     inv.InvoiceDate,
		DueDate:         inv.DueDate,
		ReferenceNumber: inv.ReferenceNumber,
		Subtotal:        inv.Subtotal,
		TaxTotal:        inv.TaxTotal,
		Total:           inv.Total,
		PaidAmount:      paid,
		Outstanding:     inv.Outstanding(paid),
		Status:          inv.Status(paid, today).String(),
		Notes:           inv.Notes,
		LineItems:       items,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
}

// ToReceiptResponse builds the API view of a receipt
func ToReceiptResponse(r *billing.Receipt) ReceiptResponse {
	allocations := make([]AllocationResponse, 0, len(r.Allocations))
	for _, a := range r.Allocations {
		allocations = append(allocations, AllocationResponse{
			ID:              a.ID,
			InvoiceID:       a.InvoiceID,
			AllocatedAmount: a.AllocatedAmount,
		})
	}

	return ReceiptResponse{
		ID:              r.ID,
		ReceiptNumber:   r.ReceiptNumber,
		CustomerID:      r.CustomerID,
		ReceiptDate:     r.ReceiptDate,
		PaymentMethod:   r.PaymentMethod.String(),
		Amount:          r.Amount,
		AllocatedAmount: r.AllocatedTotal(),
		UnappliedAmount: r.UnappliedAmount(),
		Status:          string(r.Status),
		Notes:           r.Notes,
		Allocations:     allocations,
		CreatedAt:       r.CreatedAt,
	}
}

// ToCreditNoteResponse builds the API view of a credit note
func ToCreditNoteResponse(cn *billing.CreditNote) CreditNoteResponse {
	return CreditNoteResponse{
		ID:               cn.ID,
		CreditNoteNumber: cn.CreditNoteNumber,
		CustomerID:       cn.CustomerID,
		CreditNoteDate:   cn.CreditNoteDate,
		InvoiceID:        cn.InvoiceID,
		Reason:           cn.Reason,
		Amount:           cn.Amount,
		GSTRate:          cn.GSTRate,
		GSTAmount:        cn.GSTAmount,
		TotalCredit:      cn.TotalCredit,
		Status:           string(cn.Status),
		Notes:            cn.Notes,
		CreatedAt:        cn.CreatedAt,
	}
}
