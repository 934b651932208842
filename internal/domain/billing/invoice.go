package billing

import (
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemDraft is the caller-supplied input for one invoice line.
// Derived amounts are computed by ComputeLineItems, never accepted from
// the caller.
type LineItemDraft struct {
	ServiceTypeID uuid.UUID
	Description   string
	Quantity      decimal.Decimal
	Rate          decimal.Decimal
	TaxRate       decimal.Decimal
}

// InvoiceLineItem is owned exclusively by one invoice and cascade-deleted
// with it.
type InvoiceLineItem struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	ServiceTypeID uuid.UUID       `json:"service_type_id"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	Rate          decimal.Decimal `json:"rate"`
	Amount        decimal.Decimal `json:"amount"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	Total         decimal.Decimal `json:"total"`
}

// InvoiceTotals holds the computed money columns of an invoice.
type InvoiceTotals struct {
	Subtotal decimal.Decimal
	TaxTotal decimal.Decimal
	Total    decimal.Decimal
}

var (
	decimalOne     = decimal.NewFromInt(1)
	decimalHundred = decimal.NewFromInt(100)
)

// ComputeLineItems validates the drafts and derives per-line and invoice
// totals. For each line: amount = round(quantity × rate, 2),
// tax_amount = round(amount × taxRate/100, 2), total = amount + tax_amount.
// Invoice subtotal/tax_total/total are the respective sums.
//
// Pure over its inputs; the caller persists the result. Invoked identically
// on create and update (line items are replaced wholesale).
func ComputeLineItems(invoiceID uuid.UUID, drafts []LineItemDraft) ([]InvoiceLineItem, InvoiceTotals, error) {
	if len(drafts) == 0 {
		return nil, InvoiceTotals{}, shared.NewValidationError("invoice requires at least one line item")
	}

	items := make([]InvoiceLineItem, 0, len(drafts))
	totals := InvoiceTotals{Subtotal: decimal.Zero, TaxTotal: decimal.Zero, Total: decimal.Zero}

	for i, d := range drafts {
		if d.Quantity.LessThan(decimalOne) {
			return nil, InvoiceTotals{}, shared.NewValidationError("line item %d: quantity must be at least 1", i+1)
		}
		if d.Rate.IsNegative() {
			return nil, InvoiceTotals{}, shared.NewValidationError("line item %d: rate cannot be negative", i+1)
		}
		if d.TaxRate.IsNegative() || d.TaxRate.GreaterThan(decimalHundred) {
			return nil, InvoiceTotals{}, shared.NewValidationError("line item %d: tax rate must be between 0 and 100", i+1)
		}

		amount := valueobject.RoundAmount(d.Quantity.Mul(d.Rate))
		taxAmount := valueobject.ApplyPercent(amount, d.TaxRate)

		items = append(items, InvoiceLineItem{
			ID:            uuid.New(),
			InvoiceID:     invoiceID,
			ServiceTypeID: d.ServiceTypeID,
			Description:   d.Description,
			Quantity:      d.Quantity,
			Rate:          d.Rate,
			Amount:        amount,
			TaxRate:       d.TaxRate,
			TaxAmount:     taxAmount,
			Total:         amount.Add(taxAmount),
		})

		totals.Subtotal = totals.Subtotal.Add(amount)
		totals.TaxTotal = totals.TaxTotal.Add(taxAmount)
	}

	totals.Total = totals.Subtotal.Add(totals.TaxTotal)
	return items, totals, nil
}

// Invoice is the tenant-scoped invoice aggregate root. Its settlement
// status is not a field: see ResolveSettlementStatus.
type Invoice struct {
	shared.TenantEntity
	InvoiceNumber   string            `json:"invoice_number"`
	InvoiceDate     time.Time         `json:"invoice_date"`
	DueDate         time.Time         `json:"due_date"`
	CustomerID      uuid.UUID         `json:"customer_id"`
	ReferenceNumber string            `json:"reference_number"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	TaxTotal        decimal.Decimal   `json:"tax_total"`
	Total           decimal.Decimal   `json:"total"`
	Notes           string            `json:"notes"`
	LineItems       []InvoiceLineItem `json:"line_items"`
}

// NewInvoice creates a new invoice with its line items, computing all
// derived totals.
func NewInvoice(
	tenantID uuid.UUID,
	invoiceNumber string,
	customerID uuid.UUID,
	invoiceDate time.Time,
	dueDate time.Time,
	referenceNumber string,
	notes string,
	drafts []LineItemDraft,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewValidationError("invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewValidationError("invoice number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer is required")
	}
	if invoiceDate.IsZero() || dueDate.IsZero() {
		return nil, shared.NewValidationError("invoice date and due date are required")
	}
	if dueDate.Before(invoiceDate) {
		return nil, shared.NewValidationError("due date cannot be before invoice date")
	}

	inv := &Invoice{
		TenantEntity:    shared.NewTenantEntity(tenantID),
		InvoiceNumber:   invoiceNumber,
		InvoiceDate:     invoiceDate,
		DueDate:         dueDate,
		CustomerID:      customerID,
		ReferenceNumber: referenceNumber,
		Notes:           notes,
	}

	items, totals, err := ComputeLineItems(inv.ID, drafts)
	if err != nil {
		return nil, err
	}
	inv.LineItems = items
	inv.Subtotal = totals.Subtotal
	inv.TaxTotal = totals.TaxTotal
	inv.Total = totals.Total
	return inv, nil
}

// ReplaceLineItems swaps the invoice's line items wholesale and recomputes
// totals. Callers must have verified the invoice carries no allocations or
// credit notes before mutating it.
func (inv *Invoice) ReplaceLineItems(drafts []LineItemDraft) error {
	items, totals, err := ComputeLineItems(inv.ID, drafts)
	if err != nil {
		return err
	}
	inv.LineItems = items
	inv.Subtotal = totals.Subtotal
	inv.TaxTotal = totals.TaxTotal
	inv.Total = totals.Total
	inv.UpdatedAt = time.Now()
	return nil
}

// Status derives the settlement status given the invoice's active
// allocation sum.
func (inv *Invoice) Status(allocated decimal.Decimal, today time.Time) SettlementStatus {
	return ResolveSettlementStatus(inv.Total, allocated, inv.DueDate, today)
}

// Outstanding returns the invoice's unpaid remainder given its active
// allocation sum.
func (inv *Invoice) Outstanding(allocated decimal.Decimal) decimal.Decimal {
	return Outstanding(inv.Total, allocated)
}
