package billing

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceListFilter holds invoice list query parameters. Status filtering is
// performed in SQL against the allocation aggregate, not post-filtered in
// memory.
type InvoiceListFilter struct {
	shared.Filter
	Status     *SettlementStatus
	CustomerID *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
	Today      time.Time
}

// ReceiptListFilter holds receipt list query parameters.
type ReceiptListFilter struct {
	shared.Filter
	CustomerID    *uuid.UUID
	PaymentMethod *PaymentMethod
	DateFrom      *time.Time
	DateTo        *time.Time
}

// CreditNoteListFilter holds credit note list query parameters.
type CreditNoteListFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	InvoiceID  *uuid.UUID
	Reason     string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// InvoiceWithBalance pairs an invoice with its active allocation sum, read
// from one consistent snapshot.
type InvoiceWithBalance struct {
	Invoice    Invoice
	PaidAmount decimal.Decimal
}

// InvoiceWithCredit pairs an invoice with the sum of its non-cancelled
// credit notes.
type InvoiceWithCredit struct {
	Invoice      Invoice
	CreditIssued decimal.Decimal
}

// InvoiceRepository is the ledger access for invoices and their line items.
// Implementations must scope every query by tenant and keep invoice +
// line-item writes atomic.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *Invoice) error
	// Update replaces the invoice row and its line items wholesale in one
	// transaction.
	Update(ctx context.Context, invoice *Invoice) error
	// Delete removes the invoice and cascades to its line items. Callers
	// must have verified the zero-reference guard first.
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Invoice, error)
	// List returns invoices with their active allocation sums and the total
	// row count for pagination. Status filters compare
	// SUM(allocated_amount) against invoices.total in SQL.
	List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]InvoiceWithBalance, int64, error)
	// PendingByCustomer returns invoices with outstanding > 0, oldest
	// invoice date first.
	PendingByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]InvoiceWithBalance, error)
	// SettledByCustomer returns fully allocated invoices with their credit
	// sums, newest invoice date first. Rows with no remaining credit room
	// are excluded by the caller.
	SettledByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]InvoiceWithCredit, error)
	// HighestNumber returns the lexicographically highest invoice number
	// matching the LIKE pattern for the tenant, or "" when none exists.
	HighestNumber(ctx context.Context, tenantID uuid.UUID, pattern string) (string, error)
	// CountByCustomer reports how many invoices reference the customer,
	// used for the customer RESTRICT delete guard.
	CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)
}

// ReceiptRepository is the ledger access for receipts and allocations.
type ReceiptRepository interface {
	// CreateWithAllocations persists the receipt and all its allocations in
	// a single transaction. Before writing it locks every referenced
	// invoice row, re-reads the active allocation sums, and calls validate
	// with a transactionally consistent InvoiceBalanceReader; a non-nil
	// error rolls back the whole batch. Affected invoices get their
	// updated_at touched in the same transaction. On success it returns the
	// allocated invoices' document numbers in allocation order, read from
	// the locked rows.
	CreateWithAllocations(ctx context.Context, receipt *Receipt, validate func(InvoiceBalanceReader) error) ([]string, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Receipt, error)
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Receipt, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ReceiptListFilter) ([]Receipt, int64, error)
	// SumActiveByInvoice returns the sum of allocations against the invoice
	// belonging to non-revoked receipts.
	SumActiveByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
	// SumByReceipt returns the sum of the receipt's own allocations.
	SumByReceipt(ctx context.Context, receiptID uuid.UUID) (decimal.Decimal, error)
	// CountAllocationsByInvoice reports how many allocation rows reference
	// the invoice, used for the invoice mutation guards.
	CountAllocationsByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error)
	CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)
	HighestNumber(ctx context.Context, tenantID uuid.UUID, pattern string) (string, error)
}

// CreditNoteRepository is the ledger access for credit notes.
type CreditNoteRepository interface {
	// Create persists the credit note. When the note references an invoice,
	// the implementation locks that invoice row, re-reads the non-cancelled
	// credit sum, and calls validate with (invoiceTotal, existingCredits)
	// inside the same transaction; a non-nil error rolls back.
	Create(ctx context.Context, note *CreditNote, validate func(invoiceTotal, existingCredits decimal.Decimal) error) error
	Update(ctx context.Context, note *CreditNote) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CreditNote, error)
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*CreditNote, error)
	List(ctx context.Context, tenantID uuid.UUID, filter CreditNoteListFilter) ([]CreditNote, int64, error)
	// SumActiveByInvoice returns the sum of total_credit over non-cancelled
	// credit notes referencing the invoice.
	SumActiveByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
	CountByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error)
	CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)
	HighestNumber(ctx context.Context, tenantID uuid.UUID, pattern string) (string, error)
}
