package billing

import (
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a customer paid
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodUPI          PaymentMethod = "upi"
	PaymentMethodCard         PaymentMethod = "card"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodCheque, PaymentMethodCash,
		PaymentMethodUPI, PaymentMethodCard:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// ReceiptStatus tracks whether a receipt's allocations count toward
// settlement. Allocations of a revoked receipt are inactive.
type ReceiptStatus string

const (
	ReceiptStatusCompleted ReceiptStatus = "Completed"
	ReceiptStatusRevoked   ReceiptStatus = "Revoked"
)

// smallestCurrencyUnit is the minimum receivable amount (one paisa).
var smallestCurrencyUnit = decimal.New(1, -2)

// AllocationDraft is the caller-supplied request to apply part of a
// receipt against one invoice.
type AllocationDraft struct {
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
}

// ReceiptAllocation links exactly one receipt to exactly one invoice.
type ReceiptAllocation struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	ReceiptID       uuid.UUID       `json:"receipt_id"`
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Receipt records a customer payment and owns its allocations, which are
// cascade-deleted with it.
type Receipt struct {
	shared.TenantEntity
	ReceiptNumber string              `json:"receipt_number"`
	ReceiptDate   time.Time           `json:"receipt_date"`
	CustomerID    uuid.UUID           `json:"customer_id"`
	PaymentMethod PaymentMethod       `json:"payment_method"`
	Amount        decimal.Decimal     `json:"amount"`
	Status        ReceiptStatus       `json:"status"`
	Notes         string              `json:"notes"`
	Allocations   []ReceiptAllocation `json:"allocations"`
}

// NewReceipt creates a receipt together with its allocations, enforcing the
// receipt-level invariants:
//
//   - receipt date not in the future
//   - amount at least the smallest currency unit
//   - valid payment method
//   - at least one allocation, each positive, no invoice referenced twice
//   - sum of allocations does not exceed the amount received
//
// The per-invoice outstanding check requires current allocation sums and is
// enforced separately via ValidateAllocationsAgainstOutstanding inside the
// write transaction.
func NewReceipt(
	tenantID uuid.UUID,
	receiptNumber string,
	customerID uuid.UUID,
	receiptDate time.Time,
	paymentMethod PaymentMethod,
	amount decimal.Decimal,
	notes string,
	drafts []AllocationDraft,
	now time.Time,
) (*Receipt, error) {
	if receiptNumber == "" {
		return nil, shared.NewValidationError("receipt number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer is required")
	}
	if receiptDate.IsZero() {
		return nil, shared.NewValidationError("receipt date is required")
	}
	if receiptDate.After(now) {
		return nil, shared.NewValidationError("receipt date cannot be in the future")
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewValidationError("invalid payment method %q", paymentMethod)
	}
	if amount.LessThan(smallestCurrencyUnit) {
		return nil, shared.NewValidationError("amount received must be at least %s", smallestCurrencyUnit.StringFixed(2))
	}
	if len(drafts) == 0 {
		return nil, shared.NewValidationError("at least one allocation is required")
	}

	r := &Receipt{
		TenantEntity:  shared.NewTenantEntity(tenantID),
		ReceiptNumber: receiptNumber,
		ReceiptDate:   receiptDate,
		CustomerID:    customerID,
		PaymentMethod: paymentMethod,
		Amount:        amount,
		Status:        ReceiptStatusCompleted,
		Notes:         notes,
	}

	seen := make(map[uuid.UUID]struct{}, len(drafts))
	totalAllocated := decimal.Zero
	for i, d := range drafts {
		if d.InvoiceID == uuid.Nil {
			return nil, shared.NewValidationError("allocation %d: invoice is required", i+1)
		}
		if _, dup := seen[d.InvoiceID]; dup {
			return nil, shared.NewValidationError("allocation %d: invoice referenced more than once", i+1)
		}
		seen[d.InvoiceID] = struct{}{}
		if !d.Amount.IsPositive() {
			return nil, shared.NewValidationError("allocation %d: amount must be positive", i+1)
		}
		totalAllocated = totalAllocated.Add(d.Amount)
		r.Allocations = append(r.Allocations, ReceiptAllocation{
			ID:              uuid.New(),
			TenantID:        tenantID,
			ReceiptID:       r.ID,
			InvoiceID:       d.InvoiceID,
			AllocatedAmount: d.Amount,
			CreatedAt:       r.CreatedAt,
		})
	}

	if totalAllocated.GreaterThan(amount) {
		return nil, shared.NewValidationError(
			"total allocations (%s) exceed amount received (%s)",
			totalAllocated.StringFixed(2), amount.StringFixed(2))
	}

	return r, nil
}

// AllocatedTotal returns the sum of the receipt's allocations.
func (r *Receipt) AllocatedTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, a := range r.Allocations {
		sum = sum.Add(a.AllocatedAmount)
	}
	return sum
}

// UnappliedAmount returns the informational remainder of the receipt not
// allocated to any invoice.
func (r *Receipt) UnappliedAmount() decimal.Decimal {
	return r.Amount.Sub(r.AllocatedTotal())
}

// InvoiceBalanceReader supplies the current totals needed to validate a new
// allocation set. Totals and allocated sums must come from the same
// transactionally consistent snapshot, with the invoices locked against
// concurrent allocation writes.
type InvoiceBalanceReader interface {
	// InvoiceTotal returns the invoice total, and reports whether the
	// invoice exists for the receipt's tenant and customer.
	InvoiceTotal(invoiceID uuid.UUID) (decimal.Decimal, bool)
	// AllocatedSum returns the sum of active allocations already recorded
	// against the invoice, excluding this receipt.
	AllocatedSum(invoiceID uuid.UUID) decimal.Decimal
}

// ValidateAllocationsAgainstOutstanding enforces the per-invoice
// non-overpayment invariant for a new receipt:
//
//	for each allocation: 0 < amount ≤ invoice.total − existing allocations
//
// A fully paid invoice (outstanding ≤ 0) rejects any further allocation.
// Called inside the write transaction after the invoices are locked, so the
// check-then-act is atomic under concurrency.
func ValidateAllocationsAgainstOutstanding(r *Receipt, balances InvoiceBalanceReader) error {
	for _, a := range r.Allocations {
		total, ok := balances.InvoiceTotal(a.InvoiceID)
		if !ok {
			return shared.NewValidationError("invalid invoice reference")
		}
		outstanding := total.Sub(balances.AllocatedSum(a.InvoiceID))
		if outstanding.LessThanOrEqual(decimal.Zero) {
			return shared.NewValidationError("invoice already fully paid")
		}
		if a.AllocatedAmount.GreaterThan(outstanding) {
			return shared.NewValidationError(
				"allocation %s exceeds outstanding amount %s",
				a.AllocatedAmount.StringFixed(2), outstanding.StringFixed(2))
		}
	}
	return nil
}
