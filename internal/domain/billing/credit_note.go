package billing

import (
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditNoteStatus represents the lifecycle of a credit note
type CreditNoteStatus string

const (
	CreditNoteStatusIssued    CreditNoteStatus = "Issued"
	CreditNoteStatusCancelled CreditNoteStatus = "Cancelled"
)

// IsValid checks if the status is a valid CreditNoteStatus
func (s CreditNoteStatus) IsValid() bool {
	return s == CreditNoteStatusIssued || s == CreditNoteStatusCancelled
}

// CreditNote is a reduction of a customer's payable balance, optionally
// tied to one invoice. Credit notes cap future credit issuance against that
// invoice; they do not feed the settlement status resolver.
type CreditNote struct {
	shared.TenantEntity
	CreditNoteNumber string           `json:"credit_note_number"`
	CreditNoteDate   time.Time        `json:"credit_note_date"`
	CustomerID       uuid.UUID        `json:"customer_id"`
	InvoiceID        *uuid.UUID       `json:"invoice_id,omitempty"`
	Reason           string           `json:"reason"`
	Amount           decimal.Decimal  `json:"amount"`
	GSTRate          decimal.Decimal  `json:"gst_rate"`
	GSTAmount        decimal.Decimal  `json:"gst_amount"`
	TotalCredit      decimal.Decimal  `json:"total_credit"`
	Status           CreditNoteStatus `json:"status"`
	Notes            string           `json:"notes"`
}

// NewCreditNote creates an issued credit note, deriving
// gst_amount = round(amount × gstRate/100, 2) and
// total_credit = amount + gst_amount.
func NewCreditNote(
	tenantID uuid.UUID,
	creditNoteNumber string,
	customerID uuid.UUID,
	creditNoteDate time.Time,
	invoiceID *uuid.UUID,
	reason string,
	amount decimal.Decimal,
	gstRate decimal.Decimal,
	notes string,
) (*CreditNote, error) {
	if creditNoteNumber == "" {
		return nil, shared.NewValidationError("credit note number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer is required")
	}
	if creditNoteDate.IsZero() {
		return nil, shared.NewValidationError("credit note date is required")
	}
	if reason == "" {
		return nil, shared.NewValidationError("reason is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("amount must be positive")
	}
	if gstRate.IsNegative() || gstRate.GreaterThan(decimalHundred) {
		return nil, shared.NewValidationError("gst rate must be between 0 and 100")
	}
	if invoiceID != nil && *invoiceID == uuid.Nil {
		return nil, shared.NewValidationError("invalid invoice reference")
	}

	gstAmount := valueobject.ApplyPercent(amount, gstRate)
	return &CreditNote{
		TenantEntity:     shared.NewTenantEntity(tenantID),
		CreditNoteNumber: creditNoteNumber,
		CreditNoteDate:   creditNoteDate,
		CustomerID:       customerID,
		InvoiceID:        invoiceID,
		Reason:           reason,
		Amount:           amount,
		GSTRate:          gstRate,
		GSTAmount:        gstAmount,
		TotalCredit:      amount.Add(gstAmount),
		Status:           CreditNoteStatusIssued,
		Notes:            notes,
	}, nil
}

// Cancel marks the credit note cancelled. Cancelled notes no longer count
// toward an invoice's credit cap.
func (cn *CreditNote) Cancel() error {
	if cn.Status == CreditNoteStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Credit note is already cancelled")
	}
	cn.Status = CreditNoteStatusCancelled
	cn.UpdatedAt = time.Now()
	return nil
}

// ValidateCreditAgainstInvoice enforces the credit cap invariant for a new
// credit note tied to an invoice:
//
//	existing non-cancelled credits + this total_credit ≤ invoice total
//
// The boundary is inclusive: crediting an invoice exactly up to its total is
// allowed. Called inside the write transaction with the invoice locked.
func ValidateCreditAgainstInvoice(cn *CreditNote, invoiceTotal, existingCredits decimal.Decimal) error {
	if existingCredits.Add(cn.TotalCredit).GreaterThan(invoiceTotal) {
		return shared.NewValidationError(
			"total credits (%s) would exceed invoice total (%s)",
			existingCredits.Add(cn.TotalCredit).StringFixed(2), invoiceTotal.StringFixed(2))
	}
	return nil
}
