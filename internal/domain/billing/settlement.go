package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementStatus is the derived Paid/Pending/Overdue classification of an
// invoice. It is never stored; it is recomputed from allocation sums and the
// due date on every read.
type SettlementStatus string

const (
	StatusPending SettlementStatus = "Pending"
	StatusOverdue SettlementStatus = "Overdue"
	StatusPaid    SettlementStatus = "Paid"
)

// IsValid checks if the status is a valid SettlementStatus
func (s SettlementStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusOverdue, StatusPaid:
		return true
	}
	return false
}

// String returns the string representation of SettlementStatus
func (s SettlementStatus) String() string {
	return string(s)
}

// ResolveSettlementStatus derives the settlement status of an invoice from
// the sum of its active receipt allocations.
//
// Equality counts as fully Paid even when the due date has passed: payment
// extinguishes the obligation regardless of timing. Only the date component
// of today is significant.
func ResolveSettlementStatus(total, allocated decimal.Decimal, dueDate, today time.Time) SettlementStatus {
	if allocated.GreaterThanOrEqual(total) {
		return StatusPaid
	}
	if dueDate.Before(truncateToDay(today)) {
		return StatusOverdue
	}
	return StatusPending
}

// Outstanding returns the unpaid remainder of an invoice, never negative.
func Outstanding(total, allocated decimal.Decimal) decimal.Decimal {
	out := total.Sub(allocated)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
