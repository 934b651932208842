package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestResolveSettlementStatus(t *testing.T) {
	due := date(2026, 3, 15)

	t.Run("no allocations before due date is pending", func(t *testing.T) {
		status := ResolveSettlementStatus(d("236.00"), decimal.Zero, due, date(2026, 3, 1))
		assert.Equal(t, StatusPending, status)
	})

	t.Run("partial allocation before due date is pending", func(t *testing.T) {
		status := ResolveSettlementStatus(d("236.00"), d("100.00"), due, date(2026, 3, 1))
		assert.Equal(t, StatusPending, status)
	})

	t.Run("partial allocation past due date is overdue", func(t *testing.T) {
		status := ResolveSettlementStatus(d("236.00"), d("100.00"), due, date(2026, 3, 16))
		assert.Equal(t, StatusOverdue, status)
	})

	t.Run("fully allocated past due date is paid", func(t *testing.T) {
		status := ResolveSettlementStatus(d("236.00"), d("236.00"), due, date(2026, 4, 1))
		assert.Equal(t, StatusPaid, status)
	})

	t.Run("allocation equal to total counts as paid", func(t *testing.T) {
		status := ResolveSettlementStatus(d("500.00"), d("500.00"), due, date(2026, 3, 1))
		assert.Equal(t, StatusPaid, status)
	})

	t.Run("due date today is still pending", func(t *testing.T) {
		status := ResolveSettlementStatus(d("236.00"), decimal.Zero, due, due)
		assert.Equal(t, StatusPending, status)
	})

	t.Run("time of day on today is ignored", func(t *testing.T) {
		lateOnDueDate := time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC)
		status := ResolveSettlementStatus(d("236.00"), decimal.Zero, due, lateOnDueDate)
		assert.Equal(t, StatusPending, status)
	})
}

func TestOutstanding(t *testing.T) {
	t.Run("returns unpaid remainder", func(t *testing.T) {
		assert.True(t, Outstanding(d("236.00"), d("100.00")).Equal(d("136.00")))
	})

	t.Run("fully paid invoice has zero outstanding", func(t *testing.T) {
		assert.True(t, Outstanding(d("236.00"), d("236.00")).IsZero())
	})

	t.Run("never negative", func(t *testing.T) {
		assert.True(t, Outstanding(d("100.00"), d("150.00")).IsZero())
	})
}
