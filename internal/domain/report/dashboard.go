package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardSummary aggregates the tenant's billing position as of a date.
// All figures are derived from the ledger at read time; nothing here is
// stored.
type DashboardSummary struct {
	TotalInvoiced    decimal.Decimal `json:"total_invoiced"`
	TotalCollected   decimal.Decimal `json:"total_collected"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalCredited    decimal.Decimal `json:"total_credited"`
	OverdueCount     int64           `json:"overdue_count"`
	OverdueAmount    decimal.Decimal `json:"overdue_amount"`
	InvoiceCount     int64           `json:"invoice_count"`
	ReceiptCount     int64           `json:"receipt_count"`
	CustomerCount    int64           `json:"customer_count"`
}

// MonthlyRevenue is one bar of the collections-by-month chart.
type MonthlyRevenue struct {
	Year      int             `json:"year"`
	Month     time.Month      `json:"month"`
	Invoiced  decimal.Decimal `json:"invoiced"`
	Collected decimal.Decimal `json:"collected"`
}

// TopDebtor is a customer ranked by outstanding balance.
type TopDebtor struct {
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Outstanding  decimal.Decimal `json:"outstanding"`
}

// DashboardRepository reads aggregate figures straight from the ledger.
type DashboardRepository interface {
	Summary(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*DashboardSummary, error)
	MonthlyRevenue(ctx context.Context, tenantID uuid.UUID, months int, asOf time.Time) ([]MonthlyRevenue, error)
	TopDebtors(ctx context.Context, tenantID uuid.UUID, limit int) ([]TopDebtor, error)
}
