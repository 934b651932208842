package persistence

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/report"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormDashboardRepository reads aggregate dashboard figures straight from
// the billing tables
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewGormDashboardRepository creates a new GormDashboardRepository
func NewGormDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// Summary aggregates the tenant's billing position as of the given date
func (r *GormDashboardRepository) Summary(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*report.DashboardSummary, error) {
	summary := &report.DashboardSummary{
		TotalInvoiced:    decimal.Zero,
		TotalCollected:   decimal.Zero,
		TotalOutstanding: decimal.Zero,
		TotalCredited:    decimal.Zero,
		OverdueAmount:    decimal.Zero,
	}

	type invoiceTotals struct {
		Invoiced decimal.Decimal
		Count    int64
	}
	var inv invoiceTotals
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Select("COALESCE(SUM(total), 0) AS invoiced, COUNT(*) AS count").
		Where("tenant_id = ?", tenantID).
		Scan(&inv).Error; err != nil {
		return nil, err
	}
	summary.TotalInvoiced = inv.Invoiced
	summary.InvoiceCount = inv.Count

	var collected decimal.Decimal
	if err := r.db.WithContext(ctx).
		Table("receipt_allocations ra").
		Select("COALESCE(SUM(ra.allocated_amount), 0)").
		Joins("JOIN receipts rc ON rc.id = ra.receipt_id").
		Where("ra.tenant_id = ? AND rc.status <> ?", tenantID, billing.ReceiptStatusRevoked).
		Scan(&collected).Error; err != nil {
		return nil, err
	}
	summary.TotalCollected = collected
	summary.TotalOutstanding = summary.TotalInvoiced.Sub(collected)

	if err := r.db.WithContext(ctx).Model(&models.CreditNoteModel{}).
		Select("COALESCE(SUM(total_credit), 0)").
		Where("tenant_id = ? AND status <> ?", tenantID, billing.CreditNoteStatusCancelled).
		Scan(&summary.TotalCredited).Error; err != nil {
		return nil, err
	}

	type overdueRow struct {
		Count  int64
		Amount decimal.Decimal
	}
	var overdue overdueRow
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Select("COUNT(*) AS count, COALESCE(SUM(invoices.total - "+allocatedSumExpr+"), 0) AS amount").
		Where("tenant_id = ? AND due_date < ?", tenantID, asOf.Format("2006-01-02")).
		Where(allocatedSumExpr + " < invoices.total").
		Scan(&overdue).Error; err != nil {
		return nil, err
	}
	summary.OverdueCount = overdue.Count
	summary.OverdueAmount = overdue.Amount

	if err := r.db.WithContext(ctx).Model(&models.ReceiptModel{}).
		Where("tenant_id = ? AND status <> ?", tenantID, billing.ReceiptStatusRevoked).
		Count(&summary.ReceiptCount).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(&models.CustomerModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&summary.CustomerCount).Error; err != nil {
		return nil, err
	}

	return summary, nil
}

// MonthlyRevenue returns invoiced vs collected totals for the trailing months,
// oldest month first
func (r *GormDashboardRepository) MonthlyRevenue(ctx context.Context, tenantID uuid.UUID, months int, asOf time.Time) ([]report.MonthlyRevenue, error) {
	// Month boundaries are computed here rather than in SQL so the query
	// stays portable across postgres and sqlite.
	first := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, -(months - 1), 0)

	rows := make([]report.MonthlyRevenue, months)
	for i := range rows {
		m := start.AddDate(0, i, 0)
		rows[i] = report.MonthlyRevenue{
			Year:      m.Year(),
			Month:     m.Month(),
			Invoiced:  decimal.Zero,
			Collected: decimal.Zero,
		}
	}
	index := func(t time.Time) int {
		return (t.Year()-start.Year())*12 + int(t.Month()) - int(start.Month())
	}

	type invoiceRow struct {
		InvoiceDate time.Time
		Total       decimal.Decimal
	}
	var invoiceRows []invoiceRow
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Select("invoice_date, total").
		Where("tenant_id = ? AND invoice_date >= ?", tenantID, start).
		Scan(&invoiceRows).Error; err != nil {
		return nil, err
	}
	for _, row := range invoiceRows {
		if i := index(row.InvoiceDate); i >= 0 && i < months {
			rows[i].Invoiced = rows[i].Invoiced.Add(row.Total)
		}
	}

	type receiptRow struct {
		ReceiptDate time.Time
		Amount      decimal.Decimal
	}
	var receiptRows []receiptRow
	if err := r.db.WithContext(ctx).Model(&models.ReceiptModel{}).
		Select("receipt_date, amount").
		Where("tenant_id = ? AND status <> ? AND receipt_date >= ?",
			tenantID, billing.ReceiptStatusRevoked, start).
		Scan(&receiptRows).Error; err != nil {
		return nil, err
	}
	for _, row := range receiptRows {
		if i := index(row.ReceiptDate); i >= 0 && i < months {
			rows[i].Collected = rows[i].Collected.Add(row.Amount)
		}
	}

	return rows, nil
}

// TopDebtors returns the customers with the largest outstanding balances
func (r *GormDashboardRepository) TopDebtors(ctx context.Context, tenantID uuid.UUID, limit int) ([]report.TopDebtor, error) {
	type debtorRow struct {
		CustomerID   uuid.UUID
		CustomerName string
		Outstanding  decimal.Decimal
	}
	var debtorRows []debtorRow
	if err := r.db.WithContext(ctx).
		Table("invoices").
		Select("invoices.customer_id AS customer_id, customers.name AS customer_name, "+
			"SUM(invoices.total - "+allocatedSumExpr+") AS outstanding").
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Where("invoices.tenant_id = ?", tenantID).
		Group("invoices.customer_id, customers.name").
		Having("SUM(invoices.total - " + allocatedSumExpr + ") > 0").
		Order("outstanding DESC").
		Limit(limit).
		Scan(&debtorRows).Error; err != nil {
		return nil, err
	}

	debtors := make([]report.TopDebtor, len(debtorRows))
	for i, row := range debtorRows {
		debtors[i] = report.TopDebtor{
			CustomerID:   row.CustomerID,
			CustomerName: row.CustomerName,
			Outstanding:  row.Outstanding,
		}
	}
	return debtors, nil
}

// Ensure GormDashboardRepository implements DashboardRepository
var _ report.DashboardRepository = (*GormDashboardRepository)(nil)
