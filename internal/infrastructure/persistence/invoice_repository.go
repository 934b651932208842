package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// allocatedSumExpr is the active allocation sum for the current invoice row.
// Allocations of revoked receipts do not count toward settlement.
const allocatedSumExpr = `(SELECT COALESCE(SUM(ra.allocated_amount), 0)
	FROM receipt_allocations ra
	JOIN receipts r ON r.id = ra.receipt_id
	WHERE ra.invoice_id = invoices.id AND r.status <> 'Revoked')`

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Create persists the invoice and its line items in one transaction
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.NewConflictError("invoice number %s already exists", invoice.InvoiceNumber)
			}
			return err
		}
		return nil
	})
}

// Update replaces the invoice row and its line items wholesale
func (r *GormInvoiceRepository) Update(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", invoice.ID).
			Delete(&models.InvoiceLineItemModel{}).Error; err != nil {
			return err
		}
		if err := tx.Omit("LineItems").Save(model).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.NewConflictError("invoice number %s already exists", invoice.InvoiceNumber)
			}
			return err
		}
		if len(model.LineItems) > 0 {
			if err := tx.Create(&model.LineItems).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the invoice; line items cascade
func (r *GormInvoiceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).
			Delete(&models.InvoiceLineItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.InvoiceModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// FindByIDForTenant finds an invoice with its line items within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an invoice by its document number within a tenant
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_number = ?", tenantID, number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns invoices with their active allocation sums and the total row
// count. The status filter compares the allocation aggregate against the
// invoice total in SQL so pagination stays correct.
func (r *GormInvoiceRepository) List(ctx context.Context, tenantID uuid.UUID, filter billing.InvoiceListFilter) ([]billing.InvoiceWithBalance, int64, error) {
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := "invoice_date"
	switch filter.OrderBy {
	case "invoice_number", "due_date", "total", "created_at":
		orderBy = filter.OrderBy
	}
	orderDir := "DESC"
	if strings.ToLower(filter.OrderDir) == "asc" {
		orderDir = "ASC"
	}

	var invoiceModels []models.InvoiceModel
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}

	return r.withBalances(ctx, invoiceModels, total)
}

// PendingByCustomer returns invoices with outstanding > 0, oldest first
func (r *GormInvoiceRepository) PendingByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]billing.InvoiceWithBalance, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Where(allocatedSumExpr + " < invoices.total").
		Order("invoice_date ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}

	rows, _, err := r.withBalances(ctx, invoiceModels, 0)
	return rows, err
}

// SettledByCustomer returns fully allocated invoices with their non-cancelled
// credit note sums, newest first
func (r *GormInvoiceRepository) SettledByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]billing.InvoiceWithCredit, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Where(allocatedSumExpr + " >= invoices.total").
		Order("invoice_date DESC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	if len(invoiceModels) == 0 {
		return []billing.InvoiceWithCredit{}, nil
	}

	ids := make([]uuid.UUID, len(invoiceModels))
	for i, m := range invoiceModels {
		ids[i] = m.ID
	}

	credits, err := r.creditSums(ctx, ids)
	if err != nil {
		return nil, err
	}

	rows := make([]billing.InvoiceWithCredit, len(invoiceModels))
	for i, m := range invoiceModels {
		credit, ok := credits[m.ID]
		if !ok {
			credit = decimal.Zero
		}
		rows[i] = billing.InvoiceWithCredit{Invoice: *m.ToDomain(), CreditIssued: credit}
	}
	return rows, nil
}

// HighestNumber returns the highest invoice number matching the pattern
func (r *GormInvoiceRepository) HighestNumber(ctx context.Context, tenantID uuid.UUID, pattern string) (string, error) {
	var number string
	err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND invoice_number LIKE ?", tenantID, pattern).
		Select("COALESCE(MAX(invoice_number), '')").
		Scan(&number).Error
	return number, err
}

// CountByCustomer reports how many invoices reference the customer
func (r *GormInvoiceRepository) CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Count(&count).Error
	return count, err
}

// applyFilter applies list filters except pagination and ordering
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter billing.InvoiceListFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR reference_number ILIKE ?", pattern, pattern)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.DateFrom != nil {
		query = query.Where("invoice_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("invoice_date <= ?", *filter.DateTo)
	}
	if filter.Status != nil {
		today := filter.Today
		if today.IsZero() {
			today = time.Now()
		}
		day := today.Format("2006-01-02")
		switch *filter.Status {
		case billing.StatusPaid:
			query = query.Where(allocatedSumExpr + " >= invoices.total")
		case billing.StatusOverdue:
			query = query.Where(allocatedSumExpr+" < invoices.total AND invoices.due_date < ?", day)
		case billing.StatusPending:
			query = query.Where(allocatedSumExpr+" < invoices.total AND invoices.due_date >= ?", day)
		}
	}
	return query
}

// withBalances attaches active allocation sums to the given invoice rows
func (r *GormInvoiceRepository) withBalances(ctx context.Context, invoiceModels []models.InvoiceModel, total int64) ([]billing.InvoiceWithBalance, int64, error) {
	if len(invoiceModels) == 0 {
		return []billing.InvoiceWithBalance{}, total, nil
	}

	ids := make([]uuid.UUID, len(invoiceModels))
	for i, m := range invoiceModels {
		ids[i] = m.ID
	}

	type sumRow struct {
		InvoiceID uuid.UUID
		Paid      decimal.Decimal
	}
	var sums []sumRow
	if err := r.db.WithContext(ctx).
		Table("receipt_allocations ra").
		Select("ra.invoice_id AS invoice_id, COALESCE(SUM(ra.allocated_amount), 0) AS paid").
		Joins("JOIN receipts rc ON rc.id = ra.receipt_id").
		Where("ra.invoice_id IN ? AND rc.status <> ?", ids, billing.ReceiptStatusRevoked).
		Group("ra.invoice_id").
		Scan(&sums).Error; err != nil {
		return nil, 0, err
	}

	paidByInvoice := make(map[uuid.UUID]decimal.Decimal, len(sums))
	for _, s := range sums {
		paidByInvoice[s.InvoiceID] = s.Paid
	}

	rows := make([]billing.InvoiceWithBalance, len(invoiceModels))
	for i, m := range invoiceModels {
		paid, ok := paidByInvoice[m.ID]
		if !ok {
			paid = decimal.Zero
		}
		rows[i] = billing.InvoiceWithBalance{Invoice: *m.ToDomain(), PaidAmount: paid}
	}
	return rows, total, nil
}

// creditSums returns the non-cancelled credit note totals per invoice
func (r *GormInvoiceRepository) creditSums(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	type sumRow struct {
		InvoiceID uuid.UUID
		Credit    decimal.Decimal
	}
	var sums []sumRow
	if err := r.db.WithContext(ctx).
		Table("credit_notes").
		Select("invoice_id, COALESCE(SUM(total_credit), 0) AS credit").
		Where("invoice_id IN ? AND status <> ?", ids, billing.CreditNoteStatusCancelled).
		Group("invoice_id").
		Scan(&sums).Error; err != nil {
		return nil, err
	}

	credits := make(map[uuid.UUID]decimal.Decimal, len(sums))
	for _, s := range sums {
		credits[s.InvoiceID] = s.Credit
	}
	return credits, nil
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
