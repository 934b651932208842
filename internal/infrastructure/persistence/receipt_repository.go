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
	"gorm.io/gorm/clause"
)

// GormReceiptRepository implements ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// txBalanceReader reads invoice totals and allocation sums from the write
// transaction, after the invoice rows are locked. It satisfies
// billing.InvoiceBalanceReader for the in-transaction validation callback.
type txBalanceReader struct {
	totals    map[uuid.UUID]decimal.Decimal
	allocated map[uuid.UUID]decimal.Decimal
}

func (b txBalanceReader) InvoiceTotal(invoiceID uuid.UUID) (decimal.Decimal, bool) {
	total, ok := b.totals[invoiceID]
	return total, ok
}

func (b txBalanceReader) AllocatedSum(invoiceID uuid.UUID) decimal.Decimal {
	if sum, ok := b.allocated[invoiceID]; ok {
		return sum
	}
	return decimal.Zero
}

// CreateWithAllocations persists the receipt and its allocations atomically.
// The referenced invoice rows are locked first, the active allocation sums
// re-read inside the transaction, and validate decides whether the batch
// commits. Affected invoices get their updated_at touched so list caches see
// the settlement change. The allocated invoices' numbers come back in
// allocation order for the create response.
func (r *GormReceiptRepository) CreateWithAllocations(ctx context.Context, receipt *billing.Receipt, validate func(billing.InvoiceBalanceReader) error) ([]string, error) {
	var invoiceNumbers []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoiceIDs := make([]uuid.UUID, len(receipt.Allocations))
		for i, a := range receipt.Allocations {
			invoiceIDs[i] = a.InvoiceID
		}

		invoiceQuery := tx.Model(&models.InvoiceModel{}).
			Where("tenant_id = ? AND customer_id = ? AND id IN ?",
				receipt.TenantID, receipt.CustomerID, invoiceIDs)
		if tx.Dialector.Name() == "postgres" {
			invoiceQuery = invoiceQuery.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var invoices []models.InvoiceModel
		if err := invoiceQuery.Find(&invoices).Error; err != nil {
			return err
		}

		reader := txBalanceReader{
			totals:    make(map[uuid.UUID]decimal.Decimal, len(invoices)),
			allocated: make(map[uuid.UUID]decimal.Decimal, len(invoices)),
		}
		for _, inv := range invoices {
			reader.totals[inv.ID] = inv.Total
		}

		type sumRow struct {
			InvoiceID uuid.UUID
			Paid      decimal.Decimal
		}
		var sums []sumRow
		if err := tx.
			Table("receipt_allocations ra").
			Select("ra.invoice_id AS invoice_id, COALESCE(SUM(ra.allocated_amount), 0) AS paid").
			Joins("JOIN receipts rc ON rc.id = ra.receipt_id").
			Where("ra.invoice_id IN ? AND rc.status <> ?", invoiceIDs, billing.ReceiptStatusRevoked).
			Group("ra.invoice_id").
			Scan(&sums).Error; err != nil {
			return err
		}
		for _, s := range sums {
			reader.allocated[s.InvoiceID] = s.Paid
		}

		if err := validate(reader); err != nil {
			return err
		}

		model := models.ReceiptModelFromDomain(receipt)
		if err := tx.Create(model).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.NewConflictError("receipt number %s already exists", receipt.ReceiptNumber)
			}
			return err
		}

		numberByID := make(map[uuid.UUID]string, len(invoices))
		for _, inv := range invoices {
			numberByID[inv.ID] = inv.InvoiceNumber
		}
		invoiceNumbers = make([]string, len(receipt.Allocations))
		for i, a := range receipt.Allocations {
			invoiceNumbers[i] = numberByID[a.InvoiceID]
		}

		return tx.Model(&models.InvoiceModel{}).
			Where("id IN ?", invoiceIDs).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return invoiceNumbers, nil
}

// FindByIDForTenant finds a receipt with its allocations within a tenant
func (r *GormReceiptRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Receipt, error) {
	var model models.ReceiptModel
	if err := r.db.WithContext(ctx).
		Preload("Allocations").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a receipt by its document number within a tenant
func (r *GormReceiptRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*billing.Receipt, error) {
	var model models.ReceiptModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND receipt_number = ?", tenantID, number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns receipts matching the filter with the total row count
func (r *GormReceiptRepository) List(ctx context.Context, tenantID uuid.UUID, filter billing.ReceiptListFilter) ([]billing.Receipt, int64, error) {
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.ReceiptModel{}).Where("tenant_id = ?", tenantID)
	if filter.Search != "" {
		query = query.Where("receipt_number ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *filter.PaymentMethod)
	}
	if filter.DateFrom != nil {
		query = query.Where("receipt_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("receipt_date <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderDir := "DESC"
	if strings.ToLower(filter.OrderDir) == "asc" {
		orderDir = "ASC"
	}

	var receiptModels []models.ReceiptModel
	if err := query.
		Preload("Allocations").
		Order("receipt_date " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&receiptModels).Error; err != nil {
		return nil, 0, err
	}

	receipts := make([]billing.Receipt, len(receiptModels))
	for i, m := range receiptModels {
		receipts[i] = *m.ToDomain()
	}
	return receipts, total, nil
}

// SumActiveByInvoice returns the allocation sum against the invoice over
// non-revoked receipts
func (r *GormReceiptRepository) SumActiveByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Table("receipt_allocations ra").
		Select("COALESCE(SUM(ra.allocated_amount), 0)").
		Joins("JOIN receipts rc ON rc.id = ra.receipt_id").
		Where("ra.invoice_id = ? AND rc.status <> ?", invoiceID, billing.ReceiptStatusRevoked).
		Scan(&sum).Error
	return sum, err
}

// SumByReceipt returns the sum of the receipt's own allocations
func (r *GormReceiptRepository) SumByReceipt(ctx context.Context, receiptID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.ReceiptAllocationModel{}).
		Select("COALESCE(SUM(allocated_amount), 0)").
		Where("receipt_id = ?", receiptID).
		Scan(&sum).Error
	return sum, err
}

// CountAllocationsByInvoice reports how many allocation rows reference the invoice
func (r *GormReceiptRepository) CountAllocationsByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ReceiptAllocationModel{}).
		Where("invoice_id = ?", invoiceID).
		Count(&count).Error
	return count, err
}

// CountByCustomer reports how many receipts reference the customer
func (r *GormReceiptRepository) CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ReceiptModel{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Count(&count).Error
	return count, err
}

// HighestNumber returns the highest receipt number matching the pattern
func (r *GormReceiptRepository) HighestNumber(ctx context.Context, tenantID uuid.UUID, pattern string) (string, error) {
	var number string
	err := r.db.WithContext(ctx).Model(&models.ReceiptModel{}).
		Where("tenant_id = ? AND receipt_number LIKE ?", tenantID, pattern).
		Select("COALESCE(MAX(receipt_number), '')").
		Scan(&number).Error
	return number, err
}

// Ensure GormReceiptRepository implements ReceiptRepository
var _ billing.ReceiptRepository = (*GormReceiptRepository)(nil)
