package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCreditNoteRepository implements CreditNoteRepository using GORM
type GormCreditNoteRepository struct {
	db *gorm.DB
}

// NewGormCreditNoteRepository creates a new GormCreditNoteRepository
func NewGormCreditNoteRepository(db *gorm.DB) *GormCreditNoteRepository {
	return &GormCreditNoteRepository{db: db}
}

// Create persists the credit note. When the note references an invoice, the
// invoice row is locked, the non-cancelled credit sum re-read, and validate
// decides whether the write commits.
func (r *GormCreditNoteRepository) Create(ctx context.Context, note *billing.CreditNote, validate func(invoiceTotal, existingCredits decimal.Decimal) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if note.InvoiceID != nil {
			invoiceQuery := tx.Model(&models.InvoiceModel{}).
				Where("tenant_id = ? AND customer_id = ? AND id = ?",
					note.TenantID, note.CustomerID, *note.InvoiceID)
			if tx.Dialector.Name() == "postgres" {
				invoiceQuery = invoiceQuery.Clauses(clause.Locking{Strength: "UPDATE"})
			}

			var invoice models.InvoiceModel
			if err := invoiceQuery.First(&invoice).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return shared.NewValidationError("invalid invoice reference")
				}
				return err
			}

			var existing decimal.Decimal
			if err := tx.Model(&models.CreditNoteModel{}).
				Select("COALESCE(SUM(total_credit), 0)").
				Where("invoice_id = ? AND status <> ?", *note.InvoiceID, billing.CreditNoteStatusCancelled).
				Scan(&existing).Error; err != nil {
				return err
			}

			if err := validate(invoice.Total, existing); err != nil {
				return err
			}
		}

		model := models.CreditNoteModelFromDomain(note)
		if err := tx.Create(model).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.NewConflictError("credit note number %s already exists", note.CreditNoteNumber)
			}
			return err
		}
		return nil
	})
}

// Update saves a modified credit note (status transitions only)
func (r *GormCreditNoteRepository) Update(ctx context.Context, note *billing.CreditNote) error {
	model := models.CreditNoteModelFromDomain(note)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByIDForTenant finds a credit note by ID within a tenant
func (r *GormCreditNoteRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.CreditNote, error) {
	var model models.CreditNoteModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a credit note by its document number within a tenant
func (r *GormCreditNoteRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*billing.CreditNote, error) {
	var model models.CreditNoteModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND credit_note_number = ?", tenantID, number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns credit notes matching the filter with the total row count
func (r *GormCreditNoteRepository) List(ctx context.Context, tenantID uuid.UUID, filter billing.CreditNoteListFilter) ([]billing.CreditNote, int64, error) {
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.CreditNoteModel{}).Where("tenant_id = ?", tenantID)
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("credit_note_number ILIKE ? OR reason ILIKE ?", pattern, pattern)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.InvoiceID != nil {
		query = query.Where("invoice_id = ?", *filter.InvoiceID)
	}
	if filter.Reason != "" {
		query = query.Where("reason = ?", filter.Reason)
	}
	if filter.DateFrom != nil {
		query = query.Where("credit_note_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("credit_note_date <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderDir := "DESC"
	if strings.ToLower(filter.OrderDir) == "asc" {
		orderDir = "ASC"
	}

	var noteModels []models.CreditNoteModel
	if err := query.
		Order("credit_note_date " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&noteModels).Error; err != nil {
		return nil, 0, err
	}

	notes := make([]billing.CreditNote, len(noteModels))
	for i, m := range noteModels {
		notes[i] = *m.ToDomain()
	}
	return notes, total, nil
}

// SumActiveByInvoice returns the total_credit sum of non-cancelled credit
// notes referencing the invoice
func (r *GormCreditNoteRepository) SumActiveByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.CreditNoteModel{}).
		Select("COALESCE(SUM(total_credit), 0)").
		Where("invoice_id = ? AND status <> ?", invoiceID, billing.CreditNoteStatusCancelled).
		Scan(&sum).Error
	return sum, err
}

// CountByInvoice reports how many credit notes reference the invoice,
// including cancelled ones
func (r *GormCreditNoteRepository) CountByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CreditNoteModel{}).
		Where("invoice_id = ?", invoiceID).
		Count(&count).Error
	return count, err
}

// CountByCustomer reports how many credit notes reference the customer
func (r *GormCreditNoteRepository) CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CreditNoteModel{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Count(&count).Error
	return count, err
}

// HighestNumber returns the highest credit note number matching the pattern
func (r *GormCreditNoteRepository) HighestNumber(ctx context.Context, tenantID uuid.UUID, pattern string) (string, error) {
	var number string
	err := r.db.WithContext(ctx).Model(&models.CreditNoteModel{}).
		Where("tenant_id = ? AND credit_note_number LIKE ?", tenantID, pattern).
		Select("COALESCE(MAX(credit_note_number), '')").
		Scan(&number).Error
	return number, err
}

// Ensure GormCreditNoteRepository implements CreditNoteRepository
var _ billing.CreditNoteRepository = (*GormCreditNoteRepository)(nil)
