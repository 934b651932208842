package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBillingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.InvoiceModel{},
		&models.InvoiceLineItemModel{},
		&models.ReceiptModel{},
		&models.ReceiptAllocationModel{},
		&models.CreditNoteModel{},
	)
	require.NoError(t, err)

	return db
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func createTestInvoice(t *testing.T, db *gorm.DB, tenantID, customerID uuid.UUID, number, total string) *billing.Invoice {
	t.Helper()

	rate := mustDecimal(t, total)
	// one line, quantity 1, zero tax, so the invoice total equals rate
	inv, err := billing.NewInvoice(
		tenantID, number, customerID,
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		"", "",
		[]billing.LineItemDraft{{
			ServiceTypeID: uuid.New(),
			Description:   "Consulting",
			Quantity:      decimal.NewFromInt(1),
			Rate:          rate,
			TaxRate:       decimal.Zero,
		}},
	)
	require.NoError(t, err)

	repo := NewGormInvoiceRepository(db)
	require.NoError(t, repo.Create(context.Background(), inv))
	return inv
}

func newTestReceipt(t *testing.T, tenantID, customerID uuid.UUID, number, amount string, allocations map[uuid.UUID]string) *billing.Receipt {
	t.Helper()

	drafts := make([]billing.AllocationDraft, 0, len(allocations))
	for invoiceID, amt := range allocations {
		drafts = append(drafts, billing.AllocationDraft{
			InvoiceID: invoiceID,
			Amount:    mustDecimal(t, amt),
		})
	}

	receipt, err := billing.NewReceipt(
		tenantID, number, customerID,
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		billing.PaymentMethodBankTransfer,
		mustDecimal(t, amount),
		"", drafts, time.Now(),
	)
	require.NoError(t, err)
	return receipt
}

func TestGormReceiptRepository_CreateWithAllocations(t *testing.T) {
	ctx := context.Background()

	t.Run("commits receipt and allocations when validation passes", func(t *testing.T) {
		db := setupBillingTestDB(t)
		repo := NewGormReceiptRepository(db)
		tenantID := uuid.New()
		customerID := uuid.New()

		invoice := createTestInvoice(t, db, tenantID, customerID, "INV-2026-0001", "500.00")
		receipt := newTestReceipt(t, tenantID, customerID, "RCT-2026-0001", "300.00",
			map[uuid.UUID]string{invoice.ID: "300.00"})

		invoiceNumbers, err := repo.CreateWithAllocations(ctx, receipt, func(balances billing.InvoiceBalanceReader) error {
			return billing.ValidateAllocationsAgainstOutstanding(receipt, balances)
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"INV-2026-0001"}, invoiceNumbers)

		found, err := repo.FindByIDForTenant(ctx, tenantID, receipt.ID)
		require.NoError(t, err)
		assert.Len(t, found.Allocations, 1)

		paid, err := repo.SumActiveByInvoice(ctx, invoice.ID)
		require.NoError(t, err)
		assert.True(t, paid.Equal(mustDecimal(t, "300.00")), "got %s", paid)
	})

	t.Run("rolls back everything when validation rejects over-allocation", func(t *testing.T) {
		db := setupBillingTestDB(t)
		repo := NewGormReceiptRepository(db)
		tenantID := uuid.New()
		customerID := uuid.New()

		invoice := createTestInvoice(t, db, tenantID, customerID, "INV-2026-0001", "500.00")

		first := newTestReceipt(t, tenantID, customerID, "RCT-2026-0001", "400.00",
			map[uuid.UUID]string{invoice.ID: "400.00"})
		_, err := repo.CreateWithAllocations(ctx, first, func(balances billing.InvoiceBalanceReader) error {
			return billing.ValidateAllocationsAgainstOutstanding(first, balances)
		})
		require.NoError(t, err)

		// outstanding is 100.00 now; 150.00 must be rejected atomically
		second := newTestReceipt(t, tenantID, customerID, "RCT-2026-0002", "150.00",
			map[uuid.UUID]string{invoice.ID: "150.00"})
		_, err = repo.CreateWithAllocations(ctx, second, func(balances billing.InvoiceBalanceReader) error {
			return billing.ValidateAllocationsAgainstOutstanding(second, balances)
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds outstanding amount")

		_, err = repo.FindByIDForTenant(ctx, tenantID, second.ID)
		assert.Equal(t, shared.ErrNotFound, err)

		paid, err := repo.SumActiveByInvoice(ctx, invoice.ID)
		require.NoError(t, err)
		assert.True(t, paid.Equal(mustDecimal(t, "400.00")), "got %s", paid)
	})

	t.Run("rejects allocation to another customer's invoice", func(t *testing.T) {
		db := setupBillingTestDB(t)
		repo := NewGormReceiptRepository(db)
		tenantID := uuid.New()

		otherCustomer := uuid.New()
		invoice := createTestInvoice(t, db, tenantID, otherCustomer, "INV-2026-0001", "500.00")

		receipt := newTestReceipt(t, tenantID, uuid.New(), "RCT-2026-0001", "100.00",
			map[uuid.UUID]string{invoice.ID: "100.00"})
		_, err := repo.CreateWithAllocations(ctx, receipt, func(balances billing.InvoiceBalanceReader) error {
			return billing.ValidateAllocationsAgainstOutstanding(receipt, balances)
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid invoice reference")
	})

	t.Run("rejects duplicate receipt number in same tenant", func(t *testing.T) {
		db := setupBillingTestDB(t)
		repo := NewGormReceiptRepository(db)
		tenantID := uuid.New()
		customerID := uuid.New()

		invoice := createTestInvoice(t, db, tenantID, customerID, "INV-2026-0001", "500.00")

		noValidation := func(billing.InvoiceBalanceReader) error { return nil }

		first := newTestReceipt(t, tenantID, customerID, "RCT-2026-0001", "100.00",
			map[uuid.UUID]string{invoice.ID: "100.00"})
		_, err := repo.CreateWithAllocations(ctx, first, noValidation)
		require.NoError(t, err)

		dup := newTestReceipt(t, tenantID, customerID, "RCT-2026-0001", "50.00",
			map[uuid.UUID]string{invoice.ID: "50.00"})
		_, err = repo.CreateWithAllocations(ctx, dup, noValidation)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONFLICT", domainErr.Code)
	})

	t.Run("another tenant may reuse the same receipt number", func(t *testing.T) {
		db := setupBillingTestDB(t)
		repo := NewGormReceiptRepository(db)
		tenantA := uuid.New()
		tenantB := uuid.New()
		customerA := uuid.New()
		customerB := uuid.New()

		invoiceA := createTestInvoice(t, db, tenantA, customerA, "INV-2026-0001", "500.00")
		invoiceB := createTestInvoice(t, db, tenantB, customerB, "INV-2026-0001", "500.00")

		noValidation := func(billing.InvoiceBalanceReader) error { return nil }

		first := newTestReceipt(t, tenantA, customerA, "RCT-2026-0001", "100.00",
			map[uuid.UUID]string{invoiceA.ID: "100.00"})
		_, err := repo.CreateWithAllocations(ctx, first, noValidation)
		require.NoError(t, err)

		second := newTestReceipt(t, tenantB, customerB, "RCT-2026-0001", "100.00",
			map[uuid.UUID]string{invoiceB.ID: "100.00"})
		_, err = repo.CreateWithAllocations(ctx, second, noValidation)
		require.NoError(t, err)

		found, err := repo.FindByNumber(ctx, tenantB, "RCT-2026-0001")
		require.NoError(t, err)
		assert.Equal(t, second.ID, found.ID)
	})

	t.Run("revoked receipts do not count toward the active sum", func(t *testing.T) {
		db := setupBillingTestDB(t)
		repo := NewGormReceiptRepository(db)
		tenantID := uuid.New()
		customerID := uuid.New()

		invoice := createTestInvoice(t, db, tenantID, customerID, "INV-2026-0001", "500.00")
		receipt := newTestReceipt(t, tenantID, customerID, "RCT-2026-0001", "200.00",
			map[uuid.UUID]string{invoice.ID: "200.00"})
		_, err := repo.CreateWithAllocations(ctx, receipt, func(balances billing.InvoiceBalanceReader) error {
			return billing.ValidateAllocationsAgainstOutstanding(receipt, balances)
		})
		require.NoError(t, err)

		require.NoError(t, db.Model(&models.ReceiptModel{}).
			Where("id = ?", receipt.ID).
			Update("status", billing.ReceiptStatusRevoked).Error)

		paid, err := repo.SumActiveByInvoice(ctx, invoice.ID)
		require.NoError(t, err)
		assert.True(t, paid.IsZero(), "got %s", paid)
	})
}

func TestGormReceiptRepository_HighestNumber(t *testing.T) {
	ctx := context.Background()
	db := setupBillingTestDB(t)
	repo := NewGormReceiptRepository(db)
	tenantID := uuid.New()
	customerID := uuid.New()

	invoice := createTestInvoice(t, db, tenantID, customerID, "INV-2026-0001", "1000.00")
	noValidation := func(billing.InvoiceBalanceReader) error { return nil }

	for _, number := range []string{"RCT-2026-0001", "RCT-2026-0002", "RCT-2026-0010"} {
		receipt := newTestReceipt(t, tenantID, customerID, number, "10.00",
			map[uuid.UUID]string{invoice.ID: "10.00"})
		_, err := repo.CreateWithAllocations(ctx, receipt, noValidation)
		require.NoError(t, err)
	}

	highest, err := repo.HighestNumber(ctx, tenantID, "RCT-2026-%")
	require.NoError(t, err)
	assert.Equal(t, "RCT-2026-0010", highest)

	none, err := repo.HighestNumber(ctx, uuid.New(), "RCT-2026-%")
	require.NoError(t, err)
	assert.Equal(t, "", none)
}
