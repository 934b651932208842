package billing

import (
	"context"
	"testing"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/partner"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCustomer(t *testing.T, tenantID uuid.UUID) *partner.Customer {
	t.Helper()
	customer, err := partner.NewCustomer(tenantID, "Acme Traders")
	require.NoError(t, err)
	return customer
}

func newTestInvoice(t *testing.T, tenantID, customerID uuid.UUID) *billing.Invoice {
	t.Helper()
	inv, err := billing.NewInvoice(tenantID, "INV-2026-0001", customerID,
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		"", "", []billing.LineItemDraft{
			{ServiceTypeID: uuid.New(), Description: "Consulting", Quantity: d("1"), Rate: d("100.00"), TaxRate: d("18")},
			{ServiceTypeID: uuid.New(), Description: "Consulting", Quantity: d("1"), Rate: d("100.00"), TaxRate: d("18")},
		})
	require.NoError(t, err)
	return inv
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestInvoiceService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userID := uuid.New()

	t.Run("creates invoice with generated number and computed totals", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		receiptRepo := new(MockReceiptRepository)
		creditNoteRepo := new(MockCreditNoteRepository)
		customerRepo := new(MockCustomerRepository)
		service := NewInvoiceService(invoiceRepo, receiptRepo, creditNoteRepo, customerRepo)

		customer := newTestCustomer(t, tenantID)
		customerRepo.On("FindByIDForTenant", ctx, tenantID, customer.ID).Return(customer, nil)
		invoiceRepo.On("HighestNumber", ctx, tenantID, "INV-2026-%").Return("INV-2026-0041", nil)
		invoiceRepo.On("Create", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)

		resp, err := service.Create(ctx, tenantID, userID, CreateInvoiceRequest{
			CustomerID:  customer.ID,
			InvoiceDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			DueDate:     time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
			LineItems: []LineItemRequest{
				{ServiceTypeID: uuid.New(), Quantity: d("1"), Rate: d("100.00"), TaxRate: d("18")},
				{ServiceTypeID: uuid.New(), Quantity: d("1"), Rate: d("100.00"), TaxRate: d("18")},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "INV-2026-0042", resp.InvoiceNumber)
		assert.True(t, resp.Subtotal.Equal(d("200.00")))
		assert.True(t, resp.TaxTotal.Equal(d("36.00")))
		assert.True(t, resp.Total.Equal(d("236.00")))
		assert.Equal(t, "Pending", resp.Status)
		invoiceRepo.AssertExpectations(t)
	})

	t.Run("rejects duplicate caller-supplied number", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		customerRepo := new(MockCustomerRepository)
		service := NewInvoiceService(invoiceRepo, new(MockReceiptRepository), new(MockCreditNoteRepository), customerRepo)

		customer := newTestCustomer(t, tenantID)
		existing := newTestInvoice(t, tenantID, customer.ID)
		customerRepo.On("FindByIDForTenant", ctx, tenantID, customer.ID).Return(customer, nil)
		invoiceRepo.On("FindByNumber", ctx, tenantID, "INV-2026-0001").Return(existing, nil)

		_, err := service.Create(ctx, tenantID, userID, CreateInvoiceRequest{
			InvoiceNumber: "INV-2026-0001",
			CustomerID:    customer.ID,
			InvoiceDate:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			DueDate:       time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
			LineItems: []LineItemRequest{
				{ServiceTypeID: uuid.New(), Quantity: d("1"), Rate: d("100.00"), TaxRate: d("18")},
			},
		})

		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "CONFLICT", de.Code)
		invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects inactive customer", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		service := NewInvoiceService(new(MockInvoiceRepository), new(MockReceiptRepository), new(MockCreditNoteRepository), customerRepo)

		customer := newTestCustomer(t, tenantID)
		require.NoError(t, customer.Deactivate())
		customerRepo.On("FindByIDForTenant", ctx, tenantID, customer.ID).Return(customer, nil)

		_, err := service.Create(ctx, tenantID, userID, CreateInvoiceRequest{
			CustomerID:  customer.ID,
			InvoiceDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			DueDate:     time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
			LineItems: []LineItemRequest{
				{ServiceTypeID: uuid.New(), Quantity: d("1"), Rate: d("100.00"), TaxRate: d("18")},
			},
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "customer is inactive")
	})

	t.Run("unknown customer yields not found", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		service := NewInvoiceService(new(MockInvoiceRepository), new(MockReceiptRepository), new(MockCreditNoteRepository), customerRepo)

		customerID := uuid.New()
		customerRepo.On("FindByIDForTenant", ctx, tenantID, customerID).
			Return(nil, shared.NewNotFoundError("customer not found"))

		_, err := service.Create(ctx, tenantID, userID, CreateInvoiceRequest{
			CustomerID:  customerID,
			InvoiceDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			DueDate:     time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
			LineItems: []LineItemRequest{
				{ServiceTypeID: uuid.New(), Quantity: d("1"), Rate: d("100.00"), TaxRate: d("18")},
			},
		})

		assert.True(t, shared.IsNotFound(err))
	})
}

func TestInvoiceService_GetByID(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("derives paid amount, outstanding and status", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		receiptRepo := new(MockReceiptRepository)
		service := NewInvoiceService(invoiceRepo, receiptRepo, new(MockCreditNoteRepository), new(MockCustomerRepository))

		inv := newTestInvoice(t, tenantID, uuid.New())
		invoiceRepo.On("FindByIDForTenant", ctx, tenantID, inv.ID).Return(inv, nil)
		receiptRepo.On("SumActiveByInvoice", ctx, inv.ID).Return(d("100.00"), nil)

		resp, err := service.GetByID(ctx, tenantID, inv.ID)

		require.NoError(t, err)
		assert.True(t, resp.PaidAmount.Equal(d("100.00")))
		assert.True(t, resp.Outstanding.Equal(d("136.00")))
		assert.Len(t, resp.LineItems, 2)
	})

	t.Run("propagates not found", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		service := NewInvoiceService(invoiceRepo, new(MockReceiptRepository), new(MockCreditNoteRepository), new(MockCustomerRepository))

		id := uuid.New()
		invoiceRepo.On("FindByIDForTenant", ctx, tenantID, id).
			Return(nil, shared.NewNotFoundError("invoice not found"))

		_, err := service.GetByID(ctx, tenantID, id)

		assert.True(t, shared.IsNotFound(err))
	})
}

func TestInvoiceService_Update(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("forbids update once a payment references the invoice", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		receiptRepo := new(MockReceiptRepository)
		service := NewInvoiceService(invoiceRepo, receiptRepo, new(MockCreditNoteRepository), new(MockCustomerRepository))

		inv := newTestInvoice(t, tenantID, uuid.New())
		invoiceRepo.On("FindByIDForTenant", ctx, tenantID, inv.ID).Return(inv, nil)
		receiptRepo.On("CountAllocationsByInvoice", ctx, inv.ID).Return(int64(1), nil)

		notes := "amended"
		_, err := service.Update(ctx, tenantID, inv.ID, UpdateInvoiceRequest{Notes: &notes})

		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "FORBIDDEN", de.Code)
		invoiceRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("forbids update once a credit note references the invoice", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		receiptRepo := new(MockReceiptRepository)
		creditNoteRepo := new(MockCreditNoteRepository)
		service := NewInvoiceService(invoiceRepo, receiptRepo, creditNoteRepo, new(MockCustomerRepository))

		inv := newTestInvoice(t, tenantID, uuid.New())
		invoiceRepo.On("FindByIDForTenant", ctx, tenantID, inv.ID).Return(inv, nil)
		receiptRepo.On("CountAllocationsByInvoice", ctx, inv.ID).Return(int64(0), nil)
		creditNoteRepo.On("CountByInvoice", ctx, inv.ID).Return(int64(1), nil)

		notes := "amended"
		_, err := service.Update(ctx, tenantID, inv.ID, UpdateInvoiceRequest{Notes: &notes})

		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "FORBIDDEN", de.Code)
	})

	t.Run("replaces line items wholesale on an unreferenced invoice", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		receiptRepo := new(MockReceiptRepository)
		creditNoteRepo := new(MockCreditNoteRepository)
		service := NewInvoiceService(invoiceRepo, receiptRepo, creditNoteRepo, new(MockCustomerRepository))

		inv := newTestInvoice(t, tenantID, uuid.New())
		invoiceRepo.On("FindByIDForTenant", ctx, tenantID, inv.ID).Return(inv, nil)
		receiptRepo.On("CountAllocationsByInvoice", ctx, inv.ID).Return(int64(0), nil)
		creditNoteRepo.On("CountByInvoice", ctx, inv.ID).Return(int64(0), nil)
		invoiceRepo.On("Update", ctx, inv).Return(nil)

		resp, err := service.Update(ctx, tenantID, inv.ID, UpdateInvoiceRequest{
			LineItems: []LineItemRequest{
				{ServiceTypeID: uuid.New(), Quantity: d("3"), Rate: d("50.00"), TaxRate: d("0")},
			},
		})

		require.NoError(t, err)
		assert.True(t, resp.Total.Equal(d("150.00")))
		require.Len(t, resp.LineItems, 1)
	})
}

func TestInvoiceService_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("forbids delete of a referenced invoice", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		receiptRepo := new(MockReceiptRepository)
		service := NewInvoiceService(invoiceRepo, receiptRepo, new(MockCreditNoteRepository), new(MockCustomerRepository))

		inv := newTestInvoice(t, tenantID, uuid.New())
		invoiceRepo.On("FindByIDForTenant", ctx, tenantID, inv.ID).Return(inv, nil)
		receiptRepo.On("CountAllocationsByInvoice", ctx, inv.ID).Return(int64(2), nil)

		err := service.Delete(ctx, tenantID, inv.ID)

		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "FORBIDDEN", de.Code)
		invoiceRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deletes an unreferenced invoice", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		receiptRepo := new(MockReceiptRepository)
		creditNoteRepo := new(MockCreditNoteRepository)
		service := NewInvoiceService(invoiceRepo, receiptRepo, creditNoteRepo, new(MockCustomerRepository))

		inv := newTestInvoice(t, tenantID, uuid.New())
		invoiceRepo.On("FindByIDForTenant", ctx, tenantID, inv.ID).Return(inv, nil)
		receiptRepo.On("CountAllocationsByInvoice", ctx, inv.ID).Return(int64(0), nil)
		creditNoteRepo.On("CountByInvoice", ctx, inv.ID).Return(int64(0), nil)
		invoiceRepo.On("Delete", ctx, tenantID, inv.ID).Return(nil)

		err := service.Delete(ctx, tenantID, inv.ID)

		require.NoError(t, err)
		invoiceRepo.AssertExpectations(t)
	})
}

func TestInvoiceService_CreditableByCustomer(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("drops invoices with no remaining credit room", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		customerRepo := new(MockCustomerRepository)
		service := NewInvoiceService(invoiceRepo, new(MockReceiptRepository), new(MockCreditNoteRepository), customerRepo)

		customer := newTestCustomer(t, tenantID)
		open := newTestInvoice(t, tenantID, customer.ID)
		exhausted := newTestInvoice(t, tenantID, customer.ID)

		customerRepo.On("FindByIDForTenant", ctx, tenantID, customer.ID).Return(customer, nil)
		invoiceRepo.On("SettledByCustomer", ctx, tenantID, customer.ID).Return([]billing.InvoiceWithCredit{
			{Invoice: *open, CreditIssued: d("100.00")},
			{Invoice: *exhausted, CreditIssued: d("236.00")},
		}, nil)

		rows, err := service.CreditableByCustomer(ctx, tenantID, customer.ID)

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, open.ID, rows[0].ID)
		assert.True(t, rows[0].AvailableCredit.Equal(d("136.00")))
	})
}
