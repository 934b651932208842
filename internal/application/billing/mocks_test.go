package billing

import (
	"context"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/partner"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*billing.Invoice, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) List(ctx context.Context, tenantID uuid.UUID, filter billing.InvoiceListFilter) ([]billing.InvoiceWithBalance, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]billing.InvoiceWithBalance), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) PendingByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]billing.InvoiceWithBalance, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).([]billing.InvoiceWithBalance), args.Error(1)
}

func (m *MockInvoiceRepository) SettledByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]billing.InvoiceWithCredit, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).([]billing.InvoiceWithCredit), args.Error(1)
}

func (m *MockInvoiceRepository) HighestNumber(ctx context.Context, tenantID uuid.UUID, pattern string) (string, error) {
	args := m.Called(ctx, tenantID, pattern)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockReceiptRepository is a mock implementation of billing.ReceiptRepository
type MockReceiptRepository struct {
	mock.Mock
}

// stubBalances lets a test drive the validation callback passed to
// CreateWithAllocations with canned invoice totals and allocation sums.
type stubBalances struct {
	totals    map[uuid.UUID]decimal.Decimal
	allocated map[uuid.UUID]decimal.Decimal
}

func (s stubBalances) InvoiceTotal(invoiceID uuid.UUID) (decimal.Decimal, bool) {
	total, ok := s.totals[invoiceID]
	return total, ok
}

func (s stubBalances) AllocatedSum(invoiceID uuid.UUID) decimal.Decimal {
	return s.allocated[invoiceID]
}

var _ billing.InvoiceBalanceReader = stubBalances{}

func (m *MockReceiptRepository) CreateWithAllocations(ctx context.Context, receipt *billing.Receipt, validate func(billing.InvoiceBalanceReader) error) ([]string, error) {
	args := m.Called(ctx, receipt, validate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockReceiptRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Receipt, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*billing.Receipt, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) List(ctx context.Context, tenantID uuid.UUID, filter billing.ReceiptListFilter) ([]billing.Receipt, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]billing.Receipt), args.Get(1).(int64), args.Error(2)
}

func (m *MockReceiptRepository) SumActiveByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReceiptRepository) SumByReceipt(ctx context.Context, receiptID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, receiptID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReceiptRepository) CountAllocationsByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReceiptRepository) CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReceiptRepository) HighestNumber(ctx context.Context, tenantID uuid.UUID, pattern string) (string, error) {
	args := m.Called(ctx, tenantID, pattern)
	return args.String(0), args.Error(1)
}

// MockCreditNoteRepository is a mock implementation of billing.CreditNoteRepository
type MockCreditNoteRepository struct {
	mock.Mock
}

func (m *MockCreditNoteRepository) Create(ctx context.Context, note *billing.CreditNote, validate func(invoiceTotal, existingCredits decimal.Decimal) error) error {
	args := m.Called(ctx, note, validate)
	return args.Error(0)
}

func (m *MockCreditNoteRepository) Update(ctx context.Context, note *billing.CreditNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockCreditNoteRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.CreditNote, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*billing.CreditNote, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) List(ctx context.Context, tenantID uuid.UUID, filter billing.CreditNoteListFilter) ([]billing.CreditNote, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]billing.CreditNote), args.Get(1).(int64), args.Error(2)
}

func (m *MockCreditNoteRepository) SumActiveByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockCreditNoteRepository) CountByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCreditNoteRepository) CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCreditNoteRepository) HighestNumber(ctx context.Context, tenantID uuid.UUID, pattern string) (string, error) {
	args := m.Called(ctx, tenantID, pattern)
	return args.String(0), args.Error(1)
}

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Customer, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]partner.Customer), args.Get(1).(int64), args.Error(2)
}

func (m *MockCustomerRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, name, excludeID)
	return args.Bool(0), args.Error(1)
}
