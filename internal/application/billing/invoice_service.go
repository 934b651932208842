package billing

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/partner"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceService handles invoice-related business operations
type InvoiceService struct {
	invoiceRepo    billing.InvoiceRepository
	receiptRepo    billing.ReceiptRepository
	creditNoteRepo billing.CreditNoteRepository
	customerRepo   partner.CustomerRepository
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	receiptRepo billing.ReceiptRepository,
	creditNoteRepo billing.CreditNoteRepository,
	customerRepo partner.CustomerRepository,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:    invoiceRepo,
		receiptRepo:    receiptRepo,
		creditNoteRepo: creditNoteRepo,
		customerRepo:   customerRepo,
	}
}

// Create creates a new invoice with server-computed totals
func (s *InvoiceService) Create(ctx context.Context, tenantID, createdBy uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.IsActive() {
		return nil, shared.NewValidationError("customer is inactive")
	}

	number := req.InvoiceNumber
	if number == "" {
		number, err = s.nextNumber(ctx, tenantID, req.InvoiceDate.Year())
		if err != nil {
			return nil, err
		}
	} else {
		existing, err := s.invoiceRepo.FindByNumber(ctx, tenantID, number)
		if err != nil && !shared.IsNotFound(err) {
			return nil, err
		}
		if existing != nil {
			return nil, shared.NewConflictError("invoice number %s already exists", number)
		}
	}

	invoice, err := billing.NewInvoice(tenantID, number, req.CustomerID,
		req.InvoiceDate, req.DueDate, req.ReferenceNumber, req.Notes, toLineItemDrafts(req.LineItems))
	if err != nil {
		return nil, err
	}
	if createdBy != uuid.Nil {
		invoice.SetCreatedBy(createdBy)
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice, decimal.Zero, time.Now())
	return &response, nil
}

// GetByID retrieves an invoice with its derived settlement figures
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	paid, err := s.receiptRepo.SumActiveByInvoice(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice, paid, time.Now())
	return &response, nil
}

// List retrieves invoices with derived statuses and pagination
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	today := time.Now()
	domainFilter := billing.InvoiceListFilter{
		Filter: shared.Filter{
			Search:   filter.Search,
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		CustomerID: filter.CustomerID,
		DateFrom:   filter.DateFrom,
		DateTo:     filter.DateTo,
		Today:      today,
	}
	if filter.Status != "" {
		status := billing.SettlementStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewValidationError("invalid status filter %q", filter.Status)
		}
		domainFilter.Status = &status
	}

	rows, total, err := s.invoiceRepo.List(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, 0, len(rows))
	for i := range rows {
		resp := ToInvoiceResponse(&rows[i].Invoice, rows[i].PaidAmount, today)
		resp.LineItems = nil
		responses = append(responses, resp)
	}
	return responses, total, nil
}

// Update modifies an invoice. Invoices referenced by any allocation or
// credit note are immutable.
func (s *InvoiceService) Update(ctx context.Context, tenantID, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUnreferenced(ctx, invoice.ID, "modified"); err != nil {
		return nil, err
	}

	if req.CustomerID != nil {
		customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, *req.CustomerID)
		if err != nil {
			return nil, err
		}
		if !customer.IsActive() {
			return nil, shared.NewValidationError("customer is inactive")
		}
		invoice.CustomerID = customer.ID
	}
	if req.InvoiceDate != nil {
		invoice.InvoiceDate = *req.InvoiceDate
	}
	if req.DueDate != nil {
		invoice.DueDate = *req.DueDate
	}
	if invoice.DueDate.Before(invoice.InvoiceDate) {
		return nil, shared.NewValidationError("due date cannot be before invoice date")
	}
	if req.ReferenceNumber != nil {
		invoice.ReferenceNumber = *req.ReferenceNumber
	}
	if req.Notes != nil {
		invoice.Notes = *req.Notes
	}
	if len(req.LineItems) > 0 {
		if err := invoice.ReplaceLineItems(toLineItemDrafts(req.LineItems)); err != nil {
			return nil, err
		}
	} else {
		invoice.UpdatedAt = time.Now()
	}

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice, decimal.Zero, time.Now())
	return &response, nil
}

// Delete removes an invoice. Invoices referenced by any allocation or
// credit note cannot be deleted.
func (s *InvoiceService) Delete(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return err
	}

	if err := s.ensureUnreferenced(ctx, invoice.ID, "deleted"); err != nil {
		return err
	}

	return s.invoiceRepo.Delete(ctx, tenantID, invoice.ID)
}

// NextNumber previews the next invoice number for the current year
func (s *InvoiceService) NextNumber(ctx context.Context, tenantID uuid.UUID) (*NextNumberResponse, error) {
	number, err := s.nextNumber(ctx, tenantID, time.Now().Year())
	if err != nil {
		return nil, err
	}
	return &NextNumberResponse{NextNumber: number}, nil
}

// PendingByCustomer lists the customer's allocatable invoices, oldest
// first, for the receipt allocation picker
func (s *InvoiceService) PendingByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]PendingInvoiceResponse, error) {
	if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID); err != nil {
		return nil, err
	}

	rows, err := s.invoiceRepo.PendingByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	today := time.Now()
	responses := make([]PendingInvoiceResponse, 0, len(rows))
	for i := range rows {
		inv := &rows[i].Invoice
		responses = append(responses, PendingInvoiceResponse{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			InvoiceDate:   inv.InvoiceDate,
			DueDate:       inv.DueDate,
			Total:         inv.Total,
			PaidAmount:    rows[i].PaidAmount,
			Outstanding:   inv.Outstanding(rows[i].PaidAmount),
			Status:        inv.Status(rows[i].PaidAmount, today).String(),
		})
	}
	return responses, nil
}

// CreditableByCustomer lists the customer's settled invoices that still
// have credit room, newest first, for the credit note picker
func (s *InvoiceService) CreditableByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]CreditableInvoiceResponse, error) {
	if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID); err != nil {
		return nil, err
	}

	rows, err := s.invoiceRepo.SettledByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	responses := make([]CreditableInvoiceResponse, 0, len(rows))
	for i := range rows {
		inv := &rows[i].Invoice
		available := inv.Total.Sub(rows[i].CreditIssued)
		if !available.IsPositive() {
			continue
		}
		responses = append(responses, CreditableInvoiceResponse{
			ID:              inv.ID,
			InvoiceNumber:   inv.InvoiceNumber,
			InvoiceDate:     inv.InvoiceDate,
			Total:           inv.Total,
			CreditIssued:    rows[i].CreditIssued,
			AvailableCredit: available,
		})
	}
	return responses, nil
}

func (s *InvoiceService) ensureUnreferenced(ctx context.Context, invoiceID uuid.UUID, action string) error {
	allocations, err := s.receiptRepo.CountAllocationsByInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	if allocations > 0 {
		return shared.NewForbiddenError("invoice with payment allocations cannot be %s", action)
	}

	credits, err := s.creditNoteRepo.CountByInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	if credits > 0 {
		return shared.NewForbiddenError("invoice with credit notes cannot be %s", action)
	}
	return nil
}

func (s *InvoiceService) nextNumber(ctx context.Context, tenantID uuid.UUID, year int) (string, error) {
	highest, err := s.invoiceRepo.HighestNumber(ctx, tenantID,
		billing.DocumentNumberPattern(billing.InvoiceNumberPrefix, year))
	if err != nil {
		return "", err
	}
	return billing.NextDocumentNumber(billing.InvoiceNumberPrefix, year, highest), nil
}

func toLineItemDrafts(items []LineItemRequest) []billing.LineItemDraft {
	drafts := make([]billing.LineItemDraft, 0, len(items))
	for _, li := range items {
		drafts = append(drafts, billing.LineItemDraft{
			ServiceTypeID: li.ServiceTypeID,
			Description:   li.Description,
			Quantity:      li.Quantity,
			Rate:          li.Rate,
			TaxRate:       li.TaxRate,
		})
	}
	return drafts
}
