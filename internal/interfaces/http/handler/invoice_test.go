package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	billingapp "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/partner"
	"github.com/billing/backend/internal/infrastructure/persistence"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newInvoiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.CustomerModel{},
		&models.InvoiceModel{},
		&models.InvoiceLineItemModel{},
		&models.ReceiptModel{},
		&models.ReceiptAllocationModel{},
		&models.CreditNoteModel{},
	))
	return db
}

func newInvoiceRouter(t *testing.T, db *gorm.DB, tenantID uuid.UUID) *gin.Engine {
	t.Helper()

	service := billingapp.NewInvoiceService(
		persistence.NewGormInvoiceRepository(db),
		persistence.NewGormReceiptRepository(db),
		persistence.NewGormCreditNoteRepository(db),
		persistence.NewGormCustomerRepository(db),
	)
	h := NewInvoiceHandler(service)

	engine := gin.New()
	api := engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		setJWTContext(c, tenantID, uuid.New())
		c.Next()
	})
	h.RegisterRoutes(api)
	return engine
}

func seedInvoiceCustomer(t *testing.T, db *gorm.DB, tenantID uuid.UUID) *partner.Customer {
	t.Helper()

	customer, err := partner.NewCustomer(tenantID, "Meridian Exports")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormCustomerRepository(db).Create(context.Background(), customer))
	return customer
}

func seedInvoice(t *testing.T, db *gorm.DB, tenantID, customerID uuid.UUID, number, total string) *billing.Invoice {
	t.Helper()

	rate, err := decimal.NewFromString(total)
	require.NoError(t, err)
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
	require.NoError(t, persistence.NewGormInvoiceRepository(db).Create(context.Background(), inv))
	return inv
}

func settleInvoice(t *testing.T, db *gorm.DB, tenantID, customerID, invoiceID uuid.UUID, number, amount string) {
	t.Helper()

	amt, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	receipt, err := billing.NewReceipt(
		tenantID, number, customerID,
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		billing.PaymentMethodBankTransfer, amt, "",
		[]billing.AllocationDraft{{InvoiceID: invoiceID, Amount: amt}},
		time.Now(),
	)
	require.NoError(t, err)
	_, err = persistence.NewGormReceiptRepository(db).CreateWithAllocations(
		context.Background(), receipt,
		func(billing.InvoiceBalanceReader) error { return nil },
	)
	require.NoError(t, err)
}

func TestInvoiceHandler_CustomerScopedListings(t *testing.T) {
	tenantID := uuid.New()
	db := newInvoiceDB(t)
	engine := newInvoiceRouter(t, db, tenantID)

	customer := seedInvoiceCustomer(t, db, tenantID)
	settled := seedInvoice(t, db, tenantID, customer.ID, "INV-2026-0001", "500.00")
	open := seedInvoice(t, db, tenantID, customer.ID, "INV-2026-0002", "300.00")
	settleInvoice(t, db, tenantID, customer.ID, settled.ID, "RCT-2026-0001", "500.00")

	type listResponse struct {
		Success bool              `json:"success"`
		Data    []json.RawMessage `json:"data"`
	}

	get := func(t *testing.T, path string) listResponse {
		t.Helper()
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", path, nil)
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp listResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	t.Run("pending invoices under the customer path", func(t *testing.T) {
		resp := get(t, "/api/v1/customers/"+customer.ID.String()+"/pending-invoices")
		require.Len(t, resp.Data, 1)

		var row billingapp.PendingInvoiceResponse
		require.NoError(t, json.Unmarshal(resp.Data[0], &row))
		assert.Equal(t, open.ID, row.ID)
		assert.Equal(t, "INV-2026-0002", row.InvoiceNumber)
	})

	t.Run("paid invoices under the customer path", func(t *testing.T) {
		resp := get(t, "/api/v1/customers/"+customer.ID.String()+"/paid-invoices")
		require.Len(t, resp.Data, 1)

		var row billingapp.CreditableInvoiceResponse
		require.NoError(t, json.Unmarshal(resp.Data[0], &row))
		assert.Equal(t, settled.ID, row.ID)
	})

	t.Run("legacy invoice paths still answer", func(t *testing.T) {
		resp := get(t, "/api/v1/invoices/pending/"+customer.ID.String())
		assert.Len(t, resp.Data, 1)

		resp = get(t, "/api/v1/invoices/creditable/"+customer.ID.String())
		assert.Len(t, resp.Data, 1)
	})

	t.Run("unknown customer returns 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/customers/"+uuid.NewString()+"/pending-invoices", nil)
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed customer id returns 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/customers/not-a-uuid/paid-invoices", nil)
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
