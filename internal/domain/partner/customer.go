package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	// 15-character GSTIN: state code, PAN, entity number, Z, check digit.
	gstinRegex = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)
)

// Customer is the party invoices, receipts and credit notes are issued
// against. Deleting a customer is blocked while any billing document
// references it.
type Customer struct {
	shared.TenantEntity
	Name         string         `json:"name"`
	ContactName  string         `json:"contact_name"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	GSTIN        string         `json:"gstin"`
	AddressLine1 string         `json:"address_line1"`
	AddressLine2 string         `json:"address_line2"`
	City         string         `json:"city"`
	State        string         `json:"state"`
	StateCode    string         `json:"state_code"`
	PostalCode   string         `json:"postal_code"`
	Status       CustomerStatus `json:"status"`
	Notes        string         `json:"notes"`
}

// NewCustomer creates an active customer with required fields.
func NewCustomer(tenantID uuid.UUID, name string) (*Customer, error) {
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}

	return &Customer{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         strings.TrimSpace(name),
		Status:       CustomerStatusActive,
	}, nil
}

// Update updates the customer's basic information
func (c *Customer) Update(name, contactName string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}
	if contactName != "" && len(contactName) > 100 {
		return shared.NewValidationError("contact name cannot exceed 100 characters")
	}

	c.Name = strings.TrimSpace(name)
	c.ContactName = strings.TrimSpace(contactName)
	c.UpdatedAt = time.Now()
	return nil
}

// SetContact sets the customer's email and phone
func (c *Customer) SetContact(email, phone string) error {
	if email != "" {
		if len(email) > 200 || !emailRegex.MatchString(email) {
			return shared.NewValidationError("invalid email format")
		}
		email = strings.ToLower(strings.TrimSpace(email))
	}
	if phone != "" {
		if len(phone) > 50 || !phoneRegex.MatchString(phone) {
			return shared.NewValidationError("invalid phone number format")
		}
	}

	c.Email = email
	c.Phone = strings.TrimSpace(phone)
	c.UpdatedAt = time.Now()
	return nil
}

// SetGSTIN sets the customer's GST identification number. Empty is allowed
// for unregistered customers.
func (c *Customer) SetGSTIN(gstin string) error {
	gstin = strings.ToUpper(strings.TrimSpace(gstin))
	if gstin != "" && !gstinRegex.MatchString(gstin) {
		return shared.NewValidationError("invalid GSTIN format")
	}

	c.GSTIN = gstin
	c.UpdatedAt = time.Now()
	return nil
}

// SetAddress sets the customer's billing address
func (c *Customer) SetAddress(line1, line2, city, state, stateCode, postalCode string) error {
	if len(line1) > 200 || len(line2) > 200 {
		return shared.NewValidationError("address line cannot exceed 200 characters")
	}
	if len(city) > 100 || len(state) > 100 {
		return shared.NewValidationError("city and state cannot exceed 100 characters")
	}
	if stateCode != "" && len(stateCode) != 2 {
		return shared.NewValidationError("state code must be two digits")
	}
	if len(postalCode) > 10 {
		return shared.NewValidationError("postal code cannot exceed 10 characters")
	}

	c.AddressLine1 = line1
	c.AddressLine2 = line2
	c.City = city
	c.State = state
	c.StateCode = stateCode
	c.PostalCode = postalCode
	c.UpdatedAt = time.Now()
	return nil
}

// SetNotes sets the customer's notes
func (c *Customer) SetNotes(notes string) {
	c.Notes = notes
	c.UpdatedAt = time.Now()
}

// Activate activates the customer
func (c *Customer) Activate() error {
	if c.Status == CustomerStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Customer is already active")
	}
	c.Status = CustomerStatusActive
	c.UpdatedAt = time.Now()
	return nil
}

// Deactivate deactivates the customer. Historical documents keep pointing at
// deactivated customers; only new documents are blocked.
func (c *Customer) Deactivate() error {
	if c.Status == CustomerStatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Customer is already inactive")
	}
	c.Status = CustomerStatusInactive
	c.UpdatedAt = time.Now()
	return nil
}

// IsActive returns true if the customer is active
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

func validateCustomerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("customer name cannot exceed 200 characters")
	}
	return nil
}
