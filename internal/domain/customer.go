package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type CustomerStatus string

const (
	CustomerStatusProspect CustomerStatus = "Prospect"
	CustomerStatusActive   CustomerStatus = "Active"
	CustomerStatusInactive CustomerStatus = "Inactive"
	CustomerStatusArchived CustomerStatus = "Archived"
)

func ParseCustomerStatus(v string) (CustomerStatus, error) {
	switch s := CustomerStatus(v); s {
	case CustomerStatusProspect, CustomerStatusActive, CustomerStatusInactive, CustomerStatusArchived:
		return s, nil
	}
	return "", Errorf("invalid customer status: %s", v)
}

// Customer is the company-level aggregate. All mutation goes through business
// methods, which buffer the corresponding events.
type Customer struct {
	Root

	CompanyName        string
	TaxID              string
	Email              Email
	Phone              string
	Address            string
	Status             CustomerStatus
	AssignedSalesRepID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewCustomer(companyName, taxID string, email Email, phone, address string) (*Customer, error) {
	if strings.TrimSpace(companyName) == "" {
		return nil, Errorf("company name cannot be empty")
	}
	if strings.TrimSpace(taxID) == "" {
		return nil, Errorf("tax ID cannot be empty")
	}
	if email.IsZero() {
		return nil, Errorf("email cannot be empty")
	}

	c := &Customer{
		Root:        NewRoot(uuid.NewString()),
		CompanyName: companyName,
		TaxID:       taxID,
		Email:       email,
		Phone:       phone,
		Address:     address,
		Status:      CustomerStatusProspect,
		CreatedAt:   time.Now().UTC(),
	}
	c.Raise(CustomerCreated{
		eventStamp:  stampNow(),
		CustomerID:  c.ID(),
		CompanyName: c.CompanyName,
		Email:       c.Email.String(),
		CreatedAt:   c.CreatedAt,
	})
	return c, nil
}

// RehydrateCustomer rebuilds a customer from stored state with an empty event
// buffer.
func RehydrateCustomer(id, companyName, taxID string, email Email, phone, address string, status CustomerStatus, salesRepID string, createdAt, updatedAt time.Time) *Customer {
	return &Customer{
		Root:               NewRoot(id),
		CompanyName:        companyName,
		TaxID:              taxID,
		Email:              email,
		Phone:              phone,
		Address:            address,
		Status:             status,
		AssignedSalesRepID: salesRepID,
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}
}

// UpdateContactInfo replaces the customer's contact details. An event is
// raised only when the email actually changed.
func (c *Customer) UpdateContactInfo(email Email, phone, address string) error {
	if c.Status == CustomerStatusArchived {
		return Errorf("cannot update archived customer")
	}
	oldEmail := c.Email
	c.Email = email
	c.Phone = phone
	c.Address = address
	c.UpdatedAt = time.Now().UTC()

	if oldEmail != email {
		c.Raise(CustomerUpdated{
			eventStamp:        stampNow(),
			CustomerID:        c.ID(),
			ChangeDescription: "Email changed",
			UpdatedAt:         c.UpdatedAt,
		})
	}
	return nil
}

func (c *Customer) ChangeStatus(newStatus CustomerStatus) {
	if c.Status == newStatus {
		return
	}
	oldStatus := c.Status
	c.Status = newStatus
	c.UpdatedAt = time.Now().UTC()

	c.Raise(CustomerStatusChanged{
		eventStamp: stampNow(),
		CustomerID: c.ID(),
		OldStatus:  string(oldStatus),
		NewStatus:  string(newStatus),
		ChangedAt:  c.UpdatedAt,
	})
}

func (c *Customer) AssignSalesRep(salesRepID string) {
	if c.AssignedSalesRepID == salesRepID {
		return
	}
	c.AssignedSalesRepID = salesRepID
	c.UpdatedAt = time.Now().UTC()
}

type CustomerCreated struct {
	eventStamp
	CustomerID  string    `json:"customerId"`
	CompanyName string    `json:"companyName"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (CustomerCreated) Kind() string { return "CustomerCreated" }

type CustomerUpdated struct {
	eventStamp
	CustomerID        string    `json:"customerId"`
	ChangeDescription string    `json:"changeDescription"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (CustomerUpdated) Kind() string { return "CustomerUpdated" }

type CustomerStatusChanged struct {
	eventStamp
	CustomerID string    `json:"customerId"`
	OldStatus  string    `json:"oldStatus"`
	NewStatus  string    `json:"newStatus"`
	ChangedAt  time.Time `json:"changedAt"`
}

func (CustomerStatusChanged) Kind() string { return "CustomerStatusChanged" }
