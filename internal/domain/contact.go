package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ContactStatus string

const (
	ContactStatusActive   ContactStatus = "Active"
	ContactStatusInactive ContactStatus = "Inactive"
	ContactStatusArchived ContactStatus = "Archived"
)

func ParseContactStatus(v string) (ContactStatus, error) {
	switch s := ContactStatus(v); s {
	case ContactStatusActive, ContactStatusInactive, ContactStatusArchived:
		return s, nil
	}
	return "", Errorf("invalid contact status: %s", v)
}

type ContactType string

const (
	ContactTypePerson  ContactType = "Person"
	ContactTypeCompany ContactType = "Company"
)

// Contact is a person (or company representative) optionally linked to a
// customer aggregate by ID only.
type Contact struct {
	Root

	FirstName  string
	LastName   string
	Email      Email
	Phone      string
	JobTitle   string
	Department string
	Type       ContactType
	Status     ContactStatus
	CustomerID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

func NewContact(firstName, lastName string, email Email, typ ContactType, phone, jobTitle, department, customerID string) (*Contact, error) {
	if strings.TrimSpace(firstName) == "" {
		return nil, Errorf("first name cannot be empty")
	}
	if strings.TrimSpace(lastName) == "" {
		return nil, Errorf("last name cannot be empty")
	}

	c := &Contact{
		Root:       NewRoot(uuid.NewString()),
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Phone:      phone,
		JobTitle:   jobTitle,
		Department: department,
		Type:       typ,
		Status:     ContactStatusActive,
		CustomerID: customerID,
		CreatedAt:  time.Now().UTC(),
	}
	c.Raise(ContactCreated{
		eventStamp: stampNow(),
		ContactID:  c.ID(),
		FullName:   c.FullName(),
		Email:      c.Email.String(),
		CreatedAt:  c.CreatedAt,
		CustomerID: c.CustomerID,
	})
	return c, nil
}

func (c *Contact) UpdateContactInfo(email Email, phone, jobTitle, department string) error {
	if c.Status == ContactStatusArchived {
		return Errorf("cannot update archived contact")
	}
	c.Email = email
	c.Phone = phone
	c.JobTitle = jobTitle
	c.Department = department
	c.UpdatedAt = time.Now().UTC()

	c.Raise(ContactUpdated{
		eventStamp:        stampNow(),
		ContactID:         c.ID(),
		ChangeDescription: "Contact info updated",
		UpdatedAt:         c.UpdatedAt,
	})
	return nil
}

// AssignToCustomer links the contact to a customer. Re-assigning to the same
// customer is a no-op and raises nothing.
func (c *Contact) AssignToCustomer(customerID string) {
	if c.CustomerID == customerID {
		return
	}
	oldCustomerID := c.CustomerID
	c.CustomerID = customerID
	c.UpdatedAt = time.Now().UTC()

	c.Raise(ContactAssignedToCustomer{
		eventStamp:    stampNow(),
		ContactID:     c.ID(),
		OldCustomerID: oldCustomerID,
		NewCustomerID: customerID,
		AssignedAt:    c.UpdatedAt,
	})
}

func (c *Contact) ChangeStatus(newStatus ContactStatus) {
	if c.Status == newStatus {
		return
	}
	oldStatus := c.Status
	c.Status = newStatus
	c.UpdatedAt = time.Now().UTC()

	c.Raise(ContactStatusChanged{
		eventStamp: stampNow(),
		ContactID:  c.ID(),
		OldStatus:  string(oldStatus),
		NewStatus:  string(newStatus),
		ChangedAt:  c.UpdatedAt,
	})
}

type ContactCreated struct {
	eventStamp
	ContactID  string    `json:"contactId"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"createdAt"`
	CustomerID string    `json:"customerId,omitempty"`
}

func (ContactCreated) Kind() string { return "ContactCreated" }

type ContactUpdated struct {
	eventStamp
	ContactID         string    `json:"contactId"`
	ChangeDescription string    `json:"changeDescription"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (ContactUpdated) Kind() string { return "ContactUpdated" }

type ContactAssignedToCustomer struct {
	eventStamp
	ContactID     string    `json:"contactId"`
	OldCustomerID string    `json:"oldCustomerId,omitempty"`
	NewCustomerID string    `json:"newCustomerId,omitempty"`
	AssignedAt    time.Time `json:"assignedAt"`
}

func (ContactAssignedToCustomer) Kind() string { return "ContactAssignedToCustomer" }

type ContactStatusChanged struct {
	eventStamp
	ContactID string    `json:"contactId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	ChangedAt time.Time `json:"changedAt"`
}

func (ContactStatusChanged) Kind() string { return "ContactStatusChanged" }
