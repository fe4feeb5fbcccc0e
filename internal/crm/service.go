// Package crm exposes the request-handler-facing operations. Each operation
// loads or creates aggregates, runs business methods, and flushes one unit of
// work inside a transaction wrapper.
package crm

import (
	"context"
	"log/slog"

	"github.com/crmdemo/crm-core/internal/domain"
	"github.com/crmdemo/crm-core/internal/uow"
)

// CustomerStore is the storage surface the customer operations need.
type CustomerStore interface {
	uow.Storage
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
}

type Service struct {
	store     CustomerStore
	publisher uow.EventPublisher
	logger    *slog.Logger
}

func NewService(store CustomerStore, publisher uow.EventPublisher, logger *slog.Logger) *Service {
	return &Service{store: store, publisher: publisher, logger: logger}
}

// Units of work are per-request; the store, publisher and logger are the
// process-wide collaborators they share.
func (s *Service) newUnitOfWork() *uow.UnitOfWork {
	return uow.New(s.store, s.publisher, s.logger)
}

type CreateCustomerInput struct {
	CompanyName string
	TaxID       string
	Email       string
	Phone       string
	Address     string
}

func (s *Service) CreateCustomer(ctx context.Context, in CreateCustomerInput) (string, error) {
	email, err := domain.NewEmail(in.Email)
	if err != nil {
		return "", err
	}
	customer, err := domain.NewCustomer(in.CompanyName, in.TaxID, email, in.Phone, in.Address)
	if err != nil {
		return "", err
	}

	u := s.newUnitOfWork()
	u.RegisterNew(customer)
	if err := u.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := u.SaveChanges(ctx)
		return err
	}); err != nil {
		return "", err
	}

	s.logger.Info("customer created", "customer_id", customer.ID())
	return customer.ID(), nil
}

type UpdateCustomerInput struct {
	CustomerID string
	Email      string
	Phone      string
	Address    string
}

func (s *Service) UpdateCustomer(ctx context.Context, in UpdateCustomerInput) error {
	email, err := domain.NewEmail(in.Email)
	if err != nil {
		return err
	}

	customer, err := s.store.GetCustomer(ctx, in.CustomerID)
	if err != nil {
		return err
	}
	if err := customer.UpdateContactInfo(email, in.Phone, in.Address); err != nil {
		return err
	}

	u := s.newUnitOfWork()
	u.RegisterDirty(customer)
	return u.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := u.SaveChanges(ctx)
		return err
	})
}

func (s *Service) ChangeCustomerStatus(ctx context.Context, customerID string, status domain.CustomerStatus) error {
	customer, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	customer.ChangeStatus(status)

	u := s.newUnitOfWork()
	u.RegisterDirty(customer)
	return u.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := u.SaveChanges(ctx)
		return err
	})
}

func (s *Service) DeleteCustomer(ctx context.Context, customerID string) error {
	customer, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		return err
	}

	u := s.newUnitOfWork()
	u.RegisterDeleted(customer)
	return u.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := u.SaveChanges(ctx)
		return err
	})
}
