package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/crmdemo/crm-core/internal/domain"
)

var ErrNotFound = errors.New("not found")

// GetCustomer loads one customer with an empty event buffer.
func (s *Store) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	var (
		companyName, taxID, email string
		phone, address            *string
		status                    string
		salesRepID                *string
		createdAt                 time.Time
		updatedAt                 *time.Time
	)
	err := s.pool.QueryRow(ctx, `
		SELECT company_name, tax_id, email, phone, address, status, assigned_sales_rep_id, created_at, updated_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&companyName, &taxID, &email, &phone, &address, &status, &salesRepID, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	st, err := domain.ParseCustomerStatus(status)
	if err != nil {
		return nil, err
	}
	return domain.RehydrateCustomer(
		id, companyName, taxID, domain.EmailFromStore(email),
		deref(phone), deref(address), st, deref(salesRepID),
		createdAt, derefTime(updatedAt),
	), nil
}

// ListCustomers returns customers newest first.
func (s *Store) ListCustomers(ctx context.Context, limit int) ([]*domain.Customer, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, company_name, tax_id, email, phone, address, status, assigned_sales_rep_id, created_at, updated_at
		FROM customers
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Customer
	for rows.Next() {
		var (
			id, companyName, taxID, email string
			phone, address                *string
			status                        string
			salesRepID                    *string
			createdAt                     time.Time
			updatedAt                     *time.Time
		)
		if err := rows.Scan(&id, &companyName, &taxID, &email, &phone, &address, &status, &salesRepID, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		st, err := domain.ParseCustomerStatus(status)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.RehydrateCustomer(
			id, companyName, taxID, domain.EmailFromStore(email),
			deref(phone), deref(address), st, deref(salesRepID),
			createdAt, derefTime(updatedAt),
		))
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
