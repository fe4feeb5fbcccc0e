// Package storage is the persistence collaborator behind uow.Storage: plain
// SQL over pgx, one statement per tracked change, all applied in a single
// transaction.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/crmdemo/crm-core/internal/domain"
	"github.com/crmdemo/crm-core/internal/uow"
	"github.com/crmdemo/crm-core/libs/db"
)

type Store struct {
	pool *db.Pool
}

func NewStore(pool *db.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) BeginTx(ctx context.Context) (uow.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return txHandle{tx: tx}, nil
}

// txHandle adapts pgx.Tx to the handle the unit of work owns.
type txHandle struct {
	tx pgx.Tx
}

func (h txHandle) Commit(ctx context.Context) error   { return h.tx.Commit(ctx) }
func (h txHandle) Rollback(ctx context.Context) error { return h.tx.Rollback(ctx) }

// PersistAll applies every change atomically. With a nil handle it opens its
// own transaction; otherwise the statements join the caller's transaction and
// the caller commits.
func (s *Store) PersistAll(ctx context.Context, handle uow.Tx, changes []uow.Change) (int64, error) {
	if len(changes) == 0 {
		return 0, nil
	}

	if handle == nil {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return 0, err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		rows, err := s.applyAll(ctx, tx, changes)
		if err != nil {
			return 0, err
		}
		if err := tx.Commit(ctx); err != nil {
			return 0, err
		}
		return rows, nil
	}

	h, ok := handle.(txHandle)
	if !ok {
		return 0, fmt.Errorf("unexpected transaction handle type %T", handle)
	}
	return s.applyAll(ctx, h.tx, changes)
}

func (s *Store) applyAll(ctx context.Context, tx pgx.Tx, changes []uow.Change) (int64, error) {
	var total int64
	for _, ch := range changes {
		n, err := s.apply(ctx, tx, ch)
		if err != nil {
			return 0, fmt.Errorf("persist %s %T: %w", ch.Op, ch.Aggregate, err)
		}
		total += n
	}
	return total, nil
}

// apply maps one aggregate to its statement. The mapping is declared per
// entity type here, not discovered at runtime.
func (s *Store) apply(ctx context.Context, tx pgx.Tx, ch uow.Change) (int64, error) {
	switch agg := ch.Aggregate.(type) {
	case *domain.Customer:
		if ch.Op == uow.OpDelete {
			return s.deleteRow(ctx, tx, "customers", agg.ID())
		}
		return s.upsertCustomer(ctx, tx, agg)
	case *domain.Contact:
		if ch.Op == uow.OpDelete {
			return s.deleteRow(ctx, tx, "contacts", agg.ID())
		}
		return s.upsertContact(ctx, tx, agg)
	case *domain.Task:
		if ch.Op == uow.OpDelete {
			return s.deleteRow(ctx, tx, "tasks", agg.ID())
		}
		return s.upsertTask(ctx, tx, agg)
	case *domain.Note:
		if ch.Op == uow.OpDelete {
			return s.deleteRow(ctx, tx, "notes", agg.ID())
		}
		return s.upsertNote(ctx, tx, agg)
	default:
		return 0, fmt.Errorf("no persistence mapping for %T", ch.Aggregate)
	}
}

func (s *Store) deleteRow(ctx context.Context, tx pgx.Tx, table, id string) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) upsertCustomer(ctx context.Context, tx pgx.Tx, c *domain.Customer) (int64, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO customers (id, company_name, tax_id, email, phone, address, status, assigned_sales_rep_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET company_name = EXCLUDED.company_name,
			tax_id = EXCLUDED.tax_id,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			status = EXCLUDED.status,
			assigned_sales_rep_id = EXCLUDED.assigned_sales_rep_id,
			updated_at = EXCLUDED.updated_at
	`, c.ID(), c.CompanyName, c.TaxID, c.Email.String(), c.Phone, c.Address,
		string(c.Status), nullString(c.AssignedSalesRepID), c.CreatedAt, nullTime(c.UpdatedAt))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) upsertContact(ctx context.Context, tx pgx.Tx, c *domain.Contact) (int64, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO contacts (id, first_name, last_name, email, phone, job_title, department, type, status, customer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE
		SET first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			job_title = EXCLUDED.job_title,
			department = EXCLUDED.department,
			type = EXCLUDED.type,
			status = EXCLUDED.status,
			customer_id = EXCLUDED.customer_id,
			updated_at = EXCLUDED.updated_at
	`, c.ID(), c.FirstName, c.LastName, c.Email.String(), c.Phone, c.JobTitle, c.Department,
		string(c.Type), string(c.Status), nullString(c.CustomerID), c.CreatedAt, nullTime(c.UpdatedAt))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) upsertTask(ctx context.Context, tx pgx.Tx, t *domain.Task) (int64, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO tasks (id, title, description, type, status, priority, due_date, start_date, completed_date, customer_id, contact_id, assigned_to_user_id, created_by_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
			description = EXCLUDED.description,
			type = EXCLUDED.type,
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			due_date = EXCLUDED.due_date,
			start_date = EXCLUDED.start_date,
			completed_date = EXCLUDED.completed_date,
			customer_id = EXCLUDED.customer_id,
			contact_id = EXCLUDED.contact_id,
			assigned_to_user_id = EXCLUDED.assigned_to_user_id,
			updated_at = EXCLUDED.updated_at
	`, t.ID(), t.Title, t.Description, string(t.Type), string(t.Status), string(t.Priority),
		t.DueDate, t.StartDate, t.CompletedDate,
		nullString(t.CustomerID), nullString(t.ContactID), nullString(t.AssignedToUserID),
		t.CreatedByUserID, t.CreatedAt, nullTime(t.UpdatedAt))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) upsertNote(ctx context.Context, tx pgx.Tx, n *domain.Note) (int64, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO notes (id, content, title, type, category, customer_id, contact_id, task_id, created_by_user_id, updated_by_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE
		SET content = EXCLUDED.content,
			title = EXCLUDED.title,
			type = EXCLUDED.type,
			category = EXCLUDED.category,
			customer_id = EXCLUDED.customer_id,
			contact_id = EXCLUDED.contact_id,
			task_id = EXCLUDED.task_id,
			updated_by_user_id = EXCLUDED.updated_by_user_id,
			updated_at = EXCLUDED.updated_at
	`, n.ID(), n.Content, n.Title, string(n.Type), string(n.Category),
		nullString(n.CustomerID), nullString(n.ContactID), nullString(n.TaskID),
		n.CreatedByUserID, nullString(n.UpdatedByUserID), n.CreatedAt, nullTime(n.UpdatedAt))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func nullString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
