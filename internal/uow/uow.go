// Package uow coordinates one save cycle: persist every tracked change as one
// atomic write, then hand the events the aggregates raised to the broker.
// Publishing happens strictly after the write is durable and is never part of
// the same atomic unit; a publish failure cannot roll the write back.
package uow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crmdemo/crm-core/internal/domain"
	"github.com/crmdemo/crm-core/libs/runtime"
)

// Tx is an open database transaction, owned by one UnitOfWork for the
// duration of one save cycle.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type ChangeOp string

const (
	OpInsert ChangeOp = "insert"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// Change is one tracked aggregate mutation awaiting persistence.
type Change struct {
	Op        ChangeOp
	Aggregate domain.AggregateRoot
}

// Storage is the persistence collaborator. PersistAll applies every change as
// one atomic operation and reports rows affected; when tx is nil it opens and
// commits its own transaction, otherwise it runs inside tx.
type Storage interface {
	BeginTx(ctx context.Context) (Tx, error)
	PersistAll(ctx context.Context, tx Tx, changes []Change) (int64, error)
}

// EventPublisher delivers one event to the broker with acknowledgment.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// ErrTransactionOpen is returned by Begin when a transaction is already open.
// The nested begin is a caller bug, not something to paper over with a warning.
var ErrTransactionOpen = errors.New("transaction already open")

// UnitOfWork tracks aggregates changed during one request and flushes them
// with SaveChanges. Not safe for concurrent use; create one per request.
type UnitOfWork struct {
	storage   Storage
	publisher EventPublisher
	logger    *slog.Logger

	changes []Change
	tx      Tx
}

func New(storage Storage, publisher EventPublisher, logger *slog.Logger) *UnitOfWork {
	if logger == nil {
		logger = runtime.NewLogger("crm-core")
	}
	return &UnitOfWork{
		storage:   storage,
		publisher: publisher,
		logger:    logger,
	}
}

func (u *UnitOfWork) RegisterNew(agg domain.AggregateRoot)     { u.register(OpInsert, agg) }
func (u *UnitOfWork) RegisterDirty(agg domain.AggregateRoot)   { u.register(OpUpdate, agg) }
func (u *UnitOfWork) RegisterDeleted(agg domain.AggregateRoot) { u.register(OpDelete, agg) }

func (u *UnitOfWork) register(op ChangeOp, agg domain.AggregateRoot) {
	u.changes = append(u.changes, Change{Op: op, Aggregate: agg})
}

// SaveChanges collects the buffered events of every tracked aggregate (in
// registration order, raise order within one aggregate), persists all row
// changes atomically, and then publishes the collected events one by one.
// The return value is the number of persisted rows, not the event count.
//
// If the write fails the collected events are discarded: nothing was
// published yet, so the attempt is simply lost. The tracked changes survive,
// so retrying SaveChanges persists the same rows again but publishes nothing,
// the event buffers having been drained on the first attempt. If a publish
// fails the error is logged and swallowed; the save is still reported as
// successful because the data is already durable.
func (u *UnitOfWork) SaveChanges(ctx context.Context) (int64, error) {
	events := u.collectEvents()

	rows, err := u.storage.PersistAll(ctx, u.tx, u.changes)
	if err != nil {
		return 0, fmt.Errorf("persist changes: %w", err)
	}
	u.changes = nil

	u.publishEvents(ctx, events)
	return rows, nil
}

func (u *UnitOfWork) collectEvents() []domain.Event {
	var events []domain.Event
	for _, ch := range u.changes {
		pending := ch.Aggregate.PendingEvents()
		if len(pending) == 0 {
			continue
		}
		events = append(events, pending...)
		ch.Aggregate.ClearEvents()
	}
	return events
}

func (u *UnitOfWork) publishEvents(ctx context.Context, events []domain.Event) {
	if len(events) == 0 {
		return
	}
	u.logger.Info("publishing domain events", "count", len(events))

	for i, ev := range events {
		if ctx.Err() != nil {
			u.logger.Warn("publish aborted, dropping remaining events",
				"remaining", len(events)-i, "err", ctx.Err())
			return
		}
		if err := u.publisher.Publish(ctx, ev); err != nil {
			// Logged and swallowed: without an outbox the event is gone unless
			// an operator replays it from this log line.
			u.logger.Error("domain event publish failed",
				"event_type", ev.Kind(), "err", err)
		}
	}
}

// Begin opens a transaction covering subsequent SaveChanges calls until
// Commit or Rollback. Beginning while one is open returns ErrTransactionOpen.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return ErrTransactionOpen
	}
	tx, err := u.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	u.tx = tx
	u.logger.Info("transaction started")
	return nil
}

// Commit finalizes the open transaction. A commit error triggers an automatic
// rollback before propagating; either way the handle is disposed exactly once.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		u.logger.Warn("no transaction to commit")
		return nil
	}
	tx := u.tx
	u.tx = nil

	if err := tx.Commit(ctx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			u.logger.Error("rollback after failed commit failed", "err", rbErr)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	u.logger.Info("transaction committed")
	return nil
}

// Rollback reverses and disposes the open transaction.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		u.logger.Warn("no transaction to rollback")
		return nil
	}
	tx := u.tx
	u.tx = nil

	if err := tx.Rollback(ctx); err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	u.logger.Info("transaction rolled back")
	return nil
}

func (u *UnitOfWork) InTransaction() bool { return u.tx != nil }

// RunInTransaction wraps fn in Begin/Commit, rolling back and propagating the
// error when fn fails. Used by request-level wrappers to span several
// SaveChanges calls.
func (u *UnitOfWork) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := u.Begin(ctx); err != nil {
		return err
	}
	if err := fn(ctx); err != nil {
		if rbErr := u.Rollback(ctx); rbErr != nil {
			u.logger.Error("rollback failed", "err", rbErr)
		}
		return err
	}
	return u.Commit(ctx)
}
