package crm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"

	"github.com/crmdemo/crm-core/internal/domain"
	"github.com/crmdemo/crm-core/internal/messaging"
	"github.com/crmdemo/crm-core/internal/uow"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memTx struct {
	commits   int
	rollbacks int
}

func (t *memTx) Commit(context.Context) error   { t.commits++; return nil }
func (t *memTx) Rollback(context.Context) error { t.rollbacks++; return nil }

// memStore keeps customer snapshots in memory, standing in for the SQL store.
type memStore struct {
	mu         sync.Mutex
	customers  map[string]*domain.Customer
	txs        []*memTx
	persistErr error
}

func newMemStore() *memStore {
	return &memStore{customers: make(map[string]*domain.Customer)}
}

func (s *memStore) BeginTx(context.Context) (uow.Tx, error) {
	tx := &memTx{}
	s.mu.Lock()
	s.txs = append(s.txs, tx)
	s.mu.Unlock()
	return tx, nil
}

func (s *memStore) PersistAll(_ context.Context, _ uow.Tx, changes []uow.Change) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.persistErr != nil {
		return 0, s.persistErr
	}
	var rows int64
	for _, ch := range changes {
		c, ok := ch.Aggregate.(*domain.Customer)
		if !ok {
			return 0, fmt.Errorf("unexpected aggregate %T", ch.Aggregate)
		}
		if ch.Op == uow.OpDelete {
			delete(s.customers, c.ID())
		} else {
			s.customers[c.ID()] = snapshot(c)
		}
		rows++
	}
	return rows, nil
}

func (s *memStore) GetCustomer(_ context.Context, id string) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %s: not found", id)
	}
	return snapshot(c), nil
}

// snapshot detaches the stored state from the caller's aggregate instance,
// the way a row round-trip would.
func snapshot(c *domain.Customer) *domain.Customer {
	return domain.RehydrateCustomer(
		c.ID(), c.CompanyName, c.TaxID, c.Email, c.Phone, c.Address,
		c.Status, c.AssignedSalesRepID, c.CreatedAt, c.UpdatedAt,
	)
}

type captureWriter struct {
	mu        sync.Mutex
	messages  []kafka.Message
	failTopic string
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msgs...)
	for _, m := range msgs {
		if w.failTopic != "" && m.Topic == w.failTopic {
			return errors.New("broker rejected message")
		}
	}
	return nil
}

func (w *captureWriter) Close() error { return nil }

func (w *captureWriter) captured() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]kafka.Message, len(w.messages))
	copy(out, w.messages)
	return out
}

func newTestService(store *memStore, writer *captureWriter) *Service {
	publisher := messaging.NewPublisherWithWriter(writer, messaging.NewRouter(""), testLogger())
	return NewService(store, publisher, testLogger())
}

func TestCreateCustomer_PersistsAndPublishesOnce(t *testing.T) {
	store := newMemStore()
	writer := &captureWriter{}
	svc := newTestService(store, writer)

	id, err := svc.CreateCustomer(context.Background(), CreateCustomerInput{
		CompanyName: "Acme",
		TaxID:       "1234567890",
		Email:       "a@acme.com",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if id == "" {
		t.Fatal("expected customer id")
	}

	if _, err := store.GetCustomer(context.Background(), id); err != nil {
		t.Fatalf("customer should be persisted: %v", err)
	}
	if store.txs[0].commits != 1 {
		t.Fatalf("expected 1 commit, got %d", store.txs[0].commits)
	}

	msgs := writer.captured()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 publish attempt, got %d", len(msgs))
	}
	if msgs[0].Topic != "customers-events" {
		t.Fatalf("expected topic customers-events, got %s", msgs[0].Topic)
	}
	var payload map[string]any
	if err := json.Unmarshal(msgs[0].Value, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["customerId"] != id {
		t.Fatalf("payload customerId %v != %s", payload["customerId"], id)
	}
	if payload["email"] != "a@acme.com" {
		t.Fatalf("payload email %v", payload["email"])
	}
}

func TestCreateCustomer_InvalidEmailRejectedBeforePersist(t *testing.T) {
	store := newMemStore()
	writer := &captureWriter{}
	svc := newTestService(store, writer)

	_, err := svc.CreateCustomer(context.Background(), CreateCustomerInput{
		CompanyName: "Acme",
		TaxID:       "1234567890",
		Email:       "nope",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(store.customers) != 0 {
		t.Fatal("nothing may be persisted on a validation error")
	}
	if len(writer.captured()) != 0 {
		t.Fatal("nothing may be published on a validation error")
	}
}

func TestCreateCustomer_PublishFailureDoesNotFailTheRequest(t *testing.T) {
	store := newMemStore()
	writer := &captureWriter{failTopic: "customers-events"}
	svc := newTestService(store, writer)

	id, err := svc.CreateCustomer(context.Background(), CreateCustomerInput{
		CompanyName: "Acme",
		TaxID:       "1234567890",
		Email:       "a@acme.com",
	})
	if err != nil {
		t.Fatalf("publish failure must be swallowed, got %v", err)
	}
	if _, err := store.GetCustomer(context.Background(), id); err != nil {
		t.Fatalf("customer should still be persisted: %v", err)
	}
	if len(writer.captured()) != 1 {
		t.Fatal("the publish must still have been attempted")
	}
}

func TestCreateCustomer_PersistFailureRollsBack(t *testing.T) {
	store := newMemStore()
	store.persistErr = errors.New("disk full")
	writer := &captureWriter{}
	svc := newTestService(store, writer)

	_, err := svc.CreateCustomer(context.Background(), CreateCustomerInput{
		CompanyName: "Acme",
		TaxID:       "1234567890",
		Email:       "a@acme.com",
	})
	if err == nil {
		t.Fatal("expected persist error")
	}
	if len(writer.captured()) != 0 {
		t.Fatal("no publish attempts after a failed write")
	}
	if store.txs[0].rollbacks != 1 || store.txs[0].commits != 0 {
		t.Fatalf("expected rollback without commit, got %d/%d",
			store.txs[0].rollbacks, store.txs[0].commits)
	}
}

func TestUpdateCustomer_NoOpEmailChangePublishesNothing(t *testing.T) {
	store := newMemStore()
	writer := &captureWriter{}
	svc := newTestService(store, writer)

	id, err := svc.CreateCustomer(context.Background(), CreateCustomerInput{
		CompanyName: "Acme",
		TaxID:       "1234567890",
		Email:       "old@x.com",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	before := len(writer.captured())

	if err := svc.UpdateCustomer(context.Background(), UpdateCustomerInput{
		CustomerID: id,
		Email:      "old@x.com",
	}); err != nil {
		t.Fatalf("update customer: %v", err)
	}
	if got := len(writer.captured()); got != before {
		t.Fatalf("no-op update must publish nothing, got %d new messages", got-before)
	}

	if err := svc.UpdateCustomer(context.Background(), UpdateCustomerInput{
		CustomerID: id,
		Email:      "new@x.com",
	}); err != nil {
		t.Fatalf("update customer: %v", err)
	}
	msgs := writer.captured()
	if len(msgs) != before+1 {
		t.Fatalf("expected exactly 1 new message, got %d", len(msgs)-before)
	}
	last := msgs[len(msgs)-1]
	var payload map[string]any
	if err := json.Unmarshal(last.Value, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["changeDescription"] != "Email changed" {
		t.Fatalf("expected CustomerUpdated payload, got %v", payload)
	}
}

func TestDeleteCustomer_RemovesRow(t *testing.T) {
	store := newMemStore()
	writer := &captureWriter{}
	svc := newTestService(store, writer)

	id, err := svc.CreateCustomer(context.Background(), CreateCustomerInput{
		CompanyName: "Acme",
		TaxID:       "1234567890",
		Email:       "a@acme.com",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if err := svc.DeleteCustomer(context.Background(), id); err != nil {
		t.Fatalf("delete customer: %v", err)
	}
	if _, err := store.GetCustomer(context.Background(), id); err == nil {
		t.Fatal("customer should be gone")
	}
}
