package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/crmdemo/crm-core/internal/domain"
	"github.com/crmdemo/crm-core/libs/kafkax"
	"github.com/crmdemo/crm-core/libs/runtime"
	"github.com/segmentio/kafka-go"
)

// BrokerWriter is the slice of kafka.Writer the publisher uses. The concrete
// writer is safe for concurrent use; fakes in tests must be too.
type BrokerWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PublishError is a per-event publish failure, carrying enough context to
// reconstruct the event from logs.
type PublishError struct {
	Stage string // "serialize" or "send"
	Kind  string
	Topic string
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s (topic %s): %s failed: %v", e.Kind, e.Topic, e.Stage, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

type PublisherConfig struct {
	Brokers      string
	DefaultTopic string
	MaxAttempts  int
	RetryBackoff time.Duration
	WriteTimeout time.Duration
}

// Publisher serializes domain events and sends them to the broker at the
// routed topic, waiting for acknowledgment from all replicas. One Publisher
// (and its writer connection) is shared by the whole process.
type Publisher struct {
	writer BrokerWriter
	router *Router
	logger *slog.Logger
}

func NewPublisher(logger *slog.Logger, cfg PublisherConfig) *Publisher {
	if logger == nil {
		logger = runtime.NewLogger("crm-core")
	}
	brokers := kafkax.SplitBrokers(cfg.Brokers)
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  cfg.MaxAttempts,
		// Fixed retry interval: min == max disables the exponential ramp.
		WriteBackoffMin: cfg.RetryBackoff,
		WriteBackoffMax: cfg.RetryBackoff,
		WriteTimeout:    cfg.WriteTimeout,
		BatchTimeout:    10 * time.Millisecond,
	}
	return &Publisher{
		writer: writer,
		router: NewRouter(cfg.DefaultTopic),
		logger: logger,
	}
}

// NewPublisherWithWriter wires a pre-built writer; used by tests and by
// callers that need custom transport settings.
func NewPublisherWithWriter(writer BrokerWriter, router *Router, logger *slog.Logger) *Publisher {
	if router == nil {
		router = NewRouter("")
	}
	return &Publisher{writer: writer, router: router, logger: logger}
}

// Publish sends one event and blocks until the broker acknowledges it (or
// the writer exhausts its bounded retries). Every failure is logged with the
// event kind, target topic and root cause before being returned.
func (p *Publisher) Publish(ctx context.Context, ev domain.Event) error {
	return p.publish(ctx, ev, func() {})
}

// publish does the actual work; sending is called exactly once, right before
// the send would begin (including the paths that fail before sending), so
// PublishBatch can order send starts across goroutines.
func (p *Publisher) publish(ctx context.Context, ev domain.Event, sending func()) error {
	topic := p.router.TopicFor(ev.Kind())

	payload, err := json.Marshal(ev)
	if err != nil {
		sending()
		perr := &PublishError{Stage: "serialize", Kind: ev.Kind(), Topic: topic, Err: err}
		p.logger.Error("event serialization failed", "event_type", ev.Kind(), "topic", topic, "err", err)
		return perr
	}

	msg := kafka.Message{
		Topic: topic,
		Value: payload,
		Headers: []kafka.Header{
			{Key: "EventType", Value: []byte(ev.Kind())},
			{Key: "OccurredOn", Value: []byte(ev.OccurredOn().Format(time.RFC3339Nano))},
		},
	}
	msg.Headers = kafkax.InjectTraceHeaders(ctx, msg.Headers)

	sending()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		perr := &PublishError{Stage: "send", Kind: ev.Kind(), Topic: topic, Err: err}
		p.logger.Error("event publish failed", "event_type", ev.Kind(), "topic", topic, "err", err)
		return perr
	}

	p.logger.Info("published domain event", "event_type", ev.Kind(), "topic", topic)
	return nil
}

// PublishBatch fans out Publish for each event concurrently and waits for all
// of them. A failure in one does not cancel the others; the returned slice is
// aligned with events (nil entries are successes). Send starts follow list
// order: an event's send begins only after the previous event's send has
// begun. Sends then proceed in parallel, so completion order is unordered and
// a slow or failing send never stalls the rest of the batch.
func (p *Publisher) PublishBatch(ctx context.Context, events []domain.Event) []error {
	errs := make([]error, len(events))

	var wg sync.WaitGroup
	prev := make(chan struct{})
	close(prev)
	for i, ev := range events {
		wg.Add(1)
		next := make(chan struct{})
		go func(i int, ev domain.Event, prev, next chan struct{}) {
			defer wg.Done()
			<-prev
			errs[i] = p.publish(ctx, ev, func() { close(next) })
		}(i, ev, prev, next)
		prev = next
	}
	wg.Wait()
	return errs
}

// Close drains outstanding sends and releases the broker connection. Call it
// once on shutdown.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
