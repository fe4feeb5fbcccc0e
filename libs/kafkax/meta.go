package kafkax

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// EventMeta is the canonical metadata carried on every published record.
type EventMeta struct {
	EventType  string
	OccurredOn time.Time
}

// ExtractEventMeta reads the EventType and OccurredOn headers of a record.
// A missing EventType falls back to the topic name; an unparsable OccurredOn
// is left zero.
func ExtractEventMeta(msg kafka.Message) EventMeta {
	eventType := HeaderValue(msg.Headers, "EventType")
	if eventType == "" {
		eventType = msg.Topic
	}
	meta := EventMeta{EventType: eventType}
	if raw := HeaderValue(msg.Headers, "OccurredOn"); raw != "" {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			meta.OccurredOn = ts
		}
	}
	return meta
}

func HeaderValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
