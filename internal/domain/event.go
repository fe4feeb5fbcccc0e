package domain

import "time"

// Event is an immutable fact raised by an aggregate, destined for external
// consumers. Kind is the discriminator used for topic routing ("CustomerCreated").
type Event interface {
	Kind() string
	OccurredOn() time.Time
}

// eventStamp carries the instant the event value was constructed. Business
// timestamps (CreatedAt, ChangedAt, ...) live on the concrete event alongside it.
type eventStamp struct {
	Occurred time.Time `json:"occurredOn"`
}

func (s eventStamp) OccurredOn() time.Time { return s.Occurred }

func stampNow() eventStamp {
	return eventStamp{Occurred: time.Now().UTC()}
}
