package domain

// AggregateRoot is what the unit of work needs from a tracked entity: an
// identity and access to the events buffered since it was loaded.
type AggregateRoot interface {
	ID() string
	PendingEvents() []Event
	ClearEvents()
}

// Root gives an entity an identity and an ordered pending-event buffer.
// Embed it in every aggregate. Aggregates are loaded fresh per request and
// never shared across goroutines, so the buffer is unsynchronized.
type Root struct {
	id      string
	pending []Event
}

func NewRoot(id string) Root {
	return Root{id: id}
}

func (r *Root) ID() string { return r.id }

// Raise appends ev to the tail of the pending buffer. In-memory only, never
// fails; the buffer has no capacity cap.
func (r *Root) Raise(ev Event) {
	r.pending = append(r.pending, ev)
}

// PendingEvents returns a snapshot of the buffer in raise order.
func (r *Root) PendingEvents() []Event {
	out := make([]Event, len(r.pending))
	copy(out, r.pending)
	return out
}

// ClearEvents empties the buffer. Clearing an empty buffer is a no-op.
func (r *Root) ClearEvents() {
	r.pending = nil
}

// DrainEvents returns the buffered events in raise order and clears the
// buffer. A second drain returns an empty slice.
func (r *Root) DrainEvents() []Event {
	out := r.pending
	r.pending = nil
	return out
}
