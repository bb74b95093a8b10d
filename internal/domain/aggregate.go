package domain

// AggregateRoot holds an aggregate identity and the buffer of domain events
// recorded since the aggregate was loaded. The buffer only grows during
// in-process method calls; the persistence orchestrator drains it exactly
// once after a successful save. Rehydration through an Existing* factory
// starts with an empty buffer so historical events are never re-emitted.
type AggregateRoot struct {
	id            string
	pendingEvents []*Event
}

func newAggregateRoot(id string) AggregateRoot {
	return AggregateRoot{id: id, pendingEvents: make([]*Event, 0)}
}

// ID returns the aggregate identity
func (a *AggregateRoot) ID() string {
	return a.id
}

// recordEvent appends a domain event to the pending buffer
func (a *AggregateRoot) recordEvent(event *Event) {
	a.pendingEvents = append(a.pendingEvents, event)
}

// PendingEvents returns the not-yet-dispatched domain events in recording order
func (a *AggregateRoot) PendingEvents() []*Event {
	return a.pendingEvents
}

// ClearPendingEvents empties the pending event buffer
func (a *AggregateRoot) ClearPendingEvents() {
	a.pendingEvents = make([]*Event, 0)
}
