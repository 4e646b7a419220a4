package events

import "time"

// Kind is the dotted name of an event, namespaced by the component that
// emits it.
type Kind string

// Event is implemented by every value handed to an event handler.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base is embedded by concrete events. Use [NewBase] so the timestamp is
// set.
type Base struct {
	kind       Kind
	occurredAt time.Time
}

func NewBase(kind Kind) Base { return Base{kind: kind, occurredAt: time.Now()} }

func (b Base) Kind() Kind           { return b.kind }
func (b Base) Timestamp() time.Time { return b.occurredAt }
