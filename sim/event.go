package sim

// VTimeInSec is a point in simulated time, in seconds.
type VTimeInSec float64

// Event is a scheduled happening handled by exactly one Handler.
type Event interface {
	Time() VTimeInSec
	Handler() Handler

	// IsSecondary events run after every primary event of the same time.
	// Connections tick as secondary so that all the sends of a cycle are
	// visible before delivery.
	IsSecondary() bool
}

// EventBase implements the Event getters. Concrete events embed it.
type EventBase struct {
	ID        string
	time      VTimeInSec
	handler   Handler
	secondary bool
}

// NewEventBase returns a primary event base.
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	return &EventBase{
		ID:      GetIDGenerator().Generate(),
		time:    t,
		handler: handler,
	}
}

// Time returns when the event happens.
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler of the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary tells if the event waits for the primary events of its time.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}

// Handler processes the events scheduled for it. An event may only change
// the state of its own handler; anything else goes through ports.
type Handler interface {
	Handle(e Event) error
}
