package resource

// Handle is the opaque identity of an asset opened through the native API.
// It is only compared and hashed, never dereferenced.
// Handle 0 is the native null asset and is never registered.
type Handle uintptr

// Event types for registry lifecycle notifications.
type EventType uint8

const (
	EventRegistered EventType = iota
	EventReplaced
	EventRetired
)

func (t EventType) String() string {
	switch t {
	case EventRegistered:
		return "registered"
	case EventReplaced:
		return "replaced"
	case EventRetired:
		return "retired"
	default:
		return "unknown"
	}
}

// Event represents a registry lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Type   EventType
}

// Observer receives notifications about registry lifecycle events.
// Observers are called outside the table lock.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
// Function values are not comparable, so an ObserverFunc cannot be unsubscribed.
type ObserverFunc func(Event)

func (f ObserverFunc) OnResourceEvent(e Event) { f(e) }
