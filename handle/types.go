package handle

// Handle is an opaque reference to a live object in a table.
// Handle 0 is reserved and always invalid.
type Handle uint64

// Invalid is the reserved zero handle, also the failure sentinel.
const Invalid Handle = 0

// State is the lifecycle position of a handle value.
type State uint8

const (
	Unregistered State = iota // never issued
	Live                      // issued and resolvable
	Destroyed                 // released; terminal
)

func (s State) String() string {
	switch s {
	case Unregistered:
		return "unregistered"
	case Live:
		return "live"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Event types for handle lifecycle notifications.
type EventType uint8

const (
	EventRegistered EventType = iota
	EventReleased
)

// Event represents a handle lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	TypeID uint32
	Type   EventType
}

// Observer receives notifications about handle lifecycle events.
type Observer interface {
	OnHandleEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) OnHandleEvent(e Event) { f(e) }

// Entry is a resolved table slot.
type Entry struct {
	Value  any
	Handle Handle
	TypeID uint32
}

// Backend provides the underlying storage for handles.
type Backend interface {
	// Create stores a value and returns a never-before-issued handle.
	Create(typeID uint32, value any) (Handle, error)

	// Get retrieves the entry for a live handle.
	Get(h Handle) (Entry, bool)

	// Find returns the live handle already holding value, if any.
	Find(value any) (Handle, bool)

	// FindOrCreate atomically returns the handle holding value or stores
	// it under a new one. created reports which happened.
	FindOrCreate(typeID uint32, value any) (h Handle, created bool, err error)

	// Drop removes a live entry and returns its value.
	// Returns (nil, false) if the handle is not live.
	Drop(h Handle) (any, bool)

	// State reports where h is in its lifecycle.
	State(h Handle) State

	// Close releases all entries and returns their values in handle order.
	Close() []any
}

// Disposer is optionally implemented by objects that need cleanup when
// they are explicitly destroyed.
type Disposer interface {
	Dispose() error
}
