package handle

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/multierr"
)

// Table owns every registered object. Register, Resolve and Release are
// serialized by the backend's lock; observers run outside it.
type Table struct {
	backend   *LocalBackend
	observers []Observer
	obsMu     sync.RWMutex
}

// NewTable creates a new table with a LocalBackend.
func NewTable() *Table {
	return &Table{
		backend: NewLocalBackend(),
	}
}

// Register takes ownership of value and returns its handle.
// It returns Invalid only after Close.
func (t *Table) Register(typeID uint32, value any) Handle {
	h, err := t.backend.Create(typeID, value)
	if err != nil {
		return Invalid
	}

	t.notify(Event{
		Type:   EventRegistered,
		Handle: h,
		TypeID: typeID,
		Value:  value,
	})
	return h
}

// Adopt returns the handle already owning value, or registers it.
// An object is never reachable through two handles.
func (t *Table) Adopt(typeID uint32, value any) Handle {
	h, created, err := t.backend.FindOrCreate(typeID, value)
	if err != nil {
		return Invalid
	}
	if created {
		t.notify(Event{
			Type:   EventRegistered,
			Handle: h,
			TypeID: typeID,
			Value:  value,
		})
	}
	return h
}

// Resolve looks up a live handle.
func (t *Table) Resolve(h Handle) (Entry, bool) {
	return t.backend.Get(h)
}

// Release drops the table's reference. Unknown and already released
// handles report false and leave the table untouched.
func (t *Table) Release(h Handle) (any, bool) {
	typeID := uint32(0)
	if e, ok := t.backend.Get(h); ok {
		typeID = e.TypeID
	}

	value, ok := t.backend.Drop(h)
	if !ok {
		return nil, false
	}

	t.notify(Event{
		Type:   EventReleased,
		Handle: h,
		TypeID: typeID,
		Value:  value,
	})
	return value, true
}

// State reports the lifecycle state of h.
func (t *Table) State(h Handle) State {
	return t.backend.State(h)
}

// Live reports whether h currently resolves.
func (t *Table) Live(h Handle) bool {
	return t.backend.State(h) == Live
}

// Handles returns live handles in issuance order.
func (t *Table) Handles() []Handle {
	return t.backend.Handles()
}

// Each iterates over live entries in issuance order.
func (t *Table) Each(fn func(Entry) bool) {
	t.backend.Each(fn)
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	return t.backend.Len()
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer. Observers of uncomparable types, such
// as ObserverFunc, cannot be removed.
func (t *Table) Unsubscribe(o Observer) {
	if o == nil || !reflect.TypeOf(o).Comparable() {
		return
	}
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if reflect.TypeOf(obs).Comparable() && obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Close releases every live object, running disposal contracts in handle
// order. Disposal failures are combined into the returned error.
func (t *Table) Close() error {
	var errs error
	for _, value := range t.backend.Close() {
		errs = multierr.Append(errs, Dispose(value))
	}
	return errs
}

// Dispose runs value's disposal contract if it has one. A panic inside
// Dispose is returned as an error.
func Dispose(value any) (err error) {
	d, ok := value.(Disposer)
	if !ok {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispose panicked: %v", r)
		}
	}()
	return d.Dispose()
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnHandleEvent(e)
	}
}
