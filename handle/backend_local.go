package handle

import (
	"errors"
	"math"
	"reflect"
	"sort"
	"sync"
)

var (
	ErrClosed    = errors.New("handle table closed")
	ErrExhausted = errors.New("handle space exhausted")
)

// LocalBackend is an in-memory backend. Handles come from a counter that
// only moves forward; freed values are never handed out again.
type LocalBackend struct {
	entries  map[Handle]entry
	identity map[any]Handle
	next     Handle
	mu       sync.Mutex
	closed   bool
}

type entry struct {
	value  any
	typeID uint32
}

// NewLocalBackend creates a new in-memory backend.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		entries:  make(map[Handle]entry, 64),
		identity: make(map[any]Handle, 64),
		next:     1,
	}
}

// identityKey returns a map key for values with reference identity.
// Plain values (ints, strings, structs) have none and are never aliased.
func identityKey(value any) (any, bool) {
	if value == nil {
		return nil, false
	}
	switch reflect.TypeOf(value).Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Chan:
		return value, true
	default:
		return nil, false
	}
}

// Create stores a value and returns a handle.
func (b *LocalBackend) Create(typeID uint32, value any) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.createLocked(typeID, value)
}

// FindOrCreate returns the live handle owning value, or stores value under
// a new handle. The lookup and the insert happen under one lock, so
// concurrent callers with the same object agree on a single handle.
func (b *LocalBackend) FindOrCreate(typeID uint32, value any) (Handle, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if key, ok := identityKey(value); ok {
		if h, found := b.identity[key]; found {
			return h, false, nil
		}
	}
	h, err := b.createLocked(typeID, value)
	return h, err == nil, err
}

func (b *LocalBackend) createLocked(typeID uint32, value any) (Handle, error) {
	if b.closed {
		return Invalid, ErrClosed
	}
	if b.next == math.MaxUint64 {
		return Invalid, ErrExhausted
	}

	h := b.next
	b.next++
	b.entries[h] = entry{typeID: typeID, value: value}
	if key, ok := identityKey(value); ok {
		b.identity[key] = h
	}
	return h, nil
}

// Get retrieves an entry by handle.
func (b *LocalBackend) Get(h Handle) (Entry, bool) {
	if h == Invalid {
		return Entry{}, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[h]
	if !ok {
		return Entry{}, false
	}
	return Entry{Handle: h, TypeID: e.typeID, Value: e.value}, true
}

// Find returns the live handle that owns value.
func (b *LocalBackend) Find(value any) (Handle, bool) {
	key, ok := identityKey(value)
	if !ok {
		return Invalid, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	h, ok := b.identity[key]
	return h, ok
}

// Drop removes a live entry.
func (b *LocalBackend) Drop(h Handle) (any, bool) {
	if h == Invalid {
		return nil, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[h]
	if !ok {
		return nil, false
	}

	delete(b.entries, h)
	if key, ok := identityKey(e.value); ok && b.identity[key] == h {
		delete(b.identity, key)
	}
	return e.value, true
}

// State reports the lifecycle state of h.
func (b *LocalBackend) State(h Handle) State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if h == Invalid || h >= b.next {
		return Unregistered
	}
	if _, ok := b.entries[h]; ok {
		return Live
	}
	return Destroyed
}

// Close drops every entry and stops issuing handles.
func (b *LocalBackend) Close() []any {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	handles := b.handlesLocked()
	values := make([]any, 0, len(handles))
	for _, h := range handles {
		values = append(values, b.entries[h].value)
	}

	b.entries = make(map[Handle]entry)
	b.identity = make(map[any]Handle)
	return values
}

// Len returns the number of live handles.
func (b *LocalBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Handles returns live handles in issuance order.
func (b *LocalBackend) Handles() []Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handlesLocked()
}

func (b *LocalBackend) handlesLocked() []Handle {
	handles := make([]Handle, 0, len(b.entries))
	for h := range b.entries {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	return handles
}

// Each iterates over live entries in issuance order. The iteration works
// on a snapshot, so fn may call back into the backend.
func (b *LocalBackend) Each(fn func(Entry) bool) {
	b.mu.Lock()
	handles := b.handlesLocked()
	snapshot := make([]Entry, 0, len(handles))
	for _, h := range handles {
		e := b.entries[h]
		snapshot = append(snapshot, Entry{Handle: h, TypeID: e.typeID, Value: e.value})
	}
	b.mu.Unlock()

	for _, e := range snapshot {
		if !fn(e) {
			return
		}
	}
}

var _ Backend = (*LocalBackend)(nil)
