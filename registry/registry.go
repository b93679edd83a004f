package registry

import (
	"reflect"
	"sort"
	"sync"

	"github.com/DarkerMinecraft/Gravix/errors"
)

// Registry maps type names to descriptors. It is filled ahead of time and
// sealed before the first object is created.
type Registry struct {
	byName map[string]*TypeDescriptor
	byType map[reflect.Type]*TypeDescriptor
	byID   []*TypeDescriptor
	mu     sync.RWMutex
	sealed bool
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*TypeDescriptor),
		byType: make(map[reflect.Type]*TypeDescriptor),
	}
}

// TypeBuilder collects the methods of one type. Methods are recorded in the
// order Method is called, which is the declared order used for resolution.
type TypeBuilder struct {
	reg  *Registry
	desc *TypeDescriptor
	err  error
}

// Define starts the definition of a type.
func (r *Registry) Define(name string, ctor Constructor) *TypeBuilder {
	b := &TypeBuilder{
		reg:  r,
		desc: &TypeDescriptor{Name: name, New: ctor},
	}
	switch {
	case name == "":
		b.err = errors.Registration(name, "type name cannot be empty")
	case ctor == nil:
		b.err = errors.Registration(name, "constructor cannot be nil")
	}
	return b
}

// Method adds a method from a method expression such as (*T).Name.
func (b *TypeBuilder) Method(name string, fn any) *TypeBuilder {
	if b.err != nil {
		return b
	}

	m, err := newMethod(b.desc.Name, name, len(b.desc.Methods), fn)
	if err != nil {
		b.err = err
		return b
	}

	recv := m.Receiver()
	if b.desc.GoType == nil {
		b.desc.GoType = recv
	} else if recv != b.desc.GoType {
		b.err = errors.New(errors.PhaseRegister, errors.KindRegistration).
			Type(b.desc.Name).
			Method(name).
			Detail("receiver %s does not match %s", recv, b.desc.GoType).
			Build()
		return b
	}

	b.desc.Methods = append(b.desc.Methods, m)
	return b
}

// Commit adds the type to the registry.
func (b *TypeBuilder) Commit() (*TypeDescriptor, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.reg.add(b.desc)
}

func (r *Registry) add(desc *TypeDescriptor) (*TypeDescriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return nil, errors.Registration(desc.Name, "registry is sealed")
	}
	if _, exists := r.byName[desc.Name]; exists {
		return nil, errors.Registration(desc.Name, "type already registered")
	}

	r.byID = append(r.byID, desc)
	desc.ID = uint32(len(r.byID))
	r.byName[desc.Name] = desc
	if desc.GoType != nil {
		if _, taken := r.byType[desc.GoType]; !taken {
			r.byType[desc.GoType] = desc
		}
	}
	return desc, nil
}

// RegisterType registers every exported method of *T, in the lexicographic
// order of Go's method set.
func RegisterType[T any](r *Registry, name string, ctor func() (*T, error)) (*TypeDescriptor, error) {
	if ctor == nil {
		return nil, errors.Registration(name, "constructor cannot be nil")
	}

	b := r.Define(name, func() (any, error) {
		v, err := ctor()
		if err != nil {
			return nil, err
		}
		return v, nil
	})

	pt := reflect.TypeOf((*T)(nil))
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		b.Method(m.Name, m.Func.Interface())
	}
	if b.err == nil && b.desc.GoType == nil {
		b.desc.GoType = pt
	}
	return b.Commit()
}

// Seal freezes the registry. Later definitions fail.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Lookup finds a type by name.
func (r *Registry) Lookup(name string) (*TypeDescriptor, error) {
	r.mu.RLock()
	desc, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.TypeNotFound(name)
	}
	return desc, nil
}

// ByID returns the descriptor with the given ID. IDs start at 1.
func (r *Registry) ByID(id uint32) (*TypeDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id == 0 || int(id) > len(r.byID) {
		return nil, false
	}
	return r.byID[id-1], true
}

// ForType returns the first type registered with Go type t.
func (r *Registry) ForType(t reflect.Type) (*TypeDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.byType[t]
	return desc, ok
}

// Names returns the registered type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
