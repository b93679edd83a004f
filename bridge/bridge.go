package bridge

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	gravix "github.com/DarkerMinecraft/Gravix"
	"github.com/DarkerMinecraft/Gravix/errors"
	"github.com/DarkerMinecraft/Gravix/handle"
	"github.com/DarkerMinecraft/Gravix/invoke"
	"github.com/DarkerMinecraft/Gravix/marshal"
	"github.com/DarkerMinecraft/Gravix/registry"
)

// Bridge owns the handle table for one host. All bridge-wide state lives
// here; independent bridges never share handles.
type Bridge struct {
	reg       *registry.Registry
	table     *handle.Table
	marshaler *marshal.Marshaler
	logger    *zap.Logger
	resolver  registry.Resolver
	stats     counters
	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool

	// handles whose Dispose is running
	destroying sync.Map
}

type counters struct {
	created     atomic.Uint64
	destroyed   atomic.Uint64
	invocations atomic.Uint64
	failures    atomic.Uint64
}

// Stats is a snapshot of the bridge counters.
type Stats struct {
	Created     uint64
	Destroyed   uint64
	Invocations uint64
	Failures    uint64
	Live        int
}

// New creates a bridge over reg and seals it.
func New(reg *registry.Registry, opts ...Option) *Bridge {
	reg.Seal()

	b := &Bridge{
		reg:       reg,
		table:     handle.NewTable(),
		marshaler: marshal.New(),
		logger:    Logger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CreateObject instantiates the type registered as typeName and returns a
// handle owning the new object.
func (b *Bridge) CreateObject(typeName string) (handle.Handle, error) {
	if b.closed.Load() {
		return handle.Invalid, b.fail(errors.Closed(errors.PhaseCreate, "bridge"))
	}

	desc, err := b.reg.Lookup(typeName)
	if err != nil {
		return handle.Invalid, b.fail(err)
	}

	obj, err := construct(desc)
	if err != nil {
		return handle.Invalid, b.fail(err)
	}

	h := b.table.Register(desc.ID, obj)
	if h == handle.Invalid {
		_ = handle.Dispose(obj)
		return handle.Invalid, b.fail(errors.Closed(errors.PhaseCreate, "handle table"))
	}

	b.stats.created.Add(1)
	b.logger.Debug("object created",
		zap.Uint64("handle", uint64(h)),
		zap.String("type", desc.Name))
	return h, nil
}

func construct(desc *registry.TypeDescriptor) (obj any, err error) {
	defer func() {
		if r := recover(); r != nil {
			obj = nil
			err = errors.New(errors.PhaseCreate, errors.KindConstructionFailed).
				Type(desc.Name).
				Value(r).
				Cause(fmt.Errorf("%v", r)).
				Detail("constructor panicked").
				Build()
		}
	}()

	obj, err = desc.New()
	if err != nil {
		return nil, errors.ConstructionFailed(desc.Name, err)
	}
	if obj == nil {
		return nil, errors.New(errors.PhaseCreate, errors.KindConstructionFailed).
			Type(desc.Name).
			Detail("constructor returned nil").
			Build()
	}
	if desc.GoType != nil && !fits(reflect.TypeOf(obj), desc.GoType) {
		_ = handle.Dispose(obj)
		return nil, errors.New(errors.PhaseCreate, errors.KindConstructionFailed).
			Type(desc.Name).
			Value(reflect.TypeOf(obj).String()).
			Detail("constructor returned %T, methods expect %s", obj, desc.GoType).
			Build()
	}
	return obj, nil
}

func fits(got, want reflect.Type) bool {
	if got.AssignableTo(want) {
		return true
	}
	return got.Kind() == reflect.Pointer && got.Elem().AssignableTo(want)
}

// InvokeMethod calls a method with a raw argument vector. String slots are
// read from mem. Every failure is returned as an Error result.
func (b *Bridge) InvokeMethod(h handle.Handle, name string, raw marshal.RawArgs, mem gravix.Memory) invoke.Result {
	b.stats.invocations.Add(1)

	entry, desc, err := b.target(h)
	if err != nil {
		return b.failResult(err, h, nil, name)
	}

	m, err := b.resolver.Resolve(desc, name, len(raw))
	if err != nil {
		return b.failResult(err, h, desc, name)
	}

	args, err := b.marshaler.FromRaw(m.Params, m.ParamGoTypes, raw, mem)
	if err != nil {
		return b.failResult(err, h, desc, name)
	}

	return b.invoke(h, desc, entry.Value, m, args)
}

// Call invokes a method with Go values. It is the in-process counterpart of
// InvokeMethod.
func (b *Bridge) Call(h handle.Handle, name string, args ...any) invoke.Result {
	b.stats.invocations.Add(1)

	entry, desc, err := b.target(h)
	if err != nil {
		return b.failResult(err, h, nil, name)
	}

	m, err := b.resolver.ResolveTyped(desc, name, args)
	if err != nil {
		return b.failResult(err, h, desc, name)
	}

	vals, err := b.marshaler.FromValues(m.Params, m.ParamGoTypes, args)
	if err != nil {
		return b.failResult(err, h, desc, name)
	}

	return b.invoke(h, desc, entry.Value, m, vals)
}

// Method resolves the method a raw call with argc arguments would invoke.
func (b *Bridge) Method(h handle.Handle, name string, argc int) (*registry.Method, error) {
	_, desc, err := b.target(h)
	if err != nil {
		return nil, err
	}
	return b.resolver.Resolve(desc, name, argc)
}

func (b *Bridge) target(h handle.Handle) (handle.Entry, *registry.TypeDescriptor, error) {
	entry, ok := b.table.Resolve(h)
	if !ok {
		return handle.Entry{}, nil, errors.InvalidHandle(errors.PhaseResolve, uint64(h))
	}
	desc, ok := b.reg.ByID(entry.TypeID)
	if !ok {
		return handle.Entry{}, nil, errors.New(errors.PhaseResolve, errors.KindTypeNotFound).
			Handle(uint64(h)).
			Value(fmt.Sprintf("%T", entry.Value)).
			Detail("%T is not a registered type", entry.Value).
			Build()
	}
	return entry, desc, nil
}

func (b *Bridge) invoke(h handle.Handle, desc *registry.TypeDescriptor, recv any, m *registry.Method, args []reflect.Value) invoke.Result {
	ret, err := invoke.Call(recv, m, args)
	if err != nil {
		return b.failResult(err, h, desc, m.Name)
	}

	res := invoke.Package(ret, m, b.adopt)
	if res.IsError() {
		return b.failResult(res.Err, h, desc, m.Name)
	}
	return res
}

// adopt issues a handle for an object returned by a method. An object that
// is already live keeps its handle.
func (b *Bridge) adopt(obj any) (uint64, error) {
	var typeID uint32
	if desc, ok := b.reg.ForType(reflect.TypeOf(obj)); ok {
		typeID = desc.ID
	}

	h := b.table.Adopt(typeID, obj)
	if h == handle.Invalid {
		return 0, errors.Closed(errors.PhaseInvoke, "handle table")
	}
	return uint64(h), nil
}

// DestroyObject runs the object's Dispose method, if it has one, while h
// still resolves, then releases h. The release happens whether or not
// Dispose succeeds. Handles that are unknown or already being destroyed
// are reported and otherwise ignored.
func (b *Bridge) DestroyObject(h handle.Handle) error {
	if _, busy := b.destroying.LoadOrStore(h, struct{}{}); busy {
		return b.fail(errors.InvalidHandle(errors.PhaseDispose, uint64(h)))
	}
	defer b.destroying.Delete(h)

	entry, ok := b.table.Resolve(h)
	if !ok {
		return b.fail(errors.InvalidHandle(errors.PhaseDispose, uint64(h)))
	}

	derr := handle.Dispose(entry.Value)

	if _, ok := b.table.Release(h); !ok {
		// Close won the race and disposed the table.
		return b.fail(errors.Closed(errors.PhaseDispose, "handle table"))
	}
	b.stats.destroyed.Add(1)

	if derr != nil {
		return b.fail(errors.DisposalFailed(uint64(h), derr))
	}

	b.logger.Debug("object destroyed", zap.Uint64("handle", uint64(h)))
	return nil
}

// Lookup returns the registered type name of a live handle.
func (b *Bridge) Lookup(h handle.Handle) (string, bool) {
	_, desc, err := b.target(h)
	if err != nil {
		return "", false
	}
	return desc.Name, true
}

// Live returns the live handles in ascending order.
func (b *Bridge) Live() []handle.Handle {
	return b.table.Handles()
}

func (b *Bridge) Registry() *registry.Registry {
	return b.reg
}

func (b *Bridge) Stats() Stats {
	return Stats{
		Created:     b.stats.created.Load(),
		Destroyed:   b.stats.destroyed.Load(),
		Invocations: b.stats.invocations.Load(),
		Failures:    b.stats.failures.Load(),
		Live:        b.table.Len(),
	}
}

// Close disposes every live object. Later calls return the first result.
func (b *Bridge) Close() error {
	b.closeOnce.Do(func() {
		b.closed.Store(true)
		n := b.table.Len()
		b.closeErr = b.table.Close()
		if b.closeErr != nil {
			b.logger.Warn("bridge closed with disposal errors",
				zap.Int("objects", n),
				zap.Error(b.closeErr))
			return
		}
		b.logger.Debug("bridge closed", zap.Int("objects", n))
	})
	return b.closeErr
}

func (b *Bridge) failResult(err error, h handle.Handle, desc *registry.TypeDescriptor, method string) invoke.Result {
	be := errors.As(errors.PhaseInvoke, err)
	if be.Handle == 0 {
		be.Handle = uint64(h)
	}
	if be.Type == "" && desc != nil {
		be.Type = desc.Name
	}
	if be.Method == "" {
		be.Method = method
	}
	return invoke.ErrorResult(b.fail(be))
}

func (b *Bridge) fail(err error) *errors.Error {
	be := errors.As(errors.PhaseHost, err)
	b.stats.failures.Add(1)
	b.logger.Warn("bridge call failed",
		zap.String("phase", string(be.Phase)),
		zap.String("kind", string(be.Kind)),
		zap.Uint64("handle", be.Handle),
		zap.String("type", be.Type),
		zap.String("method", be.Method),
		zap.Error(be))
	return be
}
