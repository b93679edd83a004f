package script

import (
	"math"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DarkerMinecraft/Gravix/bridge"
	"github.com/DarkerMinecraft/Gravix/engineapi"
	"github.com/DarkerMinecraft/Gravix/errors"
	"github.com/DarkerMinecraft/Gravix/handle"
	"github.com/DarkerMinecraft/Gravix/marshal"
)

// Hook method names looked up on attached objects.
const (
	HookSetEntity = "SetEntity"
	HookOnCreate  = "OnCreate"
	HookOnUpdate  = "OnUpdate"
)

// Instance is a script object attached to an entity.
type Instance struct {
	Type   string
	Entity engineapi.EntityID
	Handle handle.Handle
}

// Engine drives the OnCreate and OnUpdate hooks of script objects created
// through a bridge. Hooks a type does not declare are skipped.
type Engine struct {
	bridge    *bridge.Bridge
	logger    *zap.Logger
	byEntity  map[engineapi.EntityID]*Instance
	instances []*Instance
	mu        sync.Mutex
}

func NewEngine(b *bridge.Bridge, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		bridge:   b,
		logger:   logger,
		byEntity: make(map[engineapi.EntityID]*Instance),
	}
}

// Attach creates a typeName object for entity, binds it and runs OnCreate.
// An entity carries at most one script. If OnCreate fails the object stays
// attached and the error is returned.
func (e *Engine) Attach(entity engineapi.EntityID, typeName string) (*Instance, error) {
	// Reserve the entity before creating so concurrent attaches cannot both win.
	inst := &Instance{Type: typeName, Entity: entity}
	e.mu.Lock()
	if _, taken := e.byEntity[entity]; taken {
		e.mu.Unlock()
		return nil, errors.New(errors.PhaseCreate, errors.KindInvalidInput).
			Type(typeName).
			Value(uint64(entity)).
			Detail("entity %d already has a script", entity).
			Build()
	}
	e.byEntity[entity] = inst
	e.mu.Unlock()

	h, err := e.bridge.CreateObject(typeName)
	if err != nil {
		e.unreserve(inst)
		return nil, err
	}

	if e.declares(h, HookSetEntity, 1) {
		if res := e.bridge.InvokeMethod(h, HookSetEntity, marshal.RawArgs{uint64(entity)}, nil); res.IsError() {
			_ = e.bridge.DestroyObject(h)
			e.unreserve(inst)
			return nil, res.Err
		}
	}

	e.mu.Lock()
	if e.byEntity[entity] != inst {
		// Stop ran while the object was being created.
		e.mu.Unlock()
		_ = e.bridge.DestroyObject(h)
		return nil, errors.Closed(errors.PhaseCreate, "script engine")
	}
	inst.Handle = h
	e.instances = append(e.instances, inst)
	e.mu.Unlock()

	e.logger.Debug("script attached",
		zap.Uint64("entity", uint64(entity)),
		zap.String("type", typeName),
		zap.Uint64("handle", uint64(h)))

	return inst, e.hook(inst, HookOnCreate, nil)
}

func (e *Engine) unreserve(inst *Instance) {
	e.mu.Lock()
	if e.byEntity[inst.Entity] == inst {
		delete(e.byEntity, inst.Entity)
	}
	e.mu.Unlock()
}

// Update runs OnUpdate(deltaTime) on every instance in attachment order.
// A failing instance does not stop the others; all failures are returned.
func (e *Engine) Update(deltaTime float32) error {
	raw := marshal.RawArgs{uint64(math.Float32bits(deltaTime))}

	var err error
	for _, inst := range e.Instances() {
		err = multierr.Append(err, e.hook(inst, HookOnUpdate, raw))
	}
	return err
}

// Detach destroys the script attached to entity.
func (e *Engine) Detach(entity engineapi.EntityID) error {
	e.mu.Lock()
	inst, ok := e.byEntity[entity]
	// A pending attach has no object yet.
	ok = ok && inst.Handle != handle.Invalid
	if ok {
		delete(e.byEntity, entity)
		e.instances = remove(e.instances, inst)
	}
	e.mu.Unlock()

	if !ok {
		return errors.New(errors.PhaseDispose, errors.KindInvalidInput).
			Value(uint64(entity)).
			Detail("entity %d has no script", entity).
			Build()
	}
	return e.bridge.DestroyObject(inst.Handle)
}

// Stop destroys every attached script.
func (e *Engine) Stop() error {
	e.mu.Lock()
	instances := e.instances
	e.instances = nil
	clear(e.byEntity)
	e.mu.Unlock()

	var err error
	for _, inst := range instances {
		err = multierr.Append(err, e.bridge.DestroyObject(inst.Handle))
	}
	return err
}

// Instances returns the attached instances in attachment order.
func (e *Engine) Instances() []*Instance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Instance(nil), e.instances...)
}

func (e *Engine) hook(inst *Instance, name string, raw marshal.RawArgs) error {
	if !e.declares(inst.Handle, name, len(raw)) {
		return nil
	}
	res := e.bridge.InvokeMethod(inst.Handle, name, raw, nil)
	if res.IsError() {
		e.logger.Warn("script hook failed",
			zap.String("hook", name),
			zap.Uint64("entity", uint64(inst.Entity)),
			zap.String("type", inst.Type),
			zap.Error(res.Err))
		return res.Err
	}
	return nil
}

func (e *Engine) declares(h handle.Handle, name string, argc int) bool {
	_, err := e.bridge.Method(h, name, argc)
	return err == nil
}

func remove(list []*Instance, inst *Instance) []*Instance {
	for i, v := range list {
		if v == inst {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
