package wasmhost

import (
	"context"
	"encoding/binary"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	gravix "github.com/DarkerMinecraft/Gravix"
	"github.com/DarkerMinecraft/Gravix/bridge"
	"github.com/DarkerMinecraft/Gravix/errors"
	"github.com/DarkerMinecraft/Gravix/handle"
	"github.com/DarkerMinecraft/Gravix/invoke"
	"github.com/DarkerMinecraft/Gravix/marshal"
)

const (
	// HostModuleName is the import module guests use by default.
	HostModuleName = "gravix"

	// ResultHeaderSize is the size of the {data_ptr, kind, size} record
	// invoke_method writes at out_ptr.
	ResultHeaderSize = 12

	// MinResultCap is the smallest out_cap invoke_method invokes with. It
	// holds the header plus any fixed-size payload, so a handle result is
	// never discarded after the object was registered.
	MinResultCap = ResultHeaderSize + 8

	// MaxArgs bounds argc in invoke_method.
	MaxArgs = 64
)

// Option configures the host module.
type Option func(*Host)

// WithModuleName changes the import module name.
func WithModuleName(name string) Option {
	return func(h *Host) {
		if name != "" {
			h.name = name
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// Host implements the gravix import module over a bridge.
type Host struct {
	bridge *bridge.Bridge
	logger *zap.Logger
	name   string
}

// New creates a host for b without instantiating it.
func New(b *bridge.Bridge, opts ...Option) *Host {
	h := &Host{
		bridge: b,
		logger: zap.NewNop(),
		name:   HostModuleName,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Name returns the import module name.
func (h *Host) Name() string { return h.name }

// Instantiate builds the host module in rt. Guests import:
//
//	create_object(name_ptr i32) -> i64
//	destroy_object(handle i64) -> i32
//	invoke_method(handle i64, name_ptr i32, args_ptr i32, argc i32, out_ptr i32, out_cap i32) -> i32
func Instantiate(ctx context.Context, rt wazero.Runtime, b *bridge.Bridge, opts ...Option) (api.Module, error) {
	return New(b, opts...).Instantiate(ctx, rt)
}

func (h *Host) Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	i32, i64 := api.ValueTypeI32, api.ValueTypeI64

	builder := rt.NewHostModuleBuilder(h.name)

	builder = builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
			stack[0] = uint64(h.CreateObject(mod, api.DecodeU32(stack[0])))
		}), []api.ValueType{i32}, []api.ValueType{i64}).
		WithParameterNames("name_ptr").
		Export("create_object")

	builder = builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			stack[0] = api.EncodeU32(h.DestroyObject(handle.Handle(stack[0])))
		}), []api.ValueType{i64}, []api.ValueType{i32}).
		WithParameterNames("handle").
		Export("destroy_object")

	builder = builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
			kind := h.InvokeMethod(mod,
				handle.Handle(stack[0]),
				api.DecodeU32(stack[1]),
				api.DecodeU32(stack[2]),
				api.DecodeU32(stack[3]),
				api.DecodeU32(stack[4]),
				api.DecodeU32(stack[5]))
			stack[0] = api.EncodeU32(uint32(kind))
		}), []api.ValueType{i64, i32, i32, i32, i32, i32}, []api.ValueType{i32}).
		WithParameterNames("handle", "name_ptr", "args_ptr", "argc", "out_ptr", "out_cap").
		Export("invoke_method")

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseHost, errors.KindRegistration, err, "instantiate host module "+h.name)
	}
	return mod, nil
}

// CreateObject reads a type name from the caller's memory and creates it.
// It returns 0 on any failure.
func (h *Host) CreateObject(mod api.Module, namePtr uint32) handle.Handle {
	mem, err := callerMemory(mod)
	if err != nil {
		h.fail("create_object", err)
		return handle.Invalid
	}
	name, err := gravix.ReadCString(mem, namePtr, marshal.DefaultMaxStringLen)
	if err != nil {
		h.fail("create_object", err)
		return handle.Invalid
	}
	hd, err := h.bridge.CreateObject(name)
	if err != nil {
		return handle.Invalid
	}
	return hd
}

// DestroyObject returns 0 on success or the error's wire code.
func (h *Host) DestroyObject(hd handle.Handle) uint32 {
	if err := h.bridge.DestroyObject(hd); err != nil {
		return errors.Code(errors.KindOf(err))
	}
	return 0
}

// InvokeMethod reads the method name and argc raw slots from the caller's
// memory, invokes the method and writes the result record at outPtr. It
// returns the result kind. Nothing is invoked when the out region lies
// outside memory or is smaller than MinResultCap; in the latter case an
// out_of_bounds record is still written when the header fits.
func (h *Host) InvokeMethod(mod api.Module, hd handle.Handle, namePtr, argsPtr, argc, outPtr, outCap uint32) invoke.Kind {
	mem, err := callerMemory(mod)
	if err != nil {
		h.fail("invoke_method", err)
		return invoke.Error
	}
	if outCap < ResultHeaderSize {
		h.fail("invoke_method", errors.OutOfBounds(errors.PhaseHost, ResultHeaderSize, int(outCap)))
		return invoke.Error
	}
	if end := uint64(outPtr) + uint64(outCap); end > uint64(mem.Size()) {
		h.fail("invoke_method", errors.OutOfBounds(errors.PhaseHost, int(end), int(mem.Size())))
		return invoke.Error
	}
	if outCap < MinResultCap {
		be := h.fail("invoke_method", errors.New(errors.PhaseHost, errors.KindOutOfBounds).
			Handle(uint64(hd)).
			Detail("out_cap %d below minimum %d", outCap, MinResultCap).
			Build())
		return h.writeResult(mem, outPtr, outCap, invoke.ErrorResult(be))
	}

	res := h.call(mem, hd, namePtr, argsPtr, argc)
	return h.writeResult(mem, outPtr, outCap, res)
}

func (h *Host) call(mem *Memory, hd handle.Handle, namePtr, argsPtr, argc uint32) invoke.Result {
	name, err := gravix.ReadCString(mem, namePtr, marshal.DefaultMaxStringLen)
	if err != nil {
		return invoke.ErrorResult(h.fail("invoke_method", err))
	}

	if argc > MaxArgs {
		return invoke.ErrorResult(h.fail("invoke_method", errors.New(errors.PhaseHost, errors.KindInvalidInput).
			Method(name).
			Handle(uint64(hd)).
			Detail("argc %d exceeds %d", argc, MaxArgs).
			Build()))
	}

	raw := make(marshal.RawArgs, argc)
	for i := range raw {
		off := uint64(argsPtr) + uint64(i)*8
		if off+8 > uint64(mem.Size()) {
			return invoke.ErrorResult(h.fail("invoke_method", errors.New(errors.PhaseHost, errors.KindOutOfBounds).
				Method(name).
				Handle(uint64(hd)).
				Param(i+1).
				Detail("argument slot at 0x%x exceeds memory of %d bytes", off, mem.Size()).
				Build()))
		}
		v, err := mem.ReadU64(uint32(off))
		if err != nil {
			return invoke.ErrorResult(h.fail("invoke_method", err))
		}
		raw[i] = v
	}

	return h.bridge.InvokeMethod(hd, name, raw, mem)
}

// writeResult stores the header and payload. A payload that does not fit
// is replaced by an out_of_bounds Error result, truncated if necessary.
func (h *Host) writeResult(mem *Memory, outPtr, outCap uint32, res invoke.Result) invoke.Kind {
	avail := outCap - ResultHeaderSize
	if res.Size > avail {
		res = invoke.ErrorResult(errors.New(errors.PhaseHost, errors.KindOutOfBounds).
			Detail("%s result of %d bytes does not fit %d", res.Kind, res.Size, avail).
			Build())
		if res.Size > avail {
			res.Data = res.Data[:avail]
			res.Size = avail
		}
	}

	dataPtr := uint32(0)
	if res.Size > 0 {
		dataPtr = outPtr + ResultHeaderSize
	}

	var header [ResultHeaderSize]byte
	binary.LittleEndian.PutUint32(header[0:], dataPtr)
	binary.LittleEndian.PutUint32(header[4:], uint32(res.Kind))
	binary.LittleEndian.PutUint32(header[8:], res.Size)

	if err := mem.Write(outPtr, header[:]); err != nil {
		h.fail("invoke_method", err)
		return invoke.Error
	}
	if res.Size > 0 {
		if err := mem.Write(dataPtr, res.Data); err != nil {
			h.fail("invoke_method", err)
			return invoke.Error
		}
	}
	return res.Kind
}

func (h *Host) fail(fn string, err error) *errors.Error {
	be := errors.As(errors.PhaseHost, err)
	h.logger.Warn("host call failed",
		zap.String("func", fn),
		zap.String("kind", string(be.Kind)),
		zap.Error(be))
	return be
}

func callerMemory(mod api.Module) (*Memory, error) {
	if mod == nil || mod.Memory() == nil {
		return nil, errors.NilPointer(errors.PhaseHost, "caller memory")
	}
	return NewMemory(mod.Memory()), nil
}
