package main

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/DarkerMinecraft/Gravix"
	"github.com/DarkerMinecraft/Gravix/bridge"
	"github.com/DarkerMinecraft/Gravix/config"
	"github.com/DarkerMinecraft/Gravix/errors"
	"github.com/DarkerMinecraft/Gravix/handle"
	"github.com/DarkerMinecraft/Gravix/invoke"
	"github.com/DarkerMinecraft/Gravix/logging"
	"github.com/DarkerMinecraft/Gravix/marshal"
	"github.com/DarkerMinecraft/Gravix/runtime"
)

// cStringReader returns at most limit bytes of the NUL-terminated string
// at ptr, without the terminator.
type cStringReader func(ptr uint64, limit uint64) []byte

// library is the process-wide state behind the exported functions.
type library struct {
	mu     sync.RWMutex
	rt     *runtime.Runtime
	logger *zap.Logger
}

func (l *library) init(configPath string, opts ...runtime.Option) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rt != nil {
		return errors.InvalidInput(errors.PhaseHost, "bridge already initialized")
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	rt, err := runtime.New(cfg, append([]runtime.Option{runtime.WithLogger(logger)}, opts...)...)
	if err != nil {
		return err
	}
	if err := rt.LoadScene(); err != nil {
		logger.Warn("scene loaded with errors", zap.Error(err))
	}

	l.rt, l.logger = rt, logger
	return nil
}

func (l *library) shutdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rt == nil {
		return nil
	}
	err := l.rt.Close(context.Background())
	_ = l.logger.Sync()
	l.rt, l.logger = nil, nil
	return err
}

func (l *library) active() (*runtime.Runtime, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.rt == nil {
		return nil, errors.Closed(errors.PhaseHost, "bridge not initialized")
	}
	return l.rt, nil
}

func (l *library) activeBridge() (*bridge.Bridge, error) {
	rt, err := l.active()
	if err != nil {
		return nil, err
	}
	return rt.Bridge(), nil
}

func (l *library) create(typeName string) handle.Handle {
	b, err := l.activeBridge()
	if err != nil {
		return handle.Invalid
	}
	h, err := b.CreateObject(typeName)
	if err != nil {
		return handle.Invalid
	}
	return h
}

// destroy returns 0 or the error code of the failure.
func (l *library) destroy(h handle.Handle) uint32 {
	b, err := l.activeBridge()
	if err == nil {
		err = b.DestroyObject(h)
	}
	if err != nil {
		return errors.Code(errors.KindOf(err))
	}
	return 0
}

// call copies every string argument out of host memory into a scratch
// memory and rewrites its slot to the staged offset, then runs the raw
// invocation path. Null string pointers are left for the marshaler to
// reject.
func (l *library) call(h handle.Handle, name string, slots []uint64, read cStringReader) invoke.Result {
	rt, err := l.active()
	if err != nil {
		return invoke.ErrorResult(err)
	}
	b := rt.Bridge()

	m, err := b.Method(h, name, len(slots))
	if err != nil {
		// Let the bridge report and count the failure.
		return b.InvokeMethod(h, name, slots, nil)
	}

	mem, raw := stageStrings(m.Params, slots, read, uint64(rt.Config().Bridge.MaxStringLen)+1)
	return b.InvokeMethod(h, name, raw, mem)
}

// stageStrings reads at most limit bytes per string. Strings that reach
// the limit are staged unterminated within it, so the marshaler reports
// them as too long.
func stageStrings(params []marshal.ParamType, slots []uint64, read cStringReader, limit uint64) (*gravix.ByteMemory, marshal.RawArgs) {
	raw := make(marshal.RawArgs, len(slots))
	copy(raw, slots)

	var mem *gravix.ByteMemory
	for i, p := range params {
		if p != marshal.String || i >= len(raw) || raw[i] == 0 {
			continue
		}
		if mem == nil {
			mem = gravix.NewByteMemory(256)
		}
		raw[i] = uint64(mem.PutCString(string(read(raw[i], limit))))
	}
	if mem == nil {
		mem = gravix.NewByteMemory(0)
	}
	return mem, raw
}
