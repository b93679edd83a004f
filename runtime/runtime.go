package runtime

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DarkerMinecraft/Gravix/bridge"
	"github.com/DarkerMinecraft/Gravix/config"
	"github.com/DarkerMinecraft/Gravix/engineapi"
	"github.com/DarkerMinecraft/Gravix/errors"
	"github.com/DarkerMinecraft/Gravix/handle"
	"github.com/DarkerMinecraft/Gravix/registry"
	"github.com/DarkerMinecraft/Gravix/script"
	"github.com/DarkerMinecraft/Gravix/scripts"
	"github.com/DarkerMinecraft/Gravix/wasmhost"
)

// TypeInstaller adds types to a registry before the bridge seals it.
type TypeInstaller func(reg *registry.Registry, svc engineapi.Services) error

// Option configures a Runtime.
type Option func(*options)

type options struct {
	logger    *zap.Logger
	observers []handle.Observer
	types     []TypeInstaller
	noBuiltin bool
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTypes registers additional types.
func WithTypes(install TypeInstaller) Option {
	return func(o *options) { o.types = append(o.types, install) }
}

// WithoutBuiltinScripts skips the types from package scripts.
func WithoutBuiltinScripts() Option {
	return func(o *options) { o.noBuiltin = true }
}

func WithObserver(obs handle.Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// Runtime wires a scene, a registry, a bridge and the script engine from
// one configuration.
type Runtime struct {
	cfg     config.Config
	logger  *zap.Logger
	scene   *engineapi.Scene
	bridge  *bridge.Bridge
	scripts *script.Engine

	wasmMu sync.Mutex
	wasm   wazero.Runtime

	closeOnce sync.Once
	closeErr  error
}

// New builds a runtime. The registry is sealed on return.
func New(cfg config.Config, opts ...Option) (*Runtime, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	scene := engineapi.NewScene(o.logger)

	reg := registry.NewRegistry()
	if !o.noBuiltin {
		if err := scripts.Register(reg, scene); err != nil {
			return nil, err
		}
	}
	for _, install := range o.types {
		if err := install(reg, scene); err != nil {
			return nil, err
		}
	}

	bopts := []bridge.Option{
		bridge.WithLogger(o.logger.Named("bridge")),
		bridge.WithPolicy(cfg.Policy()),
		bridge.WithMaxStringLen(cfg.Bridge.MaxStringLen),
	}
	for _, obs := range o.observers {
		bopts = append(bopts, bridge.WithObserver(obs))
	}
	b := bridge.New(reg, bopts...)

	return &Runtime{
		cfg:     cfg,
		logger:  o.logger,
		scene:   scene,
		bridge:  b,
		scripts: script.NewEngine(b, o.logger.Named("script")),
	}, nil
}

func (r *Runtime) Config() config.Config { return r.cfg }

func (r *Runtime) Logger() *zap.Logger { return r.logger }

func (r *Runtime) Scene() *engineapi.Scene { return r.scene }

func (r *Runtime) Bridge() *bridge.Bridge { return r.bridge }

func (r *Runtime) Scripts() *script.Engine { return r.scripts }

// LoadScene creates the configured entities and attaches their scripts.
// Every entity is attempted; failures are combined.
func (r *Runtime) LoadScene() error {
	var err error
	for _, e := range r.cfg.Entities {
		id := r.scene.CreateEntity(e.Name)
		for _, c := range e.Components {
			r.scene.AddComponent(id, c)
		}
		if e.Script == "" {
			continue
		}
		if _, aerr := r.scripts.Attach(id, e.Script); aerr != nil {
			err = multierr.Append(err, aerr)
		}
	}
	return err
}

// Tick runs one frame: OnUpdate on every script, then the end of the
// input frame.
func (r *Runtime) Tick(deltaTime float32) error {
	err := r.scripts.Update(deltaTime)
	r.scene.EndFrame()
	return err
}

// LoadWASM instantiates a guest module that may import the bridge host
// module. The wazero runtime and host module are created on first use.
func (r *Runtime) LoadWASM(ctx context.Context, name string, wasm []byte) (api.Module, error) {
	r.wasmMu.Lock()
	defer r.wasmMu.Unlock()

	if r.wasm == nil {
		rt := wazero.NewRuntime(ctx)
		_, err := wasmhost.Instantiate(ctx, rt, r.bridge,
			wasmhost.WithModuleName(r.cfg.Wasm.ModuleName),
			wasmhost.WithLogger(r.logger.Named("wasm")))
		if err != nil {
			_ = rt.Close(ctx)
			return nil, err
		}
		r.wasm = rt
	}

	mod, err := r.wasm.InstantiateWithConfig(ctx, wasm, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseHost, errors.KindInvalidInput, err, "instantiate "+name)
	}
	return mod, nil
}

// Close stops every script, disposes remaining objects and releases the
// wasm runtime.
func (r *Runtime) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		err := r.scripts.Stop()
		err = multierr.Append(err, r.bridge.Close())

		r.wasmMu.Lock()
		if r.wasm != nil {
			err = multierr.Append(err, r.wasm.Close(ctx))
			r.wasm = nil
		}
		r.wasmMu.Unlock()

		r.closeErr = err
	})
	return r.closeErr
}
