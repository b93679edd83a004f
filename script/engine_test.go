package script

import (
	stderrors "errors"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"github.com/DarkerMinecraft/Gravix/bridge"
	"github.com/DarkerMinecraft/Gravix/engineapi"
	"github.com/DarkerMinecraft/Gravix/errors"
	"github.com/DarkerMinecraft/Gravix/registry"
	"github.com/DarkerMinecraft/Gravix/scripts"
)

type recorder struct {
	calls  *[]string
	entity uint64
	fail   bool
}

func (r *recorder) SetEntity(id uint64) { r.entity = id }

func (r *recorder) OnCreate() { *r.calls = append(*r.calls, "create") }

func (r *recorder) OnUpdate(dt float32) error {
	*r.calls = append(*r.calls, "update")
	if r.fail {
		return stderrors.New("update failed")
	}
	return nil
}

type inert struct{}

func (inert) Nothing() {}

func setup(t *testing.T) (*Engine, *engineapi.Scene, *[]string, *observer.ObservedLogs) {
	t.Helper()
	calls := &[]string{}
	scene := engineapi.NewScene(nil)

	reg := registry.NewRegistry()
	if err := scripts.Register(reg, scene); err != nil {
		t.Fatal(err)
	}
	_, err := reg.Define("Recorder", func() (any, error) { return &recorder{calls: calls}, nil }).
		Method("SetEntity", (*recorder).SetEntity).
		Method("OnCreate", (*recorder).OnCreate).
		Method("OnUpdate", (*recorder).OnUpdate).
		Commit()
	if err != nil {
		t.Fatal(err)
	}
	_, err = reg.Define("Failing", func() (any, error) { return &recorder{calls: calls, fail: true}, nil }).
		Method("OnUpdate", (*recorder).OnUpdate).
		Commit()
	if err != nil {
		t.Fatal(err)
	}
	_, err = reg.Define("Inert", func() (any, error) { return &inert{}, nil }).
		Method("Nothing", (*inert).Nothing).
		Commit()
	if err != nil {
		t.Fatal(err)
	}

	core, logs := observer.New(zapcore.WarnLevel)
	b := bridge.New(reg)
	t.Cleanup(func() { _ = b.Close() })
	return NewEngine(b, zap.New(core)), scene, calls, logs
}

func TestEngine_AttachRunsHooks(t *testing.T) {
	e, _, calls, _ := setup(t)

	inst, err := e.Attach(7, "Recorder")
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if inst.Handle == 0 || inst.Entity != 7 {
		t.Errorf("instance = %+v", inst)
	}

	if err := e.Update(0.016); err != nil {
		t.Fatal(err)
	}
	if got := *calls; len(got) != 2 || got[0] != "create" || got[1] != "update" {
		t.Errorf("calls = %v", got)
	}

	if _, err := e.Attach(7, "Recorder"); errors.KindOf(err) != errors.KindInvalidInput {
		t.Errorf("second attach = %v", err)
	}
}

func TestEngine_MissingHooksSkipped(t *testing.T) {
	e, _, _, _ := setup(t)
	if _, err := e.Attach(1, "Inert"); err != nil {
		t.Fatal(err)
	}
	if err := e.Update(1); err != nil {
		t.Errorf("Update = %v", err)
	}
}

func TestEngine_UpdateCollectsFailures(t *testing.T) {
	e, _, calls, logs := setup(t)
	_, _ = e.Attach(1, "Failing")
	_, _ = e.Attach(2, "Recorder")
	_, _ = e.Attach(3, "Failing")

	err := e.Update(0.5)
	if !errors.Is(err, errors.ErrInvocationFailure) {
		t.Fatalf("Update = %v", err)
	}
	if n := len(*calls); n != 4 {
		t.Errorf("calls = %v, want create + 3 updates", *calls)
	}
	if logs.FilterMessage("script hook failed").Len() != 2 {
		t.Errorf("logged %d hook failures", logs.Len())
	}
}

func TestEngine_DetachAndStop(t *testing.T) {
	e, _, _, _ := setup(t)
	_, _ = e.Attach(1, "Recorder")
	_, _ = e.Attach(2, "Recorder")
	_, _ = e.Attach(3, "Recorder")

	if err := e.Detach(2); err != nil {
		t.Fatal(err)
	}
	if err := e.Detach(2); errors.KindOf(err) != errors.KindInvalidInput {
		t.Errorf("second detach = %v", err)
	}

	got := e.Instances()
	if len(got) != 2 || got[0].Entity != 1 || got[1].Entity != 3 {
		t.Errorf("instances = %+v", got)
	}

	if err := e.Stop(); err != nil {
		t.Fatal(err)
	}
	if len(e.Instances()) != 0 || len(e.bridge.Live()) != 0 {
		t.Error("Stop left instances behind")
	}
}

func TestEngine_AttachUnknownType(t *testing.T) {
	e, _, _, _ := setup(t)
	if _, err := e.Attach(1, "Ghost"); !errors.Is(err, errors.ErrTypeNotFound) {
		t.Errorf("Attach(Ghost) = %v", err)
	}
	if len(e.Instances()) != 0 {
		t.Error("failed attach registered an instance")
	}
	if err := e.Detach(1); errors.KindOf(err) != errors.KindInvalidInput {
		t.Errorf("Detach after failed attach = %v", err)
	}
	if _, err := e.Attach(1, "Inert"); err != nil {
		t.Errorf("entity still reserved after failed attach: %v", err)
	}
}

func TestEngine_AttachConcurrent(t *testing.T) {
	const workers = 16

	for round := 0; round < 50; round++ {
		e, _, _, _ := setup(t)
		entity := engineapi.EntityID(round + 1)

		var won atomic.Int32
		var g errgroup.Group
		for w := 0; w < workers; w++ {
			g.Go(func() error {
				_, err := e.Attach(entity, "Inert")
				switch {
				case err == nil:
					won.Add(1)
				case errors.KindOf(err) != errors.KindInvalidInput:
					return err
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatal(err)
		}

		if got := won.Load(); got != 1 {
			t.Fatalf("round %d: %d attaches succeeded, want 1", round, got)
		}
		if got := len(e.Instances()); got != 1 {
			t.Fatalf("round %d: %d instances", round, got)
		}
		if got := len(e.bridge.Live()); got != 1 {
			t.Fatalf("round %d: %d live objects, want 1", round, got)
		}
	}
}

func TestEngine_Player(t *testing.T) {
	e, scene, _, _ := setup(t)
	id := scene.CreateEntity("Player")
	scene.AddComponent(id, engineapi.ComponentRigidbody2D)

	if _, err := e.Attach(id, scripts.TypePlayer); err != nil {
		t.Fatal(err)
	}

	scene.SetKey(engineapi.KeyD, true)
	for i := 0; i < 10; i++ {
		if err := e.Update(1); err != nil {
			t.Fatal(err)
		}
	}

	if x := scene.Position(id).X; x < 0.99 || x > 1.01 {
		t.Errorf("X after 10 frames = %v, want 1", x)
	}
}
