package bridge

import (
	stderrors "errors"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	gravix "github.com/DarkerMinecraft/Gravix"
	"github.com/DarkerMinecraft/Gravix/errors"
	"github.com/DarkerMinecraft/Gravix/handle"
	"github.com/DarkerMinecraft/Gravix/invoke"
	"github.com/DarkerMinecraft/Gravix/marshal"
	"github.com/DarkerMinecraft/Gravix/registry"
)

type sample struct {
	disposed *atomic.Int32
	name     string
	value    int32
}

func (s *sample) SetValue(v int32) { s.value = v }

func (s *sample) GetValue() int32 { return s.value }

func (s *sample) SetName(n string) { s.name = n }

func (s *sample) Greet(n string) string { return "hello " + n }

func (s *sample) Clone() *sample { return &sample{value: s.value, disposed: s.disposed} }

func (s *sample) Self() *sample { return s }

func (s *sample) Weights(w []float32) {}

func (s *sample) Mixed(v int32, w []float32) { s.value = v }

func (s *sample) Tagged(v int32, tag string) {
	s.value = v
	s.name = tag
}

func (s *sample) Fail() error { return stderrors.New("sample failure") }

func (s *sample) Panic() { panic("sample panic") }

func (s *sample) Dispose() error {
	if s.disposed != nil {
		s.disposed.Add(1)
	}
	if s.name == "bad" {
		return stderrors.New("dispose refused")
	}
	return nil
}

// watcher records whether its own handle resolved while Dispose ran.
type watcher struct {
	onDispose func()
	fail      bool
}

func (w *watcher) Ping() bool { return true }

func (w *watcher) Dispose() error {
	if w.onDispose != nil {
		w.onDispose()
	}
	if w.fail {
		return stderrors.New("watcher refused")
	}
	return nil
}

func newRegistry(t *testing.T, disposed *atomic.Int32) *registry.Registry {
	t.Helper()
	r := registry.NewRegistry()
	_, err := r.Define("Sample", func() (any, error) { return &sample{disposed: disposed}, nil }).
		Method("SetValue", (*sample).SetValue).
		Method("GetValue", (*sample).GetValue).
		Method("SetName", (*sample).SetName).
		Method("Greet", (*sample).Greet).
		Method("Clone", (*sample).Clone).
		Method("Self", (*sample).Self).
		Method("Weights", (*sample).Weights).
		Method("Mixed", (*sample).Mixed).
		Method("Tagged", (*sample).Tagged).
		Method("Fail", (*sample).Fail).
		Method("Panic", (*sample).Panic).
		Method("Dispose", (*sample).Dispose).
		Commit()
	if err != nil {
		t.Fatalf("Define(Sample): %v", err)
	}

	_, err = r.Define("Watcher", func() (any, error) { return &watcher{}, nil }).
		Method("Ping", (*watcher).Ping).
		Commit()
	if err != nil {
		t.Fatal(err)
	}

	_, err = r.Define("Broken", func() (any, error) { return nil, stderrors.New("no resources") }).Commit()
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.Define("Panicky", func() (any, error) { panic("ctor panic") }).Commit()
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.Define("Nil", func() (any, error) { return nil, nil }).Commit()
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.Define("Mismatch", func() (any, error) { return "text", nil }).
		Method("GetValue", (*sample).GetValue).
		Commit()
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func newObserved(t *testing.T, opts ...Option) (*Bridge, *observer.ObservedLogs, *atomic.Int32) {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	disposed := &atomic.Int32{}
	opts = append([]Option{WithLogger(zap.New(core))}, opts...)
	b := New(newRegistry(t, disposed), opts...)
	t.Cleanup(func() { _ = b.Close() })
	return b, logs, disposed
}

func mustCreate(t *testing.T, b *Bridge, name string) handle.Handle {
	t.Helper()
	h, err := b.CreateObject(name)
	if err != nil {
		t.Fatalf("CreateObject(%s): %v", name, err)
	}
	return h
}

func TestBridge_SetGet(t *testing.T) {
	b, _, _ := newObserved(t)
	h := mustCreate(t, b, "Sample")

	if h != 1 {
		t.Errorf("first handle = %d, want 1", h)
	}

	res := b.InvokeMethod(h, "SetValue", marshal.RawArgs{42}, nil)
	if res.Kind != invoke.Void {
		t.Fatalf("SetValue = %v", res)
	}

	res = b.InvokeMethod(h, "GetValue", nil, nil)
	if v, ok := res.Int32(); !ok || v != 42 {
		t.Errorf("GetValue = %v", res)
	}

	if name, ok := b.Lookup(h); !ok || name != "Sample" {
		t.Errorf("Lookup = %q, %v", name, ok)
	}
}

func TestBridge_HandlesAreUnique(t *testing.T) {
	b, _, _ := newObserved(t)
	h1 := mustCreate(t, b, "Sample")
	h2 := mustCreate(t, b, "Sample")
	if h1 == h2 {
		t.Fatal("same handle issued twice")
	}

	b.InvokeMethod(h1, "SetValue", marshal.RawArgs{1}, nil)
	b.InvokeMethod(h2, "SetValue", marshal.RawArgs{2}, nil)

	v1, _ := b.InvokeMethod(h1, "GetValue", nil, nil).Int32()
	v2, _ := b.InvokeMethod(h2, "GetValue", nil, nil).Int32()
	if v1 != 1 || v2 != 2 {
		t.Errorf("objects share state: %d, %d", v1, v2)
	}

	if err := b.DestroyObject(h1); err != nil {
		t.Fatal(err)
	}
	h3 := mustCreate(t, b, "Sample")
	if h3 == h1 || h3 <= h2 {
		t.Errorf("handle %d reused or not increasing", h3)
	}
}

func TestBridge_StringArgument(t *testing.T) {
	b, _, _ := newObserved(t)
	h := mustCreate(t, b, "Sample")

	mem := gravix.NewByteMemory(64)
	ptr := mem.PutCString("world")

	res := b.InvokeMethod(h, "Greet", marshal.RawArgs{uint64(ptr)}, mem)
	if s, ok := res.Text(); !ok || s != "hello world" {
		t.Errorf("Greet = %v", res)
	}
}

func TestBridge_CreateFailures(t *testing.T) {
	b, logs, _ := newObserved(t)

	tests := []struct {
		name string
		kind errors.Kind
	}{
		{"NoSuchType", errors.KindTypeNotFound},
		{"Broken", errors.KindConstructionFailed},
		{"Panicky", errors.KindConstructionFailed},
		{"Nil", errors.KindConstructionFailed},
		{"Mismatch", errors.KindConstructionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := b.CreateObject(tt.name)
			if h != handle.Invalid {
				t.Errorf("handle = %d, want 0", h)
			}
			if errors.KindOf(err) != tt.kind {
				t.Errorf("kind = %s, want %s", errors.KindOf(err), tt.kind)
			}
		})
	}

	if got := logs.FilterMessage("bridge call failed").Len(); got != len(tests) {
		t.Errorf("logged %d failures, want %d", got, len(tests))
	}
	if len(b.Live()) != 0 {
		t.Errorf("failed creations left live handles: %v", b.Live())
	}
}

func TestBridge_InvokeFailures(t *testing.T) {
	b, logs, _ := newObserved(t)
	h := mustCreate(t, b, "Sample")

	tests := []struct {
		name   string
		handle handle.Handle
		method string
		raw    marshal.RawArgs
		kind   errors.Kind
	}{
		{"unknown handle", 99, "GetValue", nil, errors.KindInvalidHandle},
		{"zero handle", 0, "GetValue", nil, errors.KindInvalidHandle},
		{"unknown method", h, "Nope", nil, errors.KindMethodNotFound},
		{"wrong arity", h, "GetValue", marshal.RawArgs{1}, errors.KindMethodNotFound},
		{"unsupported param", h, "Weights", marshal.RawArgs{0}, errors.KindUnsupportedParam},
		{"null string", h, "Greet", marshal.RawArgs{0}, errors.KindNilPointer},
		{"returned error", h, "Fail", nil, errors.KindInvocationFailure},
		{"panic", h, "Panic", nil, errors.KindInvocationFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := logs.Len()
			res := b.InvokeMethod(tt.handle, tt.method, tt.raw, nil)
			if !res.IsError() {
				t.Fatalf("result = %v, want error", res)
			}
			if res.Err.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", res.Err.Kind, tt.kind)
			}
			code, _ := res.ErrorCode()
			if code != errors.Code(tt.kind) {
				t.Errorf("code = %d, want %d", code, errors.Code(tt.kind))
			}
			if res.Err.Method != tt.method {
				t.Errorf("error method = %q", res.Err.Method)
			}
			if logs.Len() != before+1 {
				t.Error("failure was not logged")
			}
		})
	}

	// The object survives every failure above.
	if res := b.InvokeMethod(h, "GetValue", nil, nil); res.IsError() {
		t.Errorf("object unusable after failures: %v", res)
	}

	entry := logs.FilterMessage("bridge call failed").All()[0]
	if entry.Level != zapcore.WarnLevel {
		t.Errorf("level = %s", entry.Level)
	}
	if entry.ContextMap()["kind"] != string(errors.KindInvalidHandle) {
		t.Errorf("fields = %v", entry.ContextMap())
	}
}

func TestBridge_MarshalFailureHasNoSideEffects(t *testing.T) {
	b, _, _ := newObserved(t)
	h := mustCreate(t, b, "Sample")
	b.InvokeMethod(h, "SetValue", marshal.RawArgs{5}, nil)

	res := b.InvokeMethod(h, "Mixed", marshal.RawArgs{9, 0}, nil)
	if !res.IsError() || res.Err.Kind != errors.KindUnsupportedParam {
		t.Errorf("Mixed = %v, want unsupported_parameter_type", res)
	}

	// First slot converts, second is a null string pointer.
	mem := gravix.NewByteMemory(16)
	res = b.InvokeMethod(h, "Tagged", marshal.RawArgs{9, 0}, mem)
	if !res.IsError() || res.Err.Kind != errors.KindNilPointer {
		t.Errorf("Tagged = %v, want nil_pointer", res)
	}
	if res.Err.Param != 2 {
		t.Errorf("failing param = %d, want 2", res.Err.Param)
	}

	if v, _ := b.InvokeMethod(h, "GetValue", nil, nil).Int32(); v != 5 {
		t.Errorf("GetValue = %d after failed calls, want 5", v)
	}

	res = b.InvokeMethod(h, "Tagged", marshal.RawArgs{9, uint64(mem.PutCString("ok"))}, mem)
	if res.IsError() {
		t.Fatalf("Tagged = %v", res)
	}
	if v, _ := b.InvokeMethod(h, "GetValue", nil, nil).Int32(); v != 9 {
		t.Errorf("GetValue = %d after successful call, want 9", v)
	}
}

func TestBridge_ReturnedObjects(t *testing.T) {
	b, _, _ := newObserved(t)
	h := mustCreate(t, b, "Sample")
	b.InvokeMethod(h, "SetValue", marshal.RawArgs{7}, nil)

	res := b.InvokeMethod(h, "Clone", nil, nil)
	clone, ok := res.Handle()
	if !ok || handle.Handle(clone) == h {
		t.Fatalf("Clone = %v", res)
	}
	if name, ok := b.Lookup(handle.Handle(clone)); !ok || name != "Sample" {
		t.Errorf("clone type = %q, %v", name, ok)
	}
	if v, _ := b.InvokeMethod(handle.Handle(clone), "GetValue", nil, nil).Int32(); v != 7 {
		t.Errorf("clone value = %d", v)
	}

	self, ok := b.InvokeMethod(h, "Self", nil, nil).Handle()
	if !ok || handle.Handle(self) != h {
		t.Errorf("Self = %d, want existing handle %d", self, h)
	}
}

func TestBridge_Destroy(t *testing.T) {
	b, logs, disposed := newObserved(t)
	h := mustCreate(t, b, "Sample")

	if err := b.DestroyObject(h); err != nil {
		t.Fatalf("DestroyObject: %v", err)
	}
	if disposed.Load() != 1 {
		t.Errorf("disposed = %d, want 1", disposed.Load())
	}

	res := b.InvokeMethod(h, "GetValue", nil, nil)
	if !res.IsError() || res.Err.Kind != errors.KindInvalidHandle {
		t.Errorf("call after destroy = %v", res)
	}

	err := b.DestroyObject(h)
	if !errors.Is(err, errors.ErrInvalidHandle) {
		t.Errorf("second destroy = %v", err)
	}
	if disposed.Load() != 1 {
		t.Error("second destroy disposed again")
	}
	if logs.FilterField(zap.String("kind", string(errors.KindInvalidHandle))).Len() != 2 {
		t.Errorf("invalid handle failures logged %d times", logs.Len())
	}
}

func watch(t *testing.T, b *Bridge) (handle.Handle, *watcher) {
	t.Helper()
	h := mustCreate(t, b, "Watcher")
	entry, ok := b.table.Resolve(h)
	if !ok {
		t.Fatal("watcher not resolvable")
	}
	return h, entry.Value.(*watcher)
}

func TestBridge_DisposeBeforeRelease(t *testing.T) {
	b, _, _ := newObserved(t)
	h, w := watch(t, b)

	var liveDuringDispose, callable bool
	w.onDispose = func() {
		_, liveDuringDispose = b.Lookup(h)
		ok, _ := b.InvokeMethod(h, "Ping", nil, nil).Bool()
		callable = ok
	}

	if err := b.DestroyObject(h); err != nil {
		t.Fatalf("DestroyObject: %v", err)
	}
	if !liveDuringDispose || !callable {
		t.Errorf("during Dispose: live=%v callable=%v, want both true", liveDuringDispose, callable)
	}
	if _, ok := b.Lookup(h); ok {
		t.Error("handle live after DestroyObject")
	}
}

func TestBridge_DisposeReentrantDestroy(t *testing.T) {
	b, _, _ := newObserved(t)
	h, w := watch(t, b)

	calls := 0
	var inner error
	w.onDispose = func() {
		calls++
		inner = b.DestroyObject(h)
	}

	if err := b.DestroyObject(h); err != nil {
		t.Fatalf("DestroyObject: %v", err)
	}
	if calls != 1 {
		t.Errorf("Dispose ran %d times", calls)
	}
	if errors.KindOf(inner) != errors.KindInvalidHandle {
		t.Errorf("nested destroy = %v, want invalid_handle", inner)
	}
}

func TestBridge_DisposeFailureStillReleases(t *testing.T) {
	b, _, _ := newObserved(t)
	h, w := watch(t, b)
	w.fail = true

	var live bool
	w.onDispose = func() { _, live = b.Lookup(h) }

	err := b.DestroyObject(h)
	if !errors.Is(err, errors.ErrDisposalFailed) {
		t.Fatalf("err = %v", err)
	}
	if !live {
		t.Error("handle already released when Dispose ran")
	}
	if _, ok := b.Lookup(h); ok {
		t.Error("handle live after failed Dispose")
	}
	if got := b.Stats().Destroyed; got != 1 {
		t.Errorf("Destroyed = %d, want 1", got)
	}
}

func TestBridge_DisposeFailure(t *testing.T) {
	b, _, _ := newObserved(t)
	h := mustCreate(t, b, "Sample")
	mem := gravix.NewByteMemory(16)
	b.InvokeMethod(h, "SetName", marshal.RawArgs{uint64(mem.PutCString("bad"))}, mem)

	err := b.DestroyObject(h)
	if !errors.Is(err, errors.ErrDisposalFailed) {
		t.Fatalf("err = %v", err)
	}
	if _, ok := b.Lookup(h); ok {
		t.Error("handle still live after failed disposal")
	}
}

func TestBridge_TypedCall(t *testing.T) {
	b, _, _ := newObserved(t)
	h := mustCreate(t, b, "Sample")

	if res := b.Call(h, "SetValue", 12); res.IsError() {
		t.Fatalf("SetValue: %v", res)
	}
	if v, _ := b.Call(h, "GetValue").Int32(); v != 12 {
		t.Errorf("GetValue = %d", v)
	}
	if res := b.Call(h, "SetValue", "twelve"); !res.IsError() || res.Err.Kind != errors.KindInvalidInput {
		t.Errorf("bad typed arg = %v", res)
	}
}

func TestBridge_TypeDirected(t *testing.T) {
	r := registry.NewRegistry()
	_, err := r.Define("Sample", func() (any, error) { return &sample{}, nil }).
		Method("Set", (*sample).SetValue).
		Method("Set", (*sample).SetName).
		Commit()
	if err != nil {
		t.Fatal(err)
	}

	first := New(r)
	h := mustCreate(t, first, "Sample")
	if res := first.InvokeMethod(h, "Set", marshal.RawArgs{5}, nil); res.IsError() {
		t.Errorf("first-declared = %v", res)
	}

	directed := New(r, WithPolicy(registry.TypeDirected))
	h = mustCreate(t, directed, "Sample")
	res := directed.InvokeMethod(h, "Set", marshal.RawArgs{5}, nil)
	if !res.IsError() || res.Err.Kind != errors.KindAmbiguousMatch {
		t.Errorf("type-directed raw = %v", res)
	}
	if res := directed.Call(h, "Set", "name"); res.IsError() {
		t.Errorf("type-directed typed = %v", res)
	}
}

func TestBridge_MaxStringLen(t *testing.T) {
	b, _, _ := newObserved(t, WithMaxStringLen(4))
	h := mustCreate(t, b, "Sample")
	mem := gravix.NewByteMemory(32)

	res := b.InvokeMethod(h, "Greet", marshal.RawArgs{uint64(mem.PutCString("abcdefgh"))}, mem)
	if !res.IsError() || res.Err.Kind != errors.KindOutOfBounds {
		t.Errorf("long string = %v", res)
	}
}

func TestBridge_Observer(t *testing.T) {
	var events []handle.EventType
	obs := handle.ObserverFunc(func(e handle.Event) { events = append(events, e.Type) })

	b, _, _ := newObserved(t, WithObserver(obs))
	h := mustCreate(t, b, "Sample")
	_ = b.DestroyObject(h)

	if len(events) != 2 || events[0] != handle.EventRegistered || events[1] != handle.EventReleased {
		t.Errorf("events = %v", events)
	}
}

func TestBridge_Close(t *testing.T) {
	b, _, disposed := newObserved(t)
	mustCreate(t, b, "Sample")
	mustCreate(t, b, "Sample")

	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if disposed.Load() != 2 {
		t.Errorf("disposed = %d, want 2", disposed.Load())
	}
	if len(b.Live()) != 0 {
		t.Error("live handles after Close")
	}
	if _, err := b.CreateObject("Sample"); errors.KindOf(err) != errors.KindClosed {
		t.Errorf("create after close = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestBridge_Stats(t *testing.T) {
	b, _, _ := newObserved(t)
	h := mustCreate(t, b, "Sample")
	b.InvokeMethod(h, "GetValue", nil, nil)
	b.InvokeMethod(h, "Nope", nil, nil)
	_ = b.DestroyObject(h)

	got := b.Stats()
	want := Stats{Created: 1, Destroyed: 1, Invocations: 2, Failures: 1}
	if got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
}

func TestBridge_Concurrent(t *testing.T) {
	b, _, _ := newObserved(t)

	const workers, perWorker = 8, 50
	handles := make([][]handle.Handle, workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < perWorker; i++ {
				h, err := b.CreateObject("Sample")
				if err != nil {
					return err
				}
				if res := b.InvokeMethod(h, "SetValue", marshal.RawArgs{uint64(i)}, nil); res.IsError() {
					return res.Err
				}
				handles[w] = append(handles[w], h)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	seen := make(map[handle.Handle]bool)
	for _, hs := range handles {
		for _, h := range hs {
			if seen[h] {
				t.Fatalf("handle %d issued twice", h)
			}
			seen[h] = true
		}
	}
	if len(seen) != workers*perWorker || len(b.Live()) != workers*perWorker {
		t.Errorf("issued %d, live %d", len(seen), len(b.Live()))
	}
}
