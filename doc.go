// Package gravix is a handle-based invocation bridge between a native host
// (an engine core) and Go objects the host never sees directly.
//
// The host holds only opaque integer handles. Type lookup, construction,
// method resolution, argument conversion and lifetime tracking all happen
// on the Go side.
//
// # Architecture Overview
//
//	gravix/              Root package with the boundary Memory abstraction
//	├── errors/          Structured error taxonomy shared by every layer
//	├── handle/          Handle table (monotonic issuance, disposal contract)
//	├── registry/        Ahead-of-time type registry and method resolver
//	├── marshal/         Raw argument vector -> typed call arguments
//	├── invoke/          Call capture and tagged result packaging
//	├── bridge/          CreateObject / InvokeMethod / DestroyObject
//	├── wasmhost/        Entry points exported to a WebAssembly host (wazero)
//	├── engineapi/       Engine services consumed by managed objects
//	├── scripts/         Built-in managed types
//	├── script/          OnCreate / OnUpdate lifecycle driver
//	├── config/          TOML configuration
//	├── logging/         zap logger construction
//	├── runtime/         Everything above assembled from one Config
//	└── cmd/
//	    ├── gravix/        Developer console (batch and TUI)
//	    └── gravixbridge/  C shared library exports
//
// # Quick Start
//
//	reg := registry.NewRegistry()
//	scripts.Register(reg, engineapi.NewScene(nil))
//
//	b := bridge.New(reg)
//	defer b.Close()
//
//	h, err := b.CreateObject("Sample")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	b.Call(h, "SetValue", int32(42))
//	res := b.Call(h, "GetValue")
//	v, _ := res.Int32() // 42
//
//	b.DestroyObject(h)
//
// # Handles
//
// Handles are issued from a strictly increasing counter starting at 1.
// Zero is never issued and doubles as the failure sentinel. A destroyed
// handle never resolves again and its value is never handed out twice.
//
// # Thread Safety
//
// The handle table is safe for concurrent use. Method invocations are not
// serialized by the bridge: two goroutines calling into the same object
// race on that object's state, not on the bridge's.
package gravix
