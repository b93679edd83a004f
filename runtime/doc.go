// Package runtime assembles a complete bridge from configuration.
//
// # Quick Start
//
//	cfg, err := config.Load("gravix.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rt, err := runtime.New(cfg, runtime.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	// Create the configured entities and attach their scripts
//	if err := rt.LoadScene(); err != nil {
//	    log.Print(err)
//	}
//
//	// Drive OnUpdate once per frame
//	rt.Tick(1.0 / 60)
//
// # WebAssembly Guests
//
// LoadWASM instantiates a core module that imports the bridge under
// the configured module name (gravix by default):
//
//	mod, err := rt.LoadWASM(ctx, "game", wasmBytes)
//
// See package wasmhost for the import signatures.
package runtime
