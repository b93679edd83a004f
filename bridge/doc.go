// Package bridge is the single entry point a native host uses to create
// Go objects, call their methods and destroy them.
//
//	b := bridge.New(reg, bridge.WithLogger(log))
//	h, err := b.CreateObject("Sample")
//	res := b.InvokeMethod(h, "SetValue", marshal.RawArgs{42}, nil)
//	err = b.DestroyObject(h)
//
// InvokeMethod never panics and never returns a Go error: every failure is
// logged and packaged as an Error result carrying the error's wire code, so
// the host can treat the result as its only status channel.
//
// A method that returns an object registers it in the bridge's handle table
// and yields an ObjectHandle result. If the object already has a handle
// (a method returning its receiver, for example) the existing handle is
// returned instead of a second one.
package bridge
