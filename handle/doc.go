// Package handle provides the table that owns every object the host can
// reach.
//
// The host only ever holds a Handle. The Table maps it to the object:
//
//	table := handle.NewTable()
//
//	// Take ownership, get a handle
//	h := table.Register(typeID, obj)
//
//	// Borrow the object for one call
//	entry, ok := table.Resolve(h)
//
//	// Drop ownership
//	obj, ok := table.Release(h)
//
// # Issuance
//
// Handles are issued from a counter that starts at 1 and never moves
// backward. Freed values are never reused, so a stale handle held by the
// host can never resolve to a newer object. Handle 0 is never issued.
//
// # Lifecycle
//
//	Unregistered -> Live -> Destroyed
//
// Live is entered only through Register, Destroyed only through Release.
// Destroyed is terminal.
//
// # Disposal
//
// Objects may implement Disposer. Release does not call it; the caller runs
// Dispose first and releases afterwards regardless of the outcome. Close
// does both for every remaining object.
//
// # Observers
//
// Register observers to track lifecycle events:
//
//	table.Subscribe(handle.ObserverFunc(func(e handle.Event) {
//	    switch e.Type {
//	    case handle.EventRegistered:
//	        log.Printf("handle %d registered", e.Handle)
//	    case handle.EventReleased:
//	        log.Printf("handle %d released", e.Handle)
//	    }
//	}))
package handle
