// Package script attaches managed objects to scene entities and drives
// their lifecycle hooks.
//
//	SetEntity(uint64)   called once with the entity ID
//	OnCreate()          called once after binding
//	OnUpdate(float32)   called every frame with the frame delta
//
// The hooks go through the bridge's raw invocation path exactly as a native
// engine would call them.
package script
