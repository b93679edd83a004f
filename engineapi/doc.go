// Package engineapi describes the engine services that managed objects
// call back into: logging, input, transforms and components.
//
// Scene is an in-memory implementation used when no real engine is
// attached.
package engineapi
