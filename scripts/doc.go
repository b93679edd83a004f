// Package scripts contains the managed types built into the bridge.
//
// Sample exercises every result kind and failure path. Main, Entity and
// Player are the engine's stock scripts; Player implements the OnCreate and
// OnUpdate hooks driven by package script.
package scripts
