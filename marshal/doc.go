// Package marshal converts boundary argument vectors into typed call
// arguments.
//
// The set of parameter types is closed (see ParamType). A method whose
// parameters fall outside it can still be registered, but any attempt to
// call it fails with unsupported_parameter_type before a single slot is
// read, so a call is either fully marshaled or not attempted.
//
// Two input forms are supported:
//
//	FromRaw     RawArgs from a native host; strings are pointers into host Memory
//	FromValues  Go values from in-process callers
package marshal
