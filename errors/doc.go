// Package errors provides the structured error taxonomy of the bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (what
// went wrong). Kinds map one-to-one onto the failure codes the host sees in
// Error results:
//
//	type_not_found              CreateObject named an unregistered type
//	construction_failed         the constructor returned an error or panicked
//	invalid_handle              the handle is unknown or already destroyed
//	method_not_found            no method matches (name, arity)
//	ambiguous_match             type-directed resolution left several candidates
//	unsupported_parameter_type  a parameter type is outside the marshal whitelist
//	invocation_failure          the method itself failed
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseMarshal, errors.KindUnsupportedParam).
//		Type("Sample").
//		Method("Scale").
//		Param(1).
//		Detail("parameter type []float32 is not marshalable").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeNotFound("Enemy")
//	err := errors.InvalidHandle(errors.PhaseResolve, 7)
//
// All errors implement the standard error interface and support errors.Is/As.
// The Err* values match on kind alone:
//
//	if errors.Is(err, errors.ErrInvalidHandle) { ... }
package errors
