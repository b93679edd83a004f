// Package registry holds the types that may be instantiated across the
// bridge and decides which method a call refers to.
//
// Types are registered explicitly, before the first object is created:
//
//	reg := registry.NewRegistry()
//	_, err := reg.Define("Sample", func() (any, error) { return &Sample{}, nil }).
//		Method("SetValue", (*Sample).SetValue).
//		Method("GetValue", (*Sample).GetValue).
//		Commit()
//
// RegisterType reflects the whole exported method set of *T instead. Go
// exposes method sets in lexicographic order, so that order is the declared
// order for reflected types.
//
// # Resolution
//
// A call names a method and supplies an argument count. Overloads are
// expressed by calling Method more than once with the same name. The
// Resolver decides between them:
//
//	FirstDeclared  first name+arity match in declared order (default)
//	TypeDirected   filter by parameter types; more than one survivor is
//	               ambiguous_match
//
// No name+arity match is method_not_found under either policy.
package registry
