package registry

import (
	"fmt"
	"strings"

	"github.com/DarkerMinecraft/Gravix/errors"
	"github.com/DarkerMinecraft/Gravix/marshal"
)

// Policy selects how overloads with the same name and arity are decided.
type Policy uint8

const (
	// FirstDeclared picks the first method, in declaration order, whose name
	// and arity match. Parameter types are not considered.
	FirstDeclared Policy = iota

	// TypeDirected drops candidates that cannot marshal their parameters
	// (and, for typed calls, candidates whose parameters reject the supplied
	// values). More than one survivor is an ambiguous match.
	TypeDirected
)

func (p Policy) String() string {
	switch p {
	case FirstDeclared:
		return "first-declared"
	case TypeDirected:
		return "type-directed"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// ParsePolicy accepts the names produced by Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first-declared", "first_declared":
		return FirstDeclared, nil
	case "type-directed", "type_directed":
		return TypeDirected, nil
	default:
		return 0, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(s).
			Detail("unknown resolution policy %q", s).
			Build()
	}
}

// Resolver selects the method to call for a name and argument count.
type Resolver struct {
	Policy Policy
}

// Resolve picks a method for a raw call with argc arguments.
func (r Resolver) Resolve(desc *TypeDescriptor, name string, argc int) (*Method, error) {
	candidates := arityMatches(desc, name, argc)
	if len(candidates) == 0 {
		return nil, errors.MethodNotFound(desc.Name, name, argc)
	}
	if r.Policy == FirstDeclared {
		return candidates[0], nil
	}

	viable := candidates[:0:0]
	for _, m := range candidates {
		if m.Supported() == nil {
			viable = append(viable, m)
		}
	}

	switch len(viable) {
	case 0:
		return nil, candidates[0].Supported()
	case 1:
		return viable[0], nil
	default:
		return nil, ambiguous(desc, name, viable)
	}
}

// ResolveTyped picks a method for an in-process call with Go values.
func (r Resolver) ResolveTyped(desc *TypeDescriptor, name string, args []any) (*Method, error) {
	candidates := arityMatches(desc, name, len(args))
	if len(candidates) == 0 {
		return nil, errors.MethodNotFound(desc.Name, name, len(args))
	}
	if r.Policy == FirstDeclared {
		return candidates[0], nil
	}

	var viable []*Method
	for _, m := range candidates {
		if accepts(m, args) {
			viable = append(viable, m)
		}
	}

	switch len(viable) {
	case 0:
		return nil, errors.New(errors.PhaseResolve, errors.KindMethodNotFound).
			Type(desc.Name).
			Method(name).
			Detail("no overload with %d parameter(s) accepts the supplied argument types", len(args)).
			Build()
	case 1:
		return viable[0], nil
	default:
		return nil, ambiguous(desc, name, viable)
	}
}

func arityMatches(desc *TypeDescriptor, name string, argc int) []*Method {
	var out []*Method
	for _, m := range desc.Methods {
		if m.Name == name && m.Arity() == argc {
			out = append(out, m)
		}
	}
	return out
}

func accepts(m *Method, args []any) bool {
	for i, p := range m.Params {
		if !marshal.Accepts(p, args[i]) {
			return false
		}
	}
	return true
}

func ambiguous(desc *TypeDescriptor, name string, methods []*Method) error {
	sigs := make([]string, len(methods))
	for i, m := range methods {
		sigs[i] = m.Signature()
	}
	return errors.AmbiguousMatch(desc.Name, name, sigs)
}
