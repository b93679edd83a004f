package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in the bridge the error occurred
type Phase string

const (
	PhaseCreate   Phase = "create"   // type lookup and construction
	PhaseResolve  Phase = "resolve"  // handle and method resolution
	PhaseMarshal  Phase = "marshal"  // raw arguments to typed values
	PhaseInvoke   Phase = "invoke"   // method call and result packaging
	PhaseDispose  Phase = "dispose"  // disposal contract and release
	PhaseRegister Phase = "register" // type registration
	PhaseHost     Phase = "host"     // native entry points
	PhaseConfig   Phase = "config"   // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindTypeNotFound       Kind = "type_not_found"
	KindConstructionFailed Kind = "construction_failed"
	KindInvalidHandle      Kind = "invalid_handle"
	KindMethodNotFound     Kind = "method_not_found"
	KindAmbiguousMatch     Kind = "ambiguous_match"
	KindUnsupportedParam   Kind = "unsupported_parameter_type"
	KindInvocationFailure  Kind = "invocation_failure"
	KindDisposalFailed     Kind = "disposal_failed"
	KindInvalidInput       Kind = "invalid_input"
	KindRegistration       Kind = "registration"
	KindInvalidUTF8        Kind = "invalid_utf8"
	KindOutOfBounds        Kind = "out_of_bounds"
	KindNilPointer         Kind = "nil_pointer"
	KindClosed             Kind = "closed"
)

// kindCodes are the stable numeric codes carried in Error results on the wire.
var kindCodes = map[Kind]uint32{
	KindTypeNotFound:       1,
	KindConstructionFailed: 2,
	KindInvalidHandle:      3,
	KindMethodNotFound:     4,
	KindAmbiguousMatch:     5,
	KindUnsupportedParam:   6,
	KindInvocationFailure:  7,
	KindDisposalFailed:     8,
	KindInvalidInput:       9,
	KindRegistration:       10,
	KindInvalidUTF8:        11,
	KindOutOfBounds:        12,
	KindNilPointer:         13,
	KindClosed:             14,
}

// Code returns the wire code for a kind. Unknown kinds map to the
// invocation failure code.
func Code(k Kind) uint32 {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return kindCodes[KindInvocationFailure]
}

// KindFromCode is the inverse of Code.
func KindFromCode(code uint32) (Kind, bool) {
	for k, c := range kindCodes {
		if c == code {
			return k, true
		}
	}
	return "", false
}

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Method string
	Detail string
	Handle uint64
	Param  int // 1-based parameter position, 0 when not applicable
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Type != "" || e.Method != "" {
		b.WriteString(" at ")
		b.WriteString(e.Type)
		if e.Method != "" {
			if e.Type != "" {
				b.WriteByte('.')
			}
			b.WriteString(e.Method)
		}
		if e.Param > 0 {
			b.WriteString("(#")
			b.WriteString(strconv.Itoa(e.Param))
			b.WriteByte(')')
		}
	}

	if e.Handle != 0 {
		b.WriteString(" handle ")
		b.WriteString(strconv.FormatUint(e.Handle, 10))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a phase
// matches on kind alone.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Phase == "" {
			return e.Kind == t.Kind
		}
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Targets for errors.Is that match on kind regardless of phase.
var (
	ErrTypeNotFound       = &Error{Kind: KindTypeNotFound}
	ErrConstructionFailed = &Error{Kind: KindConstructionFailed}
	ErrInvalidHandle      = &Error{Kind: KindInvalidHandle}
	ErrMethodNotFound     = &Error{Kind: KindMethodNotFound}
	ErrAmbiguousMatch     = &Error{Kind: KindAmbiguousMatch}
	ErrUnsupportedParam   = &Error{Kind: KindUnsupportedParam}
	ErrInvocationFailure  = &Error{Kind: KindInvocationFailure}
	ErrDisposalFailed     = &Error{Kind: KindDisposalFailed}
)

// KindOf returns the kind of err. Errors that did not originate in the
// bridge are reported as invocation failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for e := err; e != nil; {
		if be, ok := e.(*Error); ok {
			return be.Kind
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return KindInvocationFailure
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As returns err as *Error, wrapping foreign errors as invocation failures.
func As(phase Phase, err error) *Error {
	if err == nil {
		return nil
	}
	if be, ok := err.(*Error); ok {
		return be
	}
	return Wrap(phase, KindInvocationFailure, err, "")
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Type sets the managed type name
func (b *Builder) Type(name string) *Builder {
	b.err.Type = name
	return b
}

// Method sets the method name
func (b *Builder) Method(name string) *Builder {
	b.err.Method = name
	return b
}

// Handle sets the handle the operation targeted
func (b *Builder) Handle(h uint64) *Builder {
	b.err.Handle = h
	return b
}

// Param sets the 1-based parameter position
func (b *Builder) Param(pos int) *Builder {
	b.err.Param = pos
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the bridge taxonomy

// TypeNotFound creates an error for a type name absent from the registry
func TypeNotFound(name string) *Error {
	return &Error{
		Phase:  PhaseCreate,
		Kind:   KindTypeNotFound,
		Type:   name,
		Detail: fmt.Sprintf("type %q is not registered", name),
	}
}

// ConstructionFailed creates an error for a constructor that failed or panicked
func ConstructionFailed(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseCreate,
		Kind:   KindConstructionFailed,
		Type:   name,
		Detail: "constructor failed",
		Cause:  cause,
	}
}

// InvalidHandle creates an error for a handle that is not live
func InvalidHandle(phase Phase, h uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidHandle,
		Handle: h,
		Detail: "handle does not refer to a live object",
	}
}

// MethodNotFound creates an error for a (name, arity) pair with no match
func MethodNotFound(typeName, method string, arity int) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindMethodNotFound,
		Type:   typeName,
		Method: method,
		Detail: fmt.Sprintf("no method with %d parameter(s)", arity),
		Value:  arity,
	}
}

// AmbiguousMatch creates an error for a call more than one signature accepts
func AmbiguousMatch(typeName, method string, candidates []string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindAmbiguousMatch,
		Type:   typeName,
		Method: method,
		Detail: "candidates: " + strings.Join(candidates, ", "),
		Value:  candidates,
	}
}

// UnsupportedParam creates an error for a parameter type outside the whitelist
func UnsupportedParam(typeName, method string, pos int, goType string) *Error {
	return &Error{
		Phase:  PhaseMarshal,
		Kind:   KindUnsupportedParam,
		Type:   typeName,
		Method: method,
		Param:  pos,
		Detail: fmt.Sprintf("parameter type %s is not marshalable", goType),
		Value:  goType,
	}
}

// InvocationFailure creates an error for a method that returned an error or panicked
func InvocationFailure(typeName, method string, cause error) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindInvocationFailure,
		Type:   typeName,
		Method: method,
		Detail: "method failed",
		Cause:  cause,
	}
}

// DisposalFailed creates an error for a disposal contract that failed
func DisposalFailed(h uint64, cause error) *Error {
	return &Error{
		Phase:  PhaseDispose,
		Kind:   KindDisposalFailed,
		Handle: h,
		Detail: "dispose failed, handle released anyway",
		Cause:  cause,
	}
}

// Registration creates a type registration error
func Registration(typeName, detail string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindRegistration,
		Type:   typeName,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("offset %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Detail: "nil " + what + " pointer",
	}
}

// Closed creates an error for operations on a torn-down bridge
func Closed(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: component + " is closed",
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
