package marshal

import "reflect"

// ParamType is a parameter type the marshaler can fill from a raw slot.
type ParamType uint8

const (
	Unsupported ParamType = iota
	Int32
	Int64
	Uint32
	Uint64
	Float32
	Float64
	Bool
	String
)

var paramTypeNames = [...]string{
	Unsupported: "unsupported",
	Int32:       "int32",
	Int64:       "int64",
	Uint32:      "uint32",
	Uint64:      "uint64",
	Float32:     "float32",
	Float64:     "float64",
	Bool:        "bool",
	String:      "string",
}

func (p ParamType) String() string {
	if int(p) < len(paramTypeNames) {
		return paramTypeNames[p]
	}
	return "unknown"
}

// ParamTypeOf maps a Go parameter type onto the whitelist. Named types are
// accepted by their underlying kind, so `type Key int32` marshals as Int32.
func ParamTypeOf(t reflect.Type) ParamType {
	if t == nil {
		return Unsupported
	}
	switch t.Kind() {
	case reflect.Int32:
		return Int32
	case reflect.Int, reflect.Int64:
		return Int64
	case reflect.Uint32:
		return Uint32
	case reflect.Uint, reflect.Uint64:
		return Uint64
	case reflect.Float32:
		return Float32
	case reflect.Float64:
		return Float64
	case reflect.Bool:
		return Bool
	case reflect.String:
		return String
	default:
		return Unsupported
	}
}

// RawArgs is the boundary form of an argument vector: one native word per
// parameter, with no type tag. The parameter type decides how a slot is read.
//
//	Int32, Uint32  low 32 bits
//	Int64, Uint64  whole word
//	Float32        IEEE-754 bits in the low 32 bits
//	Float64        IEEE-754 bits
//	Bool           non-zero is true
//	String         pointer to NUL-terminated UTF-8 in host memory
type RawArgs []uint64

// DefaultMaxStringLen bounds the scan for a string terminator.
const DefaultMaxStringLen = 1 << 20

// FirstUnsupported returns the 1-based position of the first parameter
// outside the whitelist, or 0 when every parameter is supported.
func FirstUnsupported(params []ParamType) int {
	for i, p := range params {
		if p == Unsupported {
			return i + 1
		}
	}
	return 0
}
