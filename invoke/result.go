package invoke

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/DarkerMinecraft/Gravix/errors"
)

// Kind tags the payload of a Result. The numeric values are part of the
// boundary contract.
type Kind uint32

const (
	None         Kind = 0
	Int32        Kind = 1
	Int64        Kind = 2
	Float        Kind = 3
	Double       Kind = 4
	Bool         Kind = 5
	String       Kind = 6
	ObjectHandle Kind = 7
	Void         Kind = 8
	Error        Kind = 9
)

var kindNames = [...]string{
	None:         "none",
	Int32:        "int32",
	Int64:        "int64",
	Float:        "float",
	Double:       "double",
	Bool:         "bool",
	String:       "string",
	ObjectHandle: "object_handle",
	Void:         "void",
	Error:        "error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.FormatUint(uint64(k), 10) + ")"
}

// Valid reports whether k is one of the defined tags.
func (k Kind) Valid() bool {
	return k <= Error
}

// Result is the tagged outcome of an invocation. Data holds the payload in
// little-endian form and Size is its length in bytes.
//
//	Int32, Float         4 bytes
//	Int64, Double        8 bytes
//	ObjectHandle         8 bytes
//	Bool                 1 byte
//	String               UTF-8 bytes, no terminator
//	Error                4-byte error code, then the UTF-8 message
//	None, Void           empty
type Result struct {
	Err  *errors.Error
	Data []byte
	Kind Kind
	Size uint32
}

func newResult(kind Kind, data []byte) Result {
	return Result{Kind: kind, Data: data, Size: uint32(len(data))}
}

func VoidResult() Result { return Result{Kind: Void} }

func NoneResult() Result { return Result{Kind: None} }

func Int32Result(v int32) Result {
	return newResult(Int32, binary.LittleEndian.AppendUint32(nil, uint32(v)))
}

func Int64Result(v int64) Result {
	return newResult(Int64, binary.LittleEndian.AppendUint64(nil, uint64(v)))
}

func FloatResult(v float32) Result {
	return newResult(Float, binary.LittleEndian.AppendUint32(nil, math.Float32bits(v)))
}

func DoubleResult(v float64) Result {
	return newResult(Double, binary.LittleEndian.AppendUint64(nil, math.Float64bits(v)))
}

func BoolResult(v bool) Result {
	if v {
		return newResult(Bool, []byte{1})
	}
	return newResult(Bool, []byte{0})
}

func StringResult(s string) Result {
	return newResult(String, []byte(s))
}

func HandleResult(h uint64) Result {
	return newResult(ObjectHandle, binary.LittleEndian.AppendUint64(nil, h))
}

// ErrorResult packages err. Foreign errors are reported as invocation
// failures.
func ErrorResult(err error) Result {
	be := errors.As(errors.PhaseInvoke, err)
	if be == nil {
		be = errors.New(errors.PhaseInvoke, errors.KindInvocationFailure).Detail("unknown error").Build()
	}
	msg := be.Error()
	data := make([]byte, 4, 4+len(msg))
	binary.LittleEndian.PutUint32(data, errors.Code(be.Kind))
	data = append(data, msg...)
	r := newResult(Error, data)
	r.Err = be
	return r
}

func (r Result) IsError() bool { return r.Kind == Error }

func (r Result) Int32() (int32, bool) {
	if r.Kind != Int32 || len(r.Data) < 4 {
		return 0, false
	}
	return int32(binary.LittleEndian.Uint32(r.Data)), true
}

func (r Result) Int64() (int64, bool) {
	if r.Kind != Int64 || len(r.Data) < 8 {
		return 0, false
	}
	return int64(binary.LittleEndian.Uint64(r.Data)), true
}

func (r Result) Float32() (float32, bool) {
	if r.Kind != Float || len(r.Data) < 4 {
		return 0, false
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(r.Data)), true
}

func (r Result) Float64() (float64, bool) {
	if r.Kind != Double || len(r.Data) < 8 {
		return 0, false
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(r.Data)), true
}

func (r Result) Bool() (bool, bool) {
	if r.Kind != Bool || len(r.Data) < 1 {
		return false, false
	}
	return r.Data[0] != 0, true
}

// Text returns the payload of a String result.
func (r Result) Text() (string, bool) {
	if r.Kind != String {
		return "", false
	}
	return string(r.Data), true
}

func (r Result) Handle() (uint64, bool) {
	if r.Kind != ObjectHandle || len(r.Data) < 8 {
		return 0, false
	}
	return binary.LittleEndian.Uint64(r.Data), true
}

// ErrorCode returns the wire code of an Error result.
func (r Result) ErrorCode() (uint32, bool) {
	if r.Kind != Error || len(r.Data) < 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(r.Data), true
}

// Message returns the message of an Error result.
func (r Result) Message() string {
	if r.Kind != Error || len(r.Data) < 4 {
		return ""
	}
	return string(r.Data[4:])
}

// Value returns the payload as a Go value, or nil for None and Void.
func (r Result) Value() any {
	switch r.Kind {
	case Int32:
		v, _ := r.Int32()
		return v
	case Int64:
		v, _ := r.Int64()
		return v
	case Float:
		v, _ := r.Float32()
		return v
	case Double:
		v, _ := r.Float64()
		return v
	case Bool:
		v, _ := r.Bool()
		return v
	case String:
		v, _ := r.Text()
		return v
	case ObjectHandle:
		v, _ := r.Handle()
		return v
	case Error:
		if r.Err != nil {
			return r.Err
		}
		return r.Message()
	default:
		return nil
	}
}

func (r Result) String() string {
	switch r.Kind {
	case None, Void:
		return r.Kind.String()
	case String:
		return fmt.Sprintf("string %q", r.Data)
	case ObjectHandle:
		h, _ := r.Handle()
		return fmt.Sprintf("handle %d", h)
	case Error:
		return "error: " + r.Message()
	default:
		return fmt.Sprintf("%s %v", r.Kind, r.Value())
	}
}
