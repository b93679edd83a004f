package marshal

import (
	"math"
	"reflect"

	gravix "github.com/DarkerMinecraft/Gravix"
	"github.com/DarkerMinecraft/Gravix/errors"
)

// Marshaler converts argument vectors into call arguments.
type Marshaler struct {
	MaxStringLen uint32
}

// New creates a marshaler with the default string limit.
func New() *Marshaler {
	return &Marshaler{MaxStringLen: DefaultMaxStringLen}
}

// FromRaw converts a raw argument vector. Every parameter type is checked
// before any slot is read, and on failure no values are returned.
func (m *Marshaler) FromRaw(params []ParamType, goTypes []reflect.Type, raw RawArgs, mem gravix.Memory) ([]reflect.Value, error) {
	if err := check(params, goTypes, len(raw)); err != nil {
		return nil, err
	}

	maxLen := m.MaxStringLen
	if maxLen == 0 {
		maxLen = DefaultMaxStringLen
	}

	out := make([]reflect.Value, len(params))
	for i, p := range params {
		v := reflect.New(goTypes[i]).Elem()
		slot := raw[i]

		switch p {
		case Int32:
			v.SetInt(int64(int32(uint32(slot))))
		case Int64:
			v.SetInt(int64(slot))
		case Uint32:
			v.SetUint(uint64(uint32(slot)))
		case Uint64:
			v.SetUint(slot)
		case Float32:
			v.SetFloat(float64(math.Float32frombits(uint32(slot))))
		case Float64:
			v.SetFloat(math.Float64frombits(slot))
		case Bool:
			v.SetBool(slot != 0)
		case String:
			if slot > math.MaxUint32 {
				return nil, errors.New(errors.PhaseMarshal, errors.KindOutOfBounds).
					Param(i + 1).
					Detail("string pointer 0x%x exceeds 32-bit address space", slot).
					Build()
			}
			s, err := gravix.ReadCString(mem, uint32(slot), maxLen)
			if err != nil {
				be := errors.As(errors.PhaseMarshal, err)
				be.Param = i + 1
				return nil, be
			}
			v.SetString(s)
		}
		out[i] = v
	}
	return out, nil
}

// FromValues converts in-process Go values. Numbers convert only when the
// value fits the parameter type exactly.
func (m *Marshaler) FromValues(params []ParamType, goTypes []reflect.Type, args []any) ([]reflect.Value, error) {
	if err := check(params, goTypes, len(args)); err != nil {
		return nil, err
	}

	out := make([]reflect.Value, len(params))
	for i, p := range params {
		v, ok := convert(p, goTypes[i], args[i])
		if !ok {
			return nil, errors.New(errors.PhaseMarshal, errors.KindInvalidInput).
				Param(i + 1).
				Value(args[i]).
				Detail("%T does not fit parameter type %s", args[i], goTypes[i]).
				Build()
		}
		out[i] = v
	}
	return out, nil
}

// Accepts reports whether v can be passed for a parameter of type p.
func Accepts(p ParamType, v any) bool {
	_, ok := scalar(p, v)
	return ok
}

func check(params []ParamType, goTypes []reflect.Type, argc int) error {
	if len(params) != len(goTypes) {
		return errors.InvalidInput(errors.PhaseMarshal, "parameter metadata is inconsistent")
	}
	if pos := FirstUnsupported(params); pos != 0 {
		return errors.New(errors.PhaseMarshal, errors.KindUnsupportedParam).
			Param(pos).
			Value(goTypes[pos-1].String()).
			Detail("parameter type %s is not marshalable", goTypes[pos-1]).
			Build()
	}
	if argc != len(params) {
		return errors.New(errors.PhaseMarshal, errors.KindInvalidInput).
			Detail("got %d argument(s), want %d", argc, len(params)).
			Build()
	}
	return nil
}

func convert(p ParamType, t reflect.Type, arg any) (reflect.Value, bool) {
	s, ok := scalar(p, arg)
	if !ok {
		return reflect.Value{}, false
	}
	v := reflect.New(t).Elem()
	switch p {
	case Int32, Int64:
		v.SetInt(s.(int64))
	case Uint32, Uint64:
		v.SetUint(s.(uint64))
	case Float32, Float64:
		v.SetFloat(s.(float64))
	case Bool:
		v.SetBool(s.(bool))
	case String:
		v.SetString(s.(string))
	}
	return v, true
}

// scalar normalizes arg to int64, uint64, float64, bool or string when it
// fits p without loss.
func scalar(p ParamType, arg any) (any, bool) {
	if arg == nil {
		return nil, false
	}
	rv := reflect.ValueOf(arg)

	switch p {
	case Int32, Int64:
		lo, hi := int64(math.MinInt32), int64(math.MaxInt32)
		if p == Int64 {
			lo, hi = math.MinInt64, math.MaxInt64
		}
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n := rv.Int()
			return n, n >= lo && n <= hi
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			n := rv.Uint()
			return int64(n), n <= uint64(hi)
		}

	case Uint32, Uint64:
		hi := uint64(math.MaxUint32)
		if p == Uint64 {
			hi = math.MaxUint64
		}
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n := rv.Int()
			return uint64(n), n >= 0 && uint64(n) <= hi
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			n := rv.Uint()
			return n, n <= hi
		}

	case Float32:
		switch rv.Kind() {
		case reflect.Float32:
			return rv.Float(), true
		case reflect.Float64:
			f := rv.Float()
			return f, math.IsNaN(f) || float64(float32(f)) == f
		}

	case Float64:
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			return rv.Float(), true
		}

	case Bool:
		if rv.Kind() == reflect.Bool {
			return rv.Bool(), true
		}

	case String:
		if rv.Kind() == reflect.String {
			return rv.String(), true
		}
	}
	return nil, false
}
