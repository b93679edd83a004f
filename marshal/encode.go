package marshal

import (
	"math"

	gravix "github.com/DarkerMinecraft/Gravix"
	"github.com/DarkerMinecraft/Gravix/errors"
)

// EncodeRaw lays typed values out as a raw argument vector the way a native
// host would: scalars inline, strings copied into mem with a terminator.
func EncodeRaw(params []ParamType, args []any, mem *gravix.ByteMemory) (RawArgs, error) {
	if len(params) != len(args) {
		return nil, errors.New(errors.PhaseMarshal, errors.KindInvalidInput).
			Detail("got %d argument(s), want %d", len(args), len(params)).
			Build()
	}

	raw := make(RawArgs, len(args))
	for i, p := range params {
		s, ok := scalar(p, args[i])
		if !ok {
			return nil, errors.New(errors.PhaseMarshal, errors.KindInvalidInput).
				Param(i + 1).
				Value(args[i]).
				Detail("%T does not fit parameter type %s", args[i], p).
				Build()
		}

		switch p {
		case Int32:
			raw[i] = uint64(uint32(int32(s.(int64))))
		case Int64:
			raw[i] = uint64(s.(int64))
		case Uint32, Uint64:
			raw[i] = s.(uint64)
		case Float32:
			raw[i] = uint64(math.Float32bits(float32(s.(float64))))
		case Float64:
			raw[i] = math.Float64bits(s.(float64))
		case Bool:
			if s.(bool) {
				raw[i] = 1
			}
		case String:
			if mem == nil {
				return nil, errors.NilPointer(errors.PhaseMarshal, "memory")
			}
			raw[i] = uint64(mem.PutCString(s.(string)))
		}
	}
	return raw, nil
}
