package invoke

import (
	"encoding/binary"

	"github.com/DarkerMinecraft/Gravix/errors"
)

// WireHeaderSize is the size of the {kind u32, size u32} prefix.
const WireHeaderSize = 8

// Encode serializes r as {kind u32, size u32, data}.
func Encode(r Result) []byte {
	buf := make([]byte, WireHeaderSize, WireHeaderSize+len(r.Data))
	binary.LittleEndian.PutUint32(buf[0:], uint32(r.Kind))
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(r.Data)))
	return append(buf, r.Data...)
}

// Decode parses the output of Encode. Error results get an Err whose kind
// is recovered from the wire code.
func Decode(buf []byte) (Result, error) {
	if len(buf) < WireHeaderSize {
		return Result{}, errors.OutOfBounds(errors.PhaseHost, WireHeaderSize, len(buf))
	}

	kind := Kind(binary.LittleEndian.Uint32(buf[0:]))
	size := binary.LittleEndian.Uint32(buf[4:])
	if !kind.Valid() {
		return Result{}, errors.New(errors.PhaseHost, errors.KindInvalidInput).
			Value(uint32(kind)).
			Detail("unknown result kind %d", uint32(kind)).
			Build()
	}
	if uint64(size) > uint64(len(buf)-WireHeaderSize) {
		return Result{}, errors.OutOfBounds(errors.PhaseHost, int(size), len(buf)-WireHeaderSize)
	}
	if want, fixed := fixedSize(kind); fixed && size != want {
		return Result{}, errors.New(errors.PhaseHost, errors.KindInvalidInput).
			Detail("%s payload is %d bytes, want %d", kind, size, want).
			Build()
	}

	data := make([]byte, size)
	copy(data, buf[WireHeaderSize:])
	r := newResult(kind, data)

	if kind == Error {
		if size < 4 {
			return Result{}, errors.New(errors.PhaseHost, errors.KindInvalidInput).
				Detail("error payload missing code").
				Build()
		}
		code, _ := r.ErrorCode()
		k, ok := errors.KindFromCode(code)
		if !ok {
			k = errors.KindInvocationFailure
		}
		r.Err = errors.New(errors.PhaseHost, k).Detail("%s", r.Message()).Build()
	}
	return r, nil
}

func fixedSize(k Kind) (uint32, bool) {
	switch k {
	case None, Void:
		return 0, true
	case Bool:
		return 1, true
	case Int32, Float:
		return 4, true
	case Int64, Double, ObjectHandle:
		return 8, true
	default:
		return 0, false
	}
}
