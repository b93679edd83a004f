package gravix

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/DarkerMinecraft/Gravix/errors"
)

// Memory is byte storage owned by the host. String arguments crossing the
// boundary are pointers into it.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer provides the current size of host memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// ReadCString reads a NUL-terminated UTF-8 string starting at ptr.
// At most maxLen bytes are scanned before the terminator.
func ReadCString(mem Memory, ptr uint32, maxLen uint32) (string, error) {
	if mem == nil || ptr == 0 {
		return "", errors.NilPointer(errors.PhaseMarshal, "string")
	}

	limit := maxLen
	if s, ok := mem.(MemorySizer); ok {
		size := s.Size()
		if ptr >= size {
			return "", errors.OutOfBounds(errors.PhaseMarshal, int(ptr), int(size))
		}
		if avail := size - ptr; avail < limit {
			limit = avail
		}
	}

	buf := make([]byte, 0, 32)
	for i := uint32(0); i < limit; i++ {
		b, err := mem.ReadU8(ptr + i)
		if err != nil {
			return "", errors.Wrap(errors.PhaseMarshal, errors.KindOutOfBounds, err,
				"string not terminated before end of memory")
		}
		if b == 0 {
			if !utf8.Valid(buf) {
				return "", errors.InvalidUTF8(errors.PhaseMarshal, buf)
			}
			return string(buf), nil
		}
		buf = append(buf, b)
	}

	return "", errors.New(errors.PhaseMarshal, errors.KindOutOfBounds).
		Detail("no terminator within %d bytes of 0x%x", limit, ptr).
		Value(ptr).
		Build()
}

// ByteMemory is an in-process Memory backed by a byte slice. Offset 0 is
// never handed out so that a zero pointer stays a nil pointer.
type ByteMemory struct {
	data []byte
	next uint32
}

// NewByteMemory creates a memory with the given initial capacity.
func NewByteMemory(capacity int) *ByteMemory {
	if capacity < 8 {
		capacity = 8
	}
	return &ByteMemory{data: make([]byte, capacity), next: 8}
}

// Alloc reserves n bytes and returns their offset. The buffer grows as needed.
func (m *ByteMemory) Alloc(n uint32) uint32 {
	ptr := (m.next + 7) &^ 7
	end := ptr + n
	if int(end) > len(m.data) {
		grown := make([]byte, max(int(end), 2*len(m.data)))
		copy(grown, m.data)
		m.data = grown
	}
	m.next = end
	return ptr
}

// PutCString copies s plus a terminating NUL into fresh memory.
func (m *ByteMemory) PutCString(s string) uint32 {
	ptr := m.Alloc(uint32(len(s)) + 1)
	copy(m.data[ptr:], s)
	m.data[ptr+uint32(len(s))] = 0
	return ptr
}

// Reset releases every allocation.
func (m *ByteMemory) Reset() {
	clear(m.data)
	m.next = 8
}

func (m *ByteMemory) Size() uint32 {
	return uint32(len(m.data))
}

func (m *ByteMemory) bounds(offset, length uint32) error {
	if uint64(offset)+uint64(length) > uint64(len(m.data)) {
		return errors.OutOfBounds(errors.PhaseMarshal, int(offset), len(m.data))
	}
	return nil
}

func (m *ByteMemory) Read(offset uint32, length uint32) ([]byte, error) {
	if err := m.bounds(offset, length); err != nil {
		return nil, err
	}
	return m.data[offset : offset+length], nil
}

func (m *ByteMemory) Write(offset uint32, data []byte) error {
	if err := m.bounds(offset, uint32(len(data))); err != nil {
		return err
	}
	copy(m.data[offset:], data)
	return nil
}

func (m *ByteMemory) ReadU8(offset uint32) (uint8, error) {
	if err := m.bounds(offset, 1); err != nil {
		return 0, err
	}
	return m.data[offset], nil
}

func (m *ByteMemory) ReadU32(offset uint32) (uint32, error) {
	if err := m.bounds(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.data[offset:]), nil
}

func (m *ByteMemory) ReadU64(offset uint32) (uint64, error) {
	if err := m.bounds(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(m.data[offset:]), nil
}

func (m *ByteMemory) WriteU32(offset uint32, value uint32) error {
	if err := m.bounds(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[offset:], value)
	return nil
}

func (m *ByteMemory) WriteU64(offset uint32, value uint64) error {
	if err := m.bounds(offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.data[offset:], value)
	return nil
}

var _ Memory = (*ByteMemory)(nil)
var _ MemorySizer = (*ByteMemory)(nil)
