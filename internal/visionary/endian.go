package visionary

import (
	"encoding/binary"
	"math"
)

// ByteOrder selects big- or little-endian decoding for a primitive read
// or write. The command protocol itself is little-endian for the
// SafeVisionary2 family (ColaByteOrder below); blob/segment framing
// headers are always big-endian regardless of device family.
type ByteOrder int

const (
	// LittleEndian selects least-significant-byte-first encoding.
	LittleEndian ByteOrder = iota
	// BigEndian selects most-significant-byte-first encoding.
	BigEndian
)

// ColaByteOrder is the command-protocol byte order for this device
// family. SafeVisionary2 uses little-endian; other Visionary families
// (S, T, T-Mini) use big-endian, but those are out of scope here.
const ColaByteOrder = LittleEndian

func (o ByteOrder) binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// ReadU8 reads a single byte at off. Byte order is irrelevant for width 1.
func ReadU8(buf []byte, off int) uint8 { return buf[off] }

// ReadI8 reads a signed byte at off.
func ReadI8(buf []byte, off int) int8 { return int8(buf[off]) }

// ReadU16 reads an unaligned uint16 at off in the given byte order.
func ReadU16(buf []byte, off int, order ByteOrder) uint16 {
	return order.binary().Uint16(buf[off:])
}

// ReadI16 reads an unaligned int16 at off in the given byte order.
func ReadI16(buf []byte, off int, order ByteOrder) int16 {
	return int16(ReadU16(buf, off, order))
}

// ReadU32 reads an unaligned uint32 at off in the given byte order.
func ReadU32(buf []byte, off int, order ByteOrder) uint32 {
	return order.binary().Uint32(buf[off:])
}

// ReadI32 reads an unaligned int32 at off in the given byte order.
func ReadI32(buf []byte, off int, order ByteOrder) int32 {
	return int32(ReadU32(buf, off, order))
}

// ReadU64 reads an unaligned uint64 at off in the given byte order.
func ReadU64(buf []byte, off int, order ByteOrder) uint64 {
	return order.binary().Uint64(buf[off:])
}

// ReadI64 reads an unaligned int64 at off in the given byte order.
func ReadI64(buf []byte, off int, order ByteOrder) int64 {
	return int64(ReadU64(buf, off, order))
}

// ReadF32 reads an unaligned IEEE-754 binary32 at off. The swap (if any)
// is a bit-reinterpret of the raw 32-bit word, never a numeric conversion.
func ReadF32(buf []byte, off int, order ByteOrder) float32 {
	return math.Float32frombits(ReadU32(buf, off, order))
}

// ReadF64 reads an unaligned IEEE-754 binary64 at off.
func ReadF64(buf []byte, off int, order ByteOrder) float64 {
	return math.Float64frombits(ReadU64(buf, off, order))
}

// PutU8 writes a single byte at off.
func PutU8(buf []byte, off int, v uint8) { buf[off] = v }

// PutI8 writes a signed byte at off.
func PutI8(buf []byte, off int, v int8) { buf[off] = byte(v) }

// PutU16 writes an unaligned uint16 at off in the given byte order.
func PutU16(buf []byte, off int, v uint16, order ByteOrder) {
	order.binary().PutUint16(buf[off:], v)
}

// PutI16 writes an unaligned int16 at off in the given byte order.
func PutI16(buf []byte, off int, v int16, order ByteOrder) {
	PutU16(buf, off, uint16(v), order)
}

// PutU32 writes an unaligned uint32 at off in the given byte order.
func PutU32(buf []byte, off int, v uint32, order ByteOrder) {
	order.binary().PutUint32(buf[off:], v)
}

// PutI32 writes an unaligned int32 at off in the given byte order.
func PutI32(buf []byte, off int, v int32, order ByteOrder) {
	PutU32(buf, off, uint32(v), order)
}

// PutU64 writes an unaligned uint64 at off in the given byte order.
func PutU64(buf []byte, off int, v uint64, order ByteOrder) {
	order.binary().PutUint64(buf[off:], v)
}

// PutI64 writes an unaligned int64 at off in the given byte order.
func PutI64(buf []byte, off int, v int64, order ByteOrder) {
	PutU64(buf, off, uint64(v), order)
}

// PutF32 writes an unaligned IEEE-754 binary32 at off, bit-reinterpreted
// rather than numerically converted.
func PutF32(buf []byte, off int, v float32, order ByteOrder) {
	PutU32(buf, off, math.Float32bits(v), order)
}

// PutF64 writes an unaligned IEEE-754 binary64 at off.
func PutF64(buf []byte, off int, v float64, order ByteOrder) {
	PutU64(buf, off, math.Float64bits(v), order)
}

// AppendU16 appends v in the given byte order and returns the extended slice.
func AppendU16(buf []byte, v uint16, order ByteOrder) []byte {
	var tmp [2]byte
	PutU16(tmp[:], 0, v, order)
	return append(buf, tmp[:]...)
}

// AppendU32 appends v in the given byte order and returns the extended slice.
func AppendU32(buf []byte, v uint32, order ByteOrder) []byte {
	var tmp [4]byte
	PutU32(tmp[:], 0, v, order)
	return append(buf, tmp[:]...)
}
