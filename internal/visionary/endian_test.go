package visionary

import (
	"math"
	"testing"
)

func TestEndianRoundTrip(t *testing.T) {
	for _, order := range []ByteOrder{LittleEndian, BigEndian} {
		buf := make([]byte, 8)

		PutU16(buf, 0, 0xBEEF, order)
		if got := ReadU16(buf, 0, order); got != 0xBEEF {
			t.Errorf("u16 round trip: got %#x", got)
		}

		PutI32(buf, 0, -12345, order)
		if got := ReadI32(buf, 0, order); got != -12345 {
			t.Errorf("i32 round trip: got %d", got)
		}

		PutU64(buf, 0, 0x0123456789ABCDEF, order)
		if got := ReadU64(buf, 0, order); got != 0x0123456789ABCDEF {
			t.Errorf("u64 round trip: got %#x", got)
		}
	}
}

func TestFloatSwapIsBitReinterpret(t *testing.T) {
	v := float32(-3.25)
	buf := make([]byte, 4)
	PutF32(buf, 0, v, BigEndian)
	got := ReadF32(buf, 0, BigEndian)
	if math.Float32bits(got) != math.Float32bits(v) {
		t.Fatalf("float32 bit pattern changed: got %#x, want %#x", math.Float32bits(got), math.Float32bits(v))
	}

	lv := float64(1.0 / 3.0)
	lbuf := make([]byte, 8)
	PutF64(lbuf, 0, lv, LittleEndian)
	lgot := ReadF64(lbuf, 0, LittleEndian)
	if math.Float64bits(lgot) != math.Float64bits(lv) {
		t.Fatalf("float64 bit pattern changed")
	}
}

func TestAppendHelpers(t *testing.T) {
	buf := AppendU16(nil, 0x1234, BigEndian)
	buf = AppendU32(buf, 0x89ABCDEF, BigEndian)
	want := []byte{0x12, 0x34, 0x89, 0xAB, 0xCD, 0xEF}
	if len(buf) != len(want) {
		t.Fatalf("length mismatch: got %d want %d", len(buf), len(want))
	}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d: got %#x want %#x", i, buf[i], want[i])
		}
	}
}
