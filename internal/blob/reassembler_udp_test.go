package blob

import (
	"context"
	"errors"
	"testing"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

type queueFragmentReader struct {
	fragments [][]byte
	pos       int
}

func (q *queueFragmentReader) ReadFragment(ctx context.Context) ([]byte, error) {
	f := q.fragments[q.pos]
	q.pos++
	return f, nil
}

func buildUDPFragment(blobNumber, fragmentNumber uint16, payload []byte, last bool) []byte {
	buf := make([]byte, udpHeaderSize+len(payload))
	visionary.PutU16(buf, 0, blobNumber, visionary.BigEndian)
	visionary.PutU16(buf, 2, fragmentNumber, visionary.BigEndian)
	visionary.PutU16(buf, 20, udpFragmentProtocolVersion, visionary.BigEndian)
	visionary.PutU16(buf, 22, uint16(len(payload)), visionary.BigEndian)
	var flags uint8
	if last {
		flags |= udpLastFragmentFlag
	}
	buf[24] = flags
	buf[25] = udpFragmentPacketType
	copy(buf[udpHeaderSize:], payload)
	return buf
}

// Scenario 5 (spec.md §8): three UDP fragments, blob-number 7, fragment
// numbers 0,1,2, last-fragment flag on fragment 2 — reassembler emits one
// blob whose body equals the concatenation of the three payloads.
func TestUDPReassemblyScenario5(t *testing.T) {
	p0 := []byte{0x01, 0x02, 0x03}
	p1 := []byte{0x04, 0x05}
	p2 := []byte{0x06}

	q := &queueFragmentReader{fragments: [][]byte{
		buildUDPFragment(7, 0, p0, false),
		buildUDPFragment(7, 1, p1, false),
		buildUDPFragment(7, 2, p2, true),
	}}

	r := NewUDPReassembler(q)
	got, err := r.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}

	want := append(append(append([]byte{}, p0...), p1...), p2...)
	if string(got) != string(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestUDPReassemblyDiscardsUntilFragmentZero(t *testing.T) {
	p0 := []byte{0xAA}
	q := &queueFragmentReader{fragments: [][]byte{
		buildUDPFragment(3, 2, []byte{0xFF}, false), // stray mid-blob fragment, discarded
		buildUDPFragment(9, 0, p0, true),
	}}

	r := NewUDPReassembler(q)
	got, err := r.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(got) != string(p0) {
		t.Fatalf("got %v, want %v", got, p0)
	}
}

func TestUDPReassemblyOutOfOrderAborts(t *testing.T) {
	q := &queueFragmentReader{fragments: [][]byte{
		buildUDPFragment(1, 0, []byte{0x01}, false),
		buildUDPFragment(1, 2, []byte{0x02}, true), // skipped fragment 1
	}}

	r := NewUDPReassembler(q)
	if _, err := r.Next(context.Background()); err == nil {
		t.Fatal("expected error for out-of-order fragment")
	}
}

func TestUDPReassemblyInvalidVersion(t *testing.T) {
	f := buildUDPFragment(1, 0, []byte{0x01}, true)
	visionary.PutU16(f, 20, udpFragmentProtocolVersion+1, visionary.BigEndian)

	q := &queueFragmentReader{fragments: [][]byte{f}}
	r := NewUDPReassembler(q)
	_, err := r.Next(context.Background())
	if !errors.Is(err, ErrInvalidUDPVersion) {
		t.Fatalf("Next: got %v, want ErrInvalidUDPVersion", err)
	}
}

func TestUDPReassemblyInvalidPacketType(t *testing.T) {
	f := buildUDPFragment(1, 0, []byte{0x01}, true)
	f[25] = udpFragmentPacketType + 1

	q := &queueFragmentReader{fragments: [][]byte{f}}
	r := NewUDPReassembler(q)
	_, err := r.Next(context.Background())
	if !errors.Is(err, ErrInvalidUDPPacketType) {
		t.Fatalf("Next: got %v, want ErrInvalidUDPPacketType", err)
	}
}

func TestUDPReassemblyInvalidLength(t *testing.T) {
	f := buildUDPFragment(1, 0, []byte{0x01}, true)
	visionary.PutU16(f, 22, 0xFF, visionary.BigEndian) // declares far more payload than sent

	q := &queueFragmentReader{fragments: [][]byte{f}}
	r := NewUDPReassembler(q)
	_, err := r.Next(context.Background())
	if !errors.Is(err, ErrInvalidUDPLength) {
		t.Fatalf("Next: got %v, want ErrInvalidUDPLength", err)
	}
}
