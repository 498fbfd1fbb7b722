package blob

import (
	"testing"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

// buildBlobBuffer constructs a full blob buffer (11-byte stream header +
// blob ID + segment count + offset table + segment payloads), matching
// the shape both the UDP and TCP reassemblers produce.
func buildBlobBuffer(segments [][]byte) []byte {
	tableLen := 8 * len(segments)
	bodyLen := 2 + 2 + tableLen
	for _, s := range segments {
		bodyLen += len(s)
	}
	length := uint32(bodyLen + 3) // undo the -3 fudge for the declared length field

	buf := make([]byte, tcpStreamHeaderSize+bodyLen)
	visionary.PutU32(buf, 0, blobMagic, visionary.BigEndian)
	visionary.PutU32(buf, 4, length, visionary.BigEndian)
	visionary.PutU16(buf, 8, blobVersion, visionary.BigEndian)
	buf[10] = blobPacketType

	visionary.PutU16(buf, blobHeaderSize, blobID, visionary.BigEndian)
	visionary.PutU16(buf, blobHeaderSize+2, uint16(len(segments)), visionary.BigEndian)

	offset := uint32(2 + 2 + tableLen)
	pos := blobHeaderSize + 4
	for i, s := range segments {
		visionary.PutU32(buf, pos, offset, visionary.BigEndian)
		visionary.PutU32(buf, pos+4, uint32(i), visionary.BigEndian)
		pos += 8
		copy(buf[segmentBase+int(offset):], s)
		offset += uint32(len(s))
	}

	return buf
}

func TestParseHeaderAndSegmentBounds(t *testing.T) {
	seg0 := []byte{0x01, 0x02, 0x03}
	seg1 := []byte{0x0A, 0x0B}
	buf := buildBlobBuffer([][]byte{seg0, seg1})

	h, err := ParseHeader(buf)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.SegmentCount != 2 {
		t.Fatalf("SegmentCount = %d, want 2", h.SegmentCount)
	}

	got0, err := h.Segment(buf, 0)
	if err != nil {
		t.Fatalf("Segment(0): %v", err)
	}
	if string(got0) != string(seg0) {
		t.Fatalf("segment 0 = %v, want %v", got0, seg0)
	}

	got1, err := h.Segment(buf, 1)
	if err != nil {
		t.Fatalf("Segment(1): %v", err)
	}
	if string(got1) != string(seg1) {
		t.Fatalf("segment 1 = %v, want %v", got1, seg1)
	}
}

func TestParseHeaderRejectsBadMagic(t *testing.T) {
	buf := buildBlobBuffer([][]byte{{0x01}})
	buf[0] = 0x00
	if _, err := ParseHeader(buf); err == nil {
		t.Fatal("expected error for bad magic")
	}
}
