package blob

import (
	"errors"
	"fmt"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

// Blob header validation errors (§7 "Blob header").
var (
	ErrInvalidBlobStartBytes = errors.New("blob: invalid start bytes")
	ErrInvalidBlobVersion    = errors.New("blob: invalid protocol version")
	ErrInvalidBlobPacketType = errors.New("blob: invalid packet type")
	ErrInvalidBlobID         = errors.New("blob: invalid blob id")
)

const (
	blobMagic       = 0x02020202
	blobVersion     = 1
	blobPacketType  = 0x62
	blobID          = 1
	blobHeaderSize  = 11 // magic(4) + length(4) + version(2) + packetType(1)
	blobIDFieldSize = 2
	blobCountField  = 2

	// blobLengthFudge reproduces the original source's unexplained "-3"
	// correction applied to the declared blob length when deriving the
	// sentinel used to compute the last segment's length. See DESIGN.md
	// and spec.md's Open Question #2: preserved exactly, not "fixed".
	blobLengthFudge = -3
)

// Header is the parsed fixed portion of a blob: its declared length, the
// per-segment offset/change-counter table, and a trailing sentinel offset
// appended so that segment length = offsets[i+1] - offsets[i] holds for
// every segment including the last.
type Header struct {
	Length         uint32
	SegmentCount   uint16
	Offsets        []uint32 // len == SegmentCount+1, sentinel appended
	ChangeCounters []uint32 // len == SegmentCount
}

// ParseHeader validates and parses the fixed header of buf, which must be
// a complete blob buffer starting with the four magic bytes (as produced
// by either the UDP or the TCP reassembler — both populate the same
// buffer shape).
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < blobHeaderSize+blobIDFieldSize+blobCountField {
		return Header{}, fmt.Errorf("%w: buffer too short for header", ErrInvalidBlobStartBytes)
	}

	magic := visionary.ReadU32(buf, 0, visionary.BigEndian)
	if magic != blobMagic {
		return Header{}, fmt.Errorf("%w: got %#08x", ErrInvalidBlobStartBytes, magic)
	}

	length := visionary.ReadU32(buf, 4, visionary.BigEndian)

	version := visionary.ReadU16(buf, 8, visionary.BigEndian)
	if version != blobVersion {
		return Header{}, fmt.Errorf("%w: got %d", ErrInvalidBlobVersion, version)
	}

	packetType := visionary.ReadU8(buf, 10)
	if packetType != blobPacketType {
		return Header{}, fmt.Errorf("%w: got %#02x", ErrInvalidBlobPacketType, packetType)
	}

	id := visionary.ReadU16(buf, blobHeaderSize, visionary.BigEndian)
	if id != blobID {
		return Header{}, fmt.Errorf("%w: got %d", ErrInvalidBlobID, id)
	}

	segmentCount := visionary.ReadU16(buf, blobHeaderSize+blobIDFieldSize, visionary.BigEndian)

	tableStart := blobHeaderSize + blobIDFieldSize + blobCountField
	offsets := make([]uint32, 0, int(segmentCount)+1)
	changeCounters := make([]uint32, 0, segmentCount)
	pos := tableStart
	for i := uint16(0); i < segmentCount; i++ {
		if pos+8 > len(buf) {
			return Header{}, fmt.Errorf("%w: offset table truncated", ErrInvalidBlobStartBytes)
		}
		offsets = append(offsets, visionary.ReadU32(buf, pos, visionary.BigEndian))
		changeCounters = append(changeCounters, visionary.ReadU32(buf, pos+4, visionary.BigEndian))
		pos += 8
	}
	offsets = append(offsets, uint32(int64(length)+blobLengthFudge))

	return Header{
		Length:         length,
		SegmentCount:   segmentCount,
		Offsets:        offsets,
		ChangeCounters: changeCounters,
	}, nil
}

// segmentBase is the position within a blob buffer that every recorded
// offset is relative to: the start of the blob ID field. Preserved to
// match original_source's derivation exactly rather than the "immediately
// after the blob ID" phrasing — see DESIGN.md.
const segmentBase = blobHeaderSize

// Segment returns the raw bytes of segment i (0-indexed), using the
// header's offset table to locate it within buf.
func (h Header) Segment(buf []byte, i int) ([]byte, error) {
	if i < 0 || i+1 >= len(h.Offsets) {
		return nil, fmt.Errorf("segment index %d out of range", i)
	}
	start := segmentBase + int(h.Offsets[i])
	end := segmentBase + int(h.Offsets[i+1])
	if start < 0 || end > len(buf) || start > end {
		return nil, fmt.Errorf("segment %d bounds [%d:%d] out of range for %d-byte buffer", i, start, end, len(buf))
	}
	return buf[start:end], nil
}
