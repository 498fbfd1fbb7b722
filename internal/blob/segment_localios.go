package blob

import (
	"fmt"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

const localIOsVersion = 1

// UniversalIOBits is the 16-bit packed layout shared by the universal-IO
// configured/direction/input-values fields: 4 named pin bits plus 12
// reserved bits.
type UniversalIOBits uint16

// Pin reports whether universal-IO pin n (0-3) is set.
func (b UniversalIOBits) Pin(n int) bool { return b&(1<<uint(n)) != 0 }

// OSSDsState is the packed OSSD-state byte: 4 named state bits plus 4
// reserved bits.
type OSSDsState uint8

func (s OSSDsState) Bit(n int) bool { return s&(1<<uint(n)) != 0 }

// LocalIOs is the decoded payload of the local-IOs segment.
type LocalIOs struct {
	Configured        UniversalIOBits
	Direction         UniversalIOBits
	InputValues       UniversalIOBits
	OutputValues      [4]uint8
	OSSDsState        OSSDsState
	OSSDsDynCount     uint8
	OSSDsCRC          uint8
	OSSDsIOStatus     uint8
	DynamicSpeedA     uint16
	DynamicSpeedB     uint16
	DynamicValidFlags uint16
	Flags             uint16
}

func decodeLocalIOs(version uint16, payload []byte) (LocalIOs, ErrorKind, error) {
	if version != localIOsVersion {
		return LocalIOs{}, ErrorKindUnsupportedVersion, fmt.Errorf("blob: local-ios version %d != %d", version, localIOsVersion)
	}
	const want = 2 + 2 + 2 + 16 + 1 + 1 + 1 + 1 + 2 + 2 + 2 + 2
	if len(payload) != want {
		return LocalIOs{}, ErrorKindLengthMismatch, fmt.Errorf("blob: local-ios payload length %d != expected %d", len(payload), want)
	}

	var l LocalIOs
	l.Configured = UniversalIOBits(visionary.ReadU16(payload, 0, visionary.LittleEndian))
	l.Direction = UniversalIOBits(visionary.ReadU16(payload, 2, visionary.LittleEndian))
	l.InputValues = UniversalIOBits(visionary.ReadU16(payload, 4, visionary.LittleEndian))
	copy(l.OutputValues[:], payload[6:10])
	// 12 reserved bytes follow the 4 output values within the packed
	// OUTPUTVALUES struct.
	off := 6 + 16
	l.OSSDsState = OSSDsState(visionary.ReadU8(payload, off))
	off++
	l.OSSDsDynCount = visionary.ReadU8(payload, off)
	off++
	l.OSSDsCRC = visionary.ReadU8(payload, off)
	off++
	l.OSSDsIOStatus = visionary.ReadU8(payload, off)
	off++
	l.DynamicSpeedA = visionary.ReadU16(payload, off, visionary.LittleEndian)
	off += 2
	l.DynamicSpeedB = visionary.ReadU16(payload, off, visionary.LittleEndian)
	off += 2
	l.DynamicValidFlags = visionary.ReadU16(payload, off, visionary.LittleEndian)
	off += 2
	l.Flags = visionary.ReadU16(payload, off, visionary.LittleEndian)

	return l, ErrorKindNone, nil
}
