package blob

import (
	"fmt"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

const depthMapVersion = 2

// Depth-map flags bits (§6 "Pixel state flags").
const (
	DepthMapFlagFiltered      = 1 << 0
	DepthMapFlagIntrusionData = 1 << 1
	DepthMapFlagThrottled     = 1 << 2
)

// DepthMap is the decoded payload of the depth-map segment (§4.10).
// Distance values are in units of 0.25mm.
type DepthMap struct {
	FrameNumber  uint32
	DeviceStatus DeviceStatusCode
	Flags        uint16
	Distance     []uint16
	Intensity    []uint16
	State        []uint8
}

// decodeDepthMap decodes the depth-map segment payload (already stripped
// of the generic envelope) for a frame of the given width and height.
func decodeDepthMap(version uint16, payload []byte, width, height int) (DepthMap, ErrorKind, error) {
	if version != depthMapVersion {
		return DepthMap{}, ErrorKindUnsupportedVersion, fmt.Errorf("blob: depth-map version %d != %d", version, depthMapVersion)
	}

	count := width * height
	want := 4 + 1 + 2 + count*2 + count*2 + count
	if len(payload) != want {
		return DepthMap{}, ErrorKindLengthMismatch, fmt.Errorf("blob: depth-map payload length %d != expected %d", len(payload), want)
	}

	frameNumber := visionary.ReadU32(payload, 0, visionary.LittleEndian)
	deviceStatus := DeviceStatusCode(visionary.ReadU8(payload, 4))
	flags := visionary.ReadU16(payload, 5, visionary.LittleEndian)

	off := 7
	distance := make([]uint16, count)
	for i := 0; i < count; i++ {
		distance[i] = visionary.ReadU16(payload, off, visionary.LittleEndian)
		off += 2
	}
	intensity := make([]uint16, count)
	for i := 0; i < count; i++ {
		intensity[i] = visionary.ReadU16(payload, off, visionary.LittleEndian)
		off += 2
	}
	state := make([]uint8, count)
	for i := 0; i < count; i++ {
		state[i] = visionary.ReadU8(payload, off)
		off++
	}

	return DepthMap{
		FrameNumber:  frameNumber,
		DeviceStatus: deviceStatus,
		Flags:        flags,
		Distance:     distance,
		Intensity:    intensity,
		State:        state,
	}, ErrorKindNone, nil
}
