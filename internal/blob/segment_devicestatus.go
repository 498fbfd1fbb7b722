package blob

import (
	"fmt"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

// DeviceStatusCode is the segment-1 header byte (§6 "Device-status code").
type DeviceStatusCode uint8

const (
	DeviceStatusConfiguration      DeviceStatusCode = 0
	DeviceStatusWaitForInputs      DeviceStatusCode = 1
	DeviceStatusApplicationStopped DeviceStatusCode = 2
	DeviceStatusNormalOperation    DeviceStatusCode = 3
	DeviceStatusInvalid            DeviceStatusCode = 255
)

func (c DeviceStatusCode) String() string {
	switch c {
	case DeviceStatusConfiguration:
		return "configuration"
	case DeviceStatusWaitForInputs:
		return "wait-for-inputs"
	case DeviceStatusApplicationStopped:
		return "application-stopped"
	case DeviceStatusNormalOperation:
		return "normal-operation"
	case DeviceStatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// GeneralStatus is the device-status segment's general-status flag word.
// original_source declares this as a 10-named-bit-plus-6-reserved packed
// struct (16 bits total) but types the storage as a single uint8_t — an
// internal inconsistency (10+6 bits cannot fit in 8). Since the wire
// cannot actually carry 16 bits of named flags in 1 byte, this is decoded
// as the 16-bit field the bit count requires; see DESIGN.md. Individual
// flag names are not carried in the excerpted header, so bits are
// exposed positionally rather than invented.
type GeneralStatus uint16

// Bit reports whether flag bit n (0-9) is set.
func (s GeneralStatus) Bit(n int) bool {
	return s&(1<<uint(n)) != 0
}

const devicestatusVersion = 1

// DeviceStatus is the decoded payload of the device-status segment.
type DeviceStatus struct {
	GeneralStatus        GeneralStatus
	COPSafetyRelated     uint32
	COPNonSafetyRelated  uint32
	COPResetRequired     uint32
	ActiveMonitoringCase [4]uint8
	ContaminationLevel   uint8
}

func decodeDeviceStatus(version uint16, payload []byte) (DeviceStatus, ErrorKind, error) {
	if version != devicestatusVersion {
		return DeviceStatus{}, ErrorKindUnsupportedVersion, fmt.Errorf("blob: device-status version %d != %d", version, devicestatusVersion)
	}
	const want = 2 + 4 + 4 + 4 + 4 + 1
	if len(payload) != want {
		return DeviceStatus{}, ErrorKindLengthMismatch, fmt.Errorf("blob: device-status payload length %d != expected %d", len(payload), want)
	}

	var d DeviceStatus
	d.GeneralStatus = GeneralStatus(visionary.ReadU16(payload, 0, visionary.LittleEndian))
	d.COPSafetyRelated = visionary.ReadU32(payload, 2, visionary.LittleEndian)
	d.COPNonSafetyRelated = visionary.ReadU32(payload, 6, visionary.LittleEndian)
	d.COPResetRequired = visionary.ReadU32(payload, 10, visionary.LittleEndian)
	copy(d.ActiveMonitoringCase[:], payload[14:18])
	d.ContaminationLevel = visionary.ReadU8(payload, 18)

	return d, ErrorKindNone, nil
}
