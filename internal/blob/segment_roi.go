package blob

import (
	"fmt"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

const (
	roiVersion    = 1
	maxROIValues  = 5
	roiElementLen = 1 + 1 + 2 + 2
)

// ROIQualityClass is the 2-bit quality-class field of an ROI's safety data.
type ROIQualityClass uint8

const (
	ROIQualityInvalid  ROIQualityClass = 0
	ROIQualityHigh     ROIQualityClass = 1
	ROIQualityModerate ROIQualityClass = 2
	ROIQualityLow      ROIQualityClass = 3
)

// ROIResult is the packed result byte of an ROI element: 5 named result
// bits plus 3 reserved bits. The individual bit meanings are not carried
// in the excerpted header, so they are exposed positionally.
type ROIResult uint8

// Bit reports whether result bit n (0-4) is set.
func (r ROIResult) Bit(n int) bool { return r&(1<<uint(n)) != 0 }

// ROISafetyData is the packed 16-bit safety-data field of an ROI element:
// 7 "invalid due to" bits, a contamination-error bit, a 2-bit quality
// class, a slot-active bit, and 5 reserved bits.
type ROISafetyData uint16

// InvalidDueTo reports whether invalidity-cause bit n (0-6) is set.
func (s ROISafetyData) InvalidDueTo(n int) bool { return s&(1<<uint(n)) != 0 }

func (s ROISafetyData) ContaminationError() bool { return s&(1<<7) != 0 }
func (s ROISafetyData) QualityClass() ROIQualityClass {
	return ROIQualityClass((s >> 8) & 0x3)
}
func (s ROISafetyData) SlotActive() bool { return s&(1<<10) != 0 }

// ROI is one decoded region-of-interest element.
type ROI struct {
	ID            uint8
	Result        ROIResult
	SafetyData    ROISafetyData
	DistanceValue uint16
}

func decodeROI(version uint16, payload []byte) ([maxROIValues]ROI, ErrorKind, error) {
	var out [maxROIValues]ROI
	if version != roiVersion {
		return out, ErrorKindUnsupportedVersion, fmt.Errorf("blob: roi version %d != %d", version, roiVersion)
	}
	want := maxROIValues * roiElementLen
	if len(payload) != want {
		return out, ErrorKindLengthMismatch, fmt.Errorf("blob: roi payload length %d != expected %d", len(payload), want)
	}

	off := 0
	for i := 0; i < maxROIValues; i++ {
		out[i] = ROI{
			ID:            visionary.ReadU8(payload, off),
			Result:        ROIResult(visionary.ReadU8(payload, off+1)),
			SafetyData:    ROISafetyData(visionary.ReadU16(payload, off+2, visionary.LittleEndian)),
			DistanceValue: visionary.ReadU16(payload, off+4, visionary.LittleEndian),
		}
		off += roiElementLen
	}

	return out, ErrorKindNone, nil
}
