package blob

import "fmt"

// Decoder turns a reassembled blob buffer into a Frame. It retains the
// XML metadata cache across blobs so an unchanged XML segment need not
// be reparsed, per §4.10's change-counter idempotence rule.
type Decoder struct {
	xml xmlCache
}

// NewDecoder returns a Decoder with an empty XML cache.
func NewDecoder() *Decoder { return &Decoder{} }

// Decode parses a complete blob buffer (as produced by either the UDP or
// TCP reassembler) into a Frame. A per-segment decode failure aborts
// decoding of this blob only and is reported on the returned error and
// on Frame.LastError; the XML cache and decoder state survive for the
// next blob, per §7's propagation rule.
func (d *Decoder) Decode(buf []byte) (*Frame, error) {
	header, err := ParseHeader(buf)
	if err != nil {
		return nil, fmt.Errorf("blob: header: %w", err)
	}
	if header.SegmentCount < 1 {
		return nil, fmt.Errorf("blob: segment_count %d < 1", header.SegmentCount)
	}

	xmlSeg, err := header.Segment(buf, 0)
	if err != nil {
		return nil, fmt.Errorf("blob: xml segment bounds: %w", err)
	}
	meta, kind, err := d.xml.decode(xmlSeg, header.ChangeCounters[0])
	if err != nil {
		return &Frame{LastError: kind}, fmt.Errorf("blob: xml segment: %w", err)
	}

	frame := newFrame()
	frame.Active = meta.Active
	frame.Camera = meta.Camera
	frame.FrameNumber = header.ChangeCounters[len(header.ChangeCounters)-1]

	segIdx := 1

	decodeNext := func(name string) ([]byte, envelope, error) {
		raw, err := header.Segment(buf, segIdx)
		if err != nil {
			return nil, envelope{}, fmt.Errorf("blob: %s segment bounds: %w", name, err)
		}
		env, kind, err := decodeEnvelope(raw)
		if err != nil {
			frame.LastError = kind
			return nil, envelope{}, fmt.Errorf("blob: %s envelope: %w", name, err)
		}
		frame.SegmentTimestamp[name] = DecodeTimestamp(env.Timestamp)
		segIdx++
		return env.Payload, env, nil
	}

	if meta.Active.DepthMap {
		payload, env, err := decodeNext("depth-map")
		if err != nil {
			return frame, err
		}
		dm, kind, err := decodeDepthMap(env.Version, payload, meta.Camera.Width, meta.Camera.Height)
		if err != nil {
			frame.LastError = kind
			return frame, fmt.Errorf("blob: depth-map: %w", err)
		}
		frame.DepthMap = dm
		frame.FrameNumber = dm.FrameNumber
		frame.BlobTimestamp = frame.SegmentTimestamp["depth-map"]
	}

	if meta.Active.DeviceStatus {
		payload, env, err := decodeNext("device-status")
		if err != nil {
			return frame, err
		}
		ds, kind, err := decodeDeviceStatus(env.Version, payload)
		if err != nil {
			frame.LastError = kind
			return frame, fmt.Errorf("blob: device-status: %w", err)
		}
		frame.DeviceStatus = ds
	}

	if meta.Active.ROI {
		payload, env, err := decodeNext("roi")
		if err != nil {
			return frame, err
		}
		rois, kind, err := decodeROI(env.Version, payload)
		if err != nil {
			frame.LastError = kind
			return frame, fmt.Errorf("blob: roi: %w", err)
		}
		frame.ROIs = rois
	}

	if meta.Active.LocalIOs {
		payload, env, err := decodeNext("local-ios")
		if err != nil {
			return frame, err
		}
		lio, kind, err := decodeLocalIOs(env.Version, payload)
		if err != nil {
			frame.LastError = kind
			return frame, fmt.Errorf("blob: local-ios: %w", err)
		}
		frame.LocalIOs = lio
	}

	if meta.Active.FieldInfo {
		payload, env, err := decodeNext("field-info")
		if err != nil {
			return frame, err
		}
		fi, kind, err := decodeFieldInfo(env.Version, payload)
		if err != nil {
			frame.LastError = kind
			return frame, fmt.Errorf("blob: field-info: %w", err)
		}
		frame.FieldInfo = fi
	}

	if meta.Active.LogicSignals {
		payload, env, err := decodeNext("logic-signals")
		if err != nil {
			return frame, err
		}
		ls, kind, err := decodeLogicSignals(env.Version, payload)
		if err != nil {
			frame.LastError = kind
			return frame, fmt.Errorf("blob: logic-signals: %w", err)
		}
		frame.LogicSignals = ls
	}

	if meta.Active.IMU {
		payload, env, err := decodeNext("imu")
		if err != nil {
			return frame, err
		}
		imu, kind, err := decodeIMU(env.Version, payload)
		if err != nil {
			frame.LastError = kind
			return frame, fmt.Errorf("blob: imu: %w", err)
		}
		frame.IMU = imu
	}

	return frame, nil
}
