package blob

import (
	"testing"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

const testXML = `<SickRecord>
  <DataSets>
    <DataSetDepthMap/>
  </DataSets>
  <DataSetDepthMap>
    <FormatDescriptionDepthMap>
      <DataStream>
        <Width>1</Width>
        <Height>1</Height>
        <Distance>uint16</Distance>
        <Intensity>uint16</Intensity>
        <Confidence>uint8</Confidence>
      </DataStream>
    </FormatDescriptionDepthMap>
  </DataSetDepthMap>
</SickRecord>`

func buildDepthMapEnvelope(t *testing.T, frameNumber uint32, distance, intensity uint16, state uint8) []byte {
	t.Helper()
	payload := make([]byte, 4+1+2+2+2+1)
	visionary.PutU32(payload, 0, frameNumber, visionary.LittleEndian)
	payload[4] = uint8(DeviceStatusNormalOperation)
	visionary.PutU16(payload, 5, 0, visionary.LittleEndian)
	visionary.PutU16(payload, 7, distance, visionary.LittleEndian)
	visionary.PutU16(payload, 9, intensity, visionary.LittleEndian)
	payload[11] = state

	length := uint32(envelopeFixedOverhead + len(payload))
	buf := make([]byte, length)
	visionary.PutU32(buf, 0, length, visionary.LittleEndian)
	visionary.PutU64(buf, 4, 0x0102030405060708, visionary.LittleEndian)
	visionary.PutU16(buf, 12, depthMapVersion, visionary.LittleEndian)
	copy(buf[14:], payload)
	sum := visionary.CRC32Block(buf[4:14+len(payload)], visionary.DefaultCRCInit)
	visionary.PutU32(buf, 14+len(payload), ^sum, visionary.LittleEndian)
	visionary.PutU32(buf, 14+len(payload)+4, length, visionary.LittleEndian)
	return buf
}

func TestDecoderFullPipelineDepthMap(t *testing.T) {
	depthMapSeg := buildDepthMapEnvelope(t, 42, 100, 200, 3)
	blobBuf := buildBlobBuffer([][]byte{[]byte(testXML), depthMapSeg})

	d := NewDecoder()
	frame, err := d.Decode(blobBuf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !frame.Active.DepthMap {
		t.Fatal("expected DepthMap dataset active")
	}
	if frame.Camera.Width != 1 || frame.Camera.Height != 1 {
		t.Fatalf("camera dims = %dx%d, want 1x1", frame.Camera.Width, frame.Camera.Height)
	}
	if frame.Camera.DistanceByteWidth != 2 || frame.Camera.IntensityByteWidth != 2 || frame.Camera.ConfidenceByteWidth != 1 {
		t.Fatalf("byte widths = %+v", frame.Camera)
	}
	if frame.Camera.Cam2World != identityCam2World() {
		t.Fatalf("cam2world = %v, want identity", frame.Camera.Cam2World)
	}
	if frame.DepthMap.FrameNumber != 42 {
		t.Fatalf("frame number = %d, want 42", frame.DepthMap.FrameNumber)
	}
	if len(frame.DepthMap.Distance) != 1 || frame.DepthMap.Distance[0] != 100 {
		t.Fatalf("distance = %v", frame.DepthMap.Distance)
	}
	if len(frame.DepthMap.Intensity) != 1 || frame.DepthMap.Intensity[0] != 200 {
		t.Fatalf("intensity = %v", frame.DepthMap.Intensity)
	}
	if len(frame.DepthMap.State) != 1 || frame.DepthMap.State[0] != 3 {
		t.Fatalf("state = %v", frame.DepthMap.State)
	}
}

// Re-decoding XML with an unchanged change counter should be idempotent
// and must not require the depth-map geometry to be re-derivable from a
// second parse — §4.10's change-counter cache.
func TestDecoderXMLCacheIdempotent(t *testing.T) {
	c := &xmlCache{}
	meta1, kind, err := c.decode([]byte(testXML), 7)
	if err != nil {
		t.Fatalf("decode: %v (kind=%s)", err, kind)
	}

	meta2, kind, err := c.decode([]byte("not even xml"), 7)
	if err != nil {
		t.Fatalf("cached decode: %v (kind=%s)", err, kind)
	}
	if meta2.Camera.Width != meta1.Camera.Width {
		t.Fatalf("cached decode returned different metadata: %+v vs %+v", meta2, meta1)
	}
}
