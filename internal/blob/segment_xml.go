package blob

import (
	"encoding/xml"
	"fmt"
)

// byteWidth maps the XML datatype-name strings (§4.10 "XML segment") to a
// pixel byte width. Unrecognized names, matching original_source's
// getItemLength, fall back to the empty-string case: 0.
func byteWidth(name string) int {
	switch name {
	case "uint8":
		return 1
	case "uint16":
		return 2
	case "uint32":
		return 4
	case "uint64":
		return 8
	default:
		return 0
	}
}

// ActiveDataSets records which optional segments the XML declared present,
// detected by the presence of each DataSetXxx child of DataSets.
type ActiveDataSets struct {
	DepthMap     bool
	DeviceStatus bool
	ROI          bool
	LocalIOs     bool
	FieldInfo    bool
	LogicSignals bool
	IMU          bool
}

// CameraParams holds the decoded camera calibration and image geometry.
type CameraParams struct {
	Width, Height   int
	Cam2World       [16]float64
	FX, FY          float64
	CX, CY          float64
	K1, K2, K3      float64
	P1, P2          float64
	FocalToRayCross float64

	DistanceByteWidth   int
	IntensityByteWidth  int
	ConfidenceByteWidth int
}

func identityCam2World() [16]float64 {
	var m [16]float64
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

// xmlSickRecord mirrors the small slice of the device's XML schema this
// decoder consumes: SickRecord/DataSets (presence-only children) and
// SickRecord/DataSetDepthMap/FormatDescriptionDepthMap/DataStream (camera
// geometry, calibration and pixel byte widths). Grounded on
// SafeVisionaryData.cpp::parseXML.
type xmlSickRecord struct {
	XMLName  xml.Name `xml:"SickRecord"`
	DataSets struct {
		DepthMap     *struct{} `xml:"DataSetDepthMap"`
		DeviceStatus *struct{} `xml:"DataSetDeviceStatus"`
		ROI          *struct{} `xml:"DataSetROI"`
		LocalIOs     *struct{} `xml:"DataSetLocalIOs"`
		FieldInfo    *struct{} `xml:"DataSetFieldInformation"`
		LogicSignals *struct{} `xml:"DataSetLogicalSignals"`
		IMU          *struct{} `xml:"DataSetIMU"`
	} `xml:"DataSets"`
	DataSetDepthMap struct {
		FormatDescriptionDepthMap struct {
			DataStream struct {
				Width                  *int `xml:"Width"`
				Height                 *int `xml:"Height"`
				CameraToWorldTransform *struct {
					Entries []float64 `xml:",any"`
				} `xml:"CameraToWorldTransform"`
				CameraMatrix *struct {
					FX *float64 `xml:"FX"`
					FY *float64 `xml:"FY"`
					CX *float64 `xml:"CX"`
					CY *float64 `xml:"CY"`
				} `xml:"CameraMatrix"`
				CameraDistortionParams *struct {
					K1 *float64 `xml:"K1"`
					K2 *float64 `xml:"K2"`
					P1 *float64 `xml:"P1"`
					P2 *float64 `xml:"P2"`
					K3 *float64 `xml:"K3"`
				} `xml:"CameraDistortionParams"`
				FocalToRayCross *float64 `xml:"FocalToRayCross"`
				Distance        string   `xml:"Distance"`
				Intensity       string   `xml:"Intensity"`
				Confidence      string   `xml:"Confidence"`
			} `xml:"DataStream"`
		} `xml:"FormatDescriptionDepthMap"`
	} `xml:"DataSetDepthMap"`
}

// XMLMetadata is the fully decoded segment-0 payload.
type XMLMetadata struct {
	Active        ActiveDataSets
	Camera        CameraParams
	ChangeCounter uint32
}

// xmlCache holds the last successfully parsed XML metadata, keyed by the
// blob's change counter, so an unchanged XML segment need not be
// reparsed (§4.10: "if the blob's change counter matches the cached one,
// skip reparsing and return success").
type xmlCache struct {
	haveChangeCounter bool
	changeCounter     uint32
	metadata          XMLMetadata
}

func (c *xmlCache) decode(payload []byte, changeCounter uint32) (XMLMetadata, ErrorKind, error) {
	if c.haveChangeCounter && c.changeCounter == changeCounter {
		return c.metadata, ErrorKindNone, nil
	}

	var rec xmlSickRecord
	if err := xml.Unmarshal(payload, &rec); err != nil {
		return XMLMetadata{}, ErrorKindXMLParseError, fmt.Errorf("blob: xml segment parse: %w", err)
	}

	meta := XMLMetadata{
		Active: ActiveDataSets{
			DepthMap:     rec.DataSets.DepthMap != nil,
			DeviceStatus: rec.DataSets.DeviceStatus != nil,
			ROI:          rec.DataSets.ROI != nil,
			LocalIOs:     rec.DataSets.LocalIOs != nil,
			FieldInfo:    rec.DataSets.FieldInfo != nil,
			LogicSignals: rec.DataSets.LogicSignals != nil,
			IMU:          rec.DataSets.IMU != nil,
		},
		ChangeCounter: changeCounter,
	}

	ds := rec.DataSetDepthMap.FormatDescriptionDepthMap.DataStream
	cam := CameraParams{Cam2World: identityCam2World()}

	if ds.Width != nil {
		cam.Width = *ds.Width
	}
	if ds.Height != nil {
		cam.Height = *ds.Height
	}
	if meta.Active.DepthMap && ds.CameraToWorldTransform != nil && len(ds.CameraToWorldTransform.Entries) == 16 {
		copy(cam.Cam2World[:], ds.CameraToWorldTransform.Entries)
	}
	if ds.CameraMatrix != nil {
		if ds.CameraMatrix.FX != nil {
			cam.FX = *ds.CameraMatrix.FX
		}
		if ds.CameraMatrix.FY != nil {
			cam.FY = *ds.CameraMatrix.FY
		}
		if ds.CameraMatrix.CX != nil {
			cam.CX = *ds.CameraMatrix.CX
		}
		if ds.CameraMatrix.CY != nil {
			cam.CY = *ds.CameraMatrix.CY
		}
	}
	if ds.CameraDistortionParams != nil {
		if ds.CameraDistortionParams.K1 != nil {
			cam.K1 = *ds.CameraDistortionParams.K1
		}
		if ds.CameraDistortionParams.K2 != nil {
			cam.K2 = *ds.CameraDistortionParams.K2
		}
		if ds.CameraDistortionParams.K3 != nil {
			cam.K3 = *ds.CameraDistortionParams.K3
		}
		if ds.CameraDistortionParams.P1 != nil {
			cam.P1 = *ds.CameraDistortionParams.P1
		}
		if ds.CameraDistortionParams.P2 != nil {
			cam.P2 = *ds.CameraDistortionParams.P2
		}
	}
	if ds.FocalToRayCross != nil {
		cam.FocalToRayCross = *ds.FocalToRayCross
	}
	cam.DistanceByteWidth = byteWidth(ds.Distance)
	cam.IntensityByteWidth = byteWidth(ds.Intensity)
	cam.ConfidenceByteWidth = byteWidth(ds.Confidence)

	meta.Camera = cam

	c.haveChangeCounter = true
	c.changeCounter = changeCounter
	c.metadata = meta

	return meta, ErrorKindNone, nil
}
