package blob

import (
	"fmt"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

const (
	fieldInfoVersion     = 1
	maxFieldInfoValues   = 16
	fieldInfoElementSize = 5
)

// FieldInfo is one decoded protective/warning field result.
type FieldInfo struct {
	FieldID     uint8
	FieldSetID  uint8
	FieldResult uint8
	EvalMethod  uint8
	FieldActive uint8
}

func decodeFieldInfo(version uint16, payload []byte) ([maxFieldInfoValues]FieldInfo, ErrorKind, error) {
	var out [maxFieldInfoValues]FieldInfo
	if version != fieldInfoVersion {
		return out, ErrorKindUnsupportedVersion, fmt.Errorf("blob: field-info version %d != %d", version, fieldInfoVersion)
	}
	want := maxFieldInfoValues * fieldInfoElementSize
	if len(payload) != want {
		return out, ErrorKindLengthMismatch, fmt.Errorf("blob: field-info payload length %d != expected %d", len(payload), want)
	}

	off := 0
	for i := 0; i < maxFieldInfoValues; i++ {
		out[i] = FieldInfo{
			FieldID:     visionary.ReadU8(payload, off),
			FieldSetID:  visionary.ReadU8(payload, off+1),
			FieldResult: visionary.ReadU8(payload, off+2),
			EvalMethod:  visionary.ReadU8(payload, off+3),
			FieldActive: visionary.ReadU8(payload, off+4),
		}
		off += fieldInfoElementSize
	}

	return out, ErrorKindNone, nil
}
