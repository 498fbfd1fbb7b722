package blob

import (
	"fmt"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

// envelope is the generic framing shared by every non-XML segment
// (§4.10 "Generic binary-segment envelope"): length, device timestamp,
// version, payload, complemented CRC-32 over timestamp||version||payload,
// and a trailing length echo.
type envelope struct {
	Timestamp uint64
	Version   uint16
	Payload   []byte
}

const envelopeFixedOverhead = 4 + 8 + 2 + 4 + 4 // len + ts + ver + crc + len-echo

// decodeEnvelope validates and strips the generic segment envelope from
// buf, returning the enclosed payload, timestamp and version, or an
// ErrorKind describing why validation failed.
func decodeEnvelope(buf []byte) (envelope, ErrorKind, error) {
	if len(buf) < envelopeFixedOverhead {
		return envelope{}, ErrorKindLengthMismatch, fmt.Errorf("blob: segment shorter than envelope overhead")
	}

	length := visionary.ReadU32(buf, 0, visionary.LittleEndian)
	if int(length) != len(buf) {
		return envelope{}, ErrorKindLengthMismatch, fmt.Errorf("blob: segment length field %d != buffer length %d", length, len(buf))
	}

	lengthEcho := visionary.ReadU32(buf, len(buf)-4, visionary.LittleEndian)
	if lengthEcho != length {
		return envelope{}, ErrorKindLengthMismatch, fmt.Errorf("blob: segment length echo %d != length %d", lengthEcho, length)
	}

	timestamp := visionary.ReadU64(buf, 4, visionary.LittleEndian)
	version := visionary.ReadU16(buf, 12, visionary.LittleEndian)
	payload := buf[14 : len(buf)-8]
	wantCRC := visionary.ReadU32(buf, len(buf)-8, visionary.LittleEndian)

	sum := visionary.CRC32Block(buf[4:len(buf)-8], visionary.DefaultCRCInit)
	gotCRC := ^sum

	if gotCRC != wantCRC {
		return envelope{}, ErrorKindCRCMismatch, fmt.Errorf("blob: segment crc %#08x != expected %#08x", gotCRC, wantCRC)
	}

	return envelope{Timestamp: timestamp, Version: version, Payload: payload}, ErrorKindNone, nil
}
