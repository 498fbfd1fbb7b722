package visionary

import (
	"context"
	"fmt"
)

// cola2HeaderLen is the fixed 8-byte header following the magic+length
// prefix: hop(1) + NoC(1) + session-ID(4) + request-ID(2).
const cola2HeaderLen = 8

// Cola2Framer implements the session-oriented Variant 2: a session is
// established once with open_session, every exchange carries an
// incrementing request ID and the negotiated session ID, and there is no
// per-message checksum (lower transport layers are trusted for integrity).
type Cola2Framer struct {
	t         Transport
	clientID  string
	sessionID uint32
	requestID uint16
}

// NewCola2Framer wraps t for Variant 2 framing. clientID is sent verbatim
// as the ASCII client identifier during open_session; it must be
// non-empty and at most 32 bytes.
func NewCola2Framer(t Transport, clientID string) *Cola2Framer {
	return &Cola2Framer{t: t, clientID: clientID}
}

// SessionID returns the session ID assigned by the device during the most
// recent successful OpenSession call.
func (f *Cola2Framer) SessionID() uint32 { return f.sessionID }

// OpenSession sends an "Ox" session-open command carrying timeoutSecs and
// the configured client ID, then records the session ID the device
// assigns in its response.
func (f *Cola2Framer) OpenSession(ctx context.Context, timeoutSecs uint8) error {
	inner := make([]byte, 0, 3+1+2+len(f.clientID))
	inner = append(inner, 'O', 'x', timeoutSecs)
	inner = AppendU16(inner, uint16(len(f.clientID)), BigEndian)
	inner = append(inner, f.clientID...)

	f.requestID++
	frame := f.encodeCola2Frame(inner)
	if err := f.t.Send(ctx, frame); err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailure, err)
	}

	payload, err := readCola2Payload(ctx, f.t)
	if err != nil {
		return err
	}
	if len(payload) < cola2HeaderLen {
		return fmt.Errorf("%w: session-open response too short", ErrInvalidLength)
	}
	f.sessionID = ReadU32(payload, 2, BigEndian)
	return nil
}

// CloseSession is specified as a no-op: the session is implicitly closed
// when the transport shuts down. See DESIGN.md for the Open Question this
// preserves rather than resolves.
func (f *Cola2Framer) CloseSession(ctx context.Context) error {
	return nil
}

// Exchange strips the leading 's' from cmd's three-letter tag, prepends
// the Variant-2 header with an incremented request ID, sends, and parses
// the response with a re-inserted leading 's'.
func (f *Cola2Framer) Exchange(ctx context.Context, cmd Command) (Command, error) {
	body := cmd.Buffer()
	if len(body) == 0 || body[0] != 's' {
		return NetworkErrorCommand(), fmt.Errorf("%w: command tag does not start with 's'", ErrInvalidMagic)
	}
	inner := body[1:]

	f.requestID++
	frame := f.encodeCola2Frame(inner)
	if err := f.t.Send(ctx, frame); err != nil {
		return NetworkErrorCommand(), fmt.Errorf("%w: %w", ErrSendFailure, err)
	}

	payload, err := readCola2Payload(ctx, f.t)
	if err != nil {
		return NetworkErrorCommand(), err
	}
	if len(payload) < cola2HeaderLen {
		return NetworkErrorCommand(), fmt.Errorf("%w: response shorter than header", ErrInvalidLength)
	}

	gotSession := ReadU32(payload, 2, BigEndian)
	if gotSession != f.sessionID {
		return NetworkErrorCommand(), fmt.Errorf("%w: got %d, want %d", ErrUnexpectedSessionID, gotSession, f.sessionID)
	}
	gotRequest := ReadU16(payload, 6, BigEndian)
	if gotRequest != f.requestID {
		return NetworkErrorCommand(), fmt.Errorf("%w: got %d, want %d", ErrUnexpectedRequestID, gotRequest, f.requestID)
	}

	respBody := make([]byte, 0, 1+len(payload)-cola2HeaderLen)
	respBody = append(respBody, 's')
	respBody = append(respBody, payload[cola2HeaderLen:]...)

	resp, err := ParseCommand(respBody)
	if err != nil {
		return NetworkErrorCommand(), err
	}
	return resp, nil
}

// encodeCola2Frame prepends the magic+length prefix and the 8-byte
// hop/NoC/session/request header to inner, then fixes up the length field
// to the final byte count minus 8 (the prefix's own length).
func (f *Cola2Framer) encodeCola2Frame(inner []byte) []byte {
	frame := make([]byte, 0, 8+cola2HeaderLen+len(inner))
	frame = append(frame, magicByte, magicByte, magicByte, magicByte)
	frame = AppendU32(frame, 0, BigEndian) // placeholder, fixed up below
	frame = append(frame, 0, 0)            // hop, NoC
	frame = AppendU32(frame, f.sessionID, BigEndian)
	frame = AppendU16(frame, f.requestID, BigEndian)
	frame = append(frame, inner...)

	bodyLen := uint32(len(frame) - 8)
	PutU32(frame, 4, bodyLen, BigEndian)
	return frame
}

// readCola2Payload resyncs on the four-byte magic, reads a 32-bit
// big-endian length, then reads exactly that many bytes and returns them.
func readCola2Payload(ctx context.Context, t Transport) ([]byte, error) {
	if err := resyncOnMagic(ctx, t); err != nil {
		return nil, err
	}

	var lenBuf [4]byte
	if err := readFull(ctx, t, lenBuf[:]); err != nil {
		return nil, err
	}
	length := ReadU32(lenBuf[:], 0, BigEndian)
	if length == 0 || length > maxFrameLength {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}

	payload := make([]byte, length)
	if err := readFull(ctx, t, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
