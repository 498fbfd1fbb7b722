package visionary

import (
	"context"
	"errors"
	"fmt"
)

// Framing protocol errors shared by both variants.
var (
	// ErrInvalidMagic indicates the four-byte 0x02 magic prefix was not found.
	ErrInvalidMagic = errors.New("visionary: invalid magic")
	// ErrInvalidLength indicates a declared frame length is out of bounds
	// for the transport (zero, negative, or implausibly large).
	ErrInvalidLength = errors.New("visionary: invalid length")
	// ErrChecksumMismatch indicates Variant B's trailing XOR checksum did
	// not match the received body.
	ErrChecksumMismatch = errors.New("visionary: checksum mismatch")
	// ErrUnexpectedSessionID indicates a Variant-2 response carried a
	// session ID other than the one open_session established.
	ErrUnexpectedSessionID = errors.New("visionary: unexpected session id")
	// ErrUnexpectedRequestID indicates a Variant-2 response carried a
	// request ID other than the one the matching request sent.
	ErrUnexpectedRequestID = errors.New("visionary: unexpected request id")
)

// magicByte is the single repeated byte that opens every frame on the wire,
// in both Variant B and Variant 2.
const magicByte = 0x02

// maxFrameLength bounds a declared length field against a runaway/garbage
// read; no real CoLa command or session packet approaches this size.
const maxFrameLength = 16 << 20

// Framer is the three-operation contract both framing variants implement:
// open a logical session over an already-connected Transport, exchange one
// request/response pair, and close the session.
type Framer interface {
	OpenSession(ctx context.Context, timeoutSecs uint8) error
	Exchange(ctx context.Context, cmd Command) (Command, error)
	CloseSession(ctx context.Context) error
}

// ColaBFramer implements the stream-framed, XOR-checksummed Variant B:
// open_session and close_session are no-ops, exchange wraps the command
// body in a magic+length prefix and a trailing checksum byte.
type ColaBFramer struct {
	t Transport
}

// NewColaBFramer wraps t for Variant B framing.
func NewColaBFramer(t Transport) *ColaBFramer {
	return &ColaBFramer{t: t}
}

// OpenSession is a no-op; Variant B has no session handshake.
func (f *ColaBFramer) OpenSession(ctx context.Context, timeoutSecs uint8) error {
	return nil
}

// CloseSession is a no-op; Variant B has no session teardown.
func (f *ColaBFramer) CloseSession(ctx context.Context) error {
	return nil
}

// Exchange sends cmd's buffer framed as magic+length+body+checksum and
// returns the parsed response Command, or NetworkErrorCommand on any
// transport or framing failure.
func (f *ColaBFramer) Exchange(ctx context.Context, cmd Command) (Command, error) {
	frame := encodeColaBFrame(cmd.Buffer())
	if err := f.t.Send(ctx, frame); err != nil {
		return NetworkErrorCommand(), fmt.Errorf("%w: %w", ErrSendFailure, err)
	}

	body, err := readColaBFrame(ctx, f.t)
	if err != nil {
		return NetworkErrorCommand(), err
	}

	resp, err := ParseCommand(body)
	if err != nil {
		return NetworkErrorCommand(), err
	}
	return resp, nil
}

// encodeColaBFrame wraps body in the four-byte magic, a 32-bit big-endian
// length, the body itself, and a trailing one-byte XOR checksum over body.
func encodeColaBFrame(body []byte) []byte {
	frame := make([]byte, 0, 8+len(body)+1)
	frame = append(frame, magicByte, magicByte, magicByte, magicByte)
	frame = AppendU32(frame, uint32(len(body)), BigEndian)
	frame = append(frame, body...)
	frame = append(frame, xorChecksum(body))
	return frame
}

// xorChecksum XORs every byte of data together.
func xorChecksum(data []byte) byte {
	var c byte
	for _, b := range data {
		c ^= b
	}
	return c
}

// readColaBFrame resyncs on four consecutive 0x02 bytes, reads a 32-bit
// big-endian length L, then reads L+1 bytes (payload plus trailing
// checksum byte), verifies the checksum, and returns the payload.
func readColaBFrame(ctx context.Context, t Transport) ([]byte, error) {
	if err := resyncOnMagic(ctx, t); err != nil {
		return nil, err
	}

	var lenBuf [4]byte
	if err := readFull(ctx, t, lenBuf[:]); err != nil {
		return nil, err
	}
	// A run of more than four 0x02 bytes (stray 0x02 garbage right before
	// the magic) leaves the extra ones at the front of lenBuf; no length up
	// to maxFrameLength starts with 0x02, so slide past them.
	for lenBuf[0] == magicByte {
		copy(lenBuf[:], lenBuf[1:])
		if err := readFull(ctx, t, lenBuf[3:]); err != nil {
			return nil, err
		}
	}
	length := ReadU32(lenBuf[:], 0, BigEndian)
	if length == 0 || length > maxFrameLength {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}

	payload := make([]byte, length+1)
	if err := readFull(ctx, t, payload); err != nil {
		return nil, err
	}

	body := payload[:length]
	checksum := payload[length]
	if xorChecksum(body) != checksum {
		return nil, ErrChecksumMismatch
	}
	return body, nil
}

// resyncOnMagic reads one byte at a time, discarding anything that is not
// part of a run of four consecutive 0x02 bytes, until it has consumed
// exactly four of them.
func resyncOnMagic(ctx context.Context, t Transport) error {
	var run int
	var b [1]byte
	for run < 4 {
		if err := readFull(ctx, t, b[:]); err != nil {
			return err
		}
		if b[0] == magicByte {
			run++
		} else {
			run = 0
		}
	}
	return nil
}

// readFull reads exactly len(buf) bytes from t, looping across short reads.
func readFull(ctx context.Context, t Transport, buf []byte) error {
	for read := 0; read < len(buf); {
		n, err := t.Receive(ctx, buf[read:])
		if err != nil {
			return err
		}
		read += n
	}
	return nil
}
