package blob

import (
	"context"
	"errors"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

const (
	tcpStreamHeaderSize = 11
	tcpBlobProtocolVer  = 1
	tcpBlobPacketType   = 0x62
)

// ErrStreamHeaderInvalid is returned when a resynchronized 11-byte read
// still fails to decode as a valid stream header.
var ErrStreamHeaderInvalid = errors.New("blob: tcp stream header invalid")

// TCPReassembler reassembles blobs from the CoLa-2 TCP blob stream, per
// spec.md §4.9's Stream path. The first header-sized read after the
// stream is opened is discarded to avoid capturing a partial first blob,
// matching original_source's getNextTcpReception/getNextBlobTcp.
type TCPReassembler struct {
	t       visionary.Transport
	skipped bool
}

// NewTCPReassembler returns a reassembler reading from t.
func NewTCPReassembler(t visionary.Transport) *TCPReassembler {
	return &TCPReassembler{t: t}
}

// Next blocks until one complete blob buffer (stream header followed by
// body, reconstructed into the same shape the UDP path produces) has
// been read, or ctx is done, or the stream cannot be resynchronized.
func (r *TCPReassembler) Next(ctx context.Context) ([]byte, error) {
	if !r.skipped {
		discard := make([]byte, tcpStreamHeaderSize)
		if err := r.readFull(ctx, discard); err != nil {
			return nil, err
		}
		r.skipped = true
	}

	// Scan byte-wise for the four magic bytes rather than blindly reading
	// a fixed-size block: a blind 11-byte read can itself straddle the
	// magic when the stream has drifted, consuming bytes the resync pass
	// would otherwise need. Scanning first makes the steady-state case
	// (already aligned) and the resync case (garbage before the magic)
	// the same code path.
	if err := r.resyncOnMagic(ctx); err != nil {
		return nil, err
	}
	header := make([]byte, tcpStreamHeaderSize)
	visionary.PutU32(header, 0, blobMagic, visionary.BigEndian)
	if err := r.readFull(ctx, header[4:]); err != nil {
		return nil, err
	}

	length := visionary.ReadU32(header, 4, visionary.BigEndian)
	version := visionary.ReadU16(header, 8, visionary.BigEndian)
	packetType := visionary.ReadU8(header, 10)
	if version != tcpBlobProtocolVer || packetType != tcpBlobPacketType {
		return nil, ErrStreamHeaderInvalid
	}

	bodyLen := int64(length) + blobLengthFudge
	if bodyLen < 0 {
		return nil, ErrStreamHeaderInvalid
	}
	body := make([]byte, bodyLen)
	if err := r.readFull(ctx, body); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, tcpStreamHeaderSize+len(body))
	buf = append(buf, header...)
	buf = append(buf, body...)
	return buf, nil
}

func (r *TCPReassembler) readFull(ctx context.Context, buf []byte) error {
	for off := 0; off < len(buf); {
		n, err := r.t.Receive(ctx, buf[off:])
		if err != nil {
			return err
		}
		off += n
	}
	return nil
}

// resyncOnMagic reads byte-wise until four consecutive 0x02 bytes appear.
func (r *TCPReassembler) resyncOnMagic(ctx context.Context) error {
	run := 0
	var b [1]byte
	for run < 4 {
		n, err := r.t.Receive(ctx, b[:])
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		if b[0] == 0x02 {
			run++
		} else {
			run = 0
		}
	}
	return nil
}
