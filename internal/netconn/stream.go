package netconn

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

// defaultIODeadline is the fixed per-call deadline applied whenever ctx
// carries none of its own, mirroring original_source's fixed 5-second
// SO_RCVTIMEO on every socket.
const defaultIODeadline = 5 * time.Second

// StreamTransport adapts a net.Conn (TCP) to visionary.Transport. It is
// used for both the CoLa control channel and the TCP blob stream; the
// two differ only in which port the caller dials.
//
// Grounded on original_source's TcpSocket: connect/send/recv plus the
// blocking read-to-deadline pattern. A ctx deadline, when present,
// overrides defaultIODeadline for that one call.
type StreamTransport struct {
	conn   net.Conn
	closed bool
}

// DialStream opens a TCP connection to addr (host:port), honoring ctx
// for the connect itself.
func DialStream(ctx context.Context, addr string) (*StreamTransport, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("netconn: dial %s: %w", addr, err)
	}
	return &StreamTransport{conn: conn}, nil
}

// NewStreamTransport wraps an already-established net.Conn.
func NewStreamTransport(conn net.Conn) *StreamTransport {
	return &StreamTransport{conn: conn}
}

func (s *StreamTransport) Send(ctx context.Context, data []byte) error {
	if s.closed {
		return visionary.ErrConnectionClosed
	}
	if err := applyDeadline(ctx, s.conn); err != nil {
		return err
	}
	if _, err := s.conn.Write(data); err != nil {
		return fmt.Errorf("%w: %w", visionary.ErrSendFailure, err)
	}
	return nil
}

func (s *StreamTransport) Receive(ctx context.Context, buf []byte) (int, error) {
	if s.closed {
		return 0, visionary.ErrConnectionClosed
	}
	if err := applyDeadline(ctx, s.conn); err != nil {
		return 0, err
	}
	n, err := s.conn.Read(buf)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return n, fmt.Errorf("%w: %w", visionary.ErrReceiveTimeout, err)
		}
		return n, fmt.Errorf("%w: %w", visionary.ErrConnectionClosed, err)
	}
	return n, nil
}

func (s *StreamTransport) Close() error {
	s.closed = true
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("netconn: close: %w", err)
	}
	return nil
}

func applyDeadline(ctx context.Context, conn net.Conn) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		return conn.SetDeadline(time.Now().Add(defaultIODeadline))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return conn.SetDeadline(deadline)
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
