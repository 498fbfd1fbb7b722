package visionary

import (
	"context"
	"errors"
)

// Transport-level sentinel errors. Concrete adapters (internal/netconn)
// wrap the underlying net error with one of these via errors.Join or
// fmt.Errorf("%w: ...", ...) so callers can errors.Is against them
// regardless of which adapter is in use.
var (
	// ErrReceiveTimeout indicates a Receive deadline elapsed with no data.
	ErrReceiveTimeout = errors.New("visionary: receive timeout")
	// ErrConnectionClosed indicates the transport was closed, locally or
	// by the peer, and can no longer Send or Receive.
	ErrConnectionClosed = errors.New("visionary: connection closed")
	// ErrSendFailure indicates a Send could not be completed.
	ErrSendFailure = errors.New("visionary: send failure")
)

// Transport is the minimal I/O surface the framing handlers and blob
// reassemblers need: send a complete datagram or stream chunk, receive up
// to len(buf) bytes (blocking, subject to ctx), and close. It deliberately
// does not expose addresses, options, or connection setup — callers build
// a Transport with internal/netconn and pass the interface in, mirroring
// original_source's ITransport split from TcpSocket/UdpSocket.
type Transport interface {
	// Send writes all of data or returns an error; partial writes are
	// not observable to the caller.
	Send(ctx context.Context, data []byte) error
	// Receive reads at least one byte into buf and returns the number
	// read, or an error. It does not loop to fill buf.
	Receive(ctx context.Context, buf []byte) (int, error)
	// Close releases the underlying connection. Subsequent Send/Receive
	// calls return ErrConnectionClosed.
	Close() error
}
