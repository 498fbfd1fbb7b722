package netconn

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

// udpReceiveBufferBytes mirrors UdpSocket::bindPort's 512KB SO_RCVBUF
// tuning — blob fragments arrive in bursts and the kernel's default
// buffer drops datagrams under load well before the application reads
// them.
const udpReceiveBufferBytes = 512 * 1024

// PacketTransport adapts a net.PacketConn (UDP) to a blob.FragmentReader,
// and also implements visionary.Transport's Send/Close so it can be used
// wherever a single fixed peer address is known.
//
// Grounded on original_source's UdpSocket::bindPort/recv.
type PacketTransport struct {
	conn   net.PacketConn
	peer   net.Addr
	closed bool
}

// ListenPacket opens a UDP socket bound to addr (host:port, host empty
// for any address) and tunes its receive buffer.
func ListenPacket(ctx context.Context, addr string) (*PacketTransport, error) {
	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("netconn: listen %s: %w", addr, err)
	}
	if udpConn, ok := conn.(*net.UDPConn); ok {
		if err := udpConn.SetReadBuffer(udpReceiveBufferBytes); err != nil {
			// Not fatal: some kernels cap SO_RCVBUF below the request.
			_ = err
		}
	}
	return &PacketTransport{conn: conn}, nil
}

// NewPacketTransport wraps an existing net.PacketConn. peer, if non-nil,
// fixes the destination address used by Send.
func NewPacketTransport(conn net.PacketConn, peer net.Addr) *PacketTransport {
	return &PacketTransport{conn: conn, peer: peer}
}

// ReadFragment implements blob.FragmentReader: one UDP datagram per call.
func (p *PacketTransport) ReadFragment(ctx context.Context) ([]byte, error) {
	buf := make([]byte, 65535)
	n, err := p.Receive(ctx, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (p *PacketTransport) Send(ctx context.Context, data []byte) error {
	if p.closed {
		return visionary.ErrConnectionClosed
	}
	if p.peer == nil {
		return fmt.Errorf("netconn: packet transport has no fixed peer")
	}
	if err := applyPacketDeadline(ctx, p.conn); err != nil {
		return err
	}
	if _, err := p.conn.WriteTo(data, p.peer); err != nil {
		return fmt.Errorf("%w: %w", visionary.ErrSendFailure, err)
	}
	return nil
}

func (p *PacketTransport) Receive(ctx context.Context, buf []byte) (int, error) {
	if p.closed {
		return 0, visionary.ErrConnectionClosed
	}
	if err := applyPacketDeadline(ctx, p.conn); err != nil {
		return 0, err
	}
	n, addr, err := p.conn.ReadFrom(buf)
	if err != nil {
		if isTimeout(err) {
			return n, fmt.Errorf("%w: %w", visionary.ErrReceiveTimeout, err)
		}
		return n, fmt.Errorf("%w: %w", visionary.ErrConnectionClosed, err)
	}
	if p.peer == nil {
		p.peer = addr
	}
	return n, nil
}

func (p *PacketTransport) Close() error {
	p.closed = true
	if err := p.conn.Close(); err != nil {
		return fmt.Errorf("netconn: close: %w", err)
	}
	return nil
}

func applyPacketDeadline(ctx context.Context, conn net.PacketConn) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		return conn.SetDeadline(time.Now().Add(defaultIODeadline))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return conn.SetDeadline(deadline)
}
