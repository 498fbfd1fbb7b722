// Package netconn provides visionary.Transport implementations backed by
// the standard library's net package: a net.Conn-backed stream transport
// for the CoLa control channel and the TCP blob stream, and a
// net.PacketConn-backed datagram transport for the UDP blob fragment
// path. Both are narrow adapters with no socket-tuning beyond what the
// device protocol itself requires.
package netconn
