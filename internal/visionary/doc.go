// Package visionary implements the CoLa control-plane protocol used by
// SICK SafeVisionary2 sensors: the unaligned endian codec, CRC-32/CRC-32C,
// the Command message model, the two CoLa framing variants (stream-framed
// XOR-checksum and session-oriented), the control session facade,
// legacy and secure authentication, and the Device composition root that
// ties them together.
package visionary
