package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

// udpHeaderSize is the documented per-fragment header size (spec.md §4.9).
// original_source's UdpDataHeader struct only names 26 bytes of fields;
// the remaining 6 bytes here are reserved padding — see DESIGN.md.
const udpHeaderSize = 32

const udpHeaderNamedSize = 26

const udpLastFragmentFlag = 1 << 7

// Errors returned by UDPReassembler.Next.
var (
	ErrFragmentTooShort     = errors.New("blob: udp fragment shorter than header")
	ErrFragmentOutOfOrder   = errors.New("blob: udp fragment number out of order")
	ErrFragmentBlobMismatch = errors.New("blob: udp fragment blob number changed mid-blob")
	ErrInvalidUDPVersion    = errors.New("blob: udp fragment has invalid protocol version")
	ErrInvalidUDPPacketType = errors.New("blob: udp fragment has invalid packet type")
	ErrInvalidUDPLength     = errors.New("blob: udp fragment declares length past received data")
)

// udpFragmentHeader is the subset of UdpDataHeader fields the reassembler
// actually consults; the IP/port/timestamp fields are not needed to
// reassemble a blob and are not decoded. Offsets follow UdpDataHeader's
// field order in SafeVisionaryDataStream.cpp: packetNumber(0) +
// fragmentNumber(2) + timeStamp(4) + sourceIpAddress(8) +
// sourcePortNumber(12) + destIpAddress(14) + destPortNumber(18) +
// protocolVersion(20) + dataLength(22) + flags(24) + packetType(25).
type udpFragmentHeader struct {
	packetNumber    uint16
	fragmentNumber  uint16
	protocolVersion uint16
	dataLength      uint16
	flags           uint8
	packetType      uint8
}

const (
	udpFragmentProtocolVersion = 1
	udpFragmentPacketType      = 0x62
)

func parseUDPFragmentHeader(buf []byte) (udpFragmentHeader, error) {
	if len(buf) < udpHeaderSize {
		return udpFragmentHeader{}, ErrFragmentTooShort
	}
	return udpFragmentHeader{
		packetNumber:    visionary.ReadU16(buf, 0, visionary.BigEndian),
		fragmentNumber:  visionary.ReadU16(buf, 2, visionary.BigEndian),
		protocolVersion: visionary.ReadU16(buf, 20, visionary.BigEndian),
		dataLength:      visionary.ReadU16(buf, 22, visionary.BigEndian),
		flags:           visionary.ReadU8(buf, 24),
		packetType:      visionary.ReadU8(buf, 25),
	}, nil
}

// FragmentReader receives one UDP datagram per call, blocking until a
// datagram arrives or ctx is done.
type FragmentReader interface {
	ReadFragment(ctx context.Context) ([]byte, error)
}

// UDPReassembler reassembles a sequence of UDP fragments belonging to one
// blob, per spec.md §4.9's Datagram path: discard fragments until
// fragment number 0 is seen, then require strictly incrementing fragment
// numbers carrying the same blob (packet) number until the last-fragment
// flag is observed.
type UDPReassembler struct {
	r FragmentReader
}

// NewUDPReassembler returns a reassembler reading fragments from r.
func NewUDPReassembler(r FragmentReader) *UDPReassembler {
	return &UDPReassembler{r: r}
}

// Next blocks until a complete blob has been reassembled from consecutive
// fragments, or ctx is done, or a framing error occurs (a fragment number
// other than the next expected one, blob number change mid-sequence, or an invalid fragment
// header — wrong protocol version, wrong packet type, or a declared
// length past what was received). Any of these abort the in-progress
// blob; the next call starts the search over.
func (u *UDPReassembler) Next(ctx context.Context) ([]byte, error) {
	var (
		blobNumber uint16
		wantFrag   uint16
		started    bool
		blobBuffer []byte
	)

	for {
		raw, err := u.r.ReadFragment(ctx)
		if err != nil {
			return nil, err
		}

		hdr, err := parseUDPFragmentHeader(raw)
		if err != nil {
			continue // too short to be a fragment header; discard
		}
		if hdr.protocolVersion != udpFragmentProtocolVersion {
			started = false
			return nil, fmt.Errorf("%w: got %d", ErrInvalidUDPVersion, hdr.protocolVersion)
		}
		if hdr.packetType != udpFragmentPacketType {
			started = false
			return nil, fmt.Errorf("%w: got %#x", ErrInvalidUDPPacketType, hdr.packetType)
		}
		if int(hdr.dataLength) > len(raw)-udpHeaderSize {
			started = false
			return nil, fmt.Errorf("%w: declared %d, have %d", ErrInvalidUDPLength, hdr.dataLength, len(raw)-udpHeaderSize)
		}
		payload := raw[udpHeaderSize : udpHeaderSize+int(hdr.dataLength)]

		if !started {
			if hdr.fragmentNumber != 0 {
				continue // still looking for the start of a blob
			}
			blobNumber = hdr.packetNumber
			wantFrag = 0
			blobBuffer = blobBuffer[:0]
			started = true
		}

		if hdr.packetNumber != blobNumber {
			started = false
			return nil, fmt.Errorf("%w: want %d got %d", ErrFragmentBlobMismatch, blobNumber, hdr.packetNumber)
		}
		if hdr.fragmentNumber != wantFrag {
			started = false
			return nil, fmt.Errorf("%w: want %d got %d", ErrFragmentOutOfOrder, wantFrag, hdr.fragmentNumber)
		}

		blobBuffer = append(blobBuffer, payload...)
		wantFrag++

		if hdr.flags&udpLastFragmentFlag != 0 {
			started = false
			return blobBuffer, nil
		}
	}
}
