package visionary

import (
	"bytes"
	"context"
	"testing"
)

func encodeCola2Response(sessionID uint32, requestID uint16, innerBody []byte) []byte {
	header := make([]byte, 0, cola2HeaderLen+len(innerBody))
	header = append(header, 0, 0) // hop, NoC
	header = AppendU32(header, sessionID, BigEndian)
	header = AppendU16(header, requestID, BigEndian)
	header = append(header, innerBody...)

	frame := make([]byte, 0, 8+len(header))
	frame = append(frame, magicByte, magicByte, magicByte, magicByte)
	frame = AppendU32(frame, uint32(len(header)), BigEndian)
	frame = append(frame, header...)
	return frame
}

func TestCola2OpenSessionAssignsSessionID(t *testing.T) {
	// Response payload: 8-byte header (with the assigned session ID at the
	// same offset as any other response) followed by whatever the device
	// echoes back.
	seed := encodeCola2Response(0x12345678, 1, []byte("x"))
	tr := newFakeTransport(seed)
	f := NewCola2Framer(tr, "test-client")

	if err := f.OpenSession(context.Background(), DefaultSessionTimeoutSecs); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if f.SessionID() != 0x12345678 {
		t.Fatalf("session id = %#x, want %#x", f.SessionID(), 0x12345678)
	}
}

func TestCola2ExchangeStripsAndReinsertsLeadingS(t *testing.T) {
	seed := encodeCola2Response(0, 1, []byte("x"))
	tr := newFakeTransport(seed)
	f := NewCola2Framer(tr, "client")
	if err := f.OpenSession(context.Background(), DefaultSessionTimeoutSecs); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}

	innerResp := []byte("AN Run \x01")
	tr.recvBuf.Write(encodeCola2Response(0, 2, innerResp))

	req := Build(KindMethodInvocation, "Run", NewCommandBuilder(KindMethodInvocation, "Run"))
	resp, err := f.Exchange(context.Background(), req)
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	want := []byte("sAN Run \x01")
	if !bytes.Equal(resp.Buffer(), want) {
		t.Fatalf("resp buffer = % X, want % X", resp.Buffer(), want)
	}
}

func TestCola2RequestIDMonotonicity(t *testing.T) {
	seed := encodeCola2Response(0, 1, []byte("x"))
	tr := newFakeTransport(seed)
	f := NewCola2Framer(tr, "client")
	if err := f.OpenSession(context.Background(), DefaultSessionTimeoutSecs); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}

	for i := uint16(2); i <= 4; i++ {
		tr.recvBuf.Write(encodeCola2Response(0, i, []byte("AN Run \x01")))
		if _, err := f.Exchange(context.Background(), Build(KindMethodInvocation, "Run", NewCommandBuilder(KindMethodInvocation, "Run"))); err != nil {
			t.Fatalf("Exchange %d: %v", i, err)
		}
		if f.requestID != i {
			t.Fatalf("requestID = %d, want %d", f.requestID, i)
		}
	}
}

func TestCola2UnexpectedSessionIDRejected(t *testing.T) {
	seed := encodeCola2Response(0, 1, []byte("x"))
	tr := newFakeTransport(seed)
	f := NewCola2Framer(tr, "client")
	if err := f.OpenSession(context.Background(), DefaultSessionTimeoutSecs); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}

	tr.recvBuf.Write(encodeCola2Response(0xDEADBEEF, 2, []byte("AN Run \x01")))
	_, err := f.Exchange(context.Background(), Build(KindMethodInvocation, "Run", NewCommandBuilder(KindMethodInvocation, "Run")))
	if err == nil {
		t.Fatal("expected unexpected-session-id error")
	}
}
