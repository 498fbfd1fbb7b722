package visionary

import (
	"bytes"
	"context"
	"io"
	"testing"
)

// fakeTransport is an in-memory Transport backed by two buffers: writes
// go to sent, reads come from a pre-seeded recvBuf.
type fakeTransport struct {
	sent    bytes.Buffer
	recvBuf *bytes.Buffer
	closed  bool
}

func newFakeTransport(seed []byte) *fakeTransport {
	return &fakeTransport{recvBuf: bytes.NewBuffer(seed)}
}

func (f *fakeTransport) Send(ctx context.Context, data []byte) error {
	if f.closed {
		return ErrConnectionClosed
	}
	f.sent.Write(data)
	return nil
}

func (f *fakeTransport) Receive(ctx context.Context, buf []byte) (int, error) {
	if f.closed {
		return 0, ErrConnectionClosed
	}
	n, err := f.recvBuf.Read(buf)
	if err == io.EOF {
		return 0, ErrReceiveTimeout
	}
	return n, err
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func TestColaBFrameEncodingScenario1(t *testing.T) {
	buf := NewCommandBuilder(KindMethodInvocation, "Run").Build()
	wantBody := []byte{0x73, 0x4D, 0x4E, 0x20, 0x52, 0x75, 0x6E, 0x20}
	if !bytes.Equal(buf, wantBody) {
		t.Fatalf("command body = % X, want % X", buf, wantBody)
	}

	frame := encodeColaBFrame(buf)
	want := []byte{0x02, 0x02, 0x02, 0x02, 0x00, 0x00, 0x00, 0x08,
		0x73, 0x4D, 0x4E, 0x20, 0x52, 0x75, 0x6E, 0x20, 0x39}
	if !bytes.Equal(frame, want) {
		t.Fatalf("frame = % X, want % X", frame, want)
	}
}

func TestColaBExchangeRoundTrip(t *testing.T) {
	respBody := NewCommandBuilder(KindMethodReturn, "Run").AppendBool(true).Build()
	seed := encodeColaBFrame(respBody)

	tr := newFakeTransport(seed)
	f := NewColaBFramer(tr)

	req := Build(KindMethodInvocation, "Run", NewCommandBuilder(KindMethodInvocation, "Run"))
	resp, err := f.Exchange(context.Background(), req)
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if !bytes.Equal(resp.Buffer(), respBody) {
		t.Fatalf("response buffer = % X, want % X", resp.Buffer(), respBody)
	}

	sentFrame := encodeColaBFrame(req.Buffer())
	if !bytes.Equal(tr.sent.Bytes(), sentFrame) {
		t.Fatalf("sent = % X, want % X", tr.sent.Bytes(), sentFrame)
	}
}

func TestColaBChecksumMismatch(t *testing.T) {
	respBody := []byte("sAN Run \x01")
	frame := encodeColaBFrame(respBody)
	frame[len(frame)-1] ^= 0xFF // corrupt the checksum byte

	tr := newFakeTransport(frame)
	f := NewColaBFramer(tr)
	_, err := f.Exchange(context.Background(), Build(KindMethodInvocation, "Run", NewCommandBuilder(KindMethodInvocation, "Run")))
	if err == nil {
		t.Fatal("expected checksum mismatch error")
	}
}

func TestColaBResyncOnGarbageBeforeMagic(t *testing.T) {
	respBody := []byte("sAN Run \x01")
	frame := encodeColaBFrame(respBody)
	// Prepend garbage that includes a partial, broken run of 0x02 bytes.
	seed := append([]byte{0x02, 0x02, 0x99, 0x02}, frame...)

	tr := newFakeTransport(seed)
	f := NewColaBFramer(tr)
	resp, err := f.Exchange(context.Background(), Build(KindMethodInvocation, "Run", NewCommandBuilder(KindMethodInvocation, "Run")))
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if !bytes.Equal(resp.Buffer(), respBody) {
		t.Fatalf("response buffer = % X, want % X", resp.Buffer(), respBody)
	}
}
