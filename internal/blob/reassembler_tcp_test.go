package blob

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

type streamFakeTransport struct {
	data *bytes.Buffer
}

func (f *streamFakeTransport) Send(ctx context.Context, data []byte) error { return nil }

func (f *streamFakeTransport) Receive(ctx context.Context, buf []byte) (int, error) {
	n, err := f.data.Read(buf)
	if err == io.EOF {
		return n, visionary.ErrReceiveTimeout
	}
	return n, err
}

func (f *streamFakeTransport) Close() error { return nil }

func TestTCPReassemblerSkipsFirstReadThenDecodesBlob(t *testing.T) {
	seg0 := []byte{0x01, 0x02, 0x03}
	blob := buildBlobBuffer([][]byte{seg0})

	var stream bytes.Buffer
	stream.Write(make([]byte, tcpStreamHeaderSize)) // garbage first header-sized read, discarded
	stream.Write(blob)

	r := NewTCPReassembler(&streamFakeTransport{data: &stream})
	got, err := r.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(got) != string(blob) {
		t.Fatalf("got %d bytes, want %d bytes", len(got), len(blob))
	}
}

func TestTCPReassemblerResyncsOnGarbageBeforeHeader(t *testing.T) {
	seg0 := []byte{0xAA}
	blob := buildBlobBuffer([][]byte{seg0})

	var stream bytes.Buffer
	stream.Write(make([]byte, tcpStreamHeaderSize)) // initial skip
	stream.Write([]byte{0x00, 0x01, 0x02, 0x03})    // garbage, ending clear of the real magic
	stream.Write(blob)

	r := NewTCPReassembler(&streamFakeTransport{data: &stream})
	got, err := r.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(got) != string(blob) {
		t.Fatalf("got %d bytes, want %d bytes", len(got), len(blob))
	}
}
