package streaming

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.WriteTimeout != 30*time.Second {
		t.Errorf("Expected WriteTimeout=30s, got %v", opts.WriteTimeout)
	}
	if opts.IdleTimeout != 60*time.Second {
		t.Errorf("Expected IdleTimeout=60s, got %v", opts.IdleTimeout)
	}
	if opts.ChunkSize != 64*1024 {
		t.Errorf("Expected ChunkSize=64KB, got %d", opts.ChunkSize)
	}
}

func TestWriterWrite(t *testing.T) {
	w := httptest.NewRecorder()
	sw := NewWriter(context.Background(), w, DefaultOptions())
	defer sw.Close()

	data := []byte("test data")
	n, err := sw.Write(data)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(data) {
		t.Errorf("Expected to write %d bytes, wrote %d", len(data), n)
	}

	written, _ := sw.Stats()
	if written != int64(len(data)) {
		t.Errorf("Expected bytes written=%d, got %d", len(data), written)
	}
	if got := w.Body.String(); got != "test data" {
		t.Errorf("Body = %q, want %q", got, "test data")
	}
}

func TestWriterChunksLargePayload(t *testing.T) {
	w := httptest.NewRecorder()
	opts := DefaultOptions()
	opts.ChunkSize = 8

	sw := NewWriter(context.Background(), w, opts)
	defer sw.Close()

	data := bytes.Repeat([]byte("abcd"), 16) // 64 bytes, 8 chunks
	n, err := sw.Write(data)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(data) {
		t.Errorf("Expected to write %d bytes, wrote %d", len(data), n)
	}
	if !bytes.Equal(w.Body.Bytes(), data) {
		t.Error("Body does not match written payload")
	}
}

func TestWriterRejectsAfterClose(t *testing.T) {
	w := httptest.NewRecorder()
	sw := NewWriter(context.Background(), w, DefaultOptions())

	if err := sw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sw.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	if _, err := sw.Write([]byte("late")); !errors.Is(err, ErrStreamCanceled) {
		t.Errorf("Write after Close = %v, want ErrStreamCanceled", err)
	}
}

func TestWriterClientGone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := httptest.NewRecorder()

	sw := NewWriter(ctx, w, DefaultOptions())
	defer sw.Close()

	cancel()

	if _, err := sw.Write([]byte("data")); !errors.Is(err, ErrClientGone) {
		t.Errorf("Write after cancel = %v, want ErrClientGone", err)
	}
}

func TestStreamDeliversReader(t *testing.T) {
	w := httptest.NewRecorder()
	payload := bytes.Repeat([]byte("x"), 200*1024)

	sent, err := Stream(context.Background(), w, bytes.NewReader(payload), DefaultOptions())
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if sent != int64(len(payload)) {
		t.Errorf("sent = %d, want %d", sent, len(payload))
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff header")
	}
	if !bytes.Equal(w.Body.Bytes(), payload) {
		t.Error("delivered body does not match payload")
	}
}

func TestStreamClientGoneMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := httptest.NewRecorder()
	_, err := Stream(ctx, w, bytes.NewReader([]byte("payload")), DefaultOptions())
	if !errors.Is(err, ErrClientGone) {
		t.Errorf("Stream = %v, want ErrClientGone", err)
	}
}
