package streaming

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/PlayOffP/ytdlp-service/internal/logging"
)

// Sentinel errors for artifact delivery.
var (
	// ErrWriteTimeout indicates a single write took longer than allowed,
	// usually a client draining the response too slowly.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone indicates the client disconnected mid-stream.
	ErrClientGone = errors.New("client disconnected")

	// ErrStreamCanceled indicates the stream was shut down from our side.
	ErrStreamCanceled = errors.New("stream canceled")
)

// Options controls delivery pacing.
type Options struct {
	// WriteTimeout bounds each individual write to the client.
	WriteTimeout time.Duration
	// IdleTimeout bounds the gap between successful writes.
	IdleTimeout time.Duration
	// ChunkSize splits large writes so a stalled client is noticed
	// within one chunk rather than one artifact.
	ChunkSize int
}

// DefaultOptions returns delivery pacing suitable for audio artifacts up
// to the output ceiling.
func DefaultOptions() Options {
	return Options{
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ChunkSize:    64 * 1024,
	}
}

// Writer wraps an http.ResponseWriter so a slow or vanished client
// cannot hold a pipeline workspace open indefinitely.
type Writer struct {
	dst     http.ResponseWriter
	flusher http.Flusher
	ctx     context.Context
	cancel  context.CancelFunc
	opts    Options

	mu        sync.Mutex
	closed    bool
	lastWrite time.Time
	written   int64
	started   time.Time
}

// NewWriter wraps w. The returned Writer must be Closed so its idle
// checker goroutine exits.
func NewWriter(ctx context.Context, w http.ResponseWriter, opts Options) *Writer {
	sctx, cancel := context.WithCancel(ctx)
	sw := &Writer{
		dst:       w,
		ctx:       sctx,
		cancel:    cancel,
		opts:      opts,
		started:   time.Now(),
		lastWrite: time.Now(),
	}
	if f, ok := w.(http.Flusher); ok {
		sw.flusher = f
	}
	if opts.IdleTimeout > 0 {
		go sw.watchIdle()
	}
	return sw
}

// Write sends p to the client in bounded chunks, failing fast when the
// client stalls or disconnects.
func (sw *Writer) Write(p []byte) (int, error) {
	sw.mu.Lock()
	closed := sw.closed
	sw.mu.Unlock()
	if closed {
		return 0, ErrStreamCanceled
	}

	total := 0
	for len(p) > 0 {
		if err := sw.ctx.Err(); err != nil {
			return total, sw.reason()
		}

		chunk := p
		if sw.opts.ChunkSize > 0 && len(chunk) > sw.opts.ChunkSize {
			chunk = chunk[:sw.opts.ChunkSize]
		}

		n, err := sw.writeOne(chunk)
		total += n
		if err != nil {
			return total, err
		}
		p = p[len(chunk):]

		if sw.flusher != nil {
			sw.flusher.Flush()
		}
	}
	return total, nil
}

func (sw *Writer) writeOne(chunk []byte) (int, error) {
	type outcome struct {
		n   int
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		n, err := sw.dst.Write(chunk)
		done <- outcome{n, err}
	}()

	var timeout <-chan time.Time
	if sw.opts.WriteTimeout > 0 {
		timer := time.NewTimer(sw.opts.WriteTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case out := <-done:
		if out.err == nil {
			sw.mu.Lock()
			sw.lastWrite = time.Now()
			sw.written += int64(out.n)
			sw.mu.Unlock()
		}
		return out.n, out.err
	case <-timeout:
		sw.cancel()
		return 0, ErrWriteTimeout
	case <-sw.ctx.Done():
		return 0, sw.reason()
	}
}

// watchIdle cancels the stream when no write has succeeded for longer
// than the idle timeout.
func (sw *Writer) watchIdle() {
	ticker := time.NewTicker(sw.opts.IdleTimeout / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sw.mu.Lock()
			idle := time.Since(sw.lastWrite)
			closed := sw.closed
			sw.mu.Unlock()
			if closed {
				return
			}
			if idle > sw.opts.IdleTimeout {
				logging.Warn("Stream idle for %v, dropping client", idle.Round(time.Second))
				sw.cancel()
				return
			}
		case <-sw.ctx.Done():
			return
		}
	}
}

// reason maps the context state to the matching sentinel.
func (sw *Writer) reason() error {
	if errors.Is(sw.ctx.Err(), context.Canceled) {
		return ErrClientGone
	}
	return ErrStreamCanceled
}

// Close stops the idle checker and rejects further writes. Idempotent.
func (sw *Writer) Close() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.closed {
		return nil
	}
	sw.closed = true
	sw.cancel()
	return nil
}

// Stats reports bytes delivered so far and elapsed streaming time.
func (sw *Writer) Stats() (int64, time.Duration) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.written, time.Since(sw.started)
}

// Stream copies r to the response with timeout protection, returning the
// byte count delivered. Callers set Content-Type and Content-Length
// before the first write.
func Stream(ctx context.Context, w http.ResponseWriter, r io.Reader, opts Options) (int64, error) {
	sw := NewWriter(ctx, w, opts)
	defer func() {
		if err := sw.Close(); err != nil {
			logging.Warn("Failed to close stream writer: %v", err)
		}
	}()

	w.Header().Set("X-Content-Type-Options", "nosniff")

	_, err := io.Copy(sw, r)

	sent, elapsed := sw.Stats()
	logging.Debug("Streamed %d bytes in %v", sent, elapsed.Round(time.Millisecond))
	return sent, err
}
