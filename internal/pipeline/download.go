package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/PlayOffP/ytdlp-service/internal/logging"
	"github.com/PlayOffP/ytdlp-service/internal/metrics"
	"github.com/PlayOffP/ytdlp-service/internal/transcoder"
)

// download streams the resolved source URL into dest, enforcing the
// absolute size ceiling both from the announced Content-Length and from
// the running byte count, so an oversized transfer aborts mid-flight
// instead of completing.
func (p *Pipeline) download(ctx context.Context, sourceURL, dest string) (int64, error) {
	dlCtx := ctx
	if p.downloadTimeout > 0 {
		var cancel context.CancelFunc
		dlCtx, cancel = context.WithTimeout(ctx, p.downloadTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(dlCtx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Debug("Failed to close download body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return 0, fmt.Errorf("%w: upstream returned %s", ErrDownloadFailed, resp.Status)
	}

	// Fast rejection when the server announces the size up front.
	if resp.ContentLength > transcoder.InputCeiling {
		return 0, &SizeCeilingError{SizeBytes: resp.ContentLength}
	}

	out, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer func() {
		if err := out.Close(); err != nil {
			logging.Warn("Failed to close download file %s: %v", dest, err)
		}
	}()

	start := time.Now()

	// Reading at most ceiling+1 bytes makes the overage check exact while
	// never buffering an unbounded transfer.
	n, err := io.Copy(out, io.LimitReader(resp.Body, transcoder.InputCeiling+1))
	metrics.DownloadedBytesTotal.Add(float64(n))
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if n > transcoder.InputCeiling {
		return n, &SizeCeilingError{SizeBytes: n}
	}

	logging.Info("Downloaded %.1f MB in %v", float64(n)/transcoder.MiB, time.Since(start).Round(time.Millisecond))
	return n, nil
}
