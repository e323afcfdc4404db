package pipeline

import (
	"errors"
	"fmt"

	"github.com/PlayOffP/ytdlp-service/internal/transcoder"
)

// ErrDownloadFailed indicates a network or IO fault while fetching the
// resolved source.
var ErrDownloadFailed = errors.New("source download failed")

// SizeCeilingError reports an input rejected for exceeding the absolute
// per-request ceiling, either up front from the announced length or
// mid-download from the running byte count.
type SizeCeilingError struct {
	// SizeBytes is the announced or observed size. When the transfer was
	// aborted mid-download it is a lower bound.
	SizeBytes int64
}

func (e *SizeCeilingError) Error() string {
	return fmt.Sprintf("input is %.0f MB, exceeds the %d MB ceiling",
		float64(e.SizeBytes)/transcoder.MiB, transcoder.InputCeiling/transcoder.MiB)
}
