package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/PlayOffP/ytdlp-service/internal/logging"
)

// ErrTimeout indicates the process exceeded its wall-clock budget and was
// force-terminated. It is distinct from a non-zero exit, which is reported
// through Result.ExitCode with a nil error.
var ErrTimeout = errors.New("process timed out")

// Result captures the outcome of a completed process invocation.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Run executes a single external process with a hard wall-clock timeout.
//
// The process is started in its own process group so that on timeout or
// caller cancellation the whole tree is killed, never leaving an orphan
// behind. A non-zero exit is not an error here: the caller inspects
// Result.ExitCode and Result.Stderr. Run returns a non-nil error only for
// start failures, timeouts (ErrTimeout), and context cancellation.
func Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error) {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.Command(name, args...)
	setProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("failed to start %s: %w", name, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		res := Result{
			ExitCode: cmd.ProcessState.ExitCode(),
			Stdout:   stdout.Bytes(),
			Stderr:   stderr.Bytes(),
		}
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				// Expected for failing tools; the exit code tells the story.
				return res, nil
			}
			return res, fmt.Errorf("%s: %w", name, err)
		}
		return res, nil

	case <-runCtx.Done():
		killProcessGroup(cmd)
		<-done // reap, the process is dead after the group kill

		res := Result{
			ExitCode: -1,
			Stdout:   stdout.Bytes(),
			Stderr:   stderr.Bytes(),
		}

		// A parent-context cancellation (client gone, shutdown) is not a
		// timeout; report it as such so callers do not escalate tiers.
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		logging.Warn("%s killed after exceeding %v timeout (ran %v)", name, timeout, time.Since(start).Round(time.Millisecond))
		return res, fmt.Errorf("%s: %w after %v", name, ErrTimeout, timeout)
	}
}
