package runner

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunCapturesStdout(t *testing.T) {
	t.Parallel()

	res, err := Run(context.Background(), 10*time.Second, "sh", "-c", "echo hello")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if got := string(res.Stdout); got != "hello\n" {
		t.Errorf("Stdout = %q, want %q", got, "hello\n")
	}
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	t.Parallel()

	res, err := Run(context.Background(), 10*time.Second, "sh", "-c", "echo bad >&2; exit 3")
	if err != nil {
		t.Fatalf("Run() error = %v, want nil for non-zero exit", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if got := string(res.Stderr); got != "bad\n" {
		t.Errorf("Stderr = %q, want %q", got, "bad\n")
	}
}

func TestRunTimeoutKillsProcess(t *testing.T) {
	t.Parallel()

	start := time.Now()
	_, err := Run(context.Background(), 200*time.Millisecond, "sh", "-c", "sleep 30")
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Run() error = %v, want ErrTimeout", err)
	}
	if elapsed > 5*time.Second {
		t.Errorf("Run() took %v, process was not killed promptly", elapsed)
	}
}

func TestRunCanceledContextIsNotTimeout(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	_, err := Run(ctx, 30*time.Second, "sh", "-c", "sleep 30")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("caller cancellation must not be reported as a timeout")
	}
}

func TestRunStartFailure(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), time.Second, "definitely-not-a-real-binary-xyz")
	if err == nil {
		t.Fatal("Run() error = nil, want start failure")
	}
}
