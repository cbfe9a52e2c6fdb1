package runner_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"framecast/internal/runner"
)

func TestRunCapturesOutput(t *testing.T) {
	r := runner.New()
	result, err := r.Run(context.Background(), []string{"sh", "-c", "echo out; echo err >&2"}, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", result.ExitCode)
	}
	if strings.TrimSpace(result.Stdout) != "out" {
		t.Errorf("stdout = %q", result.Stdout)
	}
	if strings.TrimSpace(result.Stderr) != "err" {
		t.Errorf("stderr = %q", result.Stderr)
	}
}

func TestRunNonzeroExitIsNotAnError(t *testing.T) {
	r := runner.New()
	result, err := r.Run(context.Background(), []string{"sh", "-c", "echo boom >&2; exit 3"}, "")
	if err != nil {
		t.Fatalf("Run returned error for nonzero exit: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", result.ExitCode)
	}
	if !strings.Contains(result.Stderr, "boom") {
		t.Errorf("stderr = %q, want diagnostic", result.Stderr)
	}
}

func TestRunSpawnFailure(t *testing.T) {
	r := runner.New()
	_, err := r.Run(context.Background(), []string{"/nonexistent/binary-xyz"}, "")
	if err == nil {
		t.Fatal("expected spawn error")
	}
}

func TestRunEmptyArgv(t *testing.T) {
	r := runner.New()
	if _, err := r.Run(context.Background(), nil, ""); err == nil {
		t.Fatal("expected error for empty argv")
	}
}

func TestRunRespectsWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	r := runner.New()
	result, err := r.Run(context.Background(), []string{"pwd"}, dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(result.Stdout) != dir {
		t.Errorf("pwd = %q, want %q", strings.TrimSpace(result.Stdout), dir)
	}
}

func TestRunContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	r := runner.New()
	_, err := r.Run(ctx, []string{"sleep", "10"}, "")
	if err == nil {
		t.Fatal("expected error when context expires")
	}
}

func TestRunDropsInvalidUTF8(t *testing.T) {
	r := runner.New()
	result, err := r.Run(context.Background(), []string{"sh", "-c", `printf 'ok\xff\xfe'`}, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.HasPrefix(result.Stdout, "ok") {
		t.Errorf("stdout = %q", result.Stdout)
	}
	for _, r := range result.Stdout {
		if r == '�' {
			t.Fatalf("replacement rune present in %q", result.Stdout)
		}
	}
}
