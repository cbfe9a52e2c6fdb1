// Package runner executes external encoder processes for the pipeline.
//
// This is the only place framecast spawns subprocesses. A nonzero exit is
// not an error at this layer; callers interpret exit codes and captured
// diagnostics themselves.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result captures the outcome of one subprocess invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner spawns subprocesses and captures their output.
type Runner struct{}

// New constructs a Runner.
func New() *Runner {
	return &Runner{}
}

// Run executes argv with an optional working directory. The returned error is
// non-nil only when the process could not be spawned or the context ended;
// nonzero exits are reported through Result.ExitCode. Output is decoded
// best-effort with invalid UTF-8 sequences dropped.
func (r *Runner) Run(ctx context.Context, argv []string, dir string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, errors.New("empty argument vector")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: decode(stdout.Bytes()),
		Stderr: decode(stderr.Bytes()),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, fmt.Errorf("run %s: %w", argv[0], ctxErr)
			}
			return result, nil
		}
		return result, fmt.Errorf("run %s: %w", argv[0], err)
	}
	return result, nil
}

func decode(b []byte) string {
	return strings.ToValidUTF8(string(b), "")
}
