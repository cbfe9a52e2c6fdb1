package render

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoClips is returned when a request yields zero renderable scenes. It is
// a structural failure, distinct from an encoder failure.
var ErrNoClips = errors.New("no images")

// EncoderError carries the diagnostics of a failed encoder invocation. The
// captured stderr is the payload surfaced (excerpted) in the job's status
// document.
type EncoderError struct {
	Op       string
	ExitCode int
	Stderr   string
}

func (e *EncoderError) Error() string {
	detail := strings.TrimSpace(e.Stderr)
	if detail == "" {
		detail = "no diagnostic output"
	}
	return fmt.Sprintf("%s: encoder exited with code %d: %s", e.Op, e.ExitCode, detail)
}

// Diagnostic returns the raw captured stderr for status reporting.
func (e *EncoderError) Diagnostic() string {
	return e.Stderr
}

// AsEncoderError unwraps an EncoderError from an error chain.
func AsEncoderError(err error) (*EncoderError, bool) {
	var encErr *EncoderError
	if errors.As(err, &encErr) {
		return encErr, true
	}
	return nil, false
}
