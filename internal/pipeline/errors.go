package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFetch marks a failed download of a required remote resource.
	ErrFetch = errors.New("fetch failed")
	// ErrEncoder marks a nonzero exit from an encoder invocation.
	ErrEncoder = errors.New("encoder failed")
	// ErrNoScenes marks a request that produced zero renderable scenes.
	ErrNoScenes = errors.New("no images")
	// ErrQueueFull is returned by Submit when the job queue has no room.
	ErrQueueFull = errors.New("render queue is full")
)

// failure pairs the internal error chain with the text persisted in the
// job's failed status document. The chain keeps full stage context for
// logging; the message is what clients see when polling.
type failure struct {
	cause   error
	message string
}

func (f *failure) Error() string {
	if f.cause != nil {
		return f.cause.Error()
	}
	return f.message
}

func (f *failure) Unwrap() error {
	return f.cause
}

// newFailure tags cause with marker and records the client-visible message.
func newFailure(marker error, stage, message string, cause error) error {
	var chain error
	if cause != nil {
		chain = fmt.Errorf("%w: %s: %w", marker, stage, cause)
	} else {
		chain = fmt.Errorf("%w: %s", marker, stage)
	}
	return &failure{cause: chain, message: message}
}

// statusMessage extracts the text recorded in the failed status document.
func statusMessage(err error) string {
	var f *failure
	if errors.As(err, &f) {
		return f.message
	}
	return err.Error()
}

// excerpt bounds diagnostic output to at most limit bytes. A nonpositive
// limit disables truncation.
func excerpt(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return strings.ToValidUTF8(s[:limit], "")
}
