// Package fetch retrieves remote media sources into job working directories.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// copyBufferSize keeps large media off the heap in one piece; bodies are
// streamed to disk in 64 KiB chunks.
const copyBufferSize = 64 * 1024

// Client downloads remote resources with a bounded per-request timeout.
type Client struct {
	httpClient *http.Client
}

// NewClient constructs a fetcher. A nonpositive timeout falls back to 60s.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// Fetch performs a streaming GET of url into dest. A non-2xx response or
// transport failure returns an error; partially written files are removed.
// There is no retry; the caller decides whether a missing resource is fatal.
func (c *Client) Fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", url, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(out, resp.Body, buf); err != nil {
		out.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("close %s: %w", dest, err)
	}
	return nil
}
