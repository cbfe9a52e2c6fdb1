package jobstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"framecast/internal/config"
)

// Store abstracts status document persistence. Implementations replace the
// whole document on every Put.
type Store interface {
	Put(ctx context.Context, doc Document) error
	Get(ctx context.Context, jobID string) (Document, bool, error)
	List(ctx context.Context) ([]Document, error)
	Close() error
}

// Open selects and initializes the backend named by the configuration.
func Open(cfg *config.Config) (Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	switch cfg.Store.Backend {
	case "file":
		return NewFileStore(cfg.Paths.JobsDir)
	case "sqlite":
		return OpenSQLite(cfg)
	default:
		return nil, fmt.Errorf("job store: unknown backend %q", cfg.Store.Backend)
	}
}

// validateJobID rejects identifiers that could escape the jobs directory.
func validateJobID(jobID string) error {
	if strings.TrimSpace(jobID) == "" {
		return errors.New("job id is empty")
	}
	if strings.ContainsAny(jobID, "/\\") || strings.Contains(jobID, "..") {
		return fmt.Errorf("job id %q contains path elements", jobID)
	}
	return nil
}
