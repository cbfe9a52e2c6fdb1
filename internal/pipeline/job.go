package pipeline

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"framecast/internal/composition"
	"framecast/internal/config"
	"framecast/internal/jobstore"
)

// Job is one accepted rendering request, bound to its private working
// directory.
type Job struct {
	ID      string
	Dir     string
	Request composition.Request
}

// NewJob allocates an identifier and working directory for the request,
// persists the raw payload for later inspection, and writes the initial
// queued status document. Once NewJob returns, status polling for the id
// resolves.
func NewJob(ctx context.Context, cfg *config.Config, store jobstore.Store, req composition.Request, payload []byte) (*Job, error) {
	id := newJobID()
	dir := cfg.JobDir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create job dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "payload.json"), payload, 0o644); err != nil {
		return nil, fmt.Errorf("persist payload: %w", err)
	}
	doc := jobstore.Document{
		JobID:    id,
		Status:   jobstore.StatusQueued,
		Progress: jobstore.Progress(0),
	}
	if err := store.Put(ctx, doc); err != nil {
		return nil, fmt.Errorf("persist queued status: %w", err)
	}
	return &Job{ID: id, Dir: dir, Request: req}, nil
}

// ResultPath is the public retrieval path for the job's finished artifact.
func (j *Job) ResultPath() string {
	return "/result/" + j.ID + ".mp4"
}

func newJobID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
