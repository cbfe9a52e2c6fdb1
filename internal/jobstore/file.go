package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

const statusFileName = "status.json"

// FileStore keeps one status.json per job inside the jobs directory. Writes
// go through a temp file and rename so a concurrent reader never sees a torn
// document.
type FileStore struct {
	root string
}

// NewFileStore constructs a file-backed store rooted at the jobs directory.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create jobs directory: %w", err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) statusPath(jobID string) string {
	return filepath.Join(s.root, jobID, statusFileName)
}

// Put replaces the job's status document.
func (s *FileStore) Put(_ context.Context, doc Document) error {
	if err := validateJobID(doc.JobID); err != nil {
		return err
	}

	path := s.statusPath(doc.JobID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create job directory: %w", err)
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode status document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), statusFileName+".*")
	if err != nil {
		return fmt.Errorf("create temp status file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write status document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close status document: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace status document: %w", err)
	}
	return nil
}

// Get reads the job's status document; ok is false for unknown ids.
func (s *FileStore) Get(_ context.Context, jobID string) (Document, bool, error) {
	if err := validateJobID(jobID); err != nil {
		return Document{}, false, err
	}

	body, err := os.ReadFile(s.statusPath(jobID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, false, nil
		}
		return Document{}, false, fmt.Errorf("read status document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return Document{}, false, fmt.Errorf("decode status document: %w", err)
	}
	return doc, true, nil
}

// List returns every stored status document ordered by job id.
func (s *FileStore) List(ctx context.Context) ([]Document, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read jobs directory: %w", err)
	}

	var docs []Document
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		doc, ok, err := s.Get(ctx, entry.Name())
		if err != nil || !ok {
			// Job directories without a status document are still being
			// created; skip them rather than failing the listing.
			continue
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].JobID < docs[j].JobID })
	return docs, nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error {
	return nil
}
