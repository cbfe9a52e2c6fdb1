// Package jobstore persists per-job status documents.
//
// A status document is always written as a whole-document replace, never a
// partial update, so pollers observe a consistent snapshot at every read.
// Two backends exist: a file backend that keeps status.json inside each
// job's working directory (atomic rename on write), and a SQLite backend
// that replaces a single row per job.
package jobstore
