// Package pipeline drives rendering jobs from queued to a terminal status.
//
// The orchestrator owns the per-job state machine (downloading, rendering,
// mixing, done or failed) and is the sole writer of a job's status document
// once the job is picked up. The pool bounds how many jobs run at once and
// applies backpressure when the queue is full.
package pipeline
