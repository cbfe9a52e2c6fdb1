package jobstore

import "strings"

// Status represents the lifecycle of a rendering job.
type Status string

const (
	StatusQueued      Status = "queued"
	StatusDownloading Status = "downloading"
	StatusRendering   Status = "rendering"
	StatusMixing      Status = "mixing"
	StatusDone        Status = "done"
	StatusFailed      Status = "failed"
	// StatusNotFound is a query-time response for unknown job ids; it is
	// never stored.
	StatusNotFound Status = "not_found"
)

var allStatuses = []Status{
	StatusQueued,
	StatusDownloading,
	StatusRendering,
	StatusMixing,
	StatusDone,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ParseStatus converts a string into a known storable Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Terminal reports whether the status ends the job's lifecycle.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Document is the complete, self-consistent status snapshot for one job.
// Progress is informational and monotonically non-decreasing on the success
// path; Error is present only when failed, VideoURL only when done.
type Document struct {
	JobID    string `json:"job_id"`
	Status   Status `json:"status"`
	Progress *int   `json:"progress,omitempty"`
	Error    string `json:"error,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
}

// Progress wraps an int for inclusion in a Document.
func Progress(value int) *int {
	return &value
}

// NotFound builds the query-time document returned for unknown job ids.
func NotFound(jobID string) Document {
	return Document{JobID: jobID, Status: StatusNotFound}
}
