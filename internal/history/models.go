package history

import "time"

// Status is the lifecycle state of a recorded merge.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// ParseStatus maps user input onto a Status.
func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusRunning, StatusSucceeded, StatusFailed:
		return Status(value), true
	}
	return "", false
}

// Record is one merge attempt.
type Record struct {
	ID           string     `json:"id"`
	VideoPath    string     `json:"video_path"`
	SubtitlePath string     `json:"subtitle_path"`
	Language     string     `json:"language"`
	OutputPath   string     `json:"output_path"`
	Status       Status     `json:"status"`
	FailureKind  string     `json:"failure_kind,omitempty"`
	Message      string     `json:"message,omitempty"`
	ExitCode     *int       `json:"exit_code,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// Duration reports how long the merge ran, or zero while it is running.
func (r Record) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Completion carries the outcome written by Finish.
type Completion struct {
	Status      Status
	OutputPath  string
	FailureKind string
	Message     string
	// ExitCode is stored only when it is >= 0.
	ExitCode   int
	FinishedAt time.Time
}
