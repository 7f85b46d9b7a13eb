package ipc

import (
	"time"

	"submerge/internal/deps"
	"submerge/internal/history"
	"submerge/internal/session"
)

// ServiceName is the RPC service the daemon registers.
const ServiceName = "Submerge"

// DependencyStatus describes availability of an external dependency.
type DependencyStatus = deps.Status

// HistoryRecord is one merge history row.
type HistoryRecord = history.Record

// Slot mirrors a registry input slot.
type Slot struct {
	Path    string `json:"path,omitempty"`
	Present bool   `json:"present"`
}

// MergeResult describes a completed merge cycle.
type MergeResult struct {
	ID           string `json:"id"`
	VideoPath    string `json:"video_path"`
	SubtitlePath string `json:"subtitle_path"`
	Language     string `json:"language"`
	Succeeded    bool   `json:"succeeded"`
	Kind         string `json:"kind"`
	OutputPath   string `json:"output_path,omitempty"`
	Message      string `json:"message,omitempty"`
	ExitCode     int    `json:"exit_code"`
	DurationMS   int64  `json:"duration_ms"`
	Display      string `json:"display"`
}

// SessionStatus is the readiness and result surface of the daemon session.
type SessionStatus struct {
	Ready         bool         `json:"ready"`
	InputsReady   bool         `json:"inputs_ready"`
	Busy          bool         `json:"busy"`
	Active        bool         `json:"active"`
	MergeID       string       `json:"merge_id,omitempty"`
	Video         Slot         `json:"video"`
	Subtitle      Slot         `json:"subtitle"`
	Language      string       `json:"language"`
	LanguageLabel string       `json:"language_label"`
	Message       string       `json:"message,omitempty"`
	LastOutcome   *MergeResult `json:"last_outcome,omitempty"`
	ResetAt       string       `json:"reset_at,omitempty"`
	Deferred      int          `json:"deferred_events"`
}

// SetPathRequest delivers a video or subtitle capture event.
type SetPathRequest struct {
	Path string `json:"path"`
}

// SetLanguageRequest selects the track language.
type SetLanguageRequest struct {
	Code string `json:"code"`
}

// ResetRequest clears the registry.
type ResetRequest struct{}

// InputResponse returns the session state after a capture event.
type InputResponse struct {
	Session SessionStatus `json:"session"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon and session status information.
type StatusResponse struct {
	Running       bool               `json:"running"`
	PID           int                `json:"pid"`
	StartedAt     string             `json:"started_at,omitempty"`
	LockPath      string             `json:"lock_path"`
	HistoryDBPath string             `json:"history_db_path"`
	Session       SessionStatus      `json:"session"`
	LastMerge     *MergeResult       `json:"last_merge,omitempty"`
	Dependencies  []DependencyStatus `json:"dependencies"`
	HistoryStats  map[string]int     `json:"history_stats"`
}

// MergeRequest triggers a merge, optionally waiting for its outcome.
type MergeRequest struct {
	Wait bool `json:"wait"`
	// TimeoutMillis bounds the wait; zero waits until the merge finishes.
	TimeoutMillis int64 `json:"timeout_ms"`
}

// MergeResponse reports the merge ID and, when waited for, its result.
type MergeResponse struct {
	ID        string       `json:"id"`
	Completed bool         `json:"completed"`
	Result    *MergeResult `json:"result,omitempty"`
}

// HistoryRequest filters history listing.
type HistoryRequest struct {
	Limit    int      `json:"limit"`
	Statuses []string `json:"statuses"`
}

// HistoryResponse contains history rows, newest first.
type HistoryResponse struct {
	Records []HistoryRecord `json:"records"`
}

// HistoryClearRequest removes finished merges.
type HistoryClearRequest struct{}

// HistoryClearResponse reports removed rows.
type HistoryClearResponse struct {
	Removed int64 `json:"removed"`
}

// StopRequest asks the daemon process to exit.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// NewMergeResult converts a session result into its wire form.
func NewMergeResult(res *session.Result) *MergeResult {
	if res == nil {
		return nil
	}
	out := &MergeResult{
		ID:           res.ID,
		VideoPath:    res.VideoPath,
		SubtitlePath: res.SubtitlePath,
		Language:     res.Language,
		Succeeded:    res.Outcome.Succeeded(),
		Kind:         string(res.Outcome.Kind),
		OutputPath:   res.Outcome.OutputPath,
		Message:      res.Outcome.Message,
		ExitCode:     res.Outcome.ExitCode,
		DurationMS:   res.Outcome.Duration.Milliseconds(),
		Display:      res.Outcome.Display(),
	}
	if out.Succeeded {
		out.ExitCode = 0
	}
	return out
}

func convertSession(st session.Status) SessionStatus {
	out := SessionStatus{
		Ready:         st.Ready,
		InputsReady:   st.InputsReady,
		Busy:          st.Busy,
		Active:        st.Active,
		MergeID:       st.MergeID,
		Video:         Slot{Path: st.Video.Path, Present: st.Video.Present},
		Subtitle:      Slot{Path: st.Subtitle.Path, Present: st.Subtitle.Present},
		Language:      st.Language.Code,
		LanguageLabel: st.Language.Label,
		Message:       st.Message,
		LastOutcome:   NewMergeResult(st.LastOutcome),
		Deferred:      st.Deferred,
	}
	if st.ResetAt != nil {
		out.ResetAt = st.ResetAt.Format(time.RFC3339)
	}
	return out
}
