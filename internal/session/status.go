package session

import (
	"time"

	"submerge/internal/language"
	"submerge/internal/registry"
)

// Status is the user-facing view of a session.
type Status struct {
	// Ready enables the merge trigger: both inputs present and no active cycle.
	Ready       bool          `json:"ready"`
	InputsReady bool          `json:"inputs_ready"`
	Busy        bool          `json:"busy"`
	Active      bool          `json:"active"`
	MergeID     string        `json:"merge_id,omitempty"`
	Video       registry.Slot `json:"video"`
	Subtitle    registry.Slot `json:"subtitle"`
	Language    language.Tag  `json:"language"`
	Revision    uint64        `json:"revision"`
	Message     string        `json:"message,omitempty"`
	LastOutcome *Result       `json:"-"`
	ResetAt     *time.Time    `json:"reset_at,omitempty"`
	Deferred    int           `json:"deferred_events"`
}

// Status reports readiness, activity and the last outcome awaiting reset.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.reg.Snapshot()
	st := Status{
		Ready:       snap.Ready && !s.active,
		InputsReady: snap.Ready,
		Busy:        s.merging,
		Active:      s.active,
		MergeID:     s.current,
		Video:       snap.Video,
		Subtitle:    snap.Subtitle,
		Language:    snap.Language,
		Revision:    snap.Revision,
		Deferred:    len(s.pending),
	}
	if s.merging {
		st.Message = "Merging..."
	}
	if s.last != nil {
		res := *s.last
		st.LastOutcome = &res
		st.Message = res.Outcome.Display()
	}
	if s.reset != nil {
		deadline := s.reset.Deadline()
		st.ResetAt = &deadline
	}
	return st
}
