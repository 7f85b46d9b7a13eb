// Package registry holds the pending merge inputs: one video reference, one
// subtitle reference and the selected track language.
//
// Capture events mutate the registry in any order; the readiness query and
// MergeRequest construction read a consistent view under a single lock.
package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"submerge/internal/language"
)

var (
	// ErrInvalidLanguage reports a language code outside the supported set.
	ErrInvalidLanguage = errors.New("unsupported language code")
	// ErrNotReady reports that a video or subtitle reference is still missing.
	ErrNotReady = errors.New("video and subtitle are both required")
)

// Slot is one pending file reference.
type Slot struct {
	Path    string `json:"path,omitempty"`
	Present bool   `json:"present"`
}

func slotFor(path string) Slot {
	path = strings.TrimSpace(path)
	return Slot{Path: path, Present: path != ""}
}

// Snapshot is a consistent copy of registry state.
type Snapshot struct {
	Video    Slot         `json:"video"`
	Subtitle Slot         `json:"subtitle"`
	Language language.Tag `json:"language"`
	Ready    bool         `json:"ready"`
	Revision uint64       `json:"revision"`
}

// Registry tracks the inputs of the next merge cycle.
type Registry struct {
	mu              sync.RWMutex
	video           Slot
	subtitle        Slot
	lang            string
	defaultLanguage string
	revision        uint64

	subMu       sync.Mutex
	subscribers map[int]chan Snapshot
	nextSubID   int
	published   uint64
}

// New constructs an empty registry whose language starts at defaultLanguage.
// An unsupported default falls back to language.Default.
func New(defaultLanguage string) *Registry {
	code, ok := language.Normalize(defaultLanguage)
	if !ok {
		code = language.Default
	}
	return &Registry{
		lang:            code,
		defaultLanguage: code,
		subscribers:     make(map[int]chan Snapshot),
	}
}

// SetVideo overwrites the video slot. An empty path clears it.
func (r *Registry) SetVideo(path string) {
	r.mutate(func() { r.video = slotFor(path) })
}

// SetSubtitle overwrites the subtitle slot. An empty path clears it.
func (r *Registry) SetSubtitle(path string) {
	r.mutate(func() { r.subtitle = slotFor(path) })
}

// SetLanguage selects the track language. Unsupported input leaves the
// current selection unchanged.
func (r *Registry) SetLanguage(code string) error {
	normalized, ok := language.Normalize(code)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, strings.TrimSpace(code))
	}
	r.mutate(func() { r.lang = normalized })
	return nil
}

// IsReady reports whether both file references are present.
func (r *Registry) IsReady() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.video.Present && r.subtitle.Present
}

// Language returns the selected three-letter code.
func (r *Registry) Language() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lang
}

// DefaultLanguage returns the code restored by Reset.
func (r *Registry) DefaultLanguage() string {
	return r.defaultLanguage
}

// Reset clears both slots and restores the default language.
func (r *Registry) Reset() {
	r.mutate(func() {
		r.video = Slot{}
		r.subtitle = Slot{}
		r.lang = r.defaultLanguage
	})
}

// Snapshot returns a consistent copy of the current state.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() Snapshot {
	tag, ok := language.Lookup(r.lang)
	if !ok {
		tag = language.Tag{Code: r.lang, Label: language.Label(r.lang)}
	}
	return Snapshot{
		Video:    r.video,
		Subtitle: r.subtitle,
		Language: tag,
		Ready:    r.video.Present && r.subtitle.Present,
		Revision: r.revision,
	}
}

// Request builds an immutable MergeRequest from the current state.
func (r *Registry) Request() (MergeRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.video.Present || !r.subtitle.Present {
		return MergeRequest{}, ErrNotReady
	}
	return MergeRequest{video: r.video.Path, subtitle: r.subtitle.Path, lang: r.lang}, nil
}

func (r *Registry) mutate(fn func()) {
	r.mu.Lock()
	fn()
	r.revision++
	snap := r.snapshotLocked()
	r.mu.Unlock()
	r.publish(snap)
}
