package registry

import (
	"fmt"
	"strings"

	"submerge/internal/language"
)

// MergeRequest is an immutable set of merge inputs.
type MergeRequest struct {
	video    string
	subtitle string
	lang     string
}

// NewMergeRequest validates inputs and builds a request outside a registry.
func NewMergeRequest(video, subtitle, lang string) (MergeRequest, error) {
	video = strings.TrimSpace(video)
	subtitle = strings.TrimSpace(subtitle)
	if video == "" || subtitle == "" {
		return MergeRequest{}, ErrNotReady
	}
	code, ok := language.Normalize(lang)
	if !ok {
		return MergeRequest{}, fmt.Errorf("%w: %q", ErrInvalidLanguage, strings.TrimSpace(lang))
	}
	return MergeRequest{video: video, subtitle: subtitle, lang: code}, nil
}

// VideoPath returns the video reference.
func (m MergeRequest) VideoPath() string { return m.video }

// SubtitlePath returns the subtitle reference.
func (m MergeRequest) SubtitlePath() string { return m.subtitle }

// Language returns the three-letter track language code.
func (m MergeRequest) Language() string { return m.lang }


func (m MergeRequest) String() string {
	return fmt.Sprintf("video=%s subtitle=%s language=%s", m.video, m.subtitle, m.lang)
}
