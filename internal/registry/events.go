package registry

import "fmt"

// EventKind identifies a capture event.
type EventKind string

const (
	EventVideo    EventKind = "video"
	EventSubtitle EventKind = "subtitle"
	EventLanguage EventKind = "language"
	EventReset    EventKind = "reset"
)

// Event is one capture event delivered by the presentation layer.
// Value holds a path or language code; it is ignored for resets.
type Event struct {
	Kind  EventKind
	Value string
}

// VideoEvent builds a video capture event.
func VideoEvent(path string) Event { return Event{Kind: EventVideo, Value: path} }

// SubtitleEvent builds a subtitle capture event.
func SubtitleEvent(path string) Event { return Event{Kind: EventSubtitle, Value: path} }

// LanguageEvent builds a language selection event.
func LanguageEvent(code string) Event { return Event{Kind: EventLanguage, Value: code} }

// ResetEvent builds a reset event.
func ResetEvent() Event { return Event{Kind: EventReset} }

// Apply performs the mutation an event describes.
func (r *Registry) Apply(ev Event) error {
	switch ev.Kind {
	case EventVideo:
		r.SetVideo(ev.Value)
	case EventSubtitle:
		r.SetSubtitle(ev.Value)
	case EventLanguage:
		return r.SetLanguage(ev.Value)
	case EventReset:
		r.Reset()
	default:
		return fmt.Errorf("unknown capture event %q", ev.Kind)
	}
	return nil
}
