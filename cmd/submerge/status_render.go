package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"submerge/internal/ipc"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 14
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// sessionLines renders the readiness view shared by status and the capture
// commands.
func sessionLines(st ipc.SessionStatus, colorize bool) []string {
	lines := make([]string, 0, 6)
	lines = append(lines, slotLine("Video", st.Video, colorize))
	lines = append(lines, slotLine("Subtitle", st.Subtitle, colorize))
	lines = append(lines, renderStatusLine("Language", statusInfo, fmt.Sprintf("%s (%s)", st.Language, st.LanguageLabel), colorize))

	switch {
	case st.Busy:
		lines = append(lines, renderStatusLine("Merge", statusInfo, "Merging...", colorize))
	case st.LastOutcome != nil && st.LastOutcome.Succeeded:
		lines = append(lines, renderStatusLine("Merge", statusOK, st.LastOutcome.Display, colorize))
	case st.LastOutcome != nil:
		lines = append(lines, renderStatusLine("Merge", statusError, st.LastOutcome.Display, colorize))
	case st.Ready:
		lines = append(lines, renderStatusLine("Merge", statusOK, "Ready", colorize))
	default:
		lines = append(lines, renderStatusLine("Merge", statusWarn, "Waiting for video and subtitle", colorize))
	}
	if st.ResetAt != "" {
		lines = append(lines, renderStatusLine("Reset", statusInfo, "at "+st.ResetAt, colorize))
	}
	if st.Deferred > 0 {
		lines = append(lines, renderStatusLine("Deferred", statusInfo, fmt.Sprintf("%d event(s) until reset", st.Deferred), colorize))
	}
	return lines
}

func slotLine(label string, slot ipc.Slot, colorize bool) string {
	if !slot.Present {
		return renderStatusLine(label, statusWarn, "not set", colorize)
	}
	return renderStatusLine(label, statusOK, slot.Path, colorize)
}

func dependencyLines(deps []ipc.DependencyStatus, colorize bool) []string {
	lines := make([]string, 0, len(deps))
	for _, dep := range deps {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, dep.Detail, colorize))
	}
	return lines
}
