package merge

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrBusy reports that another merge holds the orchestrator.
	ErrBusy = errors.New("merge already in progress")
	// ErrLaunchFailure reports that the muxer could not be started.
	ErrLaunchFailure = errors.New("muxer launch failed")
	// ErrToolExit reports that the muxer exited with a non-zero status.
	ErrToolExit = errors.New("muxer exited with error")
	// ErrTimeout reports that the muxer exceeded the configured timeout.
	ErrTimeout = errors.New("muxer timed out")
)

// Kind classifies a merge outcome.
type Kind string

const (
	KindSuccess Kind = "success"
	KindLaunch  Kind = "launch"
	KindExit    Kind = "exit"
	KindTimeout Kind = "timeout"
	KindBusy    Kind = "busy"
)

// Outcome is the result of one merge attempt.
type Outcome struct {
	Kind       Kind
	OutputPath string
	Message    string
	// ExitCode is -1 when the tool never produced an exit status.
	ExitCode int
	Duration time.Duration
	Err      error
}

// Succeeded reports whether the tool exited cleanly.
func (o Outcome) Succeeded() bool {
	return o.Kind == KindSuccess
}

// Display renders the outcome for the user-facing status surface.
func (o Outcome) Display() string {
	if o.Succeeded() {
		return "Merged: " + o.OutputPath
	}
	if o.Message == "" {
		return "Merge failed"
	}
	return "Merge failed: " + o.Message
}

func success(output string, elapsed time.Duration) Outcome {
	return Outcome{Kind: KindSuccess, OutputPath: output, Duration: elapsed}
}

func failure(kind Kind, sentinel error, msg string, exitCode int, elapsed time.Duration) Outcome {
	return Outcome{
		Kind:     kind,
		Message:  msg,
		ExitCode: exitCode,
		Duration: elapsed,
		Err:      fmt.Errorf("%w: %s", sentinel, msg),
	}
}
