package deps

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrMuxerUnavailable reports that the configured muxer cannot be executed.
var ErrMuxerUnavailable = errors.New("muxer unavailable")

// MuxerRequirement describes the configured mkvmerge binary.
func MuxerRequirement(command string) Requirement {
	return Requirement{
		Name:        "mkvmerge",
		Command:     command,
		Description: "Required for merging subtitles into containers",
		VersionFlag: "--version",
	}
}

// ResolveMuxer turns the configured muxer (a bare name or a path) into an
// absolute path to an executable file.
func ResolveMuxer(command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", fmt.Errorf("%w: mkvmerge.binary is empty", ErrMuxerUnavailable)
	}
	resolved, err := resolveExecutable(command)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMuxerUnavailable, err)
	}
	return resolved, nil
}

// ProbeVersion runs "<muxer> --version" and returns the first line of output.
func ProbeVersion(ctx context.Context, command string) (string, error) {
	return probeVersion(ctx, command, "--version")
}

// MuxerStatus reports availability of the configured muxer for status output.
func MuxerStatus(ctx context.Context, command string) Status {
	return CheckBinaries(ctx, []Requirement{MuxerRequirement(command)})[0]
}
