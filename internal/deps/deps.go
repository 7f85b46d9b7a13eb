package deps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const versionProbeTimeout = 10 * time.Second

// Requirement defines an external dependency submerge relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// VersionFlag, when set, is passed to the resolved binary and the first
	// line of its output becomes the status detail.
	VersionFlag string
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
	Optional    bool   `json:"optional,omitempty"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// CheckBinaries resolves each requirement to an executable file and, where
// requested, probes its version.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := resolveExecutable(cmd)
		if err != nil {
			status.Detail = err.Error()
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		if req.VersionFlag != "" {
			if version, err := probeVersion(ctx, resolved, req.VersionFlag); err == nil {
				status.Detail = version
			}
		}
		results = append(results, status)
	}
	return results
}

// resolveExecutable looks bare names up on PATH and returns the absolute path
// of an executable regular file.
func resolveExecutable(command string) (string, error) {
	if !strings.ContainsRune(command, filepath.Separator) {
		resolved, err := exec.LookPath(command)
		if err != nil {
			return "", fmt.Errorf("%q not found on PATH", command)
		}
		command = resolved
	}
	abs, err := filepath.Abs(command)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", command, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s does not exist", abs)
		}
		return "", err
	}
	if !isExecutable(info) {
		return "", fmt.Errorf("%s is not an executable file", abs)
	}
	return abs, nil
}

func probeVersion(ctx context.Context, command, flag string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	probeCtx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(probeCtx, command, flag).Output() //nolint:gosec
	if err != nil {
		return "", fmt.Errorf("probe %s version: %w", filepath.Base(command), err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed, nil
		}
	}
	return "", fmt.Errorf("probe %s version: empty output", filepath.Base(command))
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
