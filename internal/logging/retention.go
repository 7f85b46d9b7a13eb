package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RetentionTarget specifies a directory and filename pattern to prune.
type RetentionTarget struct {
	Dir     string
	Pattern string
	Exclude []string
}

// CleanupOldLogs removes files matching the provided targets that are older
// than retentionDays. A retentionDays value of 0 disables pruning.
func CleanupOldLogs(logger *slog.Logger, retentionDays int, targets ...RetentionTarget) {
	if retentionDays <= 0 {
		return
	}
	if logger == nil {
		logger = NewNop()
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	for _, target := range targets {
		for _, path := range target.expired(cutoff) {
			if err := os.Remove(path); err != nil {
				WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
					String("path", path),
					Error(err),
					String(FieldErrorHint, "check ownership of paths.log_dir"),
					String(FieldImpact, "old log file remains on disk"),
				)
				continue
			}
			logger.Info("old log removed",
				String("path", path),
				String(FieldEventType, "log_pruned"),
			)
		}
	}
}

// expired lists regular files in the target directory that match its pattern,
// are not excluded, and were last modified before cutoff.
func (t RetentionTarget) expired(cutoff time.Time) []string {
	dir := strings.TrimSpace(t.Dir)
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	skip := make(map[string]struct{}, len(t.Exclude))
	for _, path := range t.Exclude {
		if abs, ok := absPath(path); ok {
			skip[abs] = struct{}{}
		}
	}
	pattern := strings.TrimSpace(t.Pattern)

	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if pattern != "" {
			if matched, err := filepath.Match(pattern, entry.Name()); err != nil || !matched {
				continue
			}
		}
		full, ok := absPath(filepath.Join(dir, entry.Name()))
		if !ok {
			continue
		}
		if _, excluded := skip[full]; excluded {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		paths = append(paths, full)
	}
	return paths
}

func absPath(path string) (string, bool) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", false
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", false
	}
	return abs, true
}
