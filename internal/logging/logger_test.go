package logging_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"submerge/internal/config"
	"submerge/internal/logging"
)

func newFileLogger(t *testing.T, format, level string) (*slog.Logger, func() string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "submerge.log")
	logger, err := logging.New(logging.Options{
		Format:           format,
		Level:            level,
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	read := func() string {
		t.Helper()
		data, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		return string(data)
	}
	return logger, read
}

func TestNewFromConfigConsole(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg, "debug")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected level override to enable debug")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logger, read := newFileLogger(t, "console", "info")
	logger.Info("message without caller")

	content := read()
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
	if !strings.Contains(content, "INFO") || !strings.Contains(content, "message without caller") {
		t.Fatalf("unexpected console line %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logger, read := newFileLogger(t, "console", "debug")
	logger.Info("message with caller")

	if content := read(); !strings.Contains(content, ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleHeaderShowsComponentAndMergeID(t *testing.T) {
	logger, read := newFileLogger(t, "console", "info")
	ctx := logging.WithMergeID(context.Background(), "0c4f1e2a-aaaa-bbbb-cccc-000000000000")
	logging.WithContext(ctx, logging.NewComponentLogger(logger, "merge")).Info("merge started", logging.String("output", "/tmp/a b.mkv"))

	line := read()
	for _, want := range []string{"[merge]", "merge 0c4f1e2a", "merge started", `output="/tmp/a b.mkv"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "merge_id=") {
		t.Fatalf("merge_id should be folded into the header, got %q", line)
	}
}

func TestJSONLoggerEmitsStructuredFields(t *testing.T) {
	logger, read := newFileLogger(t, "json", "info")
	logging.WarnWithContext(logger, "merge failed", "merge_failed", logging.Int("exit_code", 2))

	data := read()
	var entry map[string]any
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		t.Fatalf("decode json line %q: %v", data, err)
	}
	if entry["level"] != "warn" || entry["msg"] != "merge failed" {
		t.Fatalf("unexpected entry %#v", entry)
	}
	if entry[logging.FieldEventType] != "merge_failed" {
		t.Fatalf("expected event_type, got %#v", entry)
	}
	if _, ok := entry[logging.FieldErrorHint]; !ok {
		t.Fatalf("expected default error_hint, got %#v", entry)
	}
	if _, ok := entry[logging.FieldImpact]; !ok {
		t.Fatalf("expected default impact, got %#v", entry)
	}
}

func TestContextFields(t *testing.T) {
	if fields := logging.ContextFields(context.Background()); len(fields) != 0 {
		t.Fatalf("expected no fields, got %v", fields)
	}
	ctx := logging.WithRequestID(logging.WithMergeID(context.Background(), "m1"), "r1")
	fields := logging.ContextFields(ctx)
	if len(fields) != 2 || fields[0].Key != logging.FieldMergeID || fields[1].Key != logging.FieldCorrelationID {
		t.Fatalf("unexpected fields %v", fields)
	}
	if id, ok := logging.MergeIDFromContext(logging.WithMergeID(context.Background(), "")); ok || id != "" {
		t.Fatalf("empty merge id should not be stored")
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	oldLog := filepath.Join(dir, "submerge-old.log")
	freshLog := filepath.Join(dir, "submerge-new.log")
	keepLog := filepath.Join(dir, "submerge-keep.log")
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{oldLog, freshLog, keepLog, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	stale := time.Now().AddDate(0, 0, -10)
	for _, path := range []string{oldLog, keepLog, other} {
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	logging.CleanupOldLogs(logging.NewNop(), 5, logging.RetentionTarget{Dir: dir, Pattern: "submerge-*.log", Exclude: []string{keepLog}})

	if _, err := os.Stat(oldLog); !os.IsNotExist(err) {
		t.Fatalf("expected old log removed, err=%v", err)
	}
	for _, path := range []string{freshLog, keepLog, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}
}

func TestJSONLoggerFormatsDurationsAndTimestamps(t *testing.T) {
	logger, read := newFileLogger(t, "json", "info")
	logger.Info("merge finished",
		logging.Duration("elapsed", 1500*time.Millisecond+300*time.Microsecond),
		logging.Strings("args", []string{"-o", "out.mkv"}),
	)

	var entry map[string]any
	if err := json.Unmarshal([]byte(read()), &entry); err != nil {
		t.Fatalf("decode json line: %v", err)
	}
	if entry["elapsed"] != "1.5s" {
		t.Fatalf("expected rounded duration string, got %#v", entry["elapsed"])
	}
	ts, ok := entry["ts"].(string)
	if !ok {
		t.Fatalf("expected ts string, got %#v", entry["ts"])
	}
	if _, err := time.Parse("2006-01-02T15:04:05.000Z07:00", ts); err != nil {
		t.Fatalf("unexpected ts %q: %v", ts, err)
	}
}

func TestConsoleLoggerQuotesValues(t *testing.T) {
	logger, read := newFileLogger(t, "console", "info")
	logger.Info("inputs captured",
		logging.String("video", "/media/My Movie.mp4"),
		logging.String("subtitle", ""),
		logging.Strings("args", []string{"-o", "out.mkv"}),
	)

	line := read()
	for _, want := range []string{`video="/media/My Movie.mp4"`, `subtitle=""`, "args=-o,out.mkv"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}
