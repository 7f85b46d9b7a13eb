package history

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		rec         Record
		status      string
		failureKind sql.NullString
		message     sql.NullString
		exitCode    sql.NullInt64
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&rec.ID,
		&rec.VideoPath,
		&rec.SubtitlePath,
		&rec.Language,
		&rec.OutputPath,
		&status,
		&failureKind,
		&message,
		&exitCode,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}
	rec.Status = Status(status)
	rec.FailureKind = failureKind.String
	rec.Message = message.String
	if exitCode.Valid {
		code := int(exitCode.Int64)
		rec.ExitCode = &code
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		rec.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			rec.FinishedAt = &finished
		}
	}
	return &rec, nil
}

// timeLayout keeps a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}
