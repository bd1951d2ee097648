// Package logging wires log/slog handlers for the extension: file or stdout
// text output, an optional OTel bridge, and per-record session attributes.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const fileStamp = "20060102_150405"

// FilePath names the log file of a process started at start, e.g.
// logs/ballsym.20260212_213836.log.
func FilePath(dir, name string, start time.Time) string {
	return filepath.Join(dir, name+"."+start.Format(fileStamp)+".log")
}

// OpenFile creates dir if needed and opens the log file for appending.
func OpenFile(dir, name string, start time.Time) (*os.File, string, error) {
	path := FilePath(dir, name, start)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, path, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, path, fmt.Errorf("opening log file: %w", err)
	}
	return f, path, nil
}
