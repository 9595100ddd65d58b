package execute

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Transition names one action state change recorded in the log.
type Transition string

const (
	TransitionPending            Transition = "pending"
	TransitionApplied            Transition = "applied"
	TransitionSkipped            Transition = "skipped"
	TransitionFailed             Transition = "failed"
	TransitionCompensated        Transition = "compensated"
	TransitionCompensationFailed Transition = "compensation_failed"
)

// LogEntry is one durable action-log record. The format is JSONL, stable
// enough to support manual reversal of a partially executed plan.
type LogEntry struct {
	Timestamp   time.Time  `json:"ts"`
	RunID       string     `json:"run_id"`
	PlanID      string     `json:"plan_id"`
	Index       int        `json:"index"`
	Kind        string     `json:"kind"`
	Source      string     `json:"source,omitempty"`
	Destination string     `json:"destination,omitempty"`
	Mode        string     `json:"mode,omitempty"`
	Transition  Transition `json:"transition"`
	Detail      string     `json:"detail,omitempty"`
}

// Log is an append-only JSONL action log. Each entry is flushed to stable
// storage before Append returns, so a crash mid-run leaves a log whose last
// entries describe exactly what was attempted.
type Log struct {
	file *os.File
	path string
}

// OpenLog opens (creating if needed) an append-only log at path.
func OpenLog(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure action log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open action log: %w", err)
	}
	return &Log{file: file, path: path}, nil
}

// Append writes one entry and syncs it to disk.
func (l *Log) Append(entry LogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode action log entry: %w", err)
	}
	if _, err := l.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append action log entry: %w", err)
	}
	return l.file.Sync()
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// Close flushes and closes the log.
func (l *Log) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}

// ReadLog parses every entry from a log file, in order.
func ReadLog(path string) ([]LogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []LogEntry
	decoder := json.NewDecoder(bytes.NewReader(data))
	for decoder.More() {
		var entry LogEntry
		if err := decoder.Decode(&entry); err != nil {
			return entries, fmt.Errorf("decode action log entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
