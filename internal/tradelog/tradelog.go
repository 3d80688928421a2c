// Package tradelog implements the optional append-only record of every
// snapshot and feed frame (spec.md §4.8). Single-writer, opened on
// engine start and flushed/closed on shutdown.
package tradelog

import (
	"fmt"
	"os"
	"sync"
)

// Log is a single-writer append-only text log.
type Log struct {
	mu   sync.Mutex
	file *os.File
}

// Open opens (creating if necessary, appending if it exists) the log
// file at path.
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("tradelog: open %q: %w", path, err)
	}
	return &Log{file: f}, nil
}

// WriteSnapshot appends a `B <product_id> <json>\n` record.
func (l *Log) WriteSnapshot(productID string, snapshotJSON []byte) error {
	return l.writeLine(fmt.Sprintf("B %s %s\n", productID, snapshotJSON))
}

// WriteFrame appends a `W <raw-json-of-feed-frame>\n` record.
func (l *Log) WriteFrame(raw []byte) error {
	return l.writeLine(fmt.Sprintf("W %s\n", raw))
}

func (l *Log) writeLine(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.WriteString(line); err != nil {
		return fmt.Errorf("tradelog: write: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("tradelog: sync: %w", err)
	}
	return l.file.Close()
}

// WriteSnapshotIfEnabled and WriteFrameIfEnabled let callers hold a
// possibly-nil *Log (no trade_log_file_path configured) without a nil
// check at every call site.
func WriteSnapshotIfEnabled(l *Log, productID string, snapshotJSON []byte) error {
	if l == nil {
		return nil
	}
	return l.WriteSnapshot(productID, snapshotJSON)
}

func WriteFrameIfEnabled(l *Log, raw []byte) error {
	if l == nil {
		return nil
	}
	return l.WriteFrame(raw)
}
