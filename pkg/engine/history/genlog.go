// Package history records run output: the per-generation best-fitness log,
// convergence analysis over it and the ledger of finished runs.
package history

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// GenerationLog writes one best-fitness integer per line, in generation
// order. It is opened once per run and must be closed on every exit path.
type GenerationLog struct {
	f    *os.File
	w    *bufio.Writer
	path string
}

// CreateGenerationLog truncates or creates the log file at path.
func CreateGenerationLog(path string) (*GenerationLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation log: %w", err)
	}
	return &GenerationLog{f: f, w: bufio.NewWriter(f), path: path}, nil
}

// Path returns the file location.
func (l *GenerationLog) Path() string { return l.path }

// Record appends one generation's best fitness.
func (l *GenerationLog) Record(best int) error {
	if _, err := fmt.Fprintf(l.w, "%d\n", best); err != nil {
		return fmt.Errorf("failed to write generation log: %w", err)
	}
	return nil
}

// Close flushes buffered lines and closes the file. Safe to call twice.
func (l *GenerationLog) Close() error {
	if l.f == nil {
		return nil
	}
	flushErr := l.w.Flush()
	closeErr := l.f.Close()
	l.f = nil
	if flushErr != nil {
		return fmt.Errorf("failed to flush generation log: %w", flushErr)
	}
	return closeErr
}
