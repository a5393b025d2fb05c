package log

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileExtension is the conventional suffix for trace files.
const FileExtension = ".lmrtlog"

// FileLogger writes trace events to a file in CBOR format.
// It is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	path    string
	file    *os.File
	encoder *cbor.Encoder
	mu      sync.Mutex
	closed  bool
	dropped int
}

// NewFileLogger creates a new FileLogger that writes to the specified path.
// If the file exists, new events are appended. The file is created with
// permissions 0644 if it doesn't exist.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{
		path:    path,
		file:    f,
		encoder: NewEncoder(f),
	}, nil
}

// Path returns the file the logger writes to.
func (l *FileLogger) Path() string {
	return l.path
}

// Log writes an event to the trace file.
// Encoding failures are counted, never returned.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	if err := l.encoder.Encode(event); err != nil {
		l.dropped++
	}
}

// Dropped returns the number of events that failed to encode.
func (l *FileLogger) Dropped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Close closes the trace file.
// It is safe to call Close multiple times.
// After Close is called, subsequent Log calls are silently ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	return l.file.Close()
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
