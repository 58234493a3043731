package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileLogger writes leveled log lines to a per-run log file. It embeds a
// ConsoleLogger pointed at the file, so formatting and level filtering
// behave identically to console output (without color).
type FileLogger struct {
	*ConsoleLogger
	file *os.File
	path string
}

// NewFileLogger creates the log directory if needed and opens a
// timestamped log file inside it, e.g. "run-20060102-150405.log".
func NewFileLogger(logDir, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	path := filepath.Join(logDir, fmt.Sprintf("run-%s.log", time.Now().Format("20060102-150405")))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &FileLogger{
		ConsoleLogger: NewConsoleLogger(file, logLevel),
		file:          file,
		path:          path,
	}, nil
}

// Path returns the log file path.
func (fl *FileLogger) Path() string { return fl.path }

// Close flushes and closes the underlying file.
func (fl *FileLogger) Close() error {
	return fl.file.Close()
}
