package logfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"connwatch/pkg/utils"
)

// LineLayout is the timestamp format of connection log lines, always UTC.
const LineLayout = "2006-01-02 15:04:05"

// Writer appends transition lines to the connection log. Every append opens
// and closes the file, so a clear-log truncation by the viewer takes effect
// immediately.
type Writer struct {
	mu   sync.Mutex
	path string
}

func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Append writes one `<timestamp> (+|-) <message>` line. ok selects the (+)
// marker. Messages are flattened to a single line.
func (w *Writer) Append(ok bool, message string) error {
	marker := "(-)"
	if ok {
		marker = "(+)"
	}
	line := fmt.Sprintf("%s %s %s\n",
		utils.Now().UTC().Format(LineLayout), marker, utils.SanitizeString(message))

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open connection log: %w", err)
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to connection log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close connection log: %w", err)
	}
	return nil
}
