package logfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Truncate clears the connection log, creating it (and its directory) when
// absent.
func Truncate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to truncate connection log: %w", err)
	}
	return f.Close()
}
