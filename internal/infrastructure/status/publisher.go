package status

import (
	"fmt"
	"os"
	"path/filepath"

	"connwatch/internal/core/domain"

	"go.uber.org/zap"
)

// Publisher replaces the status file atomically so concurrent readers never
// observe a partial write.
type Publisher struct {
	path   string
	logger *zap.SugaredLogger
}

func NewPublisher(path string, logger *zap.SugaredLogger) *Publisher {
	return &Publisher{path: path, logger: logger}
}

func (p *Publisher) Publish(snapshot domain.StatusSnapshot) error {
	data, err := Encode(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode status: %w", err)
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create status directory: %w", err)
	}

	// Temp file in the target directory so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, ".status-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp status file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write status: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync status: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close status file: %w", err)
	}

	// CreateTemp opens 0600; the viewer may run as a different user.
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to chmod status file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p.path); err != nil {
		return fmt.Errorf("failed to replace status file: %w", err)
	}

	p.logger.Debugw("status published",
		"path", p.path,
		"internet", snapshot.Internet,
		"dns", snapshot.DNS)
	return nil
}
