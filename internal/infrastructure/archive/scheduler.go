// Package archive schedules periodic snapshots of the connection log.
package archive

import (
	"context"
	"os"
	"time"

	"connwatch/pkg/archive"

	"go.uber.org/zap"
)

// Config contains scheduler configuration
type Config struct {
	Interval      time.Duration
	RetentionDays int
}

// Scheduler copies the connection log into the archive on a fixed interval
// and prunes copies past the retention window. The live log is never
// truncated, so each archive is a complete snapshot.
type Scheduler struct {
	service       *archive.Service
	logPath       string
	interval      time.Duration
	retentionDays int
	logger        *zap.SugaredLogger
	stopChan      chan struct{}
}

// NewScheduler creates a new archive scheduler
func NewScheduler(service *archive.Service, logPath string, cfg Config, logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		service:       service,
		logPath:       logPath,
		interval:      cfg.Interval,
		retentionDays: cfg.RetentionDays,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// Start runs the archive loop until Stop is called or ctx is canceled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runArchive(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the archive scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

// runArchive snapshots the current log and prunes expired archives.
func (s *Scheduler) runArchive(ctx context.Context) {
	file, err := os.Open(s.logPath)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debugw("no connection log to archive yet", "path", s.logPath)
			return
		}
		s.logger.Errorw("failed to open connection log for archiving", "path", s.logPath, "error", err)
		return
	}
	defer file.Close()

	if info, err := file.Stat(); err == nil && info.Size() == 0 {
		s.logger.Debugw("connection log is empty, skipping archive", "path", s.logPath)
		return
	}

	name, err := s.service.CreateArchive(ctx, file)
	if err != nil {
		s.logger.Errorw("failed to create archive", "error", err)
		return
	}
	s.logger.Infow("connection log archived", "archive", name)

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	deleted, err := s.service.Prune(ctx, cutoff)
	if err != nil {
		s.logger.Warnw("failed to prune old archives", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Infow("pruned old archives", "deleted", deleted)
	}
}
