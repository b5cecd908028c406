package livetail

import (
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
)

// Follower tails the connection log by polling. It survives truncation (the
// viewer's clear-log) by restarting from the top of the file.
type Follower struct {
	path     string
	interval time.Duration
	logger   *zap.SugaredLogger
}

func NewFollower(path string, interval time.Duration, logger *zap.SugaredLogger) *Follower {
	return &Follower{path: path, interval: interval, logger: logger}
}

// Run polls the file and invokes emit for every complete new line until ctx
// is cancelled. Lines already present at start are skipped; clients only see
// what happens after they attach.
func (f *Follower) Run(ctx context.Context, emit func(line string)) {
	var offset int64
	if info, err := os.Stat(f.path); err == nil {
		offset = info.Size()
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			offset = f.poll(offset, emit)
		}
	}
}

// poll emits the complete lines appended since offset and returns the new
// offset. A partial line at EOF stays unread until its newline arrives.
func (f *Follower) poll(offset int64, emit func(line string)) int64 {
	info, err := os.Stat(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0
		}
		return offset
	}
	if info.Size() < offset {
		// Truncated; follow from the top.
		offset = 0
	}
	if info.Size() == offset {
		return offset
	}

	file, err := os.Open(f.path)
	if err != nil {
		f.logger.Debugw("failed to open connection log", "path", f.path, "error", err)
		return offset
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		f.logger.Debugw("failed to seek connection log", "path", f.path, "error", err)
		return offset
	}
	data, err := io.ReadAll(file)
	if err != nil {
		f.logger.Debugw("failed to read connection log", "path", f.path, "error", err)
		return offset
	}

	consumed := 0
	for {
		idx := bytes.IndexByte(data[consumed:], '\n')
		if idx < 0 {
			break
		}
		if line := string(data[consumed : consumed+idx]); line != "" {
			emit(line)
		}
		consumed += idx + 1
	}
	return offset + int64(consumed)
}
