package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"connwatch/pkg/archive"

	"go.uber.org/zap/zaptest"
)

func newTestScheduler(t *testing.T, logPath string, cfg Config) (*Scheduler, string) {
	t.Helper()
	archiveDir := t.TempDir()
	storage, err := archive.NewFileStorage(archiveDir)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	service := archive.NewService(storage)
	logger := zaptest.NewLogger(t).Sugar()
	return NewScheduler(service, logPath, cfg, logger), archiveDir
}

func TestScheduler_RunArchive(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "connection.log")
	content := "2026-01-02 15:04:05 (-) Alert: Internet is DOWN!\n"
	if err := os.WriteFile(logPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write log: %v", err)
	}

	sched, archiveDir := newTestScheduler(t, logPath, Config{Interval: time.Hour, RetentionDays: 14})

	// An expired archive seeded ahead of the run must be pruned
	expired := filepath.Join(archiveDir, "translog-20200101-000000.log")
	if err := os.WriteFile(expired, []byte("ancient"), 0644); err != nil {
		t.Fatalf("failed to seed expired archive: %v", err)
	}

	sched.runArchive(context.Background())

	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		t.Fatalf("failed to read archive dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 archive after run, got %d", len(entries))
	}

	data, err := os.ReadFile(filepath.Join(archiveDir, entries[0].Name()))
	if err != nil {
		t.Fatalf("failed to read archive: %v", err)
	}
	if string(data) != content {
		t.Errorf("archive content = %q, want %q", string(data), content)
	}

	if _, err := os.Stat(expired); !os.IsNotExist(err) {
		t.Error("expired archive should have been pruned")
	}
}

func TestScheduler_SkipsMissingLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "does-not-exist.log")
	sched, archiveDir := newTestScheduler(t, logPath, Config{Interval: time.Hour, RetentionDays: 14})

	sched.runArchive(context.Background())

	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		t.Fatalf("failed to read archive dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no archives for missing log, got %d", len(entries))
	}
}

func TestScheduler_SkipsEmptyLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "connection.log")
	if err := os.WriteFile(logPath, nil, 0644); err != nil {
		t.Fatalf("failed to write log: %v", err)
	}

	sched, archiveDir := newTestScheduler(t, logPath, Config{Interval: time.Hour, RetentionDays: 14})

	sched.runArchive(context.Background())

	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		t.Fatalf("failed to read archive dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no archives for empty log, got %d", len(entries))
	}
}

func TestScheduler_StartStopsOnContextCancel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "connection.log")
	if err := os.WriteFile(logPath, []byte("entry\n"), 0644); err != nil {
		t.Fatalf("failed to write log: %v", err)
	}

	sched, archiveDir := newTestScheduler(t, logPath, Config{Interval: 10 * time.Millisecond, RetentionDays: 14})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Start(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		entries, err := os.ReadDir(archiveDir)
		if err == nil && len(entries) > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		t.Fatalf("failed to read archive dir: %v", err)
	}
	if len(entries) == 0 {
		t.Error("expected at least one archive from the running scheduler")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
