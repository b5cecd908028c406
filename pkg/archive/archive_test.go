package archive

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	tmpDir := t.TempDir()
	storage, err := NewFileStorage(tmpDir)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	return NewService(storage), tmpDir
}

func TestService_CreateArchive(t *testing.T) {
	service, tmpDir := newTestService(t)

	content := "2026-01-02 15:04:05 (-) Alert: Internet is DOWN!\n"
	name, err := service.CreateArchive(context.Background(), strings.NewReader(content))
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}

	if name == "" {
		t.Error("expected non-empty archive name")
	}
	if !strings.HasPrefix(name, "translog-") || !strings.HasSuffix(name, ".log") {
		t.Errorf("unexpected archive name format: %s", name)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, name)); os.IsNotExist(err) {
		t.Errorf("archive file does not exist: %s", name)
	}

	reader, err := service.Open(context.Background(), name)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("failed to read archive: %v", err)
	}
	if string(data) != content {
		t.Errorf("archive content = %q, want %q", string(data), content)
	}
}

func TestService_ListArchives(t *testing.T) {
	service, tmpDir := newTestService(t)

	seeded := []string{
		"translog-20240101-000000.log",
		"translog-20250601-120000.log",
	}
	for _, name := range seeded {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("old"), 0644); err != nil {
			t.Fatalf("failed to seed archive: %v", err)
		}
	}
	// A stray file must not show up in listings
	if err := os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to seed stray file: %v", err)
	}

	if _, err := service.CreateArchive(context.Background(), strings.NewReader("fresh")); err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}

	archives, err := service.ListArchives(context.Background())
	if err != nil {
		t.Fatalf("failed to list archives: %v", err)
	}

	if len(archives) != 3 {
		t.Errorf("expected 3 archives, got %d: %v", len(archives), archives)
	}
	for _, name := range archives {
		if name == "notes.txt" {
			t.Error("stray file listed as archive")
		}
	}
}

func TestService_DeleteArchive(t *testing.T) {
	service, tmpDir := newTestService(t)

	name, err := service.CreateArchive(context.Background(), strings.NewReader("data"))
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}

	if err := service.DeleteArchive(context.Background(), name); err != nil {
		t.Fatalf("failed to delete archive: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, name)); !os.IsNotExist(err) {
		t.Error("archive file should be deleted")
	}
}

func TestService_Prune(t *testing.T) {
	service, tmpDir := newTestService(t)

	old := "translog-20200101-000000.log"
	fresh := "translog-" + time.Now().UTC().Format("20060102-150405") + ".log"
	garbled := "translog-borked.log"
	for _, name := range []string{old, fresh, garbled} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("failed to seed archive: %v", err)
		}
	}

	cutoff := time.Now().AddDate(0, 0, -14)
	deleted, err := service.Prune(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("failed to prune: %v", err)
	}

	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, old)); !os.IsNotExist(err) {
		t.Error("expired archive should be deleted")
	}
	if _, err := os.Stat(filepath.Join(tmpDir, fresh)); err != nil {
		t.Error("fresh archive should survive pruning")
	}
	if _, err := os.Stat(filepath.Join(tmpDir, garbled)); err != nil {
		t.Error("unparseable archive name should be left alone")
	}
}

func TestTimestamp(t *testing.T) {
	ts, err := Timestamp("translog-20260826-153000.log")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("timestamp = %v, want %v", ts, want)
	}

	if _, err := Timestamp("translog-nonsense.log"); err == nil {
		t.Error("expected error for unparseable name")
	}
}

func TestFileStorage(t *testing.T) {
	tmpDir := t.TempDir()
	storage, err := NewFileStorage(tmpDir)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	ctx := context.Background()

	if err := storage.Save(ctx, "test.log", strings.NewReader("test data")); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	loaded, err := storage.Open(ctx, "test.log")
	if err != nil {
		t.Fatalf("failed to open: %v", err)
	}
	data, err := io.ReadAll(loaded)
	loaded.Close()
	if err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	if string(data) != "test data" {
		t.Errorf("content = %q, want %q", string(data), "test data")
	}

	files, err := storage.List(ctx, "test")
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("expected 1 file, got %d", len(files))
	}

	if err := storage.Delete(ctx, "test.log"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "test.log")); !os.IsNotExist(err) {
		t.Error("file should be deleted")
	}
}
