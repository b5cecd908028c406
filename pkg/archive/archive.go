// Package archive stores timestamped snapshots of the connection log and
// prunes them by age.
package archive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	namePrefix = "translog-"
	nameLayout = "20060102-150405"
)

// Storage defines where archives are kept.
type Storage interface {
	Save(ctx context.Context, name string, data io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// Service creates and prunes connection log archives.
type Service struct {
	storage Storage
}

// NewService creates an archive service backed by the given storage.
func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

// CreateArchive stores a snapshot of the log under a timestamped name.
func (s *Service) CreateArchive(ctx context.Context, data io.Reader) (string, error) {
	name := fmt.Sprintf("%s%s.log", namePrefix, time.Now().UTC().Format(nameLayout))

	if err := s.storage.Save(ctx, name, data); err != nil {
		return "", fmt.Errorf("failed to save archive: %w", err)
	}

	return name, nil
}

// ListArchives lists all stored archive names.
func (s *Service) ListArchives(ctx context.Context) ([]string, error) {
	return s.storage.List(ctx, namePrefix)
}

// Open returns a reader over a stored archive.
func (s *Service) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.storage.Open(ctx, name)
}

// DeleteArchive removes a stored archive.
func (s *Service) DeleteArchive(ctx context.Context, name string) error {
	return s.storage.Delete(ctx, name)
}

// Prune deletes archives created before cutoff. Names that do not parse are
// left alone. Returns the number of archives deleted.
func (s *Service) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	names, err := s.storage.List(ctx, namePrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list archives: %w", err)
	}

	deleted := 0
	for _, name := range names {
		ts, err := Timestamp(name)
		if err != nil {
			continue
		}
		if ts.Before(cutoff) {
			if err := s.storage.Delete(ctx, name); err != nil {
				return deleted, fmt.Errorf("failed to delete archive %s: %w", name, err)
			}
			deleted++
		}
	}

	return deleted, nil
}

// Timestamp extracts the creation time embedded in an archive name.
func Timestamp(name string) (time.Time, error) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(name, namePrefix), ".log")
	ts, err := time.Parse(nameLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized archive name %q: %w", name, err)
	}
	return ts, nil
}
