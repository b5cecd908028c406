package status

import (
	"encoding/json"
	"os"
	"time"

	"connwatch/internal/core/domain"

	"go.uber.org/zap"
)

// Reader interprets the published status file on the viewer side. The monitor
// never publishes unknown; unknown states are produced here, when the file is
// missing, corrupt, or older than maxAge.
type Reader struct {
	path   string
	maxAge time.Duration
	logger *zap.SugaredLogger
}

// NewReader builds a reader for the given file. maxAge <= 0 disables the
// staleness check entirely: the file is trusted even without a parsable
// timestamp.
func NewReader(path string, maxAge time.Duration, logger *zap.SugaredLogger) *Reader {
	return &Reader{path: path, maxAge: maxAge, logger: logger}
}

// Read returns the published snapshot, downgraded to unknown when it cannot
// be trusted. The second return reports whether a downgrade happened.
func (r *Reader) Read(now time.Time) (domain.StatusSnapshot, bool) {
	unknown := domain.StatusSnapshot{
		Internet: domain.StateUnknown,
		DNS:      domain.StateUnknown,
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		r.logger.Debugw("status file unreadable", "path", r.path, "error", err)
		return unknown, true
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		r.logger.Warnw("status file corrupt", "path", r.path, "error", err)
		return unknown, true
	}

	snap := domain.StatusSnapshot{
		Internet: doc.Internet.State,
		DNS:      doc.DNS.State,
	}
	ts, tsErr := time.Parse(TimestampLayout, doc.Timestamp)
	if tsErr == nil {
		snap.Timestamp = ts
	}

	if r.maxAge <= 0 {
		return snap, false
	}

	if tsErr != nil {
		r.logger.Warnw("status timestamp unparsable", "path", r.path, "error", tsErr)
		return unknown, true
	}
	age := now.Sub(ts)
	if age < 0 || age > r.maxAge {
		r.logger.Debugw("status file stale", "path", r.path, "age", age, "max_age", r.maxAge)
		return unknown, true
	}
	return snap, false
}
