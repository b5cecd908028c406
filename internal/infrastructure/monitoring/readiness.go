package monitoring

import (
	"context"
	"sync"
	"time"
)

// ReadinessCheck probes one artifact the viewer depends on.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Readiness aggregates named checks over the monitor's artifacts so the
// viewer can report whether the pipeline behind it is producing.
type Readiness struct {
	mu     sync.RWMutex
	checks []ReadinessCheck
}

// ReadinessStatus is the JSON shape served by the readiness endpoint.
type ReadinessStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

func NewReadiness() *Readiness {
	return &Readiness{}
}

// AddCheck registers a named check. A nil error from check means healthy.
func (r *Readiness) AddCheck(name string, check func(ctx context.Context) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks = append(r.checks, ReadinessCheck{Name: name, Check: check})
}

// CheckAll runs every registered check and reports the aggregate status.
func (r *Readiness) CheckAll(ctx context.Context) ReadinessStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := ReadinessStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]string),
	}

	for _, check := range r.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks[check.Name] = err.Error()
		} else {
			status.Checks[check.Name] = "healthy"
		}
	}

	return status
}
