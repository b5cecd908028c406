package probe

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
)

type LookupFunc func(ctx context.Context, host string) ([]string, error)

type Resolver struct {
	host    string
	timeout time.Duration
	lookup  LookupFunc
	logger  *zap.SugaredLogger
}

func NewResolver(host string, timeout time.Duration, logger *zap.SugaredLogger) *Resolver {
	return &Resolver{
		host:    host,
		timeout: timeout,
		lookup:  net.DefaultResolver.LookupHost,
		logger:  logger,
	}
}

// Resolve reports whether the configured hostname currently resolves using
// OS resolver defaults. One attempt per cycle, no retry.
func (r *Resolver) Resolve(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.lookup(ctx, r.host); err != nil {
		r.logger.Debugw("dns resolution failed", "host", r.host, "error", err)
		return false
	}
	return true
}
