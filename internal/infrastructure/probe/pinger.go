package probe

import (
	"context"
	"strconv"
	"time"

	"connwatch/internal/core/domain"

	"go.uber.org/zap"
)

// PingResult is the outcome of one batch ping round.
type PingResult struct {
	Reachable  bool
	Loss       domain.Metric
	AvgLatency domain.Metric

	// Failure holds the tool-level failure reason when the host was
	// unreachable; parse flags report which metrics could not be extracted
	// from an otherwise successful run.
	Failure            string
	LatencyParseFailed bool
	LossParseFailed    bool
}

type Pinger struct {
	host    string
	count   int
	timeout time.Duration
	runner  Runner
	logger  *zap.SugaredLogger
}

func NewPinger(host string, count int, timeout time.Duration, runner Runner, logger *zap.SugaredLogger) *Pinger {
	return &Pinger{
		host:    host,
		count:   count,
		timeout: timeout,
		runner:  runner,
		logger:  logger,
	}
}

// Ping runs one fping round against the target host. It never returns an
// error: a tool failure (missing binary, non-zero exit, timeout) is an
// unreachable sample, and a parse failure on a clean exit yields Unknown
// metrics.
func (p *Pinger) Ping(ctx context.Context) PingResult {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	stdout, stderr, err := p.runner.Run(ctx, "fping", "-c", strconv.Itoa(p.count), p.host)
	if err != nil {
		p.logger.Debugw("fping failed", "host", p.host, "error", err)
		return PingResult{Failure: err.Error()}
	}

	// fping reports statistics on stderr
	combined := stdout + stderr

	res := PingResult{Reachable: true}

	if v, perr := parseAvgLatency(combined); perr == nil {
		res.AvgLatency = domain.KnownMetric(v)
	} else {
		p.logger.Debugw("fping latency not parsable", "host", p.host, "error", perr)
		res.LatencyParseFailed = true
	}

	if v, perr := parseLossPercent(combined); perr == nil {
		res.Loss = domain.KnownMetric(v)
		if v >= 100 {
			// Total loss is a valid Down observation even with a clean exit.
			res.Reachable = false
			res.Failure = "100% packet loss"
		}
	} else {
		p.logger.Debugw("fping loss not parsable", "host", p.host, "error", perr)
		res.LossParseFailed = true
	}

	return res
}
