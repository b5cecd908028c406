package probe

import (
	"fmt"
	"regexp"
	"strconv"

	"connwatch/internal/core/domain"
)

// fping -c prints a statistics line like
//
//	8.8.8.8 : xmt/rcv/%loss = 5/5/0%, min/avg/max = 10.8/11.1/11.6
//
// on stderr. The format is tool/version dependent, so absence of a match
// parses to Unknown, never to zero.
var (
	latencyPattern = regexp.MustCompile(`(\d+\.\d+)/(\d+\.\d+)/(\d+\.\d+)`)
	lossPattern    = regexp.MustCompile(`(\d+)%`)
)

func parseAvgLatency(output string) (float64, error) {
	m := latencyPattern.FindStringSubmatch(output)
	if m == nil {
		return 0, fmt.Errorf("no min/avg/max section: %w", domain.ErrUnparsableOutput)
	}
	v, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, fmt.Errorf("bad avg latency %q: %w", m[2], domain.ErrUnparsableOutput)
	}
	return v, nil
}

func parseLossPercent(output string) (float64, error) {
	m := lossPattern.FindStringSubmatch(output)
	if m == nil {
		return 0, fmt.Errorf("no loss section: %w", domain.ErrUnparsableOutput)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < 0 || v > 100 {
		return 0, fmt.Errorf("bad loss percent %q: %w", m[1], domain.ErrUnparsableOutput)
	}
	return v, nil
}
