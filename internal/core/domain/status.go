package domain

import "time"

type Signal string

const (
	SignalReachability Signal = "reachability"
	SignalLatency      Signal = "latency"
	SignalDNS          Signal = "dns"
	SignalLoss         Signal = "loss"
)

// Signals lists every tracked health dimension.
var Signals = []Signal{SignalReachability, SignalLatency, SignalDNS, SignalLoss}

type SignalState string

const (
	StateUp      SignalState = "up"
	StateDown    SignalState = "down"
	StateWarning SignalState = "warning"
	StateUnknown SignalState = "unknown"
)

// StatusSnapshot is the externally published view, overwritten atomically
// each cycle.
type StatusSnapshot struct {
	Timestamp time.Time
	Internet  SignalState
	DNS       SignalState
}
