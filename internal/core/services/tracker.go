package services

import (
	"fmt"
	"time"

	"connwatch/internal/core/domain"
	"connwatch/pkg/utils"

	"go.uber.org/zap"
)

type TrackerConfig struct {
	PingHost             string
	Trigger              int
	DNSTrigger           int
	LatencyThresholdMs   float64
	LossThresholdPercent float64
	DisplayLocation      *time.Location
}

// hysteresisCounter debounces one signal: consecutive bad samples are counted
// until the trigger threshold, a notification fires exactly once per bad run,
// and any good sample collapses the run.
type hysteresisCounter struct {
	consecutiveBad int
	badSince       time.Time
	notified       bool
	lastBadValue   float64
}

// observeBad records one bad sample and reports whether this sample crossed
// the trigger threshold. badSince is the timestamp of the run's first bad
// sample.
func (c *hysteresisCounter) observeBad(value float64, at time.Time, trigger int) bool {
	if c.consecutiveBad == 0 {
		c.badSince = at
	}
	c.consecutiveBad++
	c.lastBadValue = value

	if !c.notified && c.consecutiveBad >= trigger {
		c.notified = true
		return true
	}
	return false
}

// observeGood collapses the bad run and reports whether a notification had
// fired for it, along with the run's start time and last bad value.
func (c *hysteresisCounter) observeGood() (recovered bool, since time.Time, lastBad float64) {
	recovered = c.notified
	since = c.badSince
	lastBad = c.lastBadValue

	c.consecutiveBad = 0
	c.badSince = time.Time{}
	c.notified = false
	c.lastBadValue = 0
	return recovered, since, lastBad
}

// HealthTracker holds the hysteresis state for all tracked signals. It is
// mutated only from the control loop's single goroutine.
type HealthTracker struct {
	cfg TrackerConfig

	reach   hysteresisCounter
	latency hysteresisCounter
	dns     hysteresisCounter
	loss    hysteresisCounter

	logger *zap.SugaredLogger
}

func NewHealthTracker(cfg TrackerConfig, logger *zap.SugaredLogger) *HealthTracker {
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.UTC
	}
	return &HealthTracker{cfg: cfg, logger: logger}
}

// Update classifies one sample against every signal and returns the
// notification events whose edges this sample crossed. Latency, DNS and loss
// are only judged on reachable samples; their counters freeze during an
// outage and resume on the first reachable sample after it.
func (t *HealthTracker) Update(sample domain.SampleResult) []domain.NotificationEvent {
	var events []domain.NotificationEvent

	if ev := t.updateReachability(sample); ev != nil {
		events = append(events, *ev)
	}
	if sample.Reachable {
		if ev := t.updateLatency(sample); ev != nil {
			events = append(events, *ev)
		}
		if ev := t.updateDNS(sample); ev != nil {
			events = append(events, *ev)
		}
		if ev := t.updateLoss(sample); ev != nil {
			events = append(events, *ev)
		}
	}
	return events
}

func (t *HealthTracker) updateReachability(sample domain.SampleResult) *domain.NotificationEvent {
	at := sample.SampledAt
	if !sample.Reachable {
		triggered := t.reach.observeBad(0, at, t.cfg.Trigger)
		t.logger.Debugw("missed ping",
			"host", t.cfg.PingHost,
			"count", t.reach.consecutiveBad,
			"trigger", t.cfg.Trigger,
			"reason", sample.RawFailure)
		if !triggered {
			return nil
		}
		return &domain.NotificationEvent{
			Kind:   domain.KindTriggered,
			Signal: domain.SignalReachability,
			Title:  "Internet Outage",
			Message: fmt.Sprintf("Internet is DOWN! Ping to %s has failed (%d/%d)",
				t.cfg.PingHost, t.reach.consecutiveBad, t.cfg.Trigger),
			At: at,
		}
	}

	recovered, since, _ := t.reach.observeGood()
	if !recovered {
		return nil
	}
	return &domain.NotificationEvent{
		Kind:   domain.KindRecovered,
		Signal: domain.SignalReachability,
		Title:  "Internet Outage",
		Message: fmt.Sprintf("Internet is back from outage that started %s which was for %s in length",
			t.displayTime(since), utils.FormatDuration(at.Sub(since))),
		At: at,
	}
}

func (t *HealthTracker) updateLatency(sample domain.SampleResult) *domain.NotificationEvent {
	if !sample.AvgLatency.Known {
		return nil
	}
	at := sample.SampledAt
	v := sample.AvgLatency.Value

	if v > t.cfg.LatencyThresholdMs {
		triggered := t.latency.observeBad(v, at, t.cfg.Trigger)
		t.logger.Debugw("high latency",
			"latency_ms", v,
			"count", t.latency.consecutiveBad,
			"trigger", t.cfg.Trigger)
		if !triggered {
			return nil
		}
		return &domain.NotificationEvent{
			Kind:    domain.KindTriggered,
			Signal:  domain.SignalLatency,
			Title:   "High Latency",
			Message: fmt.Sprintf("High Internet latency has been detected. Average latency: %v", v),
			At:      at,
		}
	}

	recovered, since, _ := t.latency.observeGood()
	if !recovered {
		return nil
	}
	return &domain.NotificationEvent{
		Kind:   domain.KindRecovered,
		Signal: domain.SignalLatency,
		Title:  "Latency Recovered",
		Message: fmt.Sprintf("Internet has recovered from high latency that started %s which was for %s in length",
			t.displayTime(since), utils.FormatDuration(at.Sub(since))),
		At: at,
	}
}

func (t *HealthTracker) updateDNS(sample domain.SampleResult) *domain.NotificationEvent {
	at := sample.SampledAt
	if !sample.DNSResolved {
		triggered := t.dns.observeBad(0, at, t.cfg.DNSTrigger)
		t.logger.Debugw("dns resolution failed",
			"count", t.dns.consecutiveBad,
			"trigger", t.cfg.DNSTrigger)
		if !triggered {
			return nil
		}
		return &domain.NotificationEvent{
			Kind:    domain.KindTriggered,
			Signal:  domain.SignalDNS,
			Title:   "DNS Failure",
			Message: "DNS resolution failure",
			At:      at,
		}
	}

	recovered, _, _ := t.dns.observeGood()
	if !recovered {
		return nil
	}
	return &domain.NotificationEvent{
		Kind:    domain.KindRecovered,
		Signal:  domain.SignalDNS,
		Title:   "DNS Recovered",
		Message: "DNS has recovered from failure",
		At:      at,
	}
}

func (t *HealthTracker) updateLoss(sample domain.SampleResult) *domain.NotificationEvent {
	if !sample.LossPercent.Known {
		return nil
	}
	at := sample.SampledAt
	v := sample.LossPercent.Value

	if v > t.cfg.LossThresholdPercent {
		triggered := t.loss.observeBad(v, at, t.cfg.Trigger)
		t.logger.Debugw("packet loss",
			"loss_percent", v,
			"count", t.loss.consecutiveBad,
			"trigger", t.cfg.Trigger)
		if !triggered {
			return nil
		}
		return &domain.NotificationEvent{
			Kind:    domain.KindTriggered,
			Signal:  domain.SignalLoss,
			Title:   "Packet Loss",
			Message: fmt.Sprintf("Internet packet loss of %v%% detected", v),
			At:      at,
		}
	}

	recovered, since, lastBad := t.loss.observeGood()
	if !recovered {
		return nil
	}
	return &domain.NotificationEvent{
		Kind:   domain.KindRecovered,
		Signal: domain.SignalLoss,
		Title:  "Packet Loss",
		Message: fmt.Sprintf("Internet has recovered from packet loss of %v%% from %s which was %s ago",
			lastBad, t.displayTime(since), utils.FormatDuration(at.Sub(since))),
		At: at,
	}
}

// Alerted reports whether the given signal is currently in the alerted state.
func (t *HealthTracker) Alerted(signal domain.Signal) bool {
	switch signal {
	case domain.SignalReachability:
		return t.reach.notified
	case domain.SignalLatency:
		return t.latency.notified
	case domain.SignalDNS:
		return t.dns.notified
	case domain.SignalLoss:
		return t.loss.notified
	}
	return false
}

// Snapshot derives the published status from the current alert flags. A
// signal in Suspect still reports up; the debounce exists to keep the public
// state calm.
func (t *HealthTracker) Snapshot(at time.Time) domain.StatusSnapshot {
	internet := domain.StateUp
	switch {
	case t.reach.notified:
		internet = domain.StateDown
	case t.latency.notified || t.loss.notified:
		internet = domain.StateWarning
	}

	dns := domain.StateUp
	if t.dns.notified {
		dns = domain.StateDown
	}

	return domain.StatusSnapshot{
		Timestamp: at.UTC(),
		Internet:  internet,
		DNS:       dns,
	}
}

func (t *HealthTracker) displayTime(ts time.Time) string {
	return ts.In(t.cfg.DisplayLocation).Format(time.ANSIC)
}
