package monitoring

import (
	"time"

	"connwatch/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector implements ports.Metrics on the default registry.
type PrometheusCollector struct {
	// Counters
	cyclesTotal         prometheus.Counter
	probeFailuresTotal  *prometheus.CounterVec
	notificationsTotal  *prometheus.CounterVec
	notifyFailuresTotal *prometheus.CounterVec

	// Gauges
	signalAlerted *prometheus.GaugeVec
	pingLatency   prometheus.Gauge
	packetLoss    prometheus.Gauge

	// Histograms
	cycleDuration prometheus.Histogram
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		cyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "connwatch_cycles_total",
			Help: "Total number of completed sampling cycles",
		}),

		probeFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "connwatch_probe_failures_total",
			Help: "Total number of failed probes by probe kind",
		}, []string{"probe"}),

		notificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "connwatch_notifications_total",
			Help: "Total number of delivered notifications",
		}, []string{"signal", "kind"}),

		notifyFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "connwatch_notification_failures_total",
			Help: "Total number of notification delivery failures",
		}, []string{"signal"}),

		signalAlerted: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "connwatch_signal_alerted",
			Help: "Whether a signal is currently alerted (1) or healthy (0)",
		}, []string{"signal"}),

		pingLatency: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "connwatch_ping_latency_seconds",
			Help: "Last known average ping latency",
		}),

		packetLoss: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "connwatch_packet_loss_percent",
			Help: "Last known packet loss percentage",
		}),

		cycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "connwatch_cycle_duration_seconds",
			Help:    "Duration of sampling cycles",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
	}
}

func (p *PrometheusCollector) RecordCycle(elapsed time.Duration) {
	p.cyclesTotal.Inc()
	p.cycleDuration.Observe(elapsed.Seconds())
}

func (p *PrometheusCollector) RecordSample(sample domain.SampleResult) {
	if !sample.Reachable {
		p.probeFailuresTotal.WithLabelValues("ping").Inc()
		return
	}
	if !sample.DNSResolved {
		p.probeFailuresTotal.WithLabelValues("dns").Inc()
	}
	if sample.AvgLatency.Known {
		p.pingLatency.Set(sample.AvgLatency.Value / 1000)
	}
	if sample.LossPercent.Known {
		p.packetLoss.Set(sample.LossPercent.Value)
	}
}

func (p *PrometheusCollector) RecordNotification(event domain.NotificationEvent) {
	p.notificationsTotal.WithLabelValues(string(event.Signal), string(event.Kind)).Inc()
}

func (p *PrometheusCollector) RecordNotifyFailure(signal domain.Signal) {
	p.notifyFailuresTotal.WithLabelValues(string(signal)).Inc()
}

func (p *PrometheusCollector) SetAlerted(signal domain.Signal, alerted bool) {
	v := 0.0
	if alerted {
		v = 1
	}
	p.signalAlerted.WithLabelValues(string(signal)).Set(v)
}
