package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Zereker/weather"
)

// Metrics records server loop events as Prometheus series. It implements
// weather.Recorder.
type Metrics struct {
	datagrams prometheus.Counter
	bytes     prometheus.Counter
	dropped   *prometheus.CounterVec
	responses *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

var _ weather.Recorder = (*Metrics)(nil)

// NewMetrics creates the server collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		datagrams: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather",
			Subsystem: "server",
			Name:      "datagrams_total",
			Help:      "Datagrams received.",
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather",
			Subsystem: "server",
			Name:      "received_bytes_total",
			Help:      "Bytes received in request datagrams.",
		}),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "weather",
				Subsystem: "server",
				Name:      "dropped_total",
				Help:      "Datagrams or receives that produced no response.",
			},
			[]string{"reason"},
		),
		responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "weather",
				Subsystem: "server",
				Name:      "responses_total",
				Help:      "Responses sent, by status and measurement type.",
			},
			[]string{"status", "type"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "weather",
				Subsystem: "server",
				Name:      "request_duration_seconds",
				Help:      "Time from receive to reply.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
	}
	reg.MustRegister(m.datagrams, m.bytes, m.dropped, m.responses, m.duration)
	return m
}

// Received counts one datagram of size bytes.
func (m *Metrics) Received(size int) {
	m.datagrams.Inc()
	m.bytes.Add(float64(size))
}

// Dropped counts a datagram or receive that got no response, by reason.
func (m *Metrics) Dropped(reason string) {
	m.dropped.WithLabelValues(reason).Inc()
}

// Responded counts a sent response and observes its handling time.
func (m *Metrics) Responded(status weather.Status, t weather.Type, elapsed time.Duration) {
	statusLabel := status.String()
	m.responses.WithLabelValues(statusLabel, t.String()).Inc()
	m.duration.WithLabelValues(statusLabel).Observe(elapsed.Seconds())
}
