package rpc

import (
	"errors"

	"miniwallet/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the connector's Prometheus collectors.
type Metrics struct {
	attempts *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	degraded *prometheus.CounterVec
	fallback *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. A nil reg keeps them unregistered,
// which tests rely on. Collectors already registered by another connector are reused.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "miniwallet",
			Subsystem: "rpc",
			Name:      "connect_attempts_total",
			Help:      "Connection attempts by endpoint, transport and outcome.",
		}, []string{"chain", "endpoint", "transport", "outcome", "class"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "miniwallet",
			Subsystem: "rpc",
			Name:      "liveness_latency_seconds",
			Help:      "Latency of successful liveness probes.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"chain", "transport"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "miniwallet",
			Subsystem: "rpc",
			Name:      "degraded_clients_total",
			Help:      "Read paths served by the degraded stub client.",
		}, []string{"chain"}),
		fallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "miniwallet",
			Subsystem: "rpc",
			Name:      "raw_fallback_total",
			Help:      "Raw HTTP fallback runs after origin rejections, by result.",
		}, []string{"chain", "outcome"}),
	}
	if reg == nil {
		return m
	}
	m.attempts = register(reg, m.attempts)
	m.latency = register(reg, m.latency)
	m.degraded = register(reg, m.degraded)
	m.fallback = register(reg, m.fallback)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func (m *Metrics) observeAttempt(chain string, res entity.ConnectionAttemptResult) {
	if m == nil {
		return
	}
	outcome := "failure"
	if res.Success {
		outcome = "success"
		m.latency.WithLabelValues(chain, string(res.Transport)).Observe(res.Latency.Seconds())
	}
	m.attempts.WithLabelValues(chain, res.Endpoint.URL.String(), string(res.Transport), outcome, string(res.Class)).Inc()
}

func (m *Metrics) observeDegraded(chain string) {
	if m == nil {
		return
	}
	m.degraded.WithLabelValues(chain).Inc()
}

func (m *Metrics) observeFallback(chain string, ok bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	m.fallback.WithLabelValues(chain, outcome).Inc()
}
