// Package metrics maintains the prometheus collectors for ingestion and
// chain integrity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ledger"

// Metrics holds the collectors updated by the ingest workflow.
type Metrics struct {
	registry *prometheus.Registry

	Received    *prometheus.CounterVec
	Appended    prometheus.Counter
	Substituted prometheus.Counter
	Dropped     prometheus.Counter
	Violations  prometheus.Counter
	Audits      prometheus.Counter
	FetchErrors *prometheus.CounterVec
	ChainLength prometheus.Gauge
}

// New constructs the collectors and registers them with a dedicated
// registry alongside the go and process collectors.
func New() *Metrics {
	m := Metrics{
		registry: prometheus.NewRegistry(),

		Received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Number of messages fetched from a source.",
		}, []string{"source"}),

		Appended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_appended_total",
			Help:      "Number of blocks appended to the chain.",
		}),

		Substituted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payloads_substituted_total",
			Help:      "Number of payloads replaced with a placeholder.",
		}),

		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payloads_dropped_total",
			Help:      "Number of messages skipped for an undecodable payload.",
		}),

		Violations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integrity_violations_total",
			Help:      "Number of failed chain checks.",
		}),

		Audits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audits_total",
			Help:      "Number of full chain audits performed.",
		}),

		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Number of errors reading from a source.",
		}, []string{"source"}),

		ChainLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chain_length",
			Help:      "Number of blocks in the chain including genesis.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Received,
		m.Appended,
		m.Substituted,
		m.Dropped,
		m.Violations,
		m.Audits,
		m.FetchErrors,
		m.ChainLength,
	)

	return &m
}

// Handler returns the http handler that exposes the collectors.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
