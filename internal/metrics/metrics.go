// Package metrics holds the Prometheus instruments for reduction, alignment
// and the OpenReview client.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bibalign"

type Metrics struct {
	// SubjectsReduced counts reduced subjects. Labels: status (ok, error)
	SubjectsReduced *prometheus.CounterVec

	// ReduceDuration measures one tree's reduction.
	ReduceDuration prometheus.Histogram

	// AlignedKeys counts canonical keys per outcome.
	// Labels: outcome (matched, unmatched_notes, unmatched_dblp)
	AlignedKeys *prometheus.CounterVec

	AlignmentWarnings prometheus.Counter

	// OpenReviewRequests counts API calls. Labels: endpoint, status
	OpenReviewRequests *prometheus.CounterVec

	// StashLookups counts cache lookups. Labels: result (hit, miss)
	StashLookups *prometheus.CounterVec

	registry *prometheus.Registry
}

// New registers every instrument on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		SubjectsReduced: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reduce",
			Name:      "subjects_total",
			Help:      "Subjects reduced to records, by status",
		}, []string{"status"}),
		ReduceDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reduce",
			Name:      "duration_seconds",
			Help:      "Time to reduce all subjects of one tuple batch",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		AlignedKeys: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "align",
			Name:      "keys_total",
			Help:      "Canonical publication keys by alignment outcome",
		}, []string{"outcome"}),
		AlignmentWarnings: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "align",
			Name:      "warnings_total",
			Help:      "Groups holding more than one record of a source",
		}),
		OpenReviewRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "openreview",
			Name:      "requests_total",
			Help:      "OpenReview API requests by endpoint and status",
		}, []string{"endpoint", "status"}),
		StashLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stash",
			Name:      "lookups_total",
			Help:      "Stash lookups by result",
		}, []string{"result"}),
		registry: reg,
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
