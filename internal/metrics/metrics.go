// Package metrics exposes the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request latency by method, route and status.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pellicule_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// IngestsTotal counts completed ingests by media kind.
	IngestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pellicule_ingests_total",
		Help: "Completed media ingests",
	}, []string{"kind"})

	// DuplicateIngestsTotal counts uploads rejected by fingerprint dedupe.
	DuplicateIngestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pellicule_duplicate_ingests_total",
		Help: "Uploads rejected as duplicates",
	})

	// DerivationWarningsTotal counts best-effort extraction failures
	// (thumbnails, dimensions, probes) that degraded an ingest.
	DerivationWarningsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pellicule_derivation_warnings_total",
		Help: "Best-effort metadata or thumbnail extraction failures",
	})

	// PurgesTotal counts permanently deleted assets.
	PurgesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pellicule_purges_total",
		Help: "Permanently deleted assets",
	})
)
