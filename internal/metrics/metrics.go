// Package metrics defines Prometheus instrumentation for the flattening
// pipeline and the serve-mode HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Renders counts completed renders by mode and status.
	Renders = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "repoflat",
		Name:      "renders_total",
		Help:      "Completed renders by mode and status.",
	}, []string{"mode", "status"})

	// Fetches counts per-file content fetches by outcome.
	Fetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "repoflat",
		Name:      "fetches_total",
		Help:      "Per-file content fetches by outcome.",
	}, []string{"outcome"})

	// Retries counts backoff retries against the remote API.
	Retries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "repoflat",
		Name:      "retries_total",
		Help:      "Backoff retries issued against the remote API.",
	})

	// FilesSkipped counts files excluded from rendered output by reason.
	FilesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "repoflat",
		Name:      "files_skipped_total",
		Help:      "Files excluded from rendered output by reason.",
	}, []string{"reason"})
)
