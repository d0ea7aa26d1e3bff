// Package metrics exposes the service's Prometheus collectors. Every counter
// lives here so handlers and clients share one registry-backed set.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemoteCalls counts outbound STRING API calls by endpoint, the number
	// this subsystem exists to keep down.
	RemoteCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "interactome",
		Name:      "remote_calls_total",
		Help:      "Outbound STRING API calls by endpoint.",
	}, []string{"endpoint"})

	// CacheLookups counts network cache lookups by result (hit, miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "interactome",
		Name:      "cache_lookups_total",
		Help:      "Network cache lookups by result.",
	}, []string{"result"})

	// CacheWriteFailures counts store errors that were absorbed because the
	// freshly fetched result could still be returned to the caller.
	CacheWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "interactome",
		Name:      "cache_write_failures_total",
		Help:      "Cache writes that failed after a successful fetch.",
	})

	// DroppedRows counts TSV rows discarded for a bad field count. A rising
	// rate signals remote format drift.
	DroppedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "interactome",
		Name:      "tsv_dropped_rows_total",
		Help:      "Malformed TSV rows dropped during response parsing.",
	}, []string{"endpoint"})
)
