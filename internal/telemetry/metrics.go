// Package telemetry holds the Prometheus collectors and tracer name shared by
// the verification components.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TracerName is the OpenTelemetry instrumentation scope for veritas spans
const TracerName = "github.com/ppiankov/veritas"

// Cache lookup outcomes
const (
	LookupHit  = "hit"
	LookupMiss = "miss"
)

// Tool call outcomes
const (
	ToolOK       = "ok"
	ToolError    = "error"
	ToolNoResult = "no_result"
)

var (
	// Verifications counts completed deep verifications by final status
	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veritas_verifications_total",
		Help: "Completed deep verifications by resulting status",
	}, []string{"status"})

	// CacheLookups counts previous-verification lookups
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veritas_cache_lookups_total",
		Help: "Verification memory lookups by outcome",
	}, []string{"result"})

	// ToolCalls counts verification tool executions
	ToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veritas_tool_calls_total",
		Help: "Verification tool executions by tool and outcome",
	}, []string{"tool", "outcome"})

	// MemoryEntries tracks live entries in the verification memory
	MemoryEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "veritas_memory_entries",
		Help: "Number of entries held by the verification memory",
	})

	// DeepVerifyDuration observes the latency of the full pipeline
	DeepVerifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "veritas_deep_verify_duration_seconds",
		Help:    "Latency of deep verification runs",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	})
)
