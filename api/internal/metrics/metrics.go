package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by method, path, and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redacheck_requests_total",
		Help: "Total HTTP requests processed.",
	}, []string{"method", "path", "status"})

	// CheckDuration tracks end-to-end latency per analysis mode.
	CheckDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "redacheck_check_duration_seconds",
		Help:    "Time spent serving a check or analyze request.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"mode"})

	// InputChars tracks the distribution of submitted text lengths.
	InputChars = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "redacheck_input_chars",
		Help:    "Number of characters in submitted text.",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})

	// GrammarRequests counts LanguageTool calls by outcome.
	GrammarRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redacheck_grammar_requests_total",
		Help: "LanguageTool requests by outcome.",
	}, []string{"outcome"})

	// GrammarDuration tracks LanguageTool call latency.
	GrammarDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "redacheck_grammar_duration_seconds",
		Help:    "Time spent on a LanguageTool request.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	// EnrichmentRequests counts Gemini calls by operation and outcome.
	EnrichmentRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redacheck_enrichment_requests_total",
		Help: "Gemini enrichment calls by operation and outcome.",
	}, []string{"op", "outcome"})

	// EnrichmentDuration tracks Gemini call latency per operation.
	EnrichmentDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "redacheck_enrichment_duration_seconds",
		Help:    "Time spent on a Gemini enrichment call.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"op"})

	// ServiceUp tracks whether each upstream dependency is reachable.
	ServiceUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "redacheck_service_up",
		Help: "Whether an upstream service is reachable (1) or not (0).",
	}, []string{"service"})
)
