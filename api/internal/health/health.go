// Package health probes the service's upstream dependencies and folds the
// results into one overall status.
package health

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"redacheck/api/internal/languagetool"
	"redacheck/api/internal/metrics"
)

// Overall statuses, worst first.
const (
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
	StatusHealthy   = "healthy"
)

// Per-service statuses.
const (
	ServiceConnected   = "connected"
	ServiceDegraded    = "degraded"
	ServiceUnavailable = "unavailable"
	ServiceDisabled    = "disabled"
)

// probeTimeout bounds both probes together. Health checks answer fast or
// not at all.
const probeTimeout = 5 * time.Second

// Service describes one dependency probe result.
type Service struct {
	Status     string `json:"status"`
	URL        string `json:"url,omitempty"`
	Model      string `json:"model,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Report is the full health reply.
type Report struct {
	Status   string             `json:"status"`
	Services map[string]Service `json:"services"`
}

// Grammar is the probe surface of the LanguageTool client.
type Grammar interface {
	BaseURL() string
	Languages(ctx context.Context) error
}

// Enrichment is the probe surface of the AI enricher.
type Enrichment interface {
	Enabled() bool
	ResolveModel(ctx context.Context) (string, error)
}

// Reporter runs the dependency probes. It is read-only: probing never
// changes how requests are served.
type Reporter struct {
	grammar Grammar
	ai      Enrichment
}

func New(grammar Grammar, ai Enrichment) *Reporter {
	return &Reporter{grammar: grammar, ai: ai}
}

// Report probes both dependencies concurrently and aggregates. The grammar
// service is load-bearing: unreachable means unhealthy. The enricher only
// degrades the status, and only when it is enabled.
func (r *Reporter) Report(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var grammarSvc, llmSvc Service
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		grammarSvc = r.probeGrammar(gctx)
		return nil
	})
	g.Go(func() error {
		llmSvc = r.probeLLM(gctx)
		return nil
	})
	_ = g.Wait()

	overall := StatusHealthy
	switch grammarSvc.Status {
	case ServiceUnavailable:
		overall = StatusUnhealthy
	case ServiceDegraded:
		overall = StatusDegraded
	}
	if overall != StatusUnhealthy && r.ai.Enabled() && llmSvc.Status != ServiceConnected {
		overall = StatusDegraded
	}

	return Report{
		Status: overall,
		Services: map[string]Service{
			"grammar": grammarSvc,
			"llm":     llmSvc,
		},
	}
}

func (r *Reporter) probeGrammar(ctx context.Context) Service {
	svc := Service{URL: r.grammar.BaseURL()}
	err := r.grammar.Languages(ctx)

	var serr *languagetool.StatusError
	switch {
	case err == nil:
		svc.Status = ServiceConnected
	case errors.As(err, &serr):
		// Reachable but answering badly.
		svc.Status = ServiceDegraded
		svc.StatusCode = serr.Code
		svc.Error = err.Error()
	default:
		svc.Status = ServiceUnavailable
		svc.Error = err.Error()
	}

	up := 0.0
	if svc.Status == ServiceConnected {
		up = 1
	}
	metrics.ServiceUp.WithLabelValues("grammar").Set(up)
	return svc
}

func (r *Reporter) probeLLM(ctx context.Context) Service {
	if !r.ai.Enabled() {
		return Service{Status: ServiceDisabled}
	}

	name, err := r.ai.ResolveModel(ctx)
	if err != nil {
		metrics.ServiceUp.WithLabelValues("llm").Set(0)
		return Service{Status: ServiceUnavailable, Error: err.Error()}
	}
	metrics.ServiceUp.WithLabelValues("llm").Set(1)
	return Service{Status: ServiceConnected, Model: name}
}
