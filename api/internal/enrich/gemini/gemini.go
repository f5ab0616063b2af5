// Package gemini implements enrich.Enricher on top of the Gemini API.
// Every operation is best-effort: call failures are logged and reported
// as the zero value, never as an error to the caller.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"redacheck/api/internal/enrich"
	"redacheck/api/internal/metrics"
	"redacheck/api/internal/model"
	"redacheck/api/internal/util"
)

// Generation parameters shared by the enrichment calls. The essay report
// gets a bigger window because it returns a full JSON object.
const (
	temperature     float32 = 0.3
	maxTokens       int32   = 500
	maxTokensReport int32   = 1024
)

// fallbackModels is tried in order when the configured model is not in the
// API's model listing.
var fallbackModels = []string{
	"gemini-2.5-flash",
	"gemini-2.0-flash",
	"gemini-flash-latest",
}

var errDisabled = errors.New("gemini: enrichment disabled")

// Enricher talks to Gemini through a single process-wide client. A nil
// client (blank API key) turns every operation into a no-op, which is how
// the service runs with enrichment switched off.
type Enricher struct {
	client *genai.Client
	model  string
	log    *slog.Logger

	resolved atomic.Value // string, set once a model listing succeeds
}

var _ enrich.Enricher = (*Enricher)(nil)

// New dials the Gemini API when apiKey is non-blank; otherwise it returns
// a disabled enricher. Close must be called at process stop.
func New(ctx context.Context, apiKey, modelName string, log *slog.Logger) (*Enricher, error) {
	if log == nil {
		log = slog.Default()
	}
	e := &Enricher{model: strings.TrimSpace(modelName), log: log}
	if strings.TrimSpace(apiKey) == "" {
		return e, nil
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(strings.TrimSpace(apiKey)))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	e.client = cl
	return e, nil
}

// Enabled reports whether enrichment calls will actually reach the API.
func (e *Enricher) Enabled() bool { return e.client != nil }

// Close releases the underlying API client.
func (e *Enricher) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}

// ---------------------------- model resolution ----------------------------

// ResolveModel returns the model name used for generation, listing the
// API's models on first use. The configured name wins when the API knows
// it; otherwise the first known fallback is taken. The result is memoized
// only after a successful listing, so a transient failure is retried on
// the next call.
func (e *Enricher) ResolveModel(ctx context.Context) (string, error) {
	if v, ok := e.resolved.Load().(string); ok && v != "" {
		return v, nil
	}
	if e.client == nil {
		return "", errDisabled
	}

	available := make(map[string]bool)
	it := e.client.ListModels(ctx)
	for {
		info, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", fmt.Errorf("gemini: list models: %w", err)
		}
		available[strings.TrimPrefix(info.Name, "models/")] = true
	}

	name := e.model
	if !available[name] {
		for _, fb := range fallbackModels {
			if available[fb] {
				name = fb
				break
			}
		}
	}
	e.resolved.Store(name)
	return name, nil
}

// ModelName returns the resolved model when known, else the configured one.
func (e *Enricher) ModelName() string {
	if v, ok := e.resolved.Load().(string); ok && v != "" {
		return v
	}
	return e.model
}

// ------------------------------- operations -------------------------------

// SuggestPunctuation returns a re-punctuated version of text, or "" when
// disabled or the call fails.
func (e *Enricher) SuggestPunctuation(ctx context.Context, text string) string {
	if e.client == nil {
		return ""
	}
	out, err := e.generate(ctx, "punctuation", sysPunctuation, "Texto:\n"+text, false, maxTokens)
	if err != nil {
		e.log.Warn("punctuation suggestion failed", "err", err)
		return ""
	}
	return strings.TrimSpace(util.StripCodeFences(out))
}

// ExplainMatch returns a short didactic explanation for a single grammar
// match, or "" when disabled or the call fails.
func (e *Enricher) ExplainMatch(ctx context.Context, text string, m model.Match) string {
	if e.client == nil {
		return ""
	}
	snippet, rel := enrich.ContextWindow(text, m.Offset, m.Length)
	prompt := fmt.Sprintf("Erro apontado: %s\nTrecho: %q\nA parte com erro começa no caractere %d do trecho.",
		m.Message, snippet, rel)
	out, err := e.generate(ctx, "explain", sysExplain, prompt, false, maxTokens)
	if err != nil {
		e.log.Warn("match explanation failed", "rule_id", m.RuleID, "err", err)
		return ""
	}
	return strings.TrimSpace(out)
}

// AugmentReplacements asks for alternative replacements when a match has
// fewer than three. It returns the merged list, or nil when the list is
// already rich enough, enrichment is disabled, or the call fails.
func (e *Enricher) AugmentReplacements(ctx context.Context, text string, m model.Match) []model.Replacement {
	if e.client == nil || len(m.Replacements) >= enrich.MinReplacements {
		return nil
	}
	snippet, _ := enrich.ContextWindow(text, m.Offset, m.Length)
	existing := make([]string, 0, len(m.Replacements))
	for _, r := range m.Replacements {
		existing = append(existing, r.Value)
	}
	prompt := fmt.Sprintf("Erro apontado: %s\nTrecho: %q\nSubstituições já conhecidas: %s",
		m.Message, snippet, strings.Join(existing, ", "))

	out, err := e.generate(ctx, "augment", sysAugment, prompt, true, maxTokens)
	if err != nil {
		e.log.Warn("replacement augmentation failed", "rule_id", m.RuleID, "err", err)
		return nil
	}
	raw, ok := util.ExtractJSON(util.StripCodeFences(out))
	if !ok {
		e.log.Warn("replacement augmentation returned no JSON", "rule_id", m.RuleID)
		return nil
	}
	var alts []string
	if err := json.Unmarshal([]byte(raw), &alts); err != nil {
		e.log.Warn("replacement augmentation returned bad JSON", "rule_id", m.RuleID, "err", err)
		return nil
	}
	merged := enrich.MergeReplacements(m.Replacements, alts)
	if len(merged) == len(m.Replacements) {
		return nil
	}
	return merged
}

// AccentSweep asks for accentuation mistakes the grammar engine missed and
// synthesizes matches for them. It returns only the new matches, or nil
// when the text already carries six or more, enrichment is disabled, or
// the call fails.
func (e *Enricher) AccentSweep(ctx context.Context, text string, existing []model.Match) []model.Match {
	if e.client == nil || len(existing) >= enrich.MaxSweepMatches {
		return nil
	}
	out, err := e.generate(ctx, "accent_sweep", sysAccent, "Texto:\n"+text, true, maxTokens)
	if err != nil {
		e.log.Warn("accent sweep failed", "err", err)
		return nil
	}
	raw, ok := util.ExtractJSON(util.StripCodeFences(out))
	if !ok {
		e.log.Warn("accent sweep returned no JSON")
		return nil
	}
	var entries []enrich.AccentEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		e.log.Warn("accent sweep returned bad JSON", "err", err)
		return nil
	}
	return enrich.BuildAccentMatches(text, entries, existing)
}

// AnalyzeEssay produces the holistic essay report. The prompt depends on
// whether grammar matches were found. It returns nil when disabled or the
// call fails; a reply that is not valid JSON degrades to an error_parse
// object so the caller still gets a report field.
func (e *Enricher) AnalyzeEssay(ctx context.Context, text string, matches []model.Match) model.EssayAnalysis {
	if e.client == nil {
		return nil
	}
	out, err := e.generate(ctx, "analysis", sysAnalyze, renderAnalyzePrompt(text, matches), true, maxTokensReport)
	if err != nil {
		e.log.Warn("essay analysis failed", "err", err)
		return nil
	}
	return parseAnalysis(out)
}

// renderAnalyzePrompt picks the clean-text or with-errors prompt variant.
func renderAnalyzePrompt(text string, matches []model.Match) string {
	if len(matches) == 0 {
		return promptAnalyzeClean + text
	}
	var b strings.Builder
	b.WriteString(promptAnalyzeWithErrors)
	b.WriteString("\nErros encontrados:\n")
	for _, m := range matches {
		fmt.Fprintf(&b, "- caractere %d: %s", m.Offset, m.Message)
		if len(m.Replacements) > 0 {
			vals := make([]string, 0, len(m.Replacements))
			for _, r := range m.Replacements {
				vals = append(vals, r.Value)
			}
			fmt.Fprintf(&b, " (sugestões: %s)", strings.Join(vals, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\nRedação:\n")
	b.WriteString(text)
	return b.String()
}

// parseAnalysis decodes the model reply into a report map. Anything that is
// not a JSON object comes back as an error_parse report with a short
// excerpt of the raw reply.
func parseAnalysis(out string) model.EssayAnalysis {
	if raw, ok := util.ExtractJSON(util.StripCodeFences(out)); ok {
		var report map[string]any
		if err := json.Unmarshal([]byte(raw), &report); err == nil {
			return report
		}
	}
	return model.EssayAnalysis{
		"error_parse": true,
		"raw_excerpt": excerpt(out, 200),
	}
}

func excerpt(s string, limit int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) > limit {
		r = r[:limit]
	}
	return string(r)
}

// -------------------------------- plumbing --------------------------------

// generate performs a single generation call. There is deliberately no
// retry here: enrichment is best-effort and the request deadline is shared
// with the rest of the pipeline.
func (e *Enricher) generate(ctx context.Context, op, system, prompt string, jsonOut bool, maxTok int32) (string, error) {
	name, err := e.ResolveModel(ctx)
	if err != nil {
		if errors.Is(err, errDisabled) {
			return "", err
		}
		name = e.model
	}

	m := e.client.GenerativeModel(name)
	cfg := genai.GenerationConfig{
		Temperature:     ptrFloat32(temperature),
		MaxOutputTokens: ptrInt32(maxTok),
	}
	if jsonOut {
		cfg.ResponseMIMEType = "application/json"
	}
	m.GenerationConfig = cfg
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	start := time.Now()
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	metrics.EnrichmentDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EnrichmentRequests.WithLabelValues(op, "error").Inc()
		return "", fmt.Errorf("model %s: %w", name, err)
	}
	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		metrics.EnrichmentRequests.WithLabelValues(op, "empty").Inc()
		return "", fmt.Errorf("model %s: empty response", name)
	}
	metrics.EnrichmentRequests.WithLabelValues(op, "ok").Inc()
	return txt, nil
}

// firstText walks the response candidates and returns the first text part.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok && string(t) != "" {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }

func ptrInt32(v int32) *int32 { return &v }
