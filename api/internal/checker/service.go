// Package checker orchestrates the grammar engine and the AI enrichment
// layer into the two analysis modes served by the API. Grammar failures
// abort the request; enrichment failures only degrade it.
package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"redacheck/api/internal/enrich"
	"redacheck/api/internal/model"
)

// ErrEmptyText rejects requests whose text is blank after trimming.
var ErrEmptyText = errors.New("checker: empty text")

// maxConcurrentEnrichments caps the per-request fan-out so a match-heavy
// essay cannot open dozens of upstream calls at once.
const maxConcurrentEnrichments = 4

// Grammar is the slice of the LanguageTool client the service needs.
type Grammar interface {
	Check(ctx context.Context, text string) ([]model.Match, error)
}

// Service wires the grammar engine and the enrichment layer together.
type Service struct {
	grammar Grammar
	ai      enrich.Enricher
	log     *slog.Logger
}

func New(grammar Grammar, ai enrich.Enricher, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{grammar: grammar, ai: ai, log: log}
}

// Check runs the basic mode: grammar check plus the accent sweep. No
// per-match enrichment, no punctuation suggestion, no essay report.
func (s *Service) Check(ctx context.Context, text string) (*model.CheckResponse, error) {
	matches, err := s.collect(ctx, text)
	if err != nil {
		return nil, err
	}
	resp := s.newCheckResponse(text, matches)
	return &resp, nil
}

// Analyze runs the full mode: everything Check does, plus per-match
// explanations and replacement augmentation, the punctuation suggestion
// for clean texts, and the holistic essay report.
func (s *Service) Analyze(ctx context.Context, text string) (*model.AnalyzeResponse, error) {
	matches, err := s.collect(ctx, text)
	if err != nil {
		return nil, err
	}

	// The report goroutine reads the match list while the per-match
	// goroutines write to it, so it gets its own copy, taken now.
	snapshot := slices.Clone(matches)

	var (
		analysis    model.EssayAnalysis
		punctuation string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentEnrichments)

	g.Go(func() error {
		analysis = s.ai.AnalyzeEssay(gctx, text, snapshot)
		return nil
	})
	if len(matches) == 0 {
		g.Go(func() error {
			punctuation = s.ai.SuggestPunctuation(gctx, text)
			return nil
		})
	}
	for i := range matches {
		if matches[i].Source != model.SourceLanguageTool {
			continue
		}
		g.Go(func() error {
			if got := s.ai.ExplainMatch(gctx, text, matches[i]); got != "" {
				matches[i].AIExplanation = got
			}
			if merged := s.ai.AugmentReplacements(gctx, text, matches[i]); merged != nil {
				matches[i].Replacements = merged
			}
			return nil
		})
	}
	_ = g.Wait() // enrichment is best-effort and never fails the request

	resp := &model.AnalyzeResponse{
		CheckResponse: s.newCheckResponse(text, matches),
		AIAnalysis:    analysis,
		AIUsed:        s.ai.Enabled(),
	}
	if punctuation != "" {
		resp.LLMPunctuationSuggestion = &punctuation
		resp.Suggestion = &punctuation
	}
	return resp, nil
}

// collect validates the text, runs the grammar engine and appends the
// accent-sweep matches. The sweep itself decides whether the existing
// match count leaves room for it.
func (s *Service) collect(ctx context.Context, text string) ([]model.Match, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	matches, err := s.grammar.Check(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("grammar check: %w", err)
	}
	if extra := s.ai.AccentSweep(ctx, text, matches); len(extra) > 0 {
		s.log.Debug("accent sweep added matches", "count", len(extra))
		matches = append(matches, extra...)
	}
	return matches, nil
}

func (s *Service) newCheckResponse(text string, matches []model.Match) model.CheckResponse {
	if matches == nil {
		matches = []model.Match{}
	}
	return model.CheckResponse{
		OriginalText:     text,
		CorrectionsFound: len(matches),
		Matches:          matches,
		AIEnabled:        s.ai.Enabled(),
		AIReady:          len(matches) == 0,
	}
}
