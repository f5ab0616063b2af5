package checker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redacheck/api/internal/model"
)

type fakeGrammar struct {
	matches []model.Match
	err     error
	gotText string
}

func (f *fakeGrammar) Check(_ context.Context, text string) ([]model.Match, error) {
	f.gotText = text
	return f.matches, f.err
}

// fakeEnricher records calls under a mutex because Analyze fans out.
type fakeEnricher struct {
	enabled      bool
	sweep        []model.Match
	punctuation  string
	explanations map[int]string // keyed by match offset
	augmented    map[int][]model.Replacement
	analysis     model.EssayAnalysis

	mu               sync.Mutex
	punctuationCalls int
	sweepExisting    []model.Match
	explainOffsets   []int
	augmentOffsets   []int
	analyzeSnapshot  []model.Match
}

func (f *fakeEnricher) Enabled() bool { return f.enabled }

func (f *fakeEnricher) SuggestPunctuation(context.Context, string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.punctuationCalls++
	return f.punctuation
}

func (f *fakeEnricher) ExplainMatch(_ context.Context, _ string, m model.Match) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.explainOffsets = append(f.explainOffsets, m.Offset)
	return f.explanations[m.Offset]
}

func (f *fakeEnricher) AugmentReplacements(_ context.Context, _ string, m model.Match) []model.Replacement {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.augmentOffsets = append(f.augmentOffsets, m.Offset)
	return f.augmented[m.Offset]
}

func (f *fakeEnricher) AccentSweep(_ context.Context, _ string, existing []model.Match) []model.Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweepExisting = existing
	return f.sweep
}

func (f *fakeEnricher) AnalyzeEssay(_ context.Context, _ string, matches []model.Match) model.EssayAnalysis {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzeSnapshot = matches
	return f.analysis
}

func newService(g *fakeGrammar, e *fakeEnricher) *Service {
	return New(g, e, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func ltMatch(offset int, msg string, reps ...string) model.Match {
	m := model.Match{
		Message:      msg,
		Offset:       offset,
		Length:       4,
		RuleID:       "RULE_" + msg,
		Source:       model.SourceLanguageTool,
		Replacements: []model.Replacement{},
	}
	for _, r := range reps {
		m.Replacements = append(m.Replacements, model.Replacement{Value: r})
	}
	return m
}

func aiMatch(offset int) model.Match {
	return model.Match{
		Message:      "Possível erro de acentuação.",
		Offset:       offset,
		Length:       4,
		RuleID:       model.RuleIDAccent,
		Source:       model.SourceAI,
		Replacements: []model.Replacement{{Value: "você"}},
	}
}

func TestCheckRejectsBlankText(t *testing.T) {
	svc := newService(&fakeGrammar{}, &fakeEnricher{enabled: true})
	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := svc.Check(context.Background(), text)
		assert.ErrorIs(t, err, ErrEmptyText)
	}
}

func TestCheckGrammarFailureAborts(t *testing.T) {
	boom := errors.New("languagetool down")
	enr := &fakeEnricher{enabled: true, sweep: []model.Match{aiMatch(0)}}
	svc := newService(&fakeGrammar{err: boom}, enr)

	resp, err := svc.Check(context.Background(), "Os menino foi.")
	require.ErrorIs(t, err, boom)
	assert.Nil(t, resp)
	assert.Nil(t, enr.sweepExisting, "sweep must not run after a grammar failure")
}

func TestCheckMergesSweepAfterGrammarMatches(t *testing.T) {
	grammar := &fakeGrammar{matches: []model.Match{ltMatch(0, "concordância"), ltMatch(10, "crase")}}
	enr := &fakeEnricher{enabled: true, sweep: []model.Match{aiMatch(20)}}
	svc := newService(grammar, enr)

	resp, err := svc.Check(context.Background(), "Os menino foi a aula de voce.")
	require.NoError(t, err)

	assert.Equal(t, "Os menino foi a aula de voce.", resp.OriginalText)
	assert.Equal(t, "Os menino foi a aula de voce.", grammar.gotText)
	assert.Equal(t, 3, resp.CorrectionsFound)
	require.Len(t, resp.Matches, 3)
	// Grammar matches keep their position, sweep matches are appended.
	assert.Equal(t, model.SourceLanguageTool, resp.Matches[0].Source)
	assert.Equal(t, model.SourceLanguageTool, resp.Matches[1].Source)
	assert.Equal(t, model.SourceAI, resp.Matches[2].Source)
	assert.True(t, resp.AIEnabled)
	assert.False(t, resp.AIReady)
	assert.Nil(t, resp.Suggestion)
	assert.Len(t, enr.sweepExisting, 2, "sweep sees only the grammar matches")
}

func TestCheckCleanText(t *testing.T) {
	svc := newService(&fakeGrammar{}, &fakeEnricher{enabled: true})

	resp, err := svc.Check(context.Background(), "Tudo certo por aqui.")
	require.NoError(t, err)

	assert.Zero(t, resp.CorrectionsFound)
	assert.NotNil(t, resp.Matches, "matches must encode as [] rather than null")
	assert.Empty(t, resp.Matches)
	assert.True(t, resp.AIReady)
}

func TestCheckWithEnrichmentDisabled(t *testing.T) {
	grammar := &fakeGrammar{matches: []model.Match{ltMatch(0, "concordância")}}
	svc := newService(grammar, &fakeEnricher{enabled: false})

	resp, err := svc.Check(context.Background(), "Os menino foi.")
	require.NoError(t, err)
	assert.False(t, resp.AIEnabled)
	assert.Equal(t, 1, resp.CorrectionsFound)
}

func TestAnalyzeEnrichesGrammarMatchesOnly(t *testing.T) {
	grammar := &fakeGrammar{matches: []model.Match{
		ltMatch(0, "concordância", "são"),
		ltMatch(10, "crase"),
	}}
	enr := &fakeEnricher{
		enabled: true,
		sweep:   []model.Match{aiMatch(24)},
		explanations: map[int]string{
			0:  "O verbo deve concordar com o sujeito.",
			10: "Use crase antes de palavra feminina.",
		},
		augmented: map[int][]model.Replacement{
			10: {{Value: "à"}, {Value: "àquela"}, {Value: "a"}},
		},
		analysis: model.EssayAnalysis{"nota_estimada": 6.5},
	}
	svc := newService(grammar, enr)

	resp, err := svc.Analyze(context.Background(), "Os menino foi a aula de voce.")
	require.NoError(t, err)

	require.Len(t, resp.Matches, 3)
	assert.Equal(t, "O verbo deve concordar com o sujeito.", resp.Matches[0].AIExplanation)
	assert.Equal(t, "Use crase antes de palavra feminina.", resp.Matches[1].AIExplanation)
	assert.Empty(t, resp.Matches[2].AIExplanation, "synthesized matches are not explained")

	require.Len(t, resp.Matches[1].Replacements, 3)
	assert.Equal(t, "à", resp.Matches[1].Replacements[0].Value)

	assert.Equal(t, 3, resp.CorrectionsFound)
	assert.Equal(t, model.EssayAnalysis{"nota_estimada": 6.5}, resp.AIAnalysis)
	assert.True(t, resp.AIUsed)

	// A text with matches gets no punctuation suggestion.
	assert.Zero(t, enr.punctuationCalls)
	assert.Nil(t, resp.LLMPunctuationSuggestion)
	assert.Nil(t, resp.Suggestion)

	// Only the two grammar matches are explained, never the accent one.
	assert.ElementsMatch(t, []int{0, 10}, enr.explainOffsets)
	assert.ElementsMatch(t, []int{0, 10}, enr.augmentOffsets)

	// The report saw the merged list as it was before per-match writes.
	require.Len(t, enr.analyzeSnapshot, 3)
	assert.Empty(t, enr.analyzeSnapshot[0].AIExplanation)
}

func TestAnalyzeCleanTextGetsPunctuation(t *testing.T) {
	enr := &fakeEnricher{
		enabled:     true,
		punctuation: "Tudo certo, por aqui.",
		analysis:    model.EssayAnalysis{"coesao": "boa"},
	}
	svc := newService(&fakeGrammar{}, enr)

	resp, err := svc.Analyze(context.Background(), "Tudo certo por aqui.")
	require.NoError(t, err)

	assert.Equal(t, 1, enr.punctuationCalls)
	require.NotNil(t, resp.LLMPunctuationSuggestion)
	assert.Equal(t, "Tudo certo, por aqui.", *resp.LLMPunctuationSuggestion)
	require.NotNil(t, resp.Suggestion)
	assert.Equal(t, *resp.LLMPunctuationSuggestion, *resp.Suggestion)
	assert.True(t, resp.AIReady)
	assert.Equal(t, model.EssayAnalysis{"coesao": "boa"}, resp.AIAnalysis)
}

func TestAnalyzeDegradesWhenEnrichmentFails(t *testing.T) {
	// Enabled enricher whose calls all come back empty, as after upstream
	// failures. The request must still succeed on grammar data alone.
	grammar := &fakeGrammar{matches: []model.Match{ltMatch(0, "concordância")}}
	enr := &fakeEnricher{enabled: true}
	svc := newService(grammar, enr)

	resp, err := svc.Analyze(context.Background(), "Os menino foi.")
	require.NoError(t, err)

	assert.Equal(t, 1, resp.CorrectionsFound)
	assert.Empty(t, resp.Matches[0].AIExplanation)
	assert.Nil(t, resp.AIAnalysis)
	assert.Nil(t, resp.Suggestion)
	assert.True(t, resp.AIUsed, "enrichment was active even though it failed")
}

func TestAnalyzeGrammarFailureSkipsEnrichment(t *testing.T) {
	boom := errors.New("timeout")
	enr := &fakeEnricher{enabled: true}
	svc := newService(&fakeGrammar{err: boom}, enr)

	_, err := svc.Analyze(context.Background(), "Os menino foi.")
	require.ErrorIs(t, err, boom)
	assert.Zero(t, enr.punctuationCalls)
	assert.Empty(t, enr.explainOffsets)
	assert.Nil(t, enr.analyzeSnapshot)
}

func TestAnalyzeRejectsBlankText(t *testing.T) {
	svc := newService(&fakeGrammar{}, &fakeEnricher{enabled: true})
	_, err := svc.Analyze(context.Background(), " \t ")
	assert.ErrorIs(t, err, ErrEmptyText)
}
