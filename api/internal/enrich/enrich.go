package enrich

import (
	"context"
	"strings"
	"unicode"

	"redacheck/api/internal/model"
)

// Enricher is the best-effort suggestion layer on top of the grammar
// results. Implementations swallow their own failures: every method returns
// its zero value instead of an error, and all of them are no-ops when the
// provider is disabled or has no credential.
type Enricher interface {
	// Enabled reports whether enrichment calls may happen at all.
	Enabled() bool
	// SuggestPunctuation returns punctuation-corrected text, or "".
	SuggestPunctuation(ctx context.Context, text string) string
	// ExplainMatch returns a short didactic explanation for the match, or "".
	ExplainMatch(ctx context.Context, text string, m model.Match) string
	// AugmentReplacements returns the match's replacement list extended with
	// model alternatives, or nil when unchanged.
	AugmentReplacements(ctx context.Context, text string, m model.Match) []model.Replacement
	// AccentSweep returns accentuation matches the grammar service missed.
	AccentSweep(ctx context.Context, text string, existing []model.Match) []model.Match
	// AnalyzeEssay returns the holistic report, or nil when skipped or failed.
	AnalyzeEssay(ctx context.Context, text string, matches []model.Match) model.EssayAnalysis
}

const (
	// MinReplacements: a match with fewer candidates than this gets extras.
	MinReplacements = 3
	// MaxReplacements caps the merged candidate list.
	MaxReplacements = 5
	// MaxSweepMatches: the accent sweep is skipped once this many matches exist.
	MaxSweepMatches = 6
	// ContextRadius is how many runes of text surround a match in prompts.
	ContextRadius = 30
)

// AccentEntry is one item of the accent-sweep JSON reply.
type AccentEntry struct {
	Word       string `json:"word"`
	Correction string `json:"correction"`
	Message    string `json:"message"`
}

// MergeReplacements unions the existing replacement list with the model's
// alternatives. Existing entries keep their order and are never dropped;
// duplicates are detected case-insensitively; the result holds at most
// MaxReplacements values.
func MergeReplacements(existing []model.Replacement, alternatives []string) []model.Replacement {
	merged := make([]model.Replacement, len(existing), max(len(existing), MaxReplacements))
	copy(merged, existing)

	seen := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		seen[strings.ToLower(r.Value)] = struct{}{}
	}

	for _, alt := range alternatives {
		if len(merged) >= MaxReplacements {
			break
		}
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}
		key := strings.ToLower(alt)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, model.Replacement{Value: alt})
	}
	return merged
}

// BuildAccentMatches turns accent-sweep entries into synthesized matches.
// Each entry is anchored at the first case-insensitive occurrence of its
// word; entries whose exact (offset, length) span is already covered by an
// existing or previously synthesized match are skipped. Offsets are in
// runes, consistent with the grammar service.
func BuildAccentMatches(text string, entries []AccentEntry, existing []model.Match) []model.Match {
	textRunes := []rune(text)
	lowerText := lowerRunes(textRunes)

	var out []model.Match
	for _, e := range entries {
		word := strings.TrimSpace(e.Word)
		if word == "" {
			continue
		}
		wordRunes := lowerRunes([]rune(word))
		offset := runeIndex(lowerText, wordRunes)
		if offset < 0 {
			continue
		}
		length := len(wordRunes)
		if covered(existing, offset, length) || covered(out, offset, length) {
			continue
		}

		msg := strings.TrimSpace(e.Message)
		if msg == "" {
			msg = "Possível erro de acentuação."
		}
		repl := []model.Replacement{}
		if corr := strings.TrimSpace(e.Correction); corr != "" {
			repl = append(repl, model.Replacement{Value: corr})
		}

		snippet, rel := ContextWindow(text, offset, length)
		out = append(out, model.Match{
			Message:      msg,
			Replacements: repl,
			Offset:       offset,
			Length:       length,
			RuleID:       model.RuleIDAccent,
			Context:      model.Context{Text: snippet, Offset: rel, Length: length},
			Source:       model.SourceAI,
		})
	}
	return out
}

// ContextWindow returns up to ContextRadius runes of text on each side of
// the span, plus the span's offset relative to the returned snippet.
// Out-of-bounds spans are clamped.
func ContextWindow(text string, offset, length int) (string, int) {
	runes := []rune(text)
	if offset < 0 {
		offset = 0
	}
	if offset > len(runes) {
		offset = len(runes)
	}
	end := offset + length
	if end > len(runes) {
		end = len(runes)
	}

	start := offset - ContextRadius
	if start < 0 {
		start = 0
	}
	stop := end + ContextRadius
	if stop > len(runes) {
		stop = len(runes)
	}
	return string(runes[start:stop]), offset - start
}

func covered(matches []model.Match, offset, length int) bool {
	for _, m := range matches {
		if m.Span(offset, length) {
			return true
		}
	}
	return false
}

// lowerRunes lowercases rune-by-rune so offsets stay aligned with the
// original text.
func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func runeIndex(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		j := 0
		for ; j < len(needle); j++ {
			if haystack[i+j] != needle[j] {
				break
			}
		}
		if j == len(needle) {
			return i
		}
	}
	return -1
}
