package model

// Match sources.
const (
	SourceLanguageTool = "languagetool"
	SourceAI           = "ai"
)

// RuleIDAccent marks matches synthesized by the accentuation sweep.
const RuleIDAccent = "AI_ACCENT_CHECK"

// Replacement is one suggested substitution for a match span.
type Replacement struct {
	Value string `json:"value"`
}

// Context is the snippet LanguageTool returns around a match.
type Context struct {
	Text   string `json:"text"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

// Match is a single grammar or style finding. Offset and Length are in
// runes, counted from the start of the submitted text, and offset+length
// never exceeds its bounds.
type Match struct {
	Message       string        `json:"message"`
	Replacements  []Replacement `json:"replacements"`
	Offset        int           `json:"offset"`
	Length        int           `json:"length"`
	RuleID        string        `json:"ruleId"`
	Context       Context       `json:"context"`
	Source        string        `json:"source"`
	AIExplanation string        `json:"ai_explanation,omitempty"`
}

// Span reports whether the match covers exactly the given offset/length pair.
func (m Match) Span(offset, length int) bool {
	return m.Offset == offset && m.Length == length
}
