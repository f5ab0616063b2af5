package model

// CheckRequest is the body of POST /v2/check and POST /v2/analyze.
type CheckRequest struct {
	Text string `json:"text"`
}

// EssayAnalysis is the free-form holistic report produced by the LLM.
// Its keys depend on the prompt variant; a parse failure degrades it to
// {"error_parse": true, "raw_excerpt": ...}.
type EssayAnalysis map[string]any

// CheckResponse is the payload of the basic check endpoint.
type CheckResponse struct {
	OriginalText     string  `json:"original_text"`
	CorrectionsFound int     `json:"corrections_found"`
	Matches          []Match `json:"matches"`
	AIEnabled        bool    `json:"ai_enabled"`
	AIReady          bool    `json:"ai_ready"`
	Suggestion       *string `json:"suggestion"`
}

// AnalyzeResponse extends CheckResponse with the full-analysis fields.
// LLMPunctuationSuggestion duplicates Suggestion under the field name the
// existing frontend reads.
type AnalyzeResponse struct {
	CheckResponse
	AIAnalysis               EssayAnalysis `json:"ai_analysis"`
	LLMPunctuationSuggestion *string       `json:"llm_punctuation_suggestion"`
	AIUsed                   bool          `json:"ai_used"`
}
