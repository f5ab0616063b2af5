package languagetool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"redacheck/api/internal/metrics"
	"redacheck/api/internal/model"
)

// Failure taxonomy of the grammar service. Callers match with errors.Is,
// or errors.As for *StatusError.
var (
	ErrUnavailable = errors.New("languagetool unavailable")
	ErrTimeout     = errors.New("languagetool timeout")
)

// StatusError is a non-2xx reply from the grammar service. Body carries the
// upstream error text so handlers can echo it.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("languagetool: status %d: %s", e.Code, e.Body)
}

// Connection pool bounds, matching the deployment the service was sized for.
const (
	maxKeepAlive = 10
	maxConns     = 20
)

// Client calls a LanguageTool-compatible HTTP API. It owns one pooled
// http.Client shared by all in-flight requests: create it at process start,
// inject it, and Close it at process stop.
type Client struct {
	baseURL string
	httpc   *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpc: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        maxKeepAlive,
				MaxIdleConnsPerHost: maxKeepAlive,
				MaxConnsPerHost:     maxConns,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// BaseURL returns the configured service URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Close releases the pooled connections.
func (c *Client) Close() { c.httpc.CloseIdleConnections() }

// checkResponse mirrors the part of the /v2/check reply we consume.
// Missing fields decode to zero values.
type checkResponse struct {
	Matches []struct {
		Message      string              `json:"message"`
		Replacements []model.Replacement `json:"replacements"`
		Offset       int                 `json:"offset"`
		Length       int                 `json:"length"`
		Context      model.Context       `json:"context"`
		Rule         struct {
			ID string `json:"id"`
		} `json:"rule"`
	} `json:"matches"`
}

// Check submits text for grammar checking and maps the upstream matches.
// One attempt, no retries; ctx cancellation aborts the call.
func (c *Client) Check(ctx context.Context, text string) ([]model.Match, error) {
	start := time.Now()
	matches, err := c.check(ctx, text)
	metrics.GrammarDuration.Observe(time.Since(start).Seconds())
	metrics.GrammarRequests.WithLabelValues(grammarOutcome(err)).Inc()
	return matches, err
}

func (c *Client) check(ctx context.Context, text string) ([]model.Match, error) {
	form := url.Values{
		"text":         {text},
		"language":     {"pt-BR"},
		"level":        {"picky"},
		"enabledRules": {"CONCORDANCIA_SER_PLURAL"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("languagetool: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("languagetool: decode response: %w", err)
	}

	matches := make([]model.Match, 0, len(out.Matches))
	for _, m := range out.Matches {
		repl := m.Replacements
		if repl == nil {
			repl = []model.Replacement{}
		}
		matches = append(matches, model.Match{
			Message:      m.Message,
			Replacements: repl,
			Offset:       m.Offset,
			Length:       m.Length,
			RuleID:       m.Rule.ID,
			Context:      m.Context,
			Source:       model.SourceLanguageTool,
		})
	}
	return matches, nil
}

// Languages probes GET /v2/languages. Used by the startup connectivity
// check and the health reporter.
func (c *Client) Languages(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/languages", nil)
	if err != nil {
		return fmt.Errorf("languagetool: build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

// grammarOutcome maps a Check error onto the metric label set.
func grammarOutcome(err error) string {
	var serr *StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.As(err, &serr):
		return "rejected"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

// classify folds transport errors into the taxonomy: deadline overruns are
// ErrTimeout, everything else is ErrUnavailable.
func classify(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
