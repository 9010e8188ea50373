// Package upstream talks to the search backend that fronts the travel
// providers. The gateway only needs its JSON contract.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/slogx"
)

// maxErrorBody bounds how much of a failed response is kept in a StatusError.
const maxErrorBody = 512

// StatusError is a non-2xx answer from the search backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream responded %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the same request may succeed later. Client
// errors other than 408 and 429 will not.
func (e *StatusError) Retryable() bool {
	switch {
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return false
	default:
		return true
	}
}

// HTTPExecutor posts search parameters to {BaseURL}/search/{type} and
// decodes the backend's answer.
type HTTPExecutor struct {
	BaseURL    string
	HTTPClient *http.Client
	// Token, when set, is sent as a bearer token.
	Token string
}

// NewHTTPExecutor builds an executor with its own client. The gateway bounds
// each call with a context deadline, so timeout is only a backstop.
func NewHTTPExecutor(baseURL, token string, timeout time.Duration) *HTTPExecutor {
	return &HTTPExecutor{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		Token:      token,
	}
}

type searchResponse struct {
	Results   json.RawMessage `json:"results"`
	Providers []string        `json:"providers"`
	Excluded  map[string]int  `json:"excluded"`
}

func (e *HTTPExecutor) Execute(ctx context.Context, searchType domain.SearchType, params json.RawMessage) (domain.SearchResult, error) {
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/search/"+string(searchType), bytes.NewReader(params))
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if e.Token != "" {
		req.Header.Set("Authorization", "Bearer "+e.Token)
	}
	if id := slogx.CorrelationID(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.SearchResult{}, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.SearchResult{}, fmt.Errorf("failed to decode response: %w", err)
	}

	slogx.FromContext(ctx).Debug("upstream search completed",
		"search_type", searchType, "providers", out.Providers)

	return domain.SearchResult{
		Payload:   out.Results,
		Providers: out.Providers,
		Excluded:  out.Excluded,
	}, nil
}
