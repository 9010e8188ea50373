package searchsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lozadatravelagent/whole-sale-sub002/pkg/slogx"
)

// Search runs a search through the gateway. The correlation id carried by
// ctx, if any, is forwarded so gateway logs can be joined with the caller's.
//
// A rejected search returns an *APIError; rate limit denials carry the
// RetryAfter delay and the window that denied the request.
func (c *SDKClient) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"X-API-Key":    c.APIKey,
	}
	if id := slogx.CorrelationID(ctx); id != "" {
		headers["X-Correlation-ID"] = id
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/search", bytes.NewReader(data), headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp, body)
	}

	result := &SearchResult{
		Raw:           body,
		RateLimit:     parseRateLimit(resp.Header),
		Cache:         resp.Header.Get("X-Cache"),
		Replayed:      resp.Header.Get("X-Idempotent-Replay") == "true",
		CorrelationID: resp.Header.Get("X-Correlation-ID"),
	}
	if err := json.Unmarshal(body, &result.Response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return result, nil
}
