package searchsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the search gateway.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// APIKey is sent as X-API-Key on search requests.
	APIKey string

	// AdminToken is the bearer token used for the admin API. It must carry
	// admin:read or admin:write depending on the call.
	AdminToken string
}

// NewSDKClient creates a new gateway client authenticating searches with apiKey.
func NewSDKClient(baseURL, apiKey string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		APIKey: apiKey,
	}
}

// WithAdminToken returns a copy of the client that uses token for the admin API.
func (c *SDKClient) WithAdminToken(token string) *SDKClient {
	cp := *c
	cp.AdminToken = token
	return &cp
}
