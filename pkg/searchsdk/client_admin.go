package searchsdk

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// CreateCredential issues a new API key (requires admin:write). The raw key
// in the response is not retrievable afterwards.
func (c *SDKClient) CreateCredential(ctx context.Context, req CreateCredentialRequest) (*CreateCredentialResponse, error) {
	resp, err := c.doAdminRequest(ctx, http.MethodPost, "/v1/admin/credentials", req)
	if err != nil {
		return nil, err
	}

	var created CreateCredentialResponse
	if err := decodeJSON(resp, &created, http.StatusCreated); err != nil {
		return nil, err
	}

	return &created, nil
}

// ListCredentials lists the credentials of a tenant, or of every tenant when
// tenantID is empty (requires admin:read).
func (c *SDKClient) ListCredentials(ctx context.Context, tenantID string) ([]CredentialInfo, error) {
	path := "/v1/admin/credentials"
	if tenantID != "" {
		path += "?tenant_id=" + url.QueryEscape(tenantID)
	}

	resp, err := c.doAdminRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var list ListCredentialsResponse
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}

	return list.Credentials, nil
}

// GetCredential fetches a single credential (requires admin:read).
func (c *SDKClient) GetCredential(ctx context.Context, id string) (*CredentialInfo, error) {
	resp, err := c.doAdminRequest(ctx, http.MethodGet, "/v1/admin/credentials/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var cred CredentialInfo
	if err := decodeJSON(resp, &cred, http.StatusOK); err != nil {
		return nil, err
	}

	return &cred, nil
}

// RevokeCredential permanently disables a credential (requires admin:write).
// Revoking an already revoked credential succeeds.
func (c *SDKClient) RevokeCredential(ctx context.Context, id string) error {
	resp, err := c.doAdminRequest(ctx, http.MethodPost, "/v1/admin/credentials/"+url.PathEscape(id)+"/revoke", nil)
	if err != nil {
		return err
	}

	return checkStatusNoContent(resp)
}

// SetCredentialExpiry sets, or with nil clears, the expiry of a credential
// (requires admin:write).
func (c *SDKClient) SetCredentialExpiry(ctx context.Context, id string, expiresAt *time.Time) (*CredentialInfo, error) {
	resp, err := c.doAdminRequest(ctx, http.MethodPut, "/v1/admin/credentials/"+url.PathEscape(id)+"/expiry",
		SetExpiryRequest{ExpiresAt: expiresAt})
	if err != nil {
		return nil, err
	}

	var cred CredentialInfo
	if err := decodeJSON(resp, &cred, http.StatusOK); err != nil {
		return nil, err
	}

	return &cred, nil
}

// InvalidateCache drops every cached result of a search type (requires admin:write).
func (c *SDKClient) InvalidateCache(ctx context.Context, searchType string) error {
	resp, err := c.doAdminRequest(ctx, http.MethodDelete, "/v1/admin/cache/"+url.PathEscape(searchType), nil)
	if err != nil {
		return err
	}

	var out InvalidateCacheResponse
	return decodeJSON(resp, &out, http.StatusOK)
}
