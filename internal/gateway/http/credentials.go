package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/service"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/httpx"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/searchsdk"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/slogx"
)

// CredentialsHandler handles the API key management endpoints.
type CredentialsHandler struct {
	CredentialService *service.CredentialService
}

// HandleCreate handles POST /v1/admin/credentials
//
//	@Summary		Create API key
//	@Description	Issues a new tenant API key. The raw key is returned once and cannot be retrieved afterwards.
//	@Tags			Credentials
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string								true	"Bearer token with admin:write scope"
//	@Param			request			body		searchsdk.CreateCredentialRequest	true	"Credential creation request"
//	@Success		201				{object}	searchsdk.CreateCredentialResponse	"credential and api_key"
//	@Failure		400				{object}	searchsdk.ErrorResponse				"error, error_description"
//	@Failure		401				{object}	searchsdk.ErrorResponse				"error, error_description"
//	@Failure		403				{object}	searchsdk.ErrorResponse				"error, error_description"
//	@Failure		500				{object}	searchsdk.ErrorResponse				"error, error_description"
//	@Router			/v1/admin/credentials [post].
func (h *CredentialsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req searchsdk.CreateCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, searchsdk.ErrorCodeInvalidRequest, "Invalid JSON in request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	cred, secret, err := h.CredentialService.CreateCredential(ctx, service.NewCredential{
		Name:        req.Name,
		TenantID:    req.TenantID,
		SubTenantID: req.SubTenantID,
		Scopes:      req.Scopes,
		Limits: domain.Limits{
			PerMinute: req.Limits.PerMinute,
			PerHour:   req.Limits.PerHour,
			PerDay:    req.Limits.PerDay,
		},
		ExpiresAt: req.ExpiresAt,
	})
	if errors.Is(err, service.ErrNoScopes) {
		writeError(w, http.StatusBadRequest, searchsdk.ErrorCodeInvalidRequest, "At least one scope is required")
		return
	}
	if err != nil {
		log.Error("failed to create credential", "error", err)
		writeError(w, http.StatusInternalServerError, searchsdk.ErrorCodeInternalError, "Failed to create credential")
		return
	}

	log.Info("api key issued", "credential_id", cred.ID, "admin", httpx.SubjectFromContext(ctx))

	httpx.WriteJSON(w, http.StatusCreated, searchsdk.CreateCredentialResponse{
		Credential: credentialInfo(cred),
		APIKey:     secret,
	})
}

// HandleList handles GET /v1/admin/credentials
//
//	@Summary		List API keys
//	@Description	Lists credentials, newest first. Secrets are never returned.
//	@Tags			Credentials
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string								true	"Bearer token with admin:read scope"
//	@Param			tenant_id		query		string								false	"Only list this tenant's credentials"
//	@Success		200				{object}	searchsdk.ListCredentialsResponse	"credentials"
//	@Failure		401				{object}	searchsdk.ErrorResponse				"error, error_description"
//	@Failure		403				{object}	searchsdk.ErrorResponse				"error, error_description"
//	@Failure		500				{object}	searchsdk.ErrorResponse				"error, error_description"
//	@Router			/v1/admin/credentials [get].
func (h *CredentialsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	creds, err := h.CredentialService.ListCredentials(ctx, r.URL.Query().Get("tenant_id"))
	if err != nil {
		log.Error("failed to list credentials", "error", err)
		writeError(w, http.StatusInternalServerError, searchsdk.ErrorCodeInternalError, "Failed to list credentials")
		return
	}

	out := make([]searchsdk.CredentialInfo, len(creds))
	for i, c := range creds {
		out[i] = credentialInfo(c)
	}

	httpx.WriteJSON(w, http.StatusOK, searchsdk.ListCredentialsResponse{Credentials: out})
}

// HandleGet handles GET /v1/admin/credentials/{id}
//
//	@Summary		Get API key
//	@Tags			Credentials
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string						true	"Bearer token with admin:read scope"
//	@Param			id				path		string						true	"Credential ID"
//	@Success		200				{object}	searchsdk.CredentialInfo	"credential"
//	@Failure		401				{object}	searchsdk.ErrorResponse		"error, error_description"
//	@Failure		403				{object}	searchsdk.ErrorResponse		"error, error_description"
//	@Failure		404				{object}	searchsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/admin/credentials/{id} [get].
func (h *CredentialsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cred, err := h.CredentialService.GetCredential(ctx, r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, "get", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, credentialInfo(cred))
}

// HandleRevoke handles POST /v1/admin/credentials/{id}/revoke
//
//	@Summary		Revoke API key
//	@Description	Permanently disables a credential. Revoking twice is not an error.
//	@Tags			Credentials
//	@Security		BearerAuth
//	@Param			Authorization	header	string	true	"Bearer token with admin:write scope"
//	@Param			id				path	string	true	"Credential ID"
//	@Success		204				"No Content"
//	@Failure		401				{object}	searchsdk.ErrorResponse	"error, error_description"
//	@Failure		403				{object}	searchsdk.ErrorResponse	"error, error_description"
//	@Failure		404				{object}	searchsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/admin/credentials/{id}/revoke [post].
func (h *CredentialsHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if err := h.CredentialService.RevokeCredential(ctx, id); err != nil {
		h.writeServiceError(w, r, "revoke", err)
		return
	}

	slogx.FromContext(ctx).Info("api key revoked", "credential_id", id, "admin", httpx.SubjectFromContext(ctx))
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetExpiry handles PUT /v1/admin/credentials/{id}/expiry
//
//	@Summary		Set API key expiry
//	@Description	Sets the expiry of an active credential; a null expires_at removes it.
//	@Tags			Credentials
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string						true	"Bearer token with admin:write scope"
//	@Param			id				path		string						true	"Credential ID"
//	@Param			request			body		searchsdk.SetExpiryRequest	true	"New expiry"
//	@Success		200				{object}	searchsdk.CredentialInfo	"updated credential"
//	@Failure		400				{object}	searchsdk.ErrorResponse		"error, error_description"
//	@Failure		404				{object}	searchsdk.ErrorResponse		"error, error_description"
//	@Failure		409				{object}	searchsdk.ErrorResponse		"credential is revoked"
//	@Router			/v1/admin/credentials/{id}/expiry [put].
func (h *CredentialsHandler) HandleSetExpiry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	var req searchsdk.SetExpiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, searchsdk.ErrorCodeInvalidRequest, "Invalid JSON in request body")
		return
	}

	if err := h.CredentialService.SetExpiry(ctx, id, req.ExpiresAt); err != nil {
		h.writeServiceError(w, r, "set expiry", err)
		return
	}

	cred, err := h.CredentialService.GetCredential(ctx, id)
	if err != nil {
		h.writeServiceError(w, r, "get", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, credentialInfo(cred))
}

func (h *CredentialsHandler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrCredentialNotFound):
		writeError(w, http.StatusNotFound, searchsdk.ErrorCodeNotFound, "Credential not found")
	case errors.Is(err, service.ErrCredentialRevoked):
		writeError(w, http.StatusConflict, searchsdk.ErrorCodeInvalidRequest, "Credential is revoked")
	default:
		slogx.FromContext(r.Context()).Error("credential operation failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, searchsdk.ErrorCodeInternalError, "Credential operation failed")
	}
}

func credentialInfo(c domain.Credential) searchsdk.CredentialInfo {
	scopes := c.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	return searchsdk.CredentialInfo{
		ID:          c.ID,
		Name:        c.Name,
		TenantID:    c.TenantID,
		SubTenantID: c.SubTenantID,
		Scopes:      scopes,
		Limits: searchsdk.Limits{
			PerMinute: c.Limits.PerMinute,
			PerHour:   c.Limits.PerHour,
			PerDay:    c.Limits.PerDay,
		},
		Status:     string(c.Status),
		ExpiresAt:  c.ExpiresAt,
		LastUsedAt: c.LastUsedAt,
		UsageCount: c.UsageCount,
		CreatedAt:  c.CreatedAt,
	}
}
