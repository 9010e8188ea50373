/*
Package searchsdk provides a client SDK for the search request gateway.

# Overview

The gateway sits in front of the wholesale search providers. Every search is
authenticated by an API key, checked against the key's scopes and rate
limits, answered from the result cache when possible, and otherwise executed
upstream. The SDKClient wraps the HTTP API:

	client := searchsdk.NewSDKClient("https://search.example.com", apiKey)

	res, err := client.Search(ctx, searchsdk.SearchRequest{
		SearchType: "flights",
		Params:     json.RawMessage(`{"from":"EZE","to":"MAD","date":"2026-12-01"}`),
		RequestID:  "req_7f3a9c21e4",
	})

# Idempotent Retries

Setting RequestID makes a search safe to retry. While the idempotency record
lives (five minutes by default) the gateway replays the original response
byte for byte, without consuming quota and without calling the providers:

	res, err := client.Search(ctx, req)
	if err != nil && isTransient(err) {
		res, err = client.Search(ctx, req) // same RequestID
	}
	if res.Replayed {
		// res.Raw equals the first response body
	}

A concurrent retry that arrives while the first request is still running
waits for it and receives the same response.

# Rate Limits

Successful responses report the window closest to exhaustion:

	if rl := res.RateLimit; rl != nil {
		fmt.Printf("%d/%d left in the %s window, resets %s\n",
			rl.Remaining, rl.Limit, rl.Window, rl.Reset)
	}

A denial is returned as an *APIError with code rate_limit_exceeded and a
RetryAfter delay:

	var apiErr *searchsdk.APIError
	if errors.As(err, &apiErr) && searchsdk.IsRateLimited(err) {
		time.Sleep(apiErr.RetryAfter)
	}

# Cache State

Res.Cache is "miss" when the providers were called, "fresh" when a cached
result within its soft TTL was served, and "stale" when an older result was
served while a background refresh runs. Res.Response.Metadata carries the
same information together with the providers consulted and per-stage timings.

# Admin API

Credentials are managed with an admin bearer token carrying the admin:read
and admin:write scopes:

	admin := client.WithAdminToken(token)

	created, err := admin.CreateCredential(ctx, searchsdk.CreateCredentialRequest{
		Name:     "agency portal",
		TenantID: "tenant-42",
		Scopes:   []string{"search:*"},
		Limits:   searchsdk.Limits{PerMinute: 60, PerHour: 1000},
	})
	// created.APIKey is shown only once

	err = admin.RevokeCredential(ctx, created.Credential.ID)
	err = admin.InvalidateCache(ctx, "hotels")

# Errors

Every non-2xx response is returned as an *APIError carrying the HTTP status,
the stable error code and a description. APIError.Retryable reports whether
the same request may succeed later.
*/
package searchsdk
