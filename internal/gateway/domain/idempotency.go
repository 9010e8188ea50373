package domain

import "time"

// IdempotencyRecord is the response already produced for a client-supplied
// request id. Response holds the exact bytes sent to the client the first
// time so replays are byte-identical.
type IdempotencyRecord struct {
	RequestID    string
	SearchID     string
	CredentialID string
	Response     []byte
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

func (r IdempotencyRecord) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
