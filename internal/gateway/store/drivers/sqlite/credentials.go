package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
)

type credentialsRepo struct {
	db dbtx
}

func (r *credentialsRepo) CreateCredential(ctx context.Context, c domain.Credential) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	if c.Status == "" {
		c.Status = domain.CredentialActive
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credentials (`+credentialColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.SecretHash, c.TenantID, mapStringNull(c.SubTenantID), strings.Join(c.Scopes, " "),
		c.Limits.PerMinute, c.Limits.PerHour, c.Limits.PerDay, string(c.Status), mapOptionalMillis(c.ExpiresAt),
		mapOptionalMillis(c.LastUsedAt), c.UsageCount, toMillis(c.CreatedAt), toMillis(c.UpdatedAt),
	)
	return mapUniqueViolation(err)
}

func (r *credentialsRepo) GetCredentialByID(ctx context.Context, id string) (domain.Credential, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE id = ?`, id)
	c, err := scanCredential(row)
	if err != nil {
		return domain.Credential{}, mapNotFound(err)
	}
	return c, nil
}

func (r *credentialsRepo) GetCredentialBySecretHash(ctx context.Context, hash string) (domain.Credential, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE secret_hash = ?`, hash)
	c, err := scanCredential(row)
	if err != nil {
		return domain.Credential{}, mapNotFound(err)
	}
	return c, nil
}

func (r *credentialsRepo) ListCredentials(ctx context.Context, tenantID string) ([]domain.Credential, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+credentialColumns+` FROM credentials
		WHERE (? = '' OR tenant_id = ?)
		ORDER BY created_at DESC, id DESC`,
		tenantID, tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *credentialsRepo) UpdateCredentialStatus(ctx context.Context, id string, status domain.CredentialStatus) error {
	return rowsAffectedOrNotFound(r.db.ExecContext(ctx,
		`UPDATE credentials SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), toMillis(time.Now()), id,
	))
}

func (r *credentialsRepo) UpdateCredentialExpiry(ctx context.Context, id string, expiresAt *time.Time) error {
	return rowsAffectedOrNotFound(r.db.ExecContext(ctx,
		`UPDATE credentials SET expires_at = ?, updated_at = ? WHERE id = ?`,
		mapOptionalMillis(expiresAt), toMillis(time.Now()), id,
	))
}

func (r *credentialsRepo) TouchCredentialUsage(ctx context.Context, id string, usedAt time.Time) error {
	return rowsAffectedOrNotFound(r.db.ExecContext(ctx, `
		UPDATE credentials
		SET last_used_at = MAX(COALESCE(last_used_at, 0), ?), usage_count = usage_count + 1
		WHERE id = ?`,
		toMillis(usedAt), id,
	))
}
