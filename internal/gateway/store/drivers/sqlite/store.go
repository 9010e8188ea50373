package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so every repo runs the same
// queries inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db  *sql.DB
	dsn string
}

// NewStore opens a sqlite database. ":memory:" gives a private in-memory
// database, which is pinned to a single connection so every query sees the
// same schema.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Credentials() store.Credentials               { return &credentialsRepo{db: s.db} }
func (s *Store) Counters() store.Counters                     { return &countersRepo{db: s.db} }
func (s *Store) IdempotencyRecords() store.IdempotencyRecords { return &idempotencyRepo{db: s.db} }
func (s *Store) CacheEntries() store.CacheEntries             { return &cacheRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapUniqueViolation(err error) error {
	var se *msqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return store.ErrAlreadyExists
		}
	}
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

// rowsAffectedOrNotFound turns a zero-row UPDATE into ErrNotFound.
func rowsAffectedOrNotFound(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func mapNullMillis(n sql.NullInt64) *time.Time {
	if n.Valid {
		val := fromMillis(n.Int64)
		return &val
	}
	return nil
}

func mapOptionalMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func splitAndFilter(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Fields(s)
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

const credentialColumns = `id, name, secret_hash, tenant_id, sub_tenant_id, scopes,
	limit_per_minute, limit_per_hour, limit_per_day, status, expires_at,
	last_used_at, usage_count, created_at, updated_at`

func scanCredential(row rowScanner) (domain.Credential, error) {
	var (
		c                    domain.Credential
		subTenant            sql.NullString
		scopes, status       string
		expiresAt, lastUsed  sql.NullInt64
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.SecretHash, &c.TenantID, &subTenant, &scopes,
		&c.Limits.PerMinute, &c.Limits.PerHour, &c.Limits.PerDay, &status, &expiresAt,
		&lastUsed, &c.UsageCount, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Credential{}, err
	}

	c.SubTenantID = mapNullString(subTenant)
	c.Scopes = splitAndFilter(scopes)
	c.Status = domain.CredentialStatus(status)
	c.ExpiresAt = mapNullMillis(expiresAt)
	c.LastUsedAt = mapNullMillis(lastUsed)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return c, nil
}
