package sqlite

import (
	"context"
	"database/sql"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller will commit/rollback and outer DB stays open

// Ping is a no-op for transactions; the connection is already held.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Credentials() store.Credentials               { return &credentialsRepo{db: t.tx} }
func (t *txStore) Counters() store.Counters                     { return &countersRepo{db: t.tx} }
func (t *txStore) IdempotencyRecords() store.IdempotencyRecords { return &idempotencyRepo{db: t.tx} }
func (t *txStore) CacheEntries() store.CacheEntries             { return &cacheRepo{db: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations are applied before starting a tx
