package sqlite

import (
	"context"
	"database/sql"

	"github.com/stashbin/stashbin/internal/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // nothing to close; caller will commit/rollback and outer DB stays open

// Ping is a no-op for transactions. The connection is already established
// when the transaction is created, so we just return nil.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users               { return &usersRepo{q: t.tx} }
func (t *txStore) Groups() store.Groups             { return &groupsRepo{q: t.tx} }
func (t *txStore) Documents() store.Documents       { return &documentsRepo{q: t.tx} }
func (t *txStore) APIKeys() store.APIKeys           { return &apiKeysRepo{q: t.tx} }
func (t *txStore) ActiveTokens() store.ActiveTokens { return &activeTokensRepo{q: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // no-op; migrations should be applied before starting a tx
