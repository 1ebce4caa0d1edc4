package ports

import "context"

// SyncState is a small key-value ledger for per-target sync bookkeeping,
// for example the last successful sync time. Adapters may be backed by
// SQLite or any other store.
type SyncState interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
