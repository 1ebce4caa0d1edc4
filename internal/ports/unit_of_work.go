package ports

import "context"

// Tx is an opaque transaction handle for repositories. Infrastructure
// controls the concrete type (for example, *gorm.DB).
type Tx interface{}

// UnitOfWork defines the transaction boundary around one hierarchy unit.
//
// Callback-style: returning an error rolls the unit back, returning nil
// commits it.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

// WithTxContext stores a transaction handle in context.
func WithTxContext(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext reads a transaction handle from context.
func TxFromContext(ctx context.Context) Tx {
	return ctx.Value(txKey{})
}
