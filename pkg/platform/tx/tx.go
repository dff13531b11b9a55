package tx

import (
	"context"
	"database/sql"
)

type txKey struct{}

// WithTx attaches an open transaction to the context. Stores that see it
// route their statements through the transaction instead of the pool, so a
// service-level unit of work spans every store it touches.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey{}, tx)
}

// From reports the transaction carried by ctx, if any.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}
