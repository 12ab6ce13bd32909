package postgres

import (
	"context"
)

// IClient is the narrow surface services use for transaction management. The
// repositories resolve the active transaction themselves through the context, so
// services only ever need WithTx to delimit an atomic unit of work.
type IClient interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

var _ IClient = (*DB)(nil)
