package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Querier is the part of pgxpool.Pool (and pgx.Tx) that repositories use.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
