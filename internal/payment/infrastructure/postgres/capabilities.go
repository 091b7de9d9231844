package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HasRelation probes whether an optional relation exists. Runs once at
// startup; the result is injected as a capability flag so request paths never
// depend on catching undefined-table errors.
func HasRelation(ctx context.Context, pool *pgxpool.Pool, name string) (bool, error) {
	var regclass *string
	if err := pool.QueryRow(ctx, `SELECT to_regclass($1)::text`, name).Scan(&regclass); err != nil {
		return false, err
	}
	return regclass != nil, nil
}
