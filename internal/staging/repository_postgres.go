package staging

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bni27/ogp-db-api/internal/db"
	"github.com/bni27/ogp-db-api/internal/rawdata"
)

// --------------------------------------------------
// POSTGRES STAGE REPOSITORY
// --------------------------------------------------

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func tableRef(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}

// RebuildSwap loads the transformed rows into a side table and renames it
// over the final one inside a single transaction, so readers either see
// the previous stage table or the new one, never a half-built table.
func (r *PostgresRepository) RebuildSwap(
	ctx context.Context,
	schema string,
	table string,
	columns []rawdata.Column,
	rows [][]any,
) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin stage rebuild: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := db.AcquireRebuildLock(ctx, tx, schema, table); err != nil {
		return err
	}

	staging := table + "__staging"

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+tableRef(schema, staging)); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, rawdata.CreateTableSQL(schema, staging, columns)); err != nil {
		return err
	}

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	if _, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{schema, staging},
		names,
		pgx.CopyFromRows(rows),
	); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+tableRef(schema, table)); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf(
		"ALTER TABLE %s RENAME TO %s",
		tableRef(schema, staging),
		pgx.Identifier{table}.Sanitize(),
	)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
