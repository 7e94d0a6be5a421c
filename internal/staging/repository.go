package staging

import (
	"context"

	"github.com/bni27/ogp-db-api/internal/rawdata"
)

type Repository interface {
	// RebuildSwap replaces schema.table with freshly computed rows
	// without a visible-empty-table window: rows land in a staging
	// table that is swapped in atomically.
	RebuildSwap(ctx context.Context, schema, table string, columns []rawdata.Column, rows [][]any) error
}
