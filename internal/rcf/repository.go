package rcf

import "context"

type Repository interface {
	// Columns lists a stage table's column names in table order.
	Columns(ctx context.Context, schema, table string) ([]string, error)
	// RatioValues reads the non-null values of one ratio column.
	RatioValues(ctx context.Context, schema, table, column string) ([]float64, error)
}
