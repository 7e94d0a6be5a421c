package rawdata

import "context"

// Repository defines the data-access contract for raw dataset tables.
// Service depends ONLY on this interface.
type Repository interface {
	Rebuild(ctx context.Context, schema, table string, columns []Column, rows [][]any) error
	ListTables(ctx context.Context, schema string) ([]string, error)
	TableExists(ctx context.Context, schema, table string) (bool, error)
	TableColumns(ctx context.Context, schema, table string) ([]Column, error)
	SelectAll(ctx context.Context, schema, table string) (*Table, error)
	Drop(ctx context.Context, schema, table string) error
	RowCount(ctx context.Context, schema, table string) (int64, error)

	GetRecord(ctx context.Context, schema, table, projectID, sample string) (map[string]any, error)
	InsertRecord(ctx context.Context, schema, table string, rec *Record) error
	UpdateRecord(ctx context.Context, schema, table string, rec *Record) error
	DeleteRecord(ctx context.Context, schema, table, projectID, sample string) error
}
