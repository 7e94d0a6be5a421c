package rawdata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bni27/ogp-db-api/internal/db"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func tableRef(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}

// --------------------------------------------------
// Rebuild a raw table from a parsed dataset file
// --------------------------------------------------
func (r *PostgresRepository) Rebuild(
	ctx context.Context,
	schema string,
	table string,
	columns []Column,
	rows [][]any,
) error {

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := db.AcquireRebuildLock(ctx, tx, schema, table); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+tableRef(schema, table)); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, CreateTableSQL(schema, table, columns)); err != nil {
		return err
	}

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}

	if _, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{schema, table},
		names,
		pgx.CopyFromRows(rows),
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CreateTableSQL builds the CREATE TABLE statement for a project table.
// Every table in the pipeline shares the same composite primary key, so
// the stage rebuild reuses this when it creates its swap-in table.
func CreateTableSQL(schema, table string, columns []Column) string {
	pks := make(map[string]bool, len(PrimaryKeys))
	for _, pk := range PrimaryKeys {
		pks[pk] = true
	}

	defs := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		def := pgx.Identifier{c.Name}.Sanitize() + " " + c.Type
		if pks[c.Name] {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(PrimaryKeys, ", ")))

	return fmt.Sprintf(
		"CREATE TABLE %s ( %s )",
		tableRef(schema, table),
		strings.Join(defs, ", "),
	)
}

// --------------------------------------------------
// Table inspection
// --------------------------------------------------
func (r *PostgresRepository) ListTables(ctx context.Context, schema string) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		ORDER BY table_name
	`, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (r *PostgresRepository) TableExists(ctx context.Context, schema, table string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.tables
			WHERE table_schema = $1 AND table_name = $2
		)
	`, schema, table).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) TableColumns(ctx context.Context, schema, table string) ([]Column, error) {
	rows, err := r.db.Query(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, Column{Name: name, Type: DataType(name)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, ErrTableNotFound
	}
	return columns, nil
}

// SelectAll reads a whole table, ordered by primary key so repeated reads
// of unchanged data come back in the same order.
func (r *PostgresRepository) SelectAll(ctx context.Context, schema, table string) (*Table, error) {
	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf("SELECT * FROM %s ORDER BY project_id, sample", tableRef(schema, table)),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]Column, len(fields))
	for i, f := range fields {
		columns[i] = Column{Name: string(f.Name), Type: DataType(string(f.Name))}
	}

	result := &Table{Columns: columns}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make([]any, len(values))
		copy(row, values)
		result.Rows = append(result.Rows, row)
	}

	return result, rows.Err()
}

func (r *PostgresRepository) Drop(ctx context.Context, schema, table string) error {
	_, err := r.db.Exec(ctx, "DROP TABLE IF EXISTS "+tableRef(schema, table))
	return err
}

func (r *PostgresRepository) RowCount(ctx context.Context, schema, table string) (int64, error) {
	var count int64
	err := r.db.QueryRow(
		ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", tableRef(schema, table)),
	).Scan(&count)
	return count, err
}

// --------------------------------------------------
// Record operations
// --------------------------------------------------
func (r *PostgresRepository) GetRecord(
	ctx context.Context,
	schema string,
	table string,
	projectID string,
	sample string,
) (map[string]any, error) {

	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf("SELECT * FROM %s WHERE project_id = $1 AND sample = $2", tableRef(schema, table)),
		projectID, sample,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrRecordNotFound
	}

	fields := rows.FieldDescriptions()
	values, err := rows.Values()
	if err != nil {
		return nil, err
	}

	record := make(map[string]any, len(fields))
	for i, f := range fields {
		record[string(f.Name)] = values[i]
	}
	return record, nil
}

// coerceRecord maps the record's data onto the table's columns, rejecting
// unknown columns and mistyped values.
func coerceRecord(columns []Column, rec *Record) ([]string, []any, error) {
	types := make(map[string]string, len(columns))
	for _, c := range columns {
		types[c.Name] = c.Type
	}

	names := make([]string, 0, len(rec.Data))
	values := make([]any, 0, len(rec.Data))
	for key, raw := range rec.Data {
		name := NormalizeHeader(key)
		columnType, ok := types[name]
		if !ok {
			return nil, nil, fmt.Errorf("unknown column: %s", name)
		}
		value, err := CoerceValue(columnType, raw)
		if err != nil {
			return nil, nil, fmt.Errorf("column %s: %w", name, err)
		}
		names = append(names, name)
		values = append(values, value)
	}
	return names, values, nil
}

func (r *PostgresRepository) InsertRecord(
	ctx context.Context,
	schema string,
	table string,
	rec *Record,
) error {

	columns, err := r.TableColumns(ctx, schema, table)
	if err != nil {
		return err
	}

	names, values, err := coerceRecord(columns, rec)
	if err != nil {
		return err
	}

	names = append(names, "project_id", "sample")
	values = append(values, rec.ProjectID, rec.Sample)

	placeholders := make([]string, len(names))
	quoted := make([]string, len(names))
	for i, n := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		quoted[i] = pgx.Identifier{n}.Sanitize()
	}

	_, err = r.db.Exec(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		tableRef(schema, table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	), values...)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrRecordExists
	}
	return err
}

func (r *PostgresRepository) UpdateRecord(
	ctx context.Context,
	schema string,
	table string,
	rec *Record,
) error {

	columns, err := r.TableColumns(ctx, schema, table)
	if err != nil {
		return err
	}

	names, values, err := coerceRecord(columns, rec)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return errors.New("no columns to update")
	}

	assignments := make([]string, len(names))
	for i, n := range names {
		assignments[i] = fmt.Sprintf("%s = $%d", pgx.Identifier{n}.Sanitize(), i+1)
	}
	values = append(values, rec.ProjectID, rec.Sample)

	tag, err := r.db.Exec(ctx, fmt.Sprintf(
		"UPDATE %s SET %s WHERE project_id = $%d AND sample = $%d",
		tableRef(schema, table),
		strings.Join(assignments, ", "),
		len(names)+1, len(names)+2,
	), values...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteRecord(
	ctx context.Context,
	schema string,
	table string,
	projectID string,
	sample string,
) error {

	tag, err := r.db.Exec(
		ctx,
		fmt.Sprintf("DELETE FROM %s WHERE project_id = $1 AND sample = $2", tableRef(schema, table)),
		projectID, sample,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}
