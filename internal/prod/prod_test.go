package prod

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/bni27/ogp-db-api/internal/rawdata"
)

// --------------------------------------------------
// Mocks
// --------------------------------------------------

type mockTables struct {
	tables map[string]map[string]*rawdata.Table
}

func (m *mockTables) ListTables(_ context.Context, schema string) ([]string, error) {
	var names []string
	for name := range m.tables[schema] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *mockTables) SelectAll(_ context.Context, schema, table string) (*rawdata.Table, error) {
	t, ok := m.tables[schema][table]
	if !ok {
		return nil, rawdata.ErrTableNotFound
	}
	return t, nil
}

func (m *mockTables) TableExists(_ context.Context, schema, table string) (bool, error) {
	_, ok := m.tables[schema][table]
	return ok, nil
}

// REQUIRED BY rawdata.Repository INTERFACE (NO-OP)
func (m *mockTables) Rebuild(context.Context, string, string, []rawdata.Column, [][]any) error {
	return nil
}
func (m *mockTables) TableColumns(context.Context, string, string) ([]rawdata.Column, error) {
	return nil, nil
}
func (m *mockTables) Drop(context.Context, string, string) error              { return nil }
func (m *mockTables) RowCount(context.Context, string, string) (int64, error) { return 0, nil }
func (m *mockTables) GetRecord(context.Context, string, string, string, string) (map[string]any, error) {
	return nil, nil
}
func (m *mockTables) InsertRecord(context.Context, string, string, *rawdata.Record) error {
	return nil
}
func (m *mockTables) UpdateRecord(context.Context, string, string, *rawdata.Record) error {
	return nil
}
func (m *mockTables) DeleteRecord(context.Context, string, string, string, string) error {
	return nil
}

type mockBuilder struct {
	schema  string
	table   string
	columns []rawdata.Column
	rows    [][]any
}

func (m *mockBuilder) RebuildSwap(_ context.Context, schema, table string, columns []rawdata.Column, rows [][]any) error {
	m.schema = schema
	m.table = table
	m.columns = columns
	m.rows = rows
	return nil
}

func stageTable(headers []string, rows ...[]any) *rawdata.Table {
	columns := make([]rawdata.Column, len(headers))
	for i, h := range headers {
		columns[i] = rawdata.Column{Name: h, Type: rawdata.DataType(h)}
	}
	return &rawdata.Table{Columns: columns, Rows: rows}
}

// --------------------------------------------------

func TestUpdateUnionsStageTables(t *testing.T) {
	tables := &mockTables{tables: map[string]map[string]*rawdata.Table{
		"stage_verified": {
			"batteries": stageTable(
				[]string{"project_id", "sample", "country_iso3", "capacity_value"},
				[]any{"P001", "a", "BRA", 10.0},
				[]any{"P002", "a", "IND", 20.0},
			),
			"dams": stageTable(
				[]string{"project_id", "sample", "country_iso3", "height_value"},
				[]any{"D001", "a", "CHN", 180.0},
			),
		},
	}}
	builder := &mockBuilder{}
	svc := NewService(tables, builder)

	result, err := svc.Update(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.RowsPublished != 3 {
		t.Errorf("expected 3 published rows, got %d", result.RowsPublished)
	}
	if !reflect.DeepEqual(result.AssetClasses, []string{"batteries", "dams"}) {
		t.Errorf("expected both asset classes, got %v", result.AssetClasses)
	}
	if builder.schema != Schema || builder.table != Table {
		t.Errorf("expected rebuild of %s.%s, got %s.%s", Schema, Table, builder.schema, builder.table)
	}

	names := make([]string, len(builder.columns))
	for i, c := range builder.columns {
		names[i] = c.Name
	}
	classIdx := -1
	for i, n := range names {
		if n == "asset_class" {
			classIdx = i
		}
	}
	if classIdx < 0 {
		t.Fatalf("expected asset_class column, got %v", names)
	}

	// Rows from the batteries table come first and carry the class name;
	// columns the other class owns are null-padded.
	if builder.rows[0][classIdx] != "batteries" || builder.rows[2][classIdx] != "dams" {
		t.Errorf("expected asset_class values per source table, got %v", builder.rows)
	}
	heightIdx := -1
	for i, n := range names {
		if n == "height_value" {
			heightIdx = i
		}
	}
	if builder.rows[0][heightIdx] != nil {
		t.Errorf("expected null padding for height_value, got %v", builder.rows[0][heightIdx])
	}
}

func TestUpdateIgnoresLeftoverSwapTables(t *testing.T) {
	tables := &mockTables{tables: map[string]map[string]*rawdata.Table{
		"stage_verified": {
			"batteries": stageTable(
				[]string{"project_id", "sample"},
				[]any{"P001", "a"},
			),
			"batteries__staging": stageTable(
				[]string{"project_id", "sample"},
				[]any{"junk", "x"},
			),
		},
	}}
	builder := &mockBuilder{}
	svc := NewService(tables, builder)

	result, err := svc.Update(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RowsPublished != 1 {
		t.Errorf("expected 1 row, got %d", result.RowsPublished)
	}
	if !reflect.DeepEqual(result.AssetClasses, []string{"batteries"}) {
		t.Errorf("expected only batteries, got %v", result.AssetClasses)
	}
}

func TestUpdateFailsWithoutStageTables(t *testing.T) {
	tables := &mockTables{tables: map[string]map[string]*rawdata.Table{}}
	svc := NewService(tables, &mockBuilder{})

	_, err := svc.Update(context.Background())
	if !errors.Is(err, ErrNoStageTables) {
		t.Fatalf("expected ErrNoStageTables, got %v", err)
	}
}

func TestOrderColumnsGroupsBlocks(t *testing.T) {
	got := orderColumns([]string{
		"project_id", "sample", "capacity_value",
		"est_cost_local_millions", "est_cost_norm_millions",
		"start_construction_date", "start_construction_year",
		"est_construction_duration", "schedule_construction_ratio",
		"citations", "country_iso3", "asset_class",
	})

	want := []string{
		"project_id", "sample", "asset_class", "country_iso3",
		"start_construction_date", "start_construction_year",
		"est_construction_duration",
		"schedule_construction_ratio",
		"est_cost_local_millions", "est_cost_norm_millions",
		"citations",
		"capacity_value",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("column order mismatch:\ngot  %v\nwant %v", got, want)
	}
}

func TestGetDataFiltersByAssetClass(t *testing.T) {
	tables := &mockTables{tables: map[string]map[string]*rawdata.Table{
		"prod": {
			"projects": stageTable(
				[]string{"project_id", "sample", "asset_class"},
				[]any{"P001", "a", "batteries"},
				[]any{"D001", "a", "dams"},
			),
		},
	}}
	svc := NewService(tables, &mockBuilder{})

	rows, err := svc.GetData(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows unfiltered, got %d", len(rows))
	}

	rows, err = svc.GetData(context.Background(), "dams")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0]["project_id"] != "D001" {
		t.Errorf("expected only the dams row, got %v", rows)
	}
}

func TestGetDataBeforeFirstBuild(t *testing.T) {
	tables := &mockTables{tables: map[string]map[string]*rawdata.Table{}}
	svc := NewService(tables, &mockBuilder{})

	_, err := svc.GetData(context.Background(), "")
	if !errors.Is(err, rawdata.ErrTableNotFound) {
		t.Fatalf("expected ErrTableNotFound, got %v", err)
	}
}
