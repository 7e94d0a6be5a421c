package staging

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/bni27/ogp-db-api/internal/rawdata"
	"github.com/bni27/ogp-db-api/internal/reference"
)

// --------------------------------------------------
// Mocks
// --------------------------------------------------

type mockTables struct {
	tables  map[string]*rawdata.Table
	dropped []string
}

func tableKey(schema, table string) string { return schema + "." + table }

func (m *mockTables) TableExists(_ context.Context, schema, table string) (bool, error) {
	_, ok := m.tables[tableKey(schema, table)]
	return ok, nil
}

func (m *mockTables) SelectAll(_ context.Context, schema, table string) (*rawdata.Table, error) {
	t, ok := m.tables[tableKey(schema, table)]
	if !ok {
		return nil, rawdata.ErrTableNotFound
	}
	return t, nil
}

func (m *mockTables) Drop(_ context.Context, schema, table string) error {
	m.dropped = append(m.dropped, tableKey(schema, table))
	return nil
}

func (m *mockTables) GetRecord(_ context.Context, schema, table, projectID, sample string) (map[string]any, error) {
	t, ok := m.tables[tableKey(schema, table)]
	if !ok {
		return nil, rawdata.ErrTableNotFound
	}
	for _, row := range t.RowMaps() {
		if row["project_id"] == projectID && row["sample"] == sample {
			return row, nil
		}
	}
	return nil, rawdata.ErrRecordNotFound
}

// REQUIRED BY rawdata.Repository INTERFACE (NO-OP)
func (m *mockTables) Rebuild(context.Context, string, string, []rawdata.Column, [][]any) error {
	return nil
}
func (m *mockTables) ListTables(context.Context, string) ([]string, error) { return nil, nil }
func (m *mockTables) TableColumns(context.Context, string, string) ([]rawdata.Column, error) {
	return nil, nil
}
func (m *mockTables) RowCount(context.Context, string, string) (int64, error) { return 0, nil }
func (m *mockTables) InsertRecord(context.Context, string, string, *rawdata.Record) error {
	return nil
}
func (m *mockTables) UpdateRecord(context.Context, string, string, *rawdata.Record) error {
	return nil
}
func (m *mockTables) DeleteRecord(context.Context, string, string, string, string) error {
	return nil
}

type mockStage struct {
	schema  string
	table   string
	columns []rawdata.Column
	rows    [][]any
	err     error
}

func (m *mockStage) RebuildSwap(_ context.Context, schema, table string, columns []rawdata.Column, rows [][]any) error {
	if m.err != nil {
		return m.err
	}
	m.schema = schema
	m.table = table
	m.columns = columns
	m.rows = rows
	return nil
}

type mockRefRepo struct {
	refs       *reference.RefSet
	targetYear int
	yearErr    error
}

func (m *mockRefRepo) LoadRefSet(context.Context) (*reference.RefSet, error) { return m.refs, nil }
func (m *mockRefRepo) LatestDeflatorYear(context.Context) (int, error) {
	if m.yearErr != nil {
		return 0, m.yearErr
	}
	return m.targetYear, nil
}

// REQUIRED BY reference.Repository INTERFACE (NO-OP)
func (m *mockRefRepo) ReplaceCountries(context.Context, []reference.Country) error  { return nil }
func (m *mockRefRepo) ReplaceExchangeRates(context.Context, []reference.Rate) error { return nil }
func (m *mockRefRepo) ReplacePPPRates(context.Context, []reference.Rate) error      { return nil }
func (m *mockRefRepo) ReplaceDeflators(context.Context, []reference.Rate) error     { return nil }

type mockSource struct{}

func (mockSource) FetchIndicator(context.Context, string) ([]reference.IndicatorRow, error) {
	return nil, nil
}
func (mockSource) FetchCountries(context.Context) ([]reference.Country, error) { return nil, nil }

type mockStore struct {
	files map[string][]string
}

func (m *mockStore) List(_ context.Context, prefix string) ([]string, error) {
	names := append([]string(nil), m.files[prefix]...)
	sort.Strings(names)
	return names, nil
}

// REQUIRED BY core.FileStore INTERFACE (NO-OP)
func (m *mockStore) Upload(context.Context, string, io.Reader) (string, error) { return "", nil }
func (m *mockStore) Download(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}
func (m *mockStore) Delete(context.Context, string) error         { return nil }
func (m *mockStore) Exists(context.Context, string) (bool, error) { return false, nil }
func (m *mockStore) Ping(context.Context) error                   { return nil }

// --------------------------------------------------

func newStagingFixture() (*Service, *mockTables, *mockStage) {
	tables := &mockTables{tables: map[string]*rawdata.Table{
		"raw_verified.batteries_2023": testTable(
			[]string{"project_id", "sample", "country_iso3", "capacity_value"},
			[]any{"P001", "a", "BRA", 10.0},
			[]any{"P002", "a", "XXX", 20.0},
		),
		"raw_verified.batteries_2024": testTable(
			[]string{"project_id", "sample", "country_iso3", "voltage_value"},
			[]any{"P003", "a", "BRA", 400.0},
		),
	}}
	stage := &mockStage{}
	store := &mockStore{files: map[string][]string{
		"verified/batteries/": {"batteries_2023.csv", "batteries_2024.csv", "notes.txt"},
	}}
	refs := reference.NewService(&mockRefRepo{refs: testRefs(), targetYear: testTargetYear}, mockSource{})

	return NewService(tables, stage, refs, store), tables, stage
}

func TestStageUnionsRawTables(t *testing.T) {
	svc, _, stage := newStagingFixture()

	result, err := svc.Stage(context.Background(), "batteries", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.RowsStaged != 3 {
		t.Errorf("expected 3 staged rows, got %d", result.RowsStaged)
	}
	if result.TargetYear != testTargetYear {
		t.Errorf("expected target year %d, got %d", testTargetYear, result.TargetYear)
	}
	if stage.schema != "stage_verified" || stage.table != "batteries" {
		t.Errorf("expected rebuild of stage_verified.batteries, got %s.%s", stage.schema, stage.table)
	}
	if len(stage.rows) != 3 {
		t.Errorf("expected 3 rows handed to the repository, got %d", len(stage.rows))
	}

	names := make([]string, len(stage.columns))
	for i, c := range stage.columns {
		names[i] = c.Name
	}
	for _, want := range []string{"capacity_value", "voltage_value", "country_name", "subregion"} {
		if !has(names, want) {
			t.Errorf("expected stage column %s, got %v", want, names)
		}
	}
}

func TestStageSkipsFilesWithoutRawTables(t *testing.T) {
	svc, tables, stage := newStagingFixture()
	delete(tables.tables, "raw_verified.batteries_2024")

	result, err := svc.Stage(context.Background(), "batteries", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RowsStaged != 2 {
		t.Errorf("expected 2 rows from the one loaded table, got %d", result.RowsStaged)
	}
	if len(result.SourceTables) != 1 || result.SourceTables[0] != "batteries_2023" {
		t.Errorf("expected batteries_2023 as the only source, got %v", result.SourceTables)
	}
	if stage.table != "batteries" {
		t.Errorf("expected stage rebuild to run, got %q", stage.table)
	}
}

func TestStageFailsWithoutAnyRawTable(t *testing.T) {
	svc, tables, _ := newStagingFixture()
	tables.tables = map[string]*rawdata.Table{}

	_, err := svc.Stage(context.Background(), "batteries", true)
	if !errors.Is(err, ErrNoRawTables) {
		t.Fatalf("expected ErrNoRawTables, got %v", err)
	}
}

func TestStageFailsWithoutDeflators(t *testing.T) {
	tables := &mockTables{tables: map[string]*rawdata.Table{
		"raw_verified.batteries_2023": testTable(
			[]string{"project_id", "sample", "country_iso3"},
			[]any{"P001", "a", "BRA"},
		),
	}}
	store := &mockStore{files: map[string][]string{
		"verified/batteries/": {"batteries_2023.csv"},
	}}
	refs := reference.NewService(
		&mockRefRepo{refs: reference.NewRefSet(), yearErr: reference.ErrNoDeflators}, mockSource{})
	svc := NewService(tables, &mockStage{}, refs, store)

	_, err := svc.Stage(context.Background(), "batteries", true)
	if !errors.Is(err, reference.ErrNoDeflators) {
		t.Fatalf("expected ErrNoDeflators, got %v", err)
	}
}

func TestGetRecordReadsStageTable(t *testing.T) {
	svc, tables, _ := newStagingFixture()
	tables.tables["stage_verified.batteries"] = testTable(
		[]string{"project_id", "sample", "country_name"},
		[]any{"P001", "a", "Brazil"},
	)

	record, err := svc.GetRecord(context.Background(), "batteries", true, "P001", "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record["country_name"] != "Brazil" {
		t.Errorf("expected enriched record, got %v", record)
	}

	_, err = svc.GetRecord(context.Background(), "batteries", true, "P099", "a")
	if !errors.Is(err, rawdata.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestDeleteDropsStageTable(t *testing.T) {
	svc, tables, _ := newStagingFixture()

	if err := svc.Delete(context.Background(), "batteries", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tables.dropped) != 1 || tables.dropped[0] != "stage_unverified.batteries" {
		t.Errorf("expected stage_unverified.batteries dropped, got %v", tables.dropped)
	}
}
