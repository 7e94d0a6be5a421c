package rawdata

import (
	"bytes"
	"strings"
	"testing"
)

const sampleCSV = `project_id,sample,project_name,country_iso3,est_completion_year,est_cost_local_millions,is_cancelled
P001,a,Alpha Plant,USA,2010,150.5,no
P002,a,Beta Line,DEU,,200,yes
P003,b,Gamma Port,,2015,,
`

func TestParseCSVTypesAndNulls(t *testing.T) {
	table, err := ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(table.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table.Rows))
	}

	first := table.RowMap(0)
	if first["project_id"] != "P001" {
		t.Errorf("expected P001, got %v", first["project_id"])
	}
	if first["est_completion_year"] != 2010 {
		t.Errorf("expected 2010, got %v", first["est_completion_year"])
	}
	if first["est_cost_local_millions"] != 150.5 {
		t.Errorf("expected 150.5, got %v", first["est_cost_local_millions"])
	}
	if first["is_cancelled"] != false {
		t.Errorf("expected false, got %v", first["is_cancelled"])
	}

	second := table.RowMap(1)
	if second["est_completion_year"] != nil {
		t.Errorf("expected NULL year, got %v", second["est_completion_year"])
	}

	third := table.RowMap(2)
	if third["country_iso3"] != nil {
		t.Errorf("expected NULL country, got %v", third["country_iso3"])
	}
	if third["est_cost_local_millions"] != nil {
		t.Errorf("expected NULL cost, got %v", third["est_cost_local_millions"])
	}
}

func TestParseCSVRejectsBadHeaders(t *testing.T) {
	if _, err := ParseCSV(strings.NewReader("project_id,name,name\n")); err == nil {
		t.Error("expected duplicate header error")
	}

	if _, err := ParseCSV(strings.NewReader("project_id,name\n")); err == nil {
		t.Error("expected missing primary key error")
	}
}

func TestRecordRoundTripPreservesCells(t *testing.T) {
	headers, rows, err := ReadRecords(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0]["est_cost_local_millions"] != "150.5" {
		t.Errorf("expected raw cell 150.5, got %q", rows[0]["est_cost_local_millions"])
	}

	var buf bytes.Buffer
	if err := WriteRecords(&buf, headers, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if buf.String() != sampleCSV {
		t.Errorf("round trip changed file contents:\n%s\nvs\n%s", buf.String(), sampleCSV)
	}
}

func TestTableNameFromFileName(t *testing.T) {
	cases := map[string]string{
		"Power Plants.csv": "power_plants",
		"rail_2023.csv":    "rail_2023",
		"BATTERIES.CSV":    "batteries",
	}

	for file, want := range cases {
		if got := TableName(file); got != want {
			t.Errorf("TableName(%s) = %s, want %s", file, got, want)
		}
	}
}
