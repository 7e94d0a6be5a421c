package rawdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// Table is an in-memory dataset: typed columns plus rows aligned to them.
type Table struct {
	Columns []Column
	Rows    [][]any
}

func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// RowMap exposes one row as a column-keyed map.
func (t *Table) RowMap(i int) map[string]any {
	m := make(map[string]any, len(t.Columns))
	for j, c := range t.Columns {
		m[c.Name] = t.Rows[i][j]
	}
	return m
}

// RowMaps exposes the whole table as JSON-friendly maps.
func (t *Table) RowMaps() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.RowMap(i)
	}
	return out
}

// ParseCSV reads a dataset file into a typed table. Header validation and
// value typing both follow the column naming convention.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading headers: %w", err)
	}

	columns, err := BuildColumns(headers)
	if err != nil {
		return nil, err
	}

	var rows [][]any
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}
		line++

		row := make([]any, len(columns))
		for i, col := range columns {
			v, err := ParseValue(col.Type, record[i])
			if err != nil {
				return nil, fmt.Errorf("line %d, column %s: %w", line, col.Name, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

// --------------------------------------------------
// Raw string records, for mirroring edits to files
// --------------------------------------------------

// ReadRecords reads a dataset file without typing the values, so a record
// edit can be written back with every untouched cell byte-identical.
func ReadRecords(r io.Reader) ([]string, []map[string]string, error) {
	reader := csv.NewReader(r)

	rawHeaders, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading headers: %w", err)
	}

	headers := make([]string, len(rawHeaders))
	for i, h := range rawHeaders {
		headers[i] = NormalizeHeader(h)
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		row := make(map[string]string, len(headers))
		for i, h := range headers {
			row[h] = record[i]
		}
		rows = append(rows, row)
	}

	return headers, rows, nil
}

// WriteRecords serializes string records back to CSV in header order.
func WriteRecords(w io.Writer, headers []string, rows []map[string]string) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, row := range rows {
		record := make([]string, len(headers))
		for i, h := range headers {
			record[i] = row[h]
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// FormatValue renders a typed value back into its CSV cell form.
func FormatValue(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case time.Time:
		return v.Format(DateFormat)
	default:
		return fmt.Sprintf("%v", v)
	}
}
