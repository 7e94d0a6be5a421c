package staging

import (
	"fmt"
	"strings"

	"github.com/bni27/ogp-db-api/internal/rawdata"
)

// unionTables merges the raw tables of an asset class into one column
// set and row stream. Columns keep first-appearance order; cells a table
// does not have are null; fully identical rows collapse into one, so
// re-loading the same file twice does not double the stage table.
func unionTables(tables []*rawdata.Table) ([]string, []map[string]any) {
	var columns []string
	for _, table := range tables {
		for _, col := range table.Columns {
			if !has(columns, col.Name) {
				columns = append(columns, col.Name)
			}
		}
	}

	var rows []map[string]any
	seen := make(map[string]bool)

	for _, table := range tables {
		for _, row := range table.RowMaps() {
			padded := make(map[string]any, len(columns))
			for _, col := range columns {
				padded[col] = row[col]
			}

			key := rowKey(columns, padded)
			if seen[key] {
				continue
			}
			seen[key] = true
			rows = append(rows, padded)
		}
	}

	return columns, rows
}

func rowKey(columns []string, row map[string]any) string {
	var b strings.Builder
	for _, col := range columns {
		fmt.Fprintf(&b, "%v\x1f", row[col])
	}
	return b.String()
}
