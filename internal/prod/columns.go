package prod

import (
	"strings"

	"github.com/bni27/ogp-db-api/internal/rawdata"
)

// Identity and location columns every published row leads with, in
// publication order. asset_class is always present because the rebuild
// injects it; the rest appear only when some stage table carries them.
var leadColumns = []string{
	"project_id",
	"sample",
	"project_name",
	"asset_class",
	"project_type",
	"project_subtype",
	"country_iso3",
	"country_name",
	"subregion",
}

func has(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}

// orderColumns arranges the union column set into the published order:
// identity and location first, then the schedule, duration, ratio and
// cost blocks, citations, and dataset-specific columns at the end.
// Within each block first-appearance order is kept.
func orderColumns(columns []string) []string {
	var dates, durations, ratios, costs, citations, rest []string

	for _, col := range columns {
		switch {
		case has(leadColumns, col):
			// emitted from the fixed list below
		case col == "citations":
			citations = append(citations, col)
		case strings.Contains(col, "cost"):
			costs = append(costs, col)
		case strings.HasSuffix(col, "_date"), strings.HasSuffix(col, "_year"):
			dates = append(dates, col)
		case strings.HasSuffix(col, "_duration"):
			durations = append(durations, col)
		case strings.HasSuffix(col, "_ratio"):
			ratios = append(ratios, col)
		default:
			rest = append(rest, col)
		}
	}

	ordered := make([]string, 0, len(columns)+1)
	for _, lead := range leadColumns {
		if lead == "asset_class" || has(columns, lead) {
			ordered = append(ordered, lead)
		}
	}
	ordered = append(ordered, dates...)
	ordered = append(ordered, durations...)
	ordered = append(ordered, ratios...)
	ordered = append(ordered, costs...)
	ordered = append(ordered, citations...)
	ordered = append(ordered, rest...)

	return ordered
}

func buildColumns(names []string) []rawdata.Column {
	columns := make([]rawdata.Column, len(names))
	for i, name := range names {
		colType := rawdata.DataType(name)
		if name == "citations" {
			colType = "TEXT[]"
		}
		columns[i] = rawdata.Column{Name: name, Type: colType}
	}
	return columns
}
