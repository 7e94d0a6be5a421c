package staging

import (
	"strings"
	"time"

	"github.com/bni27/ogp-db-api/internal/rawdata"
	"github.com/bni27/ogp-db-api/internal/reference"
)

// Transform is the planned normalization of one asset class: given the
// unioned raw columns it decides which derived columns exist, then maps
// raw rows to enriched rows one at a time. Every reference lookup is
// optional; missing data degrades to null derived fields, never errors,
// so the output row count always equals the input row count.
type Transform struct {
	refs       *reference.RefSet
	targetYear int

	inputColumns  []string
	outputColumns []rawdata.Column

	datePairs  [][2]string
	durations  []durationSpec
	ratios     []ratioSpec
	costs      []costSpec
	normRatios []ratioSpec
	sourceCols []string
}

// durationSpec fills {column} with (end - start)/365 years when the raw
// duration is null and both endpoints resolve.
type durationSpec struct {
	column    string
	startDate string
	startYear string
	endDate   string
	endYear   string
}

// ratioSpec divides act by est into {column}.
type ratioSpec struct {
	column string
	act    string
	est    string
}

// costSpec normalizes one {stem}_local_millions amount to USD at the
// target year's price level, plus its PPP variant.
type costSpec struct {
	stem       string
	valColumn  string
	yearColumn string

	normColumn     string
	pppColumn      string
	currencyColumn string
	normYearColumn string
}

// NewTransform plans the normalization for a set of unioned raw columns.
func NewTransform(columns []string, refs *reference.RefSet, targetYear int) *Transform {
	t := &Transform{
		refs:       refs,
		targetYear: targetYear,
	}

	t.planInputColumns(columns)
	t.planDatePairs()
	t.planDurations()
	t.planCosts()
	t.planOutputColumns()

	return t
}

func has(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}

// planInputColumns widens the union column set with the companion and
// schedule columns the derivations need. Added columns carry null for
// every row; order of the originals is preserved.
func (t *Transform) planInputColumns(columns []string) {
	cols := make([]string, len(columns))
	copy(cols, columns)

	// Every date column gets a year companion.
	for _, col := range columns {
		if strings.HasSuffix(col, "_date") {
			if year := strings.TrimSuffix(col, "_date") + "_year"; !has(cols, year) {
				cols = append(cols, year)
			}
		}
	}

	// Overall actual completion, shared by every phase.
	for _, col := range []string{"act_completion_date", "act_completion_year"} {
		if !has(cols, col) {
			cols = append(cols, col)
		}
	}

	// Phase stems come from start columns; each stem gets its full
	// schedule column set.
	var stems []string
	for _, col := range cols {
		if !strings.HasPrefix(col, "start_") {
			continue
		}
		stem := strings.TrimPrefix(col, "start_")
		switch {
		case strings.HasSuffix(stem, "_date"):
			stem = strings.TrimSuffix(stem, "_date")
		case strings.HasSuffix(stem, "_year"):
			stem = strings.TrimSuffix(stem, "_year")
		default:
			continue
		}
		stem = strings.TrimSuffix(stem, "_completion")
		if stem == "" || has(stems, stem) {
			continue
		}
		stems = append(stems, stem)

		for _, ensure := range []string{
			"start_" + stem + "_date",
			"start_" + stem + "_year",
			"est_" + stem + "_completion_date",
			"est_" + stem + "_completion_year",
			"est_" + stem + "_duration",
			"act_" + stem + "_duration",
		} {
			if !has(cols, ensure) {
				cols = append(cols, ensure)
			}
		}
	}

	t.inputColumns = cols
}

func (t *Transform) planDatePairs() {
	for _, col := range t.inputColumns {
		if !strings.HasSuffix(col, "_date") {
			continue
		}
		year := strings.TrimSuffix(col, "_date") + "_year"
		if has(t.inputColumns, year) {
			t.datePairs = append(t.datePairs, [2]string{col, year})
		}
	}
}

// planDurations resolves the endpoint columns of every duration column.
// est_construction_duration reads start_construction_* against
// est_construction_completion_*; when a phase-specific completion column
// does not exist, the overall est_/act_completion columns stand in.
func (t *Transform) planDurations() {
	for _, col := range t.inputColumns {
		if !strings.HasSuffix(col, "_duration") {
			continue
		}

		stem := strings.TrimSuffix(col, "_duration")
		phase := strings.TrimPrefix(strings.TrimPrefix(stem, "est_"), "act_")

		startDate := "start_" + phase + "_date"
		startYear := "start_" + phase + "_year"
		if !has(t.inputColumns, startDate) || !has(t.inputColumns, startYear) {
			continue
		}

		endDate := stem + "_completion_date"
		endYear := stem + "_completion_year"
		if !has(t.inputColumns, endDate) && !has(t.inputColumns, endYear) {
			prefix, ok := strings.CutSuffix(stem, "_"+phase)
			if !ok {
				continue
			}
			endDate = prefix + "_completion_date"
			endYear = prefix + "_completion_year"
		}
		if !has(t.inputColumns, endDate) || !has(t.inputColumns, endYear) {
			continue
		}

		t.durations = append(t.durations, durationSpec{
			column:    col,
			startDate: startDate,
			startYear: startYear,
			endDate:   endDate,
			endYear:   endYear,
		})
	}

	for _, col := range t.inputColumns {
		if !strings.HasPrefix(col, "act_") || !strings.HasSuffix(col, "_duration") {
			continue
		}
		est := "est_" + strings.TrimPrefix(col, "act_")
		if !has(t.inputColumns, est) {
			continue
		}
		phase := strings.TrimSuffix(strings.TrimPrefix(col, "act_"), "_duration")
		t.ratios = append(t.ratios, ratioSpec{
			column: "schedule_" + phase + "_ratio",
			act:    col,
			est:    est,
		})
	}
}

// planCosts finds cost column families by their {stem}_cost_local_*
// naming and collects citation source columns.
func (t *Transform) planCosts() {
	var stems []string
	for _, col := range t.inputColumns {
		if strings.Contains(col, "_cost_local_") {
			stem := col
			for _, suffix := range []string{"_year", "_currency", "_millions", "_local"} {
				stem = strings.TrimSuffix(stem, suffix)
			}
			if has(stems, stem) {
				continue
			}
			stems = append(stems, stem)

			valColumn := stem + "_local_millions"
			yearColumn := stem + "_local_year"
			if !has(t.inputColumns, valColumn) || !has(t.inputColumns, yearColumn) {
				continue
			}

			t.costs = append(t.costs, costSpec{
				stem:           stem,
				valColumn:      valColumn,
				yearColumn:     yearColumn,
				normColumn:     stem + "_norm_millions",
				pppColumn:      stem + "_norm_ppp_millions",
				currencyColumn: stem + "_norm_currency",
				normYearColumn: stem + "_norm_year",
			})
		}

		if strings.Contains(col, "source") {
			t.sourceCols = append(t.sourceCols, col)
		}
	}

	for _, cost := range t.costs {
		if !strings.HasPrefix(cost.stem, "est_") {
			continue
		}
		actStem := "act_" + strings.TrimPrefix(cost.stem, "est_")
		for _, actCost := range t.costs {
			if actCost.stem == actStem {
				t.normRatios = append(t.normRatios, ratioSpec{
					column: strings.TrimPrefix(cost.stem, "est_") + "_norm_ratio",
					act:    actCost.normColumn,
					est:    cost.normColumn,
				})
			}
		}
	}
}

func (t *Transform) planOutputColumns() {
	var names []string

	add := func(name string) {
		if !has(names, name) {
			names = append(names, name)
		}
	}

	for _, col := range t.inputColumns {
		if !has(t.sourceCols, col) {
			add(col)
		}
	}

	// Derived columns follow the inputs, in the order their trigger
	// columns appear.
	for _, col := range t.inputColumns {
		for _, ratio := range t.ratios {
			if ratio.act == col {
				add(ratio.column)
			}
		}
		for _, cost := range t.costs {
			if cost.valColumn == col {
				add(cost.normColumn)
				add(cost.pppColumn)
				add(cost.currencyColumn)
				add(cost.normYearColumn)
			}
		}
	}

	if len(t.sourceCols) > 0 {
		add("citations")
	}
	for _, ratio := range t.normRatios {
		add(ratio.column)
	}
	add("country_name")
	add("subregion")

	t.outputColumns = make([]rawdata.Column, len(names))
	for i, name := range names {
		colType := rawdata.DataType(name)
		if name == "citations" {
			colType = "TEXT[]"
		}
		t.outputColumns[i] = rawdata.Column{Name: name, Type: colType}
	}
}

// OutputColumns is the stage table's column plan.
func (t *Transform) OutputColumns() []rawdata.Column {
	return t.outputColumns
}

// --------------------------------------------------
// Row transformation
// --------------------------------------------------

// Apply computes every derived field of one row and returns the values
// in output column order.
func (t *Transform) Apply(row map[string]any) []any {
	t.imputeDates(row)
	t.computeDurations(row)
	t.computeRatios(row, t.ratios)
	t.computeCosts(row)
	t.computeRatios(row, t.normRatios)
	t.collectCitations(row)
	t.enrichCountry(row)

	out := make([]any, len(t.outputColumns))
	for i, col := range t.outputColumns {
		out[i] = row[col.Name]
	}
	return out
}

// ApplyAll transforms every row, preserving order and count.
func (t *Transform) ApplyAll(rows []map[string]any) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		out[i] = t.Apply(row)
	}
	return out
}

// imputeDates fills each half of a date/year pair from the other: a
// missing year comes from the date's calendar year, a missing date from
// the year pinned to July 2nd. Both reads use the raw values.
func (t *Transform) imputeDates(row map[string]any) {
	for _, pair := range t.datePairs {
		date, hasDate := asDate(row[pair[0]])
		year, hasYear := asInt(row[pair[1]])

		if !hasYear && hasDate {
			row[pair[1]] = date.Year()
		}
		if !hasDate && hasYear {
			row[pair[0]] = standardDate(year)
		}
	}
}

func (t *Transform) computeDurations(row map[string]any) {
	for _, spec := range t.durations {
		if _, present := asFloat(row[spec.column]); present {
			continue
		}

		start, ok := resolveDate(row, spec.startDate, spec.startYear)
		if !ok {
			continue
		}
		end, ok := resolveDate(row, spec.endDate, spec.endYear)
		if !ok {
			continue
		}

		days := end.Sub(start).Hours() / 24
		row[spec.column] = days / 365
	}
}

// computeRatios divides act by est. A missing operand or a zero
// denominator leaves the ratio null.
func (t *Transform) computeRatios(row map[string]any, specs []ratioSpec) {
	for _, spec := range specs {
		act, okAct := asFloat(row[spec.act])
		est, okEst := asFloat(row[spec.est])
		if !okAct || !okEst || est == 0 {
			row[spec.column] = nil
			continue
		}
		row[spec.column] = act / est
	}
}

// computeCosts converts each local-currency amount to USD at the target
// year's price level:
//
//	norm = val * fx(country, yr) * defl(country, target) / defl(country, yr) / fx(USA, yr)
//	ppp  = val / ppp(country, yr) * defl(USA, target) / defl(USA, yr)
//
// fx rates are stored as USD per local currency unit. Any missing factor
// or zero divisor nulls the result for that row.
func (t *Transform) computeCosts(row map[string]any) {
	country, _ := asString(row["country_iso3"])

	for _, spec := range t.costs {
		row[spec.currencyColumn] = "USD"
		row[spec.normYearColumn] = t.targetYear
		row[spec.normColumn] = nil
		row[spec.pppColumn] = nil

		val, okVal := asFloat(row[spec.valColumn])
		year, okYear := asInt(row[spec.yearColumn])
		if !okVal || !okYear || country == "" {
			continue
		}

		if fx, ok := t.refs.FXRate(country, year); ok {
			if fxUSA, ok := t.refs.FXRate("USA", year); ok && fxUSA != 0 {
				if deflTarget, ok := t.refs.Deflator(country, t.targetYear); ok {
					if deflYear, ok := t.refs.Deflator(country, year); ok && deflYear != 0 {
						row[spec.normColumn] = val * fx * deflTarget / deflYear / fxUSA
					}
				}
			}
		}

		if ppp, ok := t.refs.PPPRate(country, year); ok && ppp != 0 {
			if deflTarget, ok := t.refs.Deflator("USA", t.targetYear); ok {
				if deflYear, ok := t.refs.Deflator("USA", year); ok && deflYear != 0 {
					row[spec.pppColumn] = val / ppp * deflTarget / deflYear
				}
			}
		}
	}
}

// collectCitations folds the *_source columns into one text array,
// dropping nulls and keeping column order.
func (t *Transform) collectCitations(row map[string]any) {
	if len(t.sourceCols) == 0 {
		return
	}

	citations := make([]string, 0, len(t.sourceCols))
	for _, col := range t.sourceCols {
		if s, ok := asString(row[col]); ok {
			citations = append(citations, s)
		}
	}
	row["citations"] = citations
}

// enrichCountry joins the country reference onto the row. Datasets that
// already carry their own country_name or subregion column keep it.
func (t *Transform) enrichCountry(row map[string]any) {
	var country reference.Country
	var found bool
	if code, ok := asString(row["country_iso3"]); ok {
		country, found = t.refs.Country(code)
	}

	if !has(t.inputColumns, "country_name") {
		row["country_name"] = nil
		if found {
			row["country_name"] = country.Name
		}
	}
	if !has(t.inputColumns, "subregion") {
		row["subregion"] = nil
		if found && country.Subregion != "" {
			row["subregion"] = country.Subregion
		}
	}
}

// resolveDate prefers the date column and falls back to the year column
// pinned to the standard mid-year day.
func resolveDate(row map[string]any, dateCol, yearCol string) (time.Time, bool) {
	if date, ok := asDate(row[dateCol]); ok {
		return date, true
	}
	if year, ok := asInt(row[yearCol]); ok {
		return standardDate(year), true
	}
	return time.Time{}, false
}

// standardDate pins a bare year to July 2nd, the middle of the year.
func standardDate(year int) time.Time {
	return time.Date(year, time.July, 2, 0, 0, 0, 0, time.UTC)
}

// --------------------------------------------------
// Value coercion
// --------------------------------------------------

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	}
	return 0, false
}

func asDate(v any) (time.Time, bool) {
	d, ok := v.(time.Time)
	return d, ok
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok && s != ""
}
