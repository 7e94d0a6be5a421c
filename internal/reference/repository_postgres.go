package reference

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bni27/ogp-db-api/internal/db"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// replaceTable swaps the full contents of a reference table inside one
// transaction, serialized by the table's rebuild lock.
func (r *PostgresRepository) replaceTable(
	ctx context.Context,
	table string,
	columns []string,
	rows [][]any,
) error {

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := db.AcquireRebuildLock(ctx, tx, "reference", table); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, "DELETE FROM "+pgx.Identifier{"reference", table}.Sanitize()); err != nil {
		return err
	}

	if _, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"reference", table},
		columns,
		pgx.CopyFromRows(rows),
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// --------------------------------------------------
// Replace reference tables
// --------------------------------------------------
func (r *PostgresRepository) ReplaceCountries(ctx context.Context, countries []Country) error {
	rows := make([][]any, len(countries))
	for i, c := range countries {
		rows[i] = []any{c.Code, c.Name, c.Subregion}
	}
	return r.replaceTable(ctx, "countries", []string{"country_code", "country_name", "subregion"}, rows)
}

func (r *PostgresRepository) ReplaceExchangeRates(ctx context.Context, rates []Rate) error {
	return r.replaceTable(ctx, "exchange_rates", rateColumns, rateRows(rates))
}

func (r *PostgresRepository) ReplacePPPRates(ctx context.Context, rates []Rate) error {
	return r.replaceTable(ctx, "ppp", rateColumns, rateRows(rates))
}

func (r *PostgresRepository) ReplaceDeflators(ctx context.Context, rates []Rate) error {
	rows := make([][]any, len(rates))
	for i, rate := range rates {
		rows[i] = []any{rate.CountryCode, rate.Year, rate.Value}
	}
	return r.replaceTable(ctx, "gdp_deflators", []string{"country_code", "year", "deflation_factor"}, rows)
}

var rateColumns = []string{"country_code", "year", "exchange_rate"}

func rateRows(rates []Rate) [][]any {
	rows := make([][]any, len(rates))
	for i, rate := range rates {
		rows[i] = []any{rate.CountryCode, rate.Year, rate.Value}
	}
	return rows
}

// --------------------------------------------------
// Normalization target year
// --------------------------------------------------
func (r *PostgresRepository) LatestDeflatorYear(ctx context.Context) (int, error) {
	var year *int
	err := r.db.QueryRow(ctx, `SELECT max(year) FROM reference.gdp_deflators`).Scan(&year)
	if err != nil {
		return 0, err
	}
	if year == nil {
		return 0, ErrNoDeflators
	}
	return *year, nil
}

// --------------------------------------------------
// Load everything for staging
// --------------------------------------------------
func (r *PostgresRepository) LoadRefSet(ctx context.Context) (*RefSet, error) {
	refs := NewRefSet()

	if err := r.loadRates(ctx, "exchange_rates", "exchange_rate", refs.SetFX); err != nil {
		return nil, err
	}
	if err := r.loadRates(ctx, "ppp", "exchange_rate", refs.SetPPP); err != nil {
		return nil, err
	}
	if err := r.loadRates(ctx, "gdp_deflators", "deflation_factor", refs.SetDeflator); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT country_code, country_name, subregion FROM reference.countries`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c Country
		var subregion *string
		if err := rows.Scan(&c.Code, &c.Name, &subregion); err != nil {
			return nil, err
		}
		if subregion != nil {
			c.Subregion = *subregion
		}
		refs.Countries[c.Code] = c
	}

	return refs, rows.Err()
}

func (r *PostgresRepository) loadRates(
	ctx context.Context,
	table string,
	valueColumn string,
	set func(country string, year int, value float64),
) error {

	query := "SELECT country_code, year, " + valueColumn + " FROM " + pgx.Identifier{"reference", table}.Sanitize()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var country string
		var year int
		var value float64
		if err := rows.Scan(&country, &year, &value); err != nil {
			return err
		}
		set(country, year, value)
	}

	return rows.Err()
}
