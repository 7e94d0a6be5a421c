package reference

import "context"

type Repository interface {
	ReplaceCountries(ctx context.Context, countries []Country) error
	ReplaceExchangeRates(ctx context.Context, rates []Rate) error
	ReplacePPPRates(ctx context.Context, rates []Rate) error
	ReplaceDeflators(ctx context.Context, rates []Rate) error

	// LatestDeflatorYear is the normalization target year: the maximum
	// year present anywhere in gdp_deflators.
	LatestDeflatorYear(ctx context.Context) (int, error)

	LoadRefSet(ctx context.Context) (*RefSet, error)
}
