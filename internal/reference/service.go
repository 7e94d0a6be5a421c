package reference

import (
	"context"
	"fmt"
	"log"
)

type Service struct {
	repo   Repository
	source DataSource
}

func NewService(repo Repository, source DataSource) *Service {
	return &Service{
		repo:   repo,
		source: source,
	}
}

// --------------------------------------------------
// Exchange rates
// --------------------------------------------------

// UpdateExchangeRates reloads reference.exchange_rates from the official
// exchange rate series. The World Bank reports local currency units per
// USD; rates are stored inverted, as USD per local currency unit, so the
// staging math multiplies instead of divides.
func (s *Service) UpdateExchangeRates(ctx context.Context) (int, error) {
	observations, err := s.source.FetchIndicator(ctx, IndicatorExchangeRate)
	if err != nil {
		return 0, fmt.Errorf("fetching exchange rates: %w", err)
	}

	var rates []Rate
	for _, obs := range observations {
		if obs.Value == nil || *obs.Value == 0 {
			continue
		}
		rates = append(rates, Rate{
			CountryCode: obs.CountryISO3,
			Year:        obs.Year,
			Value:       1 / *obs.Value,
		})
	}

	if err := s.repo.ReplaceExchangeRates(ctx, rates); err != nil {
		return 0, err
	}

	log.Printf("[REF] ✅ loaded exchange rates rows=%d", len(rates))
	return len(rates), nil
}

// --------------------------------------------------
// PPP rates
// --------------------------------------------------
func (s *Service) UpdatePPPRates(ctx context.Context) (int, error) {
	observations, err := s.source.FetchIndicator(ctx, IndicatorPPPRate)
	if err != nil {
		return 0, fmt.Errorf("fetching ppp rates: %w", err)
	}

	rates := collectRates(observations)
	if err := s.repo.ReplacePPPRates(ctx, rates); err != nil {
		return 0, err
	}

	log.Printf("[REF] ✅ loaded ppp rates rows=%d", len(rates))
	return len(rates), nil
}

// --------------------------------------------------
// GDP deflators
// --------------------------------------------------
func (s *Service) UpdateDeflators(ctx context.Context) (int, error) {
	observations, err := s.source.FetchIndicator(ctx, IndicatorGDPDeflator)
	if err != nil {
		return 0, fmt.Errorf("fetching gdp deflators: %w", err)
	}

	rates := collectRates(observations)
	if err := s.repo.ReplaceDeflators(ctx, rates); err != nil {
		return 0, err
	}

	log.Printf("[REF] ✅ loaded gdp deflators rows=%d", len(rates))
	return len(rates), nil
}

// --------------------------------------------------
// Countries
// --------------------------------------------------
func (s *Service) UpdateCountries(ctx context.Context) (int, error) {
	countries, err := s.source.FetchCountries(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching countries: %w", err)
	}

	if err := s.repo.ReplaceCountries(ctx, countries); err != nil {
		return 0, err
	}

	log.Printf("[REF] ✅ loaded countries rows=%d", len(countries))
	return len(countries), nil
}

// UpdateAll refreshes every reference table. The first failure aborts the
// refresh so staging never sees a half-updated reference set.
func (s *Service) UpdateAll(ctx context.Context) error {
	if _, err := s.UpdateCountries(ctx); err != nil {
		return err
	}
	if _, err := s.UpdateExchangeRates(ctx); err != nil {
		return err
	}
	if _, err := s.UpdatePPPRates(ctx); err != nil {
		return err
	}
	if _, err := s.UpdateDeflators(ctx); err != nil {
		return err
	}
	return nil
}

func collectRates(observations []IndicatorRow) []Rate {
	var rates []Rate
	for _, obs := range observations {
		if obs.Value == nil {
			continue
		}
		rates = append(rates, Rate{
			CountryCode: obs.CountryISO3,
			Year:        obs.Year,
			Value:       *obs.Value,
		})
	}
	return rates
}

// --------------------------------------------------
// Staging inputs
// --------------------------------------------------
func (s *Service) RefSet(ctx context.Context) (*RefSet, error) {
	return s.repo.LoadRefSet(ctx)
}

func (s *Service) TargetYear(ctx context.Context) (int, error) {
	return s.repo.LatestDeflatorYear(ctx)
}
