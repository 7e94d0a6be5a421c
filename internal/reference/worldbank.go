package reference

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	IndicatorExchangeRate = "PA.NUS.FCRF"
	IndicatorPPPRate      = "PA.NUS.PPP"
	IndicatorGDPDeflator  = "NY.GDP.DEFL.ZS"

	defaultBaseURL  = "https://api.worldbank.org/v2"
	defaultYearFrom = 1960
	perPage         = 1000
)

// DataSource is the upstream feeding the reference tables. The World Bank
// client is the production implementation.
type DataSource interface {
	FetchIndicator(ctx context.Context, indicator string) ([]IndicatorRow, error)
	FetchCountries(ctx context.Context) ([]Country, error)
}

// IndicatorRow is one (country, year) observation of a World Bank
// indicator series. Value is nil when the series has a gap.
type IndicatorRow struct {
	CountryISO3 string
	Year        int
	Value       *float64
}

type WorldBankClient struct {
	BaseURL  string
	yearFrom int
	client   *http.Client
}

func NewWorldBankClient() *WorldBankClient {
	baseURL := os.Getenv("WORLDBANK_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	yearFrom := defaultYearFrom
	if v := os.Getenv("WB_YEAR_FROM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			yearFrom = n
		}
	}

	return &WorldBankClient{
		BaseURL:  strings.TrimSuffix(baseURL, "/"),
		yearFrom: yearFrom,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// yearRange bounds indicator requests to the configured start year up to
// the current year.
func (c *WorldBankClient) yearRange() string {
	from := c.yearFrom
	if from <= 0 {
		from = defaultYearFrom
	}
	return fmt.Sprintf("%d:%d", from, time.Now().Year())
}

type wbPage struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

type wbIndicatorEntry struct {
	CountryISO3 string   `json:"countryiso3code"`
	Date        string   `json:"date"`
	Value       *float64 `json:"value"`
}

type wbCountryEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"region"`
}

// fetchPage performs one paginated request and decodes the World Bank
// response envelope: a two-element array of [page metadata, data].
func (c *WorldBankClient) fetchPage(ctx context.Context, url string, data any) (wbPage, error) {
	var page wbPage

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return page, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return page, fmt.Errorf("world bank request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return page, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return page, fmt.Errorf("world bank API returned status %d: %s", resp.StatusCode, string(body))
	}

	var envelope []json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return page, fmt.Errorf("failed to parse world bank response: %w", err)
	}
	if len(envelope) < 2 {
		return page, fmt.Errorf("unexpected world bank response format: %s", string(body))
	}

	if err := json.Unmarshal(envelope[0], &page); err != nil {
		return page, fmt.Errorf("failed to parse page metadata: %w", err)
	}
	if err := json.Unmarshal(envelope[1], data); err != nil {
		return page, fmt.Errorf("failed to parse page data: %w", err)
	}

	return page, nil
}

// FetchIndicator pulls the full (country, year) series of an indicator,
// following pagination. Rows for aggregate economies are dropped.
func (c *WorldBankClient) FetchIndicator(ctx context.Context, indicator string) ([]IndicatorRow, error) {
	var rows []IndicatorRow

	for page := 1; ; page++ {
		url := fmt.Sprintf(
			"%s/country/all/indicator/%s?format=json&per_page=%d&page=%d&date=%s",
			c.BaseURL, indicator, perPage, page, c.yearRange(),
		)

		var entries []wbIndicatorEntry
		meta, err := c.fetchPage(ctx, url, &entries)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			if len(entry.CountryISO3) != 3 {
				continue
			}
			year, err := strconv.Atoi(entry.Date)
			if err != nil {
				continue
			}
			rows = append(rows, IndicatorRow{
				CountryISO3: entry.CountryISO3,
				Year:        year,
				Value:       entry.Value,
			})
		}

		if page >= meta.Pages {
			break
		}
	}

	return rows, nil
}

// FetchCountries pulls the country listing, skipping aggregates such as
// income groups and regions (the World Bank marks those with region "NA").
func (c *WorldBankClient) FetchCountries(ctx context.Context) ([]Country, error) {
	var countries []Country

	for page := 1; ; page++ {
		url := fmt.Sprintf(
			"%s/country?format=json&per_page=%d&page=%d",
			c.BaseURL, perPage, page,
		)

		var entries []wbCountryEntry
		meta, err := c.fetchPage(ctx, url, &entries)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			if entry.Region.ID == "NA" || entry.Region.ID == "" {
				continue
			}
			countries = append(countries, Country{
				Code:      entry.ID,
				Name:      entry.Name,
				Subregion: strings.TrimSpace(entry.Region.Value),
			})
		}

		if page >= meta.Pages {
			break
		}
	}

	return countries, nil
}
