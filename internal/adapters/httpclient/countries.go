package httpclient

import (
	"context"
	"countryrates/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type CountriesClient struct {
	http *http.Client
	url  string
}

// FetchCountries downloads the full country list. An empty list is treated as
// a broken upstream, not as "every country was removed".
func (c *CountriesClient) FetchCountries(ctx context.Context) ([]domain.RawCountry, error) {
	countries, err := c.fetch(ctx)
	if err != nil {
		return nil, domain.NewSourceUnavailable(domain.SourceCountries, err)
	}
	return countries, nil
}

func (c *CountriesClient) fetch(ctx context.Context) ([]domain.RawCountry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create countries request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute countries request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code %d from countries api: %s", resp.StatusCode, resp.Status)
	}

	var entries []json.RawMessage
	if err = json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode countries response: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("countries api returned an empty list")
	}

	// a malformed entry is kept as a marked row so the refresh skips and counts it
	countries := make([]domain.RawCountry, 0, len(entries))
	for i, entry := range entries {
		var rc domain.RawCountry
		if decodeErr := json.Unmarshal(entry, &rc); decodeErr != nil {
			countries = append(countries, domain.RawCountry{
				DecodeErr: fmt.Errorf("failed to decode country entry %d: %w", i, decodeErr),
			})
			continue
		}
		countries = append(countries, rc)
	}

	return countries, nil
}

func NewCountriesClient(httpClient *http.Client, url string) *CountriesClient {
	return &CountriesClient{http: httpClient, url: url}
}
