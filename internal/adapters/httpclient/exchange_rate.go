package httpclient

import (
	"context"
	"countryrates/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ExchangeRateClient struct {
	http *http.Client
	url  string
}

type apiResponse struct {
	Result   string             `json:"result"`
	BaseCode string             `json:"base_code"`
	Rates    map[string]float64 `json:"rates"`
}

// FetchRates returns the latest USD based rates table: currency code -> units per 1 USD.
func (c *ExchangeRateClient) FetchRates(ctx context.Context) (map[string]float64, error) {
	rates, err := c.fetch(ctx)
	if err != nil {
		return nil, domain.NewSourceUnavailable(domain.SourceRates, err)
	}
	return rates, nil
}

func (c *ExchangeRateClient) fetch(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute rates request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code %d from rates api: %s", resp.StatusCode, resp.Status)
	}

	var body apiResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode rates response: %w", err)
	}

	if body.Result != "success" {
		return nil, fmt.Errorf("rates api returned non-success result: %q", body.Result)
	}
	if body.Rates == nil {
		return nil, errors.New("rates api response has no rates table")
	}

	return body.Rates, nil
}

func NewExchangeRateClient(httpClient *http.Client, url string) *ExchangeRateClient {
	return &ExchangeRateClient{http: httpClient, url: url}
}
