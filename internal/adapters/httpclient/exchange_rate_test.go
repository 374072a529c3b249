package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"countryrates/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestExchangeRateClient_Success(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
            "result": "success",
            "base_code": "USD",
            "rates": {"NGN": 1600.23, "EUR": 0.92}
        }`))
	}))
	t.Cleanup(srv.Close)

	c := NewExchangeRateClient(srv.Client(), srv.URL+"/v6/latest/USD")

	rates, err := c.FetchRates(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/v6/latest/USD", gotPath)
	require.Len(t, rates, 2)
	require.InDelta(t, 1600.23, rates["NGN"], 1e-9)
	require.InDelta(t, 0.92, rates["EUR"], 1e-9)
}

func TestExchangeRateClient_StatusCodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	c := NewExchangeRateClient(srv.Client(), srv.URL)

	_, err := c.FetchRates(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrSourceUnavailable)
	require.Contains(t, err.Error(), "unexpected status code 503")

	var srcErr *domain.SourceUnavailableError
	require.ErrorAs(t, err, &srcErr)
	require.Equal(t, domain.SourceRates, srcErr.Source)
}

func TestExchangeRateClient_JSONDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{")) // invalid JSON
	}))
	t.Cleanup(srv.Close)

	c := NewExchangeRateClient(srv.Client(), srv.URL)

	_, err := c.FetchRates(context.Background())
	require.ErrorIs(t, err, domain.ErrSourceUnavailable)
	require.Contains(t, err.Error(), "failed to decode rates response")
}

func TestExchangeRateClient_NonSuccessResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result": "error", "rates": {}}`))
	}))
	t.Cleanup(srv.Close)

	c := NewExchangeRateClient(srv.Client(), srv.URL)

	_, err := c.FetchRates(context.Background())
	require.ErrorIs(t, err, domain.ErrSourceUnavailable)
	require.Contains(t, err.Error(), `rates api returned non-success result: "error"`)
}

func TestExchangeRateClient_MissingRatesTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": "success"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewExchangeRateClient(srv.Client(), srv.URL)

	_, err := c.FetchRates(context.Background())
	require.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestExchangeRateClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)

	httpClient := srv.Client()
	httpClient.Timeout = 50 * time.Millisecond
	c := NewExchangeRateClient(httpClient, srv.URL)

	_, err := c.FetchRates(context.Background())
	require.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestExchangeRateClient_BadURL(t *testing.T) {
	c := NewExchangeRateClient(&http.Client{}, "http://::1]")
	_, err := c.FetchRates(context.Background())
	require.ErrorIs(t, err, domain.ErrSourceUnavailable)
	require.Contains(t, err.Error(), "failed to create rates request")
}
