package adapters

import (
	"context"
	"countryrates/internal/domain"
)

type CountriesClient interface {
	FetchCountries(ctx context.Context) ([]domain.RawCountry, error)
}

type RatesClient interface {
	FetchRates(ctx context.Context) (map[string]float64, error)
}

type CountryRepository interface {
	UpsertBatch(ctx context.Context, countries []domain.Country) (int64, error)
	FindByNormalizedName(ctx context.Context, nameNormalized string) (domain.Country, error)
	DeleteByNormalizedName(ctx context.Context, nameNormalized string) error
	List(ctx context.Context, filter domain.Filter) ([]domain.Country, error)
	Status(ctx context.Context) (domain.Status, error)
	TopByGDP(ctx context.Context, limit int) ([]domain.Country, error)
}

// Cache stores encoded query results. Invalidate accepts plain keys and tags
// and bumps the generation of every name it is given; Version reports that
// generation so callers can fold it into their keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, tags ...string)
	Invalidate(ctx context.Context, keys ...string) error
	Version(ctx context.Context, name string) (uint64, error)
}

type SummaryRenderer interface {
	Render(ctx context.Context, summary domain.Summary) error
}
