package domain

import (
	"time"
)

type Country struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	NameNormalized  string    `json:"name_normalized"`
	Capital         *string   `json:"capital"`
	Region          *string   `json:"region"`
	Population      int64     `json:"population"`
	CurrencyCode    *string   `json:"currency_code"`
	ExchangeRate    *float64  `json:"exchange_rate"`
	EstimatedGDP    *float64  `json:"estimated_gdp"`
	FlagURL         *string   `json:"flag_url"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// GDPOrZero is the value used for ranking: an unknown GDP ranks as zero.
func (c Country) GDPOrZero() float64 {
	if c.EstimatedGDP == nil {
		return 0
	}
	return *c.EstimatedGDP
}

// RawCountry is a country entry as delivered by the countries API.
// Every field is optional on the wire.
type RawCountry struct {
	Name       *string       `json:"name"`
	Capital    *string       `json:"capital"`
	Region     *string       `json:"region"`
	Population *float64      `json:"population"`
	Flag       *string       `json:"flag"`
	Currencies []RawCurrency `json:"currencies"`

	// DecodeErr is set when the entry itself could not be decoded. Such entries are skipped.
	DecodeErr error `json:"-"`
}

type RawCurrency struct {
	Code   *string `json:"code"`
	Name   *string `json:"name"`
	Symbol *string `json:"symbol"`
}

type SortOrder string

const (
	SortNone           SortOrder = ""
	SortGDPDesc        SortOrder = "gdp_desc"
	SortGDPAsc         SortOrder = "gdp_asc"
	SortPopulationDesc SortOrder = "population_desc"
	SortPopulationAsc  SortOrder = "population_asc"
)

type Filter struct {
	Region   string
	Currency string
	Sort     SortOrder
}

type Status struct {
	TotalCountries  int64      `json:"total_countries"`
	LastRefreshedAt *time.Time `json:"last_refreshed_at"`
}

type RefreshResult struct {
	Message         string    `json:"message"`
	TotalCountries  int64     `json:"total_countries"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`
}

// Summary is the input of the summary image.
type Summary struct {
	Total       int64
	Top         []Country
	RefreshedAt time.Time
}
