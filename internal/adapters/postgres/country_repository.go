package postgres

import (
	"context"
	"countryrates/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	upsertChunkSize = 500
	// pg_advisory_xact_lock key, held for the whole replacement transaction
	refreshLockKey int64 = 0x636f756e74726965
)

const countryColumns = `id, name, name_normalized, capital, region, population, currency_code,
	exchange_rate, estimated_gdp, flag_url, last_refreshed_at, created_at, updated_at`

type CountryRepository struct {
	pool *pgxpool.Pool
}

type batchRow struct {
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
}

// UpsertBatch replaces the stored snapshot with countries in one transaction:
// rows are upserted by name_normalized and rows missing from the batch are removed.
// It returns the number of rows after the replacement.
func (r *CountryRepository) UpsertBatch(ctx context.Context, countries []domain.Country) (int64, error) {
	total, err := r.upsertBatch(ctx, countries)
	if err != nil {
		return 0, &domain.PersistenceError{Err: err}
	}
	return total, nil
}

func (r *CountryRepository) upsertBatch(ctx context.Context, countries []domain.Country) (int64, error) {
	const upsertQ = `
		with

		-- step 1: parsing input
		input_rows as (
			select * from json_to_recordset($1::json) as r(
				name text, name_normalized text, capital text, region text, population bigint,
				currency_code text, exchange_rate double precision, estimated_gdp double precision,
				flag_url text, last_refreshed_at timestamptz
			)
		)

		-- step 2: insert new countries, overwrite the listed fields of known ones
		insert into countries (name, name_normalized, capital, region, population, currency_code,
		                       exchange_rate, estimated_gdp, flag_url, last_refreshed_at, created_at, updated_at)
		select name, name_normalized, capital, region, population, currency_code,
		       exchange_rate, estimated_gdp, flag_url, last_refreshed_at, last_refreshed_at, last_refreshed_at
		from input_rows
		on conflict (name_normalized) do update
		set name = excluded.name,
		    capital = excluded.capital,
		    region = excluded.region,
		    population = excluded.population,
		    currency_code = excluded.currency_code,
		    exchange_rate = excluded.exchange_rate,
		    estimated_gdp = excluded.estimated_gdp,
		    flag_url = excluded.flag_url,
		    last_refreshed_at = excluded.last_refreshed_at,
		    updated_at = excluded.updated_at;
	`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, `select pg_advisory_xact_lock($1)`, refreshLockKey); err != nil {
		return 0, fmt.Errorf("failed to acquire refresh lock: %w", err)
	}

	names := make([]string, 0, len(countries))
	for chunk := range slices.Chunk(countries, upsertChunkSize) {
		payload := make([]batchRow, 0, len(chunk))
		for _, c := range chunk {
			payload = append(payload, toBatchRow(c))
			names = append(names, c.NameNormalized)
		}

		payloadJSON, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			return 0, fmt.Errorf("failed to marshal countries: %w", marshalErr)
		}
		if _, err = tx.Exec(ctx, upsertQ, json.RawMessage(payloadJSON)); err != nil {
			return 0, fmt.Errorf("failed to upsert countries: %w", err)
		}
	}

	if _, err = tx.Exec(ctx, `delete from countries where not (name_normalized = any($1::text[]))`, names); err != nil {
		return 0, fmt.Errorf("failed to delete stale countries: %w", err)
	}

	var total int64
	if err = tx.QueryRow(ctx, `select count(*) from countries`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count countries: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return total, nil
}

func (r *CountryRepository) FindByNormalizedName(ctx context.Context, nameNormalized string) (domain.Country, error) {
	q := `select ` + countryColumns + ` from countries where name_normalized = $1;`

	c, err := scanCountry(r.pool.QueryRow(ctx, q, nameNormalized))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Country{}, domain.ErrCountryNotFound
		}
		return domain.Country{}, fmt.Errorf("failed to select country %q: %w", nameNormalized, err)
	}
	return c, nil
}

func (r *CountryRepository) DeleteByNormalizedName(ctx context.Context, nameNormalized string) error {
	tag, err := r.pool.Exec(ctx, `delete from countries where name_normalized = $1`, nameNormalized)
	if err != nil {
		return fmt.Errorf("failed to delete country %q: %w", nameNormalized, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCountryNotFound
	}
	return nil
}

func (r *CountryRepository) List(ctx context.Context, filter domain.Filter) ([]domain.Country, error) {
	q := `select ` + countryColumns + ` from countries where name is not null and population is not null`
	args := make([]any, 0, 2)
	if filter.Region != "" {
		args = append(args, filter.Region)
		q += fmt.Sprintf(" and region = $%d", len(args))
	}
	if filter.Currency != "" {
		args = append(args, filter.Currency)
		q += fmt.Sprintf(" and currency_code = $%d", len(args))
	}
	q += " order by " + orderBy(filter.Sort)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query countries: %w", err)
	}
	defer rows.Close()

	countries := make([]domain.Country, 0, 256)
	for rows.Next() {
		c, scanErr := scanCountry(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan country: %w", scanErr)
		}
		countries = append(countries, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating countries: %w", err)
	}
	return countries, nil
}

func (r *CountryRepository) Status(ctx context.Context) (domain.Status, error) {
	var status domain.Status
	if err := r.pool.QueryRow(ctx, `select count(*), max(last_refreshed_at) from countries`).Scan(
		&status.TotalCountries,
		&status.LastRefreshedAt,
	); err != nil {
		return domain.Status{}, fmt.Errorf("failed to select countries status: %w", err)
	}
	return status, nil
}

func (r *CountryRepository) TopByGDP(ctx context.Context, limit int) ([]domain.Country, error) {
	q := `select ` + countryColumns + ` from countries order by coalesce(estimated_gdp, 0) desc, name asc limit $1;`

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top countries: %w", err)
	}
	defer rows.Close()

	top := make([]domain.Country, 0, limit)
	for rows.Next() {
		c, scanErr := scanCountry(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan country: %w", scanErr)
		}
		top = append(top, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top countries: %w", err)
	}
	return top, nil
}

func orderBy(sort domain.SortOrder) string {
	switch sort {
	case domain.SortGDPDesc:
		return "estimated_gdp desc nulls last, name asc, id asc"
	case domain.SortGDPAsc:
		return "estimated_gdp asc nulls last, name asc, id asc"
	case domain.SortPopulationDesc:
		return "population desc, name asc, id asc"
	case domain.SortPopulationAsc:
		return "population asc, name asc, id asc"
	default:
		return "created_at asc, id asc"
	}
}

func scanCountry(row pgx.Row) (domain.Country, error) {
	var c domain.Country
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.NameNormalized,
		&c.Capital,
		&c.Region,
		&c.Population,
		&c.CurrencyCode,
		&c.ExchangeRate,
		&c.EstimatedGDP,
		&c.FlagURL,
		&c.LastRefreshedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func toBatchRow(c domain.Country) batchRow {
	return batchRow{
		Name:            c.Name,
		NameNormalized:  c.NameNormalized,
		Capital:         c.Capital,
		Region:          c.Region,
		Population:      c.Population,
		CurrencyCode:    c.CurrencyCode,
		ExchangeRate:    c.ExchangeRate,
		EstimatedGDP:    c.EstimatedGDP,
		FlagURL:         c.FlagURL,
		LastRefreshedAt: c.LastRefreshedAt,
	}
}

func NewCountryRepository(pool *pgxpool.Pool) *CountryRepository {
	return &CountryRepository{pool: pool}
}
