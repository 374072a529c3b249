package country

import (
	"context"
	"countryrates/internal/adapters"
	"countryrates/internal/domain"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	RefreshMessage = "Countries refreshed successfully"
	summaryTopSize = 5

	CacheKeyStatus  = "countries:status"
	CacheTagQueries = "countries"
)

var errNoValidCountries = errors.New("payload has no country with a name and population")

type State string

const (
	StateIdle              State = "idle"
	StateFetchingCountries State = "fetching_countries"
	StateFetchingRates     State = "fetching_rates"
	StateNormalizing       State = "normalizing"
	StatePersisting        State = "persisting"
	StateInvalidatingCache State = "invalidating_cache"
	StateRendering         State = "rendering"
	StateDone              State = "done"
	StateFailed            State = "failed"
)

// RefreshObserver receives the outcome of every refresh cycle.
type RefreshObserver interface {
	ObserveRefresh(outcome string, duration time.Duration, skipped int)
}

type Refresher struct {
	countriesClient adapters.CountriesClient
	ratesClient     adapters.RatesClient
	repo            adapters.CountryRepository
	cache           adapters.Cache
	renderer        adapters.SummaryRenderer
	multiplier      Multiplier
	observer        RefreshObserver
	now             func() time.Time
	// -----
	mu    sync.Mutex
	state atomic.Value
}

type RefresherOption func(*Refresher)

func WithClock(now func() time.Time) RefresherOption {
	return func(r *Refresher) { r.now = now }
}

func WithObserver(o RefreshObserver) RefresherOption {
	return func(r *Refresher) { r.observer = o }
}

func NewRefresher(
	countriesClient adapters.CountriesClient,
	ratesClient adapters.RatesClient,
	repo adapters.CountryRepository,
	cache adapters.Cache,
	renderer adapters.SummaryRenderer,
	multiplier Multiplier,
	opts ...RefresherOption,
) *Refresher {
	r := &Refresher{
		countriesClient: countriesClient,
		ratesClient:     ratesClient,
		repo:            repo,
		cache:           cache,
		renderer:        renderer,
		multiplier:      multiplier,
		now:             func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	r.state.Store(StateIdle)
	return r
}

// State reports the step the current (or last) refresh cycle is in.
func (r *Refresher) State() State {
	return r.state.Load().(State)
}

// Refresh runs one refresh cycle. Only one cycle runs at a time; the store either
// receives the whole new snapshot or stays untouched.
func (r *Refresher) Refresh(ctx context.Context) (domain.RefreshResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	execID := uuid.NewString()
	started := time.Now()
	now := r.now()
	log := logrus.WithField("exec_id", execID)

	result, skipped, err := r.run(ctx, log, now)
	if err != nil {
		r.setState(StateFailed)
		r.observe(outcomeOf(err), time.Since(started), skipped)
		log.WithError(err).Error("Countries refresh failed")
		return domain.RefreshResult{}, err
	}

	r.setState(StateDone)
	r.observe("success", time.Since(started), skipped)
	log.Infof("Countries refresh finished: %d countries, %d skipped", result.TotalCountries, skipped)
	return result, nil
}

func (r *Refresher) run(ctx context.Context, log *logrus.Entry, now time.Time) (domain.RefreshResult, int, error) {
	// STEP 1: both fetches happen before the store is touched
	r.setState(StateFetchingCountries)
	rawCountries, err := r.countriesClient.FetchCountries(ctx)
	if err != nil {
		return domain.RefreshResult{}, 0, asSourceUnavailable(domain.SourceCountries, err)
	}

	r.setState(StateFetchingRates)
	rates, err := r.ratesClient.FetchRates(ctx)
	if err != nil {
		return domain.RefreshResult{}, 0, asSourceUnavailable(domain.SourceRates, err)
	}
	log.Infof("Fetched %d countries and %d rates", len(rawCountries), len(rates))

	// STEP 2: normalizing, bad rows are dropped one by one
	r.setState(StateNormalizing)
	records, skipped := r.normalizeAll(log, rawCountries, rates, now)
	if len(records) == 0 {
		// replacing the snapshot with nothing would wipe the store
		return domain.RefreshResult{}, skipped, domain.NewSourceUnavailable(domain.SourceCountries, errNoValidCountries)
	}

	// STEP 3: persisting. The request may go away, the transaction must not.
	r.setState(StatePersisting)
	total, err := r.repo.UpsertBatch(context.WithoutCancel(ctx), records)
	if err != nil {
		var persistErr *domain.PersistenceError
		if !errors.As(err, &persistErr) {
			err = &domain.PersistenceError{Err: err}
		}
		return domain.RefreshResult{}, skipped, err
	}

	// STEP 4: the snapshot is committed, from here on failures are only logged
	committedCtx := context.WithoutCancel(ctx)
	r.setState(StateInvalidatingCache)
	if invErr := r.cache.Invalidate(committedCtx, CacheKeyStatus, CacheTagQueries); invErr != nil {
		log.WithError(invErr).Warn("Failed to invalidate countries caches")
	}

	r.setState(StateRendering)
	if renderErr := r.renderSummary(committedCtx, total, now); renderErr != nil {
		log.WithError(renderErr).Warn("Failed to generate summary image")
	}

	return domain.RefreshResult{
		Message:         RefreshMessage,
		TotalCountries:  total,
		LastRefreshedAt: now,
	}, skipped, nil
}

// normalizeAll keeps the first-seen order; a later entry with the same
// normalized name overwrites the earlier one.
func (r *Refresher) normalizeAll(log *logrus.Entry, raw []domain.RawCountry, rates map[string]float64, now time.Time) ([]domain.Country, int) {
	records := make([]domain.Country, 0, len(raw))
	index := make(map[string]int, len(raw))
	skipped := 0

	for _, rc := range raw {
		c, ok := Normalize(rc, rates, now, r.multiplier)
		if !ok {
			skipped++
			entry := log.WithField("name", derefOr(rc.Name, "<missing>"))
			if rc.DecodeErr != nil {
				entry = entry.WithError(rc.DecodeErr)
			}
			entry.Warn("Skipping unusable country entry")
			continue
		}
		if i, dup := index[c.NameNormalized]; dup {
			records[i] = c
			continue
		}
		index[c.NameNormalized] = len(records)
		records = append(records, c)
	}
	return records, skipped
}

func (r *Refresher) renderSummary(ctx context.Context, total int64, now time.Time) error {
	top, err := r.repo.TopByGDP(ctx, summaryTopSize)
	if err != nil {
		return fmt.Errorf("%w: failed to load top countries: %w", domain.ErrRender, err)
	}
	return r.renderer.Render(ctx, domain.Summary{Total: total, Top: top, RefreshedAt: now})
}

func (r *Refresher) setState(s State) { r.state.Store(s) }

func (r *Refresher) observe(outcome string, d time.Duration, skipped int) {
	if r.observer != nil {
		r.observer.ObserveRefresh(outcome, d, skipped)
	}
}

func asSourceUnavailable(source string, err error) error {
	if errors.Is(err, domain.ErrSourceUnavailable) {
		return err
	}
	return domain.NewSourceUnavailable(source, err)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence_error"
	default:
		return "error"
	}
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
