package country

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"countryrates/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- Testify mocks ---

type MockCountriesClient struct{ mock.Mock }

func (m *MockCountriesClient) FetchCountries(ctx context.Context) ([]domain.RawCountry, error) {
	args := m.Called(ctx)
	countries, _ := args.Get(0).([]domain.RawCountry)
	return countries, args.Error(1)
}

type MockRatesClient struct{ mock.Mock }

func (m *MockRatesClient) FetchRates(ctx context.Context) (map[string]float64, error) {
	args := m.Called(ctx)
	rates, _ := args.Get(0).(map[string]float64)
	return rates, args.Error(1)
}

type MockCountryRepository struct{ mock.Mock }

func (m *MockCountryRepository) UpsertBatch(ctx context.Context, countries []domain.Country) (int64, error) {
	args := m.Called(ctx, countries)
	total, _ := args.Get(0).(int64)
	return total, args.Error(1)
}

func (m *MockCountryRepository) FindByNormalizedName(ctx context.Context, nameNormalized string) (domain.Country, error) {
	args := m.Called(ctx, nameNormalized)
	c, _ := args.Get(0).(domain.Country)
	return c, args.Error(1)
}

func (m *MockCountryRepository) DeleteByNormalizedName(ctx context.Context, nameNormalized string) error {
	args := m.Called(ctx, nameNormalized)
	return args.Error(0)
}

func (m *MockCountryRepository) List(ctx context.Context, filter domain.Filter) ([]domain.Country, error) {
	args := m.Called(ctx, filter)
	countries, _ := args.Get(0).([]domain.Country)
	return countries, args.Error(1)
}

func (m *MockCountryRepository) Status(ctx context.Context) (domain.Status, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(domain.Status)
	return s, args.Error(1)
}

func (m *MockCountryRepository) TopByGDP(ctx context.Context, limit int) ([]domain.Country, error) {
	args := m.Called(ctx, limit)
	countries, _ := args.Get(0).([]domain.Country)
	return countries, args.Error(1)
}

type MockCache struct{ mock.Mock }

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, bool) {
	args := m.Called(ctx, key)
	raw, _ := args.Get(0).([]byte)
	return raw, args.Bool(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, tags ...string) {
	m.Called(ctx, key, value, tags)
}

func (m *MockCache) Invalidate(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *MockCache) Version(ctx context.Context, name string) (uint64, error) {
	args := m.Called(ctx, name)
	v, _ := args.Get(0).(uint64)
	return v, args.Error(1)
}

type MockRenderer struct{ mock.Mock }

func (m *MockRenderer) Render(ctx context.Context, summary domain.Summary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

type MockObserver struct{ mock.Mock }

func (m *MockObserver) ObserveRefresh(outcome string, duration time.Duration, skipped int) {
	m.Called(outcome, duration, skipped)
}

// --- in-memory store with upsert-by-key semantics ---

type memRepository struct {
	mu     sync.Mutex
	rows   map[string]domain.Country
	nextID int64
}

func newMemRepository() *memRepository {
	return &memRepository{rows: map[string]domain.Country{}}
}

func (r *memRepository) UpsertBatch(_ context.Context, countries []domain.Country) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make(map[string]domain.Country, len(countries))
	for _, c := range countries {
		if old, ok := r.rows[c.NameNormalized]; ok {
			c.ID = old.ID
			c.CreatedAt = old.CreatedAt
		} else {
			r.nextID++
			c.ID = r.nextID
			c.CreatedAt = c.LastRefreshedAt
		}
		c.UpdatedAt = c.LastRefreshedAt
		next[c.NameNormalized] = c
	}
	r.rows = next
	return int64(len(r.rows)), nil
}

func (r *memRepository) FindByNormalizedName(_ context.Context, nameNormalized string) (domain.Country, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[nameNormalized]
	if !ok {
		return domain.Country{}, domain.ErrCountryNotFound
	}
	return c, nil
}

func (r *memRepository) DeleteByNormalizedName(_ context.Context, nameNormalized string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[nameNormalized]; !ok {
		return domain.ErrCountryNotFound
	}
	delete(r.rows, nameNormalized)
	return nil
}

func (r *memRepository) List(_ context.Context, _ domain.Filter) ([]domain.Country, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Country, 0, len(r.rows))
	for _, c := range r.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepository) Status(_ context.Context) (domain.Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := domain.Status{TotalCountries: int64(len(r.rows))}
	for _, c := range r.rows {
		ts := c.LastRefreshedAt
		if s.LastRefreshedAt == nil || ts.After(*s.LastRefreshedAt) {
			s.LastRefreshedAt = &ts
		}
	}
	return s, nil
}

func (r *memRepository) TopByGDP(_ context.Context, limit int) ([]domain.Country, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Country, 0, len(r.rows))
	for _, c := range r.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GDPOrZero() != out[j].GDPOrZero() {
			return out[i].GDPOrZero() > out[j].GDPOrZero()
		}
		return strings.Compare(out[i].Name, out[j].Name) < 0
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) ([]byte, bool)      { return nil, false }
func (noopCache) Set(context.Context, string, []byte, ...string)  {}
func (noopCache) Invalidate(context.Context, ...string) error     { return nil }
func (noopCache) Version(context.Context, string) (uint64, error) { return 0, nil }

// memCache is a synchronous map-backed cache with tags and generations.
type memCache struct {
	mu       sync.Mutex
	entries  map[string][]byte
	tags     map[string][]string
	versions map[string]uint64
}

func newMemCache() *memCache {
	return &memCache{
		entries:  map[string][]byte{},
		tags:     map[string][]string{},
		versions: map[string]uint64{},
	}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *memCache) Set(_ context.Context, key string, value []byte, tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	for _, tag := range tags {
		c.tags[tag] = append(c.tags[tag], key)
	}
}

func (c *memCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.versions[k]++
		for _, member := range c.tags[k] {
			delete(c.entries, member)
		}
		delete(c.tags, k)
		delete(c.entries, k)
	}
	return nil
}

func (c *memCache) Version(_ context.Context, name string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[name], nil
}

// blockingListRepository answers List with a preset snapshot, optionally
// holding the call until release is closed.
type blockingListRepository struct {
	*memRepository
	entered chan struct{}
	release chan struct{}
	blocked []domain.Country
	once    sync.Once
}

func (r *blockingListRepository) List(ctx context.Context, f domain.Filter) ([]domain.Country, error) {
	first := false
	r.once.Do(func() { first = true })
	if !first {
		return r.memRepository.List(ctx, f)
	}
	close(r.entered)
	<-r.release
	return r.blocked, nil
}

type noopRenderer struct{}

func (noopRenderer) Render(context.Context, domain.Summary) error { return nil }
