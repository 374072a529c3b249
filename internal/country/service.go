package country

import (
	"context"
	"countryrates/internal/adapters"
	"countryrates/internal/domain"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

const cacheKeyListPrefix = "countries:list:"

type Service struct {
	repo  adapters.CountryRepository
	cache adapters.Cache
}

func (s *Service) List(ctx context.Context, filter domain.Filter) ([]domain.Country, error) {
	filter.Region = strings.TrimSpace(filter.Region)
	filter.Currency = strings.ToUpper(strings.TrimSpace(filter.Currency))

	key, cacheable := s.versionedKey(ctx, CacheTagQueries, listCacheKey(filter))
	var countries []domain.Country
	if cacheable && s.cached(ctx, key, &countries) {
		return countries, nil
	}

	countries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.store(ctx, key, countries, CacheTagQueries)
	}
	return countries, nil
}

func (s *Service) GetByName(ctx context.Context, name string) (domain.Country, error) {
	key := NormalizeName(name)
	if key == "" {
		return domain.Country{}, domain.ErrCountryNotFound
	}
	return s.repo.FindByNormalizedName(ctx, key)
}

func (s *Service) DeleteByName(ctx context.Context, name string) error {
	key := NormalizeName(name)
	if key == "" {
		return domain.ErrCountryNotFound
	}
	if err := s.repo.DeleteByNormalizedName(ctx, key); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, CacheKeyStatus, CacheTagQueries); err != nil {
		logrus.WithError(err).WithField("name_normalized", key).Warn("Failed to invalidate countries caches after delete")
	}
	return nil
}

func (s *Service) Status(ctx context.Context) (domain.Status, error) {
	key, cacheable := s.versionedKey(ctx, CacheKeyStatus, CacheKeyStatus)
	var status domain.Status
	if cacheable && s.cached(ctx, key, &status) {
		return status, nil
	}

	status, err := s.repo.Status(ctx)
	if err != nil {
		return domain.Status{}, err
	}
	if cacheable {
		s.store(ctx, key, status, CacheKeyStatus)
	}
	return status, nil
}

// versionedKey suffixes key with the current generation of name. A result read
// before an invalidation is then stored under a generation nobody asks for again.
// The second return value is false when the generation is unknown and the cache must be bypassed.
func (s *Service) versionedKey(ctx context.Context, name, key string) (string, bool) {
	v, err := s.cache.Version(ctx, name)
	if err != nil {
		logrus.WithError(err).WithField("name", name).Warn("Bypassing cache, generation unavailable")
		return "", false
	}
	return key + "#" + strconv.FormatUint(v, 10), true
}

func (s *Service) cached(ctx context.Context, key string, dst any) bool {
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Dropping undecodable cache entry")
		return false
	}
	return true
}

func (s *Service) store(ctx context.Context, key string, v any, tags ...string) {
	raw, err := json.Marshal(v)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to encode cache entry")
		return
	}
	s.cache.Set(ctx, key, raw, tags...)
}

func listCacheKey(f domain.Filter) string {
	return cacheKeyListPrefix + f.Region + "|" + f.Currency + "|" + string(f.Sort)
}

func NewService(repo adapters.CountryRepository, cache adapters.Cache) *Service {
	return &Service{repo: repo, cache: cache}
}
