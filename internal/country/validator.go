package country

import (
	"countryrates/internal/domain"
	"slices"
	"strings"
)

var supportedSorts = []domain.SortOrder{
	domain.SortGDPDesc,
	domain.SortGDPAsc,
	domain.SortPopulationDesc,
	domain.SortPopulationAsc,
}

type SortValidator struct{}

// ParseSort accepts an empty value (insertion order) or one of the supported orders.
func (SortValidator) ParseSort(raw string) (domain.SortOrder, error) {
	s := domain.SortOrder(strings.ToLower(strings.TrimSpace(raw)))
	if s == domain.SortNone || slices.Contains(supportedSorts, s) {
		return s, nil
	}
	return domain.SortNone, &domain.ValidationError{Field: "sort", Value: raw, Err: domain.ErrInvalidSort}
}

func (SortValidator) SupportedSorts() []string {
	out := make([]string, 0, len(supportedSorts))
	for _, s := range supportedSorts {
		out = append(out, string(s))
	}
	return out
}

func NewSortValidator() SortValidator { return SortValidator{} }
