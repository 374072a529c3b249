package country

import (
	"countryrates/internal/domain"
	"math"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName turns a display name into the persistence key:
// "  Côte d'Ivoire " -> "cote-d-ivoire".
func NormalizeName(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(strings.TrimSpace(folded))

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range folded {
		if isSlugRune(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

func isSlugRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || (r > unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}

// Normalize converts one raw payload into a persistence record.
// The second return value is false when the entry must be skipped.
func Normalize(raw domain.RawCountry, rates map[string]float64, now time.Time, multiplier Multiplier) (domain.Country, bool) {
	if raw.DecodeErr != nil || raw.Name == nil || raw.Population == nil {
		return domain.Country{}, false
	}
	name := strings.TrimSpace(*raw.Name)
	if name == "" {
		return domain.Country{}, false
	}
	nameNormalized := NormalizeName(name)
	if nameNormalized == "" {
		return domain.Country{}, false
	}
	// float64(math.MaxInt64) rounds up to 2^63, which no longer fits
	if p := *raw.Population; math.IsNaN(p) || p < 0 || p >= math.MaxInt64 {
		return domain.Country{}, false
	}
	population := int64(*raw.Population)

	c := domain.Country{
		Name:            name,
		NameNormalized:  nameNormalized,
		Capital:         optional(raw.Capital),
		Region:          optional(raw.Region),
		Population:      population,
		FlagURL:         optional(raw.Flag),
		LastRefreshedAt: now,
	}

	if len(raw.Currencies) == 0 {
		zero := 0.0
		c.EstimatedGDP = &zero
		return c, true
	}

	// Only the first listed currency counts.
	code := optional(raw.Currencies[0].Code)
	if code == nil {
		return c, true
	}
	upper := strings.ToUpper(*code)
	c.CurrencyCode = &upper

	rate, ok := rates[upper]
	if !ok || rate <= 0 {
		return c, true
	}
	c.ExchangeRate = &rate
	gdp := float64(population) * float64(multiplier.Next()) / rate
	if math.IsInf(gdp, 0) || math.IsNaN(gdp) {
		// a vanishing rate makes the estimate meaningless
		return c, true
	}
	c.EstimatedGDP = &gdp
	return c, true
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
