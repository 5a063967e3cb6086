// Path: internal/catalog/indicators.go
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"catalog-viewer/internal/domain"
)

// Compute summarises a visible product subset. It reports false for an empty
// subset, in which case there is nothing to show and nothing was computed.
// The input slice is never reordered.
func Compute(products []domain.Product, rules Rules) (domain.Indicators, bool) {
	if len(products) == 0 {
		return domain.Indicators{}, false
	}

	now := rules.now()
	recent := 0
	for _, p := range products {
		if rules.IsRecent(now, p) {
			recent++
		}
	}

	byPrice := slices.Clone(products)
	slices.SortStableFunc(byPrice, byPriceDesc)

	last, _ := LastReleased(products)
	return domain.Indicators{
		Count:        len(products),
		RecentCount:  recent,
		P50:          nearestRank(byPrice, 50),
		P90:          nearestRank(byPrice, 90),
		P95:          nearestRank(byPrice, 95),
		LastReleased: last,
	}, true
}

// Percentile is the nearest-rank price estimate: the price found at index
// floor(n*p/100) once the products are ordered by descending price.
// p must lie in [0, 100).
func Percentile(products []domain.Product, p int) (float64, error) {
	if p < 0 || p >= 100 {
		return 0, fmt.Errorf("%w: %d", domain.ErrPercentileRange, p)
	}
	if len(products) == 0 {
		return 0, errors.New("percentile of an empty product set")
	}
	byPrice := slices.Clone(products)
	slices.SortStableFunc(byPrice, byPriceDesc)
	return nearestRank(byPrice, p), nil
}

// nearestRank expects byPrice sorted by descending price and 0 <= p < 100.
func nearestRank(byPrice []domain.Product, p int) float64 {
	return float64(byPrice[len(byPrice)*p/100].Price)
}

// LastReleased is the release date ranked first by the SortDateAsc ordering,
// i.e. the most recent one.
func LastReleased(products []domain.Product) (domain.ReleaseDate, bool) {
	if len(products) == 0 {
		return domain.ReleaseDate{}, false
	}
	ordered := slices.Clone(products)
	compare, _ := Comparator(domain.SortDateAsc)
	slices.SortStableFunc(ordered, compare)
	return ordered[0].Released, true
}
