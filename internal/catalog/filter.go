// Path: internal/catalog/filter.go
package catalog

import (
	"slices"
	"time"

	"catalog-viewer/internal/domain"
)

const (
	DefaultPriceCap    = 100
	DefaultRecencyDays = 15
)

// Rules holds the thresholds shared by the filters and the indicators.
type Rules struct {
	// PriceCap is the inclusive upper bound of the "reasonable price" filter.
	PriceCap float64
	// RecencyDays is the trailing window, in whole days, of the recency rule.
	RecencyDays int
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func DefaultRules() Rules {
	return Rules{
		PriceCap:    DefaultPriceCap,
		RecencyDays: DefaultRecencyDays,
		Now:         time.Now,
	}
}

func (r Rules) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// DaysSince is the whole number of days between released and now,
// truncated toward zero. Future dates give zero or a negative count.
func DaysSince(now time.Time, released time.Time) int {
	return int(now.Sub(released) / (24 * time.Hour))
}

// IsRecent reports whether p was released strictly less than RecencyDays ago.
func (r Rules) IsRecent(now time.Time, p domain.Product) bool {
	return DaysSince(now, p.Released.Time) < r.RecencyDays
}

// IsReasonable reports whether p is within the price cap.
func (r Rules) IsReasonable(p domain.Product) bool {
	return float64(p.Price) <= r.PriceCap
}

// Apply derives the visible products from the index and the filter config.
//
// With cfg.Favorite set the base set is the favorites list and cfg.Brand is
// ignored. Otherwise the base set is the brand bucket; an unknown brand yields
// an empty result. The price cap then the recency window only narrow the base
// set, never reorder it. The index itself is not modified.
func Apply(index *BrandIndex, favorites *FavoritesSet, cfg domain.FilterConfig, rules Rules) []domain.Product {
	var base []domain.Product
	if cfg.Favorite {
		if favorites != nil {
			base = favorites.List()
		}
	} else {
		bucket, _ := index.Lookup(cfg.Brand)
		base = slices.Clone(bucket)
	}
	if base == nil {
		base = []domain.Product{}
	}

	if cfg.Price {
		base = slices.DeleteFunc(base, func(p domain.Product) bool { return !rules.IsReasonable(p) })
	}

	if cfg.Release {
		now := rules.now()
		base = slices.DeleteFunc(base, func(p domain.Product) bool { return !rules.IsRecent(now, p) })
	}

	return base
}
