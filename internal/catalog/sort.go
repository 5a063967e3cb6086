// Path: internal/catalog/sort.go
package catalog

import (
	"cmp"
	"slices"

	"catalog-viewer/internal/domain"
)

// Comparator returns the ordering for a sort key. SortNone and unknown keys
// report false.
func Comparator(key domain.SortKey) (func(a, b domain.Product) int, bool) {
	switch key {
	case domain.SortPriceAsc:
		return byPriceAsc, true
	case domain.SortPriceDesc:
		return byPriceDesc, true
	case domain.SortDateAsc:
		return byNewestFirst, true
	case domain.SortDateDesc:
		return byOldestFirst, true
	default:
		return nil, false
	}
}

func byPriceAsc(a, b domain.Product) int {
	return cmp.Compare(a.Price, b.Price)
}

func byPriceDesc(a, b domain.Product) int {
	return cmp.Compare(b.Price, a.Price)
}

// byNewestFirst backs SortDateAsc.
func byNewestFirst(a, b domain.Product) int {
	return b.Released.Compare(a.Released.Time)
}

func byOldestFirst(a, b domain.Product) int {
	return a.Released.Compare(b.Released.Time)
}

// Sort orders every bucket of the index in place, "all" included, with the
// same stable comparator. SortNone leaves the index untouched.
func Sort(key domain.SortKey, index *BrandIndex) *BrandIndex {
	compare, ok := Comparator(key)
	if !ok || index == nil {
		return index
	}
	index.eachBucket(func(bucket []domain.Product) {
		slices.SortStableFunc(bucket, compare)
	})
	return index
}
