// Path: internal/catalog/store.go
package catalog

import (
	"slices"

	"catalog-viewer/internal/domain"
)

// BrandIndex groups the products of one page by brand.
// The reserved key domain.AllBrands maps to every product of the page.
type BrandIndex struct {
	all     []domain.Product
	buckets map[string][]domain.Product
	order   []string // first-seen brand order
}

// NewBrandIndex builds a fresh index from a page of products.
// "all" keeps the page order; each brand bucket keeps the relative page order.
func NewBrandIndex(page []domain.Product) *BrandIndex {
	ix := &BrandIndex{
		all:     slices.Clone(page),
		buckets: make(map[string][]domain.Product),
	}
	for _, p := range page {
		if _, found := ix.buckets[p.Brand]; !found {
			ix.order = append(ix.order, p.Brand)
		}
		ix.buckets[p.Brand] = append(ix.buckets[p.Brand], p)
	}
	return ix
}

// Lookup returns the bucket for a brand key. Unknown keys report false.
func (ix *BrandIndex) Lookup(brand string) ([]domain.Product, bool) {
	if ix == nil {
		return nil, false
	}
	if brand == domain.AllBrands {
		return ix.all, true
	}
	bucket, ok := ix.buckets[brand]
	return bucket, ok
}

// Brands lists the selectable keys: brands in first-seen order, then "all".
// A brand literally named "all" is only reachable through the "all" bucket.
func (ix *BrandIndex) Brands() []string {
	if ix == nil {
		return []string{domain.AllBrands}
	}
	keys := make([]string, 0, len(ix.order)+1)
	for _, b := range ix.order {
		if b != domain.AllBrands {
			keys = append(keys, b)
		}
	}
	return append(keys, domain.AllBrands)
}

// Len is the number of products in the page.
func (ix *BrandIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.all)
}

// eachBucket visits "all" and then every named bucket.
func (ix *BrandIndex) eachBucket(fn func(bucket []domain.Product)) {
	fn(ix.all)
	for _, b := range ix.order {
		fn(ix.buckets[b])
	}
}

// ProductStore holds the currently loaded page and its pagination.
// It is sort-agnostic: callers re-apply the active SortKey after Update.
type ProductStore struct {
	products   []domain.Product
	pagination domain.PaginationMeta
	index      *BrandIndex
}

func NewProductStore() *ProductStore {
	return &ProductStore{index: NewBrandIndex(nil)}
}

// Update replaces the page wholesale and rebuilds the brand index.
func (s *ProductStore) Update(page []domain.Product, meta domain.PaginationMeta) *BrandIndex {
	s.products = slices.Clone(page)
	s.pagination = meta
	s.index = NewBrandIndex(s.products)
	return s.index
}

// Products returns a copy of the page in fetch order.
func (s *ProductStore) Products() []domain.Product {
	return slices.Clone(s.products)
}

func (s *ProductStore) Pagination() domain.PaginationMeta {
	return s.pagination
}

func (s *ProductStore) Index() *BrandIndex {
	return s.index
}

// Find resolves a product identity against the current page.
func (s *ProductStore) Find(uuid string) (domain.Product, bool) {
	i := slices.IndexFunc(s.products, func(p domain.Product) bool { return p.UUID == uuid })
	if i < 0 {
		return domain.Product{}, false
	}
	return s.products[i], true
}
