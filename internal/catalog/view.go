// Path: internal/catalog/view.go
package catalog

import (
	"catalog-viewer/internal/domain"
)

// Render derives the full view for one state snapshot: the filtered products
// with their favorite flags, the indicators of that same subset, the brand
// selector and the page selector. Nothing passed in is modified.
func Render(
	pagination domain.PaginationMeta,
	index *BrandIndex,
	filter domain.FilterConfig,
	sortKey domain.SortKey,
	favorites *FavoritesSet,
	rules Rules,
) domain.View {
	visible := Apply(index, favorites, filter, rules)

	products := make([]domain.ProductView, len(visible))
	for i, p := range visible {
		products[i] = domain.ProductView{
			Product:  p,
			Favorite: favorites != nil && favorites.Contains(p.UUID),
		}
	}

	view := domain.View{
		Pagination: pagination,
		Pages:      pageNumbers(pagination.PageCount),
		Brands:     index.Brands(),
		Filter:     filter,
		Sort:       sortKey,
		Products:   products,
	}
	if indicators, ok := Compute(visible, rules); ok {
		view.Indicators = &indicators
	}
	return view
}

func pageNumbers(count int) []int {
	pages := make([]int, 0, max(count, 0))
	for i := 1; i <= count; i++ {
		pages = append(pages, i)
	}
	return pages
}
