// Path: internal/catalog/favorites.go
package catalog

import (
	"slices"

	"catalog-viewer/internal/domain"
)

// FavoritesSet tracks favorite products by uuid, independently of pagination.
// It keeps value copies so a favorite outlives the page it was picked from.
type FavoritesSet struct {
	order []string
	items map[string]domain.Product
}

func NewFavoritesSet() *FavoritesSet {
	return &FavoritesSet{items: make(map[string]domain.Product)}
}

// Add inserts a product. It reports false when the uuid was already present.
func (f *FavoritesSet) Add(p domain.Product) bool {
	if _, found := f.items[p.UUID]; found {
		return false
	}
	f.items[p.UUID] = p
	f.order = append(f.order, p.UUID)
	return true
}

// Remove deletes a uuid. It reports false when the uuid was absent.
func (f *FavoritesSet) Remove(uuid string) bool {
	if _, found := f.items[uuid]; !found {
		return false
	}
	delete(f.items, uuid)
	f.order = slices.DeleteFunc(f.order, func(id string) bool { return id == uuid })
	return true
}

func (f *FavoritesSet) Contains(uuid string) bool {
	_, found := f.items[uuid]
	return found
}

// List returns the favorites in add order.
func (f *FavoritesSet) List() []domain.Product {
	out := make([]domain.Product, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.items[id])
	}
	return out
}

func (f *FavoritesSet) Len() int {
	return len(f.order)
}

// Restore replaces the set with a previously saved list.
func (f *FavoritesSet) Restore(products []domain.Product) {
	f.order = nil
	f.items = make(map[string]domain.Product, len(products))
	for _, p := range products {
		f.Add(p)
	}
}
