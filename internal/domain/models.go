// Path: internal/domain/models.go
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// AllBrands is the reserved BrandIndex key holding every product of the page.
const AllBrands = "all"

// ReleaseLayout is the calendar format the catalog API uses for release dates.
const ReleaseLayout = "2006-01-02"

// --- Custom Type for the "released" field ---

// ReleaseDate is a release instant that can be unmarshaled from a plain
// calendar date ("2021-03-04") or a full RFC 3339 timestamp.
type ReleaseDate struct {
	time.Time
}

// NewReleaseDate is a convenience constructor for tests and fixtures.
func NewReleaseDate(t time.Time) ReleaseDate {
	return ReleaseDate{Time: t}
}

// ParseReleaseDate parses the layouts the catalog API is known to send.
// Calendar dates are interpreted as UTC midnight.
func ParseReleaseDate(s string) (ReleaseDate, error) {
	for _, layout := range []string{ReleaseLayout, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return ReleaseDate{Time: t}, nil
		}
	}
	return ReleaseDate{}, fmt.Errorf("unrecognised release date %q", s)
}

// UnmarshalJSON implements the json.Unmarshaler interface for ReleaseDate.
func (d *ReleaseDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("released field is not a string: %w", err)
	}
	parsed, err := ParseReleaseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON writes the date back in the API's calendar layout.
func (d ReleaseDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// MarshalBSONValue stores the date as a BSON datetime.
func (d ReleaseDate) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(d.Time)
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler for ReleaseDate.
func (d *ReleaseDate) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var tm time.Time
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&tm); err != nil {
		return err
	}
	d.Time = tm.UTC()
	return nil
}

func (d ReleaseDate) String() string {
	if d.IsZero() {
		return ""
	}
	return d.UTC().Format(ReleaseLayout)
}

// --- Custom Type for the "price" field ---

// FlexiblePrice is a price that can be unmarshaled from a JSON number (29.5)
// or a JSON string ("29.5").
type FlexiblePrice float64

// UnmarshalJSON implements the json.Unmarshaler interface for FlexiblePrice.
func (fp *FlexiblePrice) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*fp = FlexiblePrice(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return fmt.Errorf("price %q is not a finite number", s)
	}
	*fp = FlexiblePrice(parsed)
	return nil
}

// Product is a single catalog item as served by the catalog API.
// Products are immutable once fetched and are passed around by value.
type Product struct {
	UUID     string        `json:"uuid" bson:"uuid"`
	Brand    string        `json:"brand" bson:"brand"`
	Name     string        `json:"name" bson:"name"`
	Price    FlexiblePrice `json:"price" bson:"price"`
	Link     string        `json:"link" bson:"link"`
	Released ReleaseDate   `json:"released" bson:"released"`
}

// Validate reports the first required field that is missing or out of range.
func (p Product) Validate() error {
	switch {
	case p.UUID == "":
		return errors.New("product: missing uuid")
	case p.Brand == "":
		return fmt.Errorf("product %s: missing brand", p.UUID)
	case p.Name == "":
		return fmt.Errorf("product %s: missing name", p.UUID)
	case p.Link == "":
		return fmt.Errorf("product %s: missing link", p.UUID)
	case p.Released.IsZero():
		return fmt.Errorf("product %s: missing released date", p.UUID)
	case math.IsNaN(float64(p.Price)) || math.IsInf(float64(p.Price), 0):
		return fmt.Errorf("product %s: price is not a finite number", p.UUID)
	case p.Price < 0:
		return fmt.Errorf("product %s: negative price %v", p.UUID, float64(p.Price))
	}
	return nil
}

// PaginationMeta describes the page currently held by the ProductStore.
type PaginationMeta struct {
	CurrentPage int `json:"currentPage" bson:"currentPage"`
	PageSize    int `json:"pageSize" bson:"pageSize"`
	PageCount   int `json:"pageCount" bson:"pageCount"`
	Count       int `json:"count" bson:"count"`
}

// Validate checks 1 <= currentPage <= pageCount and a positive page size.
func (m PaginationMeta) Validate() error {
	if m.PageSize < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, m.PageSize)
	}
	if m.PageCount < 1 || m.CurrentPage < 1 || m.CurrentPage > m.PageCount {
		return fmt.Errorf("%w: page %d of %d", ErrInvalidPage, m.CurrentPage, m.PageCount)
	}
	return nil
}

// Page is one successful answer of the catalog API.
type Page struct {
	Result []Product      `json:"result"`
	Meta   PaginationMeta `json:"meta"`
}

// FilterConfig is the single process-wide filter selection.
type FilterConfig struct {
	Price    bool   `json:"price" bson:"price"`
	Release  bool   `json:"release" bson:"release"`
	Brand    string `json:"brand" bson:"brand"`
	Favorite bool   `json:"favorite" bson:"favorite"`
}

// DefaultFilter is the selection a fresh session starts with.
func DefaultFilter() FilterConfig {
	return FilterConfig{Brand: AllBrands}
}

// SortKey names one of the four product orderings.
type SortKey string

const (
	SortNone      SortKey = ""
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	// SortDateAsc puts the most recently released products first.
	// The inverted name is kept: the last-release indicator relies on it.
	SortDateAsc  SortKey = "date-asc"
	SortDateDesc SortKey = "date-desc"
)

// ParseSortKey validates a key received from a client.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortNone, SortPriceAsc, SortPriceDesc, SortDateAsc, SortDateDesc:
		return k, nil
	default:
		return SortNone, fmt.Errorf("%w: %q", ErrInvalidSortKey, s)
	}
}

// Indicators are the summary statistics of a visible product subset.
type Indicators struct {
	Count        int         `json:"count"`
	RecentCount  int         `json:"recentCount"`
	P50          float64     `json:"p50"`
	P90          float64     `json:"p90"`
	P95          float64     `json:"p95"`
	LastReleased ReleaseDate `json:"lastReleased"`
}

// ProductView is a product as handed to rendering, with its favorite state.
type ProductView struct {
	Product
	Favorite bool `json:"favorite"`
}

// View is everything a renderer needs after a state mutation.
type View struct {
	Pagination PaginationMeta `json:"pagination"`
	Pages      []int          `json:"pages"`
	Brands     []string       `json:"brands"`
	Filter     FilterConfig   `json:"filter"`
	Sort       SortKey        `json:"sort"`
	Products   []ProductView  `json:"products"`
	// Indicators is nil when no product is visible.
	Indicators *Indicators `json:"indicators,omitempty"`
}

// SessionDocument is the persisted state of a viewer session.
// It lets the daemon resume favorites and selections across restarts.
type SessionDocument struct {
	ID         string         `bson:"_id"`
	Favorites  []Product      `bson:"favorites"`
	Filter     FilterConfig   `bson:"filter"`
	Sort       SortKey        `bson:"sort"`
	Pagination PaginationMeta `bson:"pagination"`
	UpdatedAt  time.Time      `bson:"updatedAt"`
}
