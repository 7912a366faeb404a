package catalog

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/technova/storefront-backend/pkg/db/models"
)

// DefaultMaxPrice is the upper bound of the price slider in VND.
const DefaultMaxPrice int64 = 100_000_000

// SortKey selects the ordering applied after filtering.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortPopular   SortKey = "popular"
)

// IsValid reports whether the sort key is one of the supported orderings.
func (s SortKey) IsValid() bool {
	switch s {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortPopular:
		return true
	}
	return false
}

// ParseSortKey maps a raw string onto a SortKey, defaulting to newest-first.
func ParseSortKey(raw string) SortKey {
	key := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	if !key.IsValid() {
		return SortNewest
	}
	return key
}

// Specification keys the attribute filters inspect.
const (
	specKeyRAM     = "ram"
	specKeyStorage = "storage"
	specKeyCPU     = "cpu"
	specKeyScreen  = "screen_size"
)

// Criteria is the full set of active filter and sort selections. The HTTP
// layer builds a fresh Criteria per request; the pipeline never patches one
// incrementally.
type Criteria struct {
	Query       string
	MinPrice    int64
	MaxPrice    int64
	Brands      []string
	RAM         []string
	Storage     []string
	CPU         []string
	ScreenSizes []string
	CategoryIDs []uuid.UUID
	Sort        SortKey
}

// DefaultCriteria returns criteria matching every product, sorted newest-first.
func DefaultCriteria() Criteria {
	return Criteria{
		MinPrice: 0,
		MaxPrice: DefaultMaxPrice,
		Sort:     SortNewest,
	}
}

// ActiveFilterCount sums the active selections for the filter badge: one for a
// non-default price range plus the size of every selected-value set. The sort
// key and search query do not count.
func ActiveFilterCount(c Criteria) int {
	count := 0
	if c.MinPrice > 0 || (c.MaxPrice > 0 && c.MaxPrice < DefaultMaxPrice) {
		count++
	}
	count += len(c.Brands)
	count += len(c.RAM)
	count += len(c.Storage)
	count += len(c.CPU)
	count += len(c.ScreenSizes)
	count += len(c.CategoryIDs)
	return count
}

// Apply runs the filter pipeline over the product list and returns a new
// slice holding the matching products in the requested order. The input slice
// is never mutated. Steps run in a fixed order: search, price, brand,
// attributes, sort.
func Apply(products []models.Product, c Criteria) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !matchesQuery(p, c.Query) {
			continue
		}
		if !matchesPrice(p, c.MinPrice, c.MaxPrice) {
			continue
		}
		if !matchesBrand(p, c.Brands) {
			continue
		}
		if !matchesAttributes(p, c) {
			continue
		}
		out = append(out, p)
	}
	sortProducts(out, c.Sort)
	return out
}

func matchesQuery(p models.Product, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), q) {
		return true
	}
	if p.Description != nil && strings.Contains(strings.ToLower(*p.Description), q) {
		return true
	}
	if p.Brand != nil && strings.Contains(strings.ToLower(*p.Brand), q) {
		return true
	}
	return false
}

func matchesPrice(p models.Product, min, max int64) bool {
	price := p.EffectivePrice()
	if price < min {
		return false
	}
	if max > 0 && price > max {
		return false
	}
	return true
}

func matchesBrand(p models.Product, brands []string) bool {
	if len(brands) == 0 {
		return true
	}
	if p.Brand == nil {
		return false
	}
	brand := strings.ToLower(*p.Brand)
	for _, b := range brands {
		if strings.ToLower(b) == brand {
			return true
		}
	}
	return false
}

func matchesAttributes(p models.Product, c Criteria) bool {
	if !matchesSpecExact(p, specKeyRAM, c.RAM) {
		return false
	}
	if !matchesSpecExact(p, specKeyStorage, c.Storage) {
		return false
	}
	if !matchesSpecSubstring(p, specKeyCPU, c.CPU) {
		return false
	}
	if !matchesSpecSubstring(p, specKeyScreen, c.ScreenSizes) {
		return false
	}
	if !matchesCategory(p, c.CategoryIDs) {
		return false
	}
	return true
}

// matchesSpecExact tests set membership against the specification value.
func matchesSpecExact(p models.Product, key string, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	value := strings.ToLower(strings.TrimSpace(p.Specifications.String(key)))
	if value == "" {
		return false
	}
	for _, s := range selected {
		if strings.ToLower(strings.TrimSpace(s)) == value {
			return true
		}
	}
	return false
}

// matchesSpecSubstring tests whether any selected value appears inside the
// specification value. CPU and screen-size specs are free-form strings.
func matchesSpecSubstring(p models.Product, key string, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	value := strings.ToLower(p.Specifications.String(key))
	if value == "" {
		return false
	}
	for _, s := range selected {
		if strings.Contains(value, strings.ToLower(strings.TrimSpace(s))) {
			return true
		}
	}
	return false
}

func matchesCategory(p models.Product, ids []uuid.UUID) bool {
	if len(ids) == 0 {
		return true
	}
	if p.CategoryID == nil {
		return false
	}
	for _, id := range ids {
		if *p.CategoryID == id {
			return true
		}
	}
	return false
}

// sortProducts orders the slice in place. Ties keep input order.
func sortProducts(products []models.Product, key SortKey) {
	switch key {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].EffectivePrice() < products[j].EffectivePrice()
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].EffectivePrice() > products[j].EffectivePrice()
		})
	case SortPopular:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].SoldCount > products[j].SoldCount
		})
	default:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	}
}
