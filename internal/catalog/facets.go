package catalog

import (
	"sort"
	"strings"

	"github.com/technova/storefront-backend/pkg/db/models"
)

// BuildFacets collects the distinct filterable values present in the feed.
// Values keep their original casing; dedup is case-insensitive.
func BuildFacets(products []models.Product) Facets {
	brands := map[string]string{}
	ram := map[string]string{}
	storage := map[string]string{}
	cpu := map[string]string{}
	screens := map[string]string{}

	for _, p := range products {
		if p.Brand != nil {
			addFacetValue(brands, *p.Brand)
		}
		addFacetValue(ram, p.Specifications.String(specKeyRAM))
		addFacetValue(storage, p.Specifications.String(specKeyStorage))
		addFacetValue(cpu, p.Specifications.String(specKeyCPU))
		addFacetValue(screens, p.Specifications.String(specKeyScreen))
	}

	return Facets{
		Brands:      sortedFacetValues(brands),
		RAM:         sortedFacetValues(ram),
		Storage:     sortedFacetValues(storage),
		CPU:         sortedFacetValues(cpu),
		ScreenSizes: sortedFacetValues(screens),
	}
}

func addFacetValue(set map[string]string, value string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return
	}
	key := strings.ToLower(trimmed)
	if _, ok := set[key]; !ok {
		set[key] = trimmed
	}
}

func sortedFacetValues(set map[string]string) []string {
	values := make([]string, 0, len(set))
	for _, v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
