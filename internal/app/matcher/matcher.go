// Package matcher decides which catalog items satisfy a free-text query
// under the active filter criteria.
package matcher

import (
	"strings"

	"github.com/PabloGalante/shopassist/internal/domain"
)

// Match returns the items whose name, description or category contain query
// (case-insensitive) and that pass every filter. Catalog order is preserved.
// The result never aliases items.
func Match(query string, filters domain.FilterCriteria, items []domain.Item) []domain.Item {
	q := strings.ToLower(query)

	out := make([]domain.Item, 0)
	for _, it := range items {
		if MatchesText(q, it) && MatchesFilters(filters, it) {
			out = append(out, it)
		}
	}
	return out
}

// MatchesText expects an already lower-cased query. An empty query matches everything.
func MatchesText(lowerQuery string, it domain.Item) bool {
	return strings.Contains(strings.ToLower(it.Name), lowerQuery) ||
		strings.Contains(strings.ToLower(it.Description), lowerQuery) ||
		strings.Contains(strings.ToLower(it.Category), lowerQuery)
}

// MatchesFilters applies the category, price bound and stock predicates.
func MatchesFilters(f domain.FilterCriteria, it domain.Item) bool {
	if f.Category != domain.CategoryAll && f.Category != it.Category {
		return false
	}
	if f.MinPrice != nil && it.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && it.Price > *f.MaxPrice {
		return false
	}
	if f.InStockOnly && !it.InStock {
		return false
	}
	return true
}
