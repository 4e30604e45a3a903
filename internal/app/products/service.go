package products

import (
	"context"

	"github.com/PabloGalante/shopassist/internal/app/matcher"
	"github.com/PabloGalante/shopassist/internal/domain"
	"github.com/PabloGalante/shopassist/internal/observability"
)

// Service answers stateless catalog queries, outside of any conversation.
type Service struct {
	catalog domain.CatalogProvider
}

// NewService creates a products service over a catalog provider.
func NewService(catalog domain.CatalogProvider) *Service {
	return &Service{
		catalog: catalog,
	}
}

// Search runs the matcher against the current catalog.
func (s *Service) Search(ctx context.Context, query string, filters domain.FilterCriteria) []domain.Item {
	found := matcher.Match(query, filters, s.catalog.Items())

	observability.LoggerFromContext(ctx).Debug().
		Str("query", query).
		Int("results", len(found)).
		Msg("catalog search")

	return found
}

// Categories returns the filter panel options, wildcard first.
func (s *Service) Categories() []string {
	out := make([]string, len(domain.CategoryOptions))
	copy(out, domain.CategoryOptions)
	return out
}

// Count returns how many items the catalog holds right now.
func (s *Service) Count() int {
	return len(s.catalog.Items())
}
