package conversation

import (
	"context"
	"fmt"

	"github.com/PabloGalante/shopassist/internal/domain"
)

// Filters returns the session's current filter criteria.
func (s *Service) Filters(ctx context.Context, sessionID domain.SessionID) (domain.FilterCriteria, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessionStore.GetSession(sessionID)
	if err != nil {
		return domain.FilterCriteria{}, err
	}
	return session.Filters, nil
}

// UpdateFilters applies edit to the session filters. The change only affects
// replies computed afterwards; a pending reply in live mode sees it too.
func (s *Service) UpdateFilters(
	ctx context.Context,
	sessionID domain.SessionID,
	edit func(f *domain.FilterCriteria),
) (domain.FilterCriteria, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger(ctx, sessionID)

	session, err := s.sessionStore.GetSession(sessionID)
	if err != nil {
		return domain.FilterCriteria{}, err
	}

	edit(&session.Filters)
	session.UpdatedAt = s.now()

	if err := s.sessionStore.UpdateSession(session); err != nil {
		log.Error().Err(err).Msg("failed to update filters")
		return domain.FilterCriteria{}, fmt.Errorf("updating filters: %w", err)
	}

	f := session.Filters
	log.Debug().
		Str("category", f.Category).
		Str("min_price", domain.FormatPriceBound(f.MinPrice)).
		Str("max_price", domain.FormatPriceBound(f.MaxPrice)).
		Bool("in_stock_only", f.InStockOnly).
		Msg("filters updated")

	published := f.Clone()
	s.publish(Event{Type: EventFilters, SessionID: sessionID, Filters: &published})

	return f, nil
}

func (s *Service) SetCategory(ctx context.Context, sessionID domain.SessionID, category string) (domain.FilterCriteria, error) {
	return s.UpdateFilters(ctx, sessionID, func(f *domain.FilterCriteria) { f.SetCategory(category) })
}

// SetMinPrice takes the raw text typed by the user; non-numeric text clears the bound.
func (s *Service) SetMinPrice(ctx context.Context, sessionID domain.SessionID, raw string) (domain.FilterCriteria, error) {
	return s.UpdateFilters(ctx, sessionID, func(f *domain.FilterCriteria) { f.SetMinPrice(raw) })
}

func (s *Service) SetMaxPrice(ctx context.Context, sessionID domain.SessionID, raw string) (domain.FilterCriteria, error) {
	return s.UpdateFilters(ctx, sessionID, func(f *domain.FilterCriteria) { f.SetMaxPrice(raw) })
}

func (s *Service) SetInStockOnly(ctx context.Context, sessionID domain.SessionID, on bool) (domain.FilterCriteria, error) {
	return s.UpdateFilters(ctx, sessionID, func(f *domain.FilterCriteria) { f.SetInStockOnly(on) })
}

func (s *Service) ClearFilters(ctx context.Context, sessionID domain.SessionID) (domain.FilterCriteria, error) {
	return s.UpdateFilters(ctx, sessionID, func(f *domain.FilterCriteria) { f.Clear() })
}
