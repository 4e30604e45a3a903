package conversation

import (
	"context"

	"github.com/PabloGalante/shopassist/internal/domain"
	"github.com/PabloGalante/shopassist/internal/observability"
)

type EventType string

const (
	EventMessage EventType = "message"
	EventReset   EventType = "reset"
	EventPending EventType = "pending"
	EventFilters EventType = "filters"
)

// Event describes one change to a conversation, in the order it happened.
// Message is set for EventMessage and EventReset (the new greeting), Pending
// for EventPending, Filters for EventFilters.
type Event struct {
	Type      EventType
	SessionID domain.SessionID
	Message   *domain.Message
	Pending   bool
	Filters   *domain.FilterCriteria
}

const subscriberBuffer = 64

// Subscribe streams the session's events until cancel is called or the
// service is closed. A subscriber that falls more than subscriberBuffer
// events behind loses events rather than blocking the conversation.
func (s *Service) Subscribe(ctx context.Context, sessionID domain.SessionID) (<-chan Event, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sessionStore.GetSession(sessionID); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.subscribeLocked(ctx, sessionID)
	return ch, cancel, nil
}

// Watch returns the current timeline and a subscription starting right
// after it, so no event is missed or repeated between the two.
func (s *Service) Watch(ctx context.Context, sessionID domain.SessionID) (*Timeline, <-chan Event, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tl, err := s.timelineLocked(ctx, sessionID, 0)
	if err != nil {
		return nil, nil, nil, err
	}
	ch, cancel := s.subscribeLocked(ctx, sessionID)
	return tl, ch, cancel, nil
}

func (s *Service) subscribeLocked(ctx context.Context, sessionID domain.SessionID) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	s.nextSub++
	id := s.nextSub
	if s.subs[sessionID] == nil {
		s.subs[sessionID] = make(map[int]chan Event)
	}
	s.subs[sessionID][id] = ch

	s.logger(ctx, sessionID).Debug().Int("subscriber", id).Msg("subscribed to session events")

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		subs := s.subs[sessionID]
		if c, ok := subs[id]; ok {
			delete(subs, id)
			close(c)
		}
		if len(subs) == 0 {
			delete(s.subs, sessionID)
		}
	}
	return ch, cancel
}

// publish must be called with s.mu held.
func (s *Service) publish(ev Event) {
	for id, ch := range s.subs[ev.SessionID] {
		select {
		case ch <- ev:
		default:
			observability.Logger().Warn().
				Str("session_id", string(ev.SessionID)).
				Int("subscriber", id).
				Str("event", string(ev.Type)).
				Msg("subscriber too slow, dropping event")
		}
	}
}
