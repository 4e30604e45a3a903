package memory

import (
	"sync"

	"github.com/PabloGalante/shopassist/internal/domain"
)

// MessageStore holds each session's append-only log. There is no size cap.
type MessageStore struct {
	mu       sync.RWMutex
	messages map[domain.SessionID][]*domain.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		messages: make(map[domain.SessionID][]*domain.Message),
	}
}

func (s *MessageStore) AppendMessage(msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], msg)
	return nil
}

// GetMessagesBySession returns the last limit messages in order, or all of
// them when limit <= 0. The returned slice is a copy.
func (s *MessageStore) GetMessagesBySession(sessionID domain.SessionID, limit int) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[sessionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	out := make([]*domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *MessageStore) ReplaceMessages(sessionID domain.SessionID, msgs ...*domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := make([]*domain.Message, len(msgs))
	copy(log, msgs)
	s.messages[sessionID] = log
	return nil
}
