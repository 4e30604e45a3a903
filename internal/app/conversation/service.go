package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/PabloGalante/shopassist/internal/app/intent"
	"github.com/PabloGalante/shopassist/internal/domain"
	"github.com/PabloGalante/shopassist/internal/observability"
)

// ErrReplyPending is returned when an utterance arrives while the assistant
// is still composing the previous reply.
var ErrReplyPending = errors.New("a reply is already pending")

// ErrClosed is returned by operations that would start new work after Close.
var ErrClosed = errors.New("conversation service is closed")

const DefaultReplyDelay = 1500 * time.Millisecond

type Options struct {
	// ReplyDelay is the simulated time the assistant spends composing a reply.
	ReplyDelay time.Duration
	FilterRead domain.FilterReadMode
	// CancelPendingOnReset drops an in-flight reply when the conversation is reset.
	// When false the reply is still appended after the fresh greeting.
	CancelPendingOnReset bool
	// Router overrides the default greeting -> help -> search router.
	Router *intent.Router
}

func DefaultOptions() Options {
	return Options{
		ReplyDelay: DefaultReplyDelay,
		FilterRead: domain.FilterReadLive,
	}
}

// Service owns every conversation. All state changes happen under one lock,
// so sessions behave as if driven by a single logical thread; the reply
// delay is the only point where other work can interleave.
type Service struct {
	catalog      domain.CatalogProvider
	router       *intent.Router
	sessionStore domain.SessionStore
	messageStore domain.MessageStore
	scheduler    domain.Scheduler
	opts         Options
	now          func() time.Time
	newID        func() string

	mu      sync.Mutex
	pending map[domain.SessionID]*pendingReply
	subs    map[domain.SessionID]map[int]chan Event
	nextSub int
	closed  bool
}

type pendingReply struct {
	task      domain.Task
	utterance string
	filters   *domain.FilterCriteria // set in snapshot mode only
	ctx       context.Context
}

func NewService(
	catalog domain.CatalogProvider,
	sessionStore domain.SessionStore,
	messageStore domain.MessageStore,
	scheduler domain.Scheduler,
	opts Options,
) *Service {
	if opts.Router == nil {
		opts.Router = intent.NewDefaultRouter()
	}
	if opts.FilterRead == "" {
		opts.FilterRead = domain.FilterReadLive
	}
	if opts.ReplyDelay < 0 {
		opts.ReplyDelay = 0
	}

	return &Service{
		catalog:      catalog,
		router:       opts.Router,
		sessionStore: sessionStore,
		messageStore: messageStore,
		scheduler:    scheduler,
		opts:         opts,
		now:          time.Now,
		newID:        generateID,
		pending:      make(map[domain.SessionID]*pendingReply),
		subs:         make(map[domain.SessionID]map[int]chan Event),
	}
}

// StartSession opens a conversation with the welcome greeting and default filters.
func (s *Service) StartSession(ctx context.Context) (*domain.Session, *domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, nil, ErrClosed
	}

	now := s.now()
	session := &domain.Session{
		ID:        domain.SessionID(s.newID()),
		CreatedAt: now,
		UpdatedAt: now,
		Filters:   domain.DefaultFilters(),
	}

	log := s.logger(ctx, session.ID)
	log.Info().Msg("starting new session")

	if err := s.sessionStore.CreateSession(session); err != nil {
		log.Error().Err(err).Msg("failed to create session")
		return nil, nil, fmt.Errorf("creating session: %w", err)
	}

	welcome := s.newMessage(session.ID, domain.RoleAssistant, domain.WelcomeText, nil)
	if err := s.messageStore.AppendMessage(welcome); err != nil {
		log.Error().Err(err).Msg("failed to append welcome message")
		return nil, nil, fmt.Errorf("appending welcome message: %w", err)
	}

	observability.ActiveSessions.Inc()
	log.Info().Msg("session started")

	return session, welcome, nil
}

// SubmitUtterance appends the user's message and schedules the assistant's
// reply. Blank text is ignored: it returns (nil, nil) and changes nothing.
// While a reply is pending it returns ErrReplyPending.
func (s *Service) SubmitUtterance(ctx context.Context, sessionID domain.SessionID, text string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger(ctx, sessionID)

	if s.closed {
		return nil, ErrClosed
	}

	session, err := s.sessionStore.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		observability.Submissions.WithLabelValues("ignored").Inc()
		log.Debug().Msg("ignoring blank utterance")
		return nil, nil
	}

	if _, busy := s.pending[sessionID]; busy {
		observability.Submissions.WithLabelValues("rejected").Inc()
		log.Info().Msg("rejecting utterance, reply pending")
		return nil, ErrReplyPending
	}

	userMsg := s.newMessage(sessionID, domain.RoleUser, text, nil)
	if err := s.messageStore.AppendMessage(userMsg); err != nil {
		log.Error().Err(err).Msg("failed to append user message")
		return nil, fmt.Errorf("appending user message: %w", err)
	}

	p := &pendingReply{
		utterance: text,
		ctx:       context.WithoutCancel(ctx),
	}
	if s.opts.FilterRead == domain.FilterReadSnapshot {
		f := session.Filters.Clone()
		p.filters = &f
	}
	p.task = s.scheduler.AfterFunc(s.opts.ReplyDelay, func() {
		s.deliverReply(sessionID, p)
	})
	s.pending[sessionID] = p

	observability.Submissions.WithLabelValues("accepted").Inc()
	log.Info().Str("text", text).Msg("utterance accepted, reply scheduled")

	s.publish(Event{Type: EventMessage, SessionID: sessionID, Message: userMsg})
	s.publish(Event{Type: EventPending, SessionID: sessionID, Pending: true})

	return userMsg, nil
}

// deliverReply runs when the reply delay elapses.
func (s *Service) deliverReply(sessionID domain.SessionID, p *pendingReply) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending[sessionID] != p {
		// cancelled by a reset or by Close
		return
	}
	delete(s.pending, sessionID)

	log := s.logger(p.ctx, sessionID)

	session, err := s.sessionStore.GetSession(sessionID)
	if err != nil {
		log.Error().Err(err).Msg("session vanished before reply")
		return
	}

	filters := session.Filters
	if p.filters != nil {
		filters = *p.filters
	}

	resp := s.router.Respond(p.ctx, p.utterance, filters, s.catalog.Items())

	reply := s.newMessage(sessionID, domain.RoleAssistant, resp.Text, resp.Items)
	if err := s.messageStore.AppendMessage(reply); err != nil {
		log.Error().Err(err).Msg("failed to append assistant reply")
		s.publish(Event{Type: EventPending, SessionID: sessionID, Pending: false})
		return
	}

	session.UpdatedAt = s.now()
	if err := s.sessionStore.UpdateSession(session); err != nil {
		log.Error().Err(err).Msg("failed to update session")
	}

	observability.RepliesTotal.WithLabelValues(string(resp.Intent)).Inc()
	if resp.Intent == domain.IntentSearch {
		observability.SearchResults.Observe(float64(len(resp.Items)))
	}
	log.Info().
		Str("intent", string(resp.Intent)).
		Int("items", len(resp.Items)).
		Msg("assistant reply appended")

	s.publish(Event{Type: EventMessage, SessionID: sessionID, Message: reply})
	s.publish(Event{Type: EventPending, SessionID: sessionID, Pending: false})
}

// Reset replaces the whole conversation with a fresh welcome greeting.
// History is discarded for good.
func (s *Service) Reset(ctx context.Context, sessionID domain.SessionID) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger(ctx, sessionID)

	session, err := s.sessionStore.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	greeting := s.newMessage(sessionID, domain.RoleAssistant, domain.WelcomeText, nil)
	if err := s.messageStore.ReplaceMessages(sessionID, greeting); err != nil {
		log.Error().Err(err).Msg("failed to reset messages")
		return nil, fmt.Errorf("resetting conversation: %w", err)
	}

	cancelled := false
	if p, ok := s.pending[sessionID]; ok && s.opts.CancelPendingOnReset {
		p.task.Stop()
		delete(s.pending, sessionID)
		cancelled = true
	}

	session.UpdatedAt = s.now()
	if err := s.sessionStore.UpdateSession(session); err != nil {
		log.Error().Err(err).Msg("failed to update session")
		return nil, fmt.Errorf("updating session: %w", err)
	}

	log.Info().Bool("pending_cancelled", cancelled).Msg("conversation reset")

	s.publish(Event{Type: EventReset, SessionID: sessionID, Message: greeting})
	if cancelled {
		s.publish(Event{Type: EventPending, SessionID: sessionID, Pending: false})
	}

	return greeting, nil
}

// Timeline is what a presentation layer needs to draw a conversation.
type Timeline struct {
	Session  *domain.Session
	Messages []*domain.Message
	// Pending is true while the assistant is composing a reply.
	Pending bool
}

// GetSessionTimeline returns the last limit messages (all when limit <= 0).
func (s *Service) GetSessionTimeline(ctx context.Context, sessionID domain.SessionID, limit int) (*Timeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.timelineLocked(ctx, sessionID, limit)
}

func (s *Service) timelineLocked(ctx context.Context, sessionID domain.SessionID, limit int) (*Timeline, error) {
	log := s.logger(ctx, sessionID)

	session, err := s.sessionStore.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	msgs, err := s.messageStore.GetMessagesBySession(sessionID, limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to get messages")
		return nil, fmt.Errorf("loading messages: %w", err)
	}

	_, pending := s.pending[sessionID]
	log.Debug().Int("message_count", len(msgs)).Bool("pending", pending).Msg("fetched session timeline")

	return &Timeline{Session: session, Messages: msgs, Pending: pending}, nil
}

// Pending reports whether a reply is being composed for the session.
func (s *Service) Pending(sessionID domain.SessionID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[sessionID]
	return ok
}

// Close stops every pending reply and closes all subscriptions. Later
// StartSession and SubmitUtterance calls return ErrClosed.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.pending {
		p.task.Stop()
		delete(s.pending, id)
	}
	for id, subs := range s.subs {
		for _, ch := range subs {
			close(ch)
		}
		delete(s.subs, id)
	}
	s.closed = true
}

func (s *Service) newMessage(sessionID domain.SessionID, author domain.Role, text string, items []domain.Item) *domain.Message {
	return &domain.Message{
		ID:        domain.MessageID(s.newID()),
		SessionID: sessionID,
		Author:    author,
		Text:      text,
		CreatedAt: s.now(),
		Items:     domain.CloneItems(items),
	}
}

func (s *Service) logger(ctx context.Context, sessionID domain.SessionID) *zerolog.Logger {
	l := observability.LoggerFromContext(ctx).With().Str("session_id", string(sessionID)).Logger()
	return &l
}

// generateID returns a UUIDv7, so ids sort in creation order.
func generateID() string {
	return uuid.Must(uuid.NewV7()).String()
}
