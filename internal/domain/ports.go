package domain

import (
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// CatalogProvider supplies the current, read-only set of catalog items.
// Callers must not modify the returned slice.
type CatalogProvider interface {
	Items() []Item
}

// SessionStore defines session persistence for the lifetime of the process.
type SessionStore interface {
	CreateSession(session *Session) error
	UpdateSession(session *Session) error
	GetSession(id SessionID) (*Session, error)
	ListSessions(limit int) ([]*Session, error)
}

// MessageStore defines the ordered, append-only message log of each session.
type MessageStore interface {
	AppendMessage(msg *Message) error
	GetMessagesBySession(sessionID SessionID, limit int) ([]*Message, error)
	// ReplaceMessages discards the whole log of a session and starts it over with msgs.
	ReplaceMessages(sessionID SessionID, msgs ...*Message) error
}

// Task is a scheduled callback that may still be stopped.
type Task interface {
	// Stop prevents the callback from running. It reports false when the
	// callback already ran or was already stopped.
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}
