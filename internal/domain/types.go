package domain

import "time"

type SessionID string
type MessageID string
type ItemID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Intent is the conversational purpose inferred from a user utterance.
type Intent string

const (
	IntentGreeting Intent = "greeting"
	IntentHelp     Intent = "help"
	IntentSearch   Intent = "search"
)

type Timestamp = time.Time
