package domain

// Message represents a single entry in a conversation (user or assistant).
// Messages are never mutated after creation.
type Message struct {
	ID        MessageID
	SessionID SessionID
	Author    Role
	Text      string
	CreatedAt Timestamp

	// Items is a snapshot of the catalog items attached to the reply.
	Items []Item
}

// Session is one conversation together with its filter panel state.
type Session struct {
	ID        SessionID
	CreatedAt Timestamp
	UpdatedAt Timestamp

	Filters FilterCriteria
}

// WelcomeText opens every conversation and is the only message left after a reset.
const WelcomeText = "Hello! I'm your personal shopping assistant. How can I help you find the perfect product today?"
