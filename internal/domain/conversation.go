package domain

// Turn is one entry of a conversation history as exchanged with callers.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp Timestamp `json:"timestamp"`
}

// Message represents a persisted turn in a session timeline.
type Message struct {
	ID        MessageID
	SessionID SessionID
	Author    Role
	Text      string
	CreatedAt Timestamp
}

// Turn converts a stored message into a history turn.
func (m *Message) Turn() Turn {
	return Turn{Role: m.Author, Content: m.Text, Timestamp: m.CreatedAt}
}

// Session is a server-held conversation: the accumulated intent plus its state.
type Session struct {
	ID        SessionID
	UserID    UserID
	CreatedAt Timestamp
	UpdatedAt Timestamp

	Title  string
	Intent TripIntent
	State  ConversationState
	PlanID PlanID
}
