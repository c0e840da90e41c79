package domain

import "time"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single entry of the conversation transcript.
type Turn struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"-"`

	// Synthetic marks turns the user never exchanged with the extraction
	// service (the welcome message). They are shown but never sent as history.
	Synthetic bool `json:"-"`
}

// NewTurn creates a turn stamped with the package clock.
func NewTurn(role Role, content string) Turn {
	return Turn{Role: role, Content: content, At: clock.Now()}
}

// ChatMessage is the wire form of a turn sent to the extraction service.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History converts a transcript into the message list sent to the extraction
// service, dropping synthetic turns and preserving order.
func History(turns []Turn) []ChatMessage {
	out := make([]ChatMessage, 0, len(turns))
	for _, t := range turns {
		if t.Synthetic {
			continue
		}
		out = append(out, ChatMessage{Role: t.Role, Content: t.Content})
	}
	return out
}
