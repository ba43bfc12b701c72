package domain

import (
	"time"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message represents one entry of the client conversation
type Message struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Time      time.Time   `json:"time"`
	Citations []Citation  `json:"citations,omitempty"`
}

// ToChat strips the message down to the wire shape sent to the relay
func (m Message) ToChat() ChatMessage {
	return ChatMessage{
		Role:    string(m.Role),
		Content: m.Content,
	}
}

// ChatMessage is a {role, content} pair as exchanged with the relay and the
// upstream model. Role is passed through without validation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Citation is a source reference attached to an assistant reply
type Citation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}
