package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Role tags who authored a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole maps anything other than "user" to the assistant role
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleUser)) {
		return RoleUser
	}
	return RoleAssistant
}

// Message is one role-tagged chat turn
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the ordered list of messages sent upstream
type Conversation []Message

// Normalize returns a copy with roles mapped onto user/assistant
func (c Conversation) Normalize() Conversation {
	out := make(Conversation, len(c))
	for i, m := range c {
		out[i] = Message{Role: ParseRole(string(m.Role)), Content: m.Content}
	}
	return out
}

// Validate checks the conversation can be sent to a text generator
func (c Conversation) Validate() error {
	if len(c) == 0 {
		return errors.New("conversation must contain at least one message")
	}

	for i, m := range c {
		if strings.TrimSpace(m.Content) == "" {
			return fmt.Errorf("message %d has empty content", i+1)
		}
	}

	if ParseRole(string(c[len(c)-1].Role)) != RoleUser {
		return errors.New("last message must come from the user")
	}

	return nil
}

// LastUserPrompt returns the content of the most recent user message
func (c Conversation) LastUserPrompt() string {
	for i := len(c) - 1; i >= 0; i-- {
		if ParseRole(string(c[i].Role)) == RoleUser {
			return c[i].Content
		}
	}
	return ""
}
