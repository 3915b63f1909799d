// Package prompt holds the message structures sent to completion models:
// role-tagged messages, the persona system block, and the per-request
// conversation history.
package prompt

import (
	"errors"
	"fmt"
)

// Recognized message roles. The pipeline only ever speaks as the system or
// the user; assistant turns come back as plain completion text and are never
// re-sent under an assistant role.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ErrInvalidRole indicates a message was constructed with a role other than
// system or user.
var ErrInvalidRole = errors.New("invalid message role")

// Message is a single role-tagged message. Immutable after construction.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewMessage constructs a Message, rejecting unknown roles.
func NewMessage(role, content string) (Message, error) {
	if role != RoleSystem && role != RoleUser {
		return Message{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	return Message{Role: role, Content: content}, nil
}

// System constructs a system message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User constructs a user message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}
