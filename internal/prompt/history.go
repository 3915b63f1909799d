package prompt

import "strings"

// History is an ordered, append-only log of prior turns within one session.
// It lives for the session that created it and is never persisted; a new
// process starts with empty histories.
//
// History is not safe for concurrent use: each session/request owns its own.
type History struct {
	messages []Message
}

// Append adds a message to the history, preserving insertion order.
func (h *History) Append(msg Message) {
	h.messages = append(h.messages, msg)
}

// Len returns the number of recorded turns.
func (h *History) Len() int {
	return len(h.messages)
}

// RenderText serializes the history into the single text block injected ahead
// of a new user prompt, so the model sees prior turns inside the user message.
// Returns "" when no turns exist.
func (h *History) RenderText() string {
	if len(h.messages) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("<Chat_history> {")
	for i, msg := range h.messages {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(msg.Content)
		b.WriteString(";\n")
	}
	b.WriteString("}</Chat_history>")
	return b.String()
}
