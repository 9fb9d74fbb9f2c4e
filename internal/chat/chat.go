// Package chat merges polled chat history with locally sent messages.
package chat

import (
	"context"
	"strings"

	"github.com/aiwars-hackathon/hackdash/internal/api"
)

// Messages shown in the chat panel.
const (
	WelcomeMessage = "👋 Welcome! Ask your queries here."
	ErrSendMessage = "Failed to send message. Try again."
	ErrLoadMessage = "Unable to load chat right now."
)

// RoleTeam is the sender role of team members.
const RoleTeam = "team"

// Class is the visual class of a message.
type Class string

const (
	ClassTeam  Class = "team"
	ClassStaff Class = "staff"
)

// RoleClass maps a sender role to its visual class. Anything other than the
// team role, including a missing one, is staff.
func RoleClass(role string) Class {
	if strings.EqualFold(strings.TrimSpace(role), RoleTeam) {
		return ClassTeam
	}
	return ClassStaff
}

// Sender is the API surface needed to send a message.
type Sender interface {
	SendChat(ctx context.Context, token, message string) (*api.ChatMessage, error)
}

// Send posts text through s.
func Send(ctx context.Context, s Sender, token, text string) (*api.ChatMessage, error) {
	return s.SendChat(ctx, token, text)
}

// Channel holds the visible message list and the compose input. It is owned
// by the UI loop and not safe for concurrent use.
type Channel struct {
	messages []api.ChatMessage
	input    string
	pending  string
	sending  bool
	err      string
}

// Messages returns the visible list.
func (c *Channel) Messages() []api.ChatMessage { return c.messages }

// Input returns the compose text.
func (c *Channel) Input() string { return c.input }

// SetInput replaces the compose text.
func (c *Channel) SetInput(s string) { c.input = s }

// Sending reports whether a send is in flight.
func (c *Channel) Sending() bool { return c.sending }

// Err returns the inline send error, if any.
func (c *Channel) Err() string { return c.err }

// ReplaceSnapshot installs a polled list. The server is authoritative so
// the whole list is replaced.
func (c *Channel) ReplaceSnapshot(msgs []api.ChatMessage) {
	c.messages = append([]api.ChatMessage(nil), msgs...)
}

// BeginSend trims the input and, when non-empty, clears it and returns the
// text to post. Empty input is a no-op.
func (c *Channel) BeginSend() (string, bool) {
	text := strings.TrimSpace(c.input)
	if text == "" || c.sending {
		return "", false
	}
	c.pending = c.input
	c.input = ""
	c.sending = true
	c.err = ""
	return text, true
}

// FinishSend records the outcome. On success the echo is appended unless a
// message with the same id is already visible; on failure the input is
// restored and an inline error is set.
func (c *Channel) FinishSend(echo *api.ChatMessage, err error) {
	c.sending = false
	pending := c.pending
	c.pending = ""
	if err != nil {
		if c.input == "" {
			c.input = strings.TrimSpace(pending)
		}
		c.err = ErrSendMessage
		return
	}
	c.err = ""
	if echo == nil {
		return
	}
	if echo.ID != "" {
		for i := range c.messages {
			if c.messages[i].ID == echo.ID {
				c.messages[i] = *echo
				return
			}
		}
	}
	c.messages = append(c.messages, *echo)
}
