package model

import (
	"time"

	"github.com/google/uuid"
)

// Exchange is one question/answer pair in a conversation.
type Exchange struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

// Conversation carries per-thread context into the pipeline. It replaces
// ambient global history state: the chat layer owns and mutates it, the
// pipeline only reads it, so the pipeline stays stateless across calls.
type Conversation struct {
	ID        uuid.UUID  `json:"id"`
	Channel   string     `json:"channel,omitempty"`
	History   []Exchange `json:"history,omitempty"`
	StartedAt time.Time  `json:"started_at"`
}

// NewConversation creates an empty conversation with a fresh ID.
func NewConversation(channel string) *Conversation {
	return &Conversation{
		ID:        uuid.New(),
		Channel:   channel,
		StartedAt: time.Now(),
	}
}

// Append records a completed exchange.
func (c *Conversation) Append(question, answer string) {
	c.History = append(c.History, Exchange{
		Question: question,
		Answer:   answer,
		AskedAt:  time.Now(),
	})
}

// LastExchange returns the most recent exchange, or nil for a new conversation.
func (c *Conversation) LastExchange() *Exchange {
	if len(c.History) == 0 {
		return nil
	}
	return &c.History[len(c.History)-1]
}
