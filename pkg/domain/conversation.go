package domain

import (
	"time"
)

// Conversation is the durable context threaded through the turns of one end-user chat.
type Conversation struct {
	ID    string `json:"id"`
	BotID string `json:"bot_id"`

	// Variables holds the runtime bindings, read by interpolation and conditions.
	Variables map[string]any `json:"variables"`

	// History records the exchanged messages (append-only).
	History []Turn `json:"history,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Turn is one user utterance and the bot's reply.
type Turn struct {
	Input       string         `json:"input"`
	Response    string         `json:"response"`
	FlowVersion int            `json:"flow_version"`
	Actions     []Action       `json:"actions,omitempty"`
	Changes     map[string]any `json:"changes,omitempty"` // variables set or removed, see VariableDelta
	At          time.Time      `json:"at"`
}

// NewConversation creates an empty conversation for a bot.
func NewConversation(id, botID string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		ID:        id,
		BotID:     botID,
		Variables: make(map[string]any),
		History:   []Turn{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone creates a copy with its own variable map and history slice.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	next := *c
	next.Variables = CloneVariables(c.Variables)
	next.History = append([]Turn(nil), c.History...)
	return &next
}

// CloneVariables returns a shallow copy of a variable context. A nil source yields an empty map.
func CloneVariables(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
