// Package chat contains the domain model for chat conversations: messages,
// sessions, the session lifecycle states, and the failure categories the
// recovery flow distinguishes.
package chat

import (
	"time"

	"github.com/alchemorsel/companion/internal/domain/recipe"
	"github.com/alchemorsel/companion/pkg/errors"
)

// Sender identifies who authored a message.
type Sender string

const (
	// SenderUser marks a message typed by the user.
	SenderUser Sender = "user"
	// SenderAI marks a well-formed assistant reply.
	SenderAI Sender = "ai"
	// SenderSystem marks a synthetic message describing a failed exchange.
	SenderSystem Sender = "system"
)

// NoSessionID is the sentinel for "no session yet". Persisting a message
// carrying this value is a caller error.
const NoSessionID = ""

// Message is a single entry in a conversation. Messages are immutable
// after creation and are deleted from the local store only after confirmed
// remote persistence.
type Message struct {
	// Seq is the local ordering key, monotonic within the client.
	Seq int64 `json:"id"`

	// MessageID is the globally unique key.
	MessageID string `json:"messageId"`

	SessionID string    `json:"sessionId"`
	Timestamp time.Time `json:"timestamp"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`

	// Suggestions holds recipes extracted from an assistant reply. They are
	// ephemeral until the user saves or favorites one.
	Suggestions []recipe.Recipe `json:"suggestions,omitempty"`

	// Failure categorizes a system message describing a failed exchange.
	// Empty on user and ai messages.
	Failure FailureCategory `json:"failure,omitempty"`
}

// Key returns the merge key for reconciliation and remote upsert.
func (m Message) Key() string {
	return m.MessageID
}

// Validate checks the required keys before persistence. A message carrying
// the no-session sentinel fails loudly rather than defaulting.
func (m Message) Validate() error {
	if m.SessionID == NoSessionID {
		return errors.NewValidationError("message missing session id", "sessionId must not be the no-session sentinel at persistence time")
	}
	if m.MessageID == "" {
		return errors.NewValidationError("message missing message id", "messageId is the natural key and must be set")
	}
	switch m.Sender {
	case SenderUser, SenderAI, SenderSystem:
	default:
		return errors.NewValidationError("message has unknown sender", string(m.Sender))
	}
	return nil
}
