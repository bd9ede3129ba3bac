package chat

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/alchemorsel/companion/pkg/errors"
)

// summaryMaxRunes bounds the derived session summary.
const summaryMaxRunes = 60

// Session is one continuous conversation. It is owned exclusively by the
// client that created it until explicitly saved; once written, the remote
// copy is the durable record.
type Session struct {
	SessionID string    `json:"sessionId"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	Summary   string    `json:"sessionSummary"`
	Timestamp time.Time `json:"timestamp"`
}

// Key returns the merge key for reconciliation and remote upsert.
func (s Session) Key() string {
	return s.SessionID
}

// Validate checks the required keys before persistence.
func (s Session) Validate() error {
	if s.SessionID == NoSessionID {
		return errors.NewValidationError("session missing session id", "sessionId must be minted before persistence")
	}
	return nil
}

// NewSession mints a fresh session. Ids are UUIDs rather than timestamps so
// two sessions created in the same instant cannot collide.
func NewSession(now time.Time) Session {
	return Session{
		SessionID: uuid.NewString(),
		CreatedAt: now,
		Timestamp: now,
	}
}

// Summarize derives a session summary from the first user message,
// truncated on a rune boundary.
func Summarize(firstMessage string) string {
	if utf8.RuneCountInString(firstMessage) <= summaryMaxRunes {
		return firstMessage
	}
	runes := []rune(firstMessage)
	return string(runes[:summaryMaxRunes])
}
