// Package chat implements the chat session state machine: session
// identity, message ordering, outgoing request construction, and the
// transitions between awaiting, received, and failed response states. All
// conversation mutation funnels through this service; there is no ambient
// shared chat state.
package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alchemorsel/companion/internal/domain/chat"
	"github.com/alchemorsel/companion/internal/domain/recipe"
	"github.com/alchemorsel/companion/internal/infrastructure/ai"
	"github.com/alchemorsel/companion/internal/ports/outbound"
	"github.com/alchemorsel/companion/pkg/errors"
)

// shutdownSaveTimeout bounds the automatic save attempt fired at shutdown.
const shutdownSaveTimeout = 2 * time.Second

// Service owns one conversation at a time. Methods are safe for
// concurrent use; the mutex is released around completion requests so an
// shutdown save can race an in-flight exchange, with last-write-wins at the
// local store.
type Service struct {
	store       outbound.ChatLocalStore
	completions outbound.CompletionService
	remote      outbound.RemoteStore // optional, used for best-effort save flush
	logger      *zap.Logger

	mu           sync.Mutex
	state        chat.State
	session      chat.Session
	messages     []chat.Message
	lastResponse *chat.Message
	lastFailure  chat.FailureCategory
	prefs        *Preferences
	seq          int64
}

// NewService creates a chat service in the NoSession state. The remote
// store may be nil; saves then stay local until the scheduler flushes.
func NewService(
	store outbound.ChatLocalStore,
	completions outbound.CompletionService,
	remote outbound.RemoteStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:       store,
		completions: completions,
		remote:      remote,
		logger:      logger.Named("chat"),
		state:       chat.StateNoSession,
		// Seed the local ordering key from the clock so ordering holds
		// across process restarts within the same session.
		seq: time.Now().UnixMilli(),
	}
}

// State returns the current lifecycle state
func (s *Service) State() chat.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SessionID returns the current session id, or the no-session sentinel
func (s *Service) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.SessionID
}

// Messages returns a copy of the in-memory conversation
func (s *Service) Messages() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]chat.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// LastResponse returns the most recent assistant message, supporting
// follow-up actions
func (s *Service) LastResponse() (chat.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastResponse == nil {
		return chat.Message{}, false
	}
	return *s.lastResponse, true
}

// LastFailure returns the category of the most recent failed exchange
func (s *Service) LastFailure() chat.FailureCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFailure
}

// SetPreferences installs the preference snapshot appended to outgoing
// prompts. A nil value clears it.
func (s *Service) SetPreferences(prefs *Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = prefs
}

// NewConversation discards in-memory conversation state and returns to
// NoSession. Locally persisted messages are untouched; the scheduler still
// owns their sync lifecycle.
func (s *Service) NewConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = chat.StateNoSession
	s.session = chat.Session{}
	s.messages = nil
	s.lastResponse = nil
	s.lastFailure = ""
}

// Resume rebuilds in-memory state for an existing session from the local
// store, for continuing a conversation after a restart.
func (s *Service) Resume(ctx context.Context, sessionID string) error {
	if sessionID == chat.NoSessionID {
		return errors.NewValidationError("cannot resume without a session id", "")
	}

	history, err := s.store.MessagesBySession(ctx, sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = chat.Session{SessionID: sessionID, CreatedAt: time.Now(), Timestamp: time.Now()}
	if len(history) > 0 {
		s.session.CreatedAt = history[0].Timestamp
		for _, m := range history {
			if m.Sender == chat.SenderUser {
				s.session.Summary = chat.Summarize(m.Text)
				break
			}
		}
	}
	s.messages = history
	s.lastResponse = nil
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Sender == chat.SenderAI {
			m := history[i]
			s.lastResponse = &m
			break
		}
	}
	s.state = chat.StateSessionActive
	return nil
}

// Submit sends user input to the assistant. The user message is persisted
// to the local store before the completion request is issued, so a crash
// mid-request cannot lose it; a persistence failure aborts the exchange
// loudly. The returned message is either the assistant reply or the
// synthetic system message describing the failure.
func (s *Service) Submit(ctx context.Context, text string) (chat.Message, error) {
	s.mu.Lock()

	if s.state == chat.StateAwaitingResponse {
		s.mu.Unlock()
		return chat.Message{}, errors.NewValidationError("request already in flight", "one exchange at a time per session")
	}

	// First input mints the session; a saved session is terminal, so input
	// after a save also starts fresh.
	if s.state == chat.StateNoSession || s.state == chat.StateSessionSaved {
		s.session = chat.NewSession(time.Now())
		s.messages = nil
		s.lastResponse = nil
		s.lastFailure = ""
	}

	userMsg := s.newMessageLocked(chat.SenderUser, text, nil, "")
	if err := s.store.PutMessage(ctx, userMsg); err != nil {
		// User-authored content must never be silently lost: surface the
		// storage failure instead of sending a request we cannot recover.
		s.state = chat.StateSessionActive
		s.mu.Unlock()
		return chat.Message{}, err
	}
	s.messages = append(s.messages, userMsg)
	if s.session.Summary == "" {
		s.session.Summary = chat.Summarize(text)
	}

	prompt := buildPrompt(s.messages, s.prefs, "")
	return s.exchange(ctx, prompt, RequestTypeChat)
}

// Regenerate asks for additional, non-duplicate suggestions using the full
// conversation history. The new assistant message gets a fresh message id;
// earlier messages and their suggestions are left in place.
func (s *Service) Regenerate(ctx context.Context) (chat.Message, error) {
	s.mu.Lock()

	if s.state != chat.StateResponseReceived && s.state != chat.StateResponseFailed {
		s.mu.Unlock()
		return chat.Message{}, errors.NewValidationError("nothing to regenerate", fmt.Sprintf("state %s", s.state))
	}

	var titles []string
	for _, m := range s.messages {
		if m.Sender != chat.SenderAI {
			continue
		}
		for _, r := range m.Suggestions {
			titles = append(titles, r.Title)
		}
	}

	prompt := buildPrompt(s.messages, s.prefs, regenerateInstruction(titles))
	return s.exchange(ctx, prompt, RequestTypeRegenerate)
}

// Retry re-issues the most recent user message verbatim. Both the message
// and the surrounding history are fetched from the local store rather than
// volatile memory, so a retry survives a restart.
func (s *Service) Retry(ctx context.Context) (chat.Message, error) {
	s.mu.Lock()

	if s.state != chat.StateResponseFailed && s.state != chat.StateResponseReceived {
		s.mu.Unlock()
		return chat.Message{}, errors.NewValidationError("nothing to retry", fmt.Sprintf("state %s", s.state))
	}
	sessionID := s.session.SessionID
	if sessionID == chat.NoSessionID {
		s.mu.Unlock()
		return chat.Message{}, errors.NewValidationError("no session to retry", "")
	}

	if _, err := s.store.LastUserMessage(ctx, sessionID); err != nil {
		s.mu.Unlock()
		return chat.Message{}, err
	}
	history, err := s.store.MessagesBySession(ctx, sessionID)
	if err != nil {
		s.mu.Unlock()
		return chat.Message{}, err
	}

	prompt := buildPrompt(history, s.prefs, "")
	return s.exchange(ctx, prompt, RequestTypeRetry)
}

// Save persists the session snapshot locally and makes a best-effort flush
// to the remote store. Local persistence failure is returned; remote
// failure is logged and left to the scheduler's next pass.
func (s *Service) Save(ctx context.Context) error {
	s.mu.Lock()

	if s.session.SessionID == chat.NoSessionID {
		s.mu.Unlock()
		return errors.NewValidationError("no session to save", "start a conversation first")
	}

	snapshot := s.session
	snapshot.Messages = make([]chat.Message, len(s.messages))
	copy(snapshot.Messages, s.messages)
	snapshot.Timestamp = time.Now()

	messages := make([]chat.Message, len(s.messages))
	copy(messages, s.messages)

	s.mu.Unlock()

	if err := s.store.PutSession(ctx, snapshot); err != nil {
		return err
	}

	if s.remote != nil {
		if err := s.remote.UpsertSession(ctx, snapshot); err != nil {
			s.logger.Warn("session flush failed, left for next sync pass",
				zap.String("session_id", snapshot.SessionID),
				zap.Error(err))
		}
		if len(messages) > 0 {
			if _, err := s.remote.BulkUpsertMessages(ctx, messages); err != nil {
				s.logger.Warn("message flush failed, left for next sync pass",
					zap.String("session_id", snapshot.SessionID),
					zap.Error(err))
			}
		}
	}

	s.mu.Lock()
	if s.session.SessionID == snapshot.SessionID {
		s.state = chat.StateSessionSaved
	}
	s.mu.Unlock()

	s.logger.Info("session saved", zap.String("session_id", snapshot.SessionID))
	return nil
}

// Shutdown performs the automatic save attempt on engine shutdown. It is
// best-effort under a short deadline and never blocks the host exiting:
// failures are logged, not returned.
func (s *Service) Shutdown(ctx context.Context) {
	s.mu.Lock()
	noSession := s.session.SessionID == chat.NoSessionID
	s.mu.Unlock()
	if noSession {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, shutdownSaveTimeout)
	defer cancel()

	if err := s.Save(ctx); err != nil {
		s.logger.Warn("shutdown save failed", zap.Error(err))
	}
}

// exchange issues a completion request and applies the outcome. Called
// with the mutex held; the mutex is released for the duration of the
// request so saves and reads are not blocked behind the network.
func (s *Service) exchange(ctx context.Context, prompt, requestType string) (chat.Message, error) {
	s.state = chat.StateAwaitingResponse
	s.mu.Unlock()

	reply, err := s.completions.Complete(ctx, outbound.CompletionRequest{
		Message:     prompt,
		RequestType: requestType,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		category := chat.FailureNetwork
		if errors.IsCode(err, errors.CodeTimeout) {
			category = chat.FailureTimeout
		}
		return s.failLocked(ctx, category, err), nil
	}

	if category, soft := ai.DetectSoftFailure(reply); soft {
		return s.failLocked(ctx, category, nil), nil
	}

	parsed, err := ai.ParseChatReply(reply)
	if err != nil {
		return s.failLocked(ctx, chat.FailureInvalidResponse, err), nil
	}

	aiMsg := s.newMessageLocked(chat.SenderAI, parsed.Message, parsed.Recipes, "")
	if err := s.store.PutMessage(ctx, aiMsg); err != nil {
		// The reply only lives in memory; losing it on restart is
		// acceptable, losing the exchange now is not.
		s.logger.Warn("assistant message not persisted", zap.Error(err))
	}
	s.messages = append(s.messages, aiMsg)
	s.lastResponse = &aiMsg
	s.lastFailure = ""
	s.state = chat.StateResponseReceived

	s.logger.Info("assistant reply received",
		zap.String("session_id", s.session.SessionID),
		zap.Int("suggestions", len(parsed.Recipes)))

	return aiMsg, nil
}

// failLocked appends the synthetic system message for a failed exchange.
// The message carries the failure category; UI copy is the caller's
// concern.
func (s *Service) failLocked(ctx context.Context, category chat.FailureCategory, cause error) chat.Message {
	sysMsg := s.newMessageLocked(chat.SenderSystem,
		fmt.Sprintf("assistant exchange failed: %s", category), nil, category)

	if err := s.store.PutMessage(ctx, sysMsg); err != nil {
		s.logger.Warn("system message not persisted", zap.Error(err))
	}
	s.messages = append(s.messages, sysMsg)
	s.lastFailure = category
	s.state = chat.StateResponseFailed

	s.logger.Warn("assistant exchange failed",
		zap.String("session_id", s.session.SessionID),
		zap.String("category", string(category)),
		zap.Error(cause))

	return sysMsg
}

// newMessageLocked mints a message in the current session. Caller holds
// the mutex.
func (s *Service) newMessageLocked(sender chat.Sender, text string, suggestions []recipe.Recipe, failure chat.FailureCategory) chat.Message {
	s.seq++
	return chat.Message{
		Seq:         s.seq,
		MessageID:   uuid.NewString(),
		SessionID:   s.session.SessionID,
		Timestamp:   time.Now(),
		Sender:      sender,
		Text:        text,
		Suggestions: suggestions,
		Failure:     failure,
	}
}
