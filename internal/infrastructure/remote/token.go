package remote

import (
	"context"
	"sync"

	"github.com/alchemorsel/companion/pkg/errors"
)

// StaticTokenSource holds a bearer token issued by the authentication
// layer, which is an external collaborator. An empty token means no valid
// identity and surfaces CodeAuth without touching the network.
type StaticTokenSource struct {
	mu    sync.RWMutex
	token string
}

// NewStaticTokenSource creates a token source with an initial token
func NewStaticTokenSource(token string) *StaticTokenSource {
	return &StaticTokenSource{token: token}
}

// SetToken replaces the token after re-authentication
func (s *StaticTokenSource) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Token returns the current token, or a CodeAuth error when none is set
func (s *StaticTokenSource) Token(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", errors.NewAuthError("no session token")
	}
	return s.token, nil
}
