// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces the engine uses to reach the local store, the
// remote store, the AI service, and the connectivity signal.
package outbound

import (
	"context"

	"github.com/alchemorsel/companion/internal/domain/chat"
	"github.com/alchemorsel/companion/internal/domain/recipe"
)

// RecipeLocalStore is the local persistence surface for the mutable
// collections: recipes, favorites, and shopping lists. Put is an upsert by
// natural key; All returns an empty slice for an empty collection; Delete
// of an absent key is a no-op.
type RecipeLocalStore interface {
	PutRecipe(ctx context.Context, r recipe.Recipe) error
	Recipes(ctx context.Context) ([]recipe.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error

	PutFavorite(ctx context.Context, r recipe.Recipe) error
	Favorites(ctx context.Context) ([]recipe.Recipe, error)
	DeleteFavorite(ctx context.Context, id string) error

	PutShoppingList(ctx context.Context, l recipe.ShoppingList) error
	ShoppingLists(ctx context.Context) ([]recipe.ShoppingList, error)
	DeleteShoppingList(ctx context.Context, recipeID string) error
}

// ChatLocalStore is the local persistence surface for the append-only
// collections: chat messages and chat sessions.
type ChatLocalStore interface {
	PutMessage(ctx context.Context, m chat.Message) error
	Messages(ctx context.Context) ([]chat.Message, error)
	// MessagesBySession returns a session's messages ordered by their local
	// ordering key.
	MessagesBySession(ctx context.Context, sessionID string) ([]chat.Message, error)
	// LastUserMessage returns the most recent user-sent message of a
	// session, or a CodeNotFound error when the session has none.
	LastUserMessage(ctx context.Context, sessionID string) (chat.Message, error)
	DeleteMessage(ctx context.Context, messageID string) error

	PutSession(ctx context.Context, s chat.Session) error
	Sessions(ctx context.Context) ([]chat.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// LocalStore is the full local persistence surface. It is the single
// shared mutable resource between the chat engine and the sync scheduler;
// the contract is last-write-wins per key with no locking.
type LocalStore interface {
	RecipeLocalStore
	ChatLocalStore
}

// FailedItem reports one entity a bulk upsert could not persist.
type FailedItem struct {
	Key    string `json:"id"`
	Reason string `json:"error,omitempty"`
}

// BulkReport distinguishes per-item success and failure of a bulk upsert.
// Partial failure is never collapsed into total success.
type BulkReport struct {
	Succeeded []string     `json:"succeeded"`
	Failed    []FailedItem `json:"failed,omitempty"`
}

// RemoteStore is the authoritative server-side store, scoped to the
// authenticated identity resolved server-side. List degrades are the
// caller's responsibility; implementations surface CodeAuth, CodeNetwork,
// and CodeNotFound errors.
type RemoteStore interface {
	ListRecipes(ctx context.Context) ([]recipe.Recipe, error)
	UpsertRecipe(ctx context.Context, r recipe.Recipe) error
	BulkUpsertRecipes(ctx context.Context, rs []recipe.Recipe) (BulkReport, error)
	DeleteRecipe(ctx context.Context, id string) error

	ListFavorites(ctx context.Context) ([]recipe.Recipe, error)
	UpsertFavorite(ctx context.Context, r recipe.Recipe) error
	BulkUpsertFavorites(ctx context.Context, rs []recipe.Recipe) (BulkReport, error)
	DeleteFavorite(ctx context.Context, id string) error

	ListShoppingLists(ctx context.Context) ([]recipe.ShoppingList, error)
	UpsertShoppingList(ctx context.Context, l recipe.ShoppingList) error
	BulkUpsertShoppingLists(ctx context.Context, ls []recipe.ShoppingList) (BulkReport, error)
	DeleteShoppingList(ctx context.Context, recipeID string) error

	ListMessages(ctx context.Context) ([]chat.Message, error)
	BulkUpsertMessages(ctx context.Context, ms []chat.Message) (BulkReport, error)
	DeleteMessage(ctx context.Context, messageID string) error

	ListSessions(ctx context.Context) ([]chat.Session, error)
	UpsertSession(ctx context.Context, s chat.Session) error
	BulkUpsertSessions(ctx context.Context, ss []chat.Session) (BulkReport, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// TokenSource supplies the bearer token attached to remote requests.
// Implementations return a CodeAuth error when no valid identity exists.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}
