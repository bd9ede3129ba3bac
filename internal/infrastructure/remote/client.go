// Package remote provides the HTTP client for the authoritative
// server-side document store. Access is scoped to the authenticated
// identity, which the server resolves itself; the client only attaches a
// bearer token.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/companion/internal/domain/chat"
	"github.com/alchemorsel/companion/internal/domain/recipe"
	"github.com/alchemorsel/companion/internal/ports/outbound"
	"github.com/alchemorsel/companion/pkg/errors"
)

// Resource names the server-side collections.
type Resource string

const (
	ResourceRecipes       Resource = "recipes"
	ResourceFavorites     Resource = "favorites"
	ResourceShoppingLists Resource = "shoppingLists"
	ResourceChatMessages  Resource = "chatMessages"
	ResourceChatSessions  Resource = "chatSessions"
)

// Config holds remote client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements the remote store over the per-resource HTTP contract:
// GET lists owned entities, POST upserts one entity or {items: [...]} for
// bulk, DELETE ?id=<key> removes one entity.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     outbound.TokenSource
	logger     *zap.Logger
}

// NewClient creates a new remote store client
func NewClient(cfg Config, tokens outbound.TokenSource, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		logger:     logger.Named("remote"),
	}
}

var _ outbound.RemoteStore = (*Client)(nil)

// bulkRequest is the POST body for bulk upserts.
type bulkRequest struct {
	Items interface{} `json:"items"`
}

func (c *Client) do(ctx context.Context, method string, res Resource, query url.Values, body interface{}) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s", c.baseURL, res)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.NewValidationError("entity not serializable", err.Error())
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, errors.NewNetworkError("build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError(fmt.Sprintf("%s %s", method, res), err)
	}
	return resp, nil
}

// checkStatus maps response codes onto the error taxonomy. The caller owns
// the response body on a nil return.
func checkStatus(resp *http.Response, res Resource, key string) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		resp.Body.Close()
		return errors.NewAuthError(string(res))
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return errors.NewNotFoundError(string(res), key)
	default:
		resp.Body.Close()
		return errors.NewNetworkError(string(res), fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}

// list fetches all owned entities of a resource.
func list[E any](ctx context.Context, c *Client, res Resource) ([]E, error) {
	resp, err := c.do(ctx, http.MethodGet, res, nil, nil)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp, res, ""); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out []E
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.NewNetworkError(string(res), fmt.Errorf("decode response: %w", err))
	}
	return out, nil
}

// upsert writes one entity; the server finds by natural key and owner then
// inserts or updates, never duplicating an owned entity.
func upsert(ctx context.Context, c *Client, res Resource, key string, entity interface{}) error {
	resp, err := c.do(ctx, http.MethodPost, res, nil, entity)
	if err != nil {
		return err
	}
	if err := checkStatus(resp, res, key); err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// bulkUpsert writes a batch and reports per-item outcomes. A bare 2xx with
// no report body means the server applied the whole batch.
func bulkUpsert[E interface{ Key() string }](ctx context.Context, c *Client, res Resource, items []E) (outbound.BulkReport, error) {
	if len(items) == 0 {
		return outbound.BulkReport{}, nil
	}

	resp, err := c.do(ctx, http.MethodPost, res, nil, bulkRequest{Items: items})
	if err != nil {
		return outbound.BulkReport{}, err
	}
	if err := checkStatus(resp, res, ""); err != nil {
		return outbound.BulkReport{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return outbound.BulkReport{}, errors.NewNetworkError(string(res), err)
	}

	var report outbound.BulkReport
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &report); err == nil && (len(report.Succeeded) > 0 || len(report.Failed) > 0) {
			return report, nil
		}
	}

	// No per-item report: treat the batch as atomically applied.
	for _, item := range items {
		report.Succeeded = append(report.Succeeded, item.Key())
	}
	report.Failed = nil
	return report, nil
}

// remove deletes one entity by key; idempotent, an absent key reports
// CodeNotFound rather than crashing.
func remove(ctx context.Context, c *Client, res Resource, key string) error {
	query := url.Values{"id": []string{key}}
	resp, err := c.do(ctx, http.MethodDelete, res, query, nil)
	if err != nil {
		return err
	}
	if err := checkStatus(resp, res, key); err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// ListRecipes returns the caller's recipes
func (c *Client) ListRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	return list[recipe.Recipe](ctx, c, ResourceRecipes)
}

// UpsertRecipe writes one recipe
func (c *Client) UpsertRecipe(ctx context.Context, r recipe.Recipe) error {
	return upsert(ctx, c, ResourceRecipes, r.ID, r)
}

// BulkUpsertRecipes writes a recipe batch
func (c *Client) BulkUpsertRecipes(ctx context.Context, rs []recipe.Recipe) (outbound.BulkReport, error) {
	return bulkUpsert(ctx, c, ResourceRecipes, rs)
}

// DeleteRecipe removes one recipe
func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	return remove(ctx, c, ResourceRecipes, id)
}

// ListFavorites returns the caller's favorites
func (c *Client) ListFavorites(ctx context.Context) ([]recipe.Recipe, error) {
	return list[recipe.Recipe](ctx, c, ResourceFavorites)
}

// UpsertFavorite writes one favorite
func (c *Client) UpsertFavorite(ctx context.Context, r recipe.Recipe) error {
	return upsert(ctx, c, ResourceFavorites, r.ID, r)
}

// BulkUpsertFavorites writes a favorites batch
func (c *Client) BulkUpsertFavorites(ctx context.Context, rs []recipe.Recipe) (outbound.BulkReport, error) {
	return bulkUpsert(ctx, c, ResourceFavorites, rs)
}

// DeleteFavorite removes one favorite
func (c *Client) DeleteFavorite(ctx context.Context, id string) error {
	return remove(ctx, c, ResourceFavorites, id)
}

// ListShoppingLists returns the caller's shopping lists
func (c *Client) ListShoppingLists(ctx context.Context) ([]recipe.ShoppingList, error) {
	return list[recipe.ShoppingList](ctx, c, ResourceShoppingLists)
}

// UpsertShoppingList writes one shopping list
func (c *Client) UpsertShoppingList(ctx context.Context, l recipe.ShoppingList) error {
	return upsert(ctx, c, ResourceShoppingLists, l.RecipeID, l)
}

// BulkUpsertShoppingLists writes a shopping list batch
func (c *Client) BulkUpsertShoppingLists(ctx context.Context, ls []recipe.ShoppingList) (outbound.BulkReport, error) {
	return bulkUpsert(ctx, c, ResourceShoppingLists, ls)
}

// DeleteShoppingList removes one shopping list
func (c *Client) DeleteShoppingList(ctx context.Context, recipeID string) error {
	return remove(ctx, c, ResourceShoppingLists, recipeID)
}

// ListMessages returns the caller's archived chat messages
func (c *Client) ListMessages(ctx context.Context) ([]chat.Message, error) {
	return list[chat.Message](ctx, c, ResourceChatMessages)
}

// BulkUpsertMessages writes a message batch
func (c *Client) BulkUpsertMessages(ctx context.Context, ms []chat.Message) (outbound.BulkReport, error) {
	return bulkUpsert(ctx, c, ResourceChatMessages, ms)
}

// DeleteMessage removes one message
func (c *Client) DeleteMessage(ctx context.Context, messageID string) error {
	return remove(ctx, c, ResourceChatMessages, messageID)
}

// ListSessions returns the caller's archived chat sessions
func (c *Client) ListSessions(ctx context.Context) ([]chat.Session, error) {
	return list[chat.Session](ctx, c, ResourceChatSessions)
}

// UpsertSession writes one session
func (c *Client) UpsertSession(ctx context.Context, s chat.Session) error {
	return upsert(ctx, c, ResourceChatSessions, s.SessionID, s)
}

// BulkUpsertSessions writes a session batch
func (c *Client) BulkUpsertSessions(ctx context.Context, ss []chat.Session) (outbound.BulkReport, error) {
	return bulkUpsert(ctx, c, ResourceChatSessions, ss)
}

// DeleteSession removes one session
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return remove(ctx, c, ResourceChatSessions, sessionID)
}
