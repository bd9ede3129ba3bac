package gorm

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alchemorsel/companion/internal/domain/chat"
	"github.com/alchemorsel/companion/internal/domain/recipe"
	"github.com/alchemorsel/companion/internal/ports/outbound"
	"github.com/alchemorsel/companion/pkg/errors"
)

// LocalStore implements the local store interface over embedded SQLite.
// Writes are last-write-wins per key: Put is an unconditional upsert by the
// collection's natural key.
type LocalStore struct {
	db *gorm.DB
}

// NewLocalStore creates the local store over an opened database
func NewLocalStore(db *gorm.DB) outbound.LocalStore {
	return &LocalStore{db: db}
}

// PutRecipe upserts a recipe by id
func (s *LocalStore) PutRecipe(ctx context.Context, r recipe.Recipe) error {
	if err := r.Validate(); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(RecipeToModel(r))
	if result.Error != nil {
		return errors.NewStorageError("put recipe", result.Error)
	}
	return nil
}

// Recipes returns all locally stored recipes
func (s *LocalStore) Recipes(ctx context.Context) ([]recipe.Recipe, error) {
	var models []RecipeModel
	if err := s.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, errors.NewStorageError("list recipes", err)
	}
	out := make([]recipe.Recipe, 0, len(models))
	for i := range models {
		out = append(out, ModelToRecipe(&models[i]))
	}
	return out, nil
}

// DeleteRecipe removes a recipe; deleting an absent key is a no-op
func (s *LocalStore) DeleteRecipe(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&RecipeModel{}, "id = ?", id)
	if result.Error != nil {
		return errors.NewStorageError("delete recipe", result.Error)
	}
	return nil
}

// PutFavorite upserts a recipe into the favorites collection
func (s *LocalStore) PutFavorite(ctx context.Context, r recipe.Recipe) error {
	if err := r.Validate(); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(FavoriteToModel(r))
	if result.Error != nil {
		return errors.NewStorageError("put favorite", result.Error)
	}
	return nil
}

// Favorites returns all locally stored favorites
func (s *LocalStore) Favorites(ctx context.Context) ([]recipe.Recipe, error) {
	var models []FavoriteModel
	if err := s.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, errors.NewStorageError("list favorites", err)
	}
	out := make([]recipe.Recipe, 0, len(models))
	for i := range models {
		out = append(out, ModelToFavorite(&models[i]))
	}
	return out, nil
}

// DeleteFavorite removes a favorite; deleting an absent key is a no-op
func (s *LocalStore) DeleteFavorite(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&FavoriteModel{}, "id = ?", id)
	if result.Error != nil {
		return errors.NewStorageError("delete favorite", result.Error)
	}
	return nil
}

// PutShoppingList upserts a shopping list by its recipe id
func (s *LocalStore) PutShoppingList(ctx context.Context, l recipe.ShoppingList) error {
	if err := l.Validate(); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(ShoppingListToModel(l))
	if result.Error != nil {
		return errors.NewStorageError("put shopping list", result.Error)
	}
	return nil
}

// ShoppingLists returns all locally stored shopping lists
func (s *LocalStore) ShoppingLists(ctx context.Context) ([]recipe.ShoppingList, error) {
	var models []ShoppingListModel
	if err := s.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, errors.NewStorageError("list shopping lists", err)
	}
	out := make([]recipe.ShoppingList, 0, len(models))
	for i := range models {
		out = append(out, ModelToShoppingList(&models[i]))
	}
	return out, nil
}

// DeleteShoppingList removes a shopping list; deleting an absent key is a no-op
func (s *LocalStore) DeleteShoppingList(ctx context.Context, recipeID string) error {
	result := s.db.WithContext(ctx).Delete(&ShoppingListModel{}, "recipe_id = ?", recipeID)
	if result.Error != nil {
		return errors.NewStorageError("delete shopping list", result.Error)
	}
	return nil
}

// PutMessage upserts a chat message by its global message id. Messages
// carrying the no-session sentinel fail validation loudly.
func (s *LocalStore) PutMessage(ctx context.Context, m chat.Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}},
			UpdateAll: true,
		}).
		Create(MessageToModel(m))
	if result.Error != nil {
		return errors.NewStorageError("put message", result.Error)
	}
	return nil
}

// Messages returns all locally buffered chat messages
func (s *LocalStore) Messages(ctx context.Context) ([]chat.Message, error) {
	var models []ChatMessageModel
	if err := s.db.WithContext(ctx).Order("seq ASC").Find(&models).Error; err != nil {
		return nil, errors.NewStorageError("list messages", err)
	}
	out := make([]chat.Message, 0, len(models))
	for i := range models {
		out = append(out, ModelToMessage(&models[i]))
	}
	return out, nil
}

// MessagesBySession returns one session's messages in insertion order
func (s *LocalStore) MessagesBySession(ctx context.Context, sessionID string) ([]chat.Message, error) {
	var models []ChatMessageModel
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("seq ASC").
		Find(&models).Error
	if err != nil {
		return nil, errors.NewStorageError("list session messages", err)
	}
	out := make([]chat.Message, 0, len(models))
	for i := range models {
		out = append(out, ModelToMessage(&models[i]))
	}
	return out, nil
}

// LastUserMessage returns the newest user-sent message of a session,
// supporting retry across process restarts.
func (s *LocalStore) LastUserMessage(ctx context.Context, sessionID string) (chat.Message, error) {
	var model ChatMessageModel
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND sender = ?", sessionID, string(chat.SenderUser)).
		Order("seq DESC").
		First(&model).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Message{}, errors.NewNotFoundError("user message", sessionID)
		}
		return chat.Message{}, errors.NewStorageError("last user message", err)
	}
	return ModelToMessage(&model), nil
}

// DeleteMessage removes a message after confirmed remote persistence;
// deleting an absent key is a no-op
func (s *LocalStore) DeleteMessage(ctx context.Context, messageID string) error {
	result := s.db.WithContext(ctx).Delete(&ChatMessageModel{}, "message_id = ?", messageID)
	if result.Error != nil {
		return errors.NewStorageError("delete message", result.Error)
	}
	return nil
}

// PutSession upserts a chat session by session id
func (s *LocalStore) PutSession(ctx context.Context, sess chat.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(SessionToModel(sess))
	if result.Error != nil {
		return errors.NewStorageError("put session", result.Error)
	}
	return nil
}

// Sessions returns all locally buffered chat sessions
func (s *LocalStore) Sessions(ctx context.Context) ([]chat.Session, error) {
	var models []ChatSessionModel
	if err := s.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, errors.NewStorageError("list sessions", err)
	}
	out := make([]chat.Session, 0, len(models))
	for i := range models {
		out = append(out, ModelToSession(&models[i]))
	}
	return out, nil
}

// DeleteSession removes a session after confirmed remote persistence;
// deleting an absent key is a no-op
func (s *LocalStore) DeleteSession(ctx context.Context, sessionID string) error {
	result := s.db.WithContext(ctx).Delete(&ChatSessionModel{}, "session_id = ?", sessionID)
	if result.Error != nil {
		return errors.NewStorageError("delete session", result.Error)
	}
	return nil
}
