// Package gorm provides GORM model definitions and the local store
// implementation backed by embedded SQLite.
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alchemorsel/companion/internal/domain/chat"
	"github.com/alchemorsel/companion/internal/domain/recipe"
)

// RecipeModel represents the recipes collection.
type RecipeModel struct {
	ID           string          `gorm:"type:char(36);primaryKey"`
	Title        string          `gorm:"type:varchar(255);not null"`
	Description  string          `gorm:"type:text"`
	Ingredients  IngredientsJSON `gorm:"type:json"`
	Instructions StringSlice     `gorm:"type:json"`
	UserEmail    string          `gorm:"type:varchar(255);index"`
	Rating       float64         `gorm:"default:0"`
	Protein      float64         `gorm:"default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the collection name
func (RecipeModel) TableName() string {
	return "recipes"
}

// FavoriteModel represents the favorites collection. A favorite is a recipe
// stored under the same key in a separate collection, not a distinct
// entity.
type FavoriteModel struct {
	ID           string          `gorm:"type:char(36);primaryKey"`
	Title        string          `gorm:"type:varchar(255);not null"`
	Description  string          `gorm:"type:text"`
	Ingredients  IngredientsJSON `gorm:"type:json"`
	Instructions StringSlice     `gorm:"type:json"`
	UserEmail    string          `gorm:"type:varchar(255);index"`
	Rating       float64         `gorm:"default:0"`
	Protein      float64         `gorm:"default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the collection name
func (FavoriteModel) TableName() string {
	return "favorites"
}

// ShoppingListModel represents the shopping_lists collection, keyed by the
// recipe the list was derived from.
type ShoppingListModel struct {
	RecipeID    string          `gorm:"type:char(36);primaryKey"`
	RecipeTitle string          `gorm:"type:varchar(255)"`
	Items       IngredientsJSON `gorm:"type:json"`
	TotalItems  int             `gorm:"default:0"`
}

// TableName returns the collection name
func (ShoppingListModel) TableName() string {
	return "shopping_lists"
}

// ChatMessageModel represents the chat_messages collection. Seq is the
// local ordering key; MessageID is the global natural key used for remote
// upserts.
type ChatMessageModel struct {
	Seq         int64       `gorm:"primaryKey;autoIncrement"`
	MessageID   string      `gorm:"type:char(36);uniqueIndex;not null"`
	SessionID   string      `gorm:"type:char(36);index;not null"`
	Timestamp   time.Time   `gorm:"index"`
	Sender      string      `gorm:"type:varchar(10);not null"`
	Text        string      `gorm:"type:text"`
	Suggestions RecipesJSON `gorm:"type:json"`
	Failure     string      `gorm:"type:varchar(20)"`
}

// TableName returns the collection name
func (ChatMessageModel) TableName() string {
	return "chat_messages"
}

// ChatSessionModel represents the chat_sessions collection.
type ChatSessionModel struct {
	SessionID string       `gorm:"type:char(36);primaryKey"`
	Messages  MessagesJSON `gorm:"type:json"`
	CreatedAt time.Time
	Summary   string    `gorm:"type:varchar(255)"`
	Timestamp time.Time `gorm:"index"`
}

// TableName returns the collection name
func (ChatSessionModel) TableName() string {
	return "chat_sessions"
}

// IngredientsJSON stores an ingredient list as a JSON column.
type IngredientsJSON []recipe.Ingredient

// Scan implements the sql.Scanner interface
func (j *IngredientsJSON) Scan(value interface{}) error {
	return scanJSON(value, j)
}

// Value implements the driver.Valuer interface
func (j IngredientsJSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

// StringSlice stores a string list as a JSON column.
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// RecipesJSON stores recipe suggestions as a JSON column.
type RecipesJSON []recipe.Recipe

// Scan implements the sql.Scanner interface
func (j *RecipesJSON) Scan(value interface{}) error {
	return scanJSON(value, j)
}

// Value implements the driver.Valuer interface
func (j RecipesJSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

// MessagesJSON stores a session's message snapshot as a JSON column.
type MessagesJSON []chat.Message

// Scan implements the sql.Scanner interface
func (j *MessagesJSON) Scan(value interface{}) error {
	return scanJSON(value, j)
}

// Value implements the driver.Valuer interface
func (j MessagesJSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", value)
	}
}
