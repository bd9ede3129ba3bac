// Package testutils provides test data factories and a fake remote store
// server shared across test suites.
package testutils

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/alchemorsel/companion/internal/domain/chat"
	"github.com/alchemorsel/companion/internal/domain/recipe"
)

// RecipeFactory provides methods to create test recipes
type RecipeFactory struct {
	faker *gofakeit.Faker
}

// NewRecipeFactory creates a new recipe factory with seeded faker
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{
		faker: gofakeit.New(seed),
	}
}

// Recipe creates a valid recipe with random content
func (f *RecipeFactory) Recipe() recipe.Recipe {
	now := time.Now().UTC().Truncate(time.Second)
	ingredients := make([]recipe.Ingredient, 3)
	for i := range ingredients {
		ingredients[i] = recipe.Ingredient{
			Name:     f.faker.Vegetable(),
			Quantity: fmt.Sprintf("%d", f.faker.Number(1, 500)),
			Unit:     "g",
		}
	}

	return recipe.Recipe{
		ID:          uuid.NewString(),
		Title:       f.faker.Dinner(),
		Description: f.faker.Sentence(8),
		Ingredients: ingredients,
		Instructions: []string{
			f.faker.Sentence(6),
			f.faker.Sentence(6),
		},
		UserEmail: f.faker.Email(),
		Rating:    float64(f.faker.Number(1, 5)),
		Protein:   float64(f.faker.Number(5, 60)),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RecipeWithID creates a valid recipe with a fixed id
func (f *RecipeFactory) RecipeWithID(id string) recipe.Recipe {
	r := f.Recipe()
	r.ID = id
	return r
}

// ShoppingList derives a shopping list from a fresh recipe
func (f *RecipeFactory) ShoppingList() recipe.ShoppingList {
	return recipe.BuildShoppingList(f.Recipe())
}

// ChatFactory provides methods to create test chat entities
type ChatFactory struct {
	faker *gofakeit.Faker
	seq   int64
}

// NewChatFactory creates a new chat factory with seeded faker
func NewChatFactory(seed int64) *ChatFactory {
	return &ChatFactory{
		faker: gofakeit.New(seed),
		seq:   time.Now().UnixMilli(),
	}
}

// Message creates a valid message in the given session
func (f *ChatFactory) Message(sessionID string, sender chat.Sender) chat.Message {
	f.seq++
	return chat.Message{
		Seq:       f.seq,
		MessageID: uuid.NewString(),
		SessionID: sessionID,
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Sender:    sender,
		Text:      f.faker.Sentence(10),
	}
}

// Session creates a session with a summary but no message snapshot
func (f *ChatFactory) Session() chat.Session {
	s := chat.NewSession(time.Now().UTC().Truncate(time.Second))
	s.Summary = chat.Summarize(f.faker.Sentence(12))
	return s
}
