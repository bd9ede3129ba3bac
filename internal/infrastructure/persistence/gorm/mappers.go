package gorm

import (
	"github.com/alchemorsel/companion/internal/domain/chat"
	"github.com/alchemorsel/companion/internal/domain/recipe"
)

// RecipeToModel converts a domain recipe to its GORM model
func RecipeToModel(r recipe.Recipe) *RecipeModel {
	return &RecipeModel{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Ingredients:  IngredientsJSON(r.Ingredients),
		Instructions: StringSlice(r.Instructions),
		UserEmail:    r.UserEmail,
		Rating:       r.Rating,
		Protein:      r.Protein,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ModelToRecipe converts a GORM model to a domain recipe
func ModelToRecipe(m *RecipeModel) recipe.Recipe {
	return recipe.Recipe{
		ID:           m.ID,
		Title:        m.Title,
		Description:  m.Description,
		Ingredients:  []recipe.Ingredient(m.Ingredients),
		Instructions: []string(m.Instructions),
		UserEmail:    m.UserEmail,
		Rating:       m.Rating,
		Protein:      m.Protein,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FavoriteToModel converts a domain recipe to the favorites collection model
func FavoriteToModel(r recipe.Recipe) *FavoriteModel {
	return &FavoriteModel{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Ingredients:  IngredientsJSON(r.Ingredients),
		Instructions: StringSlice(r.Instructions),
		UserEmail:    r.UserEmail,
		Rating:       r.Rating,
		Protein:      r.Protein,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ModelToFavorite converts a favorites model to a domain recipe
func ModelToFavorite(m *FavoriteModel) recipe.Recipe {
	return recipe.Recipe{
		ID:           m.ID,
		Title:        m.Title,
		Description:  m.Description,
		Ingredients:  []recipe.Ingredient(m.Ingredients),
		Instructions: []string(m.Instructions),
		UserEmail:    m.UserEmail,
		Rating:       m.Rating,
		Protein:      m.Protein,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ShoppingListToModel converts a domain shopping list to its GORM model
func ShoppingListToModel(l recipe.ShoppingList) *ShoppingListModel {
	return &ShoppingListModel{
		RecipeID:    l.RecipeID,
		RecipeTitle: l.RecipeTitle,
		Items:       IngredientsJSON(l.Items),
		TotalItems:  l.TotalItems,
	}
}

// ModelToShoppingList converts a GORM model to a domain shopping list
func ModelToShoppingList(m *ShoppingListModel) recipe.ShoppingList {
	return recipe.ShoppingList{
		RecipeID:    m.RecipeID,
		RecipeTitle: m.RecipeTitle,
		Items:       []recipe.Ingredient(m.Items),
		TotalItems:  m.TotalItems,
	}
}

// MessageToModel converts a domain message to its GORM model
func MessageToModel(m chat.Message) *ChatMessageModel {
	return &ChatMessageModel{
		Seq:         m.Seq,
		MessageID:   m.MessageID,
		SessionID:   m.SessionID,
		Timestamp:   m.Timestamp,
		Sender:      string(m.Sender),
		Text:        m.Text,
		Suggestions: RecipesJSON(m.Suggestions),
		Failure:     string(m.Failure),
	}
}

// ModelToMessage converts a GORM model to a domain message
func ModelToMessage(m *ChatMessageModel) chat.Message {
	return chat.Message{
		Seq:         m.Seq,
		MessageID:   m.MessageID,
		SessionID:   m.SessionID,
		Timestamp:   m.Timestamp,
		Sender:      chat.Sender(m.Sender),
		Text:        m.Text,
		Suggestions: []recipe.Recipe(m.Suggestions),
		Failure:     chat.FailureCategory(m.Failure),
	}
}

// SessionToModel converts a domain session to its GORM model
func SessionToModel(s chat.Session) *ChatSessionModel {
	return &ChatSessionModel{
		SessionID: s.SessionID,
		Messages:  MessagesJSON(s.Messages),
		CreatedAt: s.CreatedAt,
		Summary:   s.Summary,
		Timestamp: s.Timestamp,
	}
}

// ModelToSession converts a GORM model to a domain session
func ModelToSession(m *ChatSessionModel) chat.Session {
	return chat.Session{
		SessionID: m.SessionID,
		Messages:  []chat.Message(m.Messages),
		CreatedAt: m.CreatedAt,
		Summary:   m.Summary,
		Timestamp: m.Timestamp,
	}
}
