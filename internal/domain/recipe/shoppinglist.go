package recipe

import "github.com/alchemorsel/companion/pkg/errors"

// ShoppingList is derived deterministically from a recipe's ingredient
// list. One list per recipe per user; regenerable, not independently
// authored.
type ShoppingList struct {
	RecipeID    string       `json:"recipeId"`
	RecipeTitle string       `json:"recipeTitle"`
	Items       []Ingredient `json:"items"`
	TotalItems  int          `json:"totalItems"`
}

// Key returns the merge key for reconciliation.
func (l ShoppingList) Key() string {
	return l.RecipeID
}

// Validate checks the required keys before persistence.
func (l ShoppingList) Validate() error {
	if l.RecipeID == "" {
		return errors.NewValidationError("shopping list missing recipe id", "recipeId is required")
	}
	return nil
}

// BuildShoppingList derives the shopping list for a recipe. The derivation
// is deterministic: same recipe in, same list out.
func BuildShoppingList(r Recipe) ShoppingList {
	items := make([]Ingredient, len(r.Ingredients))
	copy(items, r.Ingredients)

	return ShoppingList{
		RecipeID:    r.ID,
		RecipeTitle: r.Title,
		Items:       items,
		TotalItems:  len(items),
	}
}
