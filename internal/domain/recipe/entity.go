// Package recipe contains the core domain model for recipes, favorites,
// and shopping lists as synced between the local and remote stores.
package recipe

import (
	"encoding/json"
	"time"

	"github.com/alchemorsel/companion/pkg/errors"
)

// Ingredient represents a single ingredient line. Quantity and Unit are
// optional free-form text.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
	Unit     string `json:"unit,omitempty"`
}

// UnmarshalJSON accepts either a structured ingredient object or a bare
// string, which normalizes to a name-only ingredient. Both shapes occur in
// stored recipes and in model output.
func (i *Ingredient) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*i = Ingredient{Name: name}
		return nil
	}

	type ingredient Ingredient
	var obj ingredient
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*i = Ingredient(obj)
	return nil
}

// Recipe represents a recipe document. Recipes are immutable once saved
// except for full-document overwrite; uniqueness is by ID within a user's
// scope. The same shape is used for the favorites collection.
type Recipe struct {
	ID           string       `json:"id"`
	Title        string       `json:"recipeTitle"`
	Description  string       `json:"description,omitempty"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	UserEmail    string       `json:"userEmail,omitempty"`
	Rating       float64      `json:"rating,omitempty"`
	Protein      float64      `json:"protein,omitempty"`
	CreatedAt    time.Time    `json:"createdAt,omitempty"`
	UpdatedAt    time.Time    `json:"updatedAt,omitempty"`
}

// Key returns the merge key for reconciliation.
func (r Recipe) Key() string {
	return r.ID
}

// Validate checks the required keys before persistence.
func (r Recipe) Validate() error {
	if r.ID == "" {
		return errors.NewValidationError("recipe missing id", "id is the natural key and must be set before persistence")
	}
	if r.Title == "" {
		return errors.NewValidationError("recipe missing title", "recipeTitle is required")
	}
	return nil
}
