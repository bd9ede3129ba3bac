package recipe_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/companion/internal/domain/recipe"
	"github.com/alchemorsel/companion/pkg/errors"
)

func TestRecipeValidate(t *testing.T) {
	tests := []struct {
		name    string
		recipe  recipe.Recipe
		wantErr bool
	}{
		{
			name:   "valid recipe",
			recipe: recipe.Recipe{ID: "r-1", Title: "Lentil Soup"},
		},
		{
			name:    "missing id",
			recipe:  recipe.Recipe{Title: "Lentil Soup"},
			wantErr: true,
		},
		{
			name:    "missing title",
			recipe:  recipe.Recipe{ID: "r-1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.recipe.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.CodeValidation))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRecipeKey(t *testing.T) {
	r := recipe.Recipe{ID: "r-42", Title: "Stew"}
	assert.Equal(t, "r-42", r.Key())
}

func TestIngredientUnmarshalObject(t *testing.T) {
	var ing recipe.Ingredient
	err := json.Unmarshal([]byte(`{"name":"flour","quantity":"2","unit":"cups"}`), &ing)
	require.NoError(t, err)

	assert.Equal(t, "flour", ing.Name)
	assert.Equal(t, "2", ing.Quantity)
	assert.Equal(t, "cups", ing.Unit)
}

func TestIngredientUnmarshalBareString(t *testing.T) {
	var ing recipe.Ingredient
	err := json.Unmarshal([]byte(`"a pinch of salt"`), &ing)
	require.NoError(t, err)

	assert.Equal(t, "a pinch of salt", ing.Name)
	assert.Empty(t, ing.Quantity)
	assert.Empty(t, ing.Unit)
}

func TestIngredientUnmarshalInvalidShape(t *testing.T) {
	var ing recipe.Ingredient
	assert.Error(t, json.Unmarshal([]byte(`42`), &ing))
}

func TestRecipeUnmarshalMixedIngredients(t *testing.T) {
	raw := `{"id":"r-1","recipeTitle":"Bread","ingredients":["yeast",{"name":"flour","quantity":"500","unit":"g"}],"instructions":["mix","bake"]}`

	var r recipe.Recipe
	require.NoError(t, json.Unmarshal([]byte(raw), &r))

	require.Len(t, r.Ingredients, 2)
	assert.Equal(t, "yeast", r.Ingredients[0].Name)
	assert.Equal(t, "flour", r.Ingredients[1].Name)
	assert.Equal(t, "500", r.Ingredients[1].Quantity)
}

func TestBuildShoppingList(t *testing.T) {
	r := recipe.Recipe{
		ID:    "r-1",
		Title: "Lentil Soup",
		Ingredients: []recipe.Ingredient{
			{Name: "lentils", Quantity: "200", Unit: "g"},
			{Name: "onion", Quantity: "1"},
		},
	}

	list := recipe.BuildShoppingList(r)

	assert.Equal(t, "r-1", list.RecipeID)
	assert.Equal(t, "Lentil Soup", list.RecipeTitle)
	assert.Equal(t, 2, list.TotalItems)
	assert.Equal(t, r.Ingredients, list.Items)
	assert.Equal(t, "r-1", list.Key())
}

func TestBuildShoppingListDeterministic(t *testing.T) {
	r := recipe.Recipe{
		ID:          "r-1",
		Title:       "Stew",
		Ingredients: []recipe.Ingredient{{Name: "beef"}},
	}

	assert.Equal(t, recipe.BuildShoppingList(r), recipe.BuildShoppingList(r))
}

func TestBuildShoppingListCopiesItems(t *testing.T) {
	r := recipe.Recipe{
		ID:          "r-1",
		Title:       "Stew",
		Ingredients: []recipe.Ingredient{{Name: "beef"}},
	}

	list := recipe.BuildShoppingList(r)
	r.Ingredients[0].Name = "pork"

	assert.Equal(t, "beef", list.Items[0].Name)
}

func TestShoppingListValidate(t *testing.T) {
	assert.NoError(t, recipe.ShoppingList{RecipeID: "r-1"}.Validate())

	err := recipe.ShoppingList{}.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}
