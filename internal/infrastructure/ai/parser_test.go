package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/companion/internal/domain/chat"
	"github.com/alchemorsel/companion/pkg/errors"
)

func TestParseChatReplyValid(t *testing.T) {
	raw := `{"message":"Two ideas for tonight","recipes":[` +
		`{"recipeTitle":"Lentil Soup","ingredients":["lentils","onion"],"instructions":["simmer"]},` +
		`{"id":"r-9","recipeTitle":"Chickpea Curry","ingredients":[],"instructions":[]}]}`

	reply, err := ParseChatReply(raw)
	require.NoError(t, err)

	assert.Equal(t, "Two ideas for tonight", reply.Message)
	require.Len(t, reply.Recipes, 2)
	assert.Equal(t, "Lentil Soup", reply.Recipes[0].Title)
	assert.Equal(t, "lentils", reply.Recipes[0].Ingredients[0].Name)

	// Suggestions without ids get one minted; provided ids are kept.
	assert.NotEmpty(t, reply.Recipes[0].ID)
	assert.Equal(t, "r-9", reply.Recipes[1].ID)
}

func TestParseChatReplyEmptyRecipes(t *testing.T) {
	reply, err := ParseChatReply(`{"message":"I need more detail","recipes":[]}`)
	require.NoError(t, err)

	assert.Equal(t, "I need more detail", reply.Message)
	assert.Empty(t, reply.Recipes)
}

func TestParseChatReplyFailsClosed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"prose instead of JSON", "Sure! Here are some recipes you might like."},
		{"JSON embedded in prose", `Here you go: {"message":"hi","recipes":[]}`},
		{"missing message field", `{"recipes":[]}`},
		{"missing recipes field", `{"message":"hi"}`},
		{"empty input", ""},
		{"truncated JSON", `{"message":"hi","recipes":[{"recipeTitle":"Sou`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseChatReply(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeInvalidAIResponse))
		})
	}
}

func TestDetectSoftFailure(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		category chat.FailureCategory
		detected bool
	}{
		{"truncation marker", "I'm sorry, the response was cut off before finishing.", chat.FailureTruncated, true},
		{"truncation marker alternate", "The output was truncated.", chat.FailureTruncated, true},
		{"overload marker", "The model is overloaded, please try again later.", chat.FailureOverloaded, true},
		{"capacity marker", "We are over capacity right now.", chat.FailureOverloaded, true},
		{"case insensitive", "THE RESPONSE WAS CUT OFF", chat.FailureTruncated, true},
		{"clean reply", `{"message":"hi","recipes":[]}`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, detected := DetectSoftFailure(tt.raw)
			assert.Equal(t, tt.detected, detected)
			assert.Equal(t, tt.category, category)
		})
	}
}
