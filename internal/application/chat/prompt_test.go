package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alchemorsel/companion/internal/domain/chat"
)

func TestBuildPromptIncludesHistory(t *testing.T) {
	history := []chat.Message{
		{Sender: chat.SenderUser, Text: "something with lentils"},
		{Sender: chat.SenderAI, Text: "How about a lentil soup?"},
	}

	prompt := buildPrompt(history, nil, "")

	assert.Contains(t, prompt, "User: something with lentils")
	assert.Contains(t, prompt, "Assistant: How about a lentil soup?")
	assert.Contains(t, prompt, systemInstruction)
}

func TestBuildPromptSkipsSystemMessages(t *testing.T) {
	history := []chat.Message{
		{Sender: chat.SenderUser, Text: "dinner ideas"},
		{Sender: chat.SenderSystem, Text: "assistant exchange failed: timeout"},
	}

	prompt := buildPrompt(history, nil, "")

	assert.Contains(t, prompt, "dinner ideas")
	assert.NotContains(t, prompt, "exchange failed")
}

func TestBuildPromptIncludesPreferences(t *testing.T) {
	prefs := &Preferences{
		DietaryRestrictions: []string{"vegetarian"},
		DislikedIngredients: []string{"cilantro", "olives"},
	}

	prompt := buildPrompt(nil, prefs, "")

	assert.Contains(t, prompt, "Dietary restrictions: vegetarian.")
	assert.Contains(t, prompt, "Avoid these ingredients: cilantro, olives.")
}

func TestBuildPromptOmitsEmptyPreferenceBlock(t *testing.T) {
	prompt := buildPrompt(nil, &Preferences{}, "")
	assert.NotContains(t, prompt, "User preferences")
}

func TestBuildPromptAppendsExtraInstruction(t *testing.T) {
	prompt := buildPrompt(nil, nil, "Suggest additional recipes.")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(prompt), "Suggest additional recipes."))
}

func TestRegenerateInstruction(t *testing.T) {
	assert.Equal(t, "Suggest additional recipes.", regenerateInstruction(nil))

	withTitles := regenerateInstruction([]string{"Lentil Soup", "Chickpea Curry"})
	assert.Contains(t, withTitles, "Lentil Soup, Chickpea Curry")
	assert.Contains(t, withTitles, "Do not repeat")
}
