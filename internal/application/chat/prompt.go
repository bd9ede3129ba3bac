package chat

import (
	"fmt"
	"strings"

	"github.com/alchemorsel/companion/internal/domain/chat"
)

// Request type labels sent with each completion request.
const (
	RequestTypeChat       = "chat"
	RequestTypeRegenerate = "regenerate"
	RequestTypeRetry      = "retry"
)

// Preferences is the optional user preference snapshot appended to the
// outgoing prompt.
type Preferences struct {
	DietaryRestrictions []string
	DislikedIngredients []string
}

const systemInstruction = "You are a cooking assistant that suggests recipes. " +
	`Respond with a single JSON object of the form ` +
	`{"message": string, "recipes": [{"recipeTitle": string, "description": string, ` +
	`"ingredients": [{"name": string, "quantity": string, "unit": string}], "instructions": [string]}]}. ` +
	"Do not wrap the JSON in prose or markdown."

// buildPrompt constructs the outgoing prompt from the conversation
// history, the optional preference block, and an optional trailing
// instruction. System messages describe failed exchanges and are not part
// of the conversation the model sees.
func buildPrompt(history []chat.Message, prefs *Preferences, extra string) string {
	var b strings.Builder
	b.WriteString(systemInstruction)
	b.WriteString("\n\n")

	if prefs != nil {
		if block := prefs.promptBlock(); block != "" {
			b.WriteString(block)
			b.WriteString("\n\n")
		}
	}

	b.WriteString("Conversation so far:\n")
	for _, m := range history {
		switch m.Sender {
		case chat.SenderUser:
			fmt.Fprintf(&b, "User: %s\n", m.Text)
		case chat.SenderAI:
			fmt.Fprintf(&b, "Assistant: %s\n", m.Text)
		}
	}

	if extra != "" {
		b.WriteString("\n")
		b.WriteString(extra)
		b.WriteString("\n")
	}

	return b.String()
}

func (p *Preferences) promptBlock() string {
	var parts []string
	if len(p.DietaryRestrictions) > 0 {
		parts = append(parts, "Dietary restrictions: "+strings.Join(p.DietaryRestrictions, ", ")+".")
	}
	if len(p.DislikedIngredients) > 0 {
		parts = append(parts, "Avoid these ingredients: "+strings.Join(p.DislikedIngredients, ", ")+".")
	}
	if len(parts) == 0 {
		return ""
	}
	return "User preferences. " + strings.Join(parts, " ")
}

// regenerateInstruction asks for additional suggestions distinct from the
// ones already shown.
func regenerateInstruction(excludeTitles []string) string {
	if len(excludeTitles) == 0 {
		return "Suggest additional recipes."
	}
	return "Suggest additional recipes. Do not repeat these already suggested recipes: " +
		strings.Join(excludeTitles, ", ") + "."
}
