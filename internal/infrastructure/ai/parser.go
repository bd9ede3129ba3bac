package ai

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/alchemorsel/companion/internal/domain/chat"
	"github.com/alchemorsel/companion/internal/domain/recipe"
	"github.com/alchemorsel/companion/pkg/errors"
)

// ChatReply is the validated structure of a model reply.
type ChatReply struct {
	Message string
	Recipes []recipe.Recipe
}

// softFailureMarkers maps recognized phrases in the raw reply to recovery
// categories. Markers are checked before JSON parsing so the model's own
// failure prose never reaches the strict parser.
var softFailureMarkers = []struct {
	marker   string
	category chat.FailureCategory
}{
	{"response was cut off", chat.FailureTruncated},
	{"output was truncated", chat.FailureTruncated},
	{"ran out of space", chat.FailureTruncated},
	{"model is overloaded", chat.FailureOverloaded},
	{"currently overloaded", chat.FailureOverloaded},
	{"over capacity", chat.FailureOverloaded},
}

// DetectSoftFailure reports whether the raw reply carries a recognized
// recoverable failure marker.
func DetectSoftFailure(raw string) (chat.FailureCategory, bool) {
	lowered := strings.ToLower(raw)
	for _, m := range softFailureMarkers {
		if strings.Contains(lowered, m.marker) {
			return m.category, true
		}
	}
	return "", false
}

// ParseChatReply validates a raw model reply against the expected schema
// {message: string, recipes: Recipe[]} and fails closed: any syntax error
// or missing required field is a CodeInvalidAIResponse error. No repair or
// extraction of JSON embedded in prose is attempted.
func ParseChatReply(raw string) (ChatReply, error) {
	var decoded struct {
		Message *string          `json:"message"`
		Recipes *[]recipe.Recipe `json:"recipes"`
	}

	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return ChatReply{}, errors.NewInvalidAIResponse("reply is not a JSON object", err)
	}
	if decoded.Message == nil {
		return ChatReply{}, errors.NewInvalidAIResponse("reply missing required field: message", nil)
	}
	if decoded.Recipes == nil {
		return ChatReply{}, errors.NewInvalidAIResponse("reply missing required field: recipes", nil)
	}

	recipes := *decoded.Recipes
	for i := range recipes {
		// Suggestions arrive without stable ids; mint one so a later save
		// has a natural key.
		if recipes[i].ID == "" {
			recipes[i].ID = uuid.NewString()
		}
	}

	return ChatReply{
		Message: *decoded.Message,
		Recipes: recipes,
	}, nil
}
