package outbound

import "context"

// CompletionRequest is the outgoing payload to the AI completion service.
type CompletionRequest struct {
	// Message is the fully constructed prompt.
	Message string `json:"message"`
	// RequestType labels the exchange (chat, regenerate, retry).
	RequestType string `json:"requestType"`
}

// CompletionService sends a prompt to the AI service and returns the raw
// reply text, before any schema validation. Transport failures surface as
// CodeNetwork; deadline expiry as CodeTimeout.
type CompletionService interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
