package chat

// State is a chat session lifecycle state.
//
//	NoSession -> SessionActive -> AwaitingResponse -> ResponseReceived | ResponseFailed
//	ResponseReceived/ResponseFailed -> AwaitingResponse (regenerate, retry)
//	SessionActive -> SessionSaved (terminal for that session)
type State string

const (
	StateNoSession        State = "no_session"
	StateSessionActive    State = "session_active"
	StateAwaitingResponse State = "awaiting_response"
	StateResponseReceived State = "response_received"
	StateResponseFailed   State = "response_failed"
	StateSessionSaved     State = "session_saved"
)

// FailureCategory tells the UI layer which recovery action to offer after a
// failed exchange. The engine exposes the category, never UI copy.
type FailureCategory string

const (
	// FailureTimeout is a transport timeout, distinct from a malformed
	// response.
	FailureTimeout FailureCategory = "timeout"

	// FailureNetwork is any other transport or service error.
	FailureNetwork FailureCategory = "network"

	// FailureTruncated is the soft failure where the model signals its
	// output was cut off. The matching recovery action is "continue".
	FailureTruncated FailureCategory = "truncated"

	// FailureOverloaded is the soft failure where the model signals the
	// service is overloaded. The matching recovery action is "retry".
	FailureOverloaded FailureCategory = "overloaded"

	// FailureInvalidResponse is model output that failed strict schema
	// validation.
	FailureInvalidResponse FailureCategory = "invalid_response"
)

// Retryable reports whether re-issuing the same request is a sensible
// recovery for the category.
func (c FailureCategory) Retryable() bool {
	switch c {
	case FailureTimeout, FailureNetwork, FailureOverloaded, FailureInvalidResponse:
		return true
	default:
		return false
	}
}

// Continuable reports whether asking the model to continue its previous
// output is the sensible recovery.
func (c FailureCategory) Continuable() bool {
	return c == FailureTruncated
}
