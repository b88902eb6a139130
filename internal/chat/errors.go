package chat

import "errors"

var (
	// ErrAgentNotFound is terminal: the agent does not exist or belongs to someone else.
	ErrAgentNotFound = errors.New("agent not found")
	// ErrAgentLoad is terminal: the agent could not be fetched.
	ErrAgentLoad = errors.New("failed to load agent")
	// ErrConversationLoad leaves the session usable in a degraded state.
	ErrConversationLoad = errors.New("failed to load conversation")
	// ErrSend is reported when any step of a turn fails.
	ErrSend = errors.New("failed to send message")
)

// Message maps a session error to the text shown to the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAgentNotFound):
		return "Agent not found or you don't have permission to access it."
	case errors.Is(err, ErrSend):
		return "Failed to send message. Please try again later."
	case errors.Is(err, ErrConversationLoad):
		return "Failed to load conversation. Please try again later."
	default:
		return "Failed to load agent details. Please try again later."
	}
}
