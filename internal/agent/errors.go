package agent

import "errors"

var (
	ErrNotFound = errors.New("agent not found")
	ErrLoad     = errors.New("failed to load agent")
	ErrEmptyBio = errors.New("agent bio is empty")
	ErrUpdate   = errors.New("failed to update agent")
	ErrDelete   = errors.New("failed to delete agent")
	ErrList     = errors.New("failed to list agents")
)

const (
	MsgNotFound = "Agent not found or you don't have permission to access it."
	MsgLoad     = "Failed to load agent details. Please try again later."
	MsgEmptyBio = "Please add at least one sentence to the agent bio."
	MsgUpdate   = "Failed to update agent. Please try again later."
	MsgDelete   = "Failed to delete agent. Please try again later."
	MsgList     = "Failed to load agents. Please try again later."
)

// Message maps a directory error to the text shown to the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return MsgNotFound
	case errors.Is(err, ErrEmptyBio):
		return MsgEmptyBio
	case errors.Is(err, ErrUpdate):
		return MsgUpdate
	case errors.Is(err, ErrDelete):
		return MsgDelete
	case errors.Is(err, ErrList):
		return MsgList
	default:
		return MsgLoad
	}
}
