package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/eazerepy/eazerepy/client/sdk"
)

// Selector picks the active conversation from a non-empty list.
type Selector func(conversations []sdk.Conversation) sdk.Conversation

// First selects the first conversation in server order.
func First(conversations []sdk.Conversation) sdk.Conversation {
	return conversations[0]
}

// Latest selects the most recently updated conversation; ties keep server order.
func Latest(conversations []sdk.Conversation) sdk.Conversation {
	best := conversations[0]
	for _, c := range conversations[1:] {
		if stamp(c).After(stamp(best)) {
			best = c
		}
	}
	return best
}

func stamp(c sdk.Conversation) time.Time {
	switch {
	case c.UpdatedAt != nil:
		return c.UpdatedAt.Time
	case c.CreatedAt != nil:
		return c.CreatedAt.Time
	}
	return time.Time{}
}

// SelectorByName resolves "first" or "latest".
func SelectorByName(name string) (Selector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "first":
		return First, nil
	case "latest":
		return Latest, nil
	}
	return nil, fmt.Errorf("unknown conversation selector %q", name)
}
