package chat

import (
	"encoding/json"
	"strings"

	"github.com/eazerepy/eazerepy/client/sdk"
)

const (
	HeadingAgent = "AGENT"
	HeadingUser  = "USER"
)

// Rendered is the display form of a message.
type Rendered struct {
	Heading string
	Body    string
}

// Render unpacks assistant content holding a JSON object into an upper-cased action heading
// and a result body. Other content is shown verbatim.
func Render(msg sdk.Message) Rendered {
	if msg.Role != sdk.RoleAssistant {
		return Rendered{Heading: HeadingUser, Body: msg.Content}
	}
	var fields map[string]json.RawMessage
	if !strings.HasPrefix(strings.TrimSpace(msg.Content), "{") || json.Unmarshal([]byte(msg.Content), &fields) != nil {
		return Rendered{Heading: HeadingAgent, Body: msg.Content}
	}
	out := Rendered{Heading: HeadingAgent}
	var action string
	if json.Unmarshal(fields["action"], &action) == nil && strings.TrimSpace(action) != "" {
		out.Heading = strings.ToUpper(action)
	}
	if raw, ok := fields["result"]; ok {
		var text string
		if json.Unmarshal(raw, &text) == nil {
			out.Body = text
		} else if string(raw) != "null" {
			out.Body = string(raw)
		}
	}
	return out
}
