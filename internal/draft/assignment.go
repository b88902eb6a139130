package draft

import (
	"fmt"
	"strings"

	"github.com/eazerepy/eazerepy/client/sdk"
)

// ParseAssignment parses "KEY=value" where KEY is an env-style name (OPENAI_API_KEY) or a
// field name (openai_api_key). It returns the credential field name.
func ParseAssignment(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return "", "", fmt.Errorf("invalid credential %q: expected KEY=value", s)
	}
	cred, ok := sdk.LookupCredential(strings.TrimSpace(key))
	if !ok {
		return "", "", fmt.Errorf("unknown credential %q", strings.TrimSpace(key))
	}
	return cred.Field, strings.TrimSpace(value), nil
}

// ParseAssignments parses every assignment into a credential map.
func ParseAssignments(items []string) (sdk.Credentials, error) {
	creds := sdk.Credentials{}
	for _, item := range items {
		field, value, err := ParseAssignment(item)
		if err != nil {
			return nil, err
		}
		creds[field] = value
	}
	return creds, nil
}
