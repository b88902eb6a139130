package auth

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkJWT(t *testing.T, claims map[string]any) string {
	t.Helper()
	header := map[string]any{"alg": "HS256", "typ": "JWT"}
	hb, _ := json.Marshal(header)
	pb, _ := json.Marshal(claims)
	enc := func(b []byte) string { return base64.RawURLEncoding.EncodeToString(b) }
	return enc(hb) + "." + enc(pb) + ".sig"
}

func TestDecodeClaims(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	testCases := []struct {
		name    string
		token   string
		subject string
		expired bool
		wantErr bool
	}{
		{name: "expired", token: mkJWT(t, map[string]any{"sub": "alice", "exp": now.Add(-time.Minute).Unix()}), subject: "alice", expired: true},
		{name: "valid", token: mkJWT(t, map[string]any{"sub": "alice", "exp": now.Add(time.Hour).Unix()}), subject: "alice"},
		{name: "no expiry", token: mkJWT(t, map[string]any{"sub": "bob"}), subject: "bob"},
		{name: "opaque", token: "3f2a9c", wantErr: true},
		{name: "bad payload", token: "a.!!!.c", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := DecodeClaims(tc.token)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.subject, claims.Subject)
			assert.Equal(t, tc.expired, claims.Expired(now))
		})
	}
}
