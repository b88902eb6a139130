// Package wallet derives display addresses from agent blockchain keys.
package wallet

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/sha3"
)

// ErrInvalidKey is returned for keys that are not 32 bytes of hex or are out of range.
var ErrInvalidKey = errors.New("invalid private key")

// Address returns the EIP-55 checksummed EVM address for a hex private key. A 0x prefix is optional.
func Address(hexKey string) (string, error) {
	key := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"), "0X")
	raw, err := hex.DecodeString(key)
	if err != nil || len(raw) != 32 {
		return "", ErrInvalidKey
	}
	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(raw); overflow || scalar.IsZero() {
		return "", ErrInvalidKey
	}
	priv := secp256k1.NewPrivateKey(&scalar)
	pub := priv.PubKey().SerializeUncompressed()[1:]
	digest := keccak(pub)
	return Checksum(hex.EncodeToString(digest[12:]))
}

// Checksum applies EIP-55 mixed-case encoding to a 20-byte hex address.
func Checksum(address string) (string, error) {
	addr := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(address, "0x"), "0X"))
	if len(addr) != 40 {
		return "", fmt.Errorf("invalid address %q", address)
	}
	if _, err := hex.DecodeString(addr); err != nil {
		return "", fmt.Errorf("invalid address %q: %w", address, err)
	}
	hash := hex.EncodeToString(keccak([]byte(addr)))
	out := make([]byte, len(addr))
	for i := 0; i < len(addr); i++ {
		c := addr[i]
		if c >= 'a' && c <= 'f' && hash[i] >= '8' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return "0x" + string(out), nil
}

func keccak(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
