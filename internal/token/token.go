// Package token generates and encodes single-use sign-in tokens.
//
// A token is 32 bytes from a cryptographically secure source, carried in the
// sign-in link as base64. The encoding is for URL aesthetics only, it carries
// no secrecy; unpredictability comes entirely from the random source.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
)

// secretLen is the raw secret size in bytes, 256 bits of entropy.
const secretLen = 32

// New reads a fresh secret from r (crypto/rand.Reader in production) and
// returns its URL-safe encoding, the form embedded in the sign-in link.
func New(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	raw := make([]byte, secretLen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return Encode(raw), nil
}

// Encode turns a raw secret into its URL-safe transport form.
func Encode(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode reverses Encode. An empty or malformed input yields an error;
// callers treat that as "no token presented".
func Decode(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, fmt.Errorf("empty token")
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty token")
	}
	return raw, nil
}

// Hash returns the hex SHA-256 of the encoded token. Only the hash is stored;
// lookups compare hashes, so a database leak does not leak live sign-in links
// and matching cost does not depend on how much of a guess is right.
func Hash(encoded string) string {
	sum := sha256.Sum256([]byte(encoded))
	return hex.EncodeToString(sum[:])
}
