package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// verifierLength is the number of random bytes used for a PKCE code
// verifier. 32 bytes yields a 43-character base64url string, within the
// 43-128 character range required by RFC 7636.
const verifierLength = 32

// GenerateVerifier creates a new PKCE code verifier from cryptographically
// random bytes, encoded as unpadded URL-safe base64.
func GenerateVerifier() (string, error) {
	buf := make([]byte, verifierLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateChallenge derives the S256 code challenge for a verifier:
// the SHA-256 digest of the verifier, encoded as unpadded URL-safe base64.
// The derivation is deterministic for a fixed verifier.
func GenerateChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
