package credentials

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateAPIKey produces a new agent API key: "sk_" followed by 32 random
// bytes hex-encoded.
func GenerateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random key: %w", err)
	}
	return "sk_" + hex.EncodeToString(b), nil
}
