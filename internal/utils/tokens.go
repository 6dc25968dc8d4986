package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// InvitationTokenBytes is the entropy of an invitation token.
const InvitationTokenBytes = 32

// NewToken returns nBytes of randomness hex encoded.
func NewToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = InvitationTokenBytes
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(b), nil
}
