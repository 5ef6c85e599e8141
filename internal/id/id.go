package id

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// GenerateID creates a unique 16-character alphanumeric ID.
func GenerateID() string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	for i := range b {
		b[i] = chars[b[i]%byte(len(chars))]
	}
	return string(b)
}

// NewReviewID returns the idempotency key of a single rating event.
func NewReviewID() string {
	return uuid.NewString()
}
