package security

import (
	"github.com/google/uuid"
)

// GenerateSessionToken creates a new opaque bearer token
func GenerateSessionToken() string {
	return uuid.New().String()
}

// GenerateUID creates a new account identifier
func GenerateUID() string {
	return uuid.New().String()
}
