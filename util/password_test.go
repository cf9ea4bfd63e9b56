package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyPassword(t *testing.T) {
	SetJWTSecret("test-secret-123")

	hashed := HashPassword("password123")
	assert.NotEqual(t, "password123", hashed)
	assert.True(t, VerifyPassword("password123", hashed))
	assert.False(t, VerifyPassword("wrong-password", hashed))
}

func TestHashPasswordDependsOnSecret(t *testing.T) {
	SetJWTSecret("secret-one")
	first := HashPassword("password123")

	SetJWTSecret("secret-two")
	second := HashPassword("password123")

	assert.NotEqual(t, first, second)
}
