package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHashAndCompare(t *testing.T) {
	// MinCost keeps the test fast.
	hasher := NewBcryptHasher(bcrypt.MinCost)
	verifier := NewBcryptVerifier()

	hashed, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hashed)
	assert.NotEqual(t, "correct horse battery staple", hashed)

	assert.NoError(t, verifier.Compare(hashed, "correct horse battery staple"))
	assert.Error(t, verifier.Compare(hashed, "wrong password"))
}

func TestBcryptHashesDiffer(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	first, err := hasher.Hash("same password")
	require.NoError(t, err)
	second, err := hasher.Hash("same password")
	require.NoError(t, err)

	// Each hash carries its own salt.
	assert.NotEqual(t, first, second)
}

func TestNewBcryptHasherDefaultsCost(t *testing.T) {
	hasher := NewBcryptHasher(0)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)
}
