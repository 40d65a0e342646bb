package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskfable/questlog-api/internal/config"
)

func newTestJWTService(t *testing.T) *hmacJWTService {
	t.Helper()
	svc, err := NewJWTService(config.AuthConfig{
		JWTSecret:            "thisisasecretkeythatis32charslong!!",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)
	return svc.(*hmacJWTService)
}

func TestNewJWTServiceRejectsShortSecret(t *testing.T) {
	_, err := NewJWTService(config.AuthConfig{
		JWTSecret:            "tooshort",
		TokenLifetimeMinutes: 60,
	})
	assert.Error(t, err)
}

func TestJWTRoundTrip(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()

	issuedAt := time.Now().Add(-2 * time.Hour)
	svc.timeFunc = func() time.Time { return issuedAt }
	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	// Back to real time, well past the lifetime plus clock skew.
	svc.timeFunc = time.Now
	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenTampered(t *testing.T) {
	svc := newTestJWTService(t)

	token, err := svc.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = svc.ValidateToken(context.Background(), tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenWrongKey(t *testing.T) {
	svc := newTestJWTService(t)

	other, err := NewJWTService(config.AuthConfig{
		JWTSecret:            "anentirelydifferentsecretthatis32chars",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	token, err := other.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := newTestJWTService(t)

	_, err := svc.ValidateToken(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
