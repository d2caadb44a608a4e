package auth_test

import (
	"testing"
	"time"

	"boards/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret-key"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := auth.GenerateToken("alice", testSecret, time.Hour)

	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	identity, err := auth.ParseToken(token, testSecret)

	assert.NoError(t, err)
	assert.Equal(t, "alice", identity)
}

func TestParseToken_InvalidToken(t *testing.T) {
	_, err := auth.ParseToken("invalid-token", testSecret)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := auth.GenerateToken("alice", "another-secret", time.Hour)

	_, err := auth.ParseToken(token, testSecret)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_ExpiredToken(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
	}
	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

	_, err := auth.ParseToken(expired, testSecret)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_MissingSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

	_, err := auth.ParseToken(token, testSecret)

	assert.ErrorIs(t, err, auth.ErrInvalidClaims)
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))

	_, err := auth.ParseToken(token, testSecret)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
