package auth

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasherHashIsSalted(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost, 2)
	ctx := context.Background()

	first, err := h.Hash(ctx, "secret1")
	require.NoError(t, err)
	second, err := h.Hash(ctx, "secret1")
	require.NoError(t, err)

	assert.NotEqual(t, "secret1", first)
	assert.NotEqual(t, first, second, "hashes should differ due to random salt")
	assert.True(t, strings.HasPrefix(first, "$2a$") || strings.HasPrefix(first, "$2b$"))
}

func TestPasswordHasherVerify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost, 1)
	ctx := context.Background()

	hashed, err := h.Hash(ctx, "secret1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"correct password", "secret1", true},
		{"wrong password", "wrong", false},
		{"empty password", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify(ctx, tt.password, hashed)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestPasswordHasherVerifyMalformedHash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost, 1)

	for _, hashed := range []string{"", "not-a-hash", "$2a$04$abc"} {
		ok, err := h.Verify(context.Background(), "secret1", hashed)
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrHashingFailure, "hash %q", hashed)
	}
}

func TestPasswordHasherTooLongPassword(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost, 1)

	_, err := h.Hash(context.Background(), strings.Repeat("x", 100))
	assert.ErrorIs(t, err, ErrHashingFailure)
}

func TestPasswordHasherCancelledContext(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost, 1)
	require.NoError(t, h.slots.Acquire(context.Background(), 1))
	defer h.slots.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Hash(ctx, "secret1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.MinCost, NewPasswordHasher(1, 1).cost)
	assert.Equal(t, bcrypt.MaxCost, NewPasswordHasher(100, 1).cost)
}

func TestTokenServiceRoundTrip(t *testing.T) {
	s := NewTokenService("super-secret", 0)

	tok, err := s.Issue("user-123")
	require.NoError(t, err)

	subject, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", subject)
}

func TestTokenServiceOmitsExpiryByDefault(t *testing.T) {
	s := NewTokenService("super-secret", 0)

	tok, err := s.Issue("user-123")
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, &claims)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
	assert.NotNil(t, claims.IssuedAt)
}

func TestTokenServiceRejects(t *testing.T) {
	issuer := NewTokenService("right-secret", 0)
	valid, err := issuer.Issue("u1")
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"someone-else"}`))
	tampered := strings.Join(parts, ".")

	expiring := NewTokenService("right-secret", time.Minute)
	expiring.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiring.Issue("u1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		verifier *TokenService
		token    string
	}{
		{"wrong secret", NewTokenService("wrong-secret", 0), valid},
		{"malformed", issuer, "not.a.jwt"},
		{"empty", issuer, ""},
		{"tampered payload", issuer, tampered},
		{"expired", NewTokenService("right-secret", time.Minute), expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.verifier.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenServiceRejectsMissingSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(time.Now())})
	signed, err := token.SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewTokenService("k", 0).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceWithoutSecret(t *testing.T) {
	s := NewTokenService("   ", 0)

	_, err := s.Issue("u1")
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = s.Verify("anything")
	assert.ErrorIs(t, err, ErrMissingSecret)
}
