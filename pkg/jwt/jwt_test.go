package jwt

import (
	"errors"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

func TestManager_GenerateAndParse(t *testing.T) {
	m := NewManager("secret", "bookreview", time.Hour)

	token, err := m.GenerateToken(42, "alice@example.com", "Alice")
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, 5*time.Second)

	claims, err := m.ParseToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "42", claims.Subject)

	ttl := m.RemainingTTL(claims)
	assert.True(t, ttl > 59*time.Minute && ttl <= time.Hour, ttl)
}

func TestManager_ParseToken_Errors(t *testing.T) {
	m := NewManager("secret", "bookreview", time.Hour)
	token, err := m.GenerateToken(1, "a@b.c", "A")
	require.NoError(t, err)

	tests := []struct {
		name    string
		manager *Manager
		token   string
		want    error
	}{
		{"签名密钥不同", NewManager("other", "bookreview", time.Hour), token.AccessToken, apperrors.ErrInvalidToken},
		{"签发者不同", NewManager("secret", "someone-else", time.Hour), token.AccessToken, apperrors.ErrInvalidToken},
		{"格式错误", m, "not-a-jwt", apperrors.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.manager.ParseToken(tt.token)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestManager_ParseToken_Expired(t *testing.T) {
	m := NewManager("secret", "bookreview", time.Minute)
	issuedAt := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issuedAt }

	token, err := m.GenerateToken(1, "a@b.c", "A")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ParseToken(token.AccessToken)
	assert.True(t, errors.Is(err, apperrors.ErrTokenExpired), "got %v", err)
}

func TestManager_ParseToken_RejectsNoneAlg(t *testing.T) {
	m := NewManager("secret", "bookreview", time.Hour)

	claims := Claims{
		UserID: 1,
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    "bookreview",
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.ParseToken(unsigned)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
}
