package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestTokenRoundTrip(t *testing.T) {
	tok, err := MakeToken(42, "s3cret", time.Minute)
	require.NoError(t, err)

	c, err := ParseToken(tok, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.UserID)
	assert.Equal(t, "42", c.Subject)
}

func TestParseToken(t *testing.T) {
	good, _ := MakeToken(7, "s3cret", time.Minute)
	past := Claims{UserID: 7, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}}
	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, past).SignedString([]byte("s3cret"))
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 7}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString([]byte("s3cret"))

	tests := []struct {
		name    string
		raw     string
		secret  string
		wantErr bool
	}{
		{"valid", good, "s3cret", false},
		{"wrong secret", good, "other", true},
		{"expired", expired, "s3cret", true},
		{"alg none", none, "s3cret", true},
		{"missing user", noUser, "s3cret", true},
		{"garbage", "not.a.token", "s3cret", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.raw, tt.secret)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRefreshToken(t *testing.T) {
	raw, hash, err := GenerateRefreshToken()
	require.NoError(t, err)
	assert.Len(t, raw, 64)
	assert.Equal(t, hash, HashRefreshToken(raw))

	raw2, _, _ := GenerateRefreshToken()
	assert.NotEqual(t, raw, raw2)
}
