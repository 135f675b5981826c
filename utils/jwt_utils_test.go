package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/models"
)

const secret = "test-secret"

func TestParseToken(t *testing.T) {
	token, err := GenerateToken("rider@example.com", models.RoleAdmin, secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "rider@example.com", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestParseToken_Rejects(t *testing.T) {
	valid, err := GenerateToken("rider@example.com", models.RoleUser, secret, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken("rider@example.com", models.RoleUser, secret, -time.Minute)
	require.NoError(t, err)
	noEmail, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "USER"}).SignedString([]byte(secret))
	require.NoError(t, err)
	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"email": "a@b.c"}).SignedString([]byte(secret))
	require.NoError(t, err)

	tests := []struct {
		name, token, secret string
	}{
		{"wrong secret", valid, "other"},
		{"empty secret", valid, ""},
		{"expired", expired, secret},
		{"missing email", noEmail, secret},
		{"unexpected algorithm", wrongAlg, secret},
		{"garbage", "not-a-jwt", secret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token, tt.secret)
			assert.Error(t, err)
		})
	}
}
