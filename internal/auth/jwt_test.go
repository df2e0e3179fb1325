package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/ihsanfund/donations/internal/config"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(secret string) *Validator {
	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = secret
	return NewValidator(cfg)
}

func TestValidateToken(t *testing.T) {
	v := newValidator("s3cret")

	token, err := GenerateToken("s3cret", "user_1", RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", claims.UserID)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestValidateTokenRejects(t *testing.T) {
	v := newValidator("s3cret")

	wrongSecret, err := GenerateToken("other", "user_1", RoleAdmin, time.Hour)
	require.NoError(t, err)

	expired, err := GenerateToken("s3cret", "user_1", RoleAdmin, -time.Minute)
	require.NoError(t, err)

	noUser, err := GenerateToken("s3cret", "", RoleAdmin, time.Hour)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "user_1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong secret": wrongSecret,
		"expired":      expired,
		"missing user": noUser,
		"alg none":     none,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.ValidateToken(token)
			require.Error(t, err)
			assert.True(t, ierr.IsPermissionDenied(err))
		})
	}
}

func TestValidateTokenWithoutSecret(t *testing.T) {
	token, err := GenerateToken("s3cret", "user_1", RoleAdmin, time.Hour)
	require.NoError(t, err)

	_, err = newValidator("").ValidateToken(token)
	assert.True(t, ierr.IsPermissionDenied(err))
}
