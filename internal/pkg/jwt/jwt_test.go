package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa-track/internal/pkg/config"
	"qa-track/pkg/constants"
)

func setupConfig(t *testing.T) {
	t.Helper()
	config.GlobalConfig = &config.Config{
		Auth: config.AuthConfig{
			JWT: config.JWTConfig{
				Secret:        "test-secret",
				SessionExpire: 7 * 24 * 3600,
			},
		},
	}
}

func TestGenerateAndValidateSessionToken(t *testing.T) {
	setupConfig(t)

	token, err := GenerateSessionToken(42, "qa@example.com", "qa")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "qa@example.com", claims.Email)
	assert.Equal(t, "qa", claims.Role)
	assert.Equal(t, constants.JWTTypeSession, claims.Type)
	assert.Equal(t, "qa@example.com", claims.Subject)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	setupConfig(t)

	token, err := GenerateSessionToken(1, "pm@example.com", "pm")
	require.NoError(t, err)

	// 换密钥后解析必须失败
	config.GlobalConfig.Auth.JWT.Secret = "another-secret"
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	setupConfig(t)
	config.GlobalConfig.Auth.JWT.SessionExpire = -3600

	token, err := GenerateSessionToken(1, "pm@example.com", "pm")
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	setupConfig(t)

	_, err := ValidateToken("not-a-jwt")
	assert.Error(t, err)

	_, err = ValidateToken("")
	assert.Error(t, err)
}
