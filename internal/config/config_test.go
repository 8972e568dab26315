package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventboard/eventboard/internal/auth"
)

var _ auth.Config = (*Config)(nil)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPServer.Address)
	assert.Equal(t, 24, cfg.GetTokenExpiration())
	assert.Equal(t, "HS256", cfg.GetSigningMethod())
	assert.Equal(t, "access_token", cfg.GetContextKey())
	assert.Equal(t, "Bearer", cfg.GetAuthScheme())
	assert.Equal(t, "eventboard", cfg.GetIssuer())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "env-secret")
	t.Setenv("HTTP_ADDRESS", ":9090")
	t.Setenv("TOKEN_EXPIRATION_HOURS", "2")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.GetSigningKey())
	assert.Equal(t, ":9090", cfg.HTTPServer.Address)
	assert.Equal(t, 2, cfg.GetTokenExpiration())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := []byte(`env: prod
http_server:
  address: ":3000"
auth:
  signing_key: "file-secret"
  token_expiration: 12
  issuer: "eventboard-prod"
`)
	require.NoError(t, os.WriteFile(path, contents, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, ":3000", cfg.HTTPServer.Address)
	assert.Equal(t, "file-secret", cfg.GetSigningKey())
	assert.Equal(t, 12, cfg.GetTokenExpiration())
	assert.Equal(t, "eventboard-prod", cfg.GetIssuer())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestGetTokenLookupOrdersCookieFirst(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "cookie:access_token,header:Authorization", cfg.GetTokenLookup())
}
