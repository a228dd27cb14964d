// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, overrides, and defaults
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/zala/auth"
)

// clearEnv blanks every variable Load looks at.
func clearEnv(t *testing.T) {
	for _, k := range []string{
		"ZALA_API_URL", "ZALA_ENV", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET",
		"GOOGLE_REDIRECT_URI", "GOOGLE_SCOPES", "ZALA_DB_PATH", "ZALA_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_CLIENT_SECRET", "s3cret")
	path := writeConfig(t, `
api:
  url: "https://api.zala.example"
  env: production
  timeout: 10s
google:
  client_id: "client.apps.googleusercontent.com"
  client_secret: "${TEST_CLIENT_SECRET}"
database:
  path: "/tmp/zala-test.db"
logging:
  level: debug
  format: json
ui:
  autosave_delay: 250ms
  side_nav_delay: 1s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.zala.example", cfg.API.URL)
	assert.Equal(t, "production", cfg.API.Env)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, "s3cret", cfg.Google.ClientSecret)
	assert.Equal(t, auth.DefaultRedirectURL, cfg.Google.RedirectURI)
	assert.Equal(t, "/tmp/zala-test.db", cfg.Database.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.UI.AutosaveDelay)
	assert.Equal(t, time.Second, cfg.UI.SideNavDelay)
	assert.True(t, cfg.GoogleLoginConfigured())
	assert.Equal(t, "client.apps.googleusercontent.com", cfg.OAuth().ClientID)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.API.URL)
	assert.Equal(t, DefaultTimeout, cfg.API.Timeout)
	assert.Equal(t, DefaultAutosave, cfg.UI.AutosaveDelay)
	assert.Equal(t, DefaultSideNav, cfg.UI.SideNavDelay)
	assert.Equal(t, auth.DefaultScopes, cfg.Google.Scopes)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.NotEmpty(t, cfg.Database.Path)
	assert.False(t, cfg.GoogleLoginConfigured())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ZALA_API_URL", "http://127.0.0.1:9000")
	t.Setenv("GOOGLE_SCOPES", "openid")
	path := writeConfig(t, "api:\n  url: https://api.zala.example\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.API.URL)
	assert.Equal(t, "openid", cfg.Google.Scopes)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"duration":  "api:\n  timeout: soon\n",
		"url":       "api:\n  url: not-a-url\n",
		"log level": "logging:\n  level: loud\n",
		"format":    "logging:\n  format: xml\n",
		"negative":  "ui:\n  autosave_delay: -1s\n",
		"yaml":      "api: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("ZALA_TEST_VALUE", "x")
	assert.Equal(t, "a-x-", expandEnvVars("a-${ZALA_TEST_VALUE}-${ZALA_TEST_UNSET_VALUE}"))
}
