package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.Auth.HTTPTimeout)
	assert.Equal(t, "data/blog.db", cfg.Database.Path)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "blog_session", cfg.Auth.CookieName)
	assert.Equal(t, "github", cfg.Auth.Provider)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Storage.Bucket)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BLOG_AUTH_SECRET", "s3cret")
	t.Setenv("BLOG_AUTH_TOKENTTL", "30m")
	t.Setenv("BLOG_CACHE_DRIVER", "redis")
	t.Setenv("BLOG_CACHE_REDIS_DB", "2")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Auth.Secret)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, 2, cfg.Cache.Redis.DB)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BLOG_SERVER_ADDR", "127.0.0.1:1")

	cfg, err := Load([]string{"--addr", ":9090", "--db", "/tmp/x.db", "--log-level", "debug"})
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "blog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  provider: oidc\n  issuer: https://id.example.com\nstorage:\n  bucket: feeds\n"), 0o600))

	cfg, err := Load([]string{"--config", path})
	require.NoError(t, err)

	assert.Equal(t, "oidc", cfg.Auth.Provider)
	assert.Equal(t, "https://id.example.com", cfg.Auth.Issuer)
	assert.Equal(t, "feeds", cfg.Storage.Bucket)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load([]string{"--config", "nope.yaml"})
	require.Error(t, err)
}

func TestLoad_UnknownFlag(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load([]string{"--bogus"})
	require.Error(t, err)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("# local\nBLOG_AUTH_CLIENTID=\"from-dotenv\"\nBLOG_AUTH_SECRET=from-dotenv\n"), 0o600))
	t.Setenv("BLOG_AUTH_SECRET", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("BLOG_AUTH_CLIENTID") })

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Auth.ClientID)
	assert.Equal(t, "from-env", cfg.Auth.Secret)
}

func validConfig(t *testing.T) Config {
	t.Helper()
	t.Chdir(t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)
	cfg.Auth.Secret = "secret"
	cfg.Auth.ClientID = "id"
	cfg.Auth.ClientSecret = "client-secret"
	return cfg
}

func TestValidate(t *testing.T) {
	cfg := validConfig(t)
	require.NoError(t, cfg.Validate())

	cases := map[string]func(*Config){
		"missing secret":      func(c *Config) { c.Auth.Secret = " " },
		"missing client id":   func(c *Config) { c.Auth.ClientID = "" },
		"unknown provider":    func(c *Config) { c.Auth.Provider = "saml" },
		"oidc without issuer": func(c *Config) { c.Auth.Provider = "oidc" },
		"unknown cache":       func(c *Config) { c.Cache.Driver = "memcached" },
		"redis without addr":  func(c *Config) { c.Cache.Driver, c.Cache.Redis.Addr = "redis", "" },
		"zero ttl":            func(c *Config) { c.Auth.TokenTTL = 0 },
		"no provider timeout": func(c *Config) { c.Auth.HTTPTimeout = 0 },
		"no header timeout":   func(c *Config) { c.Server.ReadHeaderTimeout = 0 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := cfg
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
