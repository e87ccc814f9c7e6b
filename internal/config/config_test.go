package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "0.0.0.0:8080", c.HTTPAddr)
	assert.Equal(t, "HS256", c.Token.Algorithm)
	assert.Equal(t, 30*time.Minute, c.Token.DefaultTTL)
	assert.Empty(t, c.Token.Secret)
	assert.Equal(t, 10, c.BcryptCost)
	assert.Equal(t, 10, c.LoginRateLimit)
	assert.Equal(t, time.Minute, c.LoginRateWindow)
	assert.Equal(t, "postgres://postgres:@localhost:5432/patients?sslmode=disable", c.Postgres.ConnString())

	// No secret by default.
	assert.Error(t, c.Validate())
}

func TestApplyEnv(t *testing.T) {
	var c Config
	c.LoadDefaults()

	err := c.applyEnv(envMap(map[string]string{
		"HTTP_ADDR":                   ":9000",
		"POSTGRES_HOST":               "db",
		"POSTGRES_PORT":               "6543",
		"POSTGRES_USER":               "clinic",
		"POSTGRES_PASSWORD":           "p@ss word",
		"POSTGRES_DB":                 "records",
		"JWT_SECRET":                  "s3cret",
		"JWT_ALGORITHM":               "HS512",
		"ACCESS_TOKEN_EXPIRE_MINUTES": "5",
		"BCRYPT_COST":                 "12",
		"HASH_WORKERS":                "3",
		"REDIS_ADDR":                  "redis:6379",
		"LOGIN_RATE_LIMIT":            "4",
		"LOGIN_RATE_WINDOW":           "30s",
		"LOG_LEVEL":                   "debug",
		"LOG_FORMAT":                  "text",
		"SHUTDOWN_TIMEOUT":            "5s",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9000", c.HTTPAddr)
	assert.Equal(t, "postgres://clinic:p%40ss%20word@db:6543/records?sslmode=disable", c.Postgres.ConnString())
	assert.Equal(t, TokenOptions{Secret: "s3cret", Algorithm: "HS512", DefaultTTL: 5 * time.Minute}, c.Token)
	assert.Equal(t, 12, c.BcryptCost)
	assert.Equal(t, 3, c.HashWorkers)
	assert.Equal(t, "redis:6379", c.RedisAddr)
	assert.Equal(t, 4, c.LoginRateLimit)
	assert.Equal(t, 30*time.Second, c.LoginRateWindow)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, 5*time.Second, c.ShutdownTimeout)
	assert.NoError(t, c.Validate())
}

func TestApplyEnv_InvalidNumbers(t *testing.T) {
	var c Config
	c.LoadDefaults()

	err := c.applyEnv(envMap(map[string]string{
		"BCRYPT_COST":       "high",
		"LOGIN_RATE_WINDOW": "forever",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BCRYPT_COST")
	assert.Contains(t, err.Error(), "LOGIN_RATE_WINDOW")
}

func TestDSNOverride(t *testing.T) {
	p := PostgresOptions{Host: "ignored", DSN: "postgres://u:p@h:1/d"}
	assert.Equal(t, "postgres://u:p@h:1/d", p.ConnString())
}

func TestParseFlags(t *testing.T) {
	var c Config
	c.LoadDefaults()

	err := c.parseFlags([]string{"-addr", "127.0.0.1:9090", "-migrate", "-jwt-alg", "HS384", "-token-ttl", "90s", "-redis-addr", "r:1"})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", c.HTTPAddr)
	assert.True(t, c.Migrate)
	assert.Equal(t, "HS384", c.Token.Algorithm)
	assert.Equal(t, 90*time.Second, c.Token.DefaultTTL)
	assert.Equal(t, "r:1", c.RedisAddr)

	assert.Error(t, c.parseFlags([]string{"-unknown"}))
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var c Config
		c.LoadDefaults()
		c.Token.Secret = "secret"
		return c
	}

	base := valid()
	require.NoError(t, base.Validate())

	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"rsa algorithm", func(c *Config) { c.Token.Algorithm = "RS256" }},
		{"zero ttl", func(c *Config) { c.Token.DefaultTTL = 0 }},
		{"low bcrypt cost", func(c *Config) { c.BcryptCost = 3 }},
		{"negative workers", func(c *Config) { c.HashWorkers = -1 }},
		{"negative rate limit", func(c *Config) { c.LoginRateLimit = -1 }},
		{"rate limit without window", func(c *Config) { c.LoginRateWindow = 0 }},
		{"empty addr", func(c *Config) { c.HTTPAddr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mod(&c)
			assert.Error(t, c.Validate())
		})
	}

	disabled := valid()
	disabled.LoginRateLimit = 0
	disabled.LoginRateWindow = 0
	assert.NoError(t, disabled.Validate())
}

func TestLoad_FromDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_SECRET=from-dotenv\nACCESS_TOKEN_EXPIRE_MINUTES=7\n"), 0o600))

	// t.Chdir requires Go 1.24; restore the working directory manually.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// godotenv never overrides variables that are already set, so make sure
	// neither key is present; t.Setenv restores the originals afterwards.
	for _, key := range []string{"JWT_SECRET", "ACCESS_TOKEN_EXPIRE_MINUTES"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load([]string{"-addr", ":1234"})
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.Token.Secret)
	assert.Equal(t, 7*time.Minute, cfg.Token.DefaultTTL)
	assert.Equal(t, ":1234", cfg.HTTPAddr)
}

func TestValidateDatabase(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	// The tools do not sign tokens, so a missing secret is fine here.
	assert.NoError(t, cfg.ValidateDatabase())

	cfg.Postgres.Host = ""
	assert.Error(t, cfg.ValidateDatabase())

	cfg.Postgres.DSN = "postgres://user@db/patients"
	assert.NoError(t, cfg.ValidateDatabase())

	cfg.BcryptCost = 2
	assert.Error(t, cfg.ValidateDatabase())
}
