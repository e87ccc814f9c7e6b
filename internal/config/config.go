// Package config holds the runtime settings of the patients service.
//
// Values are resolved in order: LoadDefaults, then a .env file and the process
// environment, then command-line flags. Validate must pass before the values
// are handed to the rest of the program.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

// TokenOptions configures signing of access tokens. Changing Secret or
// Algorithm invalidates every token issued before the change.
type TokenOptions struct {
	Secret     string
	Algorithm  string
	DefaultTTL time.Duration
}

type PostgresOptions struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
	SSLMode  string
	// DSN overrides the individual fields when set.
	DSN string
}

func (p PostgresOptions) ConnString() string {
	if p.DSN != "" {
		return p.DSN
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, p.Port),
		Path:     "/" + p.DB,
		RawQuery: "sslmode=" + url.QueryEscape(p.SSLMode),
	}
	return u.String()
}

type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	Migrate         bool

	Postgres PostgresOptions
	Token    TokenOptions

	BcryptCost  int
	HashWorkers int

	RedisAddr       string
	LoginRateLimit  int
	LoginRateWindow time.Duration

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates Config with development defaults. The JWT secret is
// left empty on purpose so that Validate fails until one is configured.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = "0.0.0.0:8080"
	c.ShutdownTimeout = 30 * time.Second
	c.Migrate = false
	c.Postgres = PostgresOptions{
		Host:    "localhost",
		Port:    "5432",
		User:    "postgres",
		DB:      "patients",
		SSLMode: "disable",
	}
	c.Token = TokenOptions{
		Algorithm:  "HS256",
		DefaultTTL: 30 * time.Minute,
	}
	c.BcryptCost = 10
	c.HashWorkers = 0
	c.LoginRateLimit = 10
	c.LoginRateWindow = time.Minute
	c.LogLevel = "info"
	c.LogFormat = "json"
}

var allowedAlgorithms = map[string]bool{"HS256": true, "HS384": true, "HS512": true}

func (c *Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http address is required"))
	}
	if c.Token.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if !allowedAlgorithms[c.Token.Algorithm] {
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM %q is not one of HS256, HS384, HS512", c.Token.Algorithm))
	}
	if c.Token.DefaultTTL <= 0 {
		errs = append(errs, errors.New("access token ttl must be positive"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("bcrypt cost %d out of range [4, 31]", c.BcryptCost))
	}
	if c.HashWorkers < 0 {
		errs = append(errs, errors.New("hash workers must not be negative"))
	}
	if c.LoginRateLimit < 0 {
		errs = append(errs, errors.New("login rate limit must not be negative"))
	}
	if c.LoginRateLimit > 0 && c.LoginRateWindow <= 0 {
		errs = append(errs, errors.New("login rate window must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) ValidateDatabase() error {
	var errs []error
	if c.Postgres.DSN == "" && (c.Postgres.Host == "" || c.Postgres.DB == "") {
		errs = append(errs, errors.New("either DATABASE_URL or POSTGRES_HOST and POSTGRES_DB are required"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("bcrypt cost %d out of range [4, 31]", c.BcryptCost))
	}
	if c.HashWorkers < 0 {
		errs = append(errs, errors.New("hash workers must not be negative"))
	}
	return errors.Join(errs...)
}
