package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load builds a validated Config from defaults, the environment (including an
// optional .env file in the working directory) and args.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{}
	cfg.LoadDefaults()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadDatabase is Load for the maintenance tools. It reads defaults and the
// environment only and checks just the database and hashing settings.
func LoadDatabase() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{}
	cfg.LoadDefaults()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.ValidateDatabase(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("HTTP_ADDR", &c.HTTPAddr)
	duration("SHUTDOWN_TIMEOUT", &c.ShutdownTimeout)

	str("POSTGRES_HOST", &c.Postgres.Host)
	str("POSTGRES_PORT", &c.Postgres.Port)
	str("POSTGRES_USER", &c.Postgres.User)
	str("POSTGRES_PASSWORD", &c.Postgres.Password)
	str("POSTGRES_DB", &c.Postgres.DB)
	str("POSTGRES_SSLMODE", &c.Postgres.SSLMode)
	str("DATABASE_URL", &c.Postgres.DSN)

	str("JWT_SECRET", &c.Token.Secret)
	str("JWT_ALGORITHM", &c.Token.Algorithm)
	ttlMinutes := int(c.Token.DefaultTTL / time.Minute)
	integer("ACCESS_TOKEN_EXPIRE_MINUTES", &ttlMinutes)
	c.Token.DefaultTTL = time.Duration(ttlMinutes) * time.Minute

	integer("BCRYPT_COST", &c.BcryptCost)
	integer("HASH_WORKERS", &c.HashWorkers)

	str("REDIS_ADDR", &c.RedisAddr)
	integer("LOGIN_RATE_LIMIT", &c.LoginRateLimit)
	duration("LOGIN_RATE_WINDOW", &c.LoginRateWindow)

	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	return errors.Join(errs...)
}

func (c *Config) parseFlags(args []string) error {
	flags := flag.NewFlagSet("patients", flag.ContinueOnError)

	flags.StringVar(&c.HTTPAddr, "addr", c.HTTPAddr, "address and port to listen on")
	flags.BoolVar(&c.Migrate, "migrate", c.Migrate, "apply database migrations before serving")
	flags.StringVar(&c.Postgres.DSN, "db-dsn", c.Postgres.DSN, "postgres connection string")
	flags.StringVar(&c.Postgres.Host, "db-host", c.Postgres.Host, "database host")
	flags.StringVar(&c.Postgres.Port, "db-port", c.Postgres.Port, "database port")
	flags.StringVar(&c.Postgres.User, "db-user", c.Postgres.User, "database user")
	flags.StringVar(&c.Postgres.DB, "db-name", c.Postgres.DB, "database name")
	flags.StringVar(&c.Token.Algorithm, "jwt-alg", c.Token.Algorithm, "token signing algorithm (HS256, HS384, HS512)")
	flags.DurationVar(&c.Token.DefaultTTL, "token-ttl", c.Token.DefaultTTL, "access token lifetime")
	flags.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "redis address for the login rate limiter")
	flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level")

	return flags.Parse(args)
}
