package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/patients/internal/core/domain"
)

type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, hash string) (bool, error) // false, nil on mismatch
}

type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error) // ttl 0 means the configured default
}

type TokenVerifier interface {
	Verify(token string) (string, error) // returns the subject claim
}

type RateLimiter interface {
	CheckAndIncrement(ctx context.Context, key string, limit int, window time.Duration) error
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*domain.AccessToken, error)
	Authorize(ctx context.Context, token string) (*domain.User, error)
}
