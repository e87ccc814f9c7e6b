package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/patients/internal/config"
)

type Issuer struct {
	method     *jwt.SigningMethodHMAC
	secret     []byte
	defaultTTL time.Duration
	clock      clock
}

func NewIssuer(opts config.TokenOptions, options ...Option) (*Issuer, error) {
	method, err := signingMethod(opts.Algorithm)
	if err != nil {
		return nil, err
	}
	secret, err := signingKey(opts.Secret)
	if err != nil {
		return nil, err
	}
	if opts.DefaultTTL <= 0 {
		return nil, errors.New("default token ttl must be positive")
	}
	return &Issuer{
		method:     method,
		secret:     secret,
		defaultTTL: opts.DefaultTTL,
		clock:      newClock(options),
	}, nil
}

func (i *Issuer) Issue(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("subject is required")
	}
	if ttl < 0 {
		return "", fmt.Errorf("ttl must not be negative, got %s", ttl)
	}
	if ttl == 0 {
		ttl = i.defaultTTL
	}

	now := i.clock.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
