// Package token issues and verifies the signed bearer tokens handed out at
// login. Tokens are HMAC-signed JWTs carrying the username as subject; the
// algorithm is fixed per secret, so rotating either invalidates every
// outstanding token.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Option func(*clock)

type clock struct {
	now func() time.Time
}

// WithClock overrides the time source used for iat/exp.
func WithClock(now func() time.Time) Option {
	return func(c *clock) {
		c.now = now
	}
}

func newClock(opts []Option) clock {
	c := clock{now: time.Now}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func signingMethod(alg string) (*jwt.SigningMethodHMAC, error) {
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", alg)
	}
	return method, nil
}

func signingKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("signing secret is empty")
	}
	return []byte(secret), nil
}
