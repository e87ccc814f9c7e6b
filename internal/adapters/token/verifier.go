package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vncsmyrnk/patients/internal/config"
	"github.com/vncsmyrnk/patients/internal/core/domain"
)

type Verifier struct {
	method *jwt.SigningMethodHMAC
	secret []byte
	clock  clock
}

func NewVerifier(opts config.TokenOptions, options ...Option) (*Verifier, error) {
	method, err := signingMethod(opts.Algorithm)
	if err != nil {
		return nil, err
	}
	secret, err := signingKey(opts.Secret)
	if err != nil {
		return nil, err
	}
	return &Verifier{
		method: method,
		secret: secret,
		clock:  newClock(options),
	}, nil
}

// Verify checks the signature first and the claims second, so a tampered
// token is reported as ErrInvalidSignature even when it is also expired.
func (v *Verifier) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) {
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{v.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.clock.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
	default:
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", domain.ErrMalformedToken)
	}
	return claims.Subject, nil
}
