package domain

import "errors"

var (
	ErrBadCredential     = errors.New("bad credential")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserInactive      = errors.New("user is inactive")
	ErrUserExists        = errors.New("user already exists")
	ErrInvalidSignature  = errors.New("invalid token signature")
	ErrTokenExpired      = errors.New("token expired")
	ErrMalformedToken    = errors.New("malformed token")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrPatientNotFound   = errors.New("patient not found")
	ErrInvalidPatientID  = errors.New("invalid patient id")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrInternal          = errors.New("internal server error")
)

var authErrors = []error{
	ErrBadCredential,
	ErrUserNotFound,
	ErrUserInactive,
	ErrInvalidSignature,
	ErrTokenExpired,
	ErrMalformedToken,
	ErrUnauthorized,
}

// IsAuthError reports whether err belongs to the authentication failure class.
// Callers at the boundary must not reveal which member occurred.
func IsAuthError(err error) bool {
	for _, target := range authErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
