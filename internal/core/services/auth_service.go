package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/patients/internal/core/domain"
	"github.com/vncsmyrnk/patients/internal/core/ports"
)

type LoginRateLimit struct {
	Limiter ports.RateLimiter
	Limit   int
	Window  time.Duration
}

type AuthService struct {
	userRepo  ports.UserRepository
	hasher    ports.PasswordHasher
	issuer    ports.TokenIssuer
	verifier  ports.TokenVerifier
	tokenTTL  time.Duration
	rateLimit LoginRateLimit
	log       logrus.FieldLogger

	dummyOnce sync.Once
	dummyHash string
	dummyErr  error
}

func NewAuthService(
	userRepo ports.UserRepository,
	hasher ports.PasswordHasher,
	issuer ports.TokenIssuer,
	verifier ports.TokenVerifier,
	tokenTTL time.Duration,
	log logrus.FieldLogger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		issuer:   issuer,
		verifier: verifier,
		tokenTTL: tokenTTL,
		log:      log,
	}
}

// WithLoginRateLimit enables per-username login throttling. A zero limit or a
// nil limiter leaves logins unthrottled.
func (s *AuthService) WithLoginRateLimit(rl LoginRateLimit) *AuthService {
	s.rateLimit = rl
	return s
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.AccessToken, error) {
	if rl := s.rateLimit; rl.Limiter != nil && rl.Limit > 0 {
		if err := rl.Limiter.CheckAndIncrement(ctx, "login:"+username, rl.Limit, rl.Window); err != nil {
			if errors.Is(err, domain.ErrRateLimitExceeded) {
				s.log.WithField("username", username).Warn("login rate limit exceeded")
				return nil, err
			}
			return nil, fmt.Errorf("failed to check login rate limit: %w", err)
		}
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		// Keep the unknown-user path as slow as a real password check.
		if _, verr := s.verifyAgainstDummy(ctx, password); verr != nil {
			s.log.WithError(verr).Warn("dummy password check failed")
		}
		s.logLoginFailure(username, err)
		return nil, err
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.logLoginFailure(username, domain.ErrBadCredential)
		return nil, domain.ErrBadCredential
	}

	if !user.Active {
		s.logLoginFailure(username, domain.ErrUserInactive)
		return nil, domain.ErrUserInactive
	}

	token, err := s.issuer.Issue(user.Username, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	return &domain.AccessToken{AccessToken: token, TokenType: domain.TokenTypeBearer}, nil
}

func (s *AuthService) Authorize(ctx context.Context, token string) (*domain.User, error) {
	subject, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: subject %q no longer exists", domain.ErrUnauthorized, subject)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.Active {
		return nil, fmt.Errorf("%w: subject %q is inactive", domain.ErrUnauthorized, subject)
	}

	return user, nil
}

func (s *AuthService) logLoginFailure(username string, reason error) {
	s.log.WithFields(logrus.Fields{
		"username": username,
		"reason":   reason.Error(),
	}).Info("login failed")
}

func (s *AuthService) verifyAgainstDummy(ctx context.Context, password string) (bool, error) {
	s.dummyOnce.Do(func() {
		b := make([]byte, 24)
		if _, err := rand.Read(b); err != nil {
			s.dummyErr = err
			return
		}
		s.dummyHash, s.dummyErr = s.hasher.Hash(context.WithoutCancel(ctx), base64.RawStdEncoding.EncodeToString(b))
	})
	if s.dummyErr != nil {
		return false, s.dummyErr
	}
	return s.hasher.Verify(ctx, password, s.dummyHash)
}
