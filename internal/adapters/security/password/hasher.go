// Package password hashes and verifies user passwords.
//
// Every bcrypt operation runs under a bounded pool of slots so that a burst
// of logins cannot occupy more CPUs than configured.
package password

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

type Hasher struct {
	cost int
	pool *semaphore.Weighted
}

// NewHasher returns a Hasher using cost for new hashes and at most workers
// concurrent bcrypt operations. Zero values select bcrypt.DefaultCost and
// runtime.NumCPU().
func NewHasher(cost, workers int) (*Hasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Hasher{
		cost: cost,
		pool: semaphore.NewWeighted(int64(workers)),
	}, nil
}

func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.pool.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.pool.Release(1)

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (h *Hasher) Verify(ctx context.Context, plaintext, hash string) (bool, error) {
	if err := h.pool.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.pool.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("failed to verify password: %w", err)
	}
	return true, nil
}
