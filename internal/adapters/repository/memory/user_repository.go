// Package memory keeps users and patients in process memory. It backs local
// development and tests and satisfies the same contracts as the postgres
// adapter.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vncsmyrnk/patients/internal/core/domain"
	"github.com/vncsmyrnk/patients/internal/core/ports"
)

type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]domain.User),
	}
}

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return domain.ErrUserExists
	}
	if user.Email != "" {
		for _, u := range r.users {
			if u.Email == user.Email {
				return domain.ErrUserExists
			}
		}
	}

	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now().UTC()
	r.users[user.Username] = *user
	return nil
}

// Delete removes a user. Tokens already issued to it stop authorizing.
func (r *UserRepository) Delete(_ context.Context, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, username)
}
