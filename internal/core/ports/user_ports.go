package ports

import (
	"context"

	"github.com/vncsmyrnk/patients/internal/core/domain"
)

// UserRepository is the credential store.
//
// GetByUsername returns domain.ErrUserNotFound on a miss. Create fills in ID
// and CreatedAt and returns domain.ErrUserExists when the username or email
// is taken.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

type ProvisionUserInput struct {
	Username string
	Email    string
	Password string
}

type UserService interface {
	Provision(ctx context.Context, input ProvisionUserInput) (*domain.User, error)
}
