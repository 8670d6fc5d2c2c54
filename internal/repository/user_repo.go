// internal/repository/user_repo.go
package repository

import (
	"context"

	"betslip-wallet/internal/domain"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// CreateUser adds a new user. A subject that already exists yields util.ErrDuplicateEntry.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// GetUserByID retrieves a user by their ID.
	GetUserByID(ctx context.Context, q DBExecutor, id int64) (*domain.User, error)
	// GetUserBySubject retrieves a user by the auth platform's subject.
	GetUserBySubject(ctx context.Context, q DBExecutor, subject string) (*domain.User, error)
}
