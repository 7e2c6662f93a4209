package repository

import (
	"context"

	"github.com/Emmanjr/health-monitoring/internal/domain"
)

// UsersRepository stores accounts and their lifestyle profile.
type UsersRepository interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByName(ctx context.Context, name string, role domain.Role) (*domain.User, error)
	ListUsers(ctx context.Context, filters UserFilters, page, size int) ([]*domain.User, int, error)
	CreateUser(ctx context.Context, user *domain.User) (string, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, userID string) error
	CountByRole(ctx context.Context) (domain.UserStats, error)
}

// UserFilters narrows ListUsers. Results are ordered by name.
type UserFilters struct {
	Role   domain.Role
	Search string // substring of name or email, case-insensitive
}
