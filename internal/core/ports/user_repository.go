package ports

import (
	"context"

	"github.com/assetverse/asset-management/internal/core/domain"
)

// UserListFilter narrows a user listing. Search is a case-insensitive
// substring match on the name.
type UserListFilter struct {
	Search string
	PageRequest
}

// ProfileUpdate carries the mutable profile fields. Nil fields are kept.
// Email and role are not mutable.
type ProfileUpdate struct {
	Name        *string
	PhotoURL    *string
	Birthdate   *string
	CompanyName *string
	CompanyLogo *string
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.Name == nil && u.PhotoURL == nil && u.Birthdate == nil &&
		u.CompanyName == nil && u.CompanyLogo == nil
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Create inserts a new user; a duplicate email yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	List(ctx context.Context, filter UserListFilter) ([]*domain.User, int64, error)
	// UpdateProfile reports whether any field changed.
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (bool, error)
	UpdatePackage(ctx context.Context, email, packageName string, limit int) error
	ListHR(ctx context.Context) ([]*domain.User, error)
}
