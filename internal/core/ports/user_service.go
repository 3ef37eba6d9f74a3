package ports

import (
	"context"

	"github.com/assetverse/asset-management/internal/core/domain"
)

// RegisterInput is the client registration payload. RequestedRole is a
// request only; "hr" is granted solely when HRCode verifies.
type RegisterInput struct {
	Profile       domain.Profile
	RequestedRole string
	HRCode        string
}

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetRole(ctx context.Context, email string) (domain.Role, error)
	ListUsers(ctx context.Context, filter UserListFilter) (*Page[*domain.User], error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (bool, error)
}
