package ports

import (
	"context"

	"github.com/assetverse/asset-management/internal/core/domain"
)

// CheckoutResult is either a free-tier upgrade applied immediately or a
// redirect to the payment page.
type CheckoutResult struct {
	Free bool
	URL  string
}

// ConfirmCheckoutInput carries the success redirect parameters.
type ConfirmCheckoutInput struct {
	SessionID string
	PackageID string
	HREmail   string
}

// ConfirmResult names the package now active for the HR.
type ConfirmResult struct {
	PackageName    string
	AlreadyApplied bool
}

type PaymentService interface {
	CreateCheckout(ctx context.Context, hrEmail, packageID string) (*CheckoutResult, error)
	ConfirmCheckout(ctx context.Context, in ConfirmCheckoutInput) (*ConfirmResult, error)
	ListPackages(ctx context.Context) ([]*domain.Package, error)
	GetPackage(ctx context.Context, id string) (*domain.Package, error)
}
