package payment

import (
	"context"
	"fmt"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

// Disabled stands in when no Stripe key is configured. Free packages still
// apply; every paid checkout fails as an upstream error.
type Disabled struct{}

var _ ports.PaymentProvider = Disabled{}

var errNotConfigured = fmt.Errorf("%w: payments are not configured", domain.ErrUpstreamPayment)

func (Disabled) CreateSession(context.Context, ports.CheckoutParams) (*ports.CheckoutSession, error) {
	return nil, errNotConfigured
}

func (Disabled) RetrieveSession(context.Context, string) (*ports.CheckoutSession, error) {
	return nil, errNotConfigured
}
