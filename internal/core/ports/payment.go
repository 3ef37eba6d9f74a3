package ports

import (
	"context"
	"time"
)

// CheckoutParams describes a one-off card payment for a package.
type CheckoutParams struct {
	ProductName    string
	UnitAmount     int64 // smallest currency unit
	SuccessURL     string
	CancelURL      string
	Metadata       map[string]string
	IdempotencyKey string
}

// CheckoutSession is the provider's view of a checkout.
type CheckoutSession struct {
	ID       string
	URL      string
	Paid     bool
	Metadata map[string]string
}

// PaymentProvider creates and retrieves checkout sessions keyed by an
// opaque session id.
type PaymentProvider interface {
	CreateSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

// CheckoutDedup remembers which sessions were already applied.
type CheckoutDedup interface {
	IsApplied(ctx context.Context, sessionID string) (bool, error)
	MarkApplied(ctx context.Context, sessionID string, ttl time.Duration) error
}
