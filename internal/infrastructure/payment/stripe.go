package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/assetverse/asset-management/internal/core/ports"
)

const defaultCurrency = "usd"

// StripeProvider implements ports.PaymentProvider with Stripe Checkout.
type StripeProvider struct {
	api      *client.API
	currency string
}

var _ ports.PaymentProvider = (*StripeProvider)(nil)

// NewStripeProvider returns a provider for the given secret key. An empty
// currency defaults to usd.
func NewStripeProvider(secretKey, currency string) (*StripeProvider, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, errors.New("stripe secret key is required")
	}
	if currency == "" {
		currency = defaultCurrency
	}
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeProvider{api: sc, currency: strings.ToLower(currency)}, nil
}

// CreateSession opens a one-off card checkout for a single line item.
func (p *StripeProvider) CreateSession(ctx context.Context, in ports.CheckoutParams) (*ports.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(p.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(in.ProductName),
					},
					UnitAmount: stripe.Int64(in.UnitAmount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
	}
	params.Context = ctx
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	if in.IdempotencyKey != "" {
		params.SetIdempotencyKey(in.IdempotencyKey)
	}

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create session: %w", err)
	}
	return toSession(s), nil
}

func (p *StripeProvider) RetrieveSession(ctx context.Context, sessionID string) (*ports.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe retrieve session: %w", err)
	}
	return toSession(s), nil
}

func toSession(s *stripe.CheckoutSession) *ports.CheckoutSession {
	return &ports.CheckoutSession{
		ID:       s.ID,
		URL:      s.URL,
		Paid:     s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Metadata: s.Metadata,
	}
}
