package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
	"github.com/assetverse/asset-management/internal/pkg/metrics"
)

const (
	metaHREmail   = "hr_email"
	metaPackageID = "package_id"

	// appliedSessionTTL outlives any Stripe checkout session.
	appliedSessionTTL = 30 * 24 * time.Hour
)

// PaymentServiceDeps wires the collaborators of PaymentService.
type PaymentServiceDeps struct {
	Packages  ports.PackageRepository
	Users     ports.UserRepository
	Provider  ports.PaymentProvider
	Dedup     ports.CheckoutDedup
	ClientURL string
}

// PaymentService sells package upgrades through the payment provider.
type PaymentService struct {
	packages  ports.PackageRepository
	users     ports.UserRepository
	provider  ports.PaymentProvider
	dedup     ports.CheckoutDedup
	clientURL string
	logger    zerolog.Logger
	newKey    func() string
}

func NewPaymentService(deps PaymentServiceDeps, logger zerolog.Logger) *PaymentService {
	return &PaymentService{
		packages:  deps.Packages,
		users:     deps.Users,
		provider:  deps.Provider,
		dedup:     deps.Dedup,
		clientURL: strings.TrimRight(deps.ClientURL, "/"),
		logger:    logger,
		newKey:    uuid.NewString,
	}
}

func (s *PaymentService) ListPackages(ctx context.Context) ([]*domain.Package, error) {
	pkgs, err := s.packages.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return pkgs, nil
}

func (s *PaymentService) GetPackage(ctx context.Context, id string) (*domain.Package, error) {
	return s.packages.FindByID(ctx, id)
}

// CreateCheckout starts an upgrade. A free package is applied immediately;
// a paid one returns the provider's checkout URL.
func (s *PaymentService) CreateCheckout(ctx context.Context, hrEmail, packageID string) (*ports.CheckoutResult, error) {
	if strings.TrimSpace(hrEmail) == "" || strings.TrimSpace(packageID) == "" {
		return nil, fmt.Errorf("%w: hrEmail and packageId are required", domain.ErrValidation)
	}

	pkg, err := s.packages.FindByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	hr, err := resolveHR(ctx, s.users, hrEmail)
	if err != nil {
		return nil, err
	}

	if pkg.Price <= 0 {
		if err := s.users.UpdatePackage(ctx, hr.Email, pkg.Name, pkg.EmployeeLimit); err != nil {
			metrics.CheckoutsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("apply free package: %w", err)
		}
		metrics.CheckoutsTotal.WithLabelValues("free").Inc()
		s.logger.Info().Str("hr", hr.Email).Str("package", pkg.Name).Msg("free package applied")
		return &ports.CheckoutResult{Free: true}, nil
	}

	session, err := s.provider.CreateSession(ctx, ports.CheckoutParams{
		ProductName: fmt.Sprintf("AssetVerse %s Package", pkg.Name),
		UnitAmount:  pkg.Price * 100,
		SuccessURL: fmt.Sprintf("%s/packageUpgrade/upgrade-success?session_id={CHECKOUT_SESSION_ID}&hrEmail=%s&packageId=%s",
			s.clientURL, url.QueryEscape(hr.Email), url.QueryEscape(pkg.ID)),
		CancelURL: s.clientURL + "/packageUpgrade/upgrade-cancel",
		Metadata: map[string]string{
			metaHREmail:   hr.Email,
			metaPackageID: pkg.ID,
		},
		IdempotencyKey: s.newKey(),
	})
	if err != nil {
		metrics.CheckoutsTotal.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Str("hr", hr.Email).Str("package", pkg.Name).Msg("failed to create checkout session")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamPayment, err)
	}

	metrics.CheckoutsTotal.WithLabelValues("redirect").Inc()
	s.logger.Info().
		Str("hr", hr.Email).
		Str("package", pkg.Name).
		Str("session_id", session.ID).
		Msg("checkout session created")
	return &ports.CheckoutResult{URL: session.URL}, nil
}

// ConfirmCheckout applies a paid upgrade once the provider reports the
// session paid. Replaying a confirmed session is a no-op.
func (s *PaymentService) ConfirmCheckout(ctx context.Context, in ports.ConfirmCheckoutInput) (*ports.ConfirmResult, error) {
	if in.SessionID == "" || in.PackageID == "" || in.HREmail == "" {
		return nil, fmt.Errorf("%w: session_id, packageId and hrEmail are required", domain.ErrValidation)
	}

	pkg, err := s.packages.FindByID(ctx, in.PackageID)
	if err != nil {
		return nil, err
	}

	applied, err := s.dedup.IsApplied(ctx, in.SessionID)
	if err != nil {
		// Applying twice only rewrites the same package fields.
		s.logger.Warn().Err(err).Str("session_id", in.SessionID).Msg("checkout dedup lookup failed")
	}
	if applied {
		metrics.CheckoutsTotal.WithLabelValues("replayed").Inc()
		return &ports.ConfirmResult{PackageName: pkg.Name, AlreadyApplied: true}, nil
	}

	session, err := s.provider.RetrieveSession(ctx, in.SessionID)
	if err != nil {
		metrics.CheckoutsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamPayment, err)
	}
	if !session.Paid {
		metrics.CheckoutsTotal.WithLabelValues("unpaid").Inc()
		return nil, domain.ErrPaymentNotCompleted
	}
	email := domain.NormalizeEmail(in.HREmail)
	if m := session.Metadata; m != nil &&
		(m[metaHREmail] != "" && m[metaHREmail] != email || m[metaPackageID] != "" && m[metaPackageID] != in.PackageID) {
		metrics.CheckoutsTotal.WithLabelValues("error").Inc()
		s.logger.Warn().Str("session_id", in.SessionID).Str("hr", email).Msg("checkout metadata mismatch")
		return nil, fmt.Errorf("%w: session does not belong to this upgrade", domain.ErrValidation)
	}

	if err := s.users.UpdatePackage(ctx, email, pkg.Name, pkg.EmployeeLimit); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrHRNotFound
		}
		return nil, fmt.Errorf("apply package: %w", err)
	}
	if err := s.dedup.MarkApplied(ctx, in.SessionID, appliedSessionTTL); err != nil {
		s.logger.Warn().Err(err).Str("session_id", in.SessionID).Msg("failed to mark checkout applied")
	}

	metrics.CheckoutsTotal.WithLabelValues("confirmed").Inc()
	s.logger.Info().
		Str("hr", email).
		Str("package", pkg.Name).
		Int("limit", pkg.EmployeeLimit).
		Str("session_id", in.SessionID).
		Msg("package upgrade confirmed")
	return &ports.ConfirmResult{PackageName: pkg.Name}, nil
}
