package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

type stubPackageRepo struct {
	byID map[string]*domain.Package
}

func (r *stubPackageRepo) FindByID(_ context.Context, id string) (*domain.Package, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrPackageNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubPackageRepo) List(_ context.Context) ([]*domain.Package, error) {
	var out []*domain.Package
	for _, id := range []string{"basic", "standard", "premium"} {
		if p, ok := r.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubProvider struct {
	created     []ports.CheckoutParams
	sessions    map[string]*ports.CheckoutSession
	createErr   error
	retrieveErr error
}

func (p *stubProvider) CreateSession(_ context.Context, params ports.CheckoutParams) (*ports.CheckoutSession, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.created = append(p.created, params)
	return &ports.CheckoutSession{ID: "cs_test", URL: "https://checkout.example/cs_test"}, nil
}

func (p *stubProvider) RetrieveSession(_ context.Context, id string) (*ports.CheckoutSession, error) {
	if p.retrieveErr != nil {
		return nil, p.retrieveErr
	}
	s, ok := p.sessions[id]
	if !ok {
		return nil, errors.New("no such session")
	}
	return s, nil
}

type stubDedup struct {
	applied map[string]bool
}

func (d *stubDedup) IsApplied(_ context.Context, id string) (bool, error) {
	return d.applied[id], nil
}

func (d *stubDedup) MarkApplied(_ context.Context, id string, _ time.Duration) error {
	d.applied[id] = true
	return nil
}

type paymentFixture struct {
	users    *stubUserRepo
	provider *stubProvider
	dedup    *stubDedup
	svc      *PaymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		users: newStubUserRepo(
			&domain.User{ID: "hr-1", Email: hrEmail, Role: domain.RoleHR, CompanyName: "Acme",
				Package: domain.DefaultPackageName, PackageLimit: domain.DefaultPackageLimit},
			&domain.User{ID: "emp-1", Email: employeeEmail, Role: domain.RoleEmployee},
		),
		provider: &stubProvider{sessions: map[string]*ports.CheckoutSession{}},
		dedup:    &stubDedup{applied: map[string]bool{}},
	}
	packages := &stubPackageRepo{byID: map[string]*domain.Package{
		"basic":    {ID: "basic", Name: "basic", EmployeeLimit: 5, Price: 0},
		"standard": {ID: "standard", Name: "standard", EmployeeLimit: 10, Price: 8},
	}}
	f.svc = NewPaymentService(PaymentServiceDeps{
		Packages:  packages,
		Users:     f.users,
		Provider:  f.provider,
		Dedup:     f.dedup,
		ClientURL: "http://localhost:5173/",
	}, zerolog.Nop())
	f.svc.newKey = func() string { return "idem-1" }
	return f
}

func (f *paymentFixture) hr(t *testing.T) *domain.User {
	t.Helper()
	u, err := f.users.FindByEmail(context.Background(), hrEmail)
	if err != nil {
		t.Fatalf("find hr: %v", err)
	}
	return u
}

func TestCreateCheckout_FreePackageAppliesImmediately(t *testing.T) {
	f := newPaymentFixture()
	f.users.UpdatePackage(context.Background(), hrEmail, "standard", 10)

	res, err := f.svc.CreateCheckout(context.Background(), hrEmail, "basic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Free || res.URL != "" {
		t.Errorf("expected free result, got %+v", res)
	}
	if hr := f.hr(t); hr.Package != "basic" || hr.PackageLimit != 5 {
		t.Errorf("expected basic/5, got %s/%d", hr.Package, hr.PackageLimit)
	}
	if len(f.provider.created) != 0 {
		t.Error("expected no provider session for a free package")
	}
}

func TestCreateCheckout_PaidPackageRedirects(t *testing.T) {
	f := newPaymentFixture()

	res, err := f.svc.CreateCheckout(context.Background(), hrEmail, "standard")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Free || res.URL != "https://checkout.example/cs_test" {
		t.Errorf("unexpected result: %+v", res)
	}

	p := f.provider.created[0]
	if p.UnitAmount != 800 {
		t.Errorf("expected 800 cents, got %d", p.UnitAmount)
	}
	if p.ProductName != "AssetVerse standard Package" {
		t.Errorf("unexpected product name %q", p.ProductName)
	}
	if !strings.HasPrefix(p.SuccessURL, "http://localhost:5173/packageUpgrade/upgrade-success?session_id={CHECKOUT_SESSION_ID}") {
		t.Errorf("unexpected success url %q", p.SuccessURL)
	}
	if !strings.Contains(p.SuccessURL, "hrEmail=hr%40acme.com") || !strings.Contains(p.SuccessURL, "packageId=standard") {
		t.Errorf("expected escaped query params in %q", p.SuccessURL)
	}
	if p.CancelURL != "http://localhost:5173/packageUpgrade/upgrade-cancel" {
		t.Errorf("unexpected cancel url %q", p.CancelURL)
	}
	if p.Metadata["hr_email"] != hrEmail || p.Metadata["package_id"] != "standard" {
		t.Errorf("unexpected metadata %v", p.Metadata)
	}
	if p.IdempotencyKey != "idem-1" {
		t.Errorf("expected idempotency key, got %q", p.IdempotencyKey)
	}
	if hr := f.hr(t); hr.Package != domain.DefaultPackageName {
		t.Errorf("expected package unchanged until payment, got %s", hr.Package)
	}
}

func TestCreateCheckout_Errors(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		pkg     string
		prep    func(*paymentFixture)
		wantErr error
	}{
		{"missing params", "", "standard", nil, domain.ErrValidation},
		{"unknown package", hrEmail, "gold", nil, domain.ErrPackageNotFound},
		{"not hr", employeeEmail, "standard", nil, domain.ErrHRNotFound},
		{"provider failure", hrEmail, "standard", func(f *paymentFixture) {
			f.provider.createErr = errors.New("stripe down")
		}, domain.ErrUpstreamPayment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture()
			if tt.prep != nil {
				tt.prep(f)
			}
			_, err := f.svc.CreateCheckout(context.Background(), tt.email, tt.pkg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfirmCheckout_AppliesOnce(t *testing.T) {
	f := newPaymentFixture()
	f.provider.sessions["cs_1"] = &ports.CheckoutSession{
		ID: "cs_1", Paid: true,
		Metadata: map[string]string{"hr_email": hrEmail, "package_id": "standard"},
	}
	in := ports.ConfirmCheckoutInput{SessionID: "cs_1", PackageID: "standard", HREmail: hrEmail}

	res, err := f.svc.ConfirmCheckout(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PackageName != "standard" || res.AlreadyApplied {
		t.Errorf("unexpected result %+v", res)
	}
	if hr := f.hr(t); hr.Package != "standard" || hr.PackageLimit != 10 {
		t.Errorf("expected standard/10, got %s/%d", hr.Package, hr.PackageLimit)
	}

	f.provider.retrieveErr = errors.New("must not be called")
	res, err = f.svc.ConfirmCheckout(context.Background(), in)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !res.AlreadyApplied {
		t.Error("expected replay to be flagged")
	}
}

func TestConfirmCheckout_Errors(t *testing.T) {
	tests := []struct {
		name    string
		session *ports.CheckoutSession
		in      ports.ConfirmCheckoutInput
		wantErr error
	}{
		{
			name:    "missing session id",
			in:      ports.ConfirmCheckoutInput{PackageID: "standard", HREmail: hrEmail},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "unpaid",
			session: &ports.CheckoutSession{ID: "cs_1"},
			in:      ports.ConfirmCheckoutInput{SessionID: "cs_1", PackageID: "standard", HREmail: hrEmail},
			wantErr: domain.ErrPaymentNotCompleted,
		},
		{
			name:    "unknown session",
			in:      ports.ConfirmCheckoutInput{SessionID: "cs_x", PackageID: "standard", HREmail: hrEmail},
			wantErr: domain.ErrUpstreamPayment,
		},
		{
			name: "metadata for another hr",
			session: &ports.CheckoutSession{ID: "cs_1", Paid: true,
				Metadata: map[string]string{"hr_email": "other@acme.com", "package_id": "standard"}},
			in:      ports.ConfirmCheckoutInput{SessionID: "cs_1", PackageID: "standard", HREmail: hrEmail},
			wantErr: domain.ErrValidation,
		},
		{
			name: "metadata for another package",
			session: &ports.CheckoutSession{ID: "cs_1", Paid: true,
				Metadata: map[string]string{"hr_email": hrEmail, "package_id": "basic"}},
			in:      ports.ConfirmCheckoutInput{SessionID: "cs_1", PackageID: "standard", HREmail: hrEmail},
			wantErr: domain.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture()
			if tt.session != nil {
				f.provider.sessions[tt.session.ID] = tt.session
			}
			_, err := f.svc.ConfirmCheckout(context.Background(), tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if hr := f.hr(t); hr.Package != domain.DefaultPackageName {
				t.Errorf("expected package unchanged, got %s", hr.Package)
			}
			if len(f.dedup.applied) != 0 {
				t.Error("expected session not marked applied")
			}
		})
	}
}
