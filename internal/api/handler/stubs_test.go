package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

var errNotStubbed = errors.New("not stubbed")

// newContext builds an echo context with the production validator.
func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

type stubUserService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	byEmailFn  func(ctx context.Context, email string) (*domain.User, error)
	byIDFn     func(ctx context.Context, id string) (*domain.User, error)
	roleFn     func(ctx context.Context, email string) (domain.Role, error)
	listFn     func(ctx context.Context, filter ports.UserListFilter) (*ports.Page[*domain.User], error)
	updateFn   func(ctx context.Context, id string, update ports.ProfileUpdate) (bool, error)
}

func (s *stubUserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if s.registerFn == nil {
		return nil, errNotStubbed
	}
	return s.registerFn(ctx, in)
}

func (s *stubUserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if s.byEmailFn == nil {
		return nil, errNotStubbed
	}
	return s.byEmailFn(ctx, email)
}

func (s *stubUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if s.byIDFn == nil {
		return nil, errNotStubbed
	}
	return s.byIDFn(ctx, id)
}

func (s *stubUserService) GetRole(ctx context.Context, email string) (domain.Role, error) {
	if s.roleFn == nil {
		return "", errNotStubbed
	}
	return s.roleFn(ctx, email)
}

func (s *stubUserService) ListUsers(ctx context.Context, filter ports.UserListFilter) (*ports.Page[*domain.User], error) {
	if s.listFn == nil {
		return nil, errNotStubbed
	}
	return s.listFn(ctx, filter)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, id string, update ports.ProfileUpdate) (bool, error) {
	if s.updateFn == nil {
		return false, errNotStubbed
	}
	return s.updateFn(ctx, id, update)
}

type stubAssetService struct {
	createFn func(ctx context.Context, in ports.CreateAssetInput) (*domain.Asset, error)
	getFn    func(ctx context.Context, id string) (*domain.Asset, error)
	listFn   func(ctx context.Context, filter ports.AssetListFilter) (*ports.Page[*domain.Asset], error)
	updateFn func(ctx context.Context, id string, patch domain.AssetPatch) (bool, bool, error)
	deleteFn func(ctx context.Context, id string) (bool, error)
}

func (s *stubAssetService) CreateAsset(ctx context.Context, in ports.CreateAssetInput) (*domain.Asset, error) {
	if s.createFn == nil {
		return nil, errNotStubbed
	}
	return s.createFn(ctx, in)
}

func (s *stubAssetService) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	if s.getFn == nil {
		return nil, errNotStubbed
	}
	return s.getFn(ctx, id)
}

func (s *stubAssetService) ListAssets(ctx context.Context, filter ports.AssetListFilter) (*ports.Page[*domain.Asset], error) {
	if s.listFn == nil {
		return nil, errNotStubbed
	}
	return s.listFn(ctx, filter)
}

func (s *stubAssetService) UpdateAsset(ctx context.Context, id string, patch domain.AssetPatch) (bool, bool, error) {
	if s.updateFn == nil {
		return false, false, errNotStubbed
	}
	return s.updateFn(ctx, id, patch)
}

func (s *stubAssetService) DeleteAsset(ctx context.Context, id string) (bool, error) {
	if s.deleteFn == nil {
		return false, errNotStubbed
	}
	return s.deleteFn(ctx, id)
}

type stubRequestService struct {
	createFn  func(ctx context.Context, in ports.CreateRequestInput) (string, error)
	approveFn func(ctx context.Context, in ports.ApproveRequestInput) (*ports.ApprovalResult, error)
	rejectFn  func(ctx context.Context, id string) error
	returnFn  func(ctx context.Context, id string) (*ports.ReturnResult, error)
	deleteFn  func(ctx context.Context, id string) (bool, error)
	listFn    func(ctx context.Context, filter ports.RequestListFilter) (*ports.Page[*domain.AssetRequest], error)
}

func (s *stubRequestService) CreateRequest(ctx context.Context, in ports.CreateRequestInput) (string, error) {
	if s.createFn == nil {
		return "", errNotStubbed
	}
	return s.createFn(ctx, in)
}

func (s *stubRequestService) ApproveRequest(ctx context.Context, in ports.ApproveRequestInput) (*ports.ApprovalResult, error) {
	if s.approveFn == nil {
		return nil, errNotStubbed
	}
	return s.approveFn(ctx, in)
}

func (s *stubRequestService) RejectRequest(ctx context.Context, id string) error {
	if s.rejectFn == nil {
		return errNotStubbed
	}
	return s.rejectFn(ctx, id)
}

func (s *stubRequestService) ReturnRequest(ctx context.Context, id string) (*ports.ReturnResult, error) {
	if s.returnFn == nil {
		return nil, errNotStubbed
	}
	return s.returnFn(ctx, id)
}

func (s *stubRequestService) DeleteRequest(ctx context.Context, id string) (bool, error) {
	if s.deleteFn == nil {
		return false, errNotStubbed
	}
	return s.deleteFn(ctx, id)
}

func (s *stubRequestService) ListRequests(ctx context.Context, filter ports.RequestListFilter) (*ports.Page[*domain.AssetRequest], error) {
	if s.listFn == nil {
		return nil, errNotStubbed
	}
	return s.listFn(ctx, filter)
}

type stubAffiliationService struct {
	addFn    func(ctx context.Context, employeeID, hrEmail string) (string, bool, error)
	removeFn func(ctx context.Context, affiliationID, hrEmail string) error
	listFn   func(ctx context.Context, in ports.ListEmployeesInput) (*ports.Page[domain.EmployeeView], error)
}

func (s *stubAffiliationService) AddEmployee(ctx context.Context, employeeID, hrEmail string) (string, bool, error) {
	if s.addFn == nil {
		return "", false, errNotStubbed
	}
	return s.addFn(ctx, employeeID, hrEmail)
}

func (s *stubAffiliationService) RemoveAffiliation(ctx context.Context, affiliationID, hrEmail string) error {
	if s.removeFn == nil {
		return errNotStubbed
	}
	return s.removeFn(ctx, affiliationID, hrEmail)
}

func (s *stubAffiliationService) ListEmployees(ctx context.Context, in ports.ListEmployeesInput) (*ports.Page[domain.EmployeeView], error) {
	if s.listFn == nil {
		return nil, errNotStubbed
	}
	return s.listFn(ctx, in)
}

type stubPaymentService struct {
	checkoutFn func(ctx context.Context, hrEmail, packageID string) (*ports.CheckoutResult, error)
	confirmFn  func(ctx context.Context, in ports.ConfirmCheckoutInput) (*ports.ConfirmResult, error)
	listFn     func(ctx context.Context) ([]*domain.Package, error)
	getFn      func(ctx context.Context, id string) (*domain.Package, error)
}

func (s *stubPaymentService) CreateCheckout(ctx context.Context, hrEmail, packageID string) (*ports.CheckoutResult, error) {
	if s.checkoutFn == nil {
		return nil, errNotStubbed
	}
	return s.checkoutFn(ctx, hrEmail, packageID)
}

func (s *stubPaymentService) ConfirmCheckout(ctx context.Context, in ports.ConfirmCheckoutInput) (*ports.ConfirmResult, error) {
	if s.confirmFn == nil {
		return nil, errNotStubbed
	}
	return s.confirmFn(ctx, in)
}

func (s *stubPaymentService) ListPackages(ctx context.Context) ([]*domain.Package, error) {
	if s.listFn == nil {
		return nil, errNotStubbed
	}
	return s.listFn(ctx)
}

func (s *stubPaymentService) GetPackage(ctx context.Context, id string) (*domain.Package, error) {
	if s.getFn == nil {
		return nil, errNotStubbed
	}
	return s.getFn(ctx, id)
}

type stubDashboardService struct {
	pie []domain.TypeCount
	bar []domain.NameCount
	err error
}

func (s *stubDashboardService) AssetTypeBreakdown(context.Context) ([]domain.TypeCount, error) {
	return s.pie, s.err
}

func (s *stubDashboardService) TopRequestedAssets(context.Context) ([]domain.NameCount, error) {
	return s.bar, s.err
}
