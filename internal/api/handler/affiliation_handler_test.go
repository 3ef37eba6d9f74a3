package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/assetverse/asset-management/internal/api/middleware"
	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

func asHR(c echo.Context, email string) echo.Context {
	c.Set(middleware.HREmailKey, email)
	return c
}

func TestAffiliationHandler_ListEmployees(t *testing.T) {
	stub := &stubAffiliationService{
		listFn: func(ctx context.Context, in ports.ListEmployeesInput) (*ports.Page[domain.EmployeeView], error) {
			if in.HREmail != "hr@acme.com" || in.Search != "bob" {
				t.Fatalf("unexpected input %+v", in)
			}
			return ports.NewPage([]domain.EmployeeView{{AffiliationID: "f1", Email: "bob@acme.com"}}, 1, in.PageRequest), nil
		},
	}
	c, rec := newContext(http.MethodGet, "/hr/employees?search=bob", "")

	if err := NewAffiliationHandler(stub).ListEmployees(asHR(c, "hr@acme.com")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp employeeListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Total != 1 || len(resp.Employees) != 1 || resp.Employees[0].AffiliationID != "f1" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAffiliationHandler_RequiresHR(t *testing.T) {
	h := NewAffiliationHandler(&stubAffiliationService{})
	c, _ := newContext(http.MethodDelete, "/affiliations/f1", "")

	err := h.Remove(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAffiliationHandler_Add(t *testing.T) {
	created := true
	stub := &stubAffiliationService{
		addFn: func(ctx context.Context, employeeID, hrEmail string) (string, bool, error) {
			if employeeID != "u7" || hrEmail != "hr@acme.com" {
				t.Fatalf("unexpected args %s %s", employeeID, hrEmail)
			}
			return "f1", created, nil
		},
	}
	h := NewAffiliationHandler(stub)

	c, rec := newContext(http.MethodPost, "/affiliations/u7", "")
	if err := h.Add(withID(asHR(c, "hr@acme.com"), "u7")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	created = false
	c, rec = newContext(http.MethodPost, "/affiliations/u7", "")
	if err := h.Add(withID(asHR(c, "hr@acme.com"), "u7")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for an existing affiliation, got %d", rec.Code)
	}
}

func TestAffiliationHandler_Remove(t *testing.T) {
	stub := &stubAffiliationService{
		removeFn: func(ctx context.Context, affiliationID, hrEmail string) error {
			if affiliationID != "f1" {
				return domain.ErrAffiliationNotFound
			}
			return nil
		},
	}
	h := NewAffiliationHandler(stub)

	c, rec := newContext(http.MethodDelete, "/affiliations/f1", "")
	c.SetParamNames("affiliationId")
	c.SetParamValues("f1")
	if err := h.Remove(asHR(c, "hr@acme.com")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Body.String() != "{\"success\":true}\n" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}

	c, _ = newContext(http.MethodDelete, "/affiliations/f2", "")
	c.SetParamNames("affiliationId")
	c.SetParamValues("f2")
	if err := h.Remove(asHR(c, "hr@acme.com")); !errors.Is(err, domain.ErrAffiliationNotFound) {
		t.Fatalf("expected ErrAffiliationNotFound, got %v", err)
	}
}
