package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

func newAffiliationFixture(limit int) (*AffiliationService, *stubAffiliationRepo, *stubUserRepo) {
	users := newStubUserRepo(
		&domain.User{ID: "hr-1", Email: hrEmail, Role: domain.RoleHR, CompanyName: "Acme", PackageLimit: limit},
		&domain.User{ID: "hr-2", Email: "hr@globex.com", Role: domain.RoleHR, CompanyName: "Globex", PackageLimit: limit},
		&domain.User{ID: "emp-1", Name: "Emp", Email: employeeEmail, PhotoURL: "p.png", Role: domain.RoleEmployee},
	)
	repo := newStubAffiliationRepo()
	capacity := NewCapacityPolicy(repo, newMutexLocker(), time.Second)
	return NewAffiliationService(repo, users, capacity, zerolog.Nop()), repo, users
}

func TestEnsureAffiliation_Idempotent(t *testing.T) {
	svc, repo, users := newAffiliationFixture(5)
	emp, _ := users.FindByID(context.Background(), "emp-1")
	hr, _ := users.FindByID(context.Background(), "hr-1")

	id1, created1, err := svc.EnsureAffiliation(context.Background(), emp, hr)
	if err != nil || !created1 {
		t.Fatalf("expected first call to create, got %v %v", created1, err)
	}
	hr.CompanyName = "ACME" // same company, different casing
	id2, created2, err := svc.EnsureAffiliation(context.Background(), emp, hr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created2 || id1 != id2 {
		t.Errorf("expected existing affiliation %s, got %s created=%v", id1, id2, created2)
	}
	if n := repo.count(); n != 1 {
		t.Errorf("expected one record, got %d", n)
	}
}

func TestAddEmployee(t *testing.T) {
	svc, repo, _ := newAffiliationFixture(1)

	id, created, err := svc.AddEmployee(context.Background(), "emp-1", hrEmail)
	if err != nil || !created || id == "" {
		t.Fatalf("expected created affiliation, got %q %v %v", id, created, err)
	}

	// A second company is an independent capacity pool.
	if _, _, err := svc.AddEmployee(context.Background(), "emp-1", "hr@globex.com"); err != nil {
		t.Fatalf("expected second company to admit, got %v", err)
	}
	if n := repo.count(); n != 2 {
		t.Errorf("expected 2 affiliations, got %d", n)
	}
}

func TestAddEmployee_AtLimit(t *testing.T) {
	svc, repo, users := newAffiliationFixture(1)
	users.put(&domain.User{ID: "emp-2", Email: "two@example.com", Role: domain.RoleEmployee})

	if _, _, err := svc.AddEmployee(context.Background(), "emp-1", hrEmail); err != nil {
		t.Fatalf("first add: %v", err)
	}
	_, _, err := svc.AddEmployee(context.Background(), "emp-2", hrEmail)
	if !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if n := repo.count(); n != 1 {
		t.Errorf("expected 1 affiliation, got %d", n)
	}
}

func TestAddEmployee_Errors(t *testing.T) {
	svc, _, _ := newAffiliationFixture(5)

	if _, _, err := svc.AddEmployee(context.Background(), "", hrEmail); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if _, _, err := svc.AddEmployee(context.Background(), "emp-1", employeeEmail); !errors.Is(err, domain.ErrHRNotFound) {
		t.Errorf("expected ErrHRNotFound, got %v", err)
	}
	if _, _, err := svc.AddEmployee(context.Background(), "ghost", hrEmail); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRemoveAffiliation(t *testing.T) {
	svc, repo, _ := newAffiliationFixture(5)
	id, _, err := svc.AddEmployee(context.Background(), "emp-1", hrEmail)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.RemoveAffiliation(context.Background(), id, ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation without hr email, got %v", err)
	}
	if err := svc.RemoveAffiliation(context.Background(), id, "nobody@acme.com"); !errors.Is(err, domain.ErrHRNotFound) {
		t.Errorf("expected ErrHRNotFound, got %v", err)
	}
	if err := svc.RemoveAffiliation(context.Background(), id, "hr@globex.com"); !errors.Is(err, domain.ErrAffiliationNotFound) {
		t.Errorf("expected other company's hr to miss, got %v", err)
	}
	if err := svc.RemoveAffiliation(context.Background(), id, hrEmail); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := repo.count(); n != 0 {
		t.Errorf("expected affiliation removed, got %d", n)
	}
	if err := svc.RemoveAffiliation(context.Background(), id, hrEmail); !errors.Is(err, domain.ErrAffiliationNotFound) {
		t.Errorf("expected ErrAffiliationNotFound on second removal, got %v", err)
	}
}

func TestListEmployees_JoinsProfiles(t *testing.T) {
	svc, repo, _ := newAffiliationFixture(5)
	if _, _, err := svc.AddEmployee(context.Background(), "emp-1", hrEmail); err != nil {
		t.Fatalf("add: %v", err)
	}
	repo.Ensure(context.Background(), &domain.Affiliation{
		EmployeeID: "gone", EmployeeEmail: "gone@example.com", CompanyName: "Acme", Status: domain.AffiliationActive,
	})

	page, err := svc.ListEmployees(context.Background(), ports.ListEmployeesInput{HREmail: hrEmail})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected 2 employees, got %d", page.Total)
	}
	byEmail := map[string]domain.EmployeeView{}
	for _, v := range page.Items {
		byEmail[v.Email] = v
	}
	if v := byEmail[employeeEmail]; v.Name != "Emp" || v.PhotoURL != "p.png" {
		t.Errorf("expected joined profile, got %+v", v)
	}
	if v := byEmail["gone@example.com"]; v.Name != "Unknown" {
		t.Errorf("expected Unknown for missing user, got %+v", v)
	}
}
