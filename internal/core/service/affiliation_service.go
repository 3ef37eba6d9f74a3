package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

// AffiliationService manages employee ↔ company links.
type AffiliationService struct {
	repo     ports.AffiliationRepository
	users    ports.UserRepository
	capacity *CapacityPolicy
	log      zerolog.Logger
	now      func() time.Time
}

func NewAffiliationService(
	repo ports.AffiliationRepository,
	users ports.UserRepository,
	capacity *CapacityPolicy,
	log zerolog.Logger,
) *AffiliationService {
	return &AffiliationService{
		repo:     repo,
		users:    users,
		capacity: capacity,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// EnsureAffiliation links employee to hr's company unless a link already
// exists. Calling it twice leaves a single record.
func (s *AffiliationService) EnsureAffiliation(ctx context.Context, employee, hr *domain.User) (string, bool, error) {
	id, created, err := s.repo.Ensure(ctx, &domain.Affiliation{
		EmployeeID:    employee.ID,
		EmployeeEmail: employee.Email,
		CompanyName:   hr.CompanyName,
		HREmail:       hr.Email,
		Status:        domain.AffiliationActive,
		JoinedAt:      s.now(),
	})
	if err != nil {
		return "", false, fmt.Errorf("ensure affiliation: %w", err)
	}
	if created {
		s.log.Info().
			Str("affiliation_id", id).
			Str("employee", employee.Email).
			Str("company", hr.CompanyName).
			Msg("employee affiliated")
	}
	return id, created, nil
}

// Revoke deletes an affiliation by id regardless of company.
func (s *AffiliationService) Revoke(ctx context.Context, affiliationID string) error {
	return s.repo.Delete(ctx, affiliationID)
}

// AddEmployee affiliates an employee with the HR's company, subject to the
// package limit. An existing link is returned unchanged.
func (s *AffiliationService) AddEmployee(ctx context.Context, employeeID, hrEmail string) (string, bool, error) {
	if strings.TrimSpace(employeeID) == "" {
		return "", false, fmt.Errorf("%w: employee id is required", domain.ErrValidation)
	}
	hr, err := resolveHR(ctx, s.users, hrEmail)
	if err != nil {
		return "", false, err
	}
	employee, err := s.users.FindByID(ctx, employeeID)
	if err != nil {
		return "", false, err
	}

	release, err := s.capacity.Reserve(ctx, hr.CompanyName, hr.PackageLimit)
	if err != nil {
		return "", false, err
	}
	defer release()

	return s.EnsureAffiliation(ctx, employee, hr)
}

// RemoveAffiliation deletes an affiliation belonging to the HR's company.
func (s *AffiliationService) RemoveAffiliation(ctx context.Context, affiliationID, hrEmail string) error {
	hr, err := resolveHR(ctx, s.users, hrEmail)
	if err != nil {
		return err
	}

	deleted, err := s.repo.DeleteForCompany(ctx, affiliationID, hr.CompanyName)
	if err != nil {
		return fmt.Errorf("remove affiliation: %w", err)
	}
	if !deleted {
		return domain.ErrAffiliationNotFound
	}

	s.log.Info().
		Str("affiliation_id", affiliationID).
		Str("company", hr.CompanyName).
		Str("hr", hr.Email).
		Msg("employee affiliation removed")
	return nil
}

// ListEmployees returns the HR company's active affiliations joined with
// each employee's profile.
func (s *AffiliationService) ListEmployees(ctx context.Context, in ports.ListEmployeesInput) (*ports.Page[domain.EmployeeView], error) {
	hr, err := resolveHR(ctx, s.users, in.HREmail)
	if err != nil {
		return nil, err
	}

	page := in.PageRequest.Normalize()
	affs, total, err := s.repo.ListByCompany(ctx, ports.AffiliationListFilter{
		CompanyName: hr.CompanyName,
		Search:      in.Search,
		PageRequest: page,
	})
	if err != nil {
		return nil, fmt.Errorf("list affiliations: %w", err)
	}

	ids := make([]string, 0, len(affs))
	for _, a := range affs {
		ids = append(ids, a.EmployeeID)
	}
	employees, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load employees: %w", err)
	}
	byID := make(map[string]*domain.User, len(employees))
	for _, u := range employees {
		byID[u.ID] = u
	}

	views := make([]domain.EmployeeView, 0, len(affs))
	for _, a := range affs {
		v := domain.EmployeeView{
			AffiliationID: a.ID,
			EmployeeID:    a.EmployeeID,
			Name:          "Unknown",
			Email:         a.EmployeeEmail,
			Status:        a.Status,
			JoinedAt:      a.JoinedAt,
		}
		if u, ok := byID[a.EmployeeID]; ok {
			v.Name = u.Name
			v.PhotoURL = u.PhotoURL
		}
		views = append(views, v)
	}

	return ports.NewPage(views, total, page), nil
}
