package ports

import (
	"context"

	"github.com/assetverse/asset-management/internal/core/domain"
)

// ListEmployeesInput scopes an employee listing to the HR's company.
type ListEmployeesInput struct {
	HREmail string
	Search  string
	PageRequest
}

type AffiliationService interface {
	// AddEmployee affiliates an employee with the HR's company under the
	// capacity policy.
	AddEmployee(ctx context.Context, employeeID, hrEmail string) (id string, created bool, err error)
	RemoveAffiliation(ctx context.Context, affiliationID, hrEmail string) error
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*Page[domain.EmployeeView], error)
}
