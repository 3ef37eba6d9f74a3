package ports

import (
	"context"

	"github.com/assetverse/asset-management/internal/core/domain"
)

// AffiliationListFilter narrows the active affiliations of one company.
// Search matches the employee email.
type AffiliationListFilter struct {
	CompanyName string
	Search      string
	PageRequest
}

// AffiliationRepository defines persistence operations for affiliations.
type AffiliationRepository interface {
	// Ensure inserts a when no affiliation exists for its (employee, company)
	// pair, company matched case-insensitively. created reports whether this
	// call inserted; id is the stored affiliation's id either way.
	Ensure(ctx context.Context, a *domain.Affiliation) (id string, created bool, err error)
	CountActive(ctx context.Context, companyName string) (int64, error)
	ListByCompany(ctx context.Context, filter AffiliationListFilter) ([]*domain.Affiliation, int64, error)
	// DeleteForCompany removes the affiliation only when it belongs to companyName.
	DeleteForCompany(ctx context.Context, id, companyName string) (bool, error)
	Delete(ctx context.Context, id string) error
}
