package ports

import (
	"context"

	"github.com/assetverse/asset-management/internal/core/domain"
)

// CreateRequestInput carries an employee's new asset request.
type CreateRequestInput struct {
	AssetID  string
	Quantity int
	UserName string
	Email    string
	Reason   string
}

// ApproveRequestInput carries an HR approval. QuantityNeeded is the amount
// the approval removes from stock.
type ApproveRequestInput struct {
	RequestID      string
	HREmail        string
	EmployeeEmail  string
	AssetID        string
	QuantityNeeded int
}

// ApprovalResult reports what an approval committed.
type ApprovalResult struct {
	Request            *domain.AssetRequest
	AffiliationID      string
	AffiliationCreated bool
}

// ReturnResult reports the outcome of a return. AlreadyReturned is set when
// the request had been returned before and nothing changed.
type ReturnResult struct {
	Request         *domain.AssetRequest
	AlreadyReturned bool
}

// RequestService defines the asset request lifecycle.
type RequestService interface {
	CreateRequest(ctx context.Context, in CreateRequestInput) (string, error)
	ApproveRequest(ctx context.Context, in ApproveRequestInput) (*ApprovalResult, error)
	RejectRequest(ctx context.Context, requestID string) error
	ReturnRequest(ctx context.Context, requestID string) (*ReturnResult, error)
	DeleteRequest(ctx context.Context, requestID string) (bool, error)
	ListRequests(ctx context.Context, filter RequestListFilter) (*Page[*domain.AssetRequest], error)
}
