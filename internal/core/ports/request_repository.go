package ports

import (
	"context"
	"time"

	"github.com/assetverse/asset-management/internal/core/domain"
)

// RequestListFilter narrows a request listing; Email matches the requester.
type RequestListFilter struct {
	Email string
	PageRequest
}

// Transition describes a conditional status change.
type Transition struct {
	From  domain.RequestStatus
	To    domain.RequestStatus
	At    time.Time
	Actor string
	// Quantity is recorded as the approved quantity on pending → approved.
	Quantity int
}

// RequestRepository defines persistence operations for asset requests.
type RequestRepository interface {
	Create(ctx context.Context, r *domain.AssetRequest) (string, error)
	FindByID(ctx context.Context, id string) (*domain.AssetRequest, error)
	// List returns newest first.
	List(ctx context.Context, filter RequestListFilter) ([]*domain.AssetRequest, int64, error)
	// Transition atomically moves the request from t.From to t.To, stamping
	// the matching timestamp and appending a history entry. It returns the
	// updated request, or domain.ErrStatusConflict when no request with that
	// id is currently in t.From.
	Transition(ctx context.Context, id string, t Transition) (*domain.AssetRequest, error)
	Delete(ctx context.Context, id string) (bool, error)
	TopRequested(ctx context.Context, n int) ([]domain.NameCount, error)
}
