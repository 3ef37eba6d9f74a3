package ports

import (
	"context"

	"github.com/assetverse/asset-management/internal/core/domain"
)

// EventRepository persists the request transition audit trail.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.RequestEvent) error
}

// RequestAuditor accepts transition events for asynchronous persistence.
// Enqueue must not block the caller.
type RequestAuditor interface {
	Enqueue(event domain.RequestEvent)
}
