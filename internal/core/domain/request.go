package domain

import "time"

// RequestStatus is the lifecycle state of an asset request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
	StatusReturned RequestStatus = "returned"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[RequestStatus][]RequestStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusReturned},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s RequestStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// StatusHistoryEntry records a single status transition on a request.
type StatusHistoryEntry struct {
	Status    RequestStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Actor     string        `json:"actor,omitempty"`
}

// AssetRequest is an employee's request for a quantity of one asset.
//
// AssetName is a point-in-time copy taken when the request is created;
// renaming the asset later does not touch existing requests.
type AssetRequest struct {
	ID               string               `json:"id"`
	AssetID          string               `json:"assetId"`
	AssetName        string               `json:"assetName"`
	Quantity         int                  `json:"quantity"`
	ApprovedQuantity int                  `json:"approvedQuantity,omitempty"` // taken out of stock on approval
	UserName         string               `json:"userName"`
	Email            string               `json:"email"`
	Reason           string               `json:"reason,omitempty"`
	Status           RequestStatus        `json:"status"`
	CreatedAt        time.Time            `json:"createdAt"`
	ApprovalDate     *time.Time           `json:"approvalDate,omitempty"`
	ReturnedAt       *time.Time           `json:"returnedAt,omitempty"`
	StatusHistory    []StatusHistoryEntry `json:"statusHistory,omitempty"`
}

// ReturnQuantity is the amount a return puts back: what approval removed,
// or the requested quantity for records approved before it was stored.
func (r *AssetRequest) ReturnQuantity() int {
	if r.ApprovedQuantity > 0 {
		return r.ApprovedQuantity
	}
	return r.Quantity
}

// RequestEvent is the audit record of one status transition.
type RequestEvent struct {
	RequestID string
	AssetID   string
	From      RequestStatus
	To        RequestStatus
	Actor     string
	Quantity  int
	Timestamp time.Time
}
