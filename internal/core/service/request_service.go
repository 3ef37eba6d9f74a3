package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
	"github.com/assetverse/asset-management/internal/pkg/metrics"
)

const compensationActor = "system:compensation"

// RequestServiceDeps wires the collaborators of RequestService.
type RequestServiceDeps struct {
	Requests     ports.RequestRepository
	Assets       ports.AssetRepository
	Inventory    ports.InventoryLedger
	Users        ports.UserRepository
	Affiliations *AffiliationService
	Capacity     *CapacityPolicy
	Audit        ports.RequestAuditor // optional
}

// RequestService drives an asset request through its lifecycle.
type RequestService struct {
	requests     ports.RequestRepository
	assets       ports.AssetRepository
	inventory    ports.InventoryLedger
	users        ports.UserRepository
	affiliations *AffiliationService
	capacity     *CapacityPolicy
	audit        ports.RequestAuditor
	logger       zerolog.Logger
	now          func() time.Time
}

func NewRequestService(deps RequestServiceDeps, logger zerolog.Logger) *RequestService {
	audit := deps.Audit
	if audit == nil {
		audit = nopAuditor{}
	}
	return &RequestService{
		requests:     deps.Requests,
		assets:       deps.Assets,
		inventory:    deps.Inventory,
		users:        deps.Users,
		affiliations: deps.Affiliations,
		capacity:     deps.Capacity,
		audit:        audit,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateRequest validates the asset and stores a pending request carrying a
// snapshot of the asset's current name.
func (s *RequestService) CreateRequest(ctx context.Context, in ports.CreateRequestInput) (string, error) {
	switch {
	case strings.TrimSpace(in.AssetID) == "":
		return "", fmt.Errorf("%w: assetId is required", domain.ErrValidation)
	case in.Quantity <= 0:
		return "", fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	case strings.TrimSpace(in.Email) == "":
		return "", fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	asset, err := s.assets.FindByID(ctx, in.AssetID)
	if err != nil {
		if errors.Is(err, domain.ErrAssetNotFound) {
			return "", fmt.Errorf("%w: asset not found", domain.ErrValidation)
		}
		return "", err
	}

	now := s.now()
	req := &domain.AssetRequest{
		AssetID:   asset.ID,
		AssetName: asset.Name,
		Quantity:  in.Quantity,
		UserName:  strings.TrimSpace(in.UserName),
		Email:     domain.NormalizeEmail(in.Email),
		Reason:    in.Reason,
		Status:    domain.StatusPending,
		CreatedAt: now,
		StatusHistory: []domain.StatusHistoryEntry{
			{Status: domain.StatusPending, Timestamp: now, Actor: domain.NormalizeEmail(in.Email)},
		},
	}

	id, err := s.requests.Create(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create asset request")
		return "", err
	}

	metrics.RequestsCreatedTotal.Inc()
	s.logger.Info().
		Str("request_id", id).
		Str("asset_id", asset.ID).
		Str("email", req.Email).
		Int("quantity", req.Quantity).
		Msg("asset request created")
	return id, nil
}

// ApproveRequest moves a pending request to approved, affiliates the
// employee with the HR's company and takes the stock out of inventory.
//
// The capacity lease is held from the limit check until the affiliation is
// written. Each committed write registers a compensation; a failure in a
// later step undoes the earlier ones before the error is returned.
func (s *RequestService) ApproveRequest(ctx context.Context, in ports.ApproveRequestInput) (*ports.ApprovalResult, error) {
	if err := validateApproval(in); err != nil {
		metrics.ApprovalFailuresTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	// 1. Load the request and check the body against it before any write.
	current, err := s.requests.FindByID(ctx, in.RequestID)
	if err != nil {
		metrics.ApprovalFailuresTotal.WithLabelValues(approvalFailureReason(err)).Inc()
		return nil, err
	}
	if err := checkApprovalTarget(current, in); err != nil {
		metrics.ApprovalFailuresTotal.WithLabelValues(approvalFailureReason(err)).Inc()
		return nil, err
	}

	// 2. Resolve HR.
	hr, err := resolveHR(ctx, s.users, in.HREmail)
	if err != nil {
		metrics.ApprovalFailuresTotal.WithLabelValues(approvalFailureReason(err)).Inc()
		return nil, err
	}

	// 3. Capacity check under the company lease.
	release, err := s.capacity.Reserve(ctx, hr.CompanyName, hr.PackageLimit)
	if err != nil {
		metrics.ApprovalFailuresTotal.WithLabelValues(approvalFailureReason(err)).Inc()
		if errors.Is(err, domain.ErrCapacityExceeded) {
			s.logger.Info().Str("company", hr.CompanyName).Int("limit", hr.PackageLimit).Msg("approval blocked by package limit")
		}
		return nil, err
	}
	defer release()

	sg := newSaga(in.RequestID, s.logger)
	fail := func(err error) (*ports.ApprovalResult, error) {
		metrics.ApprovalFailuresTotal.WithLabelValues(approvalFailureReason(err)).Inc()
		return nil, sg.abort(ctx, err)
	}

	// 4. pending → approved, conditional.
	approvedAt := s.now()
	req, err := s.requests.Transition(ctx, in.RequestID, ports.Transition{
		From:     domain.StatusPending,
		To:       domain.StatusApproved,
		At:       approvedAt,
		Actor:    hr.Email,
		Quantity: in.QuantityNeeded,
	})
	if err != nil {
		return fail(err)
	}
	sg.committed("revert_status", func(ctx context.Context) error {
		_, err := s.requests.Transition(ctx, in.RequestID, ports.Transition{
			From:  domain.StatusApproved,
			To:    domain.StatusPending,
			At:    s.now(),
			Actor: compensationActor,
		})
		return err
	})

	// 5. Resolve employee.
	employee, err := s.users.FindByEmail(ctx, in.EmployeeEmail)
	if err != nil {
		return fail(err)
	}

	// 6. Affiliation, create-if-absent.
	affID, created, err := s.affiliations.EnsureAffiliation(ctx, employee, hr)
	if err != nil {
		return fail(err)
	}
	if created {
		sg.committed("remove_affiliation", func(ctx context.Context) error {
			return s.affiliations.Revoke(ctx, affID)
		})
	}
	release()

	// 7. Guarded decrement; nothing to undo past this point.
	if err := s.inventory.Adjust(ctx, in.AssetID, -in.QuantityNeeded); err != nil {
		return fail(err)
	}
	metrics.InventoryAdjustmentsTotal.WithLabelValues("out").Inc()
	metrics.RequestTransitionsTotal.WithLabelValues(string(domain.StatusApproved)).Inc()

	s.audit.Enqueue(domain.RequestEvent{
		RequestID: req.ID,
		AssetID:   req.AssetID,
		From:      domain.StatusPending,
		To:        domain.StatusApproved,
		Actor:     hr.Email,
		Quantity:  in.QuantityNeeded,
		Timestamp: approvedAt,
	})
	s.logger.Info().
		Str("request_id", req.ID).
		Str("hr", hr.Email).
		Str("employee", employee.Email).
		Str("asset_id", in.AssetID).
		Int("quantity", in.QuantityNeeded).
		Bool("affiliation_created", created).
		Msg("asset request approved")

	return &ports.ApprovalResult{
		Request:            req,
		AffiliationID:      affID,
		AffiliationCreated: created,
	}, nil
}

// RejectRequest moves a pending request to rejected. A request that is
// missing or no longer pending is reported as not found.
func (s *RequestService) RejectRequest(ctx context.Context, requestID string) error {
	if strings.TrimSpace(requestID) == "" {
		return fmt.Errorf("%w: request id is required", domain.ErrValidation)
	}

	now := s.now()
	req, err := s.requests.Transition(ctx, requestID, ports.Transition{
		From: domain.StatusPending,
		To:   domain.StatusRejected,
		At:   now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrStatusConflict) {
			return fmt.Errorf("%w: no pending request with id %s", domain.ErrRequestNotFound, requestID)
		}
		return err
	}

	metrics.RequestTransitionsTotal.WithLabelValues(string(domain.StatusRejected)).Inc()
	s.audit.Enqueue(domain.RequestEvent{
		RequestID: req.ID,
		AssetID:   req.AssetID,
		From:      domain.StatusPending,
		To:        domain.StatusRejected,
		Quantity:  req.Quantity,
		Timestamp: now,
	})
	s.logger.Info().Str("request_id", req.ID).Msg("asset request rejected")
	return nil
}

// ReturnRequest moves an approved request to returned and puts the approved
// quantity back into stock. An asset deleted since approval leaves nothing to
// restore and the return still applies. Returning twice is a no-op flagged by
// AlreadyReturned.
func (s *RequestService) ReturnRequest(ctx context.Context, requestID string) (*ports.ReturnResult, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, fmt.Errorf("%w: request id is required", domain.ErrValidation)
	}

	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	switch req.Status {
	case domain.StatusReturned:
		return &ports.ReturnResult{Request: req, AlreadyReturned: true}, nil
	case domain.StatusApproved:
	default:
		return nil, fmt.Errorf("%w: cannot return a %s request", domain.ErrInvalidTransition, req.Status)
	}

	now := s.now()
	updated, err := s.requests.Transition(ctx, requestID, ports.Transition{
		From: domain.StatusApproved,
		To:   domain.StatusReturned,
		At:   now,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrStatusConflict) {
			return nil, err
		}
		// Lost a race against another return.
		current, findErr := s.requests.FindByID(ctx, requestID)
		if findErr == nil && current.Status == domain.StatusReturned {
			return &ports.ReturnResult{Request: current, AlreadyReturned: true}, nil
		}
		return nil, err
	}

	qty := updated.ReturnQuantity()
	if updated.AssetID != "" && qty > 0 {
		err := s.inventory.Adjust(ctx, updated.AssetID, qty)
		switch {
		case err == nil:
			metrics.InventoryAdjustmentsTotal.WithLabelValues("in").Inc()
		case errors.Is(err, domain.ErrAssetNotFound):
			s.logger.Warn().
				Str("request_id", updated.ID).
				Str("asset_id", updated.AssetID).
				Int("quantity", qty).
				Msg("returned asset no longer exists, stock not restored")
		default:
			sg := newSaga(requestID, s.logger)
			sg.committed("revert_status", func(ctx context.Context) error {
				_, err := s.requests.Transition(ctx, requestID, ports.Transition{
					From:  domain.StatusReturned,
					To:    domain.StatusApproved,
					At:    s.now(),
					Actor: compensationActor,
				})
				return err
			})
			return nil, sg.abort(ctx, fmt.Errorf("restore inventory: %w", err))
		}
	}

	metrics.RequestTransitionsTotal.WithLabelValues(string(domain.StatusReturned)).Inc()
	s.audit.Enqueue(domain.RequestEvent{
		RequestID: updated.ID,
		AssetID:   updated.AssetID,
		From:      domain.StatusApproved,
		To:        domain.StatusReturned,
		Quantity:  qty,
		Timestamp: now,
	})
	s.logger.Info().
		Str("request_id", updated.ID).
		Str("asset_id", updated.AssetID).
		Int("quantity", qty).
		Msg("asset returned")

	return &ports.ReturnResult{Request: updated}, nil
}

// DeleteRequest removes a request in any status. Stock is not restored.
func (s *RequestService) DeleteRequest(ctx context.Context, requestID string) (bool, error) {
	deleted, err := s.requests.Delete(ctx, requestID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Warn().Str("request_id", requestID).Msg("asset request deleted")
	}
	return deleted, nil
}

// ListRequests returns requests newest first, optionally for one requester.
func (s *RequestService) ListRequests(ctx context.Context, filter ports.RequestListFilter) (*ports.Page[*domain.AssetRequest], error) {
	filter.PageRequest = filter.PageRequest.Normalize()
	if filter.Email != "" {
		filter.Email = domain.NormalizeEmail(filter.Email)
	}
	items, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return ports.NewPage(items, total, filter.PageRequest), nil
}

func validateApproval(in ports.ApproveRequestInput) error {
	var missing []string
	if strings.TrimSpace(in.RequestID) == "" {
		missing = append(missing, "requestId")
	}
	if strings.TrimSpace(in.HREmail) == "" {
		missing = append(missing, "hrEmail")
	}
	if strings.TrimSpace(in.EmployeeEmail) == "" {
		missing = append(missing, "employeeEmail")
	}
	if strings.TrimSpace(in.AssetID) == "" {
		missing = append(missing, "assetId")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	if in.QuantityNeeded <= 0 {
		return fmt.Errorf("%w: quantityNeeded must be positive", domain.ErrValidation)
	}
	return nil
}

// checkApprovalTarget rejects a body that names another asset or requester
// than the stored request, and a request that is no longer pending.
func checkApprovalTarget(req *domain.AssetRequest, in ports.ApproveRequestInput) error {
	if req.Status != domain.StatusPending {
		return fmt.Errorf("%w: request %s is %s", domain.ErrStatusConflict, req.ID, req.Status)
	}
	if req.AssetID != in.AssetID {
		return fmt.Errorf("%w: assetId does not match the request", domain.ErrValidation)
	}
	if req.Email != "" && req.Email != domain.NormalizeEmail(in.EmployeeEmail) {
		return fmt.Errorf("%w: employeeEmail does not match the requester", domain.ErrValidation)
	}
	return nil
}

func approvalFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrHRNotFound):
		return "hr_not_found"
	case errors.Is(err, domain.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, domain.ErrStatusConflict):
		return "conflict"
	case errors.Is(err, domain.ErrRequestNotFound):
		return "request_not_found"
	case errors.Is(err, domain.ErrUserNotFound):
		return "employee_not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrAssetNotFound):
		return "asset_not_found"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrLockBusy):
		return "lock_busy"
	default:
		return "internal"
	}
}
