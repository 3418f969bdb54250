package services

import (
	"context"
	"fmt"

	"edumart/internal/common"
	"edumart/internal/models"
	"edumart/internal/repositories"

	"github.com/google/uuid"
)

// ChangeRequestService runs the asynchronous plan-change workflow:
// pending -> approved | rejected, terminal once decided. Approving a request
// is equivalent to an admin-driven plan change, including the full counter
// reset.
type ChangeRequestService interface {
	Create(ctx context.Context, userID, requestedPlanID uuid.UUID, requestType string, notes *string) (*models.SubscriptionChangeRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionChangeRequest, error)
	List(ctx context.Context, status string, userID *uuid.UUID, limit, offset int) ([]*models.SubscriptionChangeRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.SubscriptionChangeRequest, error)
	Approve(ctx context.Context, id uuid.UUID, adminNotes *string) error
	Reject(ctx context.Context, id uuid.UUID, adminNotes *string) error
}

type changeRequestService struct {
	requestRepo     repositories.ChangeRequestRepository
	userRepo        repositories.UserRepository
	planRepo        repositories.PlanRepository
	subscriptionSvc SubscriptionService
}

// NewChangeRequestService creates a new ChangeRequestService instance
func NewChangeRequestService(
	requestRepo repositories.ChangeRequestRepository,
	userRepo repositories.UserRepository,
	planRepo repositories.PlanRepository,
	subscriptionSvc SubscriptionService,
) ChangeRequestService {
	return &changeRequestService{
		requestRepo:     requestRepo,
		userRepo:        userRepo,
		planRepo:        planRepo,
		subscriptionSvc: subscriptionSvc,
	}
}

func (s *changeRequestService) Create(ctx context.Context, userID, requestedPlanID uuid.UUID, requestType string, notes *string) (*models.SubscriptionChangeRequest, error) {
	switch requestType {
	case models.RequestTypeUpgrade, models.RequestTypeDowngrade, models.RequestTypeRenewal:
	default:
		return nil, fmt.Errorf("invalid request type %q: %w", requestType, common.ErrValidation)
	}

	pending, err := s.requestRepo.HasPending(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("user %s: %w", userID, common.ErrDuplicateRequest)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	plan, err := s.planRepo.GetByID(ctx, requestedPlanID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, fmt.Errorf("plan %q is not available: %w", plan.Name, common.ErrValidation)
	}

	request := &models.SubscriptionChangeRequest{
		ID:              uuid.New(),
		UserID:          userID,
		CurrentPlanID:   user.Subscription.PlanID,
		RequestedPlanID: requestedPlanID,
		RequestType:     requestType,
		Status:          models.RequestPending,
		UserNotes:       notes,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create change request: %w", err)
	}
	return request, nil
}

func (s *changeRequestService) GetByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionChangeRequest, error) {
	return s.requestRepo.GetByID(ctx, id)
}

func (s *changeRequestService) List(ctx context.Context, status string, userID *uuid.UUID, limit, offset int) ([]*models.SubscriptionChangeRequest, error) {
	if status != "" {
		switch status {
		case models.RequestPending, models.RequestApproved, models.RequestRejected:
		default:
			return nil, fmt.Errorf("invalid status filter %q: %w", status, common.ErrValidation)
		}
	}
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.requestRepo.List(ctx, status, userID, limit, offset)
}

func (s *changeRequestService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.SubscriptionChangeRequest, error) {
	return s.List(ctx, "", &userID, limit, offset)
}

// Approve applies the requested plan to the requester's subscription and
// marks the request terminal. The plan change carries the request's notes.
func (s *changeRequestService) Approve(ctx context.Context, id uuid.UUID, adminNotes *string) error {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if request.IsTerminal() {
		return fmt.Errorf("change request already %s: %w", request.Status, common.ErrValidation)
	}

	notes := adminNotes
	if notes == nil {
		notes = request.UserNotes
	}
	if err := s.subscriptionSvc.ChangePlan(ctx, request.UserID, request.RequestedPlanID, notes); err != nil {
		return fmt.Errorf("failed to apply plan change: %w", err)
	}

	return s.requestRepo.UpdateStatus(ctx, id, models.RequestApproved, adminNotes)
}

// Reject only records the decision; the subscription is untouched.
func (s *changeRequestService) Reject(ctx context.Context, id uuid.UUID, adminNotes *string) error {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if request.IsTerminal() {
		return fmt.Errorf("change request already %s: %w", request.Status, common.ErrValidation)
	}

	return s.requestRepo.UpdateStatus(ctx, id, models.RequestRejected, adminNotes)
}
