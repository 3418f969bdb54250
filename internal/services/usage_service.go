package services

import (
	"context"
	"fmt"

	"edumart/internal/entitlement"
	"edumart/internal/repositories"

	"github.com/google/uuid"
)

// UsageResult reports a counter mutation. A non-active subscription makes
// the mutation a no-op reported through Success=false, never an error, so
// callers can degrade gracefully.
type UsageResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	NewValue int    `json:"new_value"`
}

// UsageService is the usage ledger: counter mutations with idempotent resets
// and a hard non-negativity guarantee (enforced by the atomic SQL update in
// the repository, not by application arithmetic).
type UsageService interface {
	Increment(ctx context.Context, userID uuid.UUID, counter entitlement.Counter) (*UsageResult, error)
	Decrement(ctx context.Context, userID uuid.UUID, counter entitlement.Counter) (*UsageResult, error)
	ResetCounter(ctx context.Context, userID uuid.UUID, counter entitlement.Counter) error
}

type usageService struct {
	userRepo        repositories.UserRepository
	subscriptionSvc SubscriptionService
}

// NewUsageService creates a new UsageService instance
func NewUsageService(userRepo repositories.UserRepository, subscriptionSvc SubscriptionService) UsageService {
	return &usageService{
		userRepo:        userRepo,
		subscriptionSvc: subscriptionSvc,
	}
}

func (s *usageService) Increment(ctx context.Context, userID uuid.UUID, counter entitlement.Counter) (*UsageResult, error) {
	return s.adjust(ctx, userID, counter, 1)
}

func (s *usageService) Decrement(ctx context.Context, userID uuid.UUID, counter entitlement.Counter) (*UsageResult, error) {
	return s.adjust(ctx, userID, counter, -1)
}

func (s *usageService) adjust(ctx context.Context, userID uuid.UUID, counter entitlement.Counter, delta int) (*UsageResult, error) {
	user, _, err := s.subscriptionSvc.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.Subscription.IsActive() {
		status := user.Subscription.Status
		if !user.Subscription.HasPlan() {
			status = "missing"
		}
		used, _ := entitlement.CounterPair(&user.Subscription, counter)
		return &UsageResult{
			Success:  false,
			Message:  fmt.Sprintf("usage not recorded: subscription is %s", status),
			NewValue: used,
		}, nil
	}

	newValue, err := s.userRepo.AdjustCounter(ctx, userID, counter, delta)
	if err != nil {
		return nil, err
	}
	return &UsageResult{Success: true, NewValue: newValue}, nil
}

func (s *usageService) ResetCounter(ctx context.Context, userID uuid.UUID, counter entitlement.Counter) error {
	return s.userRepo.ResetCounter(ctx, userID, counter)
}
