package services

import (
	"context"
	"time"

	"edumart/internal/entitlement"
	"edumart/internal/models"

	"github.com/google/uuid"
)

// CheckResult carries everything a client needs to render an upgrade prompt
// without a follow-up call. Denial is a normal result, never an error.
type CheckResult struct {
	Allowed         bool              `json:"allowed"`
	Remaining       int               `json:"remaining"`
	LimitReached    bool              `json:"limit_reached"`
	RequiresUpgrade bool              `json:"requires_upgrade,omitempty"`
	Reason          string            `json:"reason,omitempty"`
	SuggestedAction string            `json:"suggested_action,omitempty"`
	Subscription    *SubscriptionView `json:"subscription,omitempty"`
}

// EntitlementService is the operation surface collaborators call before any
// side-effecting marketplace action.
type EntitlementService interface {
	CheckBrowseLimit(ctx context.Context, userID uuid.UUID) (*CheckResult, error)
	CheckListingLimit(ctx context.Context, userID uuid.UUID) (*CheckResult, error)
	CheckJobPostLimit(ctx context.Context, userID uuid.UUID) (*CheckResult, error)
	CheckListingVisibility(ctx context.Context, listingCreatedAt time.Time, ownerID uuid.UUID, viewerID *uuid.UUID) (*entitlement.Visibility, error)
	CheckNotificationPermission(ctx context.Context, userID uuid.UUID) (bool, error)
}

type entitlementService struct {
	subscriptionSvc SubscriptionService
	now             func() time.Time
}

// NewEntitlementService creates a new EntitlementService instance
func NewEntitlementService(subscriptionSvc SubscriptionService) EntitlementService {
	return &entitlementService{
		subscriptionSvc: subscriptionSvc,
		now:             time.Now,
	}
}

func (s *entitlementService) CheckBrowseLimit(ctx context.Context, userID uuid.UUID) (*CheckResult, error) {
	return s.check(ctx, userID, entitlement.ActionBrowse)
}

func (s *entitlementService) CheckListingLimit(ctx context.Context, userID uuid.UUID) (*CheckResult, error) {
	return s.check(ctx, userID, entitlement.ActionCreateListing)
}

func (s *entitlementService) CheckJobPostLimit(ctx context.Context, userID uuid.UUID) (*CheckResult, error) {
	return s.check(ctx, userID, entitlement.ActionPostJob)
}

func (s *entitlementService) check(ctx context.Context, userID uuid.UUID, action entitlement.Action) (*CheckResult, error) {
	user, plan, err := s.subscriptionSvc.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}

	decision := entitlement.Decide(&user.Subscription, plan, user.Role, action, s.now())

	result := &CheckResult{
		Allowed:         decision.Allowed,
		Remaining:       decision.Remaining,
		LimitReached:    decision.LimitReached,
		RequiresUpgrade: decision.RequiresUpgrade,
		Reason:          decision.Reason,
	}
	if decision.RequiresUpgrade {
		result.SuggestedAction = "upgrade your plan"
	}
	if user.Subscription.HasPlan() {
		result.Subscription = viewOf(&user.Subscription)
	}
	return result, nil
}

// CheckListingVisibility decides whether a viewer may already see a freshly
// created listing. A nil viewerID is an anonymous visitor and gets the most
// restrictive delay.
func (s *entitlementService) CheckListingVisibility(ctx context.Context, listingCreatedAt time.Time, ownerID uuid.UUID, viewerID *uuid.UUID) (*entitlement.Visibility, error) {
	now := s.now()

	if viewerID == nil {
		v := entitlement.ListingVisibility(listingCreatedAt, nil, nil, "", false, now)
		return &v, nil
	}

	user, plan, err := s.subscriptionSvc.Ensure(ctx, *viewerID)
	if err != nil {
		return nil, err
	}

	isOwner := *viewerID == ownerID
	v := entitlement.ListingVisibility(listingCreatedAt, &user.Subscription, plan, user.Role, isOwner, now)
	return &v, nil
}

func (s *entitlementService) CheckNotificationPermission(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, plan, err := s.subscriptionSvc.Ensure(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.Role == models.RoleAdmin {
		return true, nil
	}
	return entitlement.NotificationAllowed(&user.Subscription, plan, user.Role), nil
}
