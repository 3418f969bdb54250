package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"edumart/internal/caching"
	"edumart/internal/common"
	"edumart/internal/entitlement"
	"edumart/internal/models"
	"edumart/internal/repositories"

	"github.com/google/uuid"
)

// SubscriptionView is the client-facing shape of a subscription record.
type SubscriptionView struct {
	PlanID           *uuid.UUID `json:"plan_id"`
	PlanName         string     `json:"plan_name"`
	Status           string     `json:"status"`
	PaymentStatus    string     `json:"payment_status"`
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
	ListingsUsed     int        `json:"listings_used"`
	ListingsLimit    int        `json:"listings_limit"`
	JobPostsUsed     int        `json:"job_posts_used"`
	JobPostsLimit    int        `json:"job_posts_limit"`
	BrowseCount      int        `json:"browse_count"`
	BrowseCountLimit int        `json:"browse_count_limit"`
	LastBrowseReset  *time.Time `json:"last_browse_reset"`
}

// SubscriptionService owns the subscription record lifecycle. Every read
// path runs through Ensure, which applies time effects (lazy expiry, browse
// rollover) and lazy default assignment before anything else sees the record.
type SubscriptionService interface {
	Ensure(ctx context.Context, userID uuid.UUID) (*models.User, *models.Plan, error)
	Resolve(ctx context.Context, userID uuid.UUID) (*SubscriptionView, error)
	Assign(ctx context.Context, userID, planID uuid.UUID, notes *string) error
	Extend(ctx context.Context, userID uuid.UUID, newEnd time.Time) error
	ChangePlan(ctx context.Context, userID, planID uuid.UUID, notes *string) error
	Suspend(ctx context.Context, userID uuid.UUID) error
	Reactivate(ctx context.Context, userID uuid.UUID) error
	Cancel(ctx context.Context, userID uuid.UUID) error
	Continue(ctx context.Context, userID uuid.UUID, newEnd time.Time) error
	ResetBrowseCount(ctx context.Context, userID uuid.UUID) error
}

type subscriptionService struct {
	userRepo repositories.UserRepository
	planRepo repositories.PlanRepository
	cacheSvc caching.CacheService
	now      func() time.Time
}

// NewSubscriptionService creates a new SubscriptionService instance
func NewSubscriptionService(
	userRepo repositories.UserRepository,
	planRepo repositories.PlanRepository,
	cacheSvc caching.CacheService,
) SubscriptionService {
	return &subscriptionService{
		userRepo: userRepo,
		planRepo: planRepo,
		cacheSvc: cacheSvc,
		now:      time.Now,
	}
}

// Ensure loads the user, folds in time effects, and lazily assigns the
// persona's default free plan when no subscription exists. It returns the
// user together with the resolved plan (nil when the persona has no default
// plan, which consumers treat as the anonymous tier).
func (s *subscriptionService) Ensure(ctx context.Context, userID uuid.UUID) (*models.User, *models.Plan, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	if entitlement.ApplyTimeEffects(&user.Subscription, now) {
		if err := s.userRepo.UpdateSubscription(ctx, userID, &user.Subscription); err != nil {
			return nil, nil, fmt.Errorf("failed to persist time effects: %w", err)
		}
	}

	if user.Subscription.HasPlan() {
		plan, err := s.resolvePlan(ctx, *user.Subscription.PlanID)
		if err != nil {
			return nil, nil, err
		}
		return user, plan, nil
	}

	if user.IsAdmin() {
		return user, nil, nil
	}

	plan, err := s.planRepo.FindDefaultForPersona(ctx, user.Role)
	if err != nil {
		// No default plan configured for this persona: the user stays on
		// the anonymous tier rather than failing the gated action.
		log.Printf("WARN: lazy assignment skipped for user %s: %v", userID, err)
		return user, nil, nil
	}

	s.applyPlan(&user.Subscription, plan, now, nil)
	if err := s.userRepo.UpdateSubscription(ctx, userID, &user.Subscription); err != nil {
		return nil, nil, fmt.Errorf("failed to assign default plan: %w", err)
	}
	return user, plan, nil
}

func (s *subscriptionService) Resolve(ctx context.Context, userID uuid.UUID) (*SubscriptionView, error) {
	user, _, err := s.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Subscription.HasPlan() {
		return nil, nil
	}
	return viewOf(&user.Subscription), nil
}

func (s *subscriptionService) Assign(ctx context.Context, userID, planID uuid.UUID, notes *string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	plan, err := s.resolvePlan(ctx, planID)
	if err != nil {
		return err
	}

	s.applyPlan(&user.Subscription, plan, s.now(), notes)
	return s.userRepo.UpdateSubscription(ctx, userID, &user.Subscription)
}

// Extend moves the end date only. Counters and limits stay as they are;
// status is forced back to active.
func (s *subscriptionService) Extend(ctx context.Context, userID uuid.UUID, newEnd time.Time) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.Subscription.HasPlan() {
		return fmt.Errorf("user %s has no subscription to extend: %w", userID, common.ErrNotFound)
	}
	if err := common.ValidateFutureDate(newEnd, "end_date"); err != nil {
		return fmt.Errorf("%v: %w", err, common.ErrValidation)
	}

	user.Subscription.EndDate = &newEnd
	user.Subscription.Status = models.SubscriptionActive
	return s.userRepo.UpdateSubscription(ctx, userID, &user.Subscription)
}

// ChangePlan re-snapshots limits from the new plan and resets every usage
// counter; this is the transition approved change requests run through.
func (s *subscriptionService) ChangePlan(ctx context.Context, userID, planID uuid.UUID, notes *string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	plan, err := s.resolvePlan(ctx, planID)
	if err != nil {
		return err
	}

	s.applyPlan(&user.Subscription, plan, s.now(), notes)
	return s.userRepo.UpdateSubscription(ctx, userID, &user.Subscription)
}

// Suspend blocks all gated actions regardless of remaining quota.
func (s *subscriptionService) Suspend(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.Subscription.HasPlan() {
		return fmt.Errorf("user %s has no subscription to suspend: %w", userID, common.ErrNotFound)
	}

	user.Subscription.Status = models.SubscriptionSuspended
	return s.userRepo.UpdateSubscription(ctx, userID, &user.Subscription)
}

// Reactivate is only legal while the billing period has not lapsed; callers
// must Extend first otherwise.
func (s *subscriptionService) Reactivate(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.Subscription.HasPlan() {
		return fmt.Errorf("user %s has no subscription to reactivate: %w", userID, common.ErrNotFound)
	}
	if user.Subscription.EndDate != nil && s.now().After(*user.Subscription.EndDate) {
		return fmt.Errorf("cannot reactivate: %w", common.ErrExpired)
	}

	user.Subscription.Status = models.SubscriptionActive
	return s.userRepo.UpdateSubscription(ctx, userID, &user.Subscription)
}

// Cancel clears the record entirely; the next gated action triggers lazy
// assignment again.
func (s *subscriptionService) Cancel(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.ClearSubscription(ctx, userID)
}

// Continue is the self-service renewal: the owner supplies the new end date.
func (s *subscriptionService) Continue(ctx context.Context, userID uuid.UUID, newEnd time.Time) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.Subscription.HasPlan() {
		return fmt.Errorf("user %s has no subscription to continue: %w", userID, common.ErrNotFound)
	}
	if err := common.ValidateFutureDate(newEnd, "end_date"); err != nil {
		return fmt.Errorf("%v: %w", err, common.ErrValidation)
	}

	user.Subscription.EndDate = &newEnd
	user.Subscription.Status = models.SubscriptionActive
	return s.userRepo.UpdateSubscription(ctx, userID, &user.Subscription)
}

func (s *subscriptionService) ResetBrowseCount(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.ResetCounter(ctx, userID, entitlement.CounterBrowse)
}

// applyPlan runs the assign/change-plan transition: snapshot limits, zero
// counters, stamp the billing window, set payment status from price.
func (s *subscriptionService) applyPlan(sub *models.Subscription, plan *models.Plan, now time.Time, notes *string) {
	planID := plan.ID
	end := now.AddDate(0, 0, plan.DurationDays)

	sub.PlanID = &planID
	sub.PlanName = plan.Name
	sub.Status = models.SubscriptionActive
	sub.StartDate = &now
	sub.EndDate = &end
	sub.SnapshotLimits(plan)
	sub.ResetCounters(now)
	if notes != nil {
		sub.Notes = notes
	}

	if plan.IsFree() {
		sub.PaymentStatus = models.PaymentCompleted
	} else {
		sub.PaymentStatus = models.PaymentPending
	}
}

func (s *subscriptionService) resolvePlan(ctx context.Context, planID uuid.UUID) (*models.Plan, error) {
	if cached, err := s.cacheSvc.GetPlan(ctx, planID); err == nil && cached != nil {
		return cached, nil
	}

	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	if err := s.cacheSvc.SetPlan(ctx, plan, planCacheTTL); err != nil {
		log.Printf("WARN: failed to cache plan %s: %v", planID, err)
	}
	return plan, nil
}

func viewOf(sub *models.Subscription) *SubscriptionView {
	return &SubscriptionView{
		PlanID:           sub.PlanID,
		PlanName:         sub.PlanName,
		Status:           sub.Status,
		PaymentStatus:    sub.PaymentStatus,
		StartDate:        sub.StartDate,
		EndDate:          sub.EndDate,
		ListingsUsed:     sub.ListingsUsed,
		ListingsLimit:    sub.ListingsLimit,
		JobPostsUsed:     sub.JobPostsUsed,
		JobPostsLimit:    sub.JobPostsLimit,
		BrowseCount:      sub.BrowseCount,
		BrowseCountLimit: sub.BrowseCountLimit,
		LastBrowseReset:  sub.LastBrowseReset,
	}
}
