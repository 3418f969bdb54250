package services

import (
	"context"
	"time"

	"edumart/internal/entitlement"
	"edumart/internal/models"
	"edumart/internal/repositories"

	"github.com/google/uuid"
)

// CounterUsage is one used/limit/remaining triple in a usage report.
type CounterUsage struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// UsageStats is the per-user reporting view.
type UsageStats struct {
	UserID    uuid.UUID    `json:"user_id"`
	PlanID    *uuid.UUID   `json:"plan_id"`
	PlanName  string       `json:"plan_name"`
	Status    string       `json:"status"`
	StartDate *time.Time   `json:"start_date"`
	EndDate   *time.Time   `json:"end_date"`
	Listings  CounterUsage `json:"listings"`
	JobPosts  CounterUsage `json:"job_posts"`
	Browse    CounterUsage `json:"browse"`
}

// StatsService provides the reporting surface.
type StatsService interface {
	GetUsageStats(ctx context.Context, userID uuid.UUID) (*UsageStats, error)
	GetGlobalStats(ctx context.Context) (*models.GlobalSubscriptionStats, error)
	GetPlanStats(ctx context.Context) ([]*models.PlanSubscriberCount, error)
}

type statsService struct {
	userRepo        repositories.UserRepository
	subscriptionSvc SubscriptionService
}

// NewStatsService creates a new StatsService instance
func NewStatsService(userRepo repositories.UserRepository, subscriptionSvc SubscriptionService) StatsService {
	return &statsService{
		userRepo:        userRepo,
		subscriptionSvc: subscriptionSvc,
	}
}

func (s *statsService) GetUsageStats(ctx context.Context, userID uuid.UUID) (*UsageStats, error) {
	user, _, err := s.subscriptionSvc.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}

	sub := &user.Subscription
	return &UsageStats{
		UserID:    user.ID,
		PlanID:    sub.PlanID,
		PlanName:  sub.PlanName,
		Status:    sub.Status,
		StartDate: sub.StartDate,
		EndDate:   sub.EndDate,
		Listings:  usageOf(sub, entitlement.CounterListings),
		JobPosts:  usageOf(sub, entitlement.CounterJobPosts),
		Browse:    usageOf(sub, entitlement.CounterBrowse),
	}, nil
}

func (s *statsService) GetGlobalStats(ctx context.Context) (*models.GlobalSubscriptionStats, error) {
	return s.userRepo.GlobalStats(ctx, 7*24*time.Hour)
}

func (s *statsService) GetPlanStats(ctx context.Context) ([]*models.PlanSubscriberCount, error) {
	return s.userRepo.PlanSubscriberCounts(ctx)
}

func usageOf(sub *models.Subscription, counter entitlement.Counter) CounterUsage {
	used, limit := entitlement.CounterPair(sub, counter)
	remaining := limit - used
	if limit == models.UnlimitedQuota {
		remaining = models.UnlimitedQuota
	} else if remaining < 0 {
		remaining = 0
	}
	return CounterUsage{Used: used, Limit: limit, Remaining: remaining}
}
