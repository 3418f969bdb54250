package services

import (
	"context"
	"time"

	"edumart/internal/entitlement"
	"edumart/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateSubscription(ctx context.Context, userID uuid.UUID, sub *models.Subscription) error {
	args := m.Called(ctx, userID, sub)
	return args.Error(0)
}

func (m *MockUserRepository) ClearSubscription(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) AdjustCounter(ctx context.Context, userID uuid.UUID, counter entitlement.Counter, delta int) (int, error) {
	args := m.Called(ctx, userID, counter, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) ResetCounter(ctx context.Context, userID uuid.UUID, counter entitlement.Counter) error {
	args := m.Called(ctx, userID, counter)
	return args.Error(0)
}

func (m *MockUserRepository) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ResetStaleBrowseCounts(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) GlobalStats(ctx context.Context, expiringWithin time.Duration) (*models.GlobalSubscriptionStats, error) {
	args := m.Called(ctx, expiringWithin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GlobalSubscriptionStats), args.Error(1)
}

func (m *MockUserRepository) PlanSubscriberCounts(ctx context.Context) ([]*models.PlanSubscriberCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PlanSubscriberCount), args.Error(1)
}

type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) Create(ctx context.Context, plan *models.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *MockPlanRepository) GetByName(ctx context.Context, name string) (*models.Plan, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *MockPlanRepository) ListActive(ctx context.Context, persona string) ([]*models.Plan, error) {
	args := m.Called(ctx, persona)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Plan), args.Error(1)
}

func (m *MockPlanRepository) FindDefaultForPersona(ctx context.Context, persona string) (*models.Plan, error) {
	args := m.Called(ctx, persona)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *MockPlanRepository) Update(ctx context.Context, plan *models.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

type MockChangeRequestRepository struct {
	mock.Mock
}

func (m *MockChangeRequestRepository) Create(ctx context.Context, req *models.SubscriptionChangeRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockChangeRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionChangeRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionChangeRequest), args.Error(1)
}

func (m *MockChangeRequestRepository) HasPending(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChangeRequestRepository) List(ctx context.Context, status string, userID *uuid.UUID, limit, offset int) ([]*models.SubscriptionChangeRequest, error) {
	args := m.Called(ctx, status, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SubscriptionChangeRequest), args.Error(1)
}

func (m *MockChangeRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, adminNotes *string) error {
	args := m.Called(ctx, id, status, adminNotes)
	return args.Error(0)
}

type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) Ensure(ctx context.Context, userID uuid.UUID) (*models.User, *models.Plan, error) {
	args := m.Called(ctx, userID)
	var user *models.User
	var plan *models.Plan
	if args.Get(0) != nil {
		user = args.Get(0).(*models.User)
	}
	if args.Get(1) != nil {
		plan = args.Get(1).(*models.Plan)
	}
	return user, plan, args.Error(2)
}

func (m *MockSubscriptionService) Resolve(ctx context.Context, userID uuid.UUID) (*SubscriptionView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubscriptionView), args.Error(1)
}

func (m *MockSubscriptionService) Assign(ctx context.Context, userID, planID uuid.UUID, notes *string) error {
	args := m.Called(ctx, userID, planID, notes)
	return args.Error(0)
}

func (m *MockSubscriptionService) Extend(ctx context.Context, userID uuid.UUID, newEnd time.Time) error {
	args := m.Called(ctx, userID, newEnd)
	return args.Error(0)
}

func (m *MockSubscriptionService) ChangePlan(ctx context.Context, userID, planID uuid.UUID, notes *string) error {
	args := m.Called(ctx, userID, planID, notes)
	return args.Error(0)
}

func (m *MockSubscriptionService) Suspend(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockSubscriptionService) Reactivate(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockSubscriptionService) Cancel(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockSubscriptionService) Continue(ctx context.Context, userID uuid.UUID, newEnd time.Time) error {
	args := m.Called(ctx, userID, newEnd)
	return args.Error(0)
}

func (m *MockSubscriptionService) ResetBrowseCount(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockCacheService always misses on reads so service tests exercise the
// repository path; writes succeed silently.
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetPlan(ctx context.Context, planID uuid.UUID) (*models.Plan, error) {
	return nil, nil
}

func (m *MockCacheService) SetPlan(ctx context.Context, plan *models.Plan, ttl time.Duration) error {
	return nil
}

func (m *MockCacheService) GetActivePlans(ctx context.Context, persona string) ([]*models.Plan, error) {
	return nil, nil
}

func (m *MockCacheService) SetActivePlans(ctx context.Context, persona string, plans []*models.Plan, ttl time.Duration) error {
	return nil
}

func (m *MockCacheService) InvalidatePlans(ctx context.Context) error {
	return nil
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return false, nil
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	return nil
}
