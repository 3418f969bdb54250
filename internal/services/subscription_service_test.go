package services

import (
	"context"
	"testing"
	"time"

	"edumart/internal/common"
	"edumart/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceTestSuite struct {
	suite.Suite
	userRepo *MockUserRepository
	planRepo *MockPlanRepository
	cacheSvc *MockCacheService
	service  SubscriptionService
	ctx      context.Context
	userID   uuid.UUID
}

func (suite *SubscriptionServiceTestSuite) SetupTest() {
	suite.userRepo = &MockUserRepository{}
	suite.planRepo = &MockPlanRepository{}
	suite.cacheSvc = &MockCacheService{}
	suite.service = NewSubscriptionService(suite.userRepo, suite.planRepo, suite.cacheSvc)
	suite.ctx = context.Background()
	suite.userID = uuid.New()

	suite.userRepo.Test(suite.T())
	suite.planRepo.Test(suite.T())
}

func (suite *SubscriptionServiceTestSuite) TearDownTest() {
	suite.userRepo.AssertExpectations(suite.T())
	suite.planRepo.AssertExpectations(suite.T())
}

func TestSubscriptionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceTestSuite))
}

func (suite *SubscriptionServiceTestSuite) freePlan(persona string) *models.Plan {
	return &models.Plan{
		ID:           uuid.New(),
		Name:         "free-" + persona,
		DisplayName:  "Free",
		Persona:      persona,
		Price:        0,
		DurationDays: 30,
		Features: models.PlanFeatures{
			MaxListings:        2,
			MaxJobPosts:        1,
			MaxBrowsesPerMonth: 20,
		},
		IsActive: true,
	}
}

func (suite *SubscriptionServiceTestSuite) subscribedUser(plan *models.Plan) *models.User {
	start := time.Now().AddDate(0, 0, -5)
	end := time.Now().AddDate(0, 0, 25)
	reset := start
	planID := plan.ID
	return &models.User{
		ID:   suite.userID,
		Role: plan.Persona,
		Subscription: models.Subscription{
			PlanID:           &planID,
			PlanName:         plan.Name,
			Status:           models.SubscriptionActive,
			PaymentStatus:    models.PaymentCompleted,
			StartDate:        &start,
			EndDate:          &end,
			ListingsLimit:    plan.Features.MaxListings,
			JobPostsLimit:    plan.Features.MaxJobPosts,
			BrowseCountLimit: plan.Features.MaxBrowsesPerMonth,
			LastBrowseReset:  &reset,
		},
	}
}

func (suite *SubscriptionServiceTestSuite) TestEnsure_LazyAssignsDefaultPlan() {
	plan := suite.freePlan(models.PersonaInstitute)
	user := &models.User{ID: suite.userID, Role: models.PersonaInstitute}

	suite.userRepo.On("GetByID", suite.ctx, suite.userID).Return(user, nil)
	suite.planRepo.On("FindDefaultForPersona", suite.ctx, models.PersonaInstitute).Return(plan, nil)
	suite.userRepo.On("UpdateSubscription", suite.ctx, suite.userID, mock.AnythingOfType("*models.Subscription")).
		Return(nil).Run(func(args mock.Arguments) {
		sub := args.Get(2).(*models.Subscription)
		assert.Equal(suite.T(), plan.ID, *sub.PlanID)
		assert.Equal(suite.T(), models.SubscriptionActive, sub.Status)
		assert.Equal(suite.T(), models.PaymentCompleted, sub.PaymentStatus)
		assert.Equal(suite.T(), plan.Features.MaxListings, sub.ListingsLimit)
		assert.Equal(suite.T(), 0, sub.ListingsUsed)
		assert.NotNil(suite.T(), sub.EndDate)
	})

	got, gotPlan, err := suite.service.Ensure(suite.ctx, suite.userID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), plan.ID, gotPlan.ID)
	assert.True(suite.T(), got.Subscription.HasPlan())
}

func (suite *SubscriptionServiceTestSuite) TestEnsure_NoDefaultPlanFallsBackToAnonymous() {
	user := &models.User{ID: suite.userID, Role: models.PersonaVendor}

	suite.userRepo.On("GetByID", suite.ctx, suite.userID).Return(user, nil)
	suite.planRepo.On("FindDefaultForPersona", suite.ctx, models.PersonaVendor).
		Return(nil, common.ErrNotFound)

	got, gotPlan, err := suite.service.Ensure(suite.ctx, suite.userID)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), gotPlan)
	assert.False(suite.T(), got.Subscription.HasPlan())
}

func (suite *SubscriptionServiceTestSuite) TestEnsure_AdminSkipsLazyAssignment() {
	user := &models.User{ID: suite.userID, Role: models.RoleAdmin}

	suite.userRepo.On("GetByID", suite.ctx, suite.userID).Return(user, nil)

	_, gotPlan, err := suite.service.Ensure(suite.ctx, suite.userID)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), gotPlan)
}

func (suite *SubscriptionServiceTestSuite) TestEnsure_PersistsLazyExpiry() {
	plan := suite.freePlan(models.PersonaInstitute)
	user := suite.subscribedUser(plan)
	lapsed := time.Now().Add(-time.Hour)
	user.Subscription.EndDate = &lapsed

	suite.userRepo.On("GetByID", suite.ctx, suite.userID).Return(user, nil)
	suite.userRepo.On("UpdateSubscription", suite.ctx, suite.userID, mock.AnythingOfType("*models.Subscription")).
		Return(nil).Run(func(args mock.Arguments) {
		sub := args.Get(2).(*models.Subscription)
		assert.Equal(suite.T(), models.SubscriptionExpired, sub.Status)
	})
	suite.planRepo.On("GetByID", suite.ctx, plan.ID).Return(plan, nil)

	got, _, err := suite.service.Ensure(suite.ctx, suite.userID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.SubscriptionExpired, got.Subscription.Status)
}

func (suite *SubscriptionServiceTestSuite) TestAssign_PaidPlanStartsPaymentPending() {
	plan := suite.freePlan(models.PersonaInstitute)
	plan.Price = 4999
	user := &models.User{ID: suite.userID, Role: models.PersonaInstitute}

	suite.userRepo.On("GetByID", suite.ctx, suite.userID).Return(user, nil)
	suite.planRepo.On("GetByID", suite.ctx, plan.ID).Return(plan, nil)
	suite.userRepo.On("UpdateSubscription", suite.ctx, suite.userID, mock.AnythingOfType("*models.Subscription")).
		Return(nil).Run(func(args mock.Arguments) {
		sub := args.Get(2).(*models.Subscription)
		assert.Equal(suite.T(), models.PaymentPending, sub.PaymentStatus)
		assert.Equal(suite.T(), models.SubscriptionActive, sub.Status)
	})

	err := suite.service.Assign(suite.ctx, suite.userID, plan.ID, nil)
	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestChangePlan_ResetsCountersAndResnapshots() {
	oldPlan := suite.freePlan(models.PersonaInstitute)
	user := suite.subscribedUser(oldPlan)
	user.Subscription.ListingsUsed = 2
	user.Subscription.BrowseCount = 15

	newPlan := suite.freePlan(models.PersonaInstitute)
	newPlan.Name = "premium"
	newPlan.Features.MaxListings = 50

	suite.userRepo.On("GetByID", suite.ctx, suite.userID).Return(user, nil)
	suite.planRepo.On("GetByID", suite.ctx, newPlan.ID).Return(newPlan, nil)
	suite.userRepo.On("UpdateSubscription", suite.ctx, suite.userID, mock.AnythingOfType("*models.Subscription")).
		Return(nil).Run(func(args mock.Arguments) {
		sub := args.Get(2).(*models.Subscription)
		assert.Equal(suite.T(), newPlan.ID, *sub.PlanID)
		assert.Equal(suite.T(), 50, sub.ListingsLimit)
		assert.Equal(suite.T(), 0, sub.ListingsUsed)
		assert.Equal(suite.T(), 0, sub.BrowseCount)
	})

	err := suite.service.ChangePlan(suite.ctx, suite.userID, newPlan.ID, nil)
	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestExtend_RejectsPastDate() {
	plan := suite.freePlan(models.PersonaInstitute)
	user := suite.subscribedUser(plan)

	suite.userRepo.On("GetByID", suite.ctx, suite.userID).Return(user, nil)

	err := suite.service.Extend(suite.ctx, suite.userID, time.Now().Add(-time.Hour))
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *SubscriptionServiceTestSuite) TestExtend_NoSubscription() {
	user := &models.User{ID: suite.userID, Role: models.PersonaInstitute}

	suite.userRepo.On("GetByID", suite.ctx, suite.userID).Return(user, nil)

	err := suite.service.Extend(suite.ctx, suite.userID, time.Now().AddDate(0, 1, 0))
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *SubscriptionServiceTestSuite) TestSuspend() {
	plan := suite.freePlan(models.PersonaVendor)
	user := suite.subscribedUser(plan)

	suite.userRepo.On("GetByID", suite.ctx, suite.userID).Return(user, nil)
	suite.userRepo.On("UpdateSubscription", suite.ctx, suite.userID, mock.AnythingOfType("*models.Subscription")).
		Return(nil).Run(func(args mock.Arguments) {
		sub := args.Get(2).(*models.Subscription)
		assert.Equal(suite.T(), models.SubscriptionSuspended, sub.Status)
	})

	err := suite.service.Suspend(suite.ctx, suite.userID)
	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestReactivate_WithinPeriod() {
	plan := suite.freePlan(models.PersonaVendor)
	user := suite.subscribedUser(plan)
	user.Subscription.Status = models.SubscriptionSuspended

	suite.userRepo.On("GetByID", suite.ctx, suite.userID).Return(user, nil)
	suite.userRepo.On("UpdateSubscription", suite.ctx, suite.userID, mock.AnythingOfType("*models.Subscription")).
		Return(nil).Run(func(args mock.Arguments) {
		sub := args.Get(2).(*models.Subscription)
		assert.Equal(suite.T(), models.SubscriptionActive, sub.Status)
	})

	err := suite.service.Reactivate(suite.ctx, suite.userID)
	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestReactivate_AfterEndDateFails() {
	plan := suite.freePlan(models.PersonaVendor)
	user := suite.subscribedUser(plan)
	user.Subscription.Status = models.SubscriptionSuspended
	lapsed := time.Now().Add(-time.Hour)
	user.Subscription.EndDate = &lapsed

	suite.userRepo.On("GetByID", suite.ctx, suite.userID).Return(user, nil)

	err := suite.service.Reactivate(suite.ctx, suite.userID)
	assert.ErrorIs(suite.T(), err, common.ErrExpired)
}

func (suite *SubscriptionServiceTestSuite) TestCancel_ClearsRecord() {
	plan := suite.freePlan(models.PersonaInstitute)
	user := suite.subscribedUser(plan)

	suite.userRepo.On("GetByID", suite.ctx, suite.userID).Return(user, nil)
	suite.userRepo.On("ClearSubscription", suite.ctx, suite.userID).Return(nil)

	err := suite.service.Cancel(suite.ctx, suite.userID)
	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestContinue_SetsNewEndDate() {
	plan := suite.freePlan(models.PersonaInstitute)
	user := suite.subscribedUser(plan)
	user.Subscription.Status = models.SubscriptionExpired
	newEnd := time.Now().AddDate(0, 1, 0)

	suite.userRepo.On("GetByID", suite.ctx, suite.userID).Return(user, nil)
	suite.userRepo.On("UpdateSubscription", suite.ctx, suite.userID, mock.AnythingOfType("*models.Subscription")).
		Return(nil).Run(func(args mock.Arguments) {
		sub := args.Get(2).(*models.Subscription)
		assert.Equal(suite.T(), models.SubscriptionActive, sub.Status)
		assert.WithinDuration(suite.T(), newEnd, *sub.EndDate, time.Second)
	})

	err := suite.service.Continue(suite.ctx, suite.userID, newEnd)
	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestResolve_NoPlanReturnsNil() {
	user := &models.User{ID: suite.userID, Role: models.RoleAdmin}

	suite.userRepo.On("GetByID", suite.ctx, suite.userID).Return(user, nil)

	view, err := suite.service.Resolve(suite.ctx, suite.userID)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), view)
}
