package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"edumart/internal/caching"
	"edumart/internal/common"
	"edumart/internal/models"
	"edumart/internal/repositories"

	"github.com/google/uuid"
)

const planCacheTTL = 10 * time.Minute

// PlanService handles plan catalog business logic
type PlanService interface {
	ListActive(ctx context.Context, persona string) ([]*models.Plan, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	Create(ctx context.Context, plan *models.Plan) (*models.Plan, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.Plan) (*models.Plan, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (*models.Plan, error)
}

type planService struct {
	planRepo repositories.PlanRepository
	cacheSvc caching.CacheService
}

// NewPlanService creates a new PlanService instance
func NewPlanService(planRepo repositories.PlanRepository, cacheSvc caching.CacheService) PlanService {
	return &planService{
		planRepo: planRepo,
		cacheSvc: cacheSvc,
	}
}

func (s *planService) ListActive(ctx context.Context, persona string) ([]*models.Plan, error) {
	if persona != "" {
		if err := validatePersona(persona); err != nil {
			return nil, err
		}
	}

	if cached, err := s.cacheSvc.GetActivePlans(ctx, persona); err == nil && cached != nil {
		return cached, nil
	}

	plans, err := s.planRepo.ListActive(ctx, persona)
	if err != nil {
		return nil, err
	}

	if err := s.cacheSvc.SetActivePlans(ctx, persona, plans, planCacheTTL); err != nil {
		log.Printf("WARN: failed to cache plan listing: %v", err)
	}
	return plans, nil
}

func (s *planService) GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	if cached, err := s.cacheSvc.GetPlan(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cacheSvc.SetPlan(ctx, plan, planCacheTTL); err != nil {
		log.Printf("WARN: failed to cache plan %s: %v", plan.ID, err)
	}
	return plan, nil
}

func (s *planService) Create(ctx context.Context, plan *models.Plan) (*models.Plan, error) {
	if err := validatePlan(plan); err != nil {
		return nil, err
	}

	if existing, err := s.planRepo.GetByName(ctx, plan.Name); err == nil && existing != nil {
		return nil, fmt.Errorf("plan name %q already in use: %w", plan.Name, common.ErrValidation)
	}

	plan.ID = uuid.New()
	plan.IsActive = true
	if plan.Currency == "" {
		plan.Currency = "INR"
	}
	if plan.Features.SupportLevel == "" {
		plan.Features.SupportLevel = "standard"
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	s.invalidate(ctx)
	return plan, nil
}

// Update patches a catalog entry. Limits already snapshotted into live
// subscriptions are untouched; only future assignments and explicit plan
// changes pick up the new values.
func (s *planService) Update(ctx context.Context, id uuid.UUID, patch *models.Plan) (*models.Plan, error) {
	existing, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.ID = existing.ID
	patch.IsActive = existing.IsActive
	if patch.Name == "" {
		patch.Name = existing.Name
	}
	if patch.DisplayName == "" {
		patch.DisplayName = existing.DisplayName
	}
	if patch.Persona == "" {
		patch.Persona = existing.Persona
	}
	if patch.Currency == "" {
		patch.Currency = existing.Currency
	}
	if patch.DurationDays == 0 {
		patch.DurationDays = existing.DurationDays
	}
	if patch.Features.SupportLevel == "" {
		patch.Features.SupportLevel = existing.Features.SupportLevel
	}

	if err := validatePlan(patch); err != nil {
		return nil, err
	}

	if err := s.planRepo.Update(ctx, patch); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return patch, nil
}

func (s *planService) ToggleActive(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	plan.IsActive = !plan.IsActive
	if err := s.planRepo.SetActive(ctx, id, plan.IsActive); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return plan, nil
}

func (s *planService) invalidate(ctx context.Context) {
	if err := s.cacheSvc.InvalidatePlans(ctx); err != nil {
		log.Printf("WARN: failed to invalidate plan cache: %v", err)
	}
}

func validatePersona(persona string) error {
	switch persona {
	case models.PersonaInstitute, models.PersonaTeacher, models.PersonaVendor:
		return nil
	}
	return fmt.Errorf("invalid persona %q: %w", persona, common.ErrValidation)
}

func validatePlan(plan *models.Plan) error {
	if err := common.ValidateRequiredString(plan.Name, "name"); err != nil {
		return fmt.Errorf("%v: %w", err, common.ErrValidation)
	}
	if err := common.ValidateRequiredString(plan.DisplayName, "display_name"); err != nil {
		return fmt.Errorf("%v: %w", err, common.ErrValidation)
	}
	if err := validatePersona(plan.Persona); err != nil {
		return err
	}
	if plan.Price < 0 {
		return fmt.Errorf("price must not be negative: %w", common.ErrValidation)
	}
	if plan.DurationDays <= 0 {
		return fmt.Errorf("duration_days must be positive: %w", common.ErrValidation)
	}

	limits := map[string]int{
		"max_listings":          plan.Features.MaxListings,
		"max_job_posts":         plan.Features.MaxJobPosts,
		"max_browses_per_month": plan.Features.MaxBrowsesPerMonth,
	}
	for field, value := range limits {
		if err := common.ValidateQuotaLimit(value, field); err != nil {
			return fmt.Errorf("%v: %w", err, common.ErrValidation)
		}
	}

	if plan.Features.DataDelayDays < 0 || plan.Features.TeacherDataDelayDays < 0 {
		return fmt.Errorf("delay days must not be negative: %w", common.ErrValidation)
	}
	return nil
}
