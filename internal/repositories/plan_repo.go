package repositories

import (
	"context"
	"errors"
	"fmt"

	"edumart/internal/common"
	"edumart/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PlanRepository interface {
	Create(ctx context.Context, plan *models.Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	GetByName(ctx context.Context, name string) (*models.Plan, error)
	ListActive(ctx context.Context, persona string) ([]*models.Plan, error)
	FindDefaultForPersona(ctx context.Context, persona string) (*models.Plan, error)
	Update(ctx context.Context, plan *models.Plan) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type planRepo struct {
	db DBTX
}

func NewPlanRepository(db DBTX) PlanRepository {
	return &planRepo{db: db}
}

const planColumns = `id, name, display_name, persona, price, currency, duration_days,
	max_listings, max_job_posts, max_browses_per_month, data_delay_days, teacher_data_delay_days,
	can_advertise_vehicles, instant_vehicle_alerts, instant_job_alerts, priority_listings, analytics,
	support_level, is_active, created_at, updated_at`

func scanPlan(row pgx.Row) (*models.Plan, error) {
	plan := &models.Plan{}
	err := row.Scan(
		&plan.ID, &plan.Name, &plan.DisplayName, &plan.Persona, &plan.Price, &plan.Currency, &plan.DurationDays,
		&plan.Features.MaxListings, &plan.Features.MaxJobPosts, &plan.Features.MaxBrowsesPerMonth,
		&plan.Features.DataDelayDays, &plan.Features.TeacherDataDelayDays,
		&plan.Features.CanAdvertiseVehicles, &plan.Features.InstantVehicleAlerts, &plan.Features.InstantJobAlerts,
		&plan.Features.PriorityListings, &plan.Features.Analytics,
		&plan.Features.SupportLevel, &plan.IsActive, &plan.CreatedAt, &plan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *planRepo) Create(ctx context.Context, plan *models.Plan) error {
	query := `
		INSERT INTO plans (id, name, display_name, persona, price, currency, duration_days,
			max_listings, max_job_posts, max_browses_per_month, data_delay_days, teacher_data_delay_days,
			can_advertise_vehicles, instant_vehicle_alerts, instant_job_alerts, priority_listings, analytics,
			support_level, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		plan.ID, plan.Name, plan.DisplayName, plan.Persona, plan.Price, plan.Currency, plan.DurationDays,
		plan.Features.MaxListings, plan.Features.MaxJobPosts, plan.Features.MaxBrowsesPerMonth,
		plan.Features.DataDelayDays, plan.Features.TeacherDataDelayDays,
		plan.Features.CanAdvertiseVehicles, plan.Features.InstantVehicleAlerts, plan.Features.InstantJobAlerts,
		plan.Features.PriorityListings, plan.Features.Analytics,
		plan.Features.SupportLevel, plan.IsActive,
	)
	return err
}

func (r *planRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM plans WHERE id = $1`, planColumns)
	plan, err := scanPlan(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("plan %s: %w", id, common.ErrNotFound)
		}
		return nil, err
	}
	return plan, nil
}

func (r *planRepo) GetByName(ctx context.Context, name string) (*models.Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM plans WHERE name = $1`, planColumns)
	plan, err := scanPlan(r.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("plan %q: %w", name, common.ErrNotFound)
		}
		return nil, err
	}
	return plan, nil
}

func (r *planRepo) ListActive(ctx context.Context, persona string) ([]*models.Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM plans WHERE is_active = TRUE`, planColumns)
	args := []interface{}{}
	if persona != "" {
		query += ` AND persona = $1`
		args = append(args, persona)
	}
	query += ` ORDER BY persona, price ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*models.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

// FindDefaultForPersona resolves the plan granted by lazy assignment: the
// cheapest zero-price active plan for the persona.
func (r *planRepo) FindDefaultForPersona(ctx context.Context, persona string) (*models.Plan, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM plans
		WHERE is_active = TRUE AND persona = $1 AND price = 0
		ORDER BY created_at ASC
		LIMIT 1
	`, planColumns)
	plan, err := scanPlan(r.db.QueryRow(ctx, query, persona))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("default plan for persona %q: %w", persona, common.ErrNotFound)
		}
		return nil, err
	}
	return plan, nil
}

func (r *planRepo) Update(ctx context.Context, plan *models.Plan) error {
	query := `
		UPDATE plans
		SET name = $1, display_name = $2, persona = $3, price = $4, currency = $5, duration_days = $6,
			max_listings = $7, max_job_posts = $8, max_browses_per_month = $9,
			data_delay_days = $10, teacher_data_delay_days = $11,
			can_advertise_vehicles = $12, instant_vehicle_alerts = $13, instant_job_alerts = $14,
			priority_listings = $15, analytics = $16, support_level = $17, is_active = $18, updated_at = NOW()
		WHERE id = $19
	`
	tag, err := r.db.Exec(ctx, query,
		plan.Name, plan.DisplayName, plan.Persona, plan.Price, plan.Currency, plan.DurationDays,
		plan.Features.MaxListings, plan.Features.MaxJobPosts, plan.Features.MaxBrowsesPerMonth,
		plan.Features.DataDelayDays, plan.Features.TeacherDataDelayDays,
		plan.Features.CanAdvertiseVehicles, plan.Features.InstantVehicleAlerts, plan.Features.InstantJobAlerts,
		plan.Features.PriorityListings, plan.Features.Analytics, plan.Features.SupportLevel, plan.IsActive,
		plan.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("plan %s: %w", plan.ID, common.ErrNotFound)
	}
	return nil
}

func (r *planRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE plans SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("plan %s: %w", id, common.ErrNotFound)
	}
	return nil
}
