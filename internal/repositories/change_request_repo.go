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

type ChangeRequestRepository interface {
	Create(ctx context.Context, req *models.SubscriptionChangeRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionChangeRequest, error)
	HasPending(ctx context.Context, userID uuid.UUID) (bool, error)
	List(ctx context.Context, status string, userID *uuid.UUID, limit, offset int) ([]*models.SubscriptionChangeRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, adminNotes *string) error
}

type changeRequestRepo struct {
	db DBTX
}

func NewChangeRequestRepository(db DBTX) ChangeRequestRepository {
	return &changeRequestRepo{db: db}
}

const changeRequestColumns = `id, user_id, current_plan_id, requested_plan_id, request_type, status,
	user_notes, admin_notes, created_at, updated_at`

func scanChangeRequest(row pgx.Row) (*models.SubscriptionChangeRequest, error) {
	req := &models.SubscriptionChangeRequest{}
	err := row.Scan(
		&req.ID, &req.UserID, &req.CurrentPlanID, &req.RequestedPlanID, &req.RequestType, &req.Status,
		&req.UserNotes, &req.AdminNotes, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *changeRequestRepo) Create(ctx context.Context, req *models.SubscriptionChangeRequest) error {
	query := `
		INSERT INTO subscription_change_requests
			(id, user_id, current_plan_id, requested_plan_id, request_type, status, user_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		req.ID, req.UserID, req.CurrentPlanID, req.RequestedPlanID, req.RequestType, req.Status, req.UserNotes,
	)
	return err
}

func (r *changeRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionChangeRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM subscription_change_requests WHERE id = $1`, changeRequestColumns)
	req, err := scanChangeRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("change request %s: %w", id, common.ErrNotFound)
		}
		return nil, err
	}
	return req, nil
}

func (r *changeRequestRepo) HasPending(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM subscription_change_requests WHERE user_id = $1 AND status = $2)`
	err := r.db.QueryRow(ctx, query, userID, models.RequestPending).Scan(&exists)
	return exists, err
}

func (r *changeRequestRepo) List(ctx context.Context, status string, userID *uuid.UUID, limit, offset int) ([]*models.SubscriptionChangeRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM subscription_change_requests WHERE 1=1`, changeRequestColumns)
	args := []interface{}{}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if userID != nil {
		args = append(args, *userID)
		query += fmt.Sprintf(` AND user_id = $%d`, len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*models.SubscriptionChangeRequest
	for rows.Next() {
		req, err := scanChangeRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *changeRequestRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, adminNotes *string) error {
	query := `
		UPDATE subscription_change_requests
		SET status = $1, admin_notes = COALESCE($2, admin_notes), updated_at = NOW()
		WHERE id = $3
	`
	tag, err := r.db.Exec(ctx, query, status, adminNotes, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("change request %s: %w", id, common.ErrNotFound)
	}
	return nil
}
