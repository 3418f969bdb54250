package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"edumart/internal/common"
	"edumart/internal/entitlement"
	"edumart/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository owns the user row and the subscription record embedded in
// it. Counter mutations are single-statement atomic updates so concurrent
// requests cannot lose increments (no read-modify-write in services).
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateSubscription(ctx context.Context, userID uuid.UUID, sub *models.Subscription) error
	ClearSubscription(ctx context.Context, userID uuid.UUID) error
	AdjustCounter(ctx context.Context, userID uuid.UUID, counter entitlement.Counter, delta int) (int, error)
	ResetCounter(ctx context.Context, userID uuid.UUID, counter entitlement.Counter) error
	ExpireLapsed(ctx context.Context, now time.Time) (int64, error)
	ResetStaleBrowseCounts(ctx context.Context, cutoff time.Time) (int64, error)
	GlobalStats(ctx context.Context, expiringWithin time.Duration) (*models.GlobalSubscriptionStats, error)
	PlanSubscriberCounts(ctx context.Context) ([]*models.PlanSubscriberCount, error)
}

type userRepo struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &userRepo{db: db}
}

var counterColumns = map[entitlement.Counter]string{
	entitlement.CounterBrowse:   "browse_count",
	entitlement.CounterListings: "listings_used",
	entitlement.CounterJobPosts: "job_posts_used",
}

const userColumns = `id, email, name, role,
	plan_id, plan_name, subscription_status, payment_status, subscription_start, subscription_end,
	listings_used, listings_limit, job_posts_used, job_posts_limit, browse_count, browse_count_limit,
	last_browse_reset, subscription_notes, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Role,
		&user.Subscription.PlanID, &user.Subscription.PlanName, &user.Subscription.Status,
		&user.Subscription.PaymentStatus, &user.Subscription.StartDate, &user.Subscription.EndDate,
		&user.Subscription.ListingsUsed, &user.Subscription.ListingsLimit,
		&user.Subscription.JobPostsUsed, &user.Subscription.JobPostsLimit,
		&user.Subscription.BrowseCount, &user.Subscription.BrowseCountLimit,
		&user.Subscription.LastBrowseReset, &user.Subscription.Notes,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, common.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepo) UpdateSubscription(ctx context.Context, userID uuid.UUID, sub *models.Subscription) error {
	query := `
		UPDATE users
		SET plan_id = $1, plan_name = $2, subscription_status = $3, payment_status = $4,
			subscription_start = $5, subscription_end = $6,
			listings_used = $7, listings_limit = $8,
			job_posts_used = $9, job_posts_limit = $10,
			browse_count = $11, browse_count_limit = $12,
			last_browse_reset = $13, subscription_notes = $14, updated_at = NOW()
		WHERE id = $15
	`
	tag, err := r.db.Exec(ctx, query,
		sub.PlanID, sub.PlanName, sub.Status, sub.PaymentStatus,
		sub.StartDate, sub.EndDate,
		sub.ListingsUsed, sub.ListingsLimit,
		sub.JobPostsUsed, sub.JobPostsLimit,
		sub.BrowseCount, sub.BrowseCountLimit,
		sub.LastBrowseReset, sub.Notes,
		userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, common.ErrNotFound)
	}
	return nil
}

// ClearSubscription reverts the user to the "no subscription" state; the next
// gated action triggers lazy assignment again.
func (r *userRepo) ClearSubscription(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE users
		SET plan_id = NULL, plan_name = '', subscription_status = $1, payment_status = $2,
			subscription_start = NULL, subscription_end = NULL,
			listings_used = 0, listings_limit = 0,
			job_posts_used = 0, job_posts_limit = 0,
			browse_count = 0, browse_count_limit = 0,
			last_browse_reset = NULL, subscription_notes = NULL, updated_at = NOW()
		WHERE id = $3
	`
	tag, err := r.db.Exec(ctx, query, models.SubscriptionInactive, models.PaymentPending, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, common.ErrNotFound)
	}
	return nil
}

// AdjustCounter applies delta atomically, floored at zero, and returns the
// new value.
func (r *userRepo) AdjustCounter(ctx context.Context, userID uuid.UUID, counter entitlement.Counter, delta int) (int, error) {
	column, ok := counterColumns[counter]
	if !ok {
		return 0, fmt.Errorf("unknown counter %q: %w", counter, common.ErrValidation)
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET %s = GREATEST(%s + $1, 0), updated_at = NOW()
		WHERE id = $2
		RETURNING %s
	`, column, column, column)

	var newValue int
	if err := r.db.QueryRow(ctx, query, delta, userID).Scan(&newValue); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("user %s: %w", userID, common.ErrNotFound)
		}
		return 0, err
	}
	return newValue, nil
}

func (r *userRepo) ResetCounter(ctx context.Context, userID uuid.UUID, counter entitlement.Counter) error {
	column, ok := counterColumns[counter]
	if !ok {
		return fmt.Errorf("unknown counter %q: %w", counter, common.ErrValidation)
	}

	query := fmt.Sprintf(`UPDATE users SET %s = 0, updated_at = NOW() WHERE id = $1`, column)
	if counter == entitlement.CounterBrowse {
		query = `UPDATE users SET browse_count = 0, last_browse_reset = NOW(), updated_at = NOW() WHERE id = $1`
	}

	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, common.ErrNotFound)
	}
	return nil
}

// ExpireLapsed flips every active subscription past its end date to expired.
// Used by the background sweep; check-on-read remains authoritative.
func (r *userRepo) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE users
		SET subscription_status = $1, updated_at = NOW()
		WHERE subscription_status = $2 AND subscription_end IS NOT NULL AND subscription_end < $3
	`
	tag, err := r.db.Exec(ctx, query, models.SubscriptionExpired, models.SubscriptionActive, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ResetStaleBrowseCounts rolls over browse counters whose last reset is older
// than the cutoff.
func (r *userRepo) ResetStaleBrowseCounts(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE users
		SET browse_count = 0, last_browse_reset = NOW(), updated_at = NOW()
		WHERE plan_id IS NOT NULL AND (last_browse_reset IS NULL OR last_browse_reset < $1)
	`
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *userRepo) GlobalStats(ctx context.Context, expiringWithin time.Duration) (*models.GlobalSubscriptionStats, error) {
	stats := &models.GlobalSubscriptionStats{ByStatus: make(map[string]int64)}

	query := `
		SELECT COUNT(*), COUNT(plan_id),
			COUNT(*) FILTER (WHERE plan_id IS NOT NULL AND subscription_end IS NOT NULL
				AND subscription_end BETWEEN NOW() AND NOW() + $1::interval)
		FROM users
	`
	interval := fmt.Sprintf("%d seconds", int(expiringWithin.Seconds()))
	err := r.db.QueryRow(ctx, query, interval).Scan(&stats.TotalUsers, &stats.WithSubscription, &stats.ExpiringSoon)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT subscription_status, COUNT(*)
		FROM users
		WHERE plan_id IS NOT NULL
		GROUP BY subscription_status
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
	}
	return stats, rows.Err()
}

func (r *userRepo) PlanSubscriberCounts(ctx context.Context) ([]*models.PlanSubscriberCount, error) {
	query := `
		SELECT p.id, p.name, p.persona,
			COUNT(u.id),
			COUNT(u.id) FILTER (WHERE u.subscription_status = $1)
		FROM plans p
		LEFT JOIN users u ON u.plan_id = p.id
		GROUP BY p.id, p.name, p.persona
		ORDER BY p.persona, p.name
	`
	rows, err := r.db.Query(ctx, query, models.SubscriptionActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []*models.PlanSubscriberCount
	for rows.Next() {
		pc := &models.PlanSubscriberCount{}
		if err := rows.Scan(&pc.PlanID, &pc.PlanName, &pc.Persona, &pc.Subscribers, &pc.ActiveSubscribers); err != nil {
			return nil, err
		}
		counts = append(counts, pc)
	}
	return counts, rows.Err()
}
