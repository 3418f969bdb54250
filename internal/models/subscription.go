package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription statuses.
const (
	SubscriptionActive    = "active"
	SubscriptionInactive  = "inactive"
	SubscriptionSuspended = "suspended"
	SubscriptionExpired   = "expired"
)

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Subscription is the per-user subscription record, embedded one-to-one in
// the owning user row. A nil PlanID means the user has no subscription; every
// consumer treats that as "none" and the next gated action lazily assigns the
// persona's default plan.
//
// The *Limit fields are a frozen snapshot taken from the plan at
// assignment/change time so that later catalog edits do not disrupt an
// in-progress billing period.
type Subscription struct {
	PlanID           *uuid.UUID `json:"plan_id" db:"plan_id"`
	PlanName         string     `json:"plan_name" db:"plan_name"`
	Status           string     `json:"status" db:"subscription_status"`
	PaymentStatus    string     `json:"payment_status" db:"payment_status"`
	StartDate        *time.Time `json:"start_date" db:"subscription_start"`
	EndDate          *time.Time `json:"end_date" db:"subscription_end"`
	ListingsUsed     int        `json:"listings_used" db:"listings_used"`
	ListingsLimit    int        `json:"listings_limit" db:"listings_limit"`
	JobPostsUsed     int        `json:"job_posts_used" db:"job_posts_used"`
	JobPostsLimit    int        `json:"job_posts_limit" db:"job_posts_limit"`
	BrowseCount      int        `json:"browse_count" db:"browse_count"`
	BrowseCountLimit int        `json:"browse_count_limit" db:"browse_count_limit"`
	LastBrowseReset  *time.Time `json:"last_browse_reset" db:"last_browse_reset"`
	Notes            *string    `json:"notes,omitempty" db:"subscription_notes"`
}

// HasPlan reports whether the record references a plan at all.
func (s *Subscription) HasPlan() bool {
	return s != nil && s.PlanID != nil
}

// IsActive reports whether gated actions may mutate usage counters.
func (s *Subscription) IsActive() bool {
	return s != nil && s.Status == SubscriptionActive
}

// SnapshotLimits copies the plan's metering limits into the record. Counters
// are the caller's responsibility.
func (s *Subscription) SnapshotLimits(plan *Plan) {
	s.ListingsLimit = plan.Features.MaxListings
	s.JobPostsLimit = plan.Features.MaxJobPosts
	s.BrowseCountLimit = plan.Features.MaxBrowsesPerMonth
}

// ResetCounters zeroes all usage counters and stamps the browse reset time.
func (s *Subscription) ResetCounters(now time.Time) {
	s.ListingsUsed = 0
	s.JobPostsUsed = 0
	s.BrowseCount = 0
	s.LastBrowseReset = &now
}
