package models

import (
	"time"

	"github.com/google/uuid"
)

// Change request types.
const (
	RequestTypeUpgrade   = "upgrade"
	RequestTypeDowngrade = "downgrade"
	RequestTypeRenewal   = "renewal"
)

// Change request statuses. pending is the only non-terminal state.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// SubscriptionChangeRequest is a user's queued plan-change request. At most
// one pending request exists per user; approval re-runs the plan-change
// transition against the requester's subscription.
type SubscriptionChangeRequest struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	CurrentPlanID   *uuid.UUID `json:"current_plan_id" db:"current_plan_id"`
	RequestedPlanID uuid.UUID  `json:"requested_plan_id" db:"requested_plan_id"`
	RequestType     string     `json:"request_type" db:"request_type"`
	Status          string     `json:"status" db:"status"`
	UserNotes       *string    `json:"user_notes,omitempty" db:"user_notes"`
	AdminNotes      *string    `json:"admin_notes,omitempty" db:"admin_notes"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether the request can no longer be mutated.
func (r *SubscriptionChangeRequest) IsTerminal() bool {
	return r.Status == RequestApproved || r.Status == RequestRejected
}
