package models

import "github.com/google/uuid"

// GlobalSubscriptionStats is the reporting rollup across all users.
type GlobalSubscriptionStats struct {
	TotalUsers       int64            `json:"total_users"`
	WithSubscription int64            `json:"with_subscription"`
	ByStatus         map[string]int64 `json:"by_status"`
	ExpiringSoon     int64            `json:"expiring_soon"`
}

// PlanSubscriberCount is the per-plan reporting row.
type PlanSubscriberCount struct {
	PlanID            uuid.UUID `json:"plan_id"`
	PlanName          string    `json:"plan_name"`
	Persona           string    `json:"persona"`
	Subscribers       int64     `json:"subscribers"`
	ActiveSubscribers int64     `json:"active_subscribers"`
}
