package models

import (
	"time"

	"github.com/google/uuid"
)

// Personas a plan can target. Every user carries exactly one of these roles
// (admins are a separate role outside the catalog).
const (
	PersonaInstitute = "institute"
	PersonaTeacher   = "teacher"
	PersonaVendor    = "vendor"
)

// UnlimitedQuota is the sentinel for "no limit" on any numeric plan limit.
const UnlimitedQuota = -1

// PlanFeatures is the limit/capability record carried by every plan. Numeric
// limits are non-negative or UnlimitedQuota.
type PlanFeatures struct {
	MaxListings          int    `json:"max_listings" db:"max_listings"`
	MaxJobPosts          int    `json:"max_job_posts" db:"max_job_posts"`
	MaxBrowsesPerMonth   int    `json:"max_browses_per_month" db:"max_browses_per_month"`
	DataDelayDays        int    `json:"data_delay_days" db:"data_delay_days"`
	TeacherDataDelayDays int    `json:"teacher_data_delay_days" db:"teacher_data_delay_days"`
	CanAdvertiseVehicles bool   `json:"can_advertise_vehicles" db:"can_advertise_vehicles"`
	InstantVehicleAlerts bool   `json:"instant_vehicle_alerts" db:"instant_vehicle_alerts"`
	InstantJobAlerts     bool   `json:"instant_job_alerts" db:"instant_job_alerts"`
	PriorityListings     bool   `json:"priority_listings" db:"priority_listings"`
	Analytics            bool   `json:"analytics" db:"analytics"`
	SupportLevel         string `json:"support_level" db:"support_level"`
}

// Plan is one versioned catalog entry. Editing a plan never rewrites limits
// already snapshotted into a live subscription.
type Plan struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	DisplayName  string       `json:"display_name" db:"display_name"`
	Persona      string       `json:"persona" db:"persona"`
	Price        float64      `json:"price" db:"price"`
	Currency     string       `json:"currency" db:"currency"`
	DurationDays int          `json:"duration_days" db:"duration_days"`
	Features     PlanFeatures `json:"features"`
	IsActive     bool         `json:"is_active" db:"is_active"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// IsFree reports whether assigning this plan requires no payment.
func (p *Plan) IsFree() bool {
	return p.Price == 0
}
