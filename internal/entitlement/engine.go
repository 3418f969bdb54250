// Package entitlement holds the pure decision core for subscription gating.
// It performs no I/O: callers load the subscription record and plan, pass an
// explicit now, and persist whatever ApplyTimeEffects changed.
package entitlement

import (
	"fmt"
	"time"

	"edumart/internal/models"
)

// Actions gated by the engine.
type Action string

const (
	ActionBrowse        Action = "browse"
	ActionCreateListing Action = "create_listing"
	ActionPostJob       Action = "post_job"
	ActionApplyJob      Action = "apply_job"
)

// Counter identifies a metered usage counter on the subscription record.
type Counter string

const (
	CounterBrowse   Counter = "browse"
	CounterListings Counter = "listings"
	CounterJobPosts Counter = "job_posts"
)

// BrowseResetInterval is the billing-period rollover window for the browse
// counter.
const BrowseResetInterval = 30 * 24 * time.Hour

// AnonymousTier centralizes every fallback constant for users without a
// subscription record. Browsing fails open with a small quota; creation
// fails closed; visibility gets the most restrictive delay in the catalog.
var AnonymousTier = struct {
	BrowseRemaining int
	MaxListings     int
	MaxJobPosts     int
	DataDelayDays   int
}{
	BrowseRemaining: 10,
	MaxListings:     0,
	MaxJobPosts:     0,
	DataDelayDays:   7,
}

// rule resolves which counter, if any, meters a persona/action pair. A pair
// absent from the table means the role may never perform the action.
type rule struct {
	counter Counter
	metered bool
}

var accessRules = map[string]map[Action]rule{
	models.PersonaInstitute: {
		ActionBrowse:        {counter: CounterBrowse, metered: true},
		ActionCreateListing: {counter: CounterListings, metered: true},
		ActionPostJob:       {counter: CounterJobPosts, metered: true},
	},
	models.PersonaVendor: {
		ActionBrowse:        {counter: CounterBrowse, metered: true},
		ActionCreateListing: {counter: CounterListings, metered: true},
	},
	models.PersonaTeacher: {
		ActionBrowse:   {counter: CounterBrowse, metered: true},
		ActionApplyJob: {},
	},
}

// Decision is the engine's verdict for one gated action. Denial is a normal
// value, never an error.
type Decision struct {
	Allowed         bool   `json:"allowed"`
	Remaining       int    `json:"remaining"`
	LimitReached    bool   `json:"limit_reached"`
	RequiresUpgrade bool   `json:"requires_upgrade,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

// Decide evaluates one gated action. Callers must run ApplyTimeEffects (and
// persist its changes) before calling, so an active-but-lapsed record has
// already been flipped to expired.
func Decide(sub *models.Subscription, plan *models.Plan, role string, action Action, now time.Time) Decision {
	if role == models.RoleAdmin {
		return Decision{Allowed: true, Remaining: models.UnlimitedQuota}
	}
	if !sub.HasPlan() || plan == nil {
		return anonymousDecision(role, action)
	}

	r, ok := accessRules[role][action]
	if !ok {
		return Decision{Reason: "role not permitted"}
	}

	if sub.Status == models.SubscriptionExpired || (sub.EndDate != nil && now.After(*sub.EndDate)) {
		return Decision{
			RequiresUpgrade: true,
			Reason:          "Subscription has expired",
		}
	}
	if sub.Status != models.SubscriptionActive {
		return Decision{
			RequiresUpgrade: true,
			Reason:          fmt.Sprintf("Subscription is %s", sub.Status),
		}
	}

	if !r.metered {
		return Decision{Allowed: true, Remaining: models.UnlimitedQuota}
	}

	used, limit := CounterPair(sub, r.counter)
	if limit == models.UnlimitedQuota {
		return Decision{Allowed: true, Remaining: models.UnlimitedQuota}
	}

	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	d := Decision{
		Allowed:      remaining > 0,
		Remaining:    remaining,
		LimitReached: remaining == 0,
	}
	if !d.Allowed {
		d.RequiresUpgrade = true
		d.Reason = fmt.Sprintf("%s limit reached", r.counter)
	}
	return d
}

func anonymousDecision(role string, action Action) Decision {
	if _, ok := accessRules[role][action]; !ok && role != "" {
		return Decision{Reason: "role not permitted"}
	}
	if action == ActionBrowse {
		return Decision{Allowed: true, Remaining: AnonymousTier.BrowseRemaining}
	}
	return Decision{
		LimitReached:    true,
		RequiresUpgrade: true,
		Reason:          "subscription required",
	}
}

// CounterPair returns the used/limit snapshot for a counter.
func CounterPair(sub *models.Subscription, counter Counter) (used, limit int) {
	switch counter {
	case CounterListings:
		return sub.ListingsUsed, sub.ListingsLimit
	case CounterJobPosts:
		return sub.JobPostsUsed, sub.JobPostsLimit
	default:
		return sub.BrowseCount, sub.BrowseCountLimit
	}
}

// ApplyTimeEffects folds time-driven state changes into the record: lazy
// expiry and the 30-day browse rollover. It reports whether the record
// changed so the caller knows to persist it. Idempotent for a fixed now.
func ApplyTimeEffects(sub *models.Subscription, now time.Time) bool {
	if !sub.HasPlan() {
		return false
	}

	changed := false
	if sub.Status == models.SubscriptionActive && sub.EndDate != nil && now.After(*sub.EndDate) {
		sub.Status = models.SubscriptionExpired
		changed = true
	}

	if sub.LastBrowseReset == nil || now.Sub(*sub.LastBrowseReset) >= BrowseResetInterval {
		if sub.BrowseCount != 0 || sub.LastBrowseReset == nil {
			sub.BrowseCount = 0
			reset := now
			sub.LastBrowseReset = &reset
			changed = true
		}
	}
	return changed
}

// Visibility is the verdict for the listing visibility-delay check.
type Visibility struct {
	Visible     bool      `json:"visible"`
	DelayHours  int       `json:"delay_hours"`
	AvailableAt time.Time `json:"available_at"`
}

// ListingVisibility decides when a freshly created listing becomes visible to
// a viewer. The delay comes from the viewer's plan (teachers use the teacher
// delay); admins and the listing owner always see immediately; viewers with
// no active subscription get the most restrictive delay.
func ListingVisibility(createdAt time.Time, sub *models.Subscription, plan *models.Plan, role string, isOwner bool, now time.Time) Visibility {
	if isOwner || role == models.RoleAdmin {
		return Visibility{Visible: true, AvailableAt: createdAt}
	}

	delayDays := AnonymousTier.DataDelayDays
	if plan != nil && sub.IsActive() {
		if role == models.PersonaTeacher {
			delayDays = plan.Features.TeacherDataDelayDays
		} else {
			delayDays = plan.Features.DataDelayDays
		}
	}

	delayHours := delayDays * 24
	availableAt := createdAt.Add(time.Duration(delayHours) * time.Hour)
	return Visibility{
		Visible:     !now.Before(availableAt),
		DelayHours:  delayHours,
		AvailableAt: availableAt,
	}
}

// NotificationAllowed reports whether the viewer's plan grants instant
// alerts: job alerts for teachers, vehicle/listing alerts for institutes and
// vendors. Anonymous and non-active subscriptions are denied.
func NotificationAllowed(sub *models.Subscription, plan *models.Plan, role string) bool {
	if plan == nil || !sub.IsActive() {
		return false
	}
	if role == models.PersonaTeacher {
		return plan.Features.InstantJobAlerts
	}
	return plan.Features.InstantVehicleAlerts
}
