package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles. The three marketplace personas plus the admin role.
const (
	RoleAdmin = "admin"
)

// User is the owning aggregate for the subscription record. Authentication,
// password handling and profile CRUD live in external collaborators; this
// service only reads identity, role and the embedded subscription.
type User struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	Email        string       `json:"email" db:"email"`
	Name         string       `json:"name" db:"name"`
	Role         string       `json:"role" db:"role"`
	Subscription Subscription `json:"subscription"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the user bypasses entitlement gating.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
