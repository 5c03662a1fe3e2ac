package model

import (
	"time"

	"github.com/google/uuid"
)

// Membership binds one user to one organization with a role.
// At most one membership may exist per (user, organization) pair;
// the database enforces this with a unique constraint.
type Membership struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
