// file: model/subscription.go

package model

import (
	"time"

	"github.com/google/uuid"
)

type Plan string

const (
	PlanFree Plan = "FREE"
	PlanPro  Plan = "PRO"
)

// PlanLimits is the static quota table per plan tier.
type PlanLimits struct {
	MaxUsers    int
	MaxProjects int
}

var planLimits = map[Plan]PlanLimits{
	PlanFree: {MaxUsers: 3, MaxProjects: 5},
	PlanPro:  {MaxUsers: 50, MaxProjects: 100},
}

// LimitsForPlan returns the quota row for the given plan.
// Unknown plans fall back to the lowest tier.
func LimitsForPlan(plan Plan) PlanLimits {
	if limits, ok := planLimits[plan]; ok {
		return limits
	}
	return planLimits[PlanFree]
}

func (p Plan) IsValid() bool {
	_, ok := planLimits[p]
	return ok
}

// Subscription holds the plan tier for exactly one organization.
type Subscription struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Plan           Plan      `json:"plan"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
