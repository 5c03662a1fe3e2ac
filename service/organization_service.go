// file: service/organization_service.go

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"go-taskhub-api/common"
	"go-taskhub-api/logger"
	"go-taskhub-api/model"
	"go-taskhub-api/repository"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ResourceKind names a quota-limited resource type.
type ResourceKind string

const (
	ResourceMembers  ResourceKind = "members"
	ResourceProjects ResourceKind = "projects"
)

const planCacheTTL = 5 * time.Minute

// OrganizationService handles tenant lifecycle: org creation, membership
// management, plan changes and the plan-quota checks that gate mutations.
type OrganizationService struct {
	db            *sql.DB
	orgs          repository.IOrganizationRepository
	memberships   repository.IMembershipRepository
	subscriptions repository.ISubscriptionRepository
	users         repository.IUserRepository
	projects      repository.IProjectRepository
	cache         ICacheClient
}

func NewOrganizationService(db *sql.DB, orgs repository.IOrganizationRepository,
	memberships repository.IMembershipRepository, subscriptions repository.ISubscriptionRepository,
	users repository.IUserRepository, projects repository.IProjectRepository,
	cache ICacheClient) *OrganizationService {
	return &OrganizationService{
		db:            db,
		orgs:          orgs,
		memberships:   memberships,
		subscriptions: subscriptions,
		users:         users,
		projects:      projects,
		cache:         cache,
	}
}

// CreateOrg creates an organization with a FREE subscription and an OWNER
// membership for the creator. The three inserts commit or roll back as one
// unit: no org without a subscription, no org without an owner.
func (s *OrganizationService) CreateOrg(ctx context.Context, creatorUserID uuid.UUID, name, slug string) (*model.Organization, error) {
	if _, err := s.orgs.GetBySlug(slug); err == nil {
		return nil, common.Conflict("slug already in use")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	org := &model.Organization{Name: name, Slug: slug}
	if err := s.orgs.CreateTx(tx, org); err != nil {
		if isUniqueViolation(err) {
			return nil, common.Conflict("slug already in use")
		}
		return nil, err
	}

	sub := &model.Subscription{OrganizationID: org.ID, Plan: model.PlanFree}
	if err := s.subscriptions.CreateTx(tx, sub); err != nil {
		return nil, err
	}

	membership := &model.Membership{
		UserID:         creatorUserID,
		OrganizationID: org.ID,
		Role:           model.RoleOwner,
	}
	if err := s.memberships.CreateTx(tx, membership); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit organization creation: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"organization_id": org.ID,
		"owner_user_id":   creatorUserID,
	}).Info("Organization created")
	return org, nil
}

func (s *OrganizationService) ListOrgsForUser(userID uuid.UUID, limit, offset int) ([]*model.Organization, int, error) {
	return s.orgs.ListForUser(userID, limit, offset)
}

func (s *OrganizationService) GetOrg(orgID uuid.UUID) (*model.Organization, error) {
	org, err := s.orgs.GetByID(orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NotFound("organization not found")
		}
		return nil, err
	}
	return org, nil
}

// GetMembership resolves the caller's membership in an organization;
// absence is Forbidden rather than NotFound so org ids cannot be probed.
func (s *OrganizationService) GetMembership(userID, orgID uuid.UUID) (*model.Membership, error) {
	membership, err := s.memberships.GetByUserOrg(userID, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.Forbidden("no access to this organization")
		}
		return nil, err
	}
	return membership, nil
}

func (s *OrganizationService) ListMembers(orgID uuid.UUID, limit, offset int) ([]*model.Membership, int, error) {
	return s.memberships.ListMembers(orgID, limit, offset)
}

// AddMember adds an existing user to the organization, enforcing the plan's
// member quota at mutation time.
func (s *OrganizationService) AddMember(orgID uuid.UUID, email string, role model.Role) (*model.Membership, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NotFound("user not found")
		}
		return nil, err
	}

	if _, err := s.memberships.GetByUserOrg(user.ID, orgID); err == nil {
		return nil, common.Conflict("user is already a member of this organization")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if err := s.CheckQuota(orgID, ResourceMembers); err != nil {
		return nil, err
	}

	membership := &model.Membership{UserID: user.ID, OrganizationID: orgID, Role: role}
	if err := s.memberships.Create(membership); err != nil {
		if isUniqueViolation(err) {
			return nil, common.Conflict("user is already a member of this organization")
		}
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"organization_id": orgID,
		"user_id":         user.ID,
		"role":            role,
	}).Info("Member added to organization")
	return membership, nil
}

// ChangePlan switches the organization's subscription tier and drops the
// cached plan so subsequent quota checks see the new ceiling.
func (s *OrganizationService) ChangePlan(orgID uuid.UUID, plan model.Plan) (*model.Subscription, error) {
	if !plan.IsValid() {
		return nil, common.Conflict("invalid plan")
	}
	sub, err := s.subscriptions.SetPlan(orgID, plan)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Del(context.Background(), planCacheKey(orgID))
	}
	logger.Log.WithFields(logrus.Fields{
		"organization_id": orgID,
		"plan":            plan,
	}).Info("Subscription plan changed")
	return sub, nil
}

// CheckQuota compares the live resource count against the plan's quota row
// and fails Forbidden at or above the ceiling.
//
// This is a soft limit: the count-then-create sequence is not serialized,
// so concurrent creations can transiently overshoot the quota by a small
// margin.
func (s *OrganizationService) CheckQuota(orgID uuid.UUID, resource ResourceKind) error {
	limits := model.LimitsForPlan(s.currentPlan(orgID))

	var count, limit int
	var err error
	switch resource {
	case ResourceMembers:
		count, err = s.memberships.CountForOrg(orgID)
		limit = limits.MaxUsers
	case ResourceProjects:
		count, err = s.projects.CountForOrg(orgID)
		limit = limits.MaxProjects
	default:
		return fmt.Errorf("unknown resource kind: %s", resource)
	}
	if err != nil {
		return err
	}
	if count >= limit {
		logger.Log.WithFields(logrus.Fields{
			"organization_id": orgID,
			"resource":        resource,
			"count":           count,
			"limit":           limit,
		}).Warn("Plan quota reached")
		return common.Forbidden(fmt.Sprintf("plan limit for %s reached", resource))
	}
	return nil
}

// currentPlan resolves the organization's plan, defaulting to the lowest
// tier when no subscription row exists. Uses a cache-aside read with a
// short TTL; ChangePlan invalidates.
func (s *OrganizationService) currentPlan(orgID uuid.UUID) model.Plan {
	ctx := context.Background()
	key := planCacheKey(orgID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Result(); err == nil {
			var plan model.Plan
			if err := json.Unmarshal([]byte(cached), &plan); err == nil && plan.IsValid() {
				return plan
			}
		}
	}

	plan := model.PlanFree
	sub, err := s.subscriptions.GetByOrg(orgID)
	if err == nil {
		plan = sub.Plan
	}

	if s.cache != nil {
		if data, err := json.Marshal(plan); err == nil {
			s.cache.Set(ctx, key, data, planCacheTTL)
		}
	}
	return plan
}

func planCacheKey(orgID uuid.UUID) string {
	return fmt.Sprintf("org_plan:%s", orgID)
}
