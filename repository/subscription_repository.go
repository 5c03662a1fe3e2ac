package repository

import (
	"database/sql"
	"go-taskhub-api/model"

	"github.com/google/uuid"
)

// ISubscriptionRepository defines the contract for subscription database operations.
type ISubscriptionRepository interface {
	CreateTx(tx *sql.Tx, sub *model.Subscription) error
	GetByOrg(organizationID uuid.UUID) (*model.Subscription, error)
	SetPlan(organizationID uuid.UUID, plan model.Plan) (*model.Subscription, error)
}

type SubscriptionRepository struct {
	DB *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{DB: db}
}

func (r *SubscriptionRepository) CreateTx(tx *sql.Tx, sub *model.Subscription) error {
	sub.ID = uuid.New()
	query := `INSERT INTO subscriptions (id, organization_id, plan) VALUES ($1, $2, $3)
	          RETURNING created_at, updated_at`
	return tx.QueryRow(query, sub.ID, sub.OrganizationID, sub.Plan).
		Scan(&sub.CreatedAt, &sub.UpdatedAt)
}

func (r *SubscriptionRepository) GetByOrg(organizationID uuid.UUID) (*model.Subscription, error) {
	sub := &model.Subscription{}
	query := `SELECT id, organization_id, plan, created_at, updated_at
	          FROM subscriptions WHERE organization_id = $1`
	err := r.DB.QueryRow(query, organizationID).
		Scan(&sub.ID, &sub.OrganizationID, &sub.Plan, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// SetPlan updates the organization's plan, inserting the subscription row if
// it is somehow missing (orgs created before the subscription backfill).
func (r *SubscriptionRepository) SetPlan(organizationID uuid.UUID, plan model.Plan) (*model.Subscription, error) {
	sub := &model.Subscription{OrganizationID: organizationID, Plan: plan}
	query := `INSERT INTO subscriptions (id, organization_id, plan) VALUES ($1, $2, $3)
	          ON CONFLICT (organization_id)
	          DO UPDATE SET plan = EXCLUDED.plan, updated_at = now()
	          RETURNING id, created_at, updated_at`
	err := r.DB.QueryRow(query, uuid.New(), organizationID, plan).
		Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return sub, nil
}
