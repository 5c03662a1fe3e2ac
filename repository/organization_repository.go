package repository

import (
	"database/sql"
	"go-taskhub-api/model"

	"github.com/google/uuid"
)

// IOrganizationRepository defines the contract for organization database operations.
type IOrganizationRepository interface {
	CreateTx(tx *sql.Tx, org *model.Organization) error
	GetByID(id uuid.UUID) (*model.Organization, error)
	GetBySlug(slug string) (*model.Organization, error)
	ListForUser(userID uuid.UUID, limit, offset int) ([]*model.Organization, int, error)
}

type OrganizationRepository struct {
	DB *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{DB: db}
}

// CreateTx inserts an organization inside an existing transaction. Org
// creation also writes a subscription and an OWNER membership, so the three
// inserts share one commit-or-rollback unit.
func (r *OrganizationRepository) CreateTx(tx *sql.Tx, org *model.Organization) error {
	org.ID = uuid.New()
	query := `INSERT INTO organizations (id, name, slug) VALUES ($1, $2, $3)
	          RETURNING created_at, updated_at`
	return tx.QueryRow(query, org.ID, org.Name, org.Slug).Scan(&org.CreatedAt, &org.UpdatedAt)
}

func (r *OrganizationRepository) GetByID(id uuid.UUID) (*model.Organization, error) {
	org := &model.Organization{}
	query := `SELECT id, name, slug, created_at, updated_at FROM organizations WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(&org.ID, &org.Name, &org.Slug, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return org, nil
}

func (r *OrganizationRepository) GetBySlug(slug string) (*model.Organization, error) {
	org := &model.Organization{}
	query := `SELECT id, name, slug, created_at, updated_at FROM organizations WHERE slug = $1`
	err := r.DB.QueryRow(query, slug).Scan(&org.ID, &org.Name, &org.Slug, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return org, nil
}

// ListForUser returns the organizations the user belongs to, newest first,
// along with the total count for the pagination envelope.
func (r *OrganizationRepository) ListForUser(userID uuid.UUID, limit, offset int) ([]*model.Organization, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM organizations o
	               JOIN memberships m ON m.organization_id = o.id
	               WHERE m.user_id = $1`
	if err := r.DB.QueryRow(countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT o.id, o.name, o.slug, o.created_at, o.updated_at FROM organizations o
	          JOIN memberships m ON m.organization_id = o.id
	          WHERE m.user_id = $1
	          ORDER BY o.created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orgs []*model.Organization
	for rows.Next() {
		var org model.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.Slug, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, 0, err
		}
		orgs = append(orgs, &org)
	}
	return orgs, total, rows.Err()
}
