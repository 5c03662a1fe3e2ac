package repository

import (
	"database/sql"
	"go-taskhub-api/model"

	"github.com/google/uuid"
)

// IMembershipRepository defines the contract for membership database operations.
type IMembershipRepository interface {
	Create(membership *model.Membership) error
	CreateTx(tx *sql.Tx, membership *model.Membership) error
	GetByUserOrg(userID, organizationID uuid.UUID) (*model.Membership, error)
	CountForOrg(organizationID uuid.UUID) (int, error)
	ListMembers(organizationID uuid.UUID, limit, offset int) ([]*model.Membership, int, error)
}

type MembershipRepository struct {
	DB *sql.DB
}

func NewMembershipRepository(db *sql.DB) *MembershipRepository {
	return &MembershipRepository{DB: db}
}

const insertMembershipQuery = `INSERT INTO memberships (id, user_id, organization_id, role)
	VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`

func (r *MembershipRepository) Create(membership *model.Membership) error {
	membership.ID = uuid.New()
	return r.DB.QueryRow(insertMembershipQuery,
		membership.ID, membership.UserID, membership.OrganizationID, membership.Role).
		Scan(&membership.CreatedAt, &membership.UpdatedAt)
}

func (r *MembershipRepository) CreateTx(tx *sql.Tx, membership *model.Membership) error {
	membership.ID = uuid.New()
	return tx.QueryRow(insertMembershipQuery,
		membership.ID, membership.UserID, membership.OrganizationID, membership.Role).
		Scan(&membership.CreatedAt, &membership.UpdatedAt)
}

func (r *MembershipRepository) GetByUserOrg(userID, organizationID uuid.UUID) (*model.Membership, error) {
	m := &model.Membership{}
	query := `SELECT id, user_id, organization_id, role, created_at, updated_at
	          FROM memberships WHERE user_id = $1 AND organization_id = $2`
	err := r.DB.QueryRow(query, userID, organizationID).
		Scan(&m.ID, &m.UserID, &m.OrganizationID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// CountForOrg returns the live member count used by the plan-quota check.
func (r *MembershipRepository) CountForOrg(organizationID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM memberships WHERE organization_id = $1`
	err := r.DB.QueryRow(query, organizationID).Scan(&count)
	return count, err
}

func (r *MembershipRepository) ListMembers(organizationID uuid.UUID, limit, offset int) ([]*model.Membership, int, error) {
	var total int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM memberships WHERE organization_id = $1`, organizationID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_id, organization_id, role, created_at, updated_at
	          FROM memberships WHERE organization_id = $1
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(query, organizationID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var members []*model.Membership
	for rows.Next() {
		var m model.Membership
		if err := rows.Scan(&m.ID, &m.UserID, &m.OrganizationID, &m.Role, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, err
		}
		members = append(members, &m)
	}
	return members, total, rows.Err()
}
