package repository

import (
	"database/sql"
	"fmt"
	"go-taskhub-api/model"

	"github.com/google/uuid"
)

// IProjectRepository defines the contract for project database operations.
type IProjectRepository interface {
	Create(project *model.Project) error
	GetByID(id uuid.UUID) (*model.Project, error)
	CountForOrg(organizationID uuid.UUID) (int, error)
	ListForOrg(organizationID uuid.UUID, q, sort, order string, limit, offset int) ([]*model.Project, int, error)
	Update(project *model.Project) error
	Delete(id uuid.UUID) error
}

type ProjectRepository struct {
	DB *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{DB: db}
}

func (r *ProjectRepository) Create(project *model.Project) error {
	project.ID = uuid.New()
	query := `INSERT INTO projects (id, organization_id, name, description)
	          VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`
	return r.DB.QueryRow(query, project.ID, project.OrganizationID, project.Name,
		nullableString(project.Description)).
		Scan(&project.CreatedAt, &project.UpdatedAt)
}

func (r *ProjectRepository) GetByID(id uuid.UUID) (*model.Project, error) {
	project := &model.Project{}
	var description sql.NullString
	query := `SELECT id, organization_id, name, description, created_at, updated_at
	          FROM projects WHERE id = $1`
	err := r.DB.QueryRow(query, id).
		Scan(&project.ID, &project.OrganizationID, &project.Name, &description,
			&project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return nil, err
	}
	project.Description = description.String
	return project, nil
}

// CountForOrg returns the live project count used by the plan-quota check.
func (r *ProjectRepository) CountForOrg(organizationID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM projects WHERE organization_id = $1`
	err := r.DB.QueryRow(query, organizationID).Scan(&count)
	return count, err
}

// ListForOrg lists projects for an organization with optional name search.
// sort and order are whitelisted again here before being interpolated into
// the query.
func (r *ProjectRepository) ListForOrg(organizationID uuid.UUID, q, sort, order string, limit, offset int) ([]*model.Project, int, error) {
	where := `WHERE organization_id = $1`
	args := []interface{}{organizationID}
	if q != "" {
		where += ` AND name ILIKE $2`
		args = append(args, "%"+q+"%")
	}

	var total int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM projects `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol := "created_at"
	if sort == "name" {
		sortCol = "name"
	}
	dir := "DESC"
	if order == "asc" {
		dir = "ASC"
	}

	query := fmt.Sprintf(`SELECT id, organization_id, name, description, created_at, updated_at
	          FROM projects %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		where, sortCol, dir, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		var p model.Project
		var description sql.NullString
		if err := rows.Scan(&p.ID, &p.OrganizationID, &p.Name, &description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		p.Description = description.String
		projects = append(projects, &p)
	}
	return projects, total, rows.Err()
}

func (r *ProjectRepository) Update(project *model.Project) error {
	query := `UPDATE projects SET name = $2, description = $3, updated_at = now()
	          WHERE id = $1 RETURNING updated_at`
	return r.DB.QueryRow(query, project.ID, project.Name, nullableString(project.Description)).
		Scan(&project.UpdatedAt)
}

func (r *ProjectRepository) Delete(id uuid.UUID) error {
	_, err := r.DB.Exec(`DELETE FROM projects WHERE id = $1`, id)
	return err
}
