package service

import (
	"database/sql"
	"errors"
	"go-taskhub-api/common"
	"go-taskhub-api/model"
	"go-taskhub-api/repository"

	"github.com/google/uuid"
)

// QuotaChecker gates resource-creating mutations on the plan quota.
// Satisfied by OrganizationService.
type QuotaChecker interface {
	CheckQuota(orgID uuid.UUID, resource ResourceKind) error
}

type ProjectService struct {
	projects repository.IProjectRepository
	quota    QuotaChecker
}

func NewProjectService(projects repository.IProjectRepository, quota QuotaChecker) *ProjectService {
	return &ProjectService{projects: projects, quota: quota}
}

func (s *ProjectService) ListProjects(orgID uuid.UUID, q, sort, order string, limit, offset int) ([]*model.Project, int, error) {
	return s.projects.ListForOrg(orgID, q, sort, order, limit, offset)
}

func (s *ProjectService) CreateProject(orgID uuid.UUID, name, description string) (*model.Project, error) {
	if err := s.quota.CheckQuota(orgID, ResourceProjects); err != nil {
		return nil, err
	}
	project := &model.Project{OrganizationID: orgID, Name: name, Description: description}
	if err := s.projects.Create(project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) GetProject(projectID uuid.UUID) (*model.Project, error) {
	project, err := s.projects.GetByID(projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NotFound("project not found")
		}
		return nil, err
	}
	return project, nil
}

// GetProjectForOrg loads a project and rejects cross-tenant access: a
// project belonging to another organization is Forbidden even when its id
// is guessed correctly.
func (s *ProjectService) GetProjectForOrg(projectID, orgID uuid.UUID) (*model.Project, error) {
	project, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if project.OrganizationID != orgID {
		return nil, common.Forbidden("project does not belong to the current organization")
	}
	return project, nil
}

func (s *ProjectService) UpdateProject(projectID uuid.UUID, name, description *string) (*model.Project, error) {
	project, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if name != nil {
		project.Name = *name
	}
	if description != nil {
		project.Description = *description
	}
	if err := s.projects.Update(project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) DeleteProject(projectID uuid.UUID) error {
	if _, err := s.GetProject(projectID); err != nil {
		return err
	}
	return s.projects.Delete(projectID)
}
