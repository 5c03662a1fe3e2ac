package handler

import (
	"encoding/json"
	"go-taskhub-api/common"
	"go-taskhub-api/model"
	"go-taskhub-api/service"
	"net/http"

	"github.com/google/uuid"
)

type ProjectHandler struct {
	service *service.ProjectService
}

func NewProjectHandler(service *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) *common.AppError {
	orgID, ok := r.Context().Value(OrgIDKey).(uuid.UUID)
	if !ok {
		return common.NewAppError(http.StatusForbidden, OrgHeader+" header is required", nil)
	}

	limit, offset := parsePagination(r)
	sort, order := parseSort(r, "created_at", "name")
	q := r.URL.Query().Get("q")

	projects, total, err := h.service.ListProjects(orgID, q, sort, order, limit, offset)
	if err != nil {
		return common.FromDomainError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.Page{Items: projects, Total: total, Limit: limit, Offset: offset})
	return nil
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CreateProjectRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	orgID, ok := r.Context().Value(OrgIDKey).(uuid.UUID)
	if !ok {
		return common.NewAppError(http.StatusForbidden, OrgHeader+" header is required", nil)
	}

	project, err := h.service.CreateProject(orgID, req.Name, req.Description)
	if err != nil {
		return common.FromDomainError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(project)
	return nil
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) *common.AppError {
	orgID, projectID, appErr := h.scopedProjectID(r)
	if appErr != nil {
		return appErr
	}

	project, err := h.service.GetProjectForOrg(projectID, orgID)
	if err != nil {
		return common.FromDomainError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(project)
	return nil
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.UpdateProjectRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	orgID, projectID, appErr := h.scopedProjectID(r)
	if appErr != nil {
		return appErr
	}

	if _, err := h.service.GetProjectForOrg(projectID, orgID); err != nil {
		return common.FromDomainError(err)
	}
	project, err := h.service.UpdateProject(projectID, req.Name, req.Description)
	if err != nil {
		return common.FromDomainError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(project)
	return nil
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) *common.AppError {
	orgID, projectID, appErr := h.scopedProjectID(r)
	if appErr != nil {
		return appErr
	}

	if _, err := h.service.GetProjectForOrg(projectID, orgID); err != nil {
		return common.FromDomainError(err)
	}
	if err := h.service.DeleteProject(projectID); err != nil {
		return common.FromDomainError(err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *ProjectHandler) scopedProjectID(r *http.Request) (uuid.UUID, uuid.UUID, *common.AppError) {
	orgID, ok := r.Context().Value(OrgIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, uuid.Nil, common.NewAppError(http.StatusForbidden, OrgHeader+" header is required", nil)
	}
	projectID, err := uuid.Parse(r.PathValue("project_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, common.NewAppError(http.StatusNotFound, "Invalid project id", err)
	}
	return orgID, projectID, nil
}
