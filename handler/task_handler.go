package handler

import (
	"encoding/json"
	"go-taskhub-api/common"
	"go-taskhub-api/model"
	"go-taskhub-api/service"
	"net/http"

	"github.com/google/uuid"
)

type TaskHandler struct {
	tasks    *service.TaskService
	projects *service.ProjectService
}

func NewTaskHandler(tasks *service.TaskService, projects *service.ProjectService) *TaskHandler {
	return &TaskHandler{tasks: tasks, projects: projects}
}

// List expects a project_id query param; the project must belong to the
// current organization.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) *common.AppError {
	orgID, ok := r.Context().Value(OrgIDKey).(uuid.UUID)
	if !ok {
		return common.NewAppError(http.StatusForbidden, OrgHeader+" header is required", nil)
	}
	projectID, err := uuid.Parse(r.URL.Query().Get("project_id"))
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "project_id query parameter is required", err)
	}
	if _, err := h.projects.GetProjectForOrg(projectID, orgID); err != nil {
		return common.FromDomainError(err)
	}

	status := r.URL.Query().Get("status")
	switch status {
	case "", string(model.TaskStatusTodo), string(model.TaskStatusInProgress), string(model.TaskStatusDone):
	default:
		return common.NewAppError(http.StatusBadRequest, "Invalid status filter", nil)
	}
	limit, offset := parsePagination(r)
	sort, order := parseSort(r, "created_at", "title")

	tasks, total, err := h.tasks.ListTasks(projectID, status, sort, order, limit, offset)
	if err != nil {
		return common.FromDomainError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.Page{Items: tasks, Total: total, Limit: limit, Offset: offset})
	return nil
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CreateTaskRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	orgID, ok := r.Context().Value(OrgIDKey).(uuid.UUID)
	if !ok {
		return common.NewAppError(http.StatusForbidden, OrgHeader+" header is required", nil)
	}
	projectID, err := uuid.Parse(r.URL.Query().Get("project_id"))
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "project_id query parameter is required", err)
	}
	if _, err := h.projects.GetProjectForOrg(projectID, orgID); err != nil {
		return common.FromDomainError(err)
	}

	task, err := h.tasks.CreateTask(projectID, req.Title, req.Description, req.Status)
	if err != nil {
		return common.FromDomainError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(task)
	return nil
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) *common.AppError {
	task, appErr := h.scopedTask(r)
	if appErr != nil {
		return appErr
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
	return nil
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.UpdateTaskRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	task, appErr := h.scopedTask(r)
	if appErr != nil {
		return appErr
	}

	updated, err := h.tasks.UpdateTask(task.ID, req.Title, req.Description, req.Status)
	if err != nil {
		return common.FromDomainError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
	return nil
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) *common.AppError {
	task, appErr := h.scopedTask(r)
	if appErr != nil {
		return appErr
	}

	if err := h.tasks.DeleteTask(task.ID); err != nil {
		return common.FromDomainError(err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// scopedTask loads the task from the path and verifies its project belongs
// to the current organization.
func (h *TaskHandler) scopedTask(r *http.Request) (*model.Task, *common.AppError) {
	orgID, ok := r.Context().Value(OrgIDKey).(uuid.UUID)
	if !ok {
		return nil, common.NewAppError(http.StatusForbidden, OrgHeader+" header is required", nil)
	}
	taskID, err := uuid.Parse(r.PathValue("task_id"))
	if err != nil {
		return nil, common.NewAppError(http.StatusNotFound, "Invalid task id", err)
	}

	task, err := h.tasks.GetTask(taskID)
	if err != nil {
		return nil, common.FromDomainError(err)
	}
	if _, err := h.projects.GetProjectForOrg(task.ProjectID, orgID); err != nil {
		return nil, common.FromDomainError(err)
	}
	return task, nil
}
