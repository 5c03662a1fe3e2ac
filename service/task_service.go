package service

import (
	"database/sql"
	"errors"
	"go-taskhub-api/common"
	"go-taskhub-api/model"
	"go-taskhub-api/repository"

	"github.com/google/uuid"
)

type TaskService struct {
	tasks repository.ITaskRepository
}

func NewTaskService(tasks repository.ITaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

func (s *TaskService) ListTasks(projectID uuid.UUID, status, sort, order string, limit, offset int) ([]*model.Task, int, error) {
	return s.tasks.ListForProject(projectID, status, sort, order, limit, offset)
}

func (s *TaskService) CreateTask(projectID uuid.UUID, title, description string, status model.TaskStatus) (*model.Task, error) {
	task := &model.Task{
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Status:      status,
	}
	if err := s.tasks.Create(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) GetTask(taskID uuid.UUID) (*model.Task, error) {
	task, err := s.tasks.GetByID(taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NotFound("task not found")
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) UpdateTask(taskID uuid.UUID, title, description *string, status *model.TaskStatus) (*model.Task, error) {
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	if title != nil {
		task.Title = *title
	}
	if description != nil {
		task.Description = *description
	}
	if status != nil {
		task.Status = *status
	}
	if err := s.tasks.Update(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) DeleteTask(taskID uuid.UUID) error {
	if _, err := s.GetTask(taskID); err != nil {
		return err
	}
	return s.tasks.Delete(taskID)
}
