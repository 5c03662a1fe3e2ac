// file: service/task_service_test.go

package service

import (
	"database/sql"
	"go-taskhub-api/common"
	"go-taskhub-api/model"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// mockTaskRepo is a mock implementation of ITaskRepository.
type mockTaskRepo struct{ mock.Mock }

func (m *mockTaskRepo) Create(task *model.Task) error {
	args := m.Called(task)
	return args.Error(0)
}

func (m *mockTaskRepo) GetByID(id uuid.UUID) (*model.Task, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *mockTaskRepo) ListForProject(projectID uuid.UUID, status, sort, order string, limit, offset int) ([]*model.Task, int, error) {
	args := m.Called(projectID, status, sort, order, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*model.Task), args.Int(1), args.Error(2)
}

func (m *mockTaskRepo) Update(task *model.Task) error {
	args := m.Called(task)
	return args.Error(0)
}

func (m *mockTaskRepo) Delete(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func TestTaskService_CreateTask(t *testing.T) {
	repo := new(mockTaskRepo)
	svc := NewTaskService(repo)
	projectID := uuid.New()

	repo.On("Create", mock.MatchedBy(func(task *model.Task) bool {
		return task.ProjectID == projectID && task.Title == "Write docs"
	})).Return(nil).Once()

	task, err := svc.CreateTask(projectID, "Write docs", "", model.TaskStatusTodo)

	assert.NoError(t, err)
	assert.Equal(t, model.TaskStatusTodo, task.Status)
	repo.AssertExpectations(t)
}

func TestTaskService_GetTask_NotFound(t *testing.T) {
	repo := new(mockTaskRepo)
	svc := NewTaskService(repo)
	taskID := uuid.New()
	repo.On("GetByID", taskID).Return(nil, sql.ErrNoRows).Once()

	_, err := svc.GetTask(taskID)

	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTaskService_UpdateTask(t *testing.T) {
	repo := new(mockTaskRepo)
	svc := NewTaskService(repo)
	task := &model.Task{ID: uuid.New(), ProjectID: uuid.New(), Title: "Old", Status: model.TaskStatusTodo}

	repo.On("GetByID", task.ID).Return(task, nil).Once()
	repo.On("Update", mock.MatchedBy(func(updated *model.Task) bool {
		return updated.Title == "Old" && updated.Status == model.TaskStatusDone
	})).Return(nil).Once()

	status := model.TaskStatusDone
	updated, err := svc.UpdateTask(task.ID, nil, nil, &status)

	assert.NoError(t, err)
	assert.Equal(t, model.TaskStatusDone, updated.Status)
	assert.Equal(t, "Old", updated.Title, "fields absent from the patch stay untouched")
	repo.AssertExpectations(t)
}

func TestTaskService_DeleteTask_NotFound(t *testing.T) {
	repo := new(mockTaskRepo)
	svc := NewTaskService(repo)
	taskID := uuid.New()
	repo.On("GetByID", taskID).Return(nil, sql.ErrNoRows).Once()

	err := svc.DeleteTask(taskID)

	assert.ErrorIs(t, err, common.ErrNotFound)
	repo.AssertNotCalled(t, "Delete", mock.Anything)
}
