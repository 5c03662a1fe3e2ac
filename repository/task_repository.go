package repository

import (
	"database/sql"
	"fmt"
	"go-taskhub-api/model"

	"github.com/google/uuid"
)

// ITaskRepository defines the contract for task database operations.
type ITaskRepository interface {
	Create(task *model.Task) error
	GetByID(id uuid.UUID) (*model.Task, error)
	ListForProject(projectID uuid.UUID, status, sort, order string, limit, offset int) ([]*model.Task, int, error)
	Update(task *model.Task) error
	Delete(id uuid.UUID) error
}

type TaskRepository struct {
	DB *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

func (r *TaskRepository) Create(task *model.Task) error {
	task.ID = uuid.New()
	if task.Status == "" {
		task.Status = model.TaskStatusTodo
	}
	query := `INSERT INTO tasks (id, project_id, title, description, status)
	          VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`
	return r.DB.QueryRow(query, task.ID, task.ProjectID, task.Title,
		nullableString(task.Description), task.Status).
		Scan(&task.CreatedAt, &task.UpdatedAt)
}

func (r *TaskRepository) GetByID(id uuid.UUID) (*model.Task, error) {
	task := &model.Task{}
	var description sql.NullString
	query := `SELECT id, project_id, title, description, status, created_at, updated_at
	          FROM tasks WHERE id = $1`
	err := r.DB.QueryRow(query, id).
		Scan(&task.ID, &task.ProjectID, &task.Title, &description, &task.Status,
			&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	task.Description = description.String
	return task, nil
}

func (r *TaskRepository) ListForProject(projectID uuid.UUID, status, sort, order string, limit, offset int) ([]*model.Task, int, error) {
	where := `WHERE project_id = $1`
	args := []interface{}{projectID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}

	var total int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM tasks `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol := "created_at"
	if sort == "title" {
		sortCol = "title"
	}
	dir := "DESC"
	if order == "asc" {
		dir = "ASC"
	}

	query := fmt.Sprintf(`SELECT id, project_id, title, description, status, created_at, updated_at
	          FROM tasks %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		where, sortCol, dir, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		var t model.Task
		var description sql.NullString
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &description, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		t.Description = description.String
		tasks = append(tasks, &t)
	}
	return tasks, total, rows.Err()
}

func (r *TaskRepository) Update(task *model.Task) error {
	query := `UPDATE tasks SET title = $2, description = $3, status = $4, updated_at = now()
	          WHERE id = $1 RETURNING updated_at`
	return r.DB.QueryRow(query, task.ID, task.Title, nullableString(task.Description), task.Status).
		Scan(&task.UpdatedAt)
}

func (r *TaskRepository) Delete(id uuid.UUID) error {
	_, err := r.DB.Exec(`DELETE FROM tasks WHERE id = $1`, id)
	return err
}
