package repository

import (
	"database/sql"
	"go-taskhub-api/model"
	"strings"

	"github.com/google/uuid"
)

// IUserRepository defines the contract for user database operations.
type IUserRepository interface {
	Create(user *model.User) error
	GetByID(id uuid.UUID) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// Create inserts a new user. Emails are stored normalized to lower case so
// the unique index doubles as a case-insensitive uniqueness check.
func (r *UserRepository) Create(user *model.User) error {
	user.ID = uuid.New()
	user.Email = strings.ToLower(user.Email)
	query := `INSERT INTO users (id, email, password_hash, full_name, is_active)
	          VALUES ($1, $2, $3, $4, true)
	          RETURNING is_active, created_at, updated_at`
	return r.DB.QueryRow(query, user.ID, user.Email, user.PasswordHash, nullableString(user.FullName)).
		Scan(&user.IsActive, &user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepository) GetByID(id uuid.UUID) (*model.User, error) {
	user := &model.User{}
	var fullName sql.NullString
	query := `SELECT id, email, password_hash, full_name, is_active, created_at, updated_at
	          FROM users WHERE id = $1`
	err := r.DB.QueryRow(query, id).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &fullName, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.FullName = fullName.String
	return user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	user := &model.User{}
	var fullName sql.NullString
	query := `SELECT id, email, password_hash, full_name, is_active, created_at, updated_at
	          FROM users WHERE email = $1`
	err := r.DB.QueryRow(query, strings.ToLower(email)).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &fullName, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.FullName = fullName.String
	return user, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
