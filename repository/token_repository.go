// file: repository/token_repository.go

package repository

import (
	"database/sql"
	"go-taskhub-api/logger"
	"go-taskhub-api/model"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for the refresh token ledger.
//
// Rotation must use the *Tx variants: GetForUpdate takes a row-level lock on
// the presented record so that only one rotation per lineage can commit.
type ITokenRepository interface {
	Create(token *model.RefreshToken) error
	CreateTx(tx *sql.Tx, token *model.RefreshToken) error
	Get(id uuid.UUID) (*model.RefreshToken, error)
	GetForUpdate(tx *sql.Tx, id uuid.UUID) (*model.RefreshToken, error)
	Revoke(id uuid.UUID, revokedAt time.Time, replacedBy *uuid.UUID) error
	RevokeTx(tx *sql.Tx, id uuid.UUID, revokedAt time.Time, replacedBy *uuid.UUID) error
	RevokeAllForUser(userID uuid.UUID, revokedAt time.Time) (int64, error)
}

// TokenRepository implements ITokenRepository.
type TokenRepository struct {
	DB *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

const insertTokenQuery = `INSERT INTO refresh_tokens (id, user_id, fingerprint_hash, expires_at)
	VALUES ($1, $2, $3, $4) RETURNING created_at`

const selectTokenQuery = `SELECT id, user_id, fingerprint_hash, expires_at, revoked_at, replaced_by, created_at
	FROM refresh_tokens WHERE id = $1`

// Create inserts a new, non-revoked ledger record.
func (r *TokenRepository) Create(token *model.RefreshToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"token_id":   token.ID,
		"user_id":    token.UserID,
		"expires_at": token.ExpiresAt,
	})
	log.Info("Executing query to create a new refresh token record")

	err := r.DB.QueryRow(insertTokenQuery, token.ID, token.UserID, token.FingerprintHash, token.ExpiresAt).
		Scan(&token.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create refresh token query")
		return err
	}
	return nil
}

// CreateTx is Create inside an existing transaction.
func (r *TokenRepository) CreateTx(tx *sql.Tx, token *model.RefreshToken) error {
	return tx.QueryRow(insertTokenQuery, token.ID, token.UserID, token.FingerprintHash, token.ExpiresAt).
		Scan(&token.CreatedAt)
}

// Get retrieves a ledger record by token id (the jti claim).
func (r *TokenRepository) Get(id uuid.UUID) (*model.RefreshToken, error) {
	return scanToken(r.DB.QueryRow(selectTokenQuery, id))
}

// GetForUpdate retrieves a record with SELECT ... FOR UPDATE so concurrent
// rotations of the same token serialize on the row lock.
func (r *TokenRepository) GetForUpdate(tx *sql.Tx, id uuid.UUID) (*model.RefreshToken, error) {
	return scanToken(tx.QueryRow(selectTokenQuery+` FOR UPDATE`, id))
}

const revokeTokenQuery = `UPDATE refresh_tokens SET revoked_at = $2, replaced_by = $3
	WHERE id = $1 AND revoked_at IS NULL`

// Revoke marks a record revoked with an optional successor. The guard on
// revoked_at keeps revocation monotonic: re-revoking is a no-op and the
// first revocation stays authoritative.
func (r *TokenRepository) Revoke(id uuid.UUID, revokedAt time.Time, replacedBy *uuid.UUID) error {
	log := logger.Log.WithField("token_id", id)
	log.Info("Executing query to revoke refresh token")

	if _, err := r.DB.Exec(revokeTokenQuery, id, revokedAt, uuidOrNil(replacedBy)); err != nil {
		log.WithError(err).Error("Failed to execute revoke refresh token query")
		return err
	}
	return nil
}

// RevokeTx is Revoke inside an existing transaction.
func (r *TokenRepository) RevokeTx(tx *sql.Tx, id uuid.UUID, revokedAt time.Time, replacedBy *uuid.UUID) error {
	_, err := tx.Exec(revokeTokenQuery, id, revokedAt, uuidOrNil(replacedBy))
	return err
}

// RevokeAllForUser mass-revokes every currently-active token for a user and
// returns the number of records touched ("log out everywhere").
func (r *TokenRepository) RevokeAllForUser(userID uuid.UUID, revokedAt time.Time) (int64, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to revoke all refresh tokens for a user")

	query := `UPDATE refresh_tokens SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL`
	res, err := r.DB.Exec(query, userID, revokedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute revoke all refresh tokens query")
		return 0, err
	}
	return res.RowsAffected()
}

func scanToken(row *sql.Row) (*model.RefreshToken, error) {
	token := &model.RefreshToken{}
	var revokedAt sql.NullTime
	var replacedBy uuid.NullUUID
	err := row.Scan(&token.ID, &token.UserID, &token.FingerprintHash, &token.ExpiresAt,
		&revokedAt, &replacedBy, &token.CreatedAt)
	if err != nil {
		return nil, err // Return sql.ErrNoRows if not found
	}
	if revokedAt.Valid {
		token.RevokedAt = &revokedAt.Time
	}
	if replacedBy.Valid {
		id := replacedBy.UUID
		token.ReplacedBy = &id
	}
	return token, nil
}

func uuidOrNil(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return *id
}
