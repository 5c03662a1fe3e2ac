// file: service/auth_service.go

package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"go-taskhub-api/common"
	"go-taskhub-api/logger"
	"go-taskhub-api/model"
	"go-taskhub-api/repository"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// AuthService orchestrates the session lifecycle: register, login, refresh
// rotation and logout. Access tokens are pure bearer assertions and are
// never persisted; revocation is only as fine-grained as the refresh token
// ledger, so a stolen access token stays valid until its own short expiry.
type AuthService struct {
	db     *sql.DB
	users  repository.IUserRepository
	tokens repository.ITokenRepository
	codec  *TokenCodec
	hasher *PasswordHasher
	now    func() time.Time
}

func NewAuthService(db *sql.DB, users repository.IUserRepository, tokens repository.ITokenRepository,
	codec *TokenCodec, hasher *PasswordHasher) *AuthService {
	return &AuthService{
		db:     db,
		users:  users,
		tokens: tokens,
		codec:  codec,
		hasher: hasher,
		now:    time.Now,
	}
}

// WithClock overrides the service's time source. Only intended for tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Register creates a new user account. A duplicate email surfaces as a
// domain conflict, not a raw storage error.
func (s *AuthService) Register(email, password, fullName string) (*model.User, error) {
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
	}
	if err := s.users.Create(user); err != nil {
		if isUniqueViolation(err) {
			return nil, common.Conflict("email already in use")
		}
		return nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// Login authenticates credentials and issues a fresh token pair. Absent
// user, inactive user and password mismatch all return the same error so
// the endpoint cannot be used to probe which accounts exist.
func (s *AuthService) Login(email, password string) (*model.TokenPair, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, common.Unauthorized("invalid credentials")
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.Unauthorized("invalid credentials")
	}
	return s.issuePair(user.ID)
}

// Refresh runs the rotation protocol. The presented record is locked for
// the duration of the transaction, so when two requests race on the same
// token only one rotation commits; the loser observes the revocation and
// fails. Every rejection surfaces as the same Unauthorized kind, so expired,
// revoked and forged tokens are indistinguishable on the wire.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	userID, tokenID, fingerprint, err := s.codec.DecodeRefresh(refreshToken)
	if err != nil {
		return nil, common.Unauthorized("invalid refresh token")
	}

	log := logger.Log.WithFields(logrus.Fields{
		"user_id":  userID,
		"token_id": tokenID,
	})

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	record, err := s.tokens.GetForUpdate(tx, tokenID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("Refresh token not found in ledger")
			return nil, common.Unauthorized("invalid refresh token")
		}
		return nil, err
	}
	if record.UserID != userID {
		log.Warn("Refresh token owner mismatch")
		return nil, common.Unauthorized("invalid refresh token")
	}
	if record.RevokedAt != nil {
		log.Warn("Reuse of a revoked refresh token")
		return nil, common.Unauthorized("invalid refresh token")
	}
	now := s.now().UTC()
	// Inclusive boundary: a token expiring exactly now is already expired.
	if !record.ExpiresAt.After(now) {
		log.Info("Refresh token expired")
		return nil, common.Unauthorized("invalid refresh token")
	}

	fingerprintHash := HashFingerprint(fingerprint)
	if subtle.ConstantTimeCompare([]byte(fingerprintHash), []byte(record.FingerprintHash)) != 1 {
		log.Warn("Refresh token fingerprint mismatch")
		return nil, common.Unauthorized("invalid refresh token")
	}

	pair, newRecord, err := s.mintPair(userID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.CreateTx(tx, newRecord); err != nil {
		return nil, fmt.Errorf("could not persist rotated refresh token: %w", err)
	}
	if err := s.tokens.RevokeTx(tx, record.ID, now, &newRecord.ID); err != nil {
		return nil, fmt.Errorf("could not revoke rotated refresh token: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit rotation: %w", err)
	}

	log.WithField("replaced_by", newRecord.ID).Info("Refresh token rotated")
	return pair, nil
}

// Logout revokes the presented refresh token. It is idempotent and never
// reveals whether the token was ever valid: missing record, owner mismatch
// and fingerprint mismatch are all silent no-ops.
func (s *AuthService) Logout(refreshToken string) error {
	userID, tokenID, fingerprint, err := s.codec.DecodeRefresh(refreshToken)
	if err != nil {
		return nil
	}

	record, err := s.tokens.Get(tokenID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	if record.UserID != userID {
		return nil
	}
	fingerprintHash := HashFingerprint(fingerprint)
	if subtle.ConstantTimeCompare([]byte(fingerprintHash), []byte(record.FingerprintHash)) != 1 {
		return nil
	}
	if record.RevokedAt != nil {
		return nil
	}

	if err := s.tokens.Revoke(record.ID, s.now().UTC(), nil); err != nil {
		return err
	}
	logger.Log.WithField("token_id", record.ID).Info("Refresh token revoked on logout")
	return nil
}

// Authenticate resolves a bearer access token to an active user.
func (s *AuthService) Authenticate(accessToken string) (*model.User, error) {
	userID, _, err := s.codec.DecodeAccess(accessToken)
	if err != nil {
		return nil, common.Unauthorized("invalid access token")
	}
	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.Unauthorized("invalid or inactive user")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, common.Unauthorized("invalid or inactive user")
	}
	return user, nil
}

// RevokeAllSessions mass-revokes every active refresh token for a user
// ("log out everywhere"). Exposed for housekeeping; not wired to a route.
func (s *AuthService) RevokeAllSessions(userID uuid.UUID) (int64, error) {
	return s.tokens.RevokeAllForUser(userID, s.now().UTC())
}

// issuePair mints a token pair and persists the refresh ledger record in a
// single insert.
func (s *AuthService) issuePair(userID uuid.UUID) (*model.TokenPair, error) {
	pair, record, err := s.mintPair(userID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Create(record); err != nil {
		return nil, err
	}
	return pair, nil
}

// mintPair builds a token pair plus its unsaved ledger record; persistence
// is left to the caller so rotation can write it inside its transaction.
func (s *AuthService) mintPair(userID uuid.UUID) (*model.TokenPair, *model.RefreshToken, error) {
	accessToken, err := s.codec.MintAccess(userID)
	if err != nil {
		return nil, nil, err
	}

	tokenID := uuid.New()
	fingerprint, err := GenerateFingerprint()
	if err != nil {
		return nil, nil, err
	}
	refreshToken, err := s.codec.MintRefresh(userID, tokenID, fingerprint)
	if err != nil {
		return nil, nil, err
	}

	record := &model.RefreshToken{
		ID:              tokenID,
		UserID:          userID,
		FingerprintHash: HashFingerprint(fingerprint),
		ExpiresAt:       s.now().UTC().Add(s.codec.RefreshTTL()),
	}
	pair := &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}
	return pair, record, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
