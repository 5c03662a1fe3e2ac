// file: service/auth_service_test.go

package service

import (
	"context"
	"database/sql"
	"errors"
	"go-taskhub-api/common"
	"go-taskhub-api/logger"
	"go-taskhub-api/model"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// TestMain runs setup before any tests in this package are executed.
func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// mockUserRepo is a mock implementation of IUserRepository.
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(id uuid.UUID) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// mockTokenRepo is a mock implementation of ITokenRepository.
type mockTokenRepo struct{ mock.Mock }

func (m *mockTokenRepo) Create(token *model.RefreshToken) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *mockTokenRepo) CreateTx(tx *sql.Tx, token *model.RefreshToken) error {
	args := m.Called(tx, token)
	return args.Error(0)
}

func (m *mockTokenRepo) Get(id uuid.UUID) (*model.RefreshToken, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}

func (m *mockTokenRepo) GetForUpdate(tx *sql.Tx, id uuid.UUID) (*model.RefreshToken, error) {
	args := m.Called(tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}

func (m *mockTokenRepo) Revoke(id uuid.UUID, revokedAt time.Time, replacedBy *uuid.UUID) error {
	args := m.Called(id, revokedAt, replacedBy)
	return args.Error(0)
}

func (m *mockTokenRepo) RevokeTx(tx *sql.Tx, id uuid.UUID, revokedAt time.Time, replacedBy *uuid.UUID) error {
	args := m.Called(tx, id, revokedAt, replacedBy)
	return args.Error(0)
}

func (m *mockTokenRepo) RevokeAllForUser(userID uuid.UUID, revokedAt time.Time) (int64, error) {
	args := m.Called(userID, revokedAt)
	return args.Get(0).(int64), args.Error(1)
}

// authFixture bundles an AuthService with its mocked collaborators and a
// frozen clock.
type authFixture struct {
	svc    *AuthService
	dbMock sqlmock.Sqlmock
	users  *mockUserRepo
	tokens *mockTokenRepo
	codec  *TokenCodec
	now    time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	users := new(mockUserRepo)
	tokens := new(mockTokenRepo)
	codec := NewTokenCodec(testSecret, "HS256", 15*time.Minute, 30*24*time.Hour).WithClock(clock)
	hasher := NewPasswordHasher(bcrypt.MinCost)
	svc := NewAuthService(db, users, tokens, codec, hasher).WithClock(clock)

	return &authFixture{svc: svc, dbMock: dbMock, users: users, tokens: tokens, codec: codec, now: now}
}

// mintStoredRefresh issues a refresh token string together with the ledger
// record the database would hold for it.
func (f *authFixture) mintStoredRefresh(t *testing.T, userID uuid.UUID) (string, *model.RefreshToken) {
	tokenID := uuid.New()
	fingerprint, err := GenerateFingerprint()
	assert.NoError(t, err)
	tokenStr, err := f.codec.MintRefresh(userID, tokenID, fingerprint)
	assert.NoError(t, err)

	record := &model.RefreshToken{
		ID:              tokenID,
		UserID:          userID,
		FingerprintHash: HashFingerprint(fingerprint),
		ExpiresAt:       f.now.Add(30 * 24 * time.Hour),
		CreatedAt:       f.now,
	}
	return tokenStr, record
}

func TestAuthService_Register(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("Create", mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "new@example.com" && u.PasswordHash != "" && u.PasswordHash != "password123"
		})).Return(nil).Once()

		user, err := f.svc.Register("new@example.com", "password123", "New User")

		assert.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)
		assert.True(t, f.svc.hasher.Verify("password123", user.PasswordHash))
		f.users.AssertExpectations(t)
	})

	t.Run("duplicate email maps to conflict", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("Create", mock.Anything).Return(&pq.Error{Code: "23505"}).Once()

		_, err := f.svc.Register("taken@example.com", "password123", "")

		assert.ErrorIs(t, err, common.ErrConflict)
		f.users.AssertExpectations(t)
	})
}

func TestAuthService_Login(t *testing.T) {
	password := "password123"
	hasher := NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash(password)
	assert.NoError(t, err)

	userID := uuid.New()
	activeUser := &model.User{ID: userID, Email: "user@example.com", PasswordHash: hash, IsActive: true}

	t.Run("success issues a token pair", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("GetByEmail", "user@example.com").Return(activeUser, nil).Once()
		f.tokens.On("Create", mock.AnythingOfType("*model.RefreshToken")).Return(nil).Once()

		pair, err := f.svc.Login("user@example.com", password)

		assert.NoError(t, err)
		assert.Equal(t, "bearer", pair.TokenType)

		gotUserID, _, err := f.codec.DecodeAccess(pair.AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, userID, gotUserID)

		gotUserID, _, _, err = f.codec.DecodeRefresh(pair.RefreshToken)
		assert.NoError(t, err)
		assert.Equal(t, userID, gotUserID)
		f.tokens.AssertExpectations(t)
	})

	// Unknown email, inactive account and wrong password must be
	// indistinguishable to the caller.
	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("GetByEmail", "nobody@example.com").Return(nil, sql.ErrNoRows).Once()

		_, err := f.svc.Login("nobody@example.com", password)

		assert.ErrorIs(t, err, common.ErrUnauthorized)
		assert.EqualError(t, err, "unauthorized: invalid credentials")
	})

	t.Run("inactive user", func(t *testing.T) {
		f := newAuthFixture(t)
		inactive := &model.User{ID: uuid.New(), Email: "off@example.com", PasswordHash: hash, IsActive: false}
		f.users.On("GetByEmail", "off@example.com").Return(inactive, nil).Once()

		_, err := f.svc.Login("off@example.com", password)

		assert.ErrorIs(t, err, common.ErrUnauthorized)
		assert.EqualError(t, err, "unauthorized: invalid credentials")
		f.tokens.AssertNotCalled(t, "Create")
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("GetByEmail", "user@example.com").Return(activeUser, nil).Once()

		_, err := f.svc.Login("user@example.com", "wrongpassword")

		assert.ErrorIs(t, err, common.ErrUnauthorized)
		assert.EqualError(t, err, "unauthorized: invalid credentials")
		f.tokens.AssertNotCalled(t, "Create")
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("success rotates the token", func(t *testing.T) {
		f := newAuthFixture(t)
		tokenStr, record := f.mintStoredRefresh(t, userID)

		var minted *model.RefreshToken
		f.dbMock.ExpectBegin()
		f.tokens.On("GetForUpdate", mock.Anything, record.ID).Return(record, nil).Once()
		f.tokens.On("CreateTx", mock.Anything, mock.AnythingOfType("*model.RefreshToken")).
			Run(func(args mock.Arguments) { minted = args.Get(1).(*model.RefreshToken) }).
			Return(nil).Once()
		f.tokens.On("RevokeTx", mock.Anything, record.ID, f.now, mock.AnythingOfType("*uuid.UUID")).Return(nil).Once()
		f.dbMock.ExpectCommit()

		pair, err := f.svc.Refresh(ctx, tokenStr)

		assert.NoError(t, err)
		assert.NotNil(t, minted)
		assert.Equal(t, userID, minted.UserID)
		assert.NotEqual(t, record.ID, minted.ID, "rotation must mint a new ledger record")

		// The new refresh token decodes to the new record's id.
		gotUserID, gotTokenID, _, err := f.codec.DecodeRefresh(pair.RefreshToken)
		assert.NoError(t, err)
		assert.Equal(t, userID, gotUserID)
		assert.Equal(t, minted.ID, gotTokenID)

		f.tokens.AssertExpectations(t)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("reuse of a revoked token fails", func(t *testing.T) {
		f := newAuthFixture(t)
		tokenStr, record := f.mintStoredRefresh(t, userID)
		revokedAt := f.now.Add(-time.Hour)
		record.RevokedAt = &revokedAt

		f.dbMock.ExpectBegin()
		f.tokens.On("GetForUpdate", mock.Anything, record.ID).Return(record, nil).Once()
		f.dbMock.ExpectRollback()

		_, err := f.svc.Refresh(ctx, tokenStr)

		assert.ErrorIs(t, err, common.ErrUnauthorized)
		f.tokens.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything)
		f.tokens.AssertNotCalled(t, "RevokeTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("token expiring exactly now is expired", func(t *testing.T) {
		f := newAuthFixture(t)
		tokenStr, record := f.mintStoredRefresh(t, userID)
		record.ExpiresAt = f.now

		f.dbMock.ExpectBegin()
		f.tokens.On("GetForUpdate", mock.Anything, record.ID).Return(record, nil).Once()
		f.dbMock.ExpectRollback()

		_, err := f.svc.Refresh(ctx, tokenStr)

		assert.ErrorIs(t, err, common.ErrUnauthorized)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("owner mismatch fails", func(t *testing.T) {
		f := newAuthFixture(t)
		tokenStr, record := f.mintStoredRefresh(t, userID)
		record.UserID = uuid.New()

		f.dbMock.ExpectBegin()
		f.tokens.On("GetForUpdate", mock.Anything, record.ID).Return(record, nil).Once()
		f.dbMock.ExpectRollback()

		_, err := f.svc.Refresh(ctx, tokenStr)

		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("fingerprint mismatch fails", func(t *testing.T) {
		f := newAuthFixture(t)
		tokenStr, record := f.mintStoredRefresh(t, userID)
		record.FingerprintHash = HashFingerprint("some-other-fingerprint")

		f.dbMock.ExpectBegin()
		f.tokens.On("GetForUpdate", mock.Anything, record.ID).Return(record, nil).Once()
		f.dbMock.ExpectRollback()

		_, err := f.svc.Refresh(ctx, tokenStr)

		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("unknown ledger record fails", func(t *testing.T) {
		f := newAuthFixture(t)
		tokenStr, record := f.mintStoredRefresh(t, userID)

		f.dbMock.ExpectBegin()
		f.tokens.On("GetForUpdate", mock.Anything, record.ID).Return(nil, sql.ErrNoRows).Once()
		f.dbMock.ExpectRollback()

		_, err := f.svc.Refresh(ctx, tokenStr)

		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("garbage token never touches the database", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.Refresh(ctx, "not-a-jwt")

		assert.ErrorIs(t, err, common.ErrUnauthorized)
		f.tokens.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("commit error surfaces", func(t *testing.T) {
		f := newAuthFixture(t)
		tokenStr, record := f.mintStoredRefresh(t, userID)

		f.dbMock.ExpectBegin()
		f.tokens.On("GetForUpdate", mock.Anything, record.ID).Return(record, nil).Once()
		f.tokens.On("CreateTx", mock.Anything, mock.Anything).Return(nil).Once()
		f.tokens.On("RevokeTx", mock.Anything, record.ID, f.now, mock.Anything).Return(nil).Once()
		f.dbMock.ExpectCommit().WillReturnError(errors.New("commit failed"))

		_, err := f.svc.Refresh(ctx, tokenStr)

		assert.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrUnauthorized, "storage faults are not credential failures")
	})
}

func TestAuthService_Logout(t *testing.T) {
	userID := uuid.New()

	t.Run("revokes an active token", func(t *testing.T) {
		f := newAuthFixture(t)
		tokenStr, record := f.mintStoredRefresh(t, userID)
		f.tokens.On("Get", record.ID).Return(record, nil).Once()
		f.tokens.On("Revoke", record.ID, f.now, (*uuid.UUID)(nil)).Return(nil).Once()

		assert.NoError(t, f.svc.Logout(tokenStr))
		f.tokens.AssertExpectations(t)
	})

	// Every invalid presentation is a silent success: logout must not be an
	// oracle for token validity.
	t.Run("garbage token is a no-op", func(t *testing.T) {
		f := newAuthFixture(t)

		assert.NoError(t, f.svc.Logout("not-a-jwt"))
		f.tokens.AssertNotCalled(t, "Get", mock.Anything)
	})

	t.Run("unknown record is a no-op", func(t *testing.T) {
		f := newAuthFixture(t)
		tokenStr, record := f.mintStoredRefresh(t, userID)
		f.tokens.On("Get", record.ID).Return(nil, sql.ErrNoRows).Once()

		assert.NoError(t, f.svc.Logout(tokenStr))
		f.tokens.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("owner mismatch is a no-op", func(t *testing.T) {
		f := newAuthFixture(t)
		tokenStr, record := f.mintStoredRefresh(t, userID)
		record.UserID = uuid.New()
		f.tokens.On("Get", record.ID).Return(record, nil).Once()

		assert.NoError(t, f.svc.Logout(tokenStr))
		f.tokens.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already revoked token is a no-op", func(t *testing.T) {
		f := newAuthFixture(t)
		tokenStr, record := f.mintStoredRefresh(t, userID)
		revokedAt := f.now.Add(-time.Minute)
		record.RevokedAt = &revokedAt
		f.tokens.On("Get", record.ID).Return(record, nil).Once()

		assert.NoError(t, f.svc.Logout(tokenStr))
		f.tokens.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	userID := uuid.New()
	activeUser := &model.User{ID: userID, Email: "user@example.com", IsActive: true}

	t.Run("resolves an active user", func(t *testing.T) {
		f := newAuthFixture(t)
		token, err := f.codec.MintAccess(userID)
		assert.NoError(t, err)
		f.users.On("GetByID", userID).Return(activeUser, nil).Once()

		user, err := f.svc.Authenticate(token)

		assert.NoError(t, err)
		assert.Equal(t, userID, user.ID)
	})

	t.Run("inactive user is rejected", func(t *testing.T) {
		f := newAuthFixture(t)
		token, err := f.codec.MintAccess(userID)
		assert.NoError(t, err)
		inactive := &model.User{ID: userID, IsActive: false}
		f.users.On("GetByID", userID).Return(inactive, nil).Once()

		_, err = f.svc.Authenticate(token)

		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("deleted user is rejected", func(t *testing.T) {
		f := newAuthFixture(t)
		token, err := f.codec.MintAccess(userID)
		assert.NoError(t, err)
		f.users.On("GetByID", userID).Return(nil, sql.ErrNoRows).Once()

		_, err = f.svc.Authenticate(token)

		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		f := newAuthFixture(t)
		tokenStr, _ := f.mintStoredRefresh(t, userID)

		_, err := f.svc.Authenticate(tokenStr)

		assert.ErrorIs(t, err, common.ErrUnauthorized)
		f.users.AssertNotCalled(t, "GetByID", mock.Anything)
	})
}

func TestAuthService_RevokeAllSessions(t *testing.T) {
	f := newAuthFixture(t)
	userID := uuid.New()
	f.tokens.On("RevokeAllForUser", userID, f.now).Return(int64(3), nil).Once()

	count, err := f.svc.RevokeAllSessions(userID)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
	f.tokens.AssertExpectations(t)
}
