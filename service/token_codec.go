// file: service/token_codec.go

package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"go-taskhub-api/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers every decode failure: bad signature, expired,
// malformed claims, wrong token kind. Callers must not forward the
// underlying cause to clients.
var ErrInvalidToken = errors.New("invalid token")

// TokenCodec signs and verifies the two stateless token kinds. The signing
// key, algorithm and TTLs are fixed at construction and passed in explicitly
// so tests can inject short TTLs and a fake clock. Rotating the key
// invalidates all outstanding tokens; there is no key versioning.
type TokenCodec struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenCodec(secret, algorithm string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		method = jwt.SigningMethodHS256
	}
	return &TokenCodec{
		secret:     []byte(secret),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock overrides the codec's time source. Only intended for tests.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	c.now = now
	return c
}

// RefreshTTL exposes the refresh token lifetime so the session manager can
// stamp the same expiry onto the ledger record.
func (c *TokenCodec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

// MintAccess signs a short-lived access token for the user.
func (c *TokenCodec) MintAccess(userID uuid.UUID) (string, error) {
	now := c.now().UTC()
	claims := &model.AppClaims{
		TokenKind: model.TokenKindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}
	return c.sign(claims)
}

// MintRefresh signs a long-lived refresh token carrying the ledger record id
// as jti and the raw fingerprint secret as the fp claim.
func (c *TokenCodec) MintRefresh(userID, tokenID uuid.UUID, fingerprint string) (string, error) {
	now := c.now().UTC()
	claims := &model.AppClaims{
		TokenKind:   model.TokenKindRefresh,
		Fingerprint: fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        tokenID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
		},
	}
	return c.sign(claims)
}

func (c *TokenCodec) sign(claims *model.AppClaims) (string, error) {
	token := jwt.NewWithClaims(c.method, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// DecodeAccess verifies an access token and returns its subject and jti.
func (c *TokenCodec) DecodeAccess(token string) (uuid.UUID, uuid.UUID, error) {
	claims, err := c.decode(token, model.TokenKindAccess)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	userID, tokenID, err := parseIDs(claims)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, tokenID, nil
}

// DecodeRefresh verifies a refresh token and returns subject, jti and the
// raw fingerprint claim.
func (c *TokenCodec) DecodeRefresh(token string) (uuid.UUID, uuid.UUID, string, error) {
	claims, err := c.decode(token, model.TokenKindRefresh)
	if err != nil {
		return uuid.Nil, uuid.Nil, "", err
	}
	userID, tokenID, err := parseIDs(claims)
	if err != nil {
		return uuid.Nil, uuid.Nil, "", err
	}
	if claims.Fingerprint == "" {
		return uuid.Nil, uuid.Nil, "", ErrInvalidToken
	}
	return userID, tokenID, claims.Fingerprint, nil
}

func (c *TokenCodec) decode(token, kind string) (*model.AppClaims, error) {
	claims := &model.AppClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{c.method.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenKind != kind {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func parseIDs(claims *model.AppClaims) (uuid.UUID, uuid.UUID, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrInvalidToken
	}
	tokenID, err := uuid.Parse(claims.ID)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrInvalidToken
	}
	return userID, tokenID, nil
}

// GenerateFingerprint returns the random per-issuance secret embedded in a
// refresh token. Only its hash is ever persisted.
func GenerateFingerprint() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashFingerprint is a one-way binding, not a password hash: it only exists
// so the raw fingerprint never touches the database.
func HashFingerprint(fingerprint string) string {
	sum := sha256.Sum256([]byte(fingerprint))
	return hex.EncodeToString(sum[:])
}
