// file: model/token.go

package model

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the persisted ledger record for one issued refresh token.
// The record's ID is the token's jti claim. Only a one-way hash of the
// token's fingerprint secret is stored, never the raw token string.
//
// Lifecycle: created at issuance, optionally revoked (logout or rotation),
// never deleted here. Revocation is monotonic: RevokedAt is never cleared.
// ReplacedBy links to the record minted by the rotation that superseded
// this one, forming an append-only chain per user.
type RefreshToken struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	FingerprintHash string     `json:"-"` // The hash is not exposed in JSON responses.
	ExpiresAt       time.Time  `json:"expires_at"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy      *uuid.UUID `json:"replaced_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
