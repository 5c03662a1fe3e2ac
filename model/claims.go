package model

import "github.com/golang-jwt/jwt/v5"

const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// AppClaims is the JWT payload for both token kinds. Subject carries the
// user id and ID (jti) the token id. Fingerprint is only set on refresh
// tokens; the server keeps its hash in the refresh token ledger.
type AppClaims struct {
	TokenKind   string `json:"type"`
	Fingerprint string `json:"fp,omitempty"`
	jwt.RegisteredClaims
}
