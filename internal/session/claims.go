package session

import "github.com/golang-jwt/jwt/v5"

type TokenType string

// A single access-token scheme covers the whole surface: refresh issues
// a new access token to an already-authenticated caller, so no separate
// refresh credential exists.
const TokenTypeAccess TokenType = "access"

// Claims is the only supported JWT claims shape for this service.
// Subject carries the Telegram user id in decimal form; token_type is
// kept for forward compatibility should a second scheme ever appear.
type Claims struct {
	jwt.RegisteredClaims

	TokenType TokenType `json:"token_type"`
}
