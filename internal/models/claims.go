package models

import "github.com/golang-jwt/jwt/v5"

// Claims represents the payload of an access token issued by the auth server.
// Only the user id claim is consumed here; token issuance lives elsewhere.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}
