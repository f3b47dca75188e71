package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represent the access token claims issued by the identity provider.
// Entitled is set by the billing system when the account has an active subscription.
type JWTClaims struct {
	UserID   string   `json:"uid"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"name"`
	Entitled bool     `json:"entitled"`
	jwt.RegisteredClaims
}
