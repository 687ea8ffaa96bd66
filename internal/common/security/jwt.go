package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// tokenTTL is fixed: issued credentials live for one hour, with no
// server-side revocation.
const tokenTTL = time.Hour

// TokenManager issues and verifies HS256 tokens asserting (user id, role).
type TokenManager struct {
	auth *jwtauth.JWTAuth

	// TTL is overridable in tests to mint already-expired tokens.
	TTL time.Duration
}

func NewTokenManager(secret []byte) *TokenManager {
	return &TokenManager{
		auth: jwtauth.New("HS256", secret, nil),
		TTL:  tokenTTL,
	}
}

// JWTAuth exposes the underlying verifier for the jwtauth middleware.
func (m *TokenManager) JWTAuth() *jwtauth.JWTAuth {
	return m.auth
}

// Issue signs a token carrying the user's id and role at issuance time.
// Downstream consumers re-resolve the user anyway; the claims only identify
// which record to load.
func (m *TokenManager) Issue(userID, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"iat":     now.Unix(),
		"exp":     now.Add(m.TTL).Unix(),
	}
	_, tokenString, err := m.auth.Encode(claims)
	return tokenString, err
}

// Helper functions to extract claims, used by the session middleware.
func GetUserIDFromClaims(claims map[string]interface{}) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}

func GetUserRoleFromClaims(claims map[string]interface{}) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}
