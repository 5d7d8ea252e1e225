// Package auth implements the identity capability: HS256 access tokens
// carrying the verified (account, role) pair, and password hashing.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tally/internal/core"
)

// Claims carries the registered claims plus the account id and role the
// services trust as already authenticated.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string    `json:"account_id"`
	Role      core.Role `json:"role"`
}

func GenerateToken(identity core.Identity, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.AccountID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		AccountID: identity.AccountID,
		Role:      identity.Role,
	})
	return token.SignedString(secret)
}

// ParseToken verifies the signature and expiry and returns the embedded
// identity. Any failure reports core.ErrInvalidToken.
func ParseToken(tokenString string, secret []byte) (core.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return core.Identity{}, core.ErrInvalidToken
	}
	return core.Identity{AccountID: claims.AccountID, Role: claims.Role}, nil
}
