// Package auth issues and verifies the access tokens handed out after a
// successful signature challenge.
package auth

import (
	"errors"
	"time"

	"github.com/discussions-app/core/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard registered claims plus the hex public key
// of the authenticated account.
type Claims struct {
	jwt.RegisteredClaims
	PublicKey string
}

// GenerateToken signs an HS256 token binding the account public key for
// validityDuration.
func GenerateToken(publicKey string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		PublicKey: publicKey,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetPublicKeyFromToken validates tokenString and returns the account
// public key it was issued for. Expired tokens map onto
// common.ErrTokenExpired so clients can distinguish "log in again" from
// "rejected".
func GetPublicKeyFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.PublicKey, nil
}
