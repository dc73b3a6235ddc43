package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KretovDmitry/order-management-service/internal/application/errs"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities/user"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// BuildString creates a JWT string for the given user and token expiration time.
func BuildString(u *user.User, secret string, tokenExp time.Duration) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, entities.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(u.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenExp)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Role: u.Role,
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// GetUser verifies the token and extracts the user it was issued for.
// The returned error is one of errs.ErrTokenMalformed, errs.ErrTokenSignature
// or errs.ErrTokenExpired.
func GetUser(tokenString, secret string) (*user.User, error) {
	claims := new(entities.AuthClaims)

	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			// Verify that the token method is HS256
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf(
					"unexpected signing method: %v", token.Header["alg"],
				)
			}

			// Return the secret key
			return []byte(secret), nil
		})
	if err != nil {
		// A forged token must not be reported as merely expired.
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, errs.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, errs.ErrTokenSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, errs.ErrTokenExpired
		default:
			return nil, errs.ErrTokenSignature
		}
	}

	// Check if the token is valid
	if !token.Valid {
		return nil, errs.ErrTokenSignature
	}

	if claims.Subject == "" || claims.ExpiresAt == nil || !claims.Role.Valid() {
		return nil, errs.ErrTokenMalformed
	}

	return &user.User{ID: user.ID(claims.Subject), Role: claims.Role}, nil
}
