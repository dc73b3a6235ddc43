package entities

import (
	"github.com/KretovDmitry/order-management-service/internal/domain/entities/user"
	"github.com/golang-jwt/jwt/v4"
)

// AuthClaims carries the subject in the registered "sub" claim.
type AuthClaims struct {
	jwt.RegisteredClaims
	Role user.Role `json:"role"`
}
