package interfaces

import (
	"context"

	"github.com/KretovDmitry/order-management-service/internal/domain/entities/user"
)

// AuthService represents all service actions.
type AuthService interface {
	Login(ctx context.Context, login, password string) (*user.User, error)
	BuildAuthToken(*user.User) (string, error)
	GetUserFromToken(ctx context.Context, token string) (*user.User, error)
}
