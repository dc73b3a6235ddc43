package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/KretovDmitry/order-management-service/internal/application/errs"
	"github.com/KretovDmitry/order-management-service/internal/application/interfaces"
	"github.com/KretovDmitry/order-management-service/internal/config"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities/user"
	"github.com/KretovDmitry/order-management-service/internal/jwt"
	"github.com/KretovDmitry/order-management-service/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// account is a login able to obtain tokens.
type account struct {
	user         user.User
	passwordHash []byte
}

type AuthService struct {
	accounts map[string]account
	secret   string
	config   *config.Config
	logger   logger.Logger
}

// NewAuthService builds the account directory from the configured users.
func NewAuthService(config *config.Config, logger logger.Logger) (*AuthService, error) {
	if config == nil {
		return nil, errors.New("nil dependency: config")
	}
	if config.JWT.SigningKey == "" {
		return nil, errors.New("empty jwt signing key")
	}

	accounts := make(map[string]account, len(config.Users))
	for _, u := range config.Users {
		if _, ok := accounts[u.Login]; ok {
			return nil, fmt.Errorf("duplicate login %q", u.Login)
		}
		accounts[u.Login] = account{
			user:         user.User{ID: user.ID(u.ID), Role: user.Role(u.Role)},
			passwordHash: []byte(u.PasswordHash),
		}
	}

	return &AuthService{
		accounts: accounts,
		secret:   config.JWT.SigningKey,
		config:   config,
		logger:   logger,
	}, nil
}

var _ interfaces.AuthService = (*AuthService)(nil)

// Login checks the password of the account. Both an unknown login and a
// wrong password end up as errs.ErrInvalidCredentials.
func (s *AuthService) Login(_ context.Context, login, password string) (*user.User, error) {
	acc, ok := s.accounts[login]
	if !ok {
		return nil, fmt.Errorf("%w: user with login %q not found", errs.ErrInvalidCredentials, login)
	}

	// Compare stored and provided passwords.
	err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, fmt.Errorf("%w: password", errs.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("compare passwords: %w", err)
	}

	u := acc.user
	return &u, nil
}

func (s *AuthService) BuildAuthToken(u *user.User) (string, error) {
	return jwt.BuildString(u, s.secret, s.config.JWT.Expiration)
}

func (s *AuthService) GetUserFromToken(_ context.Context, token string) (*user.User, error) {
	u, err := jwt.GetUser(token, s.secret)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return u, nil
}
