package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/domain"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/request"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/response"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/util"
)

var (
	errInvalidCredentials = fmt.Errorf("%w: Invalid credentials", domain.ErrUnauthorized)
	errAccountDeactivated = fmt.Errorf("%w: Account is deactivated", domain.ErrUnauthorized)
)

type AuthService struct {
	users  port.UserService
	tokens port.TokenIssuer
	logger *zap.Logger
}

func NewAuthService(users port.UserService, tokens port.TokenIssuer, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthService{users: users, tokens: tokens, logger: logger}
}

func (as *AuthService) Register(ctx context.Context, req request.RegisterRequest) (response.AuthResponse, error) {
	hash, err := util.HashPassword(req.Password)
	if err != nil {
		return response.AuthResponse{}, err
	}

	user, err := as.users.Create(ctx, domain.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
	})
	if err != nil {
		return response.AuthResponse{}, err
	}

	as.logger.Info("user registered", zap.String("user_id", user.ID))

	return as.issue(user)
}

func (as *AuthService) Login(ctx context.Context, req request.LoginRequest) (response.AuthResponse, error) {
	user, err := as.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return response.AuthResponse{}, errInvalidCredentials
	}

	if err != nil {
		return response.AuthResponse{}, err
	}

	if !util.PasswordMatches(user.PasswordHash, req.Password) {
		as.logger.Info("login rejected", zap.String("user_id", user.ID))
		return response.AuthResponse{}, errInvalidCredentials
	}

	if !user.IsActive {
		return response.AuthResponse{}, errAccountDeactivated
	}

	if err := as.users.UpdateLastLogin(ctx, user.ID); err != nil {
		as.logger.Warn("last login update failed", zap.String("user_id", user.ID), zap.Error(err))
	} else if fresh, err := as.users.FindByID(ctx, user.ID); err == nil {
		user = fresh
	}

	return as.issue(user)
}

func (as *AuthService) Refresh(ctx context.Context, refreshToken string) (response.AuthResponse, error) {
	claims, err := as.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return response.AuthResponse{}, fmt.Errorf("%w: invalid refresh token", domain.ErrUnauthorized)
	}

	user, err := as.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return response.AuthResponse{}, fmt.Errorf("%w: invalid refresh token", domain.ErrUnauthorized)
	}

	if err != nil {
		return response.AuthResponse{}, err
	}

	if !user.IsActive {
		return response.AuthResponse{}, errAccountDeactivated
	}

	return as.issue(user)
}

func (as *AuthService) Profile(ctx context.Context, userID string) (domain.User, error) {
	return as.users.FindByID(ctx, userID)
}

func (as *AuthService) issue(user domain.User) (response.AuthResponse, error) {
	access, err := as.tokens.IssueAccess(user)
	if err != nil {
		return response.AuthResponse{}, err
	}

	refresh, err := as.tokens.IssueRefresh(user)
	if err != nil {
		return response.AuthResponse{}, err
	}

	return response.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
		ExpiresIn:    as.tokens.AccessTTLSeconds(),
	}, nil
}
