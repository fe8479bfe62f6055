package port

import (
	"context"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/domain"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/request"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/response"
)

type AuthService interface {
	Register(ctx context.Context, req request.RegisterRequest) (response.AuthResponse, error)
	Login(ctx context.Context, req request.LoginRequest) (response.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (response.AuthResponse, error)
	Profile(ctx context.Context, userID string) (domain.User, error)
}

// TokenClaims is what a verified token carries back to the caller.
type TokenClaims struct {
	UserID string
	Email  string
	Name   string
	Type   string
}

type TokenIssuer interface {
	IssueAccess(user domain.User) (string, error)
	IssueRefresh(user domain.User) (string, error)
	VerifyAccess(token string) (TokenClaims, error)
	VerifyRefresh(token string) (TokenClaims, error)
	AccessTTLSeconds() int
}
