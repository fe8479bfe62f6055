package service_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/database/sqlite/repository"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/domain"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/request"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/service"
	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg/auth"
	. "github.com/Kaybarax/todo-list-turborepo-sub002/pkg/test"
)

type AuthServiceTestSuite struct {
	suite.Suite
	UseCase *service.AuthService
	Users   *service.UserService
	Tokens  *auth.JWT
	ctx     context.Context
}

func (s *AuthServiceTestSuite) SetupTest() {
	db := InitTestDB()
	s.T().Cleanup(func() { db.Close() })

	s.Users = service.NewUserService(repository.NewUserRepository(db, nil), zap.NewNop())
	s.Tokens = auth.NewJWT("test-secret", 15*time.Minute, 7*24*time.Hour)
	s.UseCase = service.NewAuthService(s.Users, s.Tokens, zap.NewNop())
	s.ctx = context.Background()
}

func TestAuthServiceTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(AuthServiceTestSuite))
}

func (s *AuthServiceTestSuite) register() {
	_, err := s.UseCase.Register(s.ctx, request.RegisterRequest{
		Email:    "Jane@Example.com",
		Password: "secret123",
		Name:     "Jane",
	})
	Expect(err).To(BeNil())
}

func (s *AuthServiceTestSuite) TestRegister() {
	res, err := s.UseCase.Register(s.ctx, request.RegisterRequest{
		Email:    "Jane@Example.com",
		Password: "secret123",
		Name:     "Jane",
	})
	Expect(err).To(BeNil())
	Expect(res.AccessToken).NotTo(BeEmpty())
	Expect(res.RefreshToken).NotTo(BeEmpty())
	Expect(res.ExpiresIn).To(Equal(900))
	Expect(res.User.Email).To(Equal("jane@example.com"))
	Expect(res.User.PasswordHash).NotTo(Equal("secret123"))

	claims, err := s.Tokens.VerifyAccess(res.AccessToken)
	Expect(err).To(BeNil())
	Expect(claims.UserID).To(Equal(res.User.ID))
}

func (s *AuthServiceTestSuite) TestRegister_DuplicateEmail() {
	s.register()

	_, err := s.UseCase.Register(s.ctx, request.RegisterRequest{Email: "jane@example.com", Password: "another1", Name: "J"})
	Expect(err).To(MatchError(domain.ErrConflict))
}

func (s *AuthServiceTestSuite) TestLogin() {
	s.register()

	res, err := s.UseCase.Login(s.ctx, request.LoginRequest{Email: "jane@example.com", Password: "secret123"})
	Expect(err).To(BeNil())
	Expect(res.User.LastLoginAt).NotTo(BeNil())
	Expect(res.AccessToken).NotTo(BeEmpty())
}

func (s *AuthServiceTestSuite) TestLogin_BadCredentials() {
	s.register()

	_, err := s.UseCase.Login(s.ctx, request.LoginRequest{Email: "jane@example.com", Password: "wrong-password"})
	Expect(err).To(MatchError(domain.ErrUnauthorized))
	Expect(err.Error()).To(ContainSubstring("Invalid credentials"))

	_, err = s.UseCase.Login(s.ctx, request.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	Expect(err).To(MatchError(domain.ErrUnauthorized))
	Expect(err.Error()).To(ContainSubstring("Invalid credentials"))
}

func (s *AuthServiceTestSuite) TestLogin_Deactivated() {
	s.register()

	user, err := s.Users.FindByEmail(s.ctx, "jane@example.com")
	Expect(err).To(BeNil())
	Expect(s.Users.Deactivate(s.ctx, user.ID)).To(Succeed())

	_, err = s.UseCase.Login(s.ctx, request.LoginRequest{Email: "jane@example.com", Password: "secret123"})
	Expect(err).To(MatchError(domain.ErrUnauthorized))
	Expect(err.Error()).To(ContainSubstring("Account is deactivated"))
}

func (s *AuthServiceTestSuite) TestRefresh() {
	res, err := s.UseCase.Register(s.ctx, request.RegisterRequest{Email: "jane@example.com", Password: "secret123", Name: "Jane"})
	Expect(err).To(BeNil())

	refreshed, err := s.UseCase.Refresh(s.ctx, res.RefreshToken)
	Expect(err).To(BeNil())
	Expect(refreshed.User.ID).To(Equal(res.User.ID))

	_, err = s.UseCase.Refresh(s.ctx, res.AccessToken)
	Expect(err).To(MatchError(domain.ErrUnauthorized))

	_, err = s.UseCase.Refresh(s.ctx, "garbage")
	Expect(err).To(MatchError(domain.ErrUnauthorized))
}

func (s *AuthServiceTestSuite) TestProfile() {
	res, err := s.UseCase.Register(s.ctx, request.RegisterRequest{Email: "jane@example.com", Password: "secret123", Name: "Jane"})
	Expect(err).To(BeNil())

	user, err := s.UseCase.Profile(s.ctx, res.User.ID)
	Expect(err).To(BeNil())
	Expect(user.Name).To(Equal("Jane"))

	_, err = s.UseCase.Profile(s.ctx, "missing")
	Expect(err).To(MatchError(domain.ErrNotFound))
}
