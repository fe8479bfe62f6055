package repository_test

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/database/sqlite/repository"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/domain"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
	. "github.com/Kaybarax/todo-list-turborepo-sub002/pkg/test"
	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg/test/factory"
)

type UserRepositoryTestSuite struct {
	suite.Suite
	UserRepo port.UserRepository
	ctx      context.Context
}

func (s *UserRepositoryTestSuite) SetupTest() {
	db := InitTestDB()
	s.T().Cleanup(func() { db.Close() })

	s.UserRepo = repository.NewUserRepository(db, nil)
	s.ctx = context.Background()
}

func TestUserRepositoryTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(UserRepositoryTestSuite))
}

func (s *UserRepositoryTestSuite) TestCreate_AndLookups() {
	user, err := s.UserRepo.Create(s.ctx, factory.NewUser(map[string]any{"Email": "jane@example.com", "Name": "Jane"}))
	Expect(err).To(BeNil())
	Expect(user.Settings).To(Equal(domain.DefaultUserSettings()))
	Expect(user.IsActive).To(BeTrue())

	byEmail, err := s.UserRepo.GetByEmail(s.ctx, "jane@example.com")
	Expect(err).To(BeNil())
	Expect(byEmail.ID).To(Equal(user.ID))
	Expect(byEmail.PasswordHash).NotTo(BeEmpty())

	byID, err := s.UserRepo.GetByID(s.ctx, user.ID)
	Expect(err).To(BeNil())
	Expect(byID.Name).To(Equal("Jane"))
}

func (s *UserRepositoryTestSuite) TestCreate_DuplicateEmailIsConflict() {
	_, err := s.UserRepo.Create(s.ctx, factory.NewUser(map[string]any{"Email": "dup@example.com"}))
	Expect(err).To(BeNil())

	_, err = s.UserRepo.Create(s.ctx, factory.NewUser(map[string]any{"Email": "dup@example.com"}))
	Expect(err).To(MatchError(domain.ErrConflict))
}

func (s *UserRepositoryTestSuite) TestGetByID_NotFound() {
	_, err := s.UserRepo.GetByID(s.ctx, "missing")

	Expect(err).To(MatchError(domain.ErrNotFound))
}

func (s *UserRepositoryTestSuite) TestUpdate_WalletAndSettings() {
	user, _ := s.UserRepo.Create(s.ctx, factory.NewUser())

	wallet := "0x1234"
	network := domain.NetworkPolkadot
	user.WalletAddress = &wallet
	user.PreferredNetwork = &network
	user.Settings.Theme = domain.ThemeDark
	user.IsActive = false

	updated, err := s.UserRepo.Update(s.ctx, user)
	Expect(err).To(BeNil())
	Expect(*updated.WalletAddress).To(Equal(wallet))
	Expect(*updated.PreferredNetwork).To(Equal(domain.NetworkPolkadot))
	Expect(updated.Settings.Theme).To(Equal(domain.ThemeDark))
	Expect(updated.IsActive).To(BeFalse())

	owner, err := s.UserRepo.GetByWalletAddress(s.ctx, wallet)
	Expect(err).To(BeNil())
	Expect(owner.ID).To(Equal(user.ID))
}

func (s *UserRepositoryTestSuite) TestUpdate_TakenWalletIsConflict() {
	wallet := "0xshared"

	first, _ := s.UserRepo.Create(s.ctx, factory.NewUser())
	first.WalletAddress = &wallet
	_, err := s.UserRepo.Update(s.ctx, first)
	Expect(err).To(BeNil())

	second, _ := s.UserRepo.Create(s.ctx, factory.NewUser())
	second.WalletAddress = &wallet
	_, err = s.UserRepo.Update(s.ctx, second)
	Expect(err).To(MatchError(domain.ErrConflict))
}
