package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/domain"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/request"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
)

type UserService struct {
	repo   port.UserRepository
	logger *zap.Logger
}

func NewUserService(repo port.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &UserService{repo: repo, logger: logger}
}

func (us *UserService) Create(ctx context.Context, user domain.User) (domain.User, error) {
	user.Email = domain.NormalizeEmail(user.Email)

	_, err := us.repo.GetByEmail(ctx, user.Email)
	if err == nil {
		return domain.User{}, fmt.Errorf("%w: user with email %s already exists", domain.ErrConflict, user.Email)
	}

	if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)

	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	if user.Settings == (domain.UserSettings{}) {
		user.Settings = domain.DefaultUserSettings()
	}

	user.IsActive = true
	user.CreatedAt = now
	user.UpdatedAt = now

	created, err := us.repo.Create(ctx, user)
	if err != nil {
		us.logger.Error("user create failed", zap.String("email", user.Email), zap.Error(err))
		return domain.User{}, err
	}

	return created, nil
}

func (us *UserService) FindByID(ctx context.Context, id string) (domain.User, error) {
	return us.repo.GetByID(ctx, id)
}

func (us *UserService) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return us.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
}

func (us *UserService) Update(ctx context.Context, id string, req request.UpdateUserRequest) (domain.User, error) {
	user, err := us.repo.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}

	if req.WalletAddress != nil {
		address := strings.TrimSpace(*req.WalletAddress)

		if address == "" {
			user.WalletAddress = nil
		} else {
			owner, err := us.repo.GetByWalletAddress(ctx, address)

			switch {
			case err == nil && owner.ID != user.ID:
				return domain.User{}, fmt.Errorf("%w: wallet address already linked to another account", domain.ErrConflict)
			case err != nil && !errors.Is(err, domain.ErrNotFound):
				return domain.User{}, err
			}

			user.WalletAddress = &address
		}
	}

	if req.PreferredNetwork != nil {
		network, err := parseNetwork(req.PreferredNetwork)
		if err != nil {
			return domain.User{}, err
		}
		user.PreferredNetwork = network
	}

	if s := req.Settings; s != nil {
		if s.Theme != nil {
			user.Settings.Theme = domain.Theme(*s.Theme)
		}

		if s.Notifications != nil {
			user.Settings.Notifications = *s.Notifications
		}

		if s.DefaultPriority != nil {
			p, err := domain.ParsePriority(*s.DefaultPriority)
			if err != nil {
				return domain.User{}, err
			}
			user.Settings.DefaultPriority = p
		}
	}

	user.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	return us.repo.Update(ctx, user)
}

func (us *UserService) UpdateLastLogin(ctx context.Context, id string) error {
	user, err := us.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	user.LastLoginAt = &now
	user.UpdatedAt = now

	_, err = us.repo.Update(ctx, user)

	return err
}

func (us *UserService) Deactivate(ctx context.Context, id string) error {
	user, err := us.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	user.IsActive = false
	user.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	_, err = us.repo.Update(ctx, user)

	return err
}
