package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/database/postgres"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/domain"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
	tel "github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/telemetry"
)

const uniqueViolation = "23505"

var userColumns = []string{
	"id", "email", "password_hash", "name", "wallet_address", "preferred_network", "theme",
	"notifications", "default_priority", "is_verified", "is_active", "last_login_at", "created_at", "updated_at",
}

type UserRepository struct {
	db        *postgres.DB
	telemetry port.Telemetry
}

func NewUserRepository(db *postgres.DB, telemetry port.Telemetry) port.UserRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{db: db, telemetry: telemetry}
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (_ domain.User, err error) {
	ctx, done := observe(ctx, ur.telemetry, "Create", "users", attribute.String("user.id", user.ID))
	defer func() { done(err) }()

	query, args, err := ur.db.QueryBuilder.Insert("users").
		Columns(userColumns...).
		Values(
			user.ID, user.Email, user.PasswordHash, user.Name, user.WalletAddress,
			networkValue(user.PreferredNetwork), string(user.Settings.Theme), user.Settings.Notifications,
			string(user.Settings.DefaultPriority), user.IsVerified, user.IsActive,
			user.LastLoginAt, user.CreatedAt, user.UpdatedAt,
		).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.User{}, err
	}

	created, err := scanUser(ur.db.QueryRow(ctx, query, args...))

	return created, mapConstraint(err)
}

func (ur *UserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	return ur.getBy(ctx, "GetByID", sq.Eq{"id": id})
}

func (ur *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return ur.getBy(ctx, "GetByEmail", sq.Eq{"email": email})
}

func (ur *UserRepository) GetByWalletAddress(ctx context.Context, address string) (domain.User, error) {
	return ur.getBy(ctx, "GetByWalletAddress", sq.Eq{"wallet_address": address})
}

func (ur *UserRepository) getBy(ctx context.Context, operation string, where sq.Eq) (_ domain.User, err error) {
	ctx, done := observe(ctx, ur.telemetry, operation, "users")
	defer func() { done(err) }()

	query, args, err := ur.db.QueryBuilder.Select(userColumns...).
		From("users").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return domain.User{}, err
	}

	user, err := scanUser(ur.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, fmt.Errorf("%w: user", domain.ErrNotFound)
	}

	return user, err
}

func (ur *UserRepository) Update(ctx context.Context, user domain.User) (_ domain.User, err error) {
	ctx, done := observe(ctx, ur.telemetry, "Update", "users", attribute.String("user.id", user.ID))
	defer func() { done(err) }()

	query, args, err := ur.db.QueryBuilder.Update("users").
		SetMap(map[string]any{
			"name":              user.Name,
			"wallet_address":    user.WalletAddress,
			"preferred_network": networkValue(user.PreferredNetwork),
			"theme":             string(user.Settings.Theme),
			"notifications":     user.Settings.Notifications,
			"default_priority":  string(user.Settings.DefaultPriority),
			"is_verified":       user.IsVerified,
			"is_active":         user.IsActive,
			"last_login_at":     user.LastLoginAt,
			"updated_at":        user.UpdatedAt,
		}).
		Where(sq.Eq{"id": user.ID}).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.User{}, err
	}

	updated, err := scanUser(ur.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, fmt.Errorf("%w: user %s", domain.ErrNotFound, user.ID)
	}

	return updated, mapConstraint(err)
}

func (ur *UserRepository) Ping(ctx context.Context) error {
	return ur.db.Ping(ctx)
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		user     domain.User
		network  *string
		theme    string
		priority string
	)

	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.WalletAddress, &network, &theme,
		&user.Settings.Notifications, &priority, &user.IsVerified, &user.IsActive, &user.LastLoginAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	user.Settings.Theme = domain.Theme(theme)
	user.Settings.DefaultPriority = domain.Priority(priority)
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()

	if user.LastLoginAt != nil {
		last := user.LastLoginAt.UTC()
		user.LastLoginAt = &last
	}

	if network != nil {
		n := domain.Network(*network)
		user.PreferredNetwork = &n
	}

	return user, nil
}

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.Detail)
	}

	return err
}
