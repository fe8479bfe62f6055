package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	sqlite3 "github.com/mattn/go-sqlite3"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/database/sqlite"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/domain"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
	tel "github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/telemetry"
)

var userColumns = []string{
	"id", "email", "password_hash", "name", "wallet_address", "preferred_network", "theme",
	"notifications", "default_priority", "is_verified", "is_active", "last_login_at", "created_at", "updated_at",
}

type UserRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewUserRepository(db *sqlite.DB, telemetry port.Telemetry) port.UserRepository {
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
			user.ID, user.Email, user.PasswordHash, user.Name, sqlite.NullableString(user.WalletAddress),
			networkValue(user.PreferredNetwork), string(user.Settings.Theme), user.Settings.Notifications,
			string(user.Settings.DefaultPriority), user.IsVerified, user.IsActive,
			sqlite.FormatTimePtr(user.LastLoginAt), sqlite.FormatTime(user.CreatedAt), sqlite.FormatTime(user.UpdatedAt),
		).
		ToSql()
	if err != nil {
		return domain.User{}, err
	}

	if _, err = ur.db.ExecContext(ctx, query, args...); err != nil {
		return domain.User{}, mapConstraint(err)
	}

	return ur.GetByID(ctx, user.ID)
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

	user, err := scanUser(ur.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
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
			"wallet_address":    sqlite.NullableString(user.WalletAddress),
			"preferred_network": networkValue(user.PreferredNetwork),
			"theme":             string(user.Settings.Theme),
			"notifications":     user.Settings.Notifications,
			"default_priority":  string(user.Settings.DefaultPriority),
			"is_verified":       user.IsVerified,
			"is_active":         user.IsActive,
			"last_login_at":     sqlite.FormatTimePtr(user.LastLoginAt),
			"updated_at":        sqlite.FormatTime(user.UpdatedAt),
		}).
		Where(sq.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return domain.User{}, err
	}

	result, err := ur.db.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.User{}, mapConstraint(err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.User{}, fmt.Errorf("%w: user %s", domain.ErrNotFound, user.ID)
	}

	return ur.GetByID(ctx, user.ID)
}

func (ur *UserRepository) Ping(ctx context.Context) error {
	return ur.db.Ping(ctx)
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		user      domain.User
		wallet    sql.NullString
		network   sql.NullString
		theme     string
		priority  string
		lastLogin sql.NullString
		createdAt string
		updatedAt string
	)

	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &wallet, &network, &theme,
		&user.Settings.Notifications, &priority, &user.IsVerified, &user.IsActive, &lastLogin, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	user.WalletAddress = sqlite.StringPtr(wallet)
	user.Settings.Theme = domain.Theme(theme)
	user.Settings.DefaultPriority = domain.Priority(priority)

	if network.Valid {
		n := domain.Network(network.String)
		user.PreferredNetwork = &n
	}

	if user.LastLoginAt, err = sqlite.ParseTimePtr(lastLogin); err != nil {
		return domain.User{}, err
	}

	if user.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
		return domain.User{}, err
	}

	if user.UpdatedAt, err = sqlite.ParseTime(updatedAt); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

func mapConstraint(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: %s", domain.ErrConflict, sqliteErr.Error())
	}

	return err
}
