package factory

import (
	"time"

	fab "github.com/Goldziher/fabricator"
	"github.com/google/uuid"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/domain"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/util"
)

// DefaultPassword is the plain text behind every factory-built PasswordHash.
const DefaultPassword = "12345678"

var defaultPasswordHash, _ = util.HashPassword(DefaultPassword)

// NewUser builds an active user with random data. Custom data overrides
// fields by name, e.g. map[string]any{"Email": "a@b.io"}.
func NewUser(customData ...map[string]any) domain.User {
	user := fab.New(domain.User{}).Build(customData...)

	if !overrides(customData, "ID") {
		user.ID = uuid.NewString()
	}

	if !overrides(customData, "Email") {
		user.Email = uuid.NewString()[:8] + "@example.com"
	}

	if !overrides(customData, "PasswordHash") {
		user.PasswordHash = defaultPasswordHash
	}

	if !overrides(customData, "IsActive") {
		user.IsActive = true
	}

	user.Email = domain.NormalizeEmail(user.Email)
	user.WalletAddress = nil
	user.PreferredNetwork = nil
	user.LastLoginAt = nil
	user.Settings = domain.DefaultUserSettings()
	user.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	user.UpdatedAt = user.CreatedAt

	return user
}

func overrides(customData []map[string]any, field string) bool {
	for _, data := range customData {
		if _, ok := data[field]; ok {
			return true
		}
	}

	return false
}
