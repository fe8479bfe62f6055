package domain

import (
	"strings"
	"time"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type UserSettings struct {
	Theme           Theme    `json:"theme"`
	Notifications   bool     `json:"notifications"`
	DefaultPriority Priority `json:"defaultPriority"`
}

func DefaultUserSettings() UserSettings {
	return UserSettings{
		Theme:           ThemeLight,
		Notifications:   true,
		DefaultPriority: PriorityMedium,
	}
}

type User struct {
	ID               string       `json:"id"`
	Email            string       `json:"email"`
	PasswordHash     string       `json:"-"`
	Name             string       `json:"name"`
	WalletAddress    *string      `json:"walletAddress,omitempty"`
	PreferredNetwork *Network     `json:"preferredNetwork,omitempty"`
	Settings         UserSettings `json:"settings"`
	IsVerified       bool         `json:"isVerified"`
	IsActive         bool         `json:"isActive"`
	LastLoginAt      *time.Time   `json:"lastLoginAt,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
