package request

import (
	"encoding/json"
	"time"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=100"`
	Name     string `json:"name" validate:"required,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type CreateTodoRequest struct {
	Title             string     `json:"title" validate:"required,max=200"`
	Description       *string    `json:"description,omitempty" validate:"omitempty,max=1000"`
	Priority          string     `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
	Tags              []string   `json:"tags,omitempty" validate:"omitempty,dive,max=50"`
	BlockchainNetwork *string    `json:"blockchainNetwork,omitempty" validate:"omitempty,oneof=solana polkadot polygon"`
	TransactionHash   *string    `json:"transactionHash,omitempty"`
	BlockchainAddress *string    `json:"blockchainAddress,omitempty"`
}

// UpdateTodoRequest is a partial update. A nil field is left untouched;
// ClearDueDate is set when the body carries an explicit "dueDate": null.
type UpdateTodoRequest struct {
	Title             *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description       *string    `json:"description,omitempty" validate:"omitempty,max=1000"`
	Completed         *bool      `json:"completed,omitempty"`
	Priority          *string    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
	ClearDueDate      bool       `json:"-"`
	Tags              []string   `json:"tags,omitempty" validate:"omitempty,dive,max=50"`
	BlockchainNetwork *string    `json:"blockchainNetwork,omitempty" validate:"omitempty,oneof=solana polkadot polygon"`
	TransactionHash   *string    `json:"transactionHash,omitempty"`
	BlockchainAddress *string    `json:"blockchainAddress,omitempty"`
}

func (r *UpdateTodoRequest) UnmarshalJSON(data []byte) error {
	type alias UpdateTodoRequest

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out alias
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}

	if v, ok := raw["dueDate"]; ok && string(v) == "null" {
		out.ClearDueDate = true
	}

	*r = UpdateTodoRequest(out)

	return nil
}

// TodoQuery carries the list parameters of GET /todos.
type TodoQuery struct {
	Page              int    `form:"page" json:"-" validate:"omitempty,min=1"`
	Limit             int    `form:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
	Completed         *bool  `form:"completed" json:"completed,omitempty"`
	Priority          string `form:"priority" json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	BlockchainNetwork string `form:"blockchainNetwork" json:"blockchainNetwork,omitempty" validate:"omitempty,oneof=solana polkadot polygon"`
	Search            string `form:"search" json:"search,omitempty" validate:"omitempty,max=200"`
	Tag               string `form:"tag" json:"tag,omitempty" validate:"omitempty,max=50"`
	SortBy            string `form:"sortBy" json:"sortBy" validate:"omitempty,oneof=createdAt updatedAt title priority dueDate"`
	SortOrder         string `form:"sortOrder" json:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// WithDefaults fills the zero values the way the list endpoint expects them.
func (q TodoQuery) WithDefaults() TodoQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}

	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}

	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}

	if q.SortBy == "" {
		q.SortBy = "createdAt"
	}

	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}

	return q
}

type UpdateUserRequest struct {
	Name             *string              `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	WalletAddress    *string              `json:"walletAddress,omitempty" validate:"omitempty,max=128"`
	PreferredNetwork *string              `json:"preferredNetwork,omitempty" validate:"omitempty,oneof=solana polkadot polygon"`
	Settings         *UserSettingsRequest `json:"settings,omitempty"`
}

type UserSettingsRequest struct {
	Theme           *string `json:"theme,omitempty" validate:"omitempty,oneof=light dark"`
	Notifications   *bool   `json:"notifications,omitempty"`
	DefaultPriority *string `json:"defaultPriority,omitempty" validate:"omitempty,oneof=low medium high"`
}
