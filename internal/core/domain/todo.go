package domain

import (
	"fmt"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}

	return false
}

func ParsePriority(value string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(value)))

	if p == "" {
		return PriorityMedium, nil
	}

	if !p.IsValid() {
		return "", fmt.Errorf("%w: invalid priority %q", ErrValidation, value)
	}

	return p, nil
}

// Network is a chain a todo can be anchored to on the server side.
type Network string

const (
	NetworkSolana   Network = "solana"
	NetworkPolkadot Network = "polkadot"
	NetworkPolygon  Network = "polygon"
)

func (n Network) IsValid() bool {
	switch n {
	case NetworkSolana, NetworkPolkadot, NetworkPolygon:
		return true
	}

	return false
}

type Todo struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       *string    `json:"description,omitempty"`
	Completed         bool       `json:"completed"`
	Priority          Priority   `json:"priority"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
	Tags              []string   `json:"tags"`
	UserID            string     `json:"userId"`
	BlockchainNetwork *Network   `json:"blockchainNetwork,omitempty"`
	TransactionHash   *string    `json:"transactionHash,omitempty"`
	BlockchainAddress *string    `json:"blockchainAddress,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (t *Todo) BelongsToUser(userID string) bool {
	return t.UserID == userID
}

func (t *Todo) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// NormalizeTags trims every tag and drops the empty ones. The result is never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))

	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}

	return out
}

// TodoStats aggregates one user's todos.
type TodoStats struct {
	Total               int            `json:"total"`
	Completed           int            `json:"completed"`
	Active              int            `json:"active"`
	Overdue             int            `json:"overdue"`
	ByPriority          map[string]int `json:"byPriority"`
	ByBlockchainNetwork map[string]int `json:"byBlockchainNetwork"`
}
