package mobile

import (
	"errors"
	"time"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/mobile/blockchain"
)

const MockUserID = "mobile-user-1"

var ErrTodoNotFound = errors.New("todo not found")

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Todo struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Description       string             `json:"description,omitempty"`
	Completed         bool               `json:"completed"`
	Priority          Priority           `json:"priority"`
	DueDate           *time.Time         `json:"dueDate,omitempty"`
	Tags              []string           `json:"tags"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
	UserID            string             `json:"userId"`
	BlockchainNetwork blockchain.Network `json:"blockchainNetwork,omitempty"`
	TransactionHash   string             `json:"transactionHash,omitempty"`
	BlockchainAddress string             `json:"blockchainAddress,omitempty"`
}

func (t Todo) IsSynced() bool {
	return t.TransactionHash != ""
}

type TodoInput struct {
	Title       string
	Description string
	Priority    Priority
	DueDate     *time.Time
	Tags        []string
}

// TodoPatch changes only the fields that are set. Tags are replaced when non-nil.
type TodoPatch struct {
	Title        *string
	Description  *string
	Completed    *bool
	Priority     *Priority
	DueDate      *time.Time
	ClearDueDate bool
	Tags         []string
}

func (p TodoPatch) apply(t *Todo) {
	if p.Title != nil {
		t.Title = *p.Title
	}

	if p.Description != nil {
		t.Description = *p.Description
	}

	if p.Completed != nil {
		t.Completed = *p.Completed
	}

	if p.Priority != nil {
		t.Priority = *p.Priority
	}

	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}

	if p.ClearDueDate {
		t.DueDate = nil
	}

	if p.Tags != nil {
		t.Tags = append([]string{}, p.Tags...)
	}
}

// TodoToBlockchainTodo converts t to the on-chain shape with unix-second times.
func TodoToBlockchainTodo(t Todo) blockchain.BlockchainTodo {
	out := blockchain.BlockchainTodo{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		Tags:        append([]string{}, t.Tags...),
		CreatedAt:   t.CreatedAt.Unix(),
		UpdatedAt:   t.UpdatedAt.Unix(),
	}

	if t.DueDate != nil {
		due := t.DueDate.Unix()
		out.DueDate = &due
	}

	return out
}

func sampleTodos() []Todo {
	day := func(s string) time.Time {
		t, _ := time.Parse(time.DateOnly, s)
		return t
	}

	due := day("2024-01-15")

	return []Todo{
		{
			ID:          "1",
			Title:       "Setup mobile wallet",
			Description: "Connect mobile wallet for blockchain functionality",
			Priority:    PriorityHigh,
			DueDate:     &due,
			Tags:        []string{"blockchain", "mobile"},
			CreatedAt:   day("2024-01-10"),
			UpdatedAt:   day("2024-01-10"),
			UserID:      MockUserID,
		},
		{
			ID:                "2",
			Title:             "Test mobile app",
			Description:       "Test all mobile app functionality",
			Completed:         true,
			Priority:          PriorityMedium,
			Tags:              []string{"testing", "mobile"},
			CreatedAt:         day("2024-01-08"),
			UpdatedAt:         day("2024-01-12"),
			UserID:            MockUserID,
			BlockchainNetwork: blockchain.Solana,
			TransactionHash:   "solana-1234567890abcdef",
			BlockchainAddress: "solana-2",
		},
		{
			ID:          "3",
			Title:       "Review mobile UI",
			Description: "Review and improve mobile user interface",
			Priority:    PriorityLow,
			Tags:        []string{"ui", "design"},
			CreatedAt:   day("2024-01-09"),
			UpdatedAt:   day("2024-01-09"),
			UserID:      MockUserID,
		},
	}
}
