package factory

import (
	"time"

	fab "github.com/Goldziher/fabricator"
	"github.com/google/uuid"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/domain"
)

// NewTodo builds an open medium-priority todo owned by userID.
func NewTodo(userID string, customData ...map[string]any) domain.Todo {
	todo := fab.New(domain.Todo{}).Build(customData...)

	now := time.Now().UTC().Truncate(time.Millisecond)

	todo.ID = uuid.NewString()
	todo.UserID = userID
	todo.CreatedAt = now
	todo.UpdatedAt = now

	if !overrides(customData, "Priority") {
		todo.Priority = domain.PriorityMedium
	}

	if !overrides(customData, "Completed") {
		todo.Completed = false
	}

	if !overrides(customData, "Tags") {
		todo.Tags = []string{}
	}

	if !overrides(customData, "DueDate") {
		todo.DueDate = nil
	}

	if !overrides(customData, "Description") {
		todo.Description = nil
	}

	if !overrides(customData, "BlockchainNetwork") {
		todo.BlockchainNetwork = nil
	}

	if !overrides(customData, "TransactionHash") {
		todo.TransactionHash = nil
	}

	if !overrides(customData, "BlockchainAddress") {
		todo.BlockchainAddress = nil
	}

	return todo
}
