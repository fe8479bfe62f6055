package domain

import "time"

type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByTitle     SortField = "title"
	SortByPriority  SortField = "priority"
	SortByDueDate   SortField = "dueDate"
)

func (f SortField) IsValid() bool {
	switch f {
	case SortByCreatedAt, SortByUpdatedAt, SortByTitle, SortByPriority, SortByDueDate:
		return true
	}

	return false
}

// TodoFilter is the store-independent form of a todo query. UserID is mandatory;
// every other field narrows the result only when set.
type TodoFilter struct {
	UserID            string
	Completed         *bool
	Priority          *Priority
	BlockchainNetwork *Network
	Search            string
	Tag               string
	HasNetwork        bool
	DueBefore         *time.Time
}

type TodoSort struct {
	Field SortField
	Desc  bool
}

func DefaultTodoSort() TodoSort {
	return TodoSort{Field: SortByCreatedAt, Desc: true}
}

type Page struct {
	Offset int
	Limit  int
}
