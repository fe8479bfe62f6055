package port

import (
	"context"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/domain"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/request"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/response"
)

type TodoRepository interface {
	Create(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	FindByIDAndUser(ctx context.Context, id, userID string) (domain.Todo, error)
	FindMany(ctx context.Context, filter domain.TodoFilter, sort domain.TodoSort, page domain.Page) ([]domain.Todo, error)
	Count(ctx context.Context, filter domain.TodoFilter) (int, error)
	CountByPriority(ctx context.Context, userID string) (map[string]int, error)
	CountByNetwork(ctx context.Context, userID string) (map[string]int, error)
	Update(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	// Delete reports whether a row owned by userID was removed.
	Delete(ctx context.Context, id, userID string) (bool, error)
	Ping(ctx context.Context) error
}

type TodoService interface {
	Create(ctx context.Context, userID string, req request.CreateTodoRequest) (domain.Todo, error)
	FindAll(ctx context.Context, userID string, query request.TodoQuery) (response.PaginatedTodos, error)
	FindOne(ctx context.Context, id, userID string) (domain.Todo, error)
	Update(ctx context.Context, id, userID string, req request.UpdateTodoRequest) (domain.Todo, error)
	Remove(ctx context.Context, id, userID string) error
	Toggle(ctx context.Context, id, userID string) (domain.Todo, error)
	Stats(ctx context.Context, userID string) (domain.TodoStats, error)
	FindOverdue(ctx context.Context, userID string) ([]domain.Todo, error)
	FindByTag(ctx context.Context, userID, tag string) ([]domain.Todo, error)
	FindByPriority(ctx context.Context, userID string, priority domain.Priority) ([]domain.Todo, error)
	FindBlockchainTodos(ctx context.Context, userID string) ([]domain.Todo, error)
}
