package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/database/postgres"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/domain"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
	tel "github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/telemetry"
)

var todoColumns = []string{
	"id", "title", "description", "completed", "priority", "due_date", "tags", "user_id",
	"blockchain_network", "transaction_hash", "blockchain_address", "created_at", "updated_at",
}

var sortColumns = map[domain.SortField]string{
	domain.SortByCreatedAt: "created_at",
	domain.SortByUpdatedAt: "updated_at",
	domain.SortByTitle:     "title",
	domain.SortByPriority:  "priority",
	domain.SortByDueDate:   "due_date",
}

type TodoRepository struct {
	db        *postgres.DB
	telemetry port.Telemetry
}

func NewTodoRepository(db *postgres.DB, telemetry port.Telemetry) port.TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{db: db, telemetry: telemetry}
}

func (tr *TodoRepository) Create(ctx context.Context, todo domain.Todo) (_ domain.Todo, err error) {
	ctx, done := observe(ctx, tr.telemetry, "Create", "todos", attribute.String("todo.id", todo.ID))
	defer func() { done(err) }()

	query, args, err := tr.db.QueryBuilder.Insert("todos").
		Columns(todoColumns...).
		Values(
			todo.ID, todo.Title, todo.Description, todo.Completed, string(todo.Priority), todo.DueDate,
			tagsValue(todo.Tags), todo.UserID, networkValue(todo.BlockchainNetwork), todo.TransactionHash,
			todo.BlockchainAddress, todo.CreatedAt, todo.UpdatedAt,
		).
		Suffix("RETURNING " + strings.Join(todoColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.Todo{}, err
	}

	return scanTodo(tr.db.QueryRow(ctx, query, args...))
}

func (tr *TodoRepository) FindByIDAndUser(ctx context.Context, id, userID string) (_ domain.Todo, err error) {
	ctx, done := observe(ctx, tr.telemetry, "FindByIDAndUser", "todos", attribute.String("todo.id", id))
	defer func() { done(err) }()

	query, args, err := tr.db.QueryBuilder.Select(todoColumns...).
		From("todos").
		Where(sq.Eq{"id": id, "user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return domain.Todo{}, err
	}

	todo, err := scanTodo(tr.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Todo{}, fmt.Errorf("%w: todo %s", domain.ErrNotFound, id)
	}

	return todo, err
}

func (tr *TodoRepository) FindMany(ctx context.Context, filter domain.TodoFilter, sort domain.TodoSort, page domain.Page) (_ []domain.Todo, err error) {
	ctx, done := observe(ctx, tr.telemetry, "FindMany", "todos", attribute.Int("pagination.limit", page.Limit))
	defer func() { done(err) }()

	column, ok := sortColumns[sort.Field]
	if !ok {
		column = "created_at"
	}

	direction := "ASC"
	if sort.Desc {
		direction = "DESC"
	}

	builder := tr.db.QueryBuilder.Select(todoColumns...).
		From("todos").
		Where(todoConditions(filter)).
		OrderBy(fmt.Sprintf("%s %s", column, direction), "id "+direction)

	if page.Limit > 0 {
		builder = builder.Limit(uint64(page.Limit)).Offset(uint64(page.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := tr.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := []domain.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}

		todos = append(todos, todo)
	}

	return todos, rows.Err()
}

func (tr *TodoRepository) Count(ctx context.Context, filter domain.TodoFilter) (_ int, err error) {
	ctx, done := observe(ctx, tr.telemetry, "Count", "todos")
	defer func() { done(err) }()

	query, args, err := tr.db.QueryBuilder.Select("COUNT(*)").
		From("todos").
		Where(todoConditions(filter)).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = tr.db.QueryRow(ctx, query, args...).Scan(&count)

	return count, err
}

func (tr *TodoRepository) CountByPriority(ctx context.Context, userID string) (map[string]int, error) {
	return tr.countBy(ctx, "CountByPriority", "priority", sq.Eq{"user_id": userID})
}

func (tr *TodoRepository) CountByNetwork(ctx context.Context, userID string) (map[string]int, error) {
	return tr.countBy(ctx, "CountByNetwork", "blockchain_network", sq.And{
		sq.Eq{"user_id": userID},
		sq.NotEq{"blockchain_network": nil},
	})
}

func (tr *TodoRepository) countBy(ctx context.Context, operation, column string, where sq.Sqlizer) (_ map[string]int, err error) {
	ctx, done := observe(ctx, tr.telemetry, operation, "todos")
	defer func() { done(err) }()

	query, args, err := tr.db.QueryBuilder.Select(column, "COUNT(*)").
		From("todos").
		Where(where).
		GroupBy(column).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := tr.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			key   string
			count int
		)

		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}

		counts[key] = count
	}

	return counts, rows.Err()
}

func (tr *TodoRepository) Update(ctx context.Context, todo domain.Todo) (_ domain.Todo, err error) {
	ctx, done := observe(ctx, tr.telemetry, "Update", "todos", attribute.String("todo.id", todo.ID))
	defer func() { done(err) }()

	query, args, err := tr.db.QueryBuilder.Update("todos").
		SetMap(map[string]any{
			"title":              todo.Title,
			"description":        todo.Description,
			"completed":          todo.Completed,
			"priority":           string(todo.Priority),
			"due_date":           todo.DueDate,
			"tags":               tagsValue(todo.Tags),
			"blockchain_network": networkValue(todo.BlockchainNetwork),
			"transaction_hash":   todo.TransactionHash,
			"blockchain_address": todo.BlockchainAddress,
			"updated_at":         todo.UpdatedAt,
		}).
		Where(sq.Eq{"id": todo.ID, "user_id": todo.UserID}).
		Suffix("RETURNING " + strings.Join(todoColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.Todo{}, err
	}

	updated, err := scanTodo(tr.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Todo{}, fmt.Errorf("%w: todo %s", domain.ErrNotFound, todo.ID)
	}

	return updated, err
}

func (tr *TodoRepository) Delete(ctx context.Context, id, userID string) (_ bool, err error) {
	ctx, done := observe(ctx, tr.telemetry, "Delete", "todos", attribute.String("todo.id", id))
	defer func() { done(err) }()

	query, args, err := tr.db.QueryBuilder.Delete("todos").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return false, err
	}

	tag, err := tr.db.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (tr *TodoRepository) Ping(ctx context.Context) error {
	return tr.db.Ping(ctx)
}

func todoConditions(filter domain.TodoFilter) sq.And {
	where := sq.And{sq.Eq{"user_id": filter.UserID}}

	if filter.Completed != nil {
		where = append(where, sq.Eq{"completed": *filter.Completed})
	}

	if filter.Priority != nil {
		where = append(where, sq.Eq{"priority": string(*filter.Priority)})
	}

	if filter.BlockchainNetwork != nil {
		where = append(where, sq.Eq{"blockchain_network": string(*filter.BlockchainNetwork)})
	}

	if filter.HasNetwork {
		where = append(where, sq.NotEq{"blockchain_network": nil})
	}

	if filter.DueBefore != nil {
		where = append(where, sq.NotEq{"due_date": nil}, sq.Lt{"due_date": *filter.DueBefore})
	}

	if filter.Tag != "" {
		where = append(where, sq.Expr("? = ANY(tags)", filter.Tag))
	}

	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		where = append(where, sq.Or{
			sq.Expr(`LOWER(title) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\'`, pattern),
		})
	}

	return where
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanTodo(row pgx.Row) (domain.Todo, error) {
	var (
		todo     domain.Todo
		priority string
		network  *string
	)

	err := row.Scan(
		&todo.ID, &todo.Title, &todo.Description, &todo.Completed, &priority, &todo.DueDate, &todo.Tags,
		&todo.UserID, &network, &todo.TransactionHash, &todo.BlockchainAddress, &todo.CreatedAt, &todo.UpdatedAt,
	)
	if err != nil {
		return domain.Todo{}, err
	}

	todo.Priority = domain.Priority(priority)
	todo.CreatedAt = todo.CreatedAt.UTC()
	todo.UpdatedAt = todo.UpdatedAt.UTC()

	if todo.DueDate != nil {
		due := todo.DueDate.UTC()
		todo.DueDate = &due
	}

	if todo.Tags == nil {
		todo.Tags = []string{}
	}

	if network != nil {
		n := domain.Network(*network)
		todo.BlockchainNetwork = &n
	}

	return todo, nil
}

func tagsValue(tags []string) []string {
	if tags == nil {
		return []string{}
	}

	return tags
}

func networkValue(n *domain.Network) any {
	if n == nil {
		return nil
	}

	return string(*n)
}

func observe(ctx context.Context, probe port.Telemetry, operation, entity string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := probe.StartRepositorySpan(ctx, operation, entity, append(attrs, attribute.String("db.system", "postgresql"))...)
	op := tel.StartOperation(ctx, probe, operation, entity)

	return ctx, func(err error) {
		op.End(err)
		span.End()
	}
}
