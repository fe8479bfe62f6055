package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/database/sqlite"
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
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewTodoRepository(db *sqlite.DB, telemetry port.Telemetry) port.TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{db: db, telemetry: telemetry}
}

func (tr *TodoRepository) Create(ctx context.Context, todo domain.Todo) (_ domain.Todo, err error) {
	ctx, done := observe(ctx, tr.telemetry, "Create", "todos", attribute.String("todo.id", todo.ID))
	defer func() { done(err) }()

	tags, err := sqlite.EncodeTags(todo.Tags)
	if err != nil {
		return domain.Todo{}, err
	}

	query, args, err := tr.db.QueryBuilder.Insert("todos").
		Columns(todoColumns...).
		Values(
			todo.ID, todo.Title, sqlite.NullableString(todo.Description), todo.Completed, string(todo.Priority),
			sqlite.FormatTimePtr(todo.DueDate), tags, todo.UserID, networkValue(todo.BlockchainNetwork),
			sqlite.NullableString(todo.TransactionHash), sqlite.NullableString(todo.BlockchainAddress),
			sqlite.FormatTime(todo.CreatedAt), sqlite.FormatTime(todo.UpdatedAt),
		).
		ToSql()
	if err != nil {
		return domain.Todo{}, err
	}

	if _, err = tr.db.ExecContext(ctx, query, args...); err != nil {
		return domain.Todo{}, err
	}

	return tr.FindByIDAndUser(ctx, todo.ID, todo.UserID)
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

	todo, err := scanTodo(tr.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
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

	rows, err := tr.db.QueryContext(ctx, query, args...)
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
	err = tr.db.QueryRowContext(ctx, query, args...).Scan(&count)

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

	rows, err := tr.db.QueryContext(ctx, query, args...)
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

	tags, err := sqlite.EncodeTags(todo.Tags)
	if err != nil {
		return domain.Todo{}, err
	}

	query, args, err := tr.db.QueryBuilder.Update("todos").
		SetMap(map[string]any{
			"title":              todo.Title,
			"description":        sqlite.NullableString(todo.Description),
			"completed":          todo.Completed,
			"priority":           string(todo.Priority),
			"due_date":           sqlite.FormatTimePtr(todo.DueDate),
			"tags":               tags,
			"blockchain_network": networkValue(todo.BlockchainNetwork),
			"transaction_hash":   sqlite.NullableString(todo.TransactionHash),
			"blockchain_address": sqlite.NullableString(todo.BlockchainAddress),
			"updated_at":         sqlite.FormatTime(todo.UpdatedAt),
		}).
		Where(sq.Eq{"id": todo.ID, "user_id": todo.UserID}).
		ToSql()
	if err != nil {
		return domain.Todo{}, err
	}

	result, err := tr.db.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.Todo{}, err
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.Todo{}, fmt.Errorf("%w: todo %s", domain.ErrNotFound, todo.ID)
	}

	return tr.FindByIDAndUser(ctx, todo.ID, todo.UserID)
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

	result, err := tr.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()

	return affected > 0, err
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
		where = append(where, sq.NotEq{"due_date": nil}, sq.Lt{"due_date": sqlite.FormatTime(*filter.DueBefore)})
	}

	if filter.Tag != "" {
		where = append(where, sq.Expr("EXISTS (SELECT 1 FROM json_each(todos.tags) WHERE json_each.value = ?)", filter.Tag))
	}

	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		where = append(where, sq.Or{
			sq.Expr(`unicode_lower(title) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`unicode_lower(COALESCE(description, '')) LIKE ? ESCAPE '\'`, pattern),
		})
	}

	return where
}

// escapeLike makes the search term literal inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (domain.Todo, error) {
	var (
		todo        domain.Todo
		description sql.NullString
		priority    string
		dueDate     sql.NullString
		tags        string
		network     sql.NullString
		txHash      sql.NullString
		address     sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := row.Scan(
		&todo.ID, &todo.Title, &description, &todo.Completed, &priority, &dueDate, &tags, &todo.UserID,
		&network, &txHash, &address, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Todo{}, err
	}

	todo.Description = sqlite.StringPtr(description)
	todo.Priority = domain.Priority(priority)
	todo.TransactionHash = sqlite.StringPtr(txHash)
	todo.BlockchainAddress = sqlite.StringPtr(address)

	if network.Valid {
		n := domain.Network(network.String)
		todo.BlockchainNetwork = &n
	}

	if todo.DueDate, err = sqlite.ParseTimePtr(dueDate); err != nil {
		return domain.Todo{}, err
	}

	if todo.Tags, err = sqlite.DecodeTags(tags); err != nil {
		return domain.Todo{}, err
	}

	if todo.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
		return domain.Todo{}, err
	}

	if todo.UpdatedAt, err = sqlite.ParseTime(updatedAt); err != nil {
		return domain.Todo{}, err
	}

	return todo, nil
}

func networkValue(n *domain.Network) any {
	if n == nil {
		return nil
	}

	return string(*n)
}

// observe opens a repository span and returns the func that closes it.
func observe(ctx context.Context, probe port.Telemetry, operation, entity string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := probe.StartRepositorySpan(ctx, operation, entity, append(attrs, attribute.String("db.system", "sqlite"))...)
	op := tel.StartOperation(ctx, probe, operation, entity)

	return ctx, func(err error) {
		op.End(err)
		span.End()
	}
}
