package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/domain"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/request"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/response"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
	tel "github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/telemetry"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/util"
)

const todoServiceName = "todo"

// TodoService is the read-through cached todo use case. Reads go to the cache
// first; every mutation writes the store and then invalidates the caller's
// cached pages and stats.
type TodoService struct {
	repo      port.TodoRepository
	cache     port.Cache
	telemetry port.Telemetry
	logger    *zap.Logger
	flight    singleflight.Group
	now       func() time.Time
}

func NewTodoService(repo port.TodoRepository, cache port.Cache, telemetry port.Telemetry, logger *zap.Logger) *TodoService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &TodoService{
		repo:      repo,
		cache:     cache,
		telemetry: telemetry,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (ts *TodoService) Create(ctx context.Context, userID string, req request.CreateTodoRequest) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, todoServiceName, "Create", userID)
	defer span.End()

	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		return domain.Todo{}, err
	}

	network, err := parseNetwork(req.BlockchainNetwork)
	if err != nil {
		return domain.Todo{}, err
	}

	now := ts.now()
	todo := domain.Todo{
		ID:                uuid.NewString(),
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		Priority:          priority,
		DueDate:           utcPtr(req.DueDate),
		Tags:              domain.NormalizeTags(req.Tags),
		UserID:            userID,
		BlockchainNetwork: network,
		TransactionHash:   req.TransactionHash,
		BlockchainAddress: req.BlockchainAddress,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	created, err := ts.repo.Create(ctx, todo)
	if err != nil {
		ts.logger.Error("todo create failed", zap.String("user_id", userID), zap.Error(err))
		return domain.Todo{}, err
	}

	ts.store(ctx, util.TodoKey(created.ID), created, util.EntityTTL)
	ts.invalidateUser(ctx, userID)
	ts.telemetry.RecordBusinessEvent(ctx, "created", "todo", created.ID, userID, map[string]any{
		"priority": string(created.Priority),
	})

	return created, nil
}

func (ts *TodoService) FindAll(ctx context.Context, userID string, query request.TodoQuery) (response.PaginatedTodos, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, todoServiceName, "FindAll", userID)
	defer span.End()

	query = query.WithDefaults()
	key := util.UserTodosKey(userID, query)

	if page, ok := lookup[response.PaginatedTodos](ctx, ts, key, "todo_page", nil); ok {
		return page, nil
	}

	v, err, _ := ts.flight.Do(key, func() (any, error) {
		// Shared by every caller waiting on key, so one cancellation must not fail the rest.
		ctx := context.WithoutCancel(ctx)

		filter, sort, err := toFilter(userID, query)
		if err != nil {
			return nil, err
		}

		var (
			todos []domain.Todo
			total int
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			todos, err = ts.repo.FindMany(gctx, filter, sort, domain.Page{
				Offset: (query.Page - 1) * query.Limit,
				Limit:  query.Limit,
			})
			return err
		})
		g.Go(func() error {
			var err error
			total, err = ts.repo.Count(gctx, filter)
			return err
		})

		if err := g.Wait(); err != nil {
			return nil, err
		}

		if todos == nil {
			todos = []domain.Todo{}
		}

		page := response.PaginatedTodos{
			Todos:      todos,
			Total:      total,
			Page:       query.Page,
			Limit:      query.Limit,
			TotalPages: totalPages(total, query.Limit),
		}

		ts.store(ctx, key, page, util.ListTTL)

		return page, nil
	})

	if err != nil {
		return response.PaginatedTodos{}, err
	}

	return v.(response.PaginatedTodos), nil
}

func (ts *TodoService) FindOne(ctx context.Context, id, userID string) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, todoServiceName, "FindOne", userID, attribute.String("todo.id", id))
	defer span.End()

	key := util.TodoKey(id)

	// A cached entry for another owner is treated as a miss.
	owned := func(t domain.Todo) bool { return t.BelongsToUser(userID) }
	if todo, ok := lookup(ctx, ts, key, "todo", owned); ok {
		return todo, nil
	}

	todo, err := ts.repo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		return domain.Todo{}, err
	}

	ts.store(ctx, key, todo, util.EntityTTL)

	return todo, nil
}

func (ts *TodoService) Update(ctx context.Context, id, userID string, req request.UpdateTodoRequest) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, todoServiceName, "Update", userID, attribute.String("todo.id", id))
	defer span.End()

	existing, err := ts.repo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		return domain.Todo{}, err
	}

	if err := applyUpdate(&existing, req); err != nil {
		return domain.Todo{}, err
	}

	return ts.save(ctx, existing, "updated")
}

func (ts *TodoService) Toggle(ctx context.Context, id, userID string) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, todoServiceName, "Toggle", userID, attribute.String("todo.id", id))
	defer span.End()

	existing, err := ts.repo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		return domain.Todo{}, err
	}

	existing.Completed = !existing.Completed

	return ts.save(ctx, existing, "toggled")
}

func (ts *TodoService) Remove(ctx context.Context, id, userID string) error {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, todoServiceName, "Remove", userID, attribute.String("todo.id", id))
	defer span.End()

	deleted, err := ts.repo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}

	if !deleted {
		return fmt.Errorf("%w: todo %s", domain.ErrNotFound, id)
	}

	if err := ts.cache.Delete(ctx, util.TodoKey(id)); err != nil {
		ts.logger.Warn("cache delete failed", zap.String("key", util.TodoKey(id)), zap.Error(err))
	}

	ts.invalidateUser(ctx, userID)
	ts.telemetry.RecordBusinessEvent(ctx, "deleted", "todo", id, userID, nil)

	return nil
}

func (ts *TodoService) Stats(ctx context.Context, userID string) (domain.TodoStats, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, todoServiceName, "Stats", userID)
	defer span.End()

	key := util.UserStatsKey(userID)

	if stats, ok := lookup[domain.TodoStats](ctx, ts, key, "stats", nil); ok {
		return stats, nil
	}

	v, err, _ := ts.flight.Do(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)

		var (
			stats      domain.TodoStats
			completed  = true
			incomplete = false
			now        = ts.now()
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			stats.Total, err = ts.repo.Count(gctx, domain.TodoFilter{UserID: userID})
			return err
		})
		g.Go(func() error {
			var err error
			stats.Completed, err = ts.repo.Count(gctx, domain.TodoFilter{UserID: userID, Completed: &completed})
			return err
		})
		g.Go(func() error {
			var err error
			stats.Overdue, err = ts.repo.Count(gctx, domain.TodoFilter{UserID: userID, Completed: &incomplete, DueBefore: &now})
			return err
		})
		g.Go(func() error {
			var err error
			stats.ByPriority, err = ts.repo.CountByPriority(gctx, userID)
			return err
		})
		g.Go(func() error {
			var err error
			stats.ByBlockchainNetwork, err = ts.repo.CountByNetwork(gctx, userID)
			return err
		})

		if err := g.Wait(); err != nil {
			return nil, err
		}

		stats.Active = stats.Total - stats.Completed

		if stats.ByPriority == nil {
			stats.ByPriority = map[string]int{}
		}

		if stats.ByBlockchainNetwork == nil {
			stats.ByBlockchainNetwork = map[string]int{}
		}

		ts.store(ctx, key, stats, util.StatsTTL)

		return stats, nil
	})

	if err != nil {
		return domain.TodoStats{}, err
	}

	return v.(domain.TodoStats), nil
}

func (ts *TodoService) FindOverdue(ctx context.Context, userID string) ([]domain.Todo, error) {
	incomplete := false
	now := ts.now()

	return ts.repo.FindMany(ctx,
		domain.TodoFilter{UserID: userID, Completed: &incomplete, DueBefore: &now},
		domain.TodoSort{Field: domain.SortByDueDate},
		domain.Page{},
	)
}

func (ts *TodoService) FindByTag(ctx context.Context, userID, tag string) ([]domain.Todo, error) {
	return ts.repo.FindMany(ctx, domain.TodoFilter{UserID: userID, Tag: tag}, domain.DefaultTodoSort(), domain.Page{})
}

func (ts *TodoService) FindByPriority(ctx context.Context, userID string, priority domain.Priority) ([]domain.Todo, error) {
	if !priority.IsValid() {
		return nil, fmt.Errorf("%w: invalid priority %q", domain.ErrValidation, priority)
	}

	return ts.repo.FindMany(ctx, domain.TodoFilter{UserID: userID, Priority: &priority}, domain.DefaultTodoSort(), domain.Page{})
}

func (ts *TodoService) FindBlockchainTodos(ctx context.Context, userID string) ([]domain.Todo, error) {
	return ts.repo.FindMany(ctx, domain.TodoFilter{UserID: userID, HasNetwork: true}, domain.DefaultTodoSort(), domain.Page{})
}

// save persists a modified todo, refreshes its entity entry and drops the
// owner's derived entries.
func (ts *TodoService) save(ctx context.Context, todo domain.Todo, event string) (domain.Todo, error) {
	todo.UpdatedAt = ts.now()

	updated, err := ts.repo.Update(ctx, todo)
	if err != nil {
		return domain.Todo{}, err
	}

	ts.store(ctx, util.TodoKey(updated.ID), updated, util.EntityTTL)
	ts.invalidateUser(ctx, updated.UserID)
	ts.telemetry.RecordBusinessEvent(ctx, event, "todo", updated.ID, updated.UserID, map[string]any{
		"completed": updated.Completed,
	})

	return updated, nil
}

func (ts *TodoService) invalidateUser(ctx context.Context, userID string) {
	if err := ts.cache.DeletePattern(ctx, util.UserPattern(userID)); err != nil {
		ts.logger.Warn("cache invalidation failed", zap.String("pattern", util.UserPattern(userID)), zap.Error(err))
	}

	if err := ts.cache.Delete(ctx, util.UserStatsKey(userID)); err != nil {
		ts.logger.Warn("cache invalidation failed", zap.String("key", util.UserStatsKey(userID)), zap.Error(err))
	}
}

func (ts *TodoService) store(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		ts.logger.Error("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}

	if err := ts.cache.Set(ctx, key, data, ttl); err != nil {
		ts.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// lookup decodes a cached value. Read and decode errors count as a miss, as do
// values rejected by accept when it is set.
func lookup[T any](ctx context.Context, ts *TodoService, key, kind string, accept func(T) bool) (T, bool) {
	var value T

	data, found, err := ts.cache.Get(ctx, key)
	if err != nil {
		ts.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		found = false
	}

	if found {
		if err := json.Unmarshal(data, &value); err != nil {
			ts.logger.Warn("cache decode failed", zap.String("key", key), zap.Error(err))
			found = false
		}
	}

	if found && accept != nil && !accept(value) {
		found = false
	}

	ts.telemetry.RecordCacheLookup(ctx, kind, found)

	return value, found
}

func toFilter(userID string, query request.TodoQuery) (domain.TodoFilter, domain.TodoSort, error) {
	filter := domain.TodoFilter{
		UserID:    userID,
		Completed: query.Completed,
		Search:    strings.TrimSpace(query.Search),
		Tag:       strings.TrimSpace(query.Tag),
	}

	if query.Priority != "" {
		p := domain.Priority(query.Priority)
		if !p.IsValid() {
			return filter, domain.TodoSort{}, fmt.Errorf("%w: invalid priority %q", domain.ErrValidation, query.Priority)
		}
		filter.Priority = &p
	}

	if query.BlockchainNetwork != "" {
		network, err := parseNetwork(&query.BlockchainNetwork)
		if err != nil {
			return filter, domain.TodoSort{}, err
		}
		filter.BlockchainNetwork = network
	}

	sort := domain.TodoSort{Field: domain.SortField(query.SortBy), Desc: query.SortOrder != "asc"}
	if !sort.Field.IsValid() {
		return filter, domain.TodoSort{}, fmt.Errorf("%w: invalid sort field %q", domain.ErrValidation, query.SortBy)
	}

	return filter, sort, nil
}

func applyUpdate(todo *domain.Todo, req request.UpdateTodoRequest) error {
	if req.Title != nil {
		todo.Title = strings.TrimSpace(*req.Title)
	}

	if req.Description != nil {
		todo.Description = req.Description
	}

	if req.Completed != nil {
		todo.Completed = *req.Completed
	}

	if req.Priority != nil {
		p, err := domain.ParsePriority(*req.Priority)
		if err != nil {
			return err
		}
		todo.Priority = p
	}

	switch {
	case req.ClearDueDate:
		todo.DueDate = nil
	case req.DueDate != nil:
		todo.DueDate = utcPtr(req.DueDate)
	}

	if req.Tags != nil {
		todo.Tags = domain.NormalizeTags(req.Tags)
	}

	if req.BlockchainNetwork != nil {
		network, err := parseNetwork(req.BlockchainNetwork)
		if err != nil {
			return err
		}
		todo.BlockchainNetwork = network
	}

	if req.TransactionHash != nil {
		todo.TransactionHash = req.TransactionHash
	}

	if req.BlockchainAddress != nil {
		todo.BlockchainAddress = req.BlockchainAddress
	}

	return nil
}

func parseNetwork(value *string) (*domain.Network, error) {
	if value == nil || *value == "" {
		return nil, nil
	}

	n := domain.Network(strings.ToLower(*value))
	if !n.IsValid() {
		return nil, fmt.Errorf("%w: invalid blockchain network %q", domain.ErrValidation, *value)
	}

	return &n, nil
}

func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}

	return (total + limit - 1) / limit
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	v := t.UTC().Truncate(time.Millisecond)

	return &v
}
