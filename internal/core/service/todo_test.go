package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/cache/memory"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/database/sqlite/repository"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/domain"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/request"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/service"
	tel "github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/telemetry"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/util"
	. "github.com/Kaybarax/todo-list-turborepo-sub002/pkg/test"
)

// countingRepo counts the list reads that reach the store.
type countingRepo struct {
	port.TodoRepository
	finds atomic.Int32
}

func (r *countingRepo) FindMany(ctx context.Context, filter domain.TodoFilter, sort domain.TodoSort, page domain.Page) ([]domain.Todo, error) {
	r.finds.Add(1)
	return r.TodoRepository.FindMany(ctx, filter, sort, page)
}

// gatedRepo holds list reads until release is closed.
type gatedRepo struct {
	port.TodoRepository
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *gatedRepo) FindMany(ctx context.Context, filter domain.TodoFilter, sort domain.TodoSort, page domain.Page) ([]domain.Todo, error) {
	r.once.Do(func() { close(r.entered) })
	<-r.release
	return r.TodoRepository.FindMany(ctx, filter, sort, page)
}

// cacheRecorder records cache lookups by kind.
type cacheRecorder struct {
	port.Telemetry
	mu      sync.Mutex
	lookups map[string][]bool
}

func (r *cacheRecorder) RecordCacheLookup(_ context.Context, kind string, hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups[kind] = append(r.lookups[kind], hit)
}

// brokenCache fails every operation.
type brokenCache struct{}

var errCacheDown = errors.New("cache down")

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errCacheDown }
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errCacheDown
}
func (brokenCache) Delete(context.Context, string) error        { return errCacheDown }
func (brokenCache) DeletePattern(context.Context, string) error { return errCacheDown }
func (brokenCache) Ping(context.Context) error                  { return errCacheDown }
func (brokenCache) Close() error                                { return nil }

type TodoServiceTestSuite struct {
	suite.Suite
	UseCase *service.TodoService
	Repo    *countingRepo
	Cache   *memory.Cache
	ctx     context.Context
}

func (s *TodoServiceTestSuite) SetupTest() {
	db := InitTestDB()
	s.T().Cleanup(func() { db.Close() })

	s.Repo = &countingRepo{TodoRepository: repository.NewTodoRepository(db, nil)}
	s.Cache = memory.New(time.Minute)
	s.UseCase = service.NewTodoService(s.Repo, s.Cache, nil, zap.NewNop())
	s.ctx = context.Background()
}

func TestTodoServiceTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoServiceTestSuite))
}

func (s *TodoServiceTestSuite) create(userID, title string, mutate ...func(*request.CreateTodoRequest)) domain.Todo {
	req := request.CreateTodoRequest{Title: title}
	for _, m := range mutate {
		m(&req)
	}

	todo, err := s.UseCase.Create(s.ctx, userID, req)
	Expect(err).To(BeNil())

	return todo
}

func ptr[T any](v T) *T { return &v }

func (s *TodoServiceTestSuite) TestCreate_Defaults() {
	todo := s.create("u1", "  Buy milk  ", func(r *request.CreateTodoRequest) {
		r.Tags = []string{" home ", "", "errand"}
	})

	Expect(todo.ID).NotTo(BeEmpty())
	Expect(todo.Title).To(Equal("Buy milk"))
	Expect(todo.Priority).To(Equal(domain.PriorityMedium))
	Expect(todo.Completed).To(BeFalse())
	Expect(todo.Tags).To(Equal([]string{"home", "errand"}))
	Expect(todo.CreatedAt).To(Equal(todo.UpdatedAt))
	Expect(todo.CreatedAt.Location()).To(Equal(time.UTC))

	cached, found, err := s.Cache.Get(s.ctx, util.TodoKey(todo.ID))
	Expect(err).To(BeNil())
	Expect(found).To(BeTrue())

	var decoded domain.Todo
	Expect(json.Unmarshal(cached, &decoded)).To(Succeed())
	Expect(decoded.ID).To(Equal(todo.ID))
}

func (s *TodoServiceTestSuite) TestCreate_RejectsUnknownNetwork() {
	_, err := s.UseCase.Create(s.ctx, "u1", request.CreateTodoRequest{
		Title:             "anchor",
		BlockchainNetwork: ptr("ethereum"),
	})

	Expect(err).To(MatchError(domain.ErrValidation))
}

func (s *TodoServiceTestSuite) TestFindAll_Pagination() {
	for i := 0; i < 25; i++ {
		s.create("u1", "todo")
	}

	page, err := s.UseCase.FindAll(s.ctx, "u1", request.TodoQuery{Page: 3, Limit: 10})
	Expect(err).To(BeNil())
	Expect(page.Total).To(Equal(25))
	Expect(page.TotalPages).To(Equal(3))
	Expect(page.Page).To(Equal(3))
	Expect(page.Limit).To(Equal(10))
	Expect(page.Todos).To(HaveLen(5))
}

func (s *TodoServiceTestSuite) TestFindAll_EmptyIsNotNil() {
	page, err := s.UseCase.FindAll(s.ctx, "nobody", request.TodoQuery{})
	Expect(err).To(BeNil())
	Expect(page.Todos).NotTo(BeNil())
	Expect(page.Todos).To(BeEmpty())
	Expect(page.TotalPages).To(Equal(0))
}

func (s *TodoServiceTestSuite) TestFindAll_WarmReadSkipsStore() {
	s.create("u1", "a")
	s.create("u1", "b")

	cold, err := s.UseCase.FindAll(s.ctx, "u1", request.TodoQuery{})
	Expect(err).To(BeNil())
	reads := s.Repo.finds.Load()

	warm, err := s.UseCase.FindAll(s.ctx, "u1", request.TodoQuery{})
	Expect(err).To(BeNil())
	Expect(s.Repo.finds.Load()).To(Equal(reads))

	coldJSON, _ := json.Marshal(cold)
	warmJSON, _ := json.Marshal(warm)
	Expect(warmJSON).To(MatchJSON(coldJSON))
}

func (s *TodoServiceTestSuite) TestFindAll_SharedReadSurvivesCallerCancel() {
	s.create("u1", "a")

	gated := &gatedRepo{TodoRepository: s.Repo, entered: make(chan struct{}), release: make(chan struct{})}
	svc := service.NewTodoService(gated, memory.New(time.Minute), nil, zap.NewNop())

	ctx, cancel := context.WithCancel(s.ctx)

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.FindAll(ctx, "u1", request.TodoQuery{})
	}()

	<-gated.entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[1] = svc.FindAll(s.ctx, "u1", request.TodoQuery{})
	}()

	cancel()
	close(gated.release)
	wg.Wait()

	Expect(errs[0]).To(BeNil())
	Expect(errs[1]).To(BeNil())
}

func (s *TodoServiceTestSuite) TestFindOne_OtherOwnerEntryIsAMiss() {
	recorder := &cacheRecorder{Telemetry: tel.NewNoOpProbe(), lookups: map[string][]bool{}}
	svc := service.NewTodoService(s.Repo, s.Cache, recorder, zap.NewNop())

	todo, err := svc.Create(s.ctx, "u1", request.CreateTodoRequest{Title: "private"})
	Expect(err).To(BeNil())

	_, err = svc.FindOne(s.ctx, todo.ID, "u2")
	Expect(err).To(MatchError(domain.ErrNotFound))

	_, err = svc.FindOne(s.ctx, todo.ID, "u1")
	Expect(err).To(BeNil())

	Expect(recorder.lookups["todo"]).To(Equal([]bool{false, true}))
}

func (s *TodoServiceTestSuite) TestFindAll_MutationIsVisible() {
	todo := s.create("u1", "a")

	_, err := s.UseCase.FindAll(s.ctx, "u1", request.TodoQuery{})
	Expect(err).To(BeNil())

	_, err = s.UseCase.Toggle(s.ctx, todo.ID, "u1")
	Expect(err).To(BeNil())

	page, err := s.UseCase.FindAll(s.ctx, "u1", request.TodoQuery{})
	Expect(err).To(BeNil())
	Expect(page.Todos).To(HaveLen(1))
	Expect(page.Todos[0].Completed).To(BeTrue())

	s.create("u1", "b")

	page, err = s.UseCase.FindAll(s.ctx, "u1", request.TodoQuery{})
	Expect(err).To(BeNil())
	Expect(page.Total).To(Equal(2))
}

func (s *TodoServiceTestSuite) TestFindAll_PriorityFilterIsPerUser() {
	s.create("u1", "mine", func(r *request.CreateTodoRequest) { r.Priority = "high" })
	s.create("u1", "low", func(r *request.CreateTodoRequest) { r.Priority = "low" })
	s.create("u2", "theirs", func(r *request.CreateTodoRequest) { r.Priority = "high" })

	page, err := s.UseCase.FindAll(s.ctx, "u1", request.TodoQuery{Priority: "high"})
	Expect(err).To(BeNil())
	Expect(page.Total).To(Equal(1))
	Expect(page.Todos[0].Title).To(Equal("mine"))

	high, err := s.UseCase.FindByPriority(s.ctx, "u2", domain.PriorityHigh)
	Expect(err).To(BeNil())
	Expect(high).To(HaveLen(1))
	Expect(high[0].Title).To(Equal("theirs"))
}

func (s *TodoServiceTestSuite) TestFindAll_InvalidSortField() {
	_, err := s.UseCase.FindAll(s.ctx, "u1", request.TodoQuery{SortBy: "userId"})
	Expect(err).To(MatchError(domain.ErrValidation))
}

func (s *TodoServiceTestSuite) TestFindOne_OtherOwnerIsNotFound() {
	todo := s.create("u1", "private")

	// u1's entity entry is warm at this point.
	_, err := s.UseCase.FindOne(s.ctx, todo.ID, "u2")
	Expect(err).To(MatchError(domain.ErrNotFound))

	found, err := s.UseCase.FindOne(s.ctx, todo.ID, "u1")
	Expect(err).To(BeNil())
	Expect(found.Title).To(Equal("private"))
}

func (s *TodoServiceTestSuite) TestUpdate_ClearsDueDate() {
	due := time.Now().Add(24 * time.Hour)
	todo := s.create("u1", "dated", func(r *request.CreateTodoRequest) { r.DueDate = &due })
	Expect(todo.DueDate).NotTo(BeNil())

	var req request.UpdateTodoRequest
	Expect(json.Unmarshal([]byte(`{"dueDate": null}`), &req)).To(Succeed())

	updated, err := s.UseCase.Update(s.ctx, todo.ID, "u1", req)
	Expect(err).To(BeNil())
	Expect(updated.DueDate).To(BeNil())
	Expect(updated.Title).To(Equal("dated"))

	found, err := s.UseCase.FindOne(s.ctx, todo.ID, "u1")
	Expect(err).To(BeNil())
	Expect(found.DueDate).To(BeNil())
}

func (s *TodoServiceTestSuite) TestUpdate_PartialFields() {
	todo := s.create("u1", "first", func(r *request.CreateTodoRequest) { r.Tags = []string{"a"} })

	updated, err := s.UseCase.Update(s.ctx, todo.ID, "u1", request.UpdateTodoRequest{
		Title:    ptr("second"),
		Priority: ptr("low"),
	})
	Expect(err).To(BeNil())
	Expect(updated.Title).To(Equal("second"))
	Expect(updated.Priority).To(Equal(domain.PriorityLow))
	Expect(updated.Tags).To(Equal([]string{"a"}))
	Expect(updated.UpdatedAt).NotTo(BeTemporally("<", todo.UpdatedAt))
}

func (s *TodoServiceTestSuite) TestUpdate_OtherOwnerIsNotFound() {
	todo := s.create("u1", "a")

	_, err := s.UseCase.Update(s.ctx, todo.ID, "u2", request.UpdateTodoRequest{Title: ptr("hijack")})
	Expect(err).To(MatchError(domain.ErrNotFound))
}

func (s *TodoServiceTestSuite) TestToggle_Twice() {
	todo := s.create("u1", "a")

	once, err := s.UseCase.Toggle(s.ctx, todo.ID, "u1")
	Expect(err).To(BeNil())
	Expect(once.Completed).To(BeTrue())

	twice, err := s.UseCase.Toggle(s.ctx, todo.ID, "u1")
	Expect(err).To(BeNil())
	Expect(twice.Completed).To(BeFalse())
}

func (s *TodoServiceTestSuite) TestRemove() {
	todo := s.create("u1", "a")

	Expect(s.UseCase.Remove(s.ctx, todo.ID, "u2")).To(MatchError(domain.ErrNotFound))
	Expect(s.UseCase.Remove(s.ctx, todo.ID, "u1")).To(Succeed())
	Expect(s.UseCase.Remove(s.ctx, todo.ID, "u1")).To(MatchError(domain.ErrNotFound))

	_, err := s.UseCase.FindOne(s.ctx, todo.ID, "u1")
	Expect(err).To(MatchError(domain.ErrNotFound))
}

func (s *TodoServiceTestSuite) TestStats() {
	past := time.Now().Add(-time.Hour)

	a := s.create("u1", "a", func(r *request.CreateTodoRequest) { r.Priority = "high" })
	s.create("u1", "b", func(r *request.CreateTodoRequest) {
		r.DueDate = &past
		r.BlockchainNetwork = ptr("polygon")
	})
	s.create("u1", "c", func(r *request.CreateTodoRequest) { r.Priority = "low" })
	s.create("u2", "other")

	_, err := s.UseCase.Toggle(s.ctx, a.ID, "u1")
	Expect(err).To(BeNil())

	stats, err := s.UseCase.Stats(s.ctx, "u1")
	Expect(err).To(BeNil())
	Expect(stats.Total).To(Equal(3))
	Expect(stats.Completed).To(Equal(1))
	Expect(stats.Active).To(Equal(2))
	Expect(stats.Overdue).To(Equal(1))
	Expect(stats.ByPriority).To(HaveKeyWithValue("high", 1))
	Expect(stats.ByPriority).To(HaveKeyWithValue("medium", 1))
	Expect(stats.ByPriority).To(HaveKeyWithValue("low", 1))
	Expect(stats.ByBlockchainNetwork).To(Equal(map[string]int{"polygon": 1}))

	s.create("u1", "d")

	stats, err = s.UseCase.Stats(s.ctx, "u1")
	Expect(err).To(BeNil())
	Expect(stats.Total).To(Equal(4))
}

func (s *TodoServiceTestSuite) TestSecondaryQueries() {
	past := time.Now().Add(-time.Hour)

	s.create("u1", "late", func(r *request.CreateTodoRequest) { r.DueDate = &past })
	s.create("u1", "tagged", func(r *request.CreateTodoRequest) { r.Tags = []string{"work"} })
	s.create("u1", "chain", func(r *request.CreateTodoRequest) { r.BlockchainNetwork = ptr("solana") })

	overdue, err := s.UseCase.FindOverdue(s.ctx, "u1")
	Expect(err).To(BeNil())
	Expect(overdue).To(HaveLen(1))
	Expect(overdue[0].Title).To(Equal("late"))

	tagged, err := s.UseCase.FindByTag(s.ctx, "u1", "work")
	Expect(err).To(BeNil())
	Expect(tagged).To(HaveLen(1))
	Expect(tagged[0].Title).To(Equal("tagged"))

	chain, err := s.UseCase.FindBlockchainTodos(s.ctx, "u1")
	Expect(err).To(BeNil())
	Expect(chain).To(HaveLen(1))
	Expect(*chain[0].BlockchainNetwork).To(Equal(domain.NetworkSolana))

	_, err = s.UseCase.FindByPriority(s.ctx, "u1", domain.Priority("urgent"))
	Expect(err).To(MatchError(domain.ErrValidation))
}

func TestTodoService_CacheFailuresAreSwallowed(t *testing.T) {
	RegisterTestingT(t)

	db := InitTestDB()
	defer db.Close()

	ctx := context.Background()
	uc := service.NewTodoService(repository.NewTodoRepository(db, nil), brokenCache{}, nil, zap.NewNop())

	todo, err := uc.Create(ctx, "u1", request.CreateTodoRequest{Title: "a"})
	Expect(err).To(BeNil())

	page, err := uc.FindAll(ctx, "u1", request.TodoQuery{})
	Expect(err).To(BeNil())
	Expect(page.Total).To(Equal(1))

	_, err = uc.Toggle(ctx, todo.ID, "u1")
	Expect(err).To(BeNil())

	_, err = uc.Stats(ctx, "u1")
	Expect(err).To(BeNil())

	Expect(uc.Remove(ctx, todo.ID, "u1")).To(Succeed())
}
