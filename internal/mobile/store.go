package mobile

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/mobile/blockchain"
)

// persistedTodos is the document stored under the todos key.
type persistedTodos struct {
	State struct {
		Todos []Todo `json:"todos"`
	} `json:"state"`
	Version int `json:"version"`
}

// Store owns the client's todo list. Every mutation is written through to
// storage before it returns.
type Store struct {
	mu       sync.RWMutex
	todos    []Todo
	snapshot []Todo
	undoable bool

	storage Storage
	queue   *SyncQueue
	logger  *zap.Logger
	now     func() time.Time
}

func NewStore(storage Storage, queue *SyncQueue, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		storage: storage,
		queue:   queue,
		logger:  logger,
		now:     time.Now,
	}

	if queue != nil {
		queue.lookup = s.Get
		queue.created = s.markSynced
	}

	return s
}

// Load restores the persisted list. An empty or unreadable list is replaced
// by the sample todos.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.storage.GetItem(ctx, todosKey)
	if err != nil {
		return fmt.Errorf("read todos: %w", err)
	}

	var doc persistedTodos
	if ok {
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			s.logger.Warn("stored todos unreadable, reseeding", zap.Error(err))
			doc = persistedTodos{}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.todos = doc.State.Todos
	if len(s.todos) == 0 {
		s.todos = sampleTodos()
		return s.persist(ctx)
	}

	return nil
}

func (s *Store) Todos() []Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneTodos(s.todos)
}

func (s *Store) Get(id string) (Todo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.index(id)
	if i < 0 {
		return Todo{}, false
	}

	return s.todos[i], true
}

func (s *Store) Filter(f TodoFilter) []Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneTodos(FilterTodos(s.todos, f))
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ComputeStats(s.todos)
}

func (s *Store) Add(ctx context.Context, in TodoInput) (Todo, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Todo{}, fmt.Errorf("title is required")
	}

	priority := in.Priority
	if !priority.IsValid() {
		priority = PriorityMedium
	}

	now := s.now().UTC()
	todo := Todo{
		ID:          uuid.NewString(),
		Title:       title,
		Description: in.Description,
		Priority:    priority,
		DueDate:     in.DueDate,
		Tags:        append([]string{}, in.Tags...),
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      MockUserID,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.todos = append([]Todo{todo}, s.todos...)
	s.dropSnapshot()

	return todo, s.persist(ctx)
}

func (s *Store) Update(ctx context.Context, id string, patch TodoPatch) (Todo, error) {
	return s.mutate(ctx, id, func(t *Todo) { patch.apply(t) })
}

func (s *Store) Toggle(ctx context.Context, id string) (Todo, error) {
	return s.mutate(ctx, id, func(t *Todo) { t.Completed = !t.Completed })
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return ErrTodoNotFound
	}

	s.todos = slices.Delete(s.todos, i, i+1)
	s.dropSnapshot()

	return s.persist(ctx)
}

// MarkAllDone completes every open todo and returns how many changed.
// It can be reverted with Undo.
func (s *Store) MarkAllDone(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.takeSnapshot()

	now := s.now().UTC()
	changed := 0
	for i := range s.todos {
		if !s.todos[i].Completed {
			s.todos[i].Completed = true
			s.todos[i].UpdatedAt = now
			changed++
		}
	}

	return changed, s.persist(ctx)
}

// ClearCompleted removes completed todos and returns how many went.
// It can be reverted with Undo.
func (s *Store) ClearCompleted(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.takeSnapshot()

	before := len(s.todos)
	s.todos = slices.DeleteFunc(s.todos, func(t Todo) bool { return t.Completed })

	return before - len(s.todos), s.persist(ctx)
}

// Undo restores the list from before the last bulk operation, as long as no
// other change happened since. It reports false when there is nothing to undo.
func (s *Store) Undo(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.undoable {
		return false, nil
	}

	s.todos = s.snapshot
	s.dropSnapshot()

	return true, s.persist(ctx)
}

// SyncToBlockchain queues the todo for network and waits for the job. The
// todo is stamped with the transaction as soon as the ledger accepts it.
func (s *Store) SyncToBlockchain(ctx context.Context, id string, network blockchain.Network) (SyncResult, error) {
	if !network.IsValid() {
		return SyncResult{}, fmt.Errorf("%w: %q", blockchain.ErrUnsupportedNetwork, network)
	}

	if _, ok := s.Get(id); !ok {
		return SyncResult{}, ErrTodoNotFound
	}

	if s.queue == nil {
		return SyncResult{}, fmt.Errorf("sync queue not configured")
	}

	return s.queue.Enqueue(ctx, id, network)
}

func (s *Store) markSynced(ctx context.Context, id string, network blockchain.Network, hash string) error {
	_, err := s.mutate(ctx, id, func(t *Todo) {
		t.BlockchainNetwork = network
		t.TransactionHash = hash
		t.BlockchainAddress = string(network) + "-" + id
	})

	return err
}

func (s *Store) mutate(ctx context.Context, id string, fn func(*Todo)) (Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return Todo{}, ErrTodoNotFound
	}

	fn(&s.todos[i])
	s.todos[i].UpdatedAt = s.now().UTC()
	s.dropSnapshot()

	return s.todos[i], s.persist(ctx)
}

func (s *Store) takeSnapshot() {
	s.snapshot = cloneTodos(s.todos)
	s.undoable = true
}

func (s *Store) dropSnapshot() {
	s.snapshot = nil
	s.undoable = false
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.todos, func(t Todo) bool { return t.ID == id })
}

// persist must be called with mu held.
func (s *Store) persist(ctx context.Context) error {
	var doc persistedTodos
	doc.State.Todos = s.todos
	if doc.State.Todos == nil {
		doc.State.Todos = []Todo{}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	if err := s.storage.SetItem(ctx, todosKey, string(data)); err != nil {
		return fmt.Errorf("write todos: %w", err)
	}

	return nil
}

func cloneTodos(todos []Todo) []Todo {
	out := make([]Todo, len(todos))
	for i, t := range todos {
		t.Tags = append([]string{}, t.Tags...)
		out[i] = t
	}

	return out
}
