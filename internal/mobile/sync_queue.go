package mobile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/mobile/blockchain"
)

const (
	DefaultMaxAttempts  = 3
	DefaultMaxPolls     = 10
	DefaultPollInterval = 2 * time.Second
)

// ErrSyncDeferred is returned when a job is still queued after processing stopped.
var ErrSyncDeferred = errors.New("sync deferred")

type SyncItem struct {
	TodoID  string             `json:"todoId"`
	Network blockchain.Network `json:"network"`
	Attempt int                `json:"attempt"`
}

type SyncStatus string

const (
	SyncConfirmed SyncStatus = "confirmed"
	SyncFailed    SyncStatus = "failed"
	SyncDropped   SyncStatus = "dropped"
	SyncDeferred  SyncStatus = "deferred"
)

type SyncResult struct {
	TodoID  string
	Network blockchain.Network
	Hash    string
	Status  SyncStatus
	Attempt int
	Err     error
}

// ClientFactory returns the ledger client for a network.
type ClientFactory func(network blockchain.Network) (blockchain.Service, error)

func MockClients(opts ...blockchain.Option) ClientFactory {
	return func(network blockchain.Network) (blockchain.Service, error) {
		return blockchain.New(network, opts...)
	}
}

// SyncQueue pushes todos to their ledger one at a time in FIFO order. The
// queue is persisted after every change so pending jobs survive a restart.
type SyncQueue struct {
	mu      sync.Mutex
	storage Storage
	clients ClientFactory
	logger  *zap.Logger

	MaxAttempts  int
	MaxPolls     int
	PollInterval time.Duration
	OnResult     func(SyncResult)

	lookup  func(id string) (Todo, bool)
	created func(ctx context.Context, todoID string, network blockchain.Network, hash string) error
}

func NewSyncQueue(storage Storage, clients ClientFactory, logger *zap.Logger) *SyncQueue {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SyncQueue{
		storage:      storage,
		clients:      clients,
		logger:       logger,
		MaxAttempts:  DefaultMaxAttempts,
		MaxPolls:     DefaultMaxPolls,
		PollInterval: DefaultPollInterval,
	}
}

// Enqueue appends a job, persists the queue and processes it up to and
// including the new job.
func (q *SyncQueue) Enqueue(ctx context.Context, todoID string, network blockchain.Network) (SyncResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	items = append(items, SyncItem{TodoID: todoID, Network: network})
	if err := q.save(ctx, items); err != nil {
		return SyncResult{}, err
	}

	results, err := q.process(ctx, items)

	for i := len(results) - 1; i >= 0; i-- {
		r := results[i]
		if r.TodoID == todoID && r.Network == network && r.Status != SyncDeferred {
			return r, nil
		}
	}

	deferred := SyncResult{TodoID: todoID, Network: network, Status: SyncDeferred, Err: err}
	if err == nil {
		return deferred, ErrSyncDeferred
	}

	return deferred, fmt.Errorf("%w: %w", ErrSyncDeferred, err)
}

// Resume reprocesses whatever is left in the persisted queue.
func (q *SyncQueue) Resume(ctx context.Context) ([]SyncResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return nil, err
	}

	return q.process(ctx, items)
}

func (q *SyncQueue) Pending(ctx context.Context) ([]SyncItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.load(ctx)
}

// process runs jobs from the head until the queue is empty or a job has to be
// retried later. A retried job stays at the head with its attempt count.
func (q *SyncQueue) process(ctx context.Context, items []SyncItem) ([]SyncResult, error) {
	var results []SyncResult

	// The queue is still written after ctx is cancelled.
	persistCtx := context.WithoutCancel(ctx)

	for len(items) > 0 {
		head := &items[0]
		head.Attempt++

		result := q.run(ctx, *head)

		if result.Status == SyncDeferred && ctx.Err() == nil && head.Attempt >= q.MaxAttempts {
			result.Status = SyncDropped
			q.logger.Warn("sync job dropped",
				zap.String("todo_id", head.TodoID),
				zap.String("network", string(head.Network)),
				zap.Int("attempt", head.Attempt),
				zap.Error(result.Err),
			)
		}

		if result.Status == SyncDeferred {
			if err := q.save(persistCtx, items); err != nil {
				return results, err
			}

			q.report(result)
			results = append(results, result)

			return results, result.Err
		}

		items = items[1:]
		if err := q.save(persistCtx, items); err != nil {
			return results, err
		}

		q.report(result)
		results = append(results, result)
	}

	return results, nil
}

func (q *SyncQueue) run(ctx context.Context, item SyncItem) SyncResult {
	result := SyncResult{TodoID: item.TodoID, Network: item.Network, Attempt: item.Attempt}

	todo, ok := q.find(item.TodoID)
	if !ok {
		result.Status = SyncDropped
		result.Err = ErrTodoNotFound
		return result
	}

	client, err := q.clients(item.Network)
	if err != nil {
		result.Status = SyncDropped
		result.Err = err
		return result
	}

	tx, err := client.CreateTodo(ctx, TodoToBlockchainTodo(todo))
	if err != nil {
		result.Status = SyncDeferred
		result.Err = fmt.Errorf("create todo on %s: %w", item.Network, err)
		return result
	}

	result.Hash = tx.Hash

	if q.created != nil {
		if err := q.created(ctx, item.TodoID, item.Network, tx.Hash); err != nil {
			result.Status = SyncDropped
			result.Err = err
			return result
		}
	}

	status, err := q.poll(ctx, client, tx.Hash)
	switch {
	case err != nil:
		result.Status = SyncDeferred
		result.Err = err
	case status == blockchain.TxConfirmed:
		result.Status = SyncConfirmed
	case status == blockchain.TxFailed:
		result.Status = SyncFailed
		result.Err = fmt.Errorf("transaction %s failed", tx.Hash)
	default:
		result.Status = SyncDeferred
		result.Err = fmt.Errorf("transaction %s still pending after %d checks", tx.Hash, q.MaxPolls)
	}

	return result
}

func (q *SyncQueue) poll(ctx context.Context, client blockchain.Service, hash string) (blockchain.TxStatus, error) {
	status := blockchain.TxPending

	for i := 0; i < q.MaxPolls; i++ {
		if i > 0 {
			if err := wait(ctx, q.PollInterval); err != nil {
				return status, err
			}
		}

		var err error
		status, err = client.GetTransactionStatus(ctx, hash)
		if err != nil {
			return status, fmt.Errorf("transaction status: %w", err)
		}

		if status.IsTerminal() {
			return status, nil
		}
	}

	return status, nil
}

func (q *SyncQueue) find(id string) (Todo, bool) {
	if q.lookup == nil {
		return Todo{}, false
	}

	return q.lookup(id)
}

func (q *SyncQueue) report(result SyncResult) {
	q.logger.Info("sync job processed",
		zap.String("todo_id", result.TodoID),
		zap.String("network", string(result.Network)),
		zap.String("status", string(result.Status)),
		zap.Int("attempt", result.Attempt),
	)

	if q.OnResult != nil {
		q.OnResult(result)
	}
}

func (q *SyncQueue) load(ctx context.Context) ([]SyncItem, error) {
	raw, ok, err := q.storage.GetItem(ctx, syncQueueKey)
	if err != nil {
		return nil, fmt.Errorf("read sync queue: %w", err)
	}

	if !ok || raw == "" {
		return []SyncItem{}, nil
	}

	var items []SyncItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		q.logger.Warn("discarding unreadable sync queue", zap.Error(err))
		return []SyncItem{}, nil
	}

	return items, nil
}

func (q *SyncQueue) save(ctx context.Context, items []SyncItem) error {
	if items == nil {
		items = []SyncItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return err
	}

	if err := q.storage.SetItem(ctx, syncQueueKey, string(data)); err != nil {
		return fmt.Errorf("write sync queue: %w", err)
	}

	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
