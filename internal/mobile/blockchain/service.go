package blockchain

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxConfirmed TxStatus = "confirmed"
	TxFailed    TxStatus = "failed"
)

func (s TxStatus) IsTerminal() bool {
	return s == TxConfirmed || s == TxFailed
}

// BlockchainTodo is the on-chain shape of a todo. Times are unix seconds.
type BlockchainTodo struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Completed   bool     `json:"completed"`
	Priority    string   `json:"priority"`
	DueDate     *int64   `json:"dueDate,omitempty"`
	Tags        []string `json:"tags"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
	Owner       string   `json:"owner,omitempty"`
}

type TransactionResult struct {
	Hash        string   `json:"hash"`
	BlockNumber int64    `json:"blockNumber,omitempty"`
	GasUsed     int64    `json:"gasUsed,omitempty"`
	Status      TxStatus `json:"status"`
}

type Service interface {
	Network() Network
	CreateTodo(ctx context.Context, todo BlockchainTodo) (TransactionResult, error)
	UpdateTodo(ctx context.Context, id string, updates BlockchainTodo) (TransactionResult, error)
	DeleteTodo(ctx context.Context, id string) (TransactionResult, error)
	GetTodo(ctx context.Context, id string) (*BlockchainTodo, error)
	GetUserTodos(ctx context.Context, address string) ([]BlockchainTodo, error)
	GetTransactionStatus(ctx context.Context, hash string) (TxStatus, error)
	WaitForTransaction(ctx context.Context, hash string) (TransactionResult, error)
}

const (
	defaultDelay     = 1000
	statusCheckDelay = 500
	confirmDelay     = 3000
)

// MockService simulates a ledger client. Every call sleeps for the network's
// latency and then succeeds; transactions confirm with 70% probability per
// status check.
type MockService struct {
	network Network
	delays  delays
	scale   float64

	mu  sync.Mutex
	rnd *rand.Rand
}

type Option func(*MockService)

// WithDelayScale multiplies every simulated latency. Zero disables sleeping.
func WithDelayScale(scale float64) Option {
	return func(s *MockService) {
		if scale >= 0 {
			s.scale = scale
		}
	}
}

func WithRand(rnd *rand.Rand) Option {
	return func(s *MockService) {
		if rnd != nil {
			s.rnd = rnd
		}
	}
}

func New(network Network, opts ...Option) (*MockService, error) {
	d, ok := networkDelays[network]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedNetwork, network)
	}

	s := &MockService{
		network: network,
		delays:  d,
		scale:   1,
		rnd:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *MockService) Network() Network {
	return s.network
}

func (s *MockService) CreateTodo(ctx context.Context, _ BlockchainTodo) (TransactionResult, error) {
	return s.submit(ctx, s.delays.create)
}

func (s *MockService) UpdateTodo(ctx context.Context, _ string, _ BlockchainTodo) (TransactionResult, error) {
	return s.submit(ctx, s.delays.update)
}

func (s *MockService) DeleteTodo(ctx context.Context, _ string) (TransactionResult, error) {
	return s.submit(ctx, s.delays.delete)
}

func (s *MockService) GetTodo(ctx context.Context, _ string) (*BlockchainTodo, error) {
	if err := s.sleep(ctx, defaultDelay); err != nil {
		return nil, err
	}

	return nil, nil
}

func (s *MockService) GetUserTodos(ctx context.Context, _ string) ([]BlockchainTodo, error) {
	if err := s.sleep(ctx, defaultDelay); err != nil {
		return nil, err
	}

	return []BlockchainTodo{}, nil
}

func (s *MockService) GetTransactionStatus(ctx context.Context, _ string) (TxStatus, error) {
	if err := s.sleep(ctx, statusCheckDelay); err != nil {
		return "", err
	}

	if s.float() > 0.3 {
		return TxConfirmed, nil
	}

	return TxPending, nil
}

func (s *MockService) WaitForTransaction(ctx context.Context, hash string) (TransactionResult, error) {
	if err := s.sleep(ctx, confirmDelay); err != nil {
		return TransactionResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return TransactionResult{
		Hash:        hash,
		BlockNumber: s.rnd.Int64N(1_000_000),
		GasUsed:     s.rnd.Int64N(50_000),
		Status:      TxConfirmed,
	}, nil
}

func (s *MockService) submit(ctx context.Context, delay int) (TransactionResult, error) {
	if err := s.sleep(ctx, delay); err != nil {
		return TransactionResult{}, err
	}

	return TransactionResult{Hash: s.hash(), Status: TxPending}, nil
}

// hash returns 64 hex characters, prefixed with 0x on EVM networks.
func (s *MockService) hash() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	if s.network.IsEVM() {
		b.WriteString("0x")
	}

	for range 4 {
		fmt.Fprintf(&b, "%016x", s.rnd.Uint64())
	}

	return b.String()
}

func (s *MockService) float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rnd.Float64()
}

func (s *MockService) sleep(ctx context.Context, ms int) error {
	d := time.Duration(float64(ms)*s.scale) * time.Millisecond
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
