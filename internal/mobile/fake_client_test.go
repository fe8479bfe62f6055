package mobile

import (
	"context"
	"errors"
	"sync"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/mobile/blockchain"
)

var errLedgerDown = errors.New("ledger unavailable")

// scriptedClient answers CreateTodo with the scripted errors in order, then
// reports statuses from the scripted list. The last status repeats.
type scriptedClient struct {
	network    blockchain.Network
	createErrs []error
	statuses   []blockchain.TxStatus

	mu      sync.Mutex
	creates int
	polls   int
	created []blockchain.BlockchainTodo
}

func (c *scriptedClient) factory() ClientFactory {
	return func(network blockchain.Network) (blockchain.Service, error) {
		c.network = network
		return c, nil
	}
}

func (c *scriptedClient) Network() blockchain.Network { return c.network }

func (c *scriptedClient) CreateTodo(_ context.Context, todo blockchain.BlockchainTodo) (blockchain.TransactionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.creates++
	if len(c.createErrs) > 0 {
		err := c.createErrs[0]
		c.createErrs = c.createErrs[1:]
		if err != nil {
			return blockchain.TransactionResult{}, err
		}
	}

	c.created = append(c.created, todo)

	return blockchain.TransactionResult{Hash: "0xhash", Status: blockchain.TxPending}, nil
}

func (c *scriptedClient) UpdateTodo(context.Context, string, blockchain.BlockchainTodo) (blockchain.TransactionResult, error) {
	return blockchain.TransactionResult{}, nil
}

func (c *scriptedClient) DeleteTodo(context.Context, string) (blockchain.TransactionResult, error) {
	return blockchain.TransactionResult{}, nil
}

func (c *scriptedClient) GetTodo(context.Context, string) (*blockchain.BlockchainTodo, error) {
	return nil, nil
}

func (c *scriptedClient) GetUserTodos(context.Context, string) ([]blockchain.BlockchainTodo, error) {
	return nil, nil
}

func (c *scriptedClient) GetTransactionStatus(context.Context, string) (blockchain.TxStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.polls++
	if len(c.statuses) == 0 {
		return blockchain.TxConfirmed, nil
	}

	status := c.statuses[0]
	if len(c.statuses) > 1 {
		c.statuses = c.statuses[1:]
	}

	return status, nil
}

func (c *scriptedClient) WaitForTransaction(_ context.Context, hash string) (blockchain.TransactionResult, error) {
	return blockchain.TransactionResult{Hash: hash, Status: blockchain.TxConfirmed}, nil
}
