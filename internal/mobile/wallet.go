package mobile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/mobile/blockchain"
)

var ErrWalletNotConnected = errors.New("no wallet connected")

type Account struct {
	Address string             `json:"address"`
	Network blockchain.Network `json:"network"`
	Balance string             `json:"balance,omitempty"`
}

// Wallet is a mock wallet connection persisted in Storage.
type Wallet struct {
	mu      sync.RWMutex
	storage Storage
	account *Account
	rnd     *rand.Rand
}

// NewWallet uses rnd for addresses and balances; nil seeds from the clock.
func NewWallet(storage Storage, rnd *rand.Rand) *Wallet {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}

	return &Wallet{storage: storage, rnd: rnd}
}

func (w *Wallet) Account() (Account, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.account == nil {
		return Account{}, false
	}

	return *w.account, true
}

func (w *Wallet) IsConnected() bool {
	_, ok := w.Account()
	return ok
}

func (w *Wallet) Connect(ctx context.Context, network blockchain.Network) (Account, error) {
	if !network.IsValid() {
		return Account{}, fmt.Errorf("%w: %q", blockchain.ErrUnsupportedNetwork, network)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	account := w.newAccount(network)

	if err := w.storage.SetItem(ctx, walletConnectedKey, "true"); err != nil {
		return Account{}, err
	}

	if err := w.save(ctx, account); err != nil {
		return Account{}, err
	}

	w.account = &account

	return account, nil
}

func (w *Wallet) Disconnect(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.account = nil

	return w.clear(ctx)
}

func (w *Wallet) SwitchNetwork(ctx context.Context, network blockchain.Network) (Account, error) {
	if !network.IsValid() {
		return Account{}, fmt.Errorf("%w: %q", blockchain.ErrUnsupportedNetwork, network)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.account == nil {
		return Account{}, ErrWalletNotConnected
	}

	account := w.newAccount(network)
	if err := w.save(ctx, account); err != nil {
		return Account{}, err
	}

	w.account = &account

	return account, nil
}

// Restore reconnects from storage. A half-written or corrupt record is
// removed and reported as not connected.
func (w *Wallet) Restore(ctx context.Context) (Account, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	connected, okConnected, err := w.storage.GetItem(ctx, walletConnectedKey)
	if err != nil {
		return Account{}, false, err
	}

	raw, okAccount, err := w.storage.GetItem(ctx, walletAccountKey)
	if err != nil {
		return Account{}, false, err
	}

	if !okConnected && !okAccount {
		return Account{}, false, nil
	}

	var account Account
	if !okConnected || !okAccount || connected != "true" ||
		json.Unmarshal([]byte(raw), &account) != nil || !account.Network.IsValid() {
		w.account = nil
		return Account{}, false, w.clear(ctx)
	}

	w.account = &account

	return account, true, nil
}

func (w *Wallet) SignMessage(_ context.Context, _ string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.account == nil {
		return "", ErrWalletNotConnected
	}

	return "0x" + w.hex(64), nil
}

func (w *Wallet) SendTransaction(_ context.Context, _, _ string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.account == nil {
		return "", ErrWalletNotConnected
	}

	return "0x" + w.hex(64), nil
}

var addressPrefixes = map[blockchain.Network]string{
	blockchain.Solana:   "1A1z",
	blockchain.Polkadot: "5G",
}

// newAccount must be called with mu held.
func (w *Wallet) newAccount(network blockchain.Network) Account {
	prefix, ok := addressPrefixes[network]
	if !ok {
		prefix = "0x"
	}

	return Account{
		Address: prefix + w.hex(40),
		Network: network,
		Balance: fmt.Sprintf("%.4f", w.rnd.Float64()*100),
	}
}

func (w *Wallet) hex(n int) string {
	var b strings.Builder
	for b.Len() < n {
		fmt.Fprintf(&b, "%016x", w.rnd.Uint64())
	}

	return b.String()[:n]
}

func (w *Wallet) save(ctx context.Context, account Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	return w.storage.SetItem(ctx, walletAccountKey, string(data))
}

func (w *Wallet) clear(ctx context.Context) error {
	return errors.Join(
		w.storage.RemoveItem(ctx, walletConnectedKey),
		w.storage.RemoveItem(ctx, walletAccountKey),
	)
}
