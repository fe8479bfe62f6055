package mobile

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/mobile/blockchain"
)

type SyncQueueTestSuite struct {
	suite.Suite
	ctx     context.Context
	storage *MemoryStorage
	client  *scriptedClient
	queue   *SyncQueue
	store   *Store
	results []SyncResult
}

func (s *SyncQueueTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = NewMemoryStorage()
	s.client = &scriptedClient{}
	s.results = nil

	s.queue = NewSyncQueue(s.storage, s.client.factory(), nil)
	s.queue.PollInterval = 0
	s.queue.MaxPolls = 3
	s.queue.OnResult = func(r SyncResult) { s.results = append(s.results, r) }

	s.store = NewStore(s.storage, s.queue, nil)
	Expect(s.store.Load(s.ctx)).To(Succeed())
}

func TestSyncQueueTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(SyncQueueTestSuite))
}

func (s *SyncQueueTestSuite) pending() []SyncItem {
	items, err := s.queue.Pending(s.ctx)
	Expect(err).To(BeNil())

	return items
}

func (s *SyncQueueTestSuite) TestConfirmedJobLeavesQueue() {
	s.client.statuses = []blockchain.TxStatus{blockchain.TxPending, blockchain.TxConfirmed}

	result, err := s.queue.Enqueue(s.ctx, "1", blockchain.Solana)
	Expect(err).To(BeNil())
	Expect(result.Status).To(Equal(SyncConfirmed))
	Expect(result.Attempt).To(Equal(1))
	Expect(s.client.polls).To(Equal(2))
	Expect(s.pending()).To(BeEmpty())
	Expect(s.results).To(HaveLen(1))
}

func (s *SyncQueueTestSuite) TestFailedTransactionIsTerminal() {
	s.client.statuses = []blockchain.TxStatus{blockchain.TxFailed}

	result, err := s.queue.Enqueue(s.ctx, "1", blockchain.Solana)
	Expect(err).To(BeNil())
	Expect(result.Status).To(Equal(SyncFailed))
	Expect(result.Err).To(HaveOccurred())
	Expect(s.pending()).To(BeEmpty())
}

func (s *SyncQueueTestSuite) TestRejectedCallStaysAtHeadUntilResume() {
	s.client.createErrs = []error{errLedgerDown}

	result, err := s.queue.Enqueue(s.ctx, "1", blockchain.Polkadot)
	Expect(err).To(MatchError(ErrSyncDeferred))
	Expect(err).To(MatchError(errLedgerDown))
	Expect(result.Status).To(Equal(SyncDeferred))
	Expect(s.pending()).To(Equal([]SyncItem{{TodoID: "1", Network: blockchain.Polkadot, Attempt: 1}}))

	results, err := s.queue.Resume(s.ctx)
	Expect(err).To(BeNil())
	Expect(results).To(HaveLen(1))
	Expect(results[0].Status).To(Equal(SyncConfirmed))
	Expect(results[0].Attempt).To(Equal(2))
	Expect(s.pending()).To(BeEmpty())
}

func (s *SyncQueueTestSuite) TestExhaustedPollsDeferTheJob() {
	s.client.statuses = []blockchain.TxStatus{blockchain.TxPending}

	_, err := s.queue.Enqueue(s.ctx, "1", blockchain.Base)
	Expect(err).To(MatchError(ErrSyncDeferred))
	Expect(s.client.polls).To(Equal(3))
	Expect(s.pending()).To(HaveLen(1))

	todo, _ := s.store.Get("1")
	Expect(todo.TransactionHash).To(Equal("0xhash"))
}

func (s *SyncQueueTestSuite) TestJobIsDroppedAfterMaxAttempts() {
	s.client.createErrs = []error{errLedgerDown, errLedgerDown, errLedgerDown}

	_, err := s.queue.Enqueue(s.ctx, "1", blockchain.Solana)
	Expect(err).To(MatchError(ErrSyncDeferred))

	_, err = s.queue.Resume(s.ctx)
	Expect(err).To(MatchError(errLedgerDown))

	results, err := s.queue.Resume(s.ctx)
	Expect(err).To(BeNil())
	Expect(results).To(HaveLen(1))
	Expect(results[0].Status).To(Equal(SyncDropped))
	Expect(results[0].Attempt).To(Equal(DefaultMaxAttempts))
	Expect(s.pending()).To(BeEmpty())
	Expect(s.client.creates).To(Equal(3))

	statuses := []SyncStatus{}
	for _, r := range s.results {
		statuses = append(statuses, r.Status)
	}
	Expect(statuses).To(Equal([]SyncStatus{SyncDeferred, SyncDeferred, SyncDropped}))
}

func (s *SyncQueueTestSuite) TestBlockedHeadDefersLaterJobs() {
	s.client.createErrs = []error{errLedgerDown}

	_, err := s.queue.Enqueue(s.ctx, "1", blockchain.Solana)
	Expect(err).To(HaveOccurred())

	s.client.createErrs = []error{errLedgerDown}

	_, err = s.queue.Enqueue(s.ctx, "3", blockchain.Solana)
	Expect(err).To(MatchError(ErrSyncDeferred))

	items := s.pending()
	Expect(items).To(HaveLen(2))
	Expect(items[0].TodoID).To(Equal("1"))
	Expect(items[0].Attempt).To(Equal(2))
	Expect(items[1].Attempt).To(Equal(0))

	results, err := s.queue.Resume(s.ctx)
	Expect(err).To(BeNil())
	Expect(results).To(HaveLen(2))
	Expect(results[0].TodoID).To(Equal("1"))
	Expect(results[1].TodoID).To(Equal("3"))
}

func (s *SyncQueueTestSuite) TestDeletedTodoIsDropped() {
	s.client.createErrs = []error{errLedgerDown}

	_, err := s.queue.Enqueue(s.ctx, "1", blockchain.Solana)
	Expect(err).To(HaveOccurred())

	Expect(s.store.Delete(s.ctx, "1")).To(Succeed())

	results, err := s.queue.Resume(s.ctx)
	Expect(err).To(BeNil())
	Expect(results[0].Status).To(Equal(SyncDropped))
	Expect(results[0].Err).To(MatchError(ErrTodoNotFound))
	Expect(s.pending()).To(BeEmpty())
}

func (s *SyncQueueTestSuite) TestCancelledContextKeepsJob() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	s.queue.MaxAttempts = 1
	s.client.createErrs = []error{context.Canceled}

	_, err := s.queue.Enqueue(ctx, "1", blockchain.Solana)
	Expect(err).To(MatchError(context.Canceled))
	Expect(s.pending()).To(HaveLen(1))
}

func (s *SyncQueueTestSuite) TestUnreadableQueueIsDiscarded() {
	Expect(s.storage.SetItem(s.ctx, syncQueueKey, "not json")).To(Succeed())
	Expect(s.pending()).To(BeEmpty())
}

func TestSyncQueue_WithMockLedger(t *testing.T) {
	RegisterTestingT(t)

	ctx := context.Background()
	storage := NewMemoryStorage()

	queue := NewSyncQueue(storage, MockClients(blockchain.WithDelayScale(0)), nil)
	queue.PollInterval = 0
	queue.MaxPolls = 50

	store := NewStore(storage, queue, nil)
	Expect(store.Load(ctx)).To(Succeed())

	result, err := store.SyncToBlockchain(ctx, "1", blockchain.Moonbeam)
	Expect(err).To(BeNil())
	Expect(result.Status).To(Equal(SyncConfirmed))
	Expect(result.Hash).To(HavePrefix("0x"))
	Expect(result.Hash).To(HaveLen(66))

	Expect(store.Todos()).To(HaveLen(3))

	pending, err := queue.Pending(ctx)
	Expect(err).To(BeNil())
	Expect(pending).To(BeEmpty())
}
