package blockchain

import (
	"context"
	"math/rand/v2"
	"regexp"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"
)

var hexHash = regexp.MustCompile(`^[0-9a-f]{64}$`)

type MockServiceTestSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *MockServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
}

func TestMockServiceTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(MockServiceTestSuite))
}

func (s *MockServiceTestSuite) newService(network Network) *MockService {
	svc, err := New(network, WithDelayScale(0), WithRand(rand.New(rand.NewPCG(1, 2))))
	Expect(err).To(BeNil())

	return svc
}

func (s *MockServiceTestSuite) TestUnsupportedNetwork() {
	_, err := New("ethereum")
	Expect(err).To(MatchError(ErrUnsupportedNetwork))
}

func (s *MockServiceTestSuite) TestHashFormatPerNetwork() {
	for _, network := range Networks() {
		result, err := s.newService(network).CreateTodo(s.ctx, BlockchainTodo{Title: "x"})
		Expect(err).To(BeNil())
		Expect(result.Status).To(Equal(TxPending))

		hash := result.Hash
		if network.IsEVM() {
			Expect(hash).To(HavePrefix("0x"), string(network))
			hash = hash[2:]
		}

		Expect(hash).To(MatchRegexp(hexHash.String()), string(network))
	}
}

func (s *MockServiceTestSuite) TestUpdateAndDeleteSubmitTransactions() {
	svc := s.newService(Polygon)

	updated, err := svc.UpdateTodo(s.ctx, "1", BlockchainTodo{Completed: true})
	Expect(err).To(BeNil())

	deleted, err := svc.DeleteTodo(s.ctx, "1")
	Expect(err).To(BeNil())

	Expect(updated.Hash).NotTo(Equal(deleted.Hash))
}

func (s *MockServiceTestSuite) TestReads() {
	svc := s.newService(Solana)

	todo, err := svc.GetTodo(s.ctx, "1")
	Expect(err).To(BeNil())
	Expect(todo).To(BeNil())

	todos, err := svc.GetUserTodos(s.ctx, "addr")
	Expect(err).To(BeNil())
	Expect(todos).To(BeEmpty())
}

func (s *MockServiceTestSuite) TestTransactionStatusIsPendingOrConfirmed() {
	svc := s.newService(Base)

	seen := map[TxStatus]int{}
	for range 200 {
		status, err := svc.GetTransactionStatus(s.ctx, "0xabc")
		Expect(err).To(BeNil())
		seen[status]++
	}

	Expect(seen).To(HaveLen(2))
	Expect(seen[TxConfirmed]).To(BeNumerically(">", seen[TxPending]))
}

func (s *MockServiceTestSuite) TestWaitForTransaction() {
	result, err := s.newService(Moonbeam).WaitForTransaction(s.ctx, "0xabc")
	Expect(err).To(BeNil())
	Expect(result.Hash).To(Equal("0xabc"))
	Expect(result.Status).To(Equal(TxConfirmed))
	Expect(result.BlockNumber).To(BeNumerically("<", 1_000_000))
	Expect(result.GasUsed).To(BeNumerically("<", 50_000))
}

func (s *MockServiceTestSuite) TestCancelledContextAbortsDelay() {
	svc, err := New(Polygon)
	Expect(err).To(BeNil())

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	start := time.Now()
	_, err = svc.CreateTodo(ctx, BlockchainTodo{})
	Expect(err).To(MatchError(context.Canceled))
	Expect(time.Since(start)).To(BeNumerically("<", time.Second))
}

func TestNetwork(t *testing.T) {
	RegisterTestingT(t)

	Expect(Polygon.IsEVM()).To(BeTrue())
	Expect(Solana.IsEVM()).To(BeFalse())
	Expect(Network("tron").IsValid()).To(BeFalse())
	Expect(Base.Next()).To(Equal(Solana))
	Expect(Solana.Next()).To(Equal(Polkadot))
}
