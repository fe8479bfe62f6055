package tui

import (
	"context"
	"math/rand/v2"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/mobile"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/mobile/blockchain"
)

type ModelTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *mobile.Store
	wallet *mobile.Wallet
	model  Model
}

func (s *ModelTestSuite) SetupTest() {
	s.ctx = context.Background()
	storage := mobile.NewMemoryStorage()

	queue := mobile.NewSyncQueue(storage, mobile.MockClients(blockchain.WithDelayScale(0)), nil)
	queue.PollInterval = 0
	queue.MaxPolls = 50

	s.store = mobile.NewStore(storage, queue, nil)
	Expect(s.store.Load(s.ctx)).To(Succeed())

	s.wallet = mobile.NewWallet(storage, rand.New(rand.NewPCG(3, 4)))
	s.model = New(s.ctx, s.store, s.wallet)
}

func TestModelTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(ModelTestSuite))
}

func (s *ModelTestSuite) send(msg tea.Msg) tea.Cmd {
	next, cmd := s.model.Update(msg)
	s.model = next.(Model)

	return cmd
}

func (s *ModelTestSuite) press(keys string) tea.Cmd {
	if keys == " " {
		return s.send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	}

	return s.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
}

func (s *ModelTestSuite) enter() {
	s.send(tea.KeyMsg{Type: tea.KeyEnter})
}

// drain runs cmd and every command it batches, feeding syncDoneMsg back into the model.
func (s *ModelTestSuite) drain(cmd tea.Cmd) {
	if cmd == nil {
		return
	}

	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			s.drain(c)
		}
	case syncDoneMsg:
		s.send(msg)
	}
}

func (s *ModelTestSuite) TestInitialListShowsSeededTodos() {
	Expect(s.model.list.Items()).To(HaveLen(3))
	Expect(s.model.View()).To(ContainSubstring("Setup mobile wallet"))
	Expect(s.model.View()).To(ContainSubstring("wallet: not connected"))
}

func (s *ModelTestSuite) TestAddTodo() {
	s.press("a")
	Expect(s.model.mode).To(Equal(adding))

	s.press("Buy milk !high #home")
	s.enter()

	Expect(s.model.mode).To(Equal(browsing))

	todos := s.store.Todos()
	Expect(todos).To(HaveLen(4))
	Expect(todos[0].Title).To(Equal("Buy milk"))
	Expect(todos[0].Priority).To(Equal(mobile.PriorityHigh))
	Expect(todos[0].Tags).To(Equal([]string{"home"}))
}

func (s *ModelTestSuite) TestAddRejectsEmptyTitle() {
	s.press("a")
	s.press("#onlytag")
	s.enter()

	Expect(s.model.mode).To(Equal(adding))
	Expect(s.model.statusErr).To(BeTrue())
	Expect(s.store.Todos()).To(HaveLen(3))
}

func (s *ModelTestSuite) TestEditSelectedTodo() {
	s.press("e")
	Expect(s.model.mode).To(Equal(editing))
	Expect(s.model.input.Value()).To(Equal("Setup mobile wallet !high #blockchain #mobile"))

	s.model.input.SetValue("Setup wallet !low")
	s.enter()

	todo, ok := s.store.Get("1")
	Expect(ok).To(BeTrue())
	Expect(todo.Title).To(Equal("Setup wallet"))
	Expect(todo.Priority).To(Equal(mobile.PriorityLow))
	Expect(todo.Tags).To(BeEmpty())
}

func (s *ModelTestSuite) TestToggleAndDelete() {
	s.press(" ")

	todo, _ := s.store.Get("1")
	Expect(todo.Completed).To(BeTrue())

	s.press("d")
	Expect(s.store.Todos()).To(HaveLen(2))
	Expect(s.model.list.Items()).To(HaveLen(2))
}

func (s *ModelTestSuite) TestSearchAndFilters() {
	s.press("/")
	s.press("#ui")
	s.enter()

	Expect(s.model.list.Items()).To(HaveLen(1))

	s.model.filter.Search = ""
	s.press("f")
	Expect(s.model.filter.Status).To(Equal(mobile.StatusOpen))
	Expect(s.model.list.Items()).To(HaveLen(2))

	s.press("p")
	Expect(s.model.filter.Priority).To(Equal(mobile.PriorityHigh))
	Expect(s.model.list.Items()).To(HaveLen(1))
}

func (s *ModelTestSuite) TestMarkAllDoneAndUndo() {
	s.press("m")
	Expect(s.store.Stats().Completed).To(Equal(3))

	s.press("u")
	Expect(s.store.Stats().Completed).To(Equal(1))
	Expect(s.model.status).To(Equal("undone"))

	s.press("u")
	Expect(s.model.status).To(Equal("nothing to undo"))
}

func (s *ModelTestSuite) TestSyncNeedsWallet() {
	cmd := s.press("s")

	Expect(cmd).To(BeNil())
	Expect(s.model.statusErr).To(BeTrue())
	Expect(s.model.status).To(ContainSubstring("connect a wallet"))
}

func (s *ModelTestSuite) TestWalletCycleAndSync() {
	s.press("w")
	account, ok := s.wallet.Account()
	Expect(ok).To(BeTrue())
	Expect(account.Network).To(Equal(blockchain.Solana))

	s.press("w")
	account, _ = s.wallet.Account()
	Expect(account.Network).To(Equal(blockchain.Polkadot))

	cmd := s.press("s")
	Expect(cmd).NotTo(BeNil())
	Expect(s.model.syncing).To(BeTrue())

	s.drain(cmd)

	Expect(s.model.syncing).To(BeFalse())
	Expect(s.model.statusErr).To(BeFalse())

	todo, _ := s.store.Get("1")
	Expect(todo.BlockchainNetwork).To(Equal(blockchain.Polkadot))
	Expect(todo.BlockchainAddress).To(Equal("polkadot-1"))

	s.press("W")
	Expect(s.wallet.IsConnected()).To(BeFalse())
}

func (s *ModelTestSuite) TestQuit() {
	cmd := s.press("q")
	Expect(cmd).NotTo(BeNil())
	Expect(cmd()).To(Equal(tea.Quit()))
}

func TestParseInput(t *testing.T) {
	RegisterTestingT(t)

	in := parseInput("  Pay rent !urgent !high #home #bills ")
	Expect(in.Title).To(Equal("Pay rent !urgent"))
	Expect(in.Priority).To(Equal(mobile.PriorityHigh))
	Expect(in.Tags).To(Equal([]string{"home", "bills"}))

	Expect(formatInput(mobile.Todo{Title: "x", Priority: mobile.PriorityLow, Tags: []string{"a"}})).To(Equal("x !low #a"))
}
