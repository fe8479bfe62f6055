package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/mobile"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/mobile/blockchain"
)

type mode int

const (
	browsing mode = iota
	adding
	editing
	searching
)

type todoItem struct {
	todo mobile.Todo
}

func (i todoItem) FilterValue() string { return i.todo.Title }

type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(todoItem)
	if !ok {
		return
	}

	t := it.todo

	box := mutedStyle.Render(boxUnchecked)
	title := t.Title
	if t.Completed {
		box = successStyle.Render(boxChecked)
		title = doneStyle.Render(title)
	}

	line := fmt.Sprintf("%s %s %s", box, title, priorityStyles[string(t.Priority)].Render(string(t.Priority)))

	if len(t.Tags) > 0 {
		line += " " + mutedStyle.Render("#"+strings.Join(t.Tags, " #"))
	}

	if t.IsSynced() {
		line += " " + accentStyle.Render("⛓ "+string(t.BlockchainNetwork))
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}

	fmt.Fprintln(w, prefix+line)
}

type syncDoneMsg struct {
	result mobile.SyncResult
	err    error
}

// Model is the bubbletea program over a mobile.Store.
type Model struct {
	ctx    context.Context
	store  *mobile.Store
	wallet *mobile.Wallet
	keys   keyMap

	list    list.Model
	input   textinput.Model
	spinner spinner.Model

	mode    mode
	filter  mobile.TodoFilter
	editID  string
	syncing bool

	status    string
	statusErr bool
}

func New(ctx context.Context, store *mobile.Store, wallet *mobile.Wallet) Model {
	keys := defaultKeyMap()

	l := list.New(nil, itemDelegate{}, 80, 20)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.KeyMap.Quit.SetEnabled(false)
	l.AdditionalShortHelpKeys = keys.short
	l.AdditionalFullHelpKeys = keys.full

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := Model{
		ctx:     ctx,
		store:   store,
		wallet:  wallet,
		keys:    keys,
		list:    l,
		input:   ti,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		filter:  mobile.TodoFilter{Status: mobile.StatusAll, Priority: mobile.PriorityAll},
	}
	m.refresh()

	return m
}

// Run starts the program on the alternate screen and blocks until quit.
func Run(ctx context.Context, store *mobile.Store, wallet *mobile.Wallet) error {
	_, err := tea.NewProgram(New(ctx, store, wallet), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case syncDoneMsg:
		m.syncing = false
		if msg.err != nil {
			m.fail("sync failed: " + msg.err.Error())
		} else {
			m.info(fmt.Sprintf("synced to %s (%s)", msg.result.Network, msg.result.Status))
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.syncing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.mode != browsing {
			return m.updateInput(msg)
		}

		if handled, cmd := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return true, tea.Quit

	case key.Matches(msg, m.keys.Add):
		m.startInput(adding, "", "New todo: title !priority #tag")

	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.selected(); ok {
			m.editID = t.ID
			m.startInput(editing, formatInput(t), "Edit todo")
		}

	case key.Matches(msg, m.keys.Search):
		m.startInput(searching, m.filter.Search, "Search title, description or #tag")

	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selected(); ok {
			_, err := m.store.Toggle(m.ctx, t.ID)
			m.report(err, "")
		}

	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			m.report(m.store.Delete(m.ctx, t.ID), "deleted "+t.Title)
		}

	case key.Matches(msg, m.keys.MarkAll):
		n, err := m.store.MarkAllDone(m.ctx)
		m.report(err, fmt.Sprintf("marked %d done (u to undo)", n))

	case key.Matches(msg, m.keys.Clear):
		n, err := m.store.ClearCompleted(m.ctx)
		m.report(err, fmt.Sprintf("cleared %d completed (u to undo)", n))

	case key.Matches(msg, m.keys.Undo):
		undone, err := m.store.Undo(m.ctx)
		switch {
		case err != nil:
			m.fail(err.Error())
		case undone:
			m.info("undone")
		default:
			m.info("nothing to undo")
		}

	case key.Matches(msg, m.keys.Status):
		m.filter.Status = m.filter.Status.Next()

	case key.Matches(msg, m.keys.Priority):
		m.filter.Priority = mobile.NextPriorityFilter(m.filter.Priority)

	case key.Matches(msg, m.keys.Wallet):
		m.cycleWallet()

	case key.Matches(msg, m.keys.Disconnect):
		m.report(m.wallet.Disconnect(m.ctx), "wallet disconnected")

	case key.Matches(msg, m.keys.Sync):
		return true, m.startSync()

	default:
		return false, nil
	}

	m.refresh()

	return true, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.stopInput()
		return m, nil

	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())

		switch m.mode {
		case adding:
			in := parseInput(value)
			if in.Title == "" {
				m.fail("title cannot be empty")
				return m, nil
			}
			_, err := m.store.Add(m.ctx, in)
			m.report(err, "added "+in.Title)

		case editing:
			in := parseInput(value)
			if in.Title == "" {
				m.fail("title cannot be empty")
				return m, nil
			}
			patch := mobile.TodoPatch{Title: &in.Title, Tags: in.Tags}
			if patch.Tags == nil {
				patch.Tags = []string{}
			}
			if in.Priority != "" {
				patch.Priority = &in.Priority
			}
			_, err := m.store.Update(m.ctx, m.editID, patch)
			m.report(err, "updated "+in.Title)

		case searching:
			m.filter.Search = value
		}

		m.stopInput()
		m.refresh()

		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m *Model) startInput(md mode, value, placeholder string) {
	m.mode = md
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Placeholder = placeholder
	m.input.Focus()
}

func (m *Model) stopInput() {
	m.mode = browsing
	m.editID = ""
	m.input.SetValue("")
	m.input.Blur()
}

func (m *Model) cycleWallet() {
	account, ok := m.wallet.Account()

	var err error
	if !ok {
		account, err = m.wallet.Connect(m.ctx, blockchain.Networks()[0])
	} else {
		account, err = m.wallet.SwitchNetwork(m.ctx, account.Network.Next())
	}

	m.report(err, "wallet on "+string(account.Network))
}

func (m *Model) startSync() tea.Cmd {
	if m.syncing {
		return nil
	}

	t, ok := m.selected()
	if !ok {
		return nil
	}

	account, ok := m.wallet.Account()
	if !ok {
		m.fail("connect a wallet first (w)")
		return nil
	}

	m.syncing = true
	m.info(fmt.Sprintf("syncing %q to %s", t.Title, account.Network))

	ctx, store, id, network := m.ctx, m.store, t.ID, account.Network

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		result, err := store.SyncToBlockchain(ctx, id, network)
		return syncDoneMsg{result: result, err: err}
	})
}

func (m *Model) selected() (mobile.Todo, bool) {
	it, ok := m.list.SelectedItem().(todoItem)
	if !ok {
		return mobile.Todo{}, false
	}

	return it.todo, true
}

func (m *Model) refresh() {
	todos := m.store.Filter(m.filter)

	items := make([]list.Item, 0, len(todos))
	for _, t := range todos {
		items = append(items, todoItem{todo: t})
	}

	index := m.list.Index()
	m.list.SetItems(items)

	if index >= len(items) {
		index = len(items) - 1
	}
	if index >= 0 {
		m.list.Select(index)
	}
}

func (m *Model) report(err error, success string) {
	if err != nil {
		m.fail(err.Error())
		return
	}

	if success != "" {
		m.info(success)
	}
}

func (m *Model) info(msg string) {
	m.status = msg
	m.statusErr = false
}

func (m *Model) fail(msg string) {
	m.status = msg
	m.statusErr = true
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.list.View())

	if m.mode != browsing {
		title := map[mode]string{adding: "Add todo", editing: "Edit todo", searching: "Search"}[m.mode]
		b.WriteString("\n")
		b.WriteString(panelStyle.Render(title + "\n" + m.input.View()))
	}

	if m.status != "" || m.syncing {
		b.WriteString("\n")
		if m.syncing {
			b.WriteString(m.spinner.View() + " ")
		}
		if m.statusErr {
			b.WriteString(errorStyle.Render("✖ " + m.status))
		} else {
			b.WriteString(mutedStyle.Render(m.status))
		}
	}

	return panelStyle.Render(b.String())
}

func (m Model) header() string {
	stats := m.store.Stats()

	counts := fmt.Sprintf("%s   %s %d  %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), stats.Completed,
		pendingStyle.Render("•"), stats.Active,
		accentStyle.Render("⛓"), stats.Synced,
		accentStyle.Render("Total"), stats.Total,
	)

	filters := fmt.Sprintf("status:%s priority:%s", m.filter.Status, m.filter.Priority)
	if m.filter.Search != "" {
		filters += fmt.Sprintf(" search:%q", m.filter.Search)
	}

	wallet := "wallet: not connected"
	if account, ok := m.wallet.Account(); ok {
		address := account.Address
		if len(address) > 10 {
			address = address[:10] + "…"
		}
		wallet = fmt.Sprintf("wallet: %s %s (%s)", account.Network, address, account.Balance)
	}

	return counts + "\n" + mutedStyle.Render(filters+"  "+wallet)
}
