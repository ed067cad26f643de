// Package boardui is the terminal front end for the board and finder
// controllers.
package boardui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/careercardinal/jobtracker/internal/board"
	"github.com/careercardinal/jobtracker/internal/finder"
)

type view int

const (
	viewBoard view = iota
	viewFinder
)

type mode int

const (
	modeNormal mode = iota
	modeEdit
	modeAdd
	modeMove
	modeSearch
)

var fieldNames = []string{"Title", "Company", "Date", "Link", "Notes"}

// boardEventMsg carries the result of a board effect back into Update.
type boardEventMsg struct {
	event board.Event
}

// finderChangedMsg is sent whenever the finder state changed, including
// from a debounced search firing in the background.
type finderChangedMsg struct{}

type Model struct {
	ctx           context.Context
	board         *board.Controller
	finder        *finder.Finder
	finderUpdates <-chan struct{}

	keys   keyMap
	help   help.Model
	styles styles

	width  int
	height int
	view   view
	mode   mode

	col        int
	row        int
	editJobID  int64
	moveTarget int
	fields     []textinput.Model
	field      int
	search     textinput.Model
	cursor     int
}

// FinderUpdates returns the channel the model listens on and the finder
// option that feeds it.
func FinderUpdates() (<-chan struct{}, finder.Option) {
	ch := make(chan struct{}, 1)
	return ch, finder.WithOnChange(func(finder.State) {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
}

func New(ctx context.Context, ctrl *board.Controller, f *finder.Finder, updates <-chan struct{}) Model {
	fields := make([]textinput.Model, len(fieldNames))
	for i, name := range fieldNames {
		in := textinput.New()
		in.Prompt = name + ": "
		in.CharLimit = 256
		fields[i] = in
	}
	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "title, company or location"

	return Model{
		ctx:           ctx,
		board:         ctrl,
		finder:        f,
		finderUpdates: updates,
		keys:          defaultKeyMap(),
		help:          help.New(),
		styles:        defaultStyles(),
		fields:        fields,
		search:        search,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.dispatch(board.LoadRequested{}),
		m.finderCmd(func(ctx context.Context) error { return m.finder.Fetch(ctx, "", 1) }),
		waitForFinder(m.finderUpdates),
	)
}

func waitForFinder(updates <-chan struct{}) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return finderChangedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardEventMsg:
		cmd := m.dispatch(msg.event)
		m.clampBoardCursor()
		return m, cmd

	case finderChangedMsg:
		m.clampFinderCursor()
		return m, waitForFinder(m.finderUpdates)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeEdit, modeAdd:
			return m.updateForm(msg)
		case modeMove:
			return m.updateMove(msg)
		case modeSearch:
			return m.updateSearch(msg)
		}
		if m.view == viewFinder {
			return m.updateFinder(msg)
		}
		return m.updateBoard(msg)
	}
	return m, nil
}

// dispatch feeds ev to the controller and turns each resulting effect into
// a command whose result comes back as a boardEventMsg.
func (m Model) dispatch(ev board.Event) tea.Cmd {
	effects := m.board.Dispatch(ev)
	cmds := make([]tea.Cmd, 0, len(effects))
	for _, eff := range effects {
		cmds = append(cmds, func() tea.Msg {
			return boardEventMsg{event: m.board.Perform(m.ctx, eff)}
		})
	}
	return tea.Batch(cmds...)
}

func (m Model) finderCmd(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		_ = fn(m.ctx)
		return nil
	}
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.board.State()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Tab):
		m.view = viewFinder
		return m, nil
	case key.Matches(msg, m.keys.Left):
		m.col = max(m.col-1, 0)
		m.clampBoardCursor()
	case key.Matches(msg, m.keys.Right):
		m.col = min(m.col+1, len(state.Columns)-1)
		m.clampBoardCursor()
	case key.Matches(msg, m.keys.Up):
		m.row = max(m.row-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.row++
		m.clampBoardCursor()
	case key.Matches(msg, m.keys.Reload):
		return m, m.dispatch(board.LoadRequested{})
	case key.Matches(msg, m.keys.Dismiss):
		return m, m.dispatch(board.NoticeDismissed{})
	case key.Matches(msg, m.keys.Add):
		return m.startAdd(state)
	case key.Matches(msg, m.keys.Edit):
		if card, ok := m.selectedCard(state); ok {
			return m.startEdit(card.Job.ID)
		}
	case key.Matches(msg, m.keys.Delete):
		if card, ok := m.selectedCard(state); ok {
			return m, m.dispatch(board.DeleteRequested{JobID: card.Job.ID})
		}
	case key.Matches(msg, m.keys.Move):
		if card, ok := m.selectedCard(state); ok {
			m.mode = modeMove
			m.moveTarget = m.col
			return m, tea.Batch(
				m.dispatch(board.DragStarted{JobID: card.Job.ID}),
				m.dispatch(board.DragOver{Column: state.Columns[m.col].ID}),
			)
		}
	}
	return m, nil
}

func (m Model) startEdit(jobID int64) (tea.Model, tea.Cmd) {
	cmd := m.dispatch(board.EditRequested{JobID: jobID})
	state := m.board.State()
	col, idx, ok := state.Find(jobID)
	if !ok {
		return m, cmd
	}
	m.mode = modeEdit
	m.editJobID = jobID
	m.setFields(col.Cards[idx].Draft)
	focus := m.focusField(0)
	return m, tea.Batch(cmd, focus)
}

func (m Model) startAdd(state board.State) (tea.Model, tea.Cmd) {
	if len(state.Columns) == 0 {
		return m, nil
	}
	col := state.Columns[m.col]
	var cmd tea.Cmd
	if !col.Form.Visible {
		cmd = m.dispatch(board.AddToggled{Column: col.ID})
	}
	m.mode = modeAdd
	m.setFields(col.Form.Draft)
	focus := m.focusField(0)
	return m, tea.Batch(cmd, focus)
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.board.State()
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeNormal
		m.blurFields()
		if m.editJobID != 0 {
			id := m.editJobID
			m.editJobID = 0
			return m, m.dispatch(board.EditCancelled{JobID: id})
		}
		if len(state.Columns) == 0 {
			return m, nil
		}
		return m, m.dispatch(board.AddToggled{Column: state.Columns[m.col].ID})

	case key.Matches(msg, m.keys.Confirm):
		draft := m.draftFromFields()
		m.mode = modeNormal
		m.blurFields()
		if m.editJobID != 0 {
			id := m.editJobID
			m.editJobID = 0
			return m, tea.Batch(
				m.dispatch(board.DraftChanged{JobID: id, Draft: draft}),
				m.dispatch(board.UpdateRequested{JobID: id}),
			)
		}
		column := state.Columns[m.col].ID
		return m, tea.Batch(
			m.dispatch(board.AddDraftChanged{Column: column, Draft: draft}),
			m.dispatch(board.AddSubmitted{Column: column}),
		)

	case key.Matches(msg, m.keys.NextItem):
		cmd := m.focusField((m.field + 1) % len(m.fields))
		return m, cmd
	case key.Matches(msg, m.keys.PrevItem):
		cmd := m.focusField((m.field + len(m.fields) - 1) % len(m.fields))
		return m, cmd
	}

	var cmd tea.Cmd
	m.fields[m.field], cmd = m.fields[m.field].Update(msg)
	return m, cmd
}

func (m Model) updateMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.board.State()
	if state.Drag == nil {
		m.mode = modeNormal
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Right):
		next := m.moveTarget - 1
		if key.Matches(msg, m.keys.Right) {
			next = m.moveTarget + 1
		}
		if next < 0 || next >= len(state.Columns) {
			return m, nil
		}
		cmd := tea.Batch(
			m.dispatch(board.DragLeave{Column: state.Columns[m.moveTarget].ID}),
			m.dispatch(board.DragOver{Column: state.Columns[next].ID}),
		)
		m.moveTarget = next
		return m, cmd
	case key.Matches(msg, m.keys.Confirm):
		m.mode = modeNormal
		target := state.Columns[m.moveTarget].ID
		if target != state.Drag.Source {
			m.col = m.moveTarget
			m.row = len(state.Columns[m.moveTarget].Cards)
		}
		return m, m.dispatch(board.Dropped{Column: target})
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeNormal
		return m, m.dispatch(board.Dropped{Column: state.Drag.Source})
	}
	return m, nil
}

func (m Model) updateFinder(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.finder.State()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Tab):
		// starred listings show up on the next board load
		m.view = viewBoard
		return m, m.dispatch(board.LoadRequested{})
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, max(len(state.Listings)-1, 0))
	case key.Matches(msg, m.keys.Next):
		m.cursor = 0
		return m, m.finderCmd(m.finder.Next)
	case key.Matches(msg, m.keys.Prev):
		m.cursor = 0
		return m, m.finderCmd(m.finder.Prev)
	case key.Matches(msg, m.keys.Reload):
		return m, m.finderCmd(m.finder.Refresh)
	case key.Matches(msg, m.keys.Dismiss):
		m.finder.DismissNotice()
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Star):
		if m.cursor < len(state.Listings) {
			listing := state.Listings[m.cursor]
			return m, m.finderCmd(func(ctx context.Context) error {
				return m.finder.Star(ctx, listing)
			})
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Confirm) || key.Matches(msg, m.keys.Cancel) {
		m.mode = modeNormal
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	term := m.search.Value()
	if term == before {
		return m, cmd
	}
	m.cursor = 0
	if strings.TrimSpace(term) == "" {
		return m, tea.Batch(cmd, m.finderCmd(func(ctx context.Context) error {
			m.finder.Search(ctx, term)
			return nil
		}))
	}
	m.finder.Search(m.ctx, term)
	return m, cmd
}

func (m Model) selectedCard(state board.State) (board.Card, bool) {
	if m.col >= len(state.Columns) {
		return board.Card{}, false
	}
	cards := state.Columns[m.col].Cards
	if m.row < 0 || m.row >= len(cards) {
		return board.Card{}, false
	}
	return cards[m.row], true
}

func (m *Model) clampBoardCursor() {
	state := m.board.State()
	if len(state.Columns) == 0 {
		m.col, m.row = 0, 0
		return
	}
	m.col = min(max(m.col, 0), len(state.Columns)-1)
	m.row = min(m.row, max(len(state.Columns[m.col].Cards)-1, 0))
	m.row = max(m.row, 0)
}

func (m *Model) clampFinderCursor() {
	n := len(m.finder.State().Listings)
	m.cursor = min(m.cursor, max(n-1, 0))
}

func (m *Model) setFields(d board.Draft) {
	values := []string{d.Title, d.Company, d.Date, d.Link, d.Notes}
	for i := range m.fields {
		m.fields[i].SetValue(values[i])
	}
}

func (m Model) draftFromFields() board.Draft {
	return board.Draft{
		Title:   m.fields[0].Value(),
		Company: m.fields[1].Value(),
		Date:    m.fields[2].Value(),
		Link:    m.fields[3].Value(),
		Notes:   m.fields[4].Value(),
	}
}

func (m *Model) focusField(i int) tea.Cmd {
	m.blurFields()
	m.field = i
	return m.fields[i].Focus()
}

func (m *Model) blurFields() {
	for i := range m.fields {
		m.fields[i].Blur()
	}
}
