package boardui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/careercardinal/jobtracker/internal/board"
	"github.com/careercardinal/jobtracker/internal/finder"
	"github.com/careercardinal/jobtracker/internal/tracker"
)

const minColumnWidth = 18

type styles struct {
	tab       lipgloss.Style
	activeTab lipgloss.Style
	column    lipgloss.Style
	hover     lipgloss.Style
	title     lipgloss.Style
	card      lipgloss.Style
	selected  lipgloss.Style
	muted     lipgloss.Style
	notice    lipgloss.Style
	warning   lipgloss.Style
	form      lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		tab:       lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("245")),
		activeTab: lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(lipgloss.Color("212")).Underline(true),
		column:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
		hover:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("212")).Padding(0, 1),
		title:     lipgloss.NewStyle().Bold(true),
		card:      lipgloss.NewStyle(),
		selected:  lipgloss.NewStyle().Reverse(true),
		muted:     lipgloss.NewStyle().Faint(true),
		notice:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		form:      lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1),
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	if m.view == viewFinder {
		b.WriteString(m.renderFinder(m.finder.State()))
	} else {
		b.WriteString(m.renderBoard(m.board.State()))
	}
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderTabs() string {
	boardTab, finderTab := m.styles.activeTab, m.styles.tab
	if m.view == viewFinder {
		boardTab, finderTab = m.styles.tab, m.styles.activeTab
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		boardTab.Render("Board"),
		finderTab.Render("Job Finder"),
	)
}

func (m Model) renderBoard(s board.State) string {
	if s.Loading && len(s.Jobs()) == 0 {
		return m.styles.muted.Render("Loading jobs...")
	}

	width := minColumnWidth
	if n := len(s.Columns); n > 0 && m.width > 0 {
		width = max(m.width/n-4, minColumnWidth)
	}

	cols := make([]string, 0, len(s.Columns))
	for i, col := range s.Columns {
		cols = append(cols, m.renderColumn(col, i, width))
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	b.WriteString("\n")

	if m.mode == modeEdit || m.mode == modeAdd {
		b.WriteString(m.renderForm())
		b.WriteString("\n")
	}
	if m.mode == modeMove && s.Drag != nil && m.moveTarget < len(s.Columns) {
		b.WriteString(m.styles.muted.Render(fmt.Sprintf("Moving job %d to %s (enter to drop, esc to cancel)",
			s.Drag.JobID, s.Columns[m.moveTarget].Title)))
		b.WriteString("\n")
	}
	for _, msg := range s.RenderErrors {
		b.WriteString(m.styles.warning.Render("! " + msg))
		b.WriteString("\n")
	}
	if s.Notice != "" {
		b.WriteString(m.styles.notice.Render(s.Notice + "  (x to dismiss)"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderColumn(col board.Column, idx, width int) string {
	lines := []string{
		m.styles.title.Render(fmt.Sprintf("%s (%d)", col.Title, len(col.Cards))),
		"",
	}
	for i, card := range col.Cards {
		text := cardLine(card, width)
		if idx == m.col && i == m.row && m.view == viewBoard {
			text = m.styles.selected.Render(text)
		}
		lines = append(lines, text)
		if card.Job.Company != "" {
			lines = append(lines, m.styles.muted.Render("  "+truncate(card.Job.Company, width-2)))
		}
	}
	if col.Form.Visible {
		lines = append(lines, "", m.styles.muted.Render("[adding...]"))
		if col.Form.Err != "" {
			lines = append(lines, m.styles.notice.Render(truncate(col.Form.Err, width)))
		}
	} else {
		lines = append(lines, "", m.styles.muted.Render("+ Add job"))
	}

	style := m.styles.column
	if col.Hover {
		style = m.styles.hover
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func cardLine(card board.Card, width int) string {
	title := card.Job.Title
	if title == "" {
		title = "(untitled)"
	}
	if card.Editing {
		title = "✎ " + title
	}
	return truncate(title, width)
}

func (m Model) renderForm() string {
	heading := "Edit job"
	if m.mode == modeAdd {
		heading = "Add job"
	}
	lines := []string{m.styles.title.Render(heading)}
	for _, in := range m.fields {
		lines = append(lines, in.View())
	}
	lines = append(lines, m.styles.muted.Render("enter save · tab next field · esc cancel"))
	return m.styles.form.Render(strings.Join(lines, "\n"))
}

func (m Model) renderFinder(s finder.State) string {
	var b strings.Builder
	if m.mode == modeSearch || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	switch {
	case s.Loading && len(s.Listings) == 0:
		b.WriteString(m.styles.muted.Render("Loading jobs..."))
		b.WriteString("\n")
	case s.Err != "":
		b.WriteString(m.styles.notice.Render(s.Err + "  (r to retry)"))
		b.WriteString("\n")
	case len(s.Listings) == 0:
		b.WriteString(m.styles.title.Render("No jobs found"))
		b.WriteString("\n")
		b.WriteString(m.styles.muted.Render("Try adjusting your search"))
		b.WriteString("\n")
	}

	for i, l := range s.Listings {
		line := listingLine(l)
		if i == m.cursor {
			line = m.styles.selected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
		if detail := listingDetail(l); detail != "" {
			b.WriteString(m.styles.muted.Render("    " + detail))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	pager := s.RangeLabel()
	if s.CanPrev() {
		pager = "← " + pager
	}
	if s.CanNext() {
		pager += " →"
	}
	b.WriteString(m.styles.muted.Render(pager))
	b.WriteString("\n")
	if s.Notice != "" {
		b.WriteString(m.styles.notice.Render(s.Notice + "  (x to dismiss)"))
		b.WriteString("\n")
	}
	return b.String()
}

func listingLine(l tracker.Listing) string {
	title := l.Title
	if l.Company != "" {
		title += " · " + l.Company
	}
	return "☆ " + title
}

func listingDetail(l tracker.Listing) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{l.Location, l.EmploymentType, l.PostedDate} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if l.ApplyLink != "" {
		parts = append(parts, l.ApplyLink)
	}
	return strings.Join(parts, " · ")
}

func (m Model) renderHelp() string {
	var bindings []key.Binding
	switch {
	case m.mode == modeMove:
		bindings = []key.Binding{m.keys.Left, m.keys.Right, m.keys.Confirm, m.keys.Cancel}
	case m.mode != modeNormal:
		bindings = []key.Binding{m.keys.Confirm, m.keys.Cancel}
	case m.view == viewFinder:
		bindings = []key.Binding{m.keys.Tab, m.keys.Search, m.keys.Star, m.keys.Next, m.keys.Prev, m.keys.Reload, m.keys.Quit}
	default:
		bindings = []key.Binding{m.keys.Tab, m.keys.Add, m.keys.Edit, m.keys.Move, m.keys.Delete, m.keys.Reload, m.keys.Quit}
	}
	return m.help.ShortHelpView(bindings)
}

func truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-1 {
		r = r[:width-1]
	}
	return string(r) + "…"
}
