// ABOUTME: Lead search view: query box, results table and picks
// ABOUTME: Picked results start a campaign through the confirmation dialog
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/state"
)

func (m Model) renderSearchView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("ZALA LEADS"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs(ViewSearch))
	s.WriteString("\n\n")

	s.WriteString(m.query.View())
	s.WriteString("\n\n")

	results := m.renderResultsTable()
	if nav := m.d.App.SideNav.State(); nav.IsOpen && nav.Variant == state.VariantLeadFilters {
		results = lipgloss.JoinHorizontal(lipgloss.Top, m.renderFilterPanel(), "  ", results)
	}
	s.WriteString(results)
	s.WriteString("\n\n")

	// Help
	s.WriteString(m.renderSearchHelp())

	return s.String()
}

func (m Model) renderTabs(active ViewMode) string {
	tabs := []struct {
		mode ViewMode
		name string
	}{
		{ViewSearch, "Search"},
		{ViewPast, "Past Campaigns"},
		{ViewBoard, "Boards"},
	}
	var rendered []string
	for _, tab := range tabs {
		if tab.mode == active {
			rendered = append(rendered, tabActiveStyle.Render(tab.name))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab.name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func leadName(l models.Lead) string {
	if name := l.Contact.FullName(); name != "" {
		return name
	}
	return l.Buisness
}

func (m Model) renderResultsTable() string {
	results := m.search.Results()
	if q := m.d.App.SearchQuery.Get(); q.Loading {
		return "Searching..."
	} else if len(results) == 0 {
		if q.Query == "" {
			return helpStyle.Render("Type a location and press Enter to find leads.")
		}
		return helpStyle.Render("No leads found for " + q.Query)
	}

	columns := []table.Column{
		{Title: " ", Width: 3},
		{Title: "Name", Width: 22},
		{Title: "Business", Width: 24},
		{Title: "Email", Width: 26},
		{Title: "Address", Width: 30},
		{Title: "Source", Width: 13},
		{Title: "Miles", Width: 6},
	}

	picked := map[int]bool{}
	for _, i := range m.picks.Selected() {
		picked[i] = true
	}

	var rows []table.Row
	for i, r := range results {
		mark := "[ ]"
		if picked[i] {
			mark = "[x]"
		}
		miles := ""
		if r.DistanceMiles != nil {
			miles = fmt.Sprintf("%.1f", *r.DistanceMiles)
		}
		rows = append(rows, table.Row{
			mark,
			leadName(r.Result),
			r.Result.Buisness,
			r.Result.Contact.Email,
			r.Result.Address.OneLine(),
			string(r.Source),
			miles,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(!m.query.Focused()),
		table.WithHeight(max(m.height-14, 5)),
	)

	// Set selected row
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderSearchHelp() string {
	if m.query.Focused() {
		return helpStyle.Render(strings.Join([]string{"Enter: Search", "Esc: Results"}, " • "))
	}
	help := []string{
		"↑/↓: Navigate",
		"Space: Pick",
		"a: Pick all",
		"s: Start campaign",
		"/: Search",
		"f: Filters",
		"Tab: Switch tabs",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.query.Focused() {
		switch msg.String() {
		case "enter":
			query := strings.TrimSpace(m.query.Value())
			if query == "" {
				return m, nil
			}
			m.query.Blur()
			m.busy = "Searching"
			m.err = nil
			return m, m.runSearch(query)
		case "esc":
			m.query.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.query, cmd = m.query.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(m.search.Results())-1 {
			m.selectedRow++
		}
	case " ", "x":
		m.picks.Toggle(m.selectedRow)
	case "a":
		m.picks.ToggleAll()
	case "/":
		return m, m.query.Focus()
	case "f":
		m.d.App.SideNav.Open(state.VariantLeadFilters)
		m.filterRow = 0
	case "s":
		if len(m.picks.Selected()) == 0 {
			m.err = fmt.Errorf("pick at least one lead with Space first")
			return m, nil
		}
		m.err = nil
		m.title.SetValue("")
		m.title.Placeholder = m.picks.DefaultTitle()
		m.viewMode = ViewConfirmStart
		return m, m.title.Focus()
	case "tab":
		return m.switchTab(ViewPast)
	case "shift+tab":
		return m.switchTab(ViewBoard)
	}

	return m, nil
}

// switchTab moves between the top-level tabs.
func (m Model) switchTab(to ViewMode) (tea.Model, tea.Cmd) {
	m.err = nil
	m.viewMode = to
	switch to {
	case ViewPast:
		m.busy = "Loading campaigns"
		return m, m.loadPast()
	case ViewBoard:
		m.busy = "Loading boards"
		return m, m.loadBoards()
	}
	return m, nil
}
