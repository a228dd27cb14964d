// ABOUTME: Past campaigns view listing the user's campaigns
// ABOUTME: Enter opens the highlighted campaign in the campaign view
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/zala/pages"
	"github.com/harperreed/zala/viz"
)

func (m Model) renderPastView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("ZALA LEADS"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs(ViewPast))
	s.WriteString("\n\n")

	if len(m.past) == 0 {
		if m.busy == "" {
			s.WriteString(helpStyle.Render("No campaigns yet. Start one from the search tab."))
		}
	} else {
		columns := []table.Column{
			{Title: "ID", Width: 6},
			{Title: "Campaign", Width: 36},
			{Title: "Leads", Width: 6},
			{Title: "Not contacted", Width: 14},
		}
		var rows []table.Row
		for _, c := range m.past {
			stats := viz.GenerateCampaignStats(c)
			rows = append(rows, table.Row{
				fmt.Sprintf("%d", c.CampaignID),
				c.CampaignName,
				fmt.Sprintf("%d", stats.Leads),
				fmt.Sprintf("%d", stats.Untouched),
			})
		}
		t := table.New(
			table.WithColumns(columns),
			table.WithRows(rows),
			table.WithFocused(true),
			table.WithHeight(max(m.height-12, 5)),
		)
		if m.pastRow < len(rows) {
			t.SetCursor(m.pastRow)
		}
		s.WriteString(t.View())
	}
	s.WriteString("\n\n")

	help := []string{"↑/↓: Navigate", "Enter: Open", "r: Reload", "Tab: Switch tabs", "q: Quit"}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	return s.String()
}

func (m Model) handlePastKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.pastRow > 0 {
			m.pastRow--
		}
	case "down", "j":
		if m.pastRow < len(m.past)-1 {
			m.pastRow++
		}
	case "enter":
		if m.pastRow >= len(m.past) {
			return m, nil
		}
		m.campaign = pages.NewCampaignController(m.d, m.past[m.pastRow].CampaignID, nil)
		m.back = ViewPast
		m.viewMode = ViewCampaign
		m.leadRow = 0
		m.busy = "Opening campaign"
		m.err = nil
		return m, m.loadCampaign()
	case "r":
		m.busy = "Loading campaigns"
		return m, m.loadPast()
	case "tab":
		return m.switchTab(ViewBoard)
	case "shift+tab":
		return m.switchTab(ViewSearch)
	}
	return m, nil
}
