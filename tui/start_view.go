// ABOUTME: Confirmation dialog for starting a campaign from picked leads
// ABOUTME: Takes an optional title and hands the created campaign to the campaign view
package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/zala/pages"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("170")).
			Padding(1, 2).
			Width(64)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("62")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

func (m Model) renderConfirmStartView() string {
	n := len(m.picks.Selected())

	var content strings.Builder
	content.WriteString(lipgloss.NewStyle().Bold(true).Render("Start a new campaign"))
	content.WriteString("\n\n")
	fmt.Fprintf(&content, "%d lead(s) will be saved and added to the campaign.\n\n", n)
	content.WriteString(m.title.View())
	content.WriteString("\n\n")

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Start (Enter)"),
		cancelButtonStyle.Render("Cancel (Esc)"),
	)
	content.WriteString(buttons)

	return lipgloss.Place(
		m.width,
		m.height-2,
		lipgloss.Center,
		lipgloss.Center,
		confirmBoxStyle.Render(content.String()),
	)
}

func (m Model) handleConfirmStartKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.title.Blur()
		m.viewMode = ViewSearch
		return m, nil
	case "enter":
		if m.busy != "" {
			return m, nil
		}
		m.title.Blur()
		m.picks.SetTitle(m.title.Value())
		m.busy = "Saving leads"
		m.err = nil
		return m, m.startCampaign()
	}

	var cmd tea.Cmd
	m.title, cmd = m.title.Update(msg)
	return m, cmd
}

func (m Model) handleStartDone(msg startDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = ""
	if msg.err != nil {
		m.err = msg.err
		if errors.Is(msg.err, pages.ErrNoLeadsCreated) {
			m.err = fmt.Errorf("none of the %d picked leads could be saved", len(msg.res.Failed))
		}
		m.viewMode = ViewSearch
		return m, nil
	}
	if len(msg.res.Failed) > 0 {
		m.toast.Error(fmt.Sprintf("%d lead(s) could not be saved and were left out", len(msg.res.Failed)))
	}

	m.campaign = pages.NewCampaignController(m.d, msg.res.Campaign.CampaignID, msg.res.Leads)
	m.back = ViewSearch
	m.viewMode = ViewCampaign
	m.leadRow = 0
	m.busy = "Opening campaign"
	return m, m.loadCampaign()
}
