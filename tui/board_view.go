// ABOUTME: Kanban board view showing columns and their lead or property cards
// ABOUTME: Left and right switch between the user's boards
package tui

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/viz"
)

var columnStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("62")).
	Padding(0, 1).
	Width(24)

func (m Model) renderBoardView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("ZALA LEADS"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs(ViewBoard))
	s.WriteString("\n\n")

	board, ok := m.kanban.Active()
	if !ok {
		if m.busy == "" {
			s.WriteString(helpStyle.Render("No boards yet. Create one with `zala board create`."))
		}
	} else {
		boards := m.kanban.Boards()
		i := slices.IndexFunc(boards, func(b models.Board) bool { return b.BoardID == board.BoardID })
		fmt.Fprintf(&s, "%s  (%d of %d)\n\n", lipgloss.NewStyle().Bold(true).Render(board.BoardName), i+1, len(boards))
		s.WriteString(renderColumns(board))
		s.WriteString("\n\n")
		s.WriteString(viz.RenderBoard(viz.GenerateBoardStats(board)))
	}
	s.WriteString("\n")

	help := []string{"←/→: Switch board", "r: Reload", "Tab: Switch tabs", "q: Quit"}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	return s.String()
}

func renderColumns(board models.Board) string {
	steps := slices.Clone(board.Steps)
	slices.SortStableFunc(steps, func(a, b models.BoardStep) int { return a.BoardColumn - b.BoardColumn })

	cols := make([]string, 0, len(steps))
	for _, step := range steps {
		var c strings.Builder
		c.WriteString(lipgloss.NewStyle().Bold(true).Render(step.StepName))
		c.WriteString("\n")
		for _, l := range step.Leads {
			c.WriteString("📇 " + truncate(l.Title(), 19) + "\n")
		}
		for _, p := range step.Properties {
			c.WriteString("🏠 " + truncate(p.PropertyName, 19) + "\n")
		}
		if len(step.Leads)+len(step.Properties) == 0 {
			c.WriteString(helpStyle.Render("empty"))
		}
		cols = append(cols, columnStyle.Render(strings.TrimRight(c.String(), "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h", "right", "l":
		boards := m.kanban.Boards()
		active, ok := m.kanban.Active()
		if !ok || len(boards) == 0 {
			return m, nil
		}
		i := slices.IndexFunc(boards, func(b models.Board) bool { return b.BoardID == active.BoardID })
		step := 1
		if k := msg.String(); k == "left" || k == "h" {
			step = len(boards) - 1
		}
		m.kanban.SetActive(boards[(i+step)%len(boards)].BoardID)
	case "r":
		m.busy = "Loading boards"
		return m, m.loadBoards()
	case "tab":
		return m.switchTab(ViewSearch)
	case "shift+tab":
		return m.switchTab(ViewPast)
	}
	return m, nil
}
