// ABOUTME: Side navigation filter panel for lead search
// ABOUTME: Toggles lead sources and cycles the result sort key
package tui

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/state"
)

var panelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("170")).
	Padding(0, 1).
	Width(28)

var sourceLabels = map[models.LeadSource]string{
	models.SourceDB:           "Zala database",
	models.SourceGooglePlaces: "Google Places",
	models.SourceRapidAPI:     "RapidAPI",
	models.SourceGPT:          "GPT",
}

// filterRows is one row per source plus the sort row.
func filterRows() int {
	return len(models.DefaultLeadSources) + 1
}

func (m Model) renderFilterPanel() string {
	filter := m.d.App.SearchFilter.Get()

	var s strings.Builder
	s.WriteString(lipgloss.NewStyle().Bold(true).Render("SOURCES"))
	s.WriteString("\n")
	for i, src := range models.DefaultLeadSources {
		mark := "[ ]"
		if slices.Contains(filter.Sources, src) {
			mark = "[x]"
		}
		row := fmt.Sprintf("%s %s", mark, sourceLabels[src])
		if i == m.filterRow {
			row = selectedStyle.Render(row)
		}
		s.WriteString(row + "\n")
	}
	if len(filter.Sources) == 0 {
		s.WriteString(helpStyle.Render("none picked: all sources") + "\n")
	}

	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Bold(true).Render("SORT"))
	s.WriteString("\n")
	row := fmt.Sprintf("< %s >", filter.SortBy)
	if m.filterRow == len(models.DefaultLeadSources) {
		row = selectedStyle.Render(row)
	}
	s.WriteString(row)

	return panelStyle.Render(s.String())
}

func (m Model) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	onSort := m.filterRow == len(models.DefaultLeadSources)
	switch msg.String() {
	case "up", "k":
		if m.filterRow > 0 {
			m.filterRow--
		}
	case "down", "j":
		if m.filterRow < filterRows()-1 {
			m.filterRow++
		}
	case " ", "enter", "x":
		if onSort {
			m.d.App.SearchFilter.Update(func(f state.SearchFilter) state.SearchFilter {
				f.SortBy = nextSortKey(f.SortBy, 1)
				return f
			})
			return m, nil
		}
		src := models.DefaultLeadSources[m.filterRow]
		m.d.App.SearchFilter.Update(func(f state.SearchFilter) state.SearchFilter {
			return f.ToggleSource(src)
		})
	case "left", "h", "right", "l":
		if onSort {
			step := 1
			if k := msg.String(); k == "left" || k == "h" {
				step = -1
			}
			m.d.App.SearchFilter.Update(func(f state.SearchFilter) state.SearchFilter {
				f.SortBy = nextSortKey(f.SortBy, step)
				return f
			})
		}
	case "esc", "f":
		m.d.App.SideNav.Close()
	}
	return m, nil
}

func nextSortKey(k state.SortKey, step int) state.SortKey {
	i := slices.Index(state.SortKeys, k)
	n := len(state.SortKeys)
	return state.SortKeys[((i+step)%n+n)%n]
}
