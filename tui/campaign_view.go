// ABOUTME: Campaign view: lead list with connect, notes, profile and multi-lead folders
// ABOUTME: Title and notes edits autosave through the campaign controller
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

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(14)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	folderStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	contactedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))
)

type folder struct {
	tab  state.CampaignTab
	name string
}

var campaignTabs = []folder{
	{state.TabConnect, "Connect"},
	{state.TabNotes, "Notes"},
	{state.TabProfile, "Profile"},
	{state.TabMulti, "Multi"},
}

// campaignRow pairs a campaign lead with its fetched details.
type campaignRow struct {
	cl   models.CampaignLead
	lead models.Lead
	ok   bool
}

func (m Model) campaignRows() []campaignRow {
	if m.campaign == nil {
		return nil
	}
	leads := m.campaign.Leads()
	rows := make([]campaignRow, 0, len(leads))
	for _, cl := range m.campaign.Campaign().Leads {
		r := campaignRow{cl: cl}
		if i := slices.IndexFunc(leads, func(l models.Lead) bool { return l.LeadID == cl.LeadID }); i >= 0 {
			r.lead, r.ok = leads[i], true
		}
		rows = append(rows, r)
	}
	return rows
}

func (r campaignRow) title() string {
	if !r.ok {
		return fmt.Sprintf("Lead %d", r.cl.LeadID)
	}
	if r.lead.Buisness != "" {
		return r.lead.Buisness
	}
	if name := r.lead.Contact.FullName(); name != "" {
		return name
	}
	return fmt.Sprintf("Lead %d", r.cl.LeadID)
}

func methodMarks(cl models.CampaignLead) string {
	var marks []string
	for _, m := range []models.ContactMethod{models.ContactPhone, models.ContactSMS, models.ContactEmail} {
		if cl.Has(m) {
			marks = append(marks, strings.ToUpper(string(m)[:1]))
		}
	}
	return strings.Join(marks, "")
}

func (m Model) renderCampaignView() string {
	if m.campaign == nil {
		return "No campaign open"
	}
	page := m.d.App.CampaignPage.Get()

	var s strings.Builder
	if m.editingTitle {
		s.WriteString(m.title.View())
	} else {
		s.WriteString(titleStyle.Render(m.campaign.Title()))
	}
	s.WriteString("\n\n")

	var tabs []string
	for _, t := range campaignTabs {
		if t.tab == page.Tab {
			tabs = append(tabs, tabActiveStyle.Render(t.name))
		} else {
			tabs = append(tabs, tabInactiveStyle.Render(t.name))
		}
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	s.WriteString("\n\n")

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderLeadList(page), "  ", m.renderFolder(page)))
	s.WriteString("\n\n")

	s.WriteString(m.renderCampaignHelp(page))
	return s.String()
}

func (m Model) renderLeadList(page state.CampaignPage) string {
	rows := m.campaignRows()
	if len(rows) == 0 {
		return folderStyle.Width(30).Render("No leads in this campaign")
	}
	var s strings.Builder
	for i, r := range rows {
		pick := "  "
		if page.Tab == state.TabMulti {
			pick = "○ "
			if page.IsSelected(r.cl.LeadID) {
				pick = "● "
			}
		}
		line := fmt.Sprintf("%s%-22s %s", pick, truncate(r.title(), 22), contactedStyle.Render(methodMarks(r.cl)))
		if i == m.leadRow {
			line = selectedStyle.Render(line)
		}
		s.WriteString(line + "\n")
	}
	return folderStyle.Width(32).Render(strings.TrimRight(s.String(), "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func (m Model) viewingRow() (campaignRow, bool) {
	rows := m.campaignRows()
	if m.leadRow < 0 || m.leadRow >= len(rows) {
		return campaignRow{}, false
	}
	return rows[m.leadRow], true
}

func (m Model) renderFolder(page state.CampaignPage) string {
	row, ok := m.viewingRow()
	if !ok && page.Tab != state.TabMulti {
		return folderStyle.Render("Pick a lead")
	}

	var s strings.Builder
	switch page.Tab {
	case state.TabConnect:
		s.WriteString(lipgloss.NewStyle().Bold(true).Render(row.title()))
		s.WriteString("\n\n")
		for _, c := range []struct {
			key    string
			method models.ContactMethod
			label  string
		}{
			{"p", models.ContactPhone, "Called"},
			{"s", models.ContactSMS, "Texted"},
			{"e", models.ContactEmail, "Emailed"},
		} {
			mark := "[ ]"
			if row.cl.Has(c.method) {
				mark = contactedStyle.Render("[✓]")
			}
			fmt.Fprintf(&s, "%s %s  (%s)\n", mark, c.label, c.key)
		}
		if row.ok {
			s.WriteString("\n")
			s.WriteString(renderField("Phone", row.lead.Contact.Phone))
			s.WriteString(renderField("Email", row.lead.Contact.Email))
		}

	case state.TabNotes:
		if m.editingNotes {
			s.WriteString(m.notes.View())
		} else {
			notes := page.Notes
			if notes == "" {
				notes = helpStyle.Render("No notes yet. Press Enter to write some.")
			}
			s.WriteString(notes)
		}

	case state.TabProfile:
		l := row.lead
		s.WriteString(renderField("Business", l.Buisness))
		s.WriteString(renderField("Name", l.Contact.FullName()))
		s.WriteString(renderField("Email", l.Contact.Email))
		s.WriteString(renderField("Phone", l.Contact.Phone))
		s.WriteString(renderField("Address", l.Address.OneLine()))
		s.WriteString(renderField("Website", l.Website))
		s.WriteString(renderField("License", l.LicenseNum))

	case state.TabMulti:
		n := len(page.SelectedLeads)
		fmt.Fprintf(&s, "%d of %d leads selected\n\n", n, len(m.campaignRows()))
		if m.campaign.ShowSelectAll() {
			s.WriteString("a: Select all\n")
		} else {
			s.WriteString("a: Unselect all\n")
		}
		if n > 0 {
			s.WriteString("e: Email the selected leads\n")
		}
	}
	return folderStyle.Width(max(m.width-40, 30)).Render(strings.TrimRight(s.String(), "\n"))
}

func renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderCampaignHelp(page state.CampaignPage) string {
	if m.editingTitle {
		return helpStyle.Render("Enter/Esc: Done (saved automatically)")
	}
	if m.editingNotes {
		return helpStyle.Render("Esc: Done (saved automatically)")
	}
	help := []string{"↑/↓: Leads", "Tab: Folder", "t: Rename", "r: Refresh", "Esc: Back"}
	switch page.Tab {
	case state.TabConnect:
		help = append(help, "p/s/e: Mark called/texted/email")
	case state.TabNotes:
		help = append(help, "Enter: Edit notes")
	case state.TabMulti:
		help = append(help, "Space: Select")
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

// syncNotes loads the viewing lead's notes into the editor.
func (m *Model) syncNotes() {
	if m.campaign == nil || m.editingNotes {
		return
	}
	m.notes.SetValue(m.d.App.CampaignPage.Get().Notes)
	rows := m.campaignRows()
	viewing := m.d.App.CampaignPage.Get().ViewingLead
	if i := slices.IndexFunc(rows, func(r campaignRow) bool { return r.cl.LeadID == viewing }); i >= 0 {
		m.leadRow = i
	}
}

func (m Model) handleCampaignKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.campaign == nil {
		m.viewMode = m.back
		return m, nil
	}
	if m.editingTitle {
		switch msg.String() {
		case "enter", "esc":
			m.editingTitle = false
			m.title.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.title, cmd = m.title.Update(msg)
		if v := m.title.Value(); v != m.campaign.Title() {
			m.campaign.SetTitle(v)
		}
		return m, cmd
	}
	if m.editingNotes {
		if msg.String() == "esc" {
			m.editingNotes = false
			m.notes.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.notes, cmd = m.notes.Update(msg)
		if v := m.notes.Value(); v != m.d.App.CampaignPage.Get().Notes {
			m.campaign.SetNotes(v)
		}
		return m, cmd
	}

	page := m.d.App.CampaignPage.Get()
	rows := m.campaignRows()
	row, hasRow := m.viewingRow()

	switch msg.String() {
	case "esc":
		m.busy = "Saving"
		return m, m.closeCampaign()
	case "up", "k":
		if m.leadRow > 0 {
			m.leadRow--
			m.campaign.View(rows[m.leadRow].cl.LeadID)
			m.syncNotes()
		}
	case "down", "j":
		if m.leadRow < len(rows)-1 {
			m.leadRow++
			m.campaign.View(rows[m.leadRow].cl.LeadID)
			m.syncNotes()
		}
	case "tab", "shift+tab":
		step := 1
		if msg.String() == "shift+tab" {
			step = len(campaignTabs) - 1
		}
		i := slices.IndexFunc(campaignTabs, func(f folder) bool { return f.tab == page.Tab })
		m.campaign.SetTab(campaignTabs[(i+step)%len(campaignTabs)].tab)
	case "t":
		m.editingTitle = true
		m.title.SetValue(m.campaign.Title())
		return m, m.title.Focus()
	case "r":
		m.busy = "Refreshing"
		return m, m.refreshCampaign()
	}

	switch page.Tab {
	case state.TabConnect:
		if !hasRow {
			return m, nil
		}
		method, ok := map[string]models.ContactMethod{
			"p": models.ContactPhone,
			"s": models.ContactSMS,
			"e": models.ContactEmail,
		}[msg.String()]
		if ok {
			m.err = nil
			m.busy = "Updating"
			if method == models.ContactEmail {
				m.busy = "Sending email"
			}
			return m, m.toggleContact(row.cl.LeadID, method)
		}
	case state.TabNotes:
		if hasRow && (msg.String() == "enter" || msg.String() == "i") {
			m.editingNotes = true
			m.notes.SetValue(page.Notes)
			return m, m.notes.Focus()
		}
	case state.TabMulti:
		switch msg.String() {
		case " ", "x":
			if hasRow {
				m.campaign.ToggleSelected(row.cl.LeadID)
			}
		case "a":
			if m.campaign.ShowSelectAll() {
				m.campaign.SelectAll()
			} else {
				m.campaign.UnselectAll()
			}
		case "e":
			if len(page.SelectedLeads) > 0 {
				m.err = nil
				m.busy = "Sending email"
				return m, m.emailSelected()
			}
		}
	}
	return m, nil
}
