// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Routes keys and async results between search, campaign, past campaign and board views
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/zala/db"
	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/pages"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewSearch ViewMode = iota
	ViewConfirmStart
	ViewCampaign
	ViewPast
	ViewBoard
)

// Model is the main bubbletea model
type Model struct {
	ctx      context.Context
	d        pages.Deps
	viewMode ViewMode
	// back is where esc leaves the campaign view to
	back ViewMode

	search   *pages.SearchController
	picks    *pages.LeadSearchController
	kanban   *pages.KanbanController
	campaign *pages.CampaignController
	toast    *notifier
	// store remembers rows left behind by failed lead saves; nil skips that
	store *db.Store

	// Search view state
	query       textinput.Model
	selectedRow int
	filterRow   int

	// Start confirmation state
	title textinput.Model

	// Campaign view state
	leadRow      int
	editingTitle bool
	editingNotes bool
	notes        textarea.Model

	// Past campaigns state
	past    []models.Campaign
	pastRow int

	// UI state
	busy   string
	width  int
	height int
	err    error
}

// NewModel creates a new TUI model. Controllers report through the
// model's own notifier, replacing d.Notify.
func NewModel(ctx context.Context, d pages.Deps) Model {
	toast := &notifier{}
	d.Notify = toast

	query := textinput.New()
	query.Placeholder = "City, state or ZIP"
	query.CharLimit = 120
	query.Prompt = "Search: "
	query.Focus()

	title := textinput.New()
	title.CharLimit = 120
	title.Prompt = "Title: "

	notes := textarea.New()
	notes.Placeholder = "Notes about this lead"
	notes.ShowLineNumbers = false
	notes.SetHeight(8)

	return Model{
		ctx:      ctx,
		d:        d,
		viewMode: ViewSearch,
		search:   pages.NewSearchController(d),
		picks:    pages.NewLeadSearchController(d),
		kanban:   pages.NewKanbanController(d),
		toast:    toast,
		query:    query,
		title:    title,
		notes:    notes,
		width:    100,
		height:   30,
	}
}

// Run starts the full-screen program and blocks until it quits.
func Run(ctx context.Context, d pages.Deps, store *db.Store) error {
	m := NewModel(ctx, d)
	m.store = store
	defer m.picks.Close()
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.notes.SetWidth(max(msg.Width-36, 20))
		return m, nil
	case searchDoneMsg:
		m.busy = ""
		m.err = msg.err
		m.selectedRow = 0
		return m, nil
	case startDoneMsg:
		return m.handleStartDone(msg)
	case campaignLoadedMsg:
		m.busy = ""
		m.err = msg.err
		m.syncNotes()
		return m, nil
	case campaignChangedMsg:
		m.busy = ""
		m.err = msg.err
		return m, nil
	case emailSentMsg:
		m.busy = ""
		m.err = msg.err
		return m, nil
	case campaignClosedMsg:
		m.campaign = nil
		m.viewMode = m.back
		if m.viewMode == ViewPast {
			return m, m.loadPast()
		}
		return m, nil
	case pastLoadedMsg:
		m.busy = ""
		m.err = msg.err
		m.past = msg.camps
		if m.pastRow >= len(m.past) {
			m.pastRow = 0
		}
		return m, nil
	case boardsLoadedMsg:
		m.busy = ""
		m.err = msg.err
		return m, nil
	}

	if m.viewMode == ViewSearch && m.query.Focused() {
		var cmd tea.Cmd
		m.query, cmd = m.query.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var body string
	switch m.viewMode {
	case ViewSearch:
		body = m.renderSearchView()
	case ViewConfirmStart:
		body = m.renderConfirmStartView()
	case ViewCampaign:
		body = m.renderCampaignView()
	case ViewPast:
		body = m.renderPastView()
	case ViewBoard:
		body = m.renderBoardView()
	}
	return body + m.renderStatus()
}

// typing reports whether keys belong to a text field.
func (m Model) typing() bool {
	switch m.viewMode {
	case ViewSearch:
		return m.query.Focused()
	case ViewConfirmStart:
		return true
	case ViewCampaign:
		return m.editingTitle || m.editingNotes
	}
	return false
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, m.quit()
	case "q":
		if !m.typing() {
			return m, m.quit()
		}
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewSearch:
		if m.d.App.SideNav.State().IsOpen {
			return m.handleFilterKeys(msg)
		}
		return m.handleSearchKeys(msg)
	case ViewConfirmStart:
		return m.handleConfirmStartKeys(msg)
	case ViewCampaign:
		return m.handleCampaignKeys(msg)
	case ViewPast:
		return m.handlePastKeys(msg)
	case ViewBoard:
		return m.handleBoardKeys(msg)
	}

	return m, nil
}

// quit saves pending campaign edits before leaving.
func (m Model) quit() tea.Cmd {
	if m.campaign == nil {
		return tea.Quit
	}
	c := m.campaign
	return tea.Sequence(func() tea.Msg {
		c.Flush()
		c.Close()
		return nil
	}, tea.Quit)
}

func (m Model) renderStatus() string {
	var parts []string
	if m.busy != "" {
		parts = append(parts, busyStyle.Render(m.busy+"..."))
	}
	if msg, isErr := m.toast.Last(); msg != "" {
		if isErr {
			parts = append(parts, errorStyle.Render(msg))
		} else {
			parts = append(parts, successStyle.Render(msg))
		}
	}
	if m.err != nil {
		parts = append(parts, errorStyle.Render("Error: "+m.err.Error()))
	}
	if len(parts) == 0 {
		return ""
	}
	return "\n" + lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255")).
			Bold(true)

	busyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))
)
