// ABOUTME: Tests for the TUI model
// ABOUTME: Drives key presses through Update and runs the returned commands inline
package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/zala/api"
	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/pages"
	"github.com/harperreed/zala/state"
)

func searchServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/searchLeads" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		hit := func(first, email string) map[string]any {
			return map[string]any{
				"lead_id":  0,
				"business": first + " Realty",
				"contact":  map[string]any{"first_name": first, "last_name": "Smith", "email": email},
				"address":  map[string]any{"street_1": "1 Main St", "city": "Rochester", "state": "NY"},
				"source":   "db",
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"aggregated_leads": []map[string]any{hit("Zed", "zed@x.com"), hit("Amy", "amy@x.com")},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestModel(t *testing.T, baseURL string) Model {
	t.Helper()
	app := state.NewApp(time.Minute)
	app.Auth.Set(&models.User{UserID: 1, Username: "ada"})
	t.Cleanup(app.SideNav.Stop)

	m := NewModel(context.Background(), pages.Deps{API: api.New(baseURL), App: app})
	t.Cleanup(m.picks.Close)
	return m
}

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSearchAndPick(t *testing.T) {
	srv := searchServer(t)
	m := newTestModel(t, srv.URL)

	m, cmd := press(t, m, key("Rochester"), key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, "Searching", m.busy)

	next, _ := m.Update(cmd())
	m = next.(Model)
	require.NoError(t, m.err)
	assert.Empty(t, m.busy)
	assert.Len(t, m.search.Results(), 2)
	assert.Contains(t, m.View(), "Zed Smith")

	m, _ = press(t, m, key("j"), key("space"))
	assert.Equal(t, []int{1}, m.picks.Selected())

	m, _ = press(t, m, key("a"))
	assert.Len(t, m.picks.Selected(), 2)

	m, _ = press(t, m, key("s"))
	assert.Equal(t, ViewConfirmStart, m.viewMode)
	assert.Contains(t, m.View(), "2 lead(s) will be saved")

	m, _ = press(t, m, key("esc"))
	assert.Equal(t, ViewSearch, m.viewMode)
}

func TestStartNeedsPicks(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:0")

	m, _ = press(t, m, key("esc"), key("s"))
	assert.Equal(t, ViewSearch, m.viewMode)
	assert.EqualError(t, m.err, "pick at least one lead with Space first")
}

func TestFilterPanel(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:0")

	m, _ = press(t, m, key("esc"), key("f"))
	require.True(t, m.d.App.SideNav.State().IsOpen)
	assert.Contains(t, m.View(), "SOURCES")

	// first row is the database source
	m, _ = press(t, m, key("space"))
	assert.Equal(t, []models.LeadSource{models.SourceDB}, m.d.App.SearchFilter.Get().Sources)

	// keys do not leak to the results while the panel is open
	m, _ = press(t, m, key("j"), key("j"), key("j"), key("j"), key("right"))
	assert.Equal(t, state.SortName, m.d.App.SearchFilter.Get().SortBy)
	assert.Empty(t, m.picks.Selected())

	m, _ = press(t, m, key("esc"))
	nav := m.d.App.SideNav.State()
	assert.False(t, nav.IsOpen)
	assert.True(t, nav.Pending)
	assert.NotContains(t, m.View(), "SOURCES")
}

func TestQuitWhileTyping(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:0")

	// q is text while the query box has focus
	m, _ = press(t, m, key("q"))
	assert.Equal(t, "q", m.query.Value())

	_, cmd := press(t, m, key("esc"), key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestNextSortKey(t *testing.T) {
	assert.Equal(t, state.SortName, nextSortKey(state.SortNone, 1))
	assert.Equal(t, state.SortAddress, nextSortKey(state.SortNone, -1))
	assert.Equal(t, state.SortNone, nextSortKey(state.SortAddress, 1))
}

func TestRenderColumns(t *testing.T) {
	board := models.Board{BoardID: 3, BoardName: "Pipeline", Steps: []models.BoardStep{
		{BoardStepID: 32, BoardColumn: 2, StepName: "Listings", Properties: []models.PropertyCard{{PropertyID: 51, PropertyName: "House"}}},
		{BoardStepID: 31, BoardColumn: 1, StepName: "To Do", Leads: []models.LeadCard{{LeadID: 41, Business: "Acme"}}},
	}}

	out := renderColumns(board)
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "House")
	assert.Less(t, strings.Index(out, "To Do"), strings.Index(out, "Listings"))
}

